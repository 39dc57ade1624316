// Package extract turns an uploaded resume into the candidate details a
// session is created from: the document becomes plain text, then a model call
// pulls out the name and a highlights summary.
package extract

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/hireloop/hireloop/pkg/errorsx"
	"github.com/hireloop/hireloop/pkg/llm"
	"github.com/hireloop/hireloop/pkg/logging"
	"github.com/hireloop/hireloop/pkg/prompts"
)

// Extractor pulls plain text out of an uploaded document.
type Extractor interface {
	Extract(filename string, data []byte) (string, error)
}

// PlainText accepts text documents as-is. Binary formats such as PDF need a
// dedicated extractor behind the same interface; uploading one here is
// rejected with a clear error rather than garbage text.
type PlainText struct{}

func (PlainText) Extract(filename string, data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return "", errorsx.New("pdf resumes are not supported, upload plain text", errorsx.ReasonResumeExtract)
	}
	if !utf8.Valid(data) {
		return "", errorsx.New("resume is not valid text", errorsx.ReasonResumeExtract)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errorsx.New("resume is empty", errorsx.ReasonResumeExtract)
	}
	return text, nil
}

// Details is what a session needs to know about the candidate.
type Details struct {
	Name       string `json:"name"`
	Highlights string `json:"resume_highlights"`
}

// ResumeScreener asks the model for the candidate's name and a highlights
// summary from resume text.
type ResumeScreener struct {
	model  llm.Adapter
	logger *slog.Logger
}

func NewResumeScreener(model llm.Adapter, logger *slog.Logger) *ResumeScreener {
	return &ResumeScreener{
		model:  model,
		logger: logging.NewComponentLogger(logger, "resume_screener"),
	}
}

func (s *ResumeScreener) Screen(ctx context.Context, resumeText string) (Details, error) {
	if strings.TrimSpace(resumeText) == "" {
		return Details{}, errorsx.New("resume text is empty", errorsx.ReasonResumeExtract)
	}
	raw, err := s.model.Generate(ctx, prompts.ResumeDetails(resumeText), llm.MaxTokensDefault)
	if err != nil {
		return Details{}, errorsx.Wrap(err, errorsx.ReasonResumeExtract)
	}
	obj, err := llm.ParseObject(raw, "name", "resume_highlights")
	if err != nil {
		return Details{}, errorsx.Wrap(err, errorsx.ReasonResumeExtract)
	}
	details := Details{
		Name:       llm.StringField(obj, "name"),
		Highlights: llm.StringField(obj, "resume_highlights"),
	}
	if details.Name == "" {
		return Details{}, errorsx.New("model produced no candidate name", errorsx.ReasonResumeExtract)
	}
	s.logger.Info("resume screened", slog.String("candidate", details.Name))
	return details, nil
}
