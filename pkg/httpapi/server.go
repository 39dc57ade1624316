// Package httpapi exposes the interview pipeline over REST and mounts the
// websocket transport. The text endpoints mirror the voice path: an answer
// posted here goes through the same turn engine as a transcribed utterance.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hireloop/hireloop/pkg/errorsx"
	"github.com/hireloop/hireloop/pkg/extract"
	"github.com/hireloop/hireloop/pkg/interview"
	"github.com/hireloop/hireloop/pkg/logging"
)

type Config struct {
	Addr           string `mapstructure:"addr"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	MaxQuestions   int    `mapstructure:"max_questions"`
	DefaultVoice   string `mapstructure:"default_voice"`
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 5 << 20
	}
	if c.MaxQuestions <= 0 {
		c.MaxQuestions = 5
	}
	if c.DefaultVoice == "" {
		c.DefaultVoice = "alloy"
	}
	return c
}

// Server is the HTTP face of the orchestrator.
type Server struct {
	cfg       Config
	engine    *interview.Engine
	extractor extract.Extractor
	screener  *extract.ResumeScreener
	wsMount   string
	wsHandler http.Handler
	logger    *slog.Logger
	server    *http.Server
}

func NewServer(engine *interview.Engine, extractor extract.Extractor, screener *extract.ResumeScreener, wsMount string, wsHandler http.Handler, logger *slog.Logger, cfg Config) *Server {
	return &Server{
		cfg:       cfg.withDefaults(),
		engine:    engine,
		extractor: extractor,
		screener:  screener,
		wsMount:   wsMount,
		wsHandler: wsHandler,
		logger:    logging.NewComponentLogger(logger, "http_api"),
	}
}

// Handler builds the route table. Exposed so tests can drive the API through
// httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload-resume", s.handleUploadResume)
	mux.HandleFunc("POST /start-interview", s.handleStartInterview)
	mux.HandleFunc("POST /process-answer", s.handleProcessAnswer)
	mux.HandleFunc("GET /interview-status/{id}", s.handleStatus)
	mux.HandleFunc("GET /interview-results/{id}", s.handleResults)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.wsHandler != nil {
		mux.Handle(s.wsMount, s.wsHandler)
	}
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.cfg.Addr,
		ReadHeaderTimeout: 5 * time.Second,
		Handler:           s.Handler(),
	}
	go func() {
		<-ctx.Done()
		_ = s.server.Close()
	}()
	s.logger.Info("listening", slog.String("addr", s.cfg.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, errorsx.Wrap(err, errorsx.ReasonResumeExtract))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errorsx.New("missing resume file", errorsx.ReasonResumeExtract))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errorsx.Wrap(err, errorsx.ReasonResumeExtract))
		return
	}

	text, err := s.extractor.Extract(header.Filename, data)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	details, err := s.screener.Screen(r.Context(), text)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	maxQuestions := s.cfg.MaxQuestions
	if v := r.FormValue("max_questions"); v != "" {
		if n, perr := strconv.Atoi(v); perr == nil && n > 0 {
			maxQuestions = n
		}
	}
	voice := strings.TrimSpace(r.FormValue("voice"))
	if voice == "" {
		voice = s.cfg.DefaultVoice
	}
	sess := s.engine.Create(details.Name, details.Highlights, r.FormValue("job_description"), maxQuestions, voice)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"session_id":        sess.ID,
		"name":              details.Name,
		"resume_highlights": details.Highlights,
		"max_questions":     sess.MaxQuestions,
	})
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer,omitempty"`
}

func (s *Server) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		s.writeError(w, http.StatusBadRequest, errorsx.New("session_id required", errorsx.ReasonSessionNotFound))
		return
	}
	question, err := s.engine.Start(req.SessionID)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	index := 1
	if sess, gerr := s.engine.Get(req.SessionID); gerr == nil {
		index = sess.Snapshot().TurnIndex
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"session_id":     req.SessionID,
		"question":       question,
		"question_index": index,
	})
}

func (s *Server) handleProcessAnswer(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		s.writeError(w, http.StatusBadRequest, errorsx.New("session_id required", errorsx.ReasonSessionNotFound))
		return
	}
	res, err := s.engine.SubmitAnswer(r.Context(), req.SessionID, req.Answer)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	body := map[string]any{
		"feedback":            res.Feedback,
		"score":               res.Score,
		"question_index":      res.QuestionIndex,
		"interview_completed": res.Completed,
	}
	if res.Completed {
		body["thanks_message"] = res.ThanksMessage
		body["overall_score"] = res.OverallScore
		if res.Summary != nil {
			body["summary"] = res.Summary
		}
	} else {
		body["next_question"] = res.NextQuestion
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sess, err := s.engine.Get(r.PathValue("id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	sess, err := s.engine.Get(r.PathValue("id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	snap := sess.Snapshot()
	if !snap.Completed {
		s.writeError(w, http.StatusConflict,
			errorsx.New("interview not completed", errorsx.ReasonSessionNotReady))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"session_id":    snap.ID,
		"name":          snap.CandidateName,
		"conversations": snap.Conversations,
		"overall_score": interview.AggregateScore(snap.Conversations),
	})
}

// writeEngineError maps engine failures onto HTTP statuses by reason code.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errorsx.HasReason(err, errorsx.ReasonSessionNotFound):
		status = http.StatusNotFound
	case errorsx.HasReason(err, errorsx.ReasonSessionCompleted),
		errorsx.HasReason(err, errorsx.ReasonSessionNotReady):
		status = http.StatusConflict
	case errors.Is(err, interview.ErrNoAnswer):
		status = http.StatusBadRequest
	case errorsx.HasReason(err, errorsx.ReasonTurnTimeout):
		status = http.StatusGatewayTimeout
	}
	s.writeError(w, status, err)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Warn("request failed",
		slog.Int("status", status),
		slog.String("reason_code", string(errorsx.Reason(err))),
		slog.String("error", err.Error()))
	s.writeJSON(w, status, map[string]any{
		"error":       err.Error(),
		"reason_code": string(errorsx.Reason(err)),
	})
}
