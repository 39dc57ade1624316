package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/hireloop/hireloop/pkg/errorsx"
	"github.com/hireloop/hireloop/pkg/llm"
	"github.com/hireloop/hireloop/pkg/logging"
	"github.com/hireloop/hireloop/pkg/metrics"
	"github.com/hireloop/hireloop/pkg/prompts"
	"github.com/hireloop/hireloop/pkg/workers"
)

// ErrNoAnswer marks an empty/whitespace transcript: skipped, not an answer.
var ErrNoAnswer = errors.New("transcript contains no answer")

// ErrAlreadyCompleted is returned for turns submitted after completion.
var ErrAlreadyCompleted = errorsx.New("interview already completed", errorsx.ReasonSessionCompleted)

// ErrNotStarted is returned for turns submitted before Start.
var ErrNotStarted = errorsx.New("interview not started", errorsx.ReasonSessionNotReady)

// EngineConfig tunes turn processing.
type EngineConfig struct {
	// TurnTimeout bounds the joint feedback + next-question request.
	TurnTimeout time.Duration
	// InterviewerName appears in the greeting.
	InterviewerName string
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.TurnTimeout <= 0 {
		c.TurnTimeout = 30 * time.Second
	}
	if strings.TrimSpace(c.InterviewerName) == "" {
		c.InterviewerName = "Alex"
	}
	return c
}

// Engine drives the conversational state machine for interview sessions.
// All session mutation goes through here, one event at a time per session.
type Engine struct {
	cfg     EngineConfig
	model   llm.Adapter
	store   Store
	results ResultStore
	pool    *workers.Pool
	obs     metrics.Observer
	logger  *slog.Logger
}

func NewEngine(model llm.Adapter, store Store, results ResultStore, pool *workers.Pool, obs metrics.Observer, logger *slog.Logger, cfg EngineConfig) *Engine {
	if obs == nil {
		obs = metrics.NoopObserver{}
	}
	return &Engine{
		cfg:     cfg.withDefaults(),
		model:   model,
		store:   store,
		results: results,
		pool:    pool,
		obs:     obs,
		logger:  logging.NewComponentLogger(logger, "turn_engine"),
	}
}

// Create registers a new session before any turn begins.
func (e *Engine) Create(name, highlights, jobDescription string, maxQuestions int, voice string) *Session {
	s := NewSession(name, highlights, jobDescription, maxQuestions, voice)
	e.store.Put(s)
	e.logger.Info("session created",
		slog.String("session_id", s.ID),
		slog.String("candidate", name),
		slog.Int("max_questions", s.MaxQuestions))
	return s
}

// Get looks up a live session.
func (e *Engine) Get(id string) (*Session, error) {
	return e.store.Get(id)
}

// Start transitions NotStarted -> InProgress, emits the greeting and sets the
// turn index to 1. Starting an already started session returns the current
// question so a reconnecting client can resume.
func (e *Engine) Start(id string) (string, error) {
	s, err := e.store.Get(id)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Completed {
		return "", ErrAlreadyCompleted
	}
	if s.Started {
		return s.CurrentQuestion, nil
	}
	greeting := prompts.Greeting(s.CandidateName, e.cfg.InterviewerName)
	s.appendMessage(RoleAssistant, greeting)
	s.CurrentQuestion = greeting
	s.Started = true
	s.TurnIndex = 1
	e.logger.Info("interview started", slog.String("session_id", s.ID))
	return greeting, nil
}

// TurnResult is the outcome of one accepted transcript.
type TurnResult struct {
	Feedback      string
	Score         float64
	NextQuestion  string
	QuestionIndex int
	Completed     bool
	ThanksMessage string
	OverallScore  float64
	Summary       *Summary
}

// SubmitAnswer processes one candidate transcript. Bookkeeping is
// all-or-nothing: on any upstream failure the turn index and conversation
// record are untouched (only the raw user message remains logged) so the
// client can safely resubmit.
func (e *Engine) SubmitAnswer(ctx context.Context, id, transcript string) (*TurnResult, error) {
	s, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Completed {
		return nil, ErrAlreadyCompleted
	}
	if !s.Started {
		return nil, ErrNotStarted
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrNoAnswer
	}

	s.appendMessage(RoleUser, transcript)

	question := s.CurrentQuestion
	if question == "" {
		// A started session always has a greeting; reaching this means a
		// bookkeeping gap upstream.
		e.logger.Warn("no current question on started session",
			slog.String("session_id", s.ID))
		question = prompts.DefaultOpeningQuestion
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.TurnTimeout)
	defer cancel()

	start := time.Now()
	if s.TurnIndex >= s.MaxQuestions {
		return e.finalTurn(ctx, s, question, transcript, start)
	}
	return e.intermediateTurn(ctx, s, question, transcript, start)
}

func (e *Engine) intermediateTurn(ctx context.Context, s *Session, question, answer string, start time.Time) (*TurnResult, error) {
	feedbackTask := e.pool.Submit(ctx, func(ctx context.Context) (any, error) {
		return e.requestFeedback(ctx, question, answer, s.JobDescription, s.ResumeHighlights)
	})
	questionTask := e.pool.Submit(ctx, func(ctx context.Context) (any, error) {
		return e.requestNextQuestion(ctx, question, answer, s.JobDescription, s.ResumeHighlights)
	})

	fbAny, fbErr := feedbackTask.Wait(ctx)
	nqAny, nqErr := questionTask.Wait(ctx)
	if err := e.turnError(s, fbErr, nqErr); err != nil {
		return nil, err
	}
	fb := fbAny.(evaluation)
	nextQuestion := nqAny.(string)

	s.Conversations = append(s.Conversations, TurnRecord{
		Question: question,
		Answer:   answer,
		Score:    fb.score,
		Feedback: fb.feedback,
	})
	s.appendMessage(RoleAssistant, nextQuestion)
	s.CurrentQuestion = nextQuestion
	s.TurnIndex++

	e.obs.RecordEvent(metrics.Event{
		Name:  metrics.EventTurnCompleted,
		Time:  time.Now(),
		Value: fb.score,
		Tags:  map[string]string{"session_id": s.ID},
		Fields: map[string]any{
			"turn_index": s.TurnIndex,
			"latency_ms": time.Since(start).Milliseconds(),
		},
	})

	return &TurnResult{
		Feedback:      fb.feedback,
		Score:         fb.score,
		NextQuestion:  nextQuestion,
		QuestionIndex: s.TurnIndex,
	}, nil
}

func (e *Engine) finalTurn(ctx context.Context, s *Session, question, answer string, start time.Time) (*TurnResult, error) {
	feedbackTask := e.pool.Submit(ctx, func(ctx context.Context) (any, error) {
		return e.requestFeedback(ctx, question, answer, s.JobDescription, s.ResumeHighlights)
	})
	fbAny, fbErr := feedbackTask.Wait(ctx)
	if err := e.turnError(s, fbErr, nil); err != nil {
		return nil, err
	}
	fb := fbAny.(evaluation)

	s.Conversations = append(s.Conversations, TurnRecord{
		Question: question,
		Answer:   answer,
		Score:    fb.score,
		Feedback: fb.feedback,
	})
	s.Completed = true
	s.TurnIndex++

	thanks := prompts.Thanks(s.CandidateName)
	s.appendMessage(RoleAssistant, thanks)

	overall := AggregateScore(s.Conversations)

	// Best effort: summary failure must never abort completion.
	summary := e.requestSummary(ctx, s, overall)

	e.persistResult(s, overall, summary)

	e.obs.RecordEvent(metrics.Event{
		Name:  metrics.EventInterviewCompleted,
		Time:  time.Now(),
		Value: overall,
		Tags:  map[string]string{"session_id": s.ID},
		Fields: map[string]any{
			"turns":      len(s.Conversations),
			"latency_ms": time.Since(start).Milliseconds(),
		},
	})
	e.logger.Info("interview completed",
		slog.String("session_id", s.ID),
		slog.Float64("overall_score", overall))

	return &TurnResult{
		Feedback:      fb.feedback,
		Score:         fb.score,
		QuestionIndex: s.TurnIndex,
		Completed:     true,
		ThanksMessage: thanks,
		OverallScore:  overall,
		Summary:       summary,
	}, nil
}

// turnError normalizes upstream failures for one turn: timeouts get the
// turn_timeout reason, everything else keeps its own.
func (e *Engine) turnError(s *Session, errs ...error) error {
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, context.DeadlineExceeded) {
			// The upstream call may already carry its own reason; the timeout
			// reason wins so clients see why the turn was abandoned.
			err = errorsx.ReasonedError{Err: err, Reason: errorsx.ReasonTurnTimeout}
		}
		e.obs.RecordEvent(metrics.Event{
			Name: metrics.EventTurnFailed,
			Time: time.Now(),
			Tags: map[string]string{
				"session_id":  s.ID,
				"reason_code": string(errorsx.Reason(err)),
			},
		})
		e.logger.Error("turn failed",
			slog.String("session_id", s.ID),
			slog.String("reason_code", string(errorsx.Reason(err))),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

type evaluation struct {
	feedback string
	score    float64
}

func (e *Engine) requestFeedback(ctx context.Context, question, answer, jobDescription, highlights string) (evaluation, error) {
	raw, err := e.model.Generate(ctx, prompts.Feedback(question, answer, jobDescription, highlights), llm.MaxTokensFeedback)
	if err != nil {
		return evaluation{}, errorsx.Wrap(err, errorsx.ReasonLLMGenerate)
	}
	obj, err := llm.ParseObject(raw, "feedback", "score")
	if err != nil {
		return evaluation{}, err
	}
	score, err := llm.NumberField(obj, "score")
	if err != nil {
		return evaluation{}, err
	}
	if score < 0 || score > 10 {
		// Recorded as-is: clamping would hide a prompt regression.
		e.logger.Warn("score outside expected range",
			slog.Float64("score", score))
	}
	return evaluation{feedback: llm.StringField(obj, "feedback"), score: score}, nil
}

func (e *Engine) requestNextQuestion(ctx context.Context, question, answer, jobDescription, highlights string) (string, error) {
	raw, err := e.model.Generate(ctx, prompts.NextQuestion(question, answer, jobDescription, highlights), llm.MaxTokensQuestion)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonLLMGenerate)
	}
	obj, err := llm.ParseObject(raw, "next_question")
	if err != nil {
		return "", err
	}
	next := llm.StringField(obj, "next_question")
	if next == "" {
		return "", errorsx.New("model produced an empty question", errorsx.ReasonLLMParse)
	}
	return next, nil
}

func (e *Engine) requestSummary(ctx context.Context, s *Session, overall float64) *Summary {
	var transcript strings.Builder
	for i, conv := range s.Conversations {
		fmt.Fprintf(&transcript, "Question %d: %s\nCandidate Answer: %s\nScore: %g/10\nFeedback: %s\n---\n",
			i+1, conv.Question, conv.Answer, conv.Score, conv.Feedback)
	}
	prompt := prompts.OverallSummary(s.CandidateName, s.JobDescription, s.ResumeHighlights,
		len(s.Conversations), overall, transcript.String())

	raw, err := e.model.Generate(ctx, prompt, llm.MaxTokensSummary)
	if err == nil {
		obj, perr := llm.ParseObject(raw, "overall_feedback", "key_strengths", "areas_for_improvement", "recommendation")
		if perr == nil {
			return &Summary{
				OverallFeedback:     llm.StringField(obj, "overall_feedback"),
				KeyStrengths:        llm.StringList(obj, "key_strengths"),
				AreasForImprovement: llm.StringList(obj, "areas_for_improvement"),
				Recommendation:      llm.StringField(obj, "recommendation"),
			}
		}
		err = perr
	}
	e.logger.Warn("overall summary unavailable, using fallback",
		slog.String("session_id", s.ID),
		slog.String("error", err.Error()))
	return &Summary{
		OverallFeedback: fmt.Sprintf(
			"%s completed the interview with an overall score of %.2f out of 10 across %d questions.",
			s.CandidateName, overall, len(s.Conversations)),
		Recommendation: "see per-question feedback",
	}
}

// persistResult hands the final record off without blocking session
// completion; the candidate already has their completion message.
func (e *Engine) persistResult(s *Session, overall float64, summary *Summary) {
	if e.results == nil {
		return
	}
	now := time.Now().Format(time.RFC3339)
	rec := FinalRecord{
		Name:             s.CandidateName,
		CreatedAt:        now,
		UpdatedAt:        now,
		JobDescription:   s.JobDescription,
		ResumeHighlights: s.ResumeHighlights,
		Conversations:    append([]TurnRecord(nil), s.Conversations...),
		OverallScore:     overall,
		Summary:          summary,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.results.Persist(ctx, rec); err != nil {
			e.logger.Error("result persistence failed",
				slog.String("session_id", s.ID),
				slog.String("error", err.Error()))
		}
	}()
}

// AggregateScore is the mean of per-turn scores rounded to two decimals.
func AggregateScore(records []TurnRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.Score
	}
	return math.Round(sum/float64(len(records))*100) / 100
}
