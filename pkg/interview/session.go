package interview

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Message is one entry in a session's ordered message log.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TurnRecord is one completed turn: the question, the candidate's answer,
// and the evaluation of that answer.
type TurnRecord struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Summary is the narrative end-of-interview evaluation.
type Summary struct {
	OverallFeedback     string   `json:"overall_feedback"`
	KeyStrengths        []string `json:"key_strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
	Recommendation      string   `json:"recommendation"`
}

// State is the session lifecycle: NotStarted -> InProgress -> Completed.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateInProgress:
		return "IN_PROGRESS"
	case StateCompleted:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}

// Session is one interview instance. It is mutated exclusively by the Engine,
// one event at a time; the embedded mutex serializes turn processing.
type Session struct {
	mu sync.Mutex

	ID               string
	CandidateName    string
	JobDescription   string
	ResumeHighlights string
	MaxQuestions     int
	Voice            string

	// TurnIndex starts at 0, becomes 1 on start, and increments once per
	// completed turn. It never exceeds MaxQuestions+1.
	TurnIndex int

	// CurrentQuestion is maintained incrementally: the greeting on start,
	// then each generated follow-up.
	CurrentQuestion string

	Messages      []Message
	Conversations []TurnRecord

	Started   bool
	Completed bool
	CreatedAt time.Time
}

func NewSession(name, highlights, jobDescription string, maxQuestions int, voice string) *Session {
	if maxQuestions <= 0 {
		maxQuestions = 5
	}
	return &Session{
		ID:               "session_" + uuid.NewString(),
		CandidateName:    name,
		ResumeHighlights: highlights,
		JobDescription:   jobDescription,
		MaxQuestions:     maxQuestions,
		Voice:            voice,
		CreatedAt:        time.Now(),
	}
}

func (s *Session) State() State {
	switch {
	case s.Completed:
		return StateCompleted
	case s.Started:
		return StateInProgress
	default:
		return StateNotStarted
	}
}

// Snapshot is a copy of the session safe to serialize outside the engine.
type Snapshot struct {
	ID            string       `json:"session_id"`
	CandidateName string       `json:"name"`
	TurnIndex     int          `json:"question_index"`
	MaxQuestions  int          `json:"max_questions"`
	State         string       `json:"state"`
	Started       bool         `json:"interview_started"`
	Completed     bool         `json:"interview_completed"`
	Messages      []Message    `json:"messages"`
	Conversations []TurnRecord `json:"conversations"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:            s.ID,
		CandidateName: s.CandidateName,
		TurnIndex:     s.TurnIndex,
		MaxQuestions:  s.MaxQuestions,
		State:         s.State().String(),
		Started:       s.Started,
		Completed:     s.Completed,
		Messages:      append([]Message(nil), s.Messages...),
		Conversations: append([]TurnRecord(nil), s.Conversations...),
	}
}

func (s *Session) appendMessage(role Role, content string) {
	s.Messages = append(s.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}
