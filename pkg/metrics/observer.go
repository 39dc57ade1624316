package metrics

import "time"

// Event names emitted by the interview pipeline.
const (
	EventTurnCompleted      = "turn_completed"
	EventTurnFailed         = "turn_failed"
	EventInterviewCompleted = "interview_completed"
	EventUtteranceDiscarded = "utterance_discarded"
)

type Event struct {
	Name   string
	Time   time.Time
	Value  float64
	Tags   map[string]string
	Fields map[string]any
}

type Observer interface {
	RecordEvent(ev Event)
}

type NoopObserver struct{}

func (NoopObserver) RecordEvent(Event) {}
