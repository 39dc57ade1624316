package interview

import (
	"context"
	"sync"

	"github.com/hireloop/hireloop/pkg/errorsx"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errorsx.New("session not found", errorsx.ReasonSessionNotFound)

// Store holds live sessions by ID. The in-memory implementation is the
// default; the capability boundary exists so a backing store can be swapped
// in without touching the Engine.
type Store interface {
	Get(id string) (*Session, error)
	Put(s *Session)
	Remove(id string)
}

// MemoryStore is a process-wide session registry.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

func (m *MemoryStore) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// FinalRecord is the aggregate evaluation persisted once at completion.
type FinalRecord struct {
	Name             string       `json:"name"`
	CreatedAt        string       `json:"createdAt"`
	UpdatedAt        string       `json:"updatedAt"`
	JobDescription   string       `json:"job_description"`
	ResumeHighlights string       `json:"resume_highlights"`
	Conversations    []TurnRecord `json:"conversations"`
	OverallScore     float64      `json:"overall_score"`
	Summary          *Summary     `json:"summary,omitempty"`
}

// ResultStore receives the FinalRecord, fire and forget.
type ResultStore interface {
	Persist(ctx context.Context, rec FinalRecord) error
}
