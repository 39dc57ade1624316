package mock

import (
	"context"
	"strings"
	"sync"
)

// LLM is a scriptable language model for tests. Responses are consumed in
// FIFO order; GenerateFunc, when set, takes precedence.
type LLM struct {
	mu           sync.Mutex
	Responses    []string
	Err          error
	GenerateFunc func(ctx context.Context, prompt string, maxTokens int) (string, error)
	Prompts      []string
}

func (m *LLM) Name() string { return "mock_llm" }

func (m *LLM) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	fn := m.GenerateFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, prompt, maxTokens)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "{}", nil
	}
	out := m.Responses[0]
	m.Responses = m.Responses[1:]
	return out, nil
}

// ScriptedInterviewLLM answers every prompt kind with fixed, well-formed JSON
// so the full pipeline can run end to end without any external vendor.
func ScriptedInterviewLLM() *LLM {
	return &LLM{
		GenerateFunc: func(ctx context.Context, prompt string, maxTokens int) (string, error) {
			switch {
			case strings.Contains(prompt, `"resume_highlights"`) && strings.Contains(prompt, `"name"`):
				return `{"name": "Mock Candidate", "resume_highlights": "A seasoned engineer with broad experience."}`, nil
			case strings.Contains(prompt, `"next_question"`):
				return `{"next_question": "Can you walk me through a project you are proud of?"}`, nil
			case strings.Contains(prompt, `"overall_feedback"`):
				return `{"overall_feedback": "A steady, well-rounded interview.", "key_strengths": ["communication"], "areas_for_improvement": ["specificity"], "recommendation": "hire"}`, nil
			default:
				return `{"feedback": "A reasonable answer with room for more detail.", "score": 7}`, nil
			}
		},
	}
}
