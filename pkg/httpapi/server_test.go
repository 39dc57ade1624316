package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hireloop/hireloop/pkg/errorsx"
	"github.com/hireloop/hireloop/pkg/extract"
	"github.com/hireloop/hireloop/pkg/interview"
	"github.com/hireloop/hireloop/pkg/providers/mock"
	"github.com/hireloop/hireloop/pkg/workers"
)

func apiModel() *mock.LLM {
	return &mock.LLM{
		GenerateFunc: func(ctx context.Context, prompt string, maxTokens int) (string, error) {
			switch {
			case strings.Contains(prompt, `"resume_highlights"`) && strings.Contains(prompt, `"name"`):
				return `{"name": "Jordan Reyes", "resume_highlights": "Go, Kubernetes, 5 years"}`, nil
			case strings.Contains(prompt, `"next_question"`):
				return `{"next_question": "Describe a production incident you handled."}`, nil
			case strings.Contains(prompt, `"overall_feedback"`):
				return `{"overall_feedback": "Strong.", "key_strengths": ["go"], "areas_for_improvement": [], "recommendation": "hire"}`, nil
			default:
				return `{"feedback": "Solid.", "score": 9}`, nil
			}
		},
	}
}

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	model := apiModel()
	pool := workers.NewPool(2)
	t.Cleanup(pool.Close)
	engine := interview.NewEngine(model, interview.NewMemoryStore(), nil, pool, nil, nil, interview.EngineConfig{})
	api := NewServer(engine, extract.PlainText{}, extract.NewResumeScreener(model, nil), "/ws", nil, nil, Config{})
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)
	return server
}

func uploadResume(t *testing.T, server *httptest.Server, contents string, fields map[string]string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "resume.txt")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fmt.Fprint(fw, contents)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	resp, err := http.Post(server.URL+"/upload-resume", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	return resp
}

func postJSON(t *testing.T, url string, v any) (*http.Response, map[string]any) {
	t.Helper()
	b, _ := json.Marshal(v)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	return resp, out
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	return resp, out
}

func TestUploadResumeCreatesSession(t *testing.T) {
	server := newTestAPI(t)

	resp := uploadResume(t, server, "Jordan Reyes\nGo, Kubernetes.", map[string]string{
		"job_description": "Backend engineer",
		"max_questions":   "2",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(out["session_id"].(string), "session_") {
		t.Fatalf("unexpected session id: %v", out["session_id"])
	}
	if out["name"] != "Jordan Reyes" {
		t.Fatalf("unexpected name: %v", out["name"])
	}
	if out["max_questions"].(float64) != 2 {
		t.Fatalf("expected max_questions 2, got %v", out["max_questions"])
	}
}

func TestUploadResumeRejectsPDF(t *testing.T) {
	server := newTestAPI(t)

	resp := uploadResume(t, server, "%PDF-1.7 gunk", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var out map[string]any
	json.NewDecoder(resp.Body).Decode(&out)
	if out["reason_code"] != string(errorsx.ReasonResumeExtract) {
		t.Fatalf("expected resume_extract, got %v", out["reason_code"])
	}
}

func TestStartInterviewUnknownSession(t *testing.T) {
	server := newTestAPI(t)

	resp, out := postJSON(t, server.URL+"/start-interview", map[string]string{"session_id": "session_missing"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if out["reason_code"] != string(errorsx.ReasonSessionNotFound) {
		t.Fatalf("expected session_not_found, got %v", out["reason_code"])
	}
}

func TestTextInterviewFlow(t *testing.T) {
	server := newTestAPI(t)

	resp := uploadResume(t, server, "Jordan Reyes\nGo.", map[string]string{"max_questions": "2"})
	var created map[string]any
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	sessionID := created["session_id"].(string)

	resp, started := postJSON(t, server.URL+"/start-interview", map[string]string{"session_id": sessionID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start: expected 200, got %d", resp.StatusCode)
	}
	if q, _ := started["question"].(string); q == "" {
		t.Fatalf("expected opening question")
	}

	// Results are unavailable before completion.
	resp, _ = getJSON(t, server.URL+"/interview-results/"+sessionID)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 before completion, got %d", resp.StatusCode)
	}

	resp, turn := postJSON(t, server.URL+"/process-answer",
		sessionRequest{SessionID: sessionID, Answer: "I debugged a cascading failure."})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("turn 1: expected 200, got %d", resp.StatusCode)
	}
	if turn["interview_completed"].(bool) {
		t.Fatalf("turn 1 must not complete a two-question interview")
	}
	if turn["next_question"] != "Describe a production incident you handled." {
		t.Fatalf("unexpected next question: %v", turn["next_question"])
	}

	resp, turn = postJSON(t, server.URL+"/process-answer",
		sessionRequest{SessionID: sessionID, Answer: "Second answer."})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("turn 2: expected 200, got %d", resp.StatusCode)
	}
	if !turn["interview_completed"].(bool) {
		t.Fatalf("expected completion on final turn")
	}
	if turn["overall_score"].(float64) != 9 {
		t.Fatalf("expected overall 9, got %v", turn["overall_score"])
	}

	resp, results := getJSON(t, server.URL+"/interview-results/"+sessionID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("results: expected 200, got %d", resp.StatusCode)
	}
	if results["overall_score"].(float64) != 9 {
		t.Fatalf("expected overall 9 in results, got %v", results["overall_score"])
	}
	if len(results["conversations"].([]any)) != 2 {
		t.Fatalf("expected two recorded turns")
	}

	resp, status := getJSON(t, server.URL+"/interview-status/"+sessionID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: expected 200, got %d", resp.StatusCode)
	}
	if status["state"] != "COMPLETED" {
		t.Fatalf("expected COMPLETED state, got %v", status["state"])
	}

	// A third answer is rejected.
	resp, rejected := postJSON(t, server.URL+"/process-answer",
		sessionRequest{SessionID: sessionID, Answer: "One more."})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 after completion, got %d", resp.StatusCode)
	}
	if rejected["reason_code"] != string(errorsx.ReasonSessionCompleted) {
		t.Fatalf("expected session_completed, got %v", rejected["reason_code"])
	}
}

func TestProcessAnswerEmpty(t *testing.T) {
	server := newTestAPI(t)
	resp := uploadResume(t, server, "Jordan Reyes\nGo.", nil)
	var created map[string]any
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	sessionID := created["session_id"].(string)
	postJSON(t, server.URL+"/start-interview", map[string]string{"session_id": sessionID})

	resp, _ = postJSON(t, server.URL+"/process-answer", sessionRequest{SessionID: sessionID, Answer: "  "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty answer, got %d", resp.StatusCode)
	}
}
