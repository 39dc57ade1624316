package ws

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hireloop/hireloop/pkg/adapters/stt"
	"github.com/hireloop/hireloop/pkg/audio"
	"github.com/hireloop/hireloop/pkg/errorsx"
	"github.com/hireloop/hireloop/pkg/interview"
	"github.com/hireloop/hireloop/pkg/providers/mock"
	"github.com/hireloop/hireloop/pkg/speech"
	"github.com/hireloop/hireloop/pkg/workers"
)

func scriptedLLM() *mock.LLM {
	return &mock.LLM{
		GenerateFunc: func(ctx context.Context, prompt string, maxTokens int) (string, error) {
			switch {
			case strings.Contains(prompt, `"next_question"`):
				return `{"next_question": "How do you test concurrent code?"}`, nil
			case strings.Contains(prompt, `"overall_feedback"`):
				return `{"overall_feedback": "Good.", "key_strengths": ["go"], "areas_for_improvement": [], "recommendation": "hire"}`, nil
			default:
				return `{"feedback": "Clear answer.", "score": 8}`, nil
			}
		},
	}
}

type testHarness struct {
	server  *httptest.Server
	session *interview.Session
}

func newHarness(t *testing.T, transcriber stt.Transcriber, maxQuestions int) *testHarness {
	t.Helper()
	pool := workers.NewPool(2)
	t.Cleanup(pool.Close)
	engine := interview.NewEngine(scriptedLLM(), interview.NewMemoryStore(), nil, pool, nil, nil, interview.EngineConfig{})
	sess := engine.Create("Sam Okafor", "Go, Kubernetes", "Platform engineer", maxQuestions, "alloy")

	streamer := speech.NewStreamer(&mock.Synthesizer{Audio: []byte("tiny mp3 payload")}, 0, nil)
	transport := New(engine, transcriber, streamer, audio.BufferConfig{}, nil, nil, Config{})

	server := httptest.NewServer(transport)
	t.Cleanup(server.Close)
	return &testHarness{server: server, session: sess}
}

func (h *testHarness) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.server.URL, "http") + "/ws?session_id=" + h.session.ID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

// readEvent skips binary frames and returns the next JSON event.
func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if messageType != websocket.TextMessage {
			continue
		}
		var ev map[string]any
		if err := json.Unmarshal(payload, &ev); err != nil {
			t.Fatalf("bad event %q: %v", payload, err)
		}
		return ev
	}
}

func loudUtterance() []byte {
	// 1s of alternating near-full-scale samples at 16kHz, 16-bit mono.
	buf := make([]byte, 32000)
	for i := 0; i < len(buf); i += 2 {
		v := int16(20000)
		if i%4 == 0 {
			v = -20000
		}
		binary.LittleEndian.PutUint16(buf[i:], uint16(v))
	}
	return buf
}

func sendUtterance(t *testing.T, conn *websocket.Conn, pcm []byte) {
	t.Helper()
	if err := conn.WriteMessage(websocket.BinaryMessage, pcm); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"end_audio"}`)); err != nil {
		t.Fatalf("write end_audio: %v", err)
	}
}

func TestConnectStreamsGreeting(t *testing.T) {
	h := newHarness(t, &mock.Transcriber{Text: "hello"}, 3)
	conn := h.dial(t)

	ev := readEvent(t, conn)
	if ev["type"] != "next_question" {
		t.Fatalf("expected greeting question event, got %v", ev)
	}
	if q, _ := ev["question"].(string); q == "" {
		t.Fatalf("greeting question empty")
	}
	if ev["question_index"].(float64) != 1 {
		t.Fatalf("expected question_index 1, got %v", ev["question_index"])
	}
	if ev := readEvent(t, conn); ev["type"] != "audio_start" {
		t.Fatalf("expected greeting audio_start, got %v", ev)
	}
}

func TestPingPong(t *testing.T) {
	h := newHarness(t, &mock.Transcriber{Text: "hello"}, 3)
	conn := h.dial(t)

	// Skip greeting event plus its audio framing.
	for i := 0; i < 3; i++ {
		readEvent(t, conn)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if ev := readEvent(t, conn); ev["type"] != "pong" {
		t.Fatalf("expected pong, got %v", ev)
	}
}

func TestEndAudioRunsFullTurn(t *testing.T) {
	h := newHarness(t, &mock.Transcriber{Text: "I pair tests with the race detector."}, 3)
	conn := h.dial(t)
	for i := 0; i < 3; i++ {
		readEvent(t, conn)
	}

	sendUtterance(t, conn, loudUtterance())

	ev := readEvent(t, conn)
	if ev["type"] != "transcript" || ev["text"] != "I pair tests with the race detector." {
		t.Fatalf("expected transcript echo, got %v", ev)
	}
	ev = readEvent(t, conn)
	if ev["type"] != "next_question" {
		t.Fatalf("expected next_question, got %v", ev)
	}
	if ev["question"] != "How do you test concurrent code?" {
		t.Fatalf("unexpected question: %v", ev["question"])
	}
	if ev["score"].(float64) != 8 {
		t.Fatalf("expected score 8, got %v", ev["score"])
	}
}

func TestShortUtteranceSilentlyDiscarded(t *testing.T) {
	transcriber := &mock.Transcriber{Text: "should never be used"}
	h := newHarness(t, transcriber, 3)
	conn := h.dial(t)
	for i := 0; i < 3; i++ {
		readEvent(t, conn)
	}

	sendUtterance(t, conn, []byte{0, 0, 0, 0})

	// The discard produces no event at all; a ping proves the loop is alive
	// and nothing else was queued first.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if ev := readEvent(t, conn); ev["type"] != "pong" {
		t.Fatalf("expected pong directly after discard, got %v", ev)
	}
	if transcriber.CallCount() != 0 {
		t.Fatalf("transcriber must not see a discarded utterance")
	}
}

func TestNoSpeechSilentlyDiscarded(t *testing.T) {
	h := newHarness(t, &mock.Transcriber{Err: stt.ErrNoSpeech}, 3)
	conn := h.dial(t)
	for i := 0; i < 3; i++ {
		readEvent(t, conn)
	}

	sendUtterance(t, conn, loudUtterance())

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if ev := readEvent(t, conn); ev["type"] != "pong" {
		t.Fatalf("expected silent discard then pong, got %v", ev)
	}
}

func TestTranscriberFaultEmitsErrorEvent(t *testing.T) {
	h := newHarness(t, &mock.Transcriber{Err: errors.New("upstream 503")}, 3)
	conn := h.dial(t)
	for i := 0; i < 3; i++ {
		readEvent(t, conn)
	}

	sendUtterance(t, conn, loudUtterance())

	ev := readEvent(t, conn)
	if ev["type"] != "error" {
		t.Fatalf("expected error event, got %v", ev)
	}
	if ev["reason_code"] != string(errorsx.ReasonSTTTranscribe) {
		t.Fatalf("expected stt_transcribe reason, got %v", ev["reason_code"])
	}
	// Session survives the fault.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if ev := readEvent(t, conn); ev["type"] != "pong" {
		t.Fatalf("expected live session after fault, got %v", ev)
	}
}

func TestFinalTurnCompletesAndCloses(t *testing.T) {
	h := newHarness(t, &mock.Transcriber{Text: "final answer"}, 1)
	conn := h.dial(t)
	for i := 0; i < 3; i++ {
		readEvent(t, conn)
	}

	sendUtterance(t, conn, loudUtterance())

	if ev := readEvent(t, conn); ev["type"] != "transcript" {
		t.Fatalf("expected transcript, got %v", ev)
	}
	ev := readEvent(t, conn)
	if ev["type"] != "interview_completed" {
		t.Fatalf("expected interview_completed, got %v", ev)
	}
	if ev["overall_score"].(float64) != 8 {
		t.Fatalf("expected overall 8, got %v", ev["overall_score"])
	}
	if msg, _ := ev["thanks_message"].(string); msg == "" {
		t.Fatalf("expected thanks message")
	}

	// Thanks audio, then the server closes the connection.
	deadline := time.Now().Add(5 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestUnknownSessionGetsErrorEvent(t *testing.T) {
	h := newHarness(t, &mock.Transcriber{Text: "hello"}, 3)
	url := "ws" + strings.TrimPrefix(h.server.URL, "http") + "/ws?session_id=session_missing"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	ev := readEvent(t, conn)
	if ev["type"] != "error" || ev["reason_code"] != string(errorsx.ReasonSessionNotFound) {
		t.Fatalf("expected session_not_found error event, got %v", ev)
	}
}
