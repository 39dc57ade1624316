// Package ws is the duplex session transport: one websocket per interview.
// The client streams binary PCM frames and JSON control messages inbound; the
// server answers with JSON events and framed synthesized audio outbound.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hireloop/hireloop/pkg/adapters/stt"
	"github.com/hireloop/hireloop/pkg/audio"
	"github.com/hireloop/hireloop/pkg/errorsx"
	"github.com/hireloop/hireloop/pkg/interview"
	"github.com/hireloop/hireloop/pkg/logging"
	"github.com/hireloop/hireloop/pkg/metrics"
	"github.com/hireloop/hireloop/pkg/speech"
)

type Config struct {
	Path           string   `mapstructure:"path"`
	AllowAnyOrigin bool     `mapstructure:"allow_any_origin"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (c Config) withDefaults() Config {
	if c.Path == "" {
		c.Path = "/ws"
	}
	if !c.AllowAnyOrigin && len(c.AllowedOrigins) == 0 {
		c.AllowAnyOrigin = true
	}
	return c
}

// Transport serves interview sessions over websocket connections. Each
// connection owns its own utterance buffer; turns are processed inline in the
// read loop, so one session handles one turn at a time.
type Transport struct {
	cfg      Config
	upgrader websocket.Upgrader
	engine   *interview.Engine
	stt      stt.Transcriber
	streamer *speech.Streamer
	bufCfg   audio.BufferConfig
	obs      metrics.Observer
	logger   *slog.Logger
}

func New(engine *interview.Engine, transcriber stt.Transcriber, streamer *speech.Streamer, bufCfg audio.BufferConfig, obs metrics.Observer, logger *slog.Logger, cfg Config) *Transport {
	cfg = cfg.withDefaults()
	if obs == nil {
		obs = metrics.NoopObserver{}
	}
	t := &Transport{
		cfg:      cfg,
		engine:   engine,
		stt:      transcriber,
		streamer: streamer,
		bufCfg:   bufCfg,
		obs:      obs,
		logger:   logging.NewComponentLogger(logger, "ws_transport"),
	}
	t.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     t.checkOrigin,
	}
	return t
}

// Path returns the mount point for the transport handler.
func (t *Transport) Path() string { return t.cfg.Path }

func (t *Transport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	c := &wsConn{conn: conn}

	sess, err := t.engine.Get(sessionID)
	if err != nil {
		t.writeError(c, err)
		return
	}
	logger := t.logger.With(slog.String("session_id", sess.ID))
	logger.Info("client connected")

	greeting, err := t.engine.Start(sess.ID)
	if err != nil {
		t.writeError(c, err)
		return
	}
	if werr := c.WriteEvent(QuestionEvent{
		Type:          "next_question",
		Question:      greeting,
		QuestionIndex: 1,
	}); werr != nil {
		return
	}
	_ = t.streamer.Stream(r.Context(), c, greeting, sess.Voice)

	buffer := audio.NewUtteranceBuffer(t.bufCfg, logger)
	for {
		messageType, payload, rerr := conn.ReadMessage()
		if rerr != nil {
			logger.Info("client disconnected", slog.String("reason", rerr.Error()))
			return
		}
		switch messageType {
		case websocket.BinaryMessage:
			buffer.Append(payload)
		case websocket.TextMessage:
			var msg clientMessage
			if uerr := json.Unmarshal(payload, &msg); uerr != nil {
				continue
			}
			switch msg.Type {
			case "ping":
				if werr := c.WriteEvent(PongEvent{Type: "pong"}); werr != nil {
					return
				}
			case "end_audio":
				if done := t.processUtterance(r.Context(), c, sess, buffer, logger); done {
					logger.Info("interview session closed")
					return
				}
			}
		}
	}
}

// processUtterance drives one finalize -> transcribe -> turn -> respond cycle.
// It returns true when the connection should close (interview completed or a
// turn arrived after completion); recoverable faults produce an error event
// and keep the session alive so the candidate can try again.
func (t *Transport) processUtterance(ctx context.Context, c *wsConn, sess *interview.Session, buffer *audio.UtteranceBuffer, logger *slog.Logger) bool {
	container := buffer.Finalize()
	if container == nil {
		t.obs.RecordEvent(metrics.Event{
			Name: metrics.EventUtteranceDiscarded,
			Time: time.Now(),
			Tags: map[string]string{"session_id": sess.ID, "stage": "buffer"},
		})
		return false
	}

	transcript, err := t.stt.Transcribe(ctx, container)
	if err != nil {
		if errors.Is(err, stt.ErrNoSpeech) {
			logger.Debug("no speech in utterance, waiting for the next one")
			t.obs.RecordEvent(metrics.Event{
				Name: metrics.EventUtteranceDiscarded,
				Time: time.Now(),
				Tags: map[string]string{"session_id": sess.ID, "stage": "stt"},
			})
			return false
		}
		logger.Error("transcription failed", slog.String("error", err.Error()))
		t.writeError(c, errorsx.Wrap(err, errorsx.ReasonSTTTranscribe))
		return false
	}

	if werr := c.WriteEvent(TranscriptEvent{Type: "transcript", Text: transcript}); werr != nil {
		return true
	}

	res, err := t.engine.SubmitAnswer(ctx, sess.ID, transcript)
	if err != nil {
		if errors.Is(err, interview.ErrNoAnswer) {
			return false
		}
		if errors.Is(err, interview.ErrAlreadyCompleted) {
			t.writeError(c, err)
			return true
		}
		t.writeError(c, err)
		return false
	}

	if res.Completed {
		if werr := c.WriteEvent(CompletedEvent{
			Type:          "interview_completed",
			ThanksMessage: res.ThanksMessage,
			Feedback:      res.Feedback,
			Score:         res.Score,
			OverallScore:  res.OverallScore,
			Summary:       res.Summary,
		}); werr != nil {
			return true
		}
		_ = t.streamer.Stream(ctx, c, res.ThanksMessage, sess.Voice)
		return true
	}

	if werr := c.WriteEvent(QuestionEvent{
		Type:          "next_question",
		Question:      res.NextQuestion,
		Feedback:      res.Feedback,
		Score:         res.Score,
		QuestionIndex: res.QuestionIndex,
	}); werr != nil {
		return true
	}
	_ = t.streamer.Stream(ctx, c, res.NextQuestion, sess.Voice)
	return false
}

// writeError is best effort: the connection may already be gone.
func (t *Transport) writeError(c *wsConn, err error) {
	_ = c.WriteEvent(speech.ErrorEvent{
		Type:       "error",
		Message:    err.Error(),
		ReasonCode: string(errorsx.Reason(err)),
	})
}

func (t *Transport) checkOrigin(r *http.Request) bool {
	if t.cfg.AllowAnyOrigin {
		return true
	}
	origin := strings.TrimRight(strings.TrimSpace(r.Header.Get("Origin")), "/")
	if origin == "" {
		return true
	}
	originHost := strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://")
	for _, allowed := range t.cfg.AllowedOrigins {
		a := strings.TrimRight(strings.TrimSpace(allowed), "/")
		if a == "" {
			continue
		}
		if strings.EqualFold(a, origin) || strings.EqualFold(a, originHost) {
			return true
		}
	}
	return false
}

// wsConn serializes writes to one websocket connection. Gorilla allows a
// single concurrent writer; the streamer and the read loop both write here.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) WriteEvent(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsConn) WriteAudio(chunk []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, chunk)
}
