// Package hireloop assembles the interview orchestrator from configuration:
// provider selection, the turn engine, the websocket transport and the REST
// surface.
package hireloop

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dimiro1/banner"

	"github.com/hireloop/hireloop/pkg/adapters/stt"
	"github.com/hireloop/hireloop/pkg/adapters/tts"
	"github.com/hireloop/hireloop/pkg/configutil"
	"github.com/hireloop/hireloop/pkg/extract"
	"github.com/hireloop/hireloop/pkg/httpapi"
	"github.com/hireloop/hireloop/pkg/interview"
	"github.com/hireloop/hireloop/pkg/llm"
	"github.com/hireloop/hireloop/pkg/logging"
	"github.com/hireloop/hireloop/pkg/metrics"
	"github.com/hireloop/hireloop/pkg/providers/deepgram"
	"github.com/hireloop/hireloop/pkg/providers/elevenlabs"
	"github.com/hireloop/hireloop/pkg/providers/gemini"
	"github.com/hireloop/hireloop/pkg/providers/mock"
	"github.com/hireloop/hireloop/pkg/providers/openai"
	"github.com/hireloop/hireloop/pkg/results"
	"github.com/hireloop/hireloop/pkg/speech"
	"github.com/hireloop/hireloop/pkg/transports/ws"
	"github.com/hireloop/hireloop/pkg/workers"
)

const Version = "dev"

func PrintBanner() {
	tpl := "{{ .Title \"HIRELOOP\" \"\" 0 }}\nVersion: " + Version + "\n"
	banner.Init(os.Stdout, true, true, bytes.NewBufferString(tpl))
}

// App is one fully wired orchestrator instance.
type App struct {
	cfg    Config
	logger *slog.Logger
	pool   *workers.Pool
	server *httpapi.Server

	metricsFile *os.File
}

func New(ctx context.Context, cfg Config) (*App, error) {
	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	var obs metrics.Observer = metrics.NoopObserver{}
	var metricsFile *os.File
	if cfg.Observability.MetricsPath != "" {
		f, err := os.OpenFile(cfg.Observability.MetricsPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open metrics file: %w", err)
		}
		metricsFile = f
		obs = metrics.NewJSONLObserver(f)
	}

	model, err := newLLM(ctx, cfg.Vendors.LLM)
	if err != nil {
		return nil, err
	}
	model = llm.WithRetry(model, llm.RetryConfig{MaxAttempts: cfg.Interview.RetryAttempts})

	transcriber, err := newSTT(cfg.Vendors.STT, cfg.Audio.SampleRate)
	if err != nil {
		return nil, err
	}
	synthesizer, err := newTTS(cfg.Vendors.TTS)
	if err != nil {
		return nil, err
	}

	resultStore, err := results.NewFileStore(cfg.Results.Dir)
	if err != nil {
		return nil, err
	}

	pool := workers.NewPool(cfg.Interview.Workers)
	engine := interview.NewEngine(model, interview.NewMemoryStore(), resultStore, pool, obs, logger, cfg.EngineConfig())

	streamer := speech.NewStreamer(synthesizer, speech.DefaultChunkSize, logger)
	transport := ws.New(engine, transcriber, streamer, cfg.BufferConfig(), obs, logger, cfg.WS)

	screener := extract.NewResumeScreener(model, logger)
	server := httpapi.NewServer(engine, extract.PlainText{}, screener, transport.Path(), transport, logger, cfg.Server)

	logger.Info("orchestrator wired",
		slog.String("llm", cfg.Vendors.LLM.Provider),
		slog.String("stt", cfg.Vendors.STT.Provider),
		slog.String("tts", cfg.Vendors.TTS.Provider),
		slog.String("environment", cfg.Environment))

	return &App{
		cfg:         cfg,
		logger:      logger,
		pool:        pool,
		server:      server,
		metricsFile: metricsFile,
	}, nil
}

// Run serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	PrintBanner()
	defer a.close()
	return a.server.Start(ctx)
}

func (a *App) close() {
	a.pool.Close()
	if a.metricsFile != nil {
		_ = a.metricsFile.Close()
	}
}

func newLLM(ctx context.Context, vendor VendorConfig) (llm.Adapter, error) {
	var settings struct {
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
	}
	if err := configutil.DecodeSettings(vendor.Settings, &settings); err != nil {
		return nil, fmt.Errorf("vendors.llm.settings: %w", err)
	}
	switch strings.ToLower(vendor.Provider) {
	case "openai":
		if err := configutil.RequireString(settings.APIKey, "vendors.llm.settings.api_key"); err != nil {
			return nil, err
		}
		return openai.NewLLM(settings.APIKey, settings.Model), nil
	case "gemini":
		return gemini.New(ctx, settings.APIKey, settings.Model)
	case "mock":
		return mock.ScriptedInterviewLLM(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", vendor.Provider)
	}
}

func newSTT(vendor VendorConfig, sampleRate int) (stt.Transcriber, error) {
	switch strings.ToLower(vendor.Provider) {
	case "openai":
		var settings struct {
			APIKey   string `mapstructure:"api_key"`
			Language string `mapstructure:"language"`
		}
		if err := configutil.DecodeSettings(vendor.Settings, &settings); err != nil {
			return nil, fmt.Errorf("vendors.stt.settings: %w", err)
		}
		if err := configutil.RequireString(settings.APIKey, "vendors.stt.settings.api_key"); err != nil {
			return nil, err
		}
		return openai.NewTranscriber(settings.APIKey, stt.Config{
			Language:   settings.Language,
			SampleRate: sampleRate,
		}), nil
	case "deepgram":
		var settings deepgram.Config
		if err := configutil.DecodeSettings(vendor.Settings, &settings); err != nil {
			return nil, fmt.Errorf("vendors.stt.settings: %w", err)
		}
		if err := configutil.RequireString(settings.APIKey, "vendors.stt.settings.api_key"); err != nil {
			return nil, err
		}
		return deepgram.New(settings), nil
	case "mock":
		return &mock.Transcriber{Text: "mock transcript"}, nil
	default:
		return nil, fmt.Errorf("unknown stt provider %q", vendor.Provider)
	}
}

func newTTS(vendor VendorConfig) (tts.Synthesizer, error) {
	switch strings.ToLower(vendor.Provider) {
	case "elevenlabs":
		var settings elevenlabs.Config
		if err := configutil.DecodeSettings(vendor.Settings, &settings); err != nil {
			return nil, fmt.Errorf("vendors.tts.settings: %w", err)
		}
		if err := configutil.RequireString(settings.APIKey, "vendors.tts.settings.api_key"); err != nil {
			return nil, err
		}
		return elevenlabs.New(settings), nil
	case "openai":
		var settings struct {
			APIKey string `mapstructure:"api_key"`
		}
		if err := configutil.DecodeSettings(vendor.Settings, &settings); err != nil {
			return nil, fmt.Errorf("vendors.tts.settings: %w", err)
		}
		if err := configutil.RequireString(settings.APIKey, "vendors.tts.settings.api_key"); err != nil {
			return nil, err
		}
		return openai.NewSynthesizer(settings.APIKey), nil
	case "mock":
		return &mock.Synthesizer{Audio: []byte("mock audio")}, nil
	default:
		return nil, fmt.Errorf("unknown tts provider %q", vendor.Provider)
	}
}
