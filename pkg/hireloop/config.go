package hireloop

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hireloop/hireloop/pkg/audio"
	"github.com/hireloop/hireloop/pkg/httpapi"
	"github.com/hireloop/hireloop/pkg/interview"
	"github.com/hireloop/hireloop/pkg/transports/ws"
)

// VendorConfig selects a provider implementation plus its free-form settings.
// Settings values support ${VAR} environment expansion so API keys stay out
// of config files.
type VendorConfig struct {
	Provider string         `mapstructure:"provider"`
	Settings map[string]any `mapstructure:"settings"`
}

type VendorsConfig struct {
	STT VendorConfig `mapstructure:"stt"`
	TTS VendorConfig `mapstructure:"tts"`
	LLM VendorConfig `mapstructure:"llm"`
}

type AudioSettings struct {
	SampleRate     int     `mapstructure:"sample_rate"`
	Channels       int     `mapstructure:"channels"`
	BitsPerSample  int     `mapstructure:"bits_per_sample"`
	MinUtteranceMS int     `mapstructure:"min_utterance_ms"`
	SilenceRMS     float64 `mapstructure:"silence_rms"`
}

type InterviewSettings struct {
	TurnTimeoutMS   int    `mapstructure:"turn_timeout_ms"`
	InterviewerName string `mapstructure:"interviewer_name"`
	Workers         int    `mapstructure:"workers"`
	RetryAttempts   int    `mapstructure:"retry_attempts"`
}

type ObservabilityConfig struct {
	MetricsPath string `mapstructure:"metrics_path"`
}

type ResultsConfig struct {
	Dir string `mapstructure:"dir"`
}

type Config struct {
	Environment   string              `mapstructure:"environment"`
	LogLevel      string              `mapstructure:"log_level"`
	LogFormat     string              `mapstructure:"log_format"`
	Server        httpapi.Config      `mapstructure:"server"`
	WS            ws.Config           `mapstructure:"ws"`
	Vendors       VendorsConfig       `mapstructure:"vendors"`
	Audio         AudioSettings       `mapstructure:"audio"`
	Interview     InterviewSettings   `mapstructure:"interview"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Results       ResultsConfig       `mapstructure:"results"`
}

func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_bytes", 5<<20)
	v.SetDefault("server.max_questions", 5)
	v.SetDefault("server.default_voice", "alloy")
	v.SetDefault("ws.path", "/ws")
	v.SetDefault("audio.sample_rate", 16000)
	v.SetDefault("audio.channels", 1)
	v.SetDefault("audio.bits_per_sample", 16)
	v.SetDefault("audio.min_utterance_ms", 500)
	v.SetDefault("audio.silence_rms", 0.01)
	v.SetDefault("interview.turn_timeout_ms", 30000)
	v.SetDefault("interview.interviewer_name", "Alex")
	v.SetDefault("interview.workers", 4)
	v.SetDefault("interview.retry_attempts", 3)
	v.SetDefault("results.dir", "interview_results")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Vendors.STT.Settings = expandSettings(cfg.Vendors.STT.Settings)
	cfg.Vendors.TTS.Settings = expandSettings(cfg.Vendors.TTS.Settings)
	cfg.Vendors.LLM.Settings = expandSettings(cfg.Vendors.LLM.Settings)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Vendors.STT.Provider) == "" {
		return fmt.Errorf("vendors.stt.provider is required")
	}
	if strings.TrimSpace(c.Vendors.TTS.Provider) == "" {
		return fmt.Errorf("vendors.tts.provider is required")
	}
	if strings.TrimSpace(c.Vendors.LLM.Provider) == "" {
		return fmt.Errorf("vendors.llm.provider is required")
	}
	return nil
}

// BufferConfig translates the audio section into buffer parameters.
func (c *Config) BufferConfig() audio.BufferConfig {
	return audio.BufferConfig{
		SampleRate:    c.Audio.SampleRate,
		Channels:      c.Audio.Channels,
		BitsPerSample: c.Audio.BitsPerSample,
		MinDuration:   time.Duration(c.Audio.MinUtteranceMS) * time.Millisecond,
		SilenceRMS:    c.Audio.SilenceRMS,
	}
}

// EngineConfig translates the interview section into engine parameters.
func (c *Config) EngineConfig() interview.EngineConfig {
	return interview.EngineConfig{
		TurnTimeout:     time.Duration(c.Interview.TurnTimeoutMS) * time.Millisecond,
		InterviewerName: c.Interview.InterviewerName,
	}
}

func expandSettings(settings map[string]any) map[string]any {
	if settings == nil {
		return nil
	}
	for k, v := range settings {
		if s, ok := v.(string); ok {
			settings[k] = os.ExpandEnv(s)
		}
	}
	return settings
}
