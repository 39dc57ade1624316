package hireloop

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hireloop.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test-123")
	path := writeConfig(t, `
vendors:
  llm:
    provider: openai
    settings:
      api_key: ${TEST_OPENAI_KEY}
  stt:
    provider: mock
  tts:
    provider: mock
interview:
  turn_timeout_ms: 15000
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Server.Addr)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.SilenceRMS != 0.01 {
		t.Fatalf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if got := cfg.Vendors.LLM.Settings["api_key"]; got != "sk-test-123" {
		t.Fatalf("expected env-expanded api key, got %v", got)
	}
	if cfg.EngineConfig().TurnTimeout != 15*time.Second {
		t.Fatalf("unexpected turn timeout: %v", cfg.EngineConfig().TurnTimeout)
	}
	buf := cfg.BufferConfig()
	if buf.MinDuration != 500*time.Millisecond || buf.Channels != 1 {
		t.Fatalf("unexpected buffer config: %+v", buf)
	}
}

func TestLoadConfigRequiresProviders(t *testing.T) {
	path := writeConfig(t, `
vendors:
  llm:
    provider: openai
  tts:
    provider: mock
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected validation error for missing stt provider")
	}
}
