package config

import (
	"strings"
	"testing"
	"time"

	"github.com/jotsum/jotsum/internal/ratelimit"
	"pgregory.net/rapid"
)

func validTestConfig() Config {
	return Config{
		NoAI:            true,
		NoAuth:          true,
		MasterKey:       strings.Repeat("a", 64),
		TokenTTL:        30 * 24 * time.Hour,
		RateLimitConfig: defaultRateLimitConfig(),
	}
}

func defaultRateLimitConfig() ratelimit.Config {
	return ratelimit.Config{
		RPS:             1,
		Burst:           5,
		CleanupInterval: time.Hour,
	}
}

func TestValidate_MockModeMinimalConfigPasses(t *testing.T) {
	t.Parallel()
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid mock-mode config, got error: %v", err)
	}
}

func TestValidate_RequiresOpenAIKeyWhenNotMocked(t *testing.T) {
	t.Parallel()
	cfg := validTestConfig()
	cfg.NoAI = false
	cfg.OpenAIAPIKey = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error when the real summarizer is enabled without a key")
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected validation error to mention OPENAI_API_KEY, got: %v", err)
	}
}

func TestValidate_RequiresMasterKey(t *testing.T) {
	t.Parallel()

	cfg := validTestConfig()
	cfg.MasterKey = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "MASTER_KEY") {
		t.Fatalf("expected MASTER_KEY error, got: %v", err)
	}
}

func testValidate_RejectsInvalidMasterKeyLengths(t *rapid.T) {
	cfg := validTestConfig()

	length := rapid.IntRange(1, 128).Draw(t, "length")
	if length == 64 {
		length = 63
	}
	cfg.MasterKey = strings.Repeat("a", length)

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error for master key of length %d", length)
	}
	if !strings.Contains(err.Error(), "MASTER_KEY must be 64 hex characters") {
		t.Fatalf("expected length error, got: %v", err)
	}
}

func TestValidate_RejectsInvalidMasterKeyLengths(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testValidate_RejectsInvalidMasterKeyLengths)
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := Config{NoAI: false, NoAuth: false}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors for empty config")
	}

	var vErr *ValidationError
	if !strings.Contains(err.Error(), "configuration validation failed") {
		t.Fatalf("unexpected error format: %v", err)
	}
	if e, ok := err.(*ValidationError); ok {
		vErr = e
	} else {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(vErr.Errors) < 3 {
		t.Fatalf("expected multiple collected errors, got %d: %v", len(vErr.Errors), vErr.Errors)
	}
}

func TestValidate_RejectsNonPositiveRateLimits(t *testing.T) {
	t.Parallel()

	cfg := validTestConfig()
	cfg.RateLimitConfig.RPS = 0
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "RATE_LIMIT_RPS") {
		t.Fatalf("expected RATE_LIMIT_RPS error, got: %v", err)
	}

	cfg = validTestConfig()
	cfg.RateLimitConfig.Burst = -1
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "RATE_LIMIT_BURST") {
		t.Fatalf("expected RATE_LIMIT_BURST error, got: %v", err)
	}
}

func TestLoadConfig_DefaultsAndAddrOverride(t *testing.T) {
	t.Setenv("MASTER_KEY", strings.Repeat("f", 64))
	t.Setenv("LISTEN_ADDR", ":9999")

	cfg, err := LoadConfig(true, true, "")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ListenAddr != ":9999" {
		t.Fatalf("expected LISTEN_ADDR to apply, got %q", cfg.ListenAddr)
	}
	if cfg.BaseURL != "http://localhost:9999" {
		t.Fatalf("unexpected derived base URL: %q", cfg.BaseURL)
	}
	if cfg.DataDir != "./data" {
		t.Fatalf("unexpected default data dir: %q", cfg.DataDir)
	}
	if cfg.SummaryModel != "gpt-5-mini" {
		t.Fatalf("unexpected default model: %q", cfg.SummaryModel)
	}

	// The --addr flag wins over the env var
	cfg, err = LoadConfig(true, true, ":7777")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ListenAddr != ":7777" {
		t.Fatalf("expected addr flag to win, got %q", cfg.ListenAddr)
	}
}
