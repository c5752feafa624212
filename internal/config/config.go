// Package config provides centralized configuration management for the jotsum server.
// It loads configuration from CLI flags and environment variables, validates required
// fields, and provides sensible defaults.
//
// CLI flags control which services are mocked (--no-ai, --no-auth).
// Environment variables provide secrets and service configuration.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jotsum/jotsum/internal/ratelimit"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	ListenAddr string
	BaseURL    string

	// Database and encryption
	MasterKey string // 64 hex characters (32 bytes)
	DataDir   string // Directory for per-user databases (e.g., ./data/{user_id}/notes.db)

	// API tokens
	TokenTTL time.Duration // How long issued API tokens remain valid

	// Summary generation
	OpenAIAPIKey string
	SummaryModel string

	// Rate limiting for summary routes
	RateLimitConfig ratelimit.Config

	// Mock service flags (controlled by CLI flags, not env vars)
	NoAI   bool // If true, use mock summarizer (--no-ai)
	NoAuth bool // If true, skip token auth and act as a fixed dev user (--no-auth)
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// ParseFlags parses CLI flags and returns them. Call before LoadConfig.
// This registers and parses --no-ai, --no-auth, and --addr flags.
func ParseFlags() (noAI, noAuth bool, addr string) {
	flag.BoolVar(&noAI, "no-ai", false, "Use mock summarizer (no OpenAI calls)")
	flag.BoolVar(&noAuth, "no-auth", false, "Skip token auth, act as a fixed dev user")
	flag.StringVar(&addr, "addr", "", "Listen address (default :8080, overrides LISTEN_ADDR env var)")
	flag.Parse()

	return noAI, noAuth, addr
}

// LoadConfig loads configuration from environment variables and CLI flag values.
// The noAI and noAuth flags control which services use mocks.
// The addr flag overrides the LISTEN_ADDR env var if non-empty.
func LoadConfig(noAI, noAuth bool, addr string) (*Config, error) {
	cfg := &Config{}

	// CLI flag values
	cfg.NoAI = noAI
	cfg.NoAuth = noAuth

	// Server settings
	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", ":8080")
	if addr != "" {
		cfg.ListenAddr = addr
	}
	cfg.BaseURL = strings.TrimSpace(os.Getenv("BASE_URL"))
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost" + cfg.ListenAddr
	}

	// Database and encryption
	cfg.MasterKey = os.Getenv("MASTER_KEY")
	cfg.DataDir = getEnvOrDefault("DATA_DIR", "./data")

	// API tokens
	cfg.TokenTTL = parseDurationOrDefault("TOKEN_TTL", 30*24*time.Hour)

	// Summary generation
	cfg.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.SummaryModel = getEnvOrDefault("SUMMARY_MODEL", "gpt-5-mini")

	// Rate limiting (summary routes only)
	cfg.RateLimitConfig = ratelimit.Config{
		RPS:             parseFloat64OrDefault("RATE_LIMIT_RPS", 1),
		Burst:           parseIntOrDefault("RATE_LIMIT_BURST", 5),
		CleanupInterval: parseDurationOrDefault("RATE_LIMIT_CLEANUP_INTERVAL", time.Hour),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
// When mocks are NOT active for a service, the corresponding secrets are required.
func (c *Config) Validate() error {
	var errs []string

	// Summaries: require OpenAI key unless --no-ai
	if !c.NoAI {
		if c.OpenAIAPIKey == "" {
			errs = append(errs, "OPENAI_API_KEY is required (set env var or use --no-ai)")
		}
	}

	// MasterKey: always required (losing it = all user DBs unreadable)
	if c.MasterKey == "" {
		errs = append(errs, "MASTER_KEY is required (generate with: openssl rand -hex 32)")
	} else if len(c.MasterKey) != 64 {
		errs = append(errs, "MASTER_KEY must be 64 hex characters (32 bytes)")
	}

	if c.TokenTTL <= 0 {
		errs = append(errs, "TOKEN_TTL must be positive")
	}

	// Validate rate limit config
	if c.RateLimitConfig.RPS <= 0 {
		errs = append(errs, "RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimitConfig.Burst <= 0 {
		errs = append(errs, "RATE_LIMIT_BURST must be positive")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

// IsProduction returns true if all mock services are disabled.
func (c *Config) IsProduction() bool {
	return !c.NoAI && !c.NoAuth
}

// PrintStartupSummary prints a human-readable summary of the configuration to stderr.
func (c *Config) PrintStartupSummary() {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "jotsum server starting...")

	// Auth
	if c.NoAuth {
		fmt.Fprintln(os.Stderr, "  Auth:      Disabled, fixed dev user (--no-auth)")
	} else {
		fmt.Fprintln(os.Stderr, "  Auth:      Bearer tokens (real)")
	}

	// Summaries
	if c.NoAI {
		fmt.Fprintln(os.Stderr, "  Summaries: Mock (--no-ai)")
	} else {
		fmt.Fprintf(os.Stderr, "  Summaries: OpenAI (real, model: %s)\n", c.SummaryModel)
	}

	// Master key
	fmt.Fprintln(os.Stderr, "  Master:    From MASTER_KEY env var")

	// Listen address
	fmt.Fprintf(os.Stderr, "  Data:      %s\n", c.DataDir)
	fmt.Fprintf(os.Stderr, "  Listen:    %s\n", c.ListenAddr)
	fmt.Fprintf(os.Stderr, "  Base:      %s\n", c.BaseURL)
	fmt.Fprintln(os.Stderr, "")
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// MustLoadConfig loads configuration and panics if validation fails.
// Use this in main() when you want the application to fail fast on bad config.
func MustLoadConfig(noAI, noAuth bool, addr string) *Config {
	cfg, err := LoadConfig(noAI, noAuth, addr)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			panic(fmt.Sprintf("Configuration validation failed:\n  - %s", strings.Join(validationErr.Errors, "\n  - ")))
		}
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return cfg
}
