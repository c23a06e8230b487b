package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	KeyAlphaVantage    = "ALPHA_VANTAGE_API_KEY"
	KeyOpenAI          = "OPENAI_API_KEY"
	KeyAnthropic       = "ANTHROPIC_API_KEY"
	KeyLLMProvider     = "LLM_PROVIDER"
	KeyLLMModel        = "LLM_MODEL"
	KeyDatabaseURL     = "DATABASE_URL"
	KeyRedisURL        = "REDIS_URL"
	KeySupabaseURL     = "SUPABASE_URL"
	KeySupabaseAnonKey = "SUPABASE_ANON_KEY"
	KeyFinnhub         = "FINNHUB_API_KEY"
	KeyFrontendURL     = "FRONTEND_URL"
	KeyPort            = "PORT"
	KeyLogLevel        = "LOG_LEVEL"
	KeyLogFormat       = "LOG_FORMAT"
	KeyTracingEnabled  = "TRACING_ENABLED"
	KeyAlphaVantageRPM = "ALPHA_VANTAGE_RPM"
)

var ErrMissing = errors.New("missing configuration")

// MissingError names the first required key that was not set.
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return "Missing configuration: " + e.Key
}

func (e *MissingError) Unwrap() error {
	return ErrMissing
}

type Config struct {
	AlphaVantageKey string
	OpenAIKey       string
	AnthropicKey    string
	LLMProvider     string
	LLMModel        string
	DatabaseURL     string
	RedisURL        string
	SupabaseURL     string
	SupabaseAnonKey string
	FinnhubKey      string
	FrontendURL     string
	Port            string
	LogLevel        string
	LogFormat       string
	TracingEnabled  bool
	AlphaVantageRPM int
}

// Load reads a .env file when one exists and then the process environment.
// Missing keys are not an error here; routes check what they need with
// Require.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}
	return FromEnv()
}

func FromEnv() *Config {
	return &Config{
		AlphaVantageKey: env(KeyAlphaVantage, ""),
		OpenAIKey:       env(KeyOpenAI, ""),
		AnthropicKey:    env(KeyAnthropic, ""),
		LLMProvider:     strings.ToLower(env(KeyLLMProvider, "openai")),
		LLMModel:        env(KeyLLMModel, ""),
		DatabaseURL:     env(KeyDatabaseURL, ""),
		RedisURL:        env(KeyRedisURL, ""),
		SupabaseURL:     strings.TrimRight(env(KeySupabaseURL, ""), "/"),
		SupabaseAnonKey: env(KeySupabaseAnonKey, ""),
		FinnhubKey:      env(KeyFinnhub, ""),
		FrontendURL:     env(KeyFrontendURL, ""),
		Port:            env(KeyPort, "8080"),
		LogLevel:        env(KeyLogLevel, "INFO"),
		LogFormat:       env(KeyLogFormat, "json"),
		TracingEnabled:  envBool(KeyTracingEnabled),
		AlphaVantageRPM: envInt(KeyAlphaVantageRPM),
	}
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	b, err := strconv.ParseBool(env(key, "false"))
	return err == nil && b
}

func envInt(key string) int {
	raw := env(key, "")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("ignoring non-numeric setting", "key", key, "value", raw)
		return 0
	}
	return n
}

// LLMKeyName is the API key setting for the configured provider.
func (c *Config) LLMKeyName() string {
	if c.LLMProvider == "anthropic" {
		return KeyAnthropic
	}
	return KeyOpenAI
}

// LLMKey is the API key for the configured provider.
func (c *Config) LLMKey() string {
	if c.LLMProvider == "anthropic" {
		return c.AnthropicKey
	}
	return c.OpenAIKey
}

func (c *Config) value(key string) (string, bool) {
	switch key {
	case KeyAlphaVantage:
		return c.AlphaVantageKey, true
	case KeyOpenAI:
		return c.OpenAIKey, true
	case KeyAnthropic:
		return c.AnthropicKey, true
	case KeyDatabaseURL:
		return c.DatabaseURL, true
	case KeyRedisURL:
		return c.RedisURL, true
	case KeySupabaseURL:
		return c.SupabaseURL, true
	case KeySupabaseAnonKey:
		return c.SupabaseAnonKey, true
	case KeyFinnhub:
		return c.FinnhubKey, true
	}
	return "", false
}

// Require returns a *MissingError for the first key in keys that is empty.
func (c *Config) Require(keys ...string) error {
	for _, key := range keys {
		v, known := c.value(key)
		if !known {
			return fmt.Errorf("unknown configuration key %s", key)
		}
		if v == "" {
			return &MissingError{Key: key}
		}
	}
	return nil
}
