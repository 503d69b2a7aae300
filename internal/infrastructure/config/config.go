package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration

	DBPath string

	// Content provider (OpenAI-compatible endpoint). The same endpoint
	// serves generation and grading; temperature differs per use.
	LLMBaseURL string // e.g. "http://localhost:1234/v1"
	LLMAPIKey  string // empty for local endpoints
	LLMModel   string // e.g. "qwen3-8b"

	ReviewRetentionDays int
	CurveballAfterDays  int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()
	return &Config{
		ServerAddress:       mustGetenv("SERVER_ADDRESS"),
		ShutdownTimeout:     mustGetDuration("SHUTDOWN_TIMEOUT"),
		DBPath:              getenvDefault("DB_PATH", "ideaforge.db"),
		LLMBaseURL:          getenvDefault("LLM_BASE_URL", "http://localhost:1234/v1"),
		LLMAPIKey:           os.Getenv("LLM_API_KEY"),
		LLMModel:            getenvDefault("LLM_MODEL", "qwen3-8b"),
		ReviewRetentionDays: getenvInt("REVIEW_RETENTION_DAYS", 30),
		CurveballAfterDays:  getenvInt("CURVEBALL_AFTER_DAYS", 7),
	}
}

func mustGetenv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	return v
}

func mustGetDuration(k string) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid integer: %v", k, v, err)
	}
	return n
}
