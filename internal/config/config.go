package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration.
type Config struct {
	Server  ServerConfig
	API     APIConfig
	Storage StorageConfig
	Limits  LimitsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	StaticDir    string
	CORSOrigins  string
}

// APIConfig holds the external generative-language API configuration.
// GeminiAPIKey may be empty at startup: its absence is surfaced as a 500
// on every analyze/extract request rather than a crash.
type APIConfig struct {
	GeminiAPIKey    string
	AnalysisModel   string
	ExtractionModel string
	UpstreamTimeout time.Duration
}

// StorageConfig locates the device-local JSON records.
type StorageConfig struct {
	DataDir string
}

// LimitsConfig holds the per-IP rate limit for upstream-calling endpoints.
type LimitsConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from the environment, loading a .env file first
// if one exists.
func Load() (*Config, error) {
	// Best effort: production sets real env vars, .env is for local dev.
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Server = ServerConfig{
		Address:      getEnvOrDefault("SERVER_ADDRESS", ":8080"),
		ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 2*time.Minute),
		IdleTimeout:  getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
		StaticDir:    getEnvOrDefault("STATIC_DIR", "static"),
		CORSOrigins:  getEnvOrDefault("CORS_ORIGINS", "*"),
	}

	cfg.API = APIConfig{
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		AnalysisModel:   getEnvOrDefault("ANALYSIS_MODEL", ""),
		ExtractionModel: getEnvOrDefault("EXTRACTION_MODEL", ""),
		UpstreamTimeout: getDurationOrDefault("UPSTREAM_TIMEOUT", 60*time.Second),
	}

	cfg.Storage = StorageConfig{
		DataDir: getEnvOrDefault("DATA_DIR", "data"),
	}

	rps, err := strconv.ParseFloat(getEnvOrDefault("RATE_LIMIT_RPS", "2"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	burst, err := strconv.Atoi(getEnvOrDefault("RATE_LIMIT_BURST", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	cfg.Limits = LimitsConfig{
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	}

	if cfg.API.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY is not set; analyze/extract requests will fail")
	}

	return cfg, nil
}

// getEnvOrDefault returns the env value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			log.Printf("Warning: Invalid duration for %s: %v, using default", key, err)
			return defaultValue
		}
		return duration
	}
	return defaultValue
}
