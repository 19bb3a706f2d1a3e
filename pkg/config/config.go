package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	LLM           LLMConfig
	Jobs          JobsConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	MaxUploadBytes     int64
	RateLimitPerSecond int
	RateLimitBurst     int
}

// LLMConfig points at an OpenAI-compatible chat completion endpoint used
// when positional extraction comes up empty. An empty BaseURL disables
// the fallback entirely.
type LLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type JobsConfig struct {
	TTL          time.Duration
	ReapSchedule string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	OTelEnabled    bool
}

// Load reads configuration from the environment, with .env files applied
// first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "0.0.0.0"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			MaxUploadBytes:     int64(getEnvAsInt("SERVER_MAX_UPLOAD_MB", 20)) << 20,
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 40),
		},
		LLM: LLMConfig{
			BaseURL: getEnv("LLM_BASE_URL", ""),
			APIKey:  getEnv("LLM_API_KEY", ""),
			Model:   getEnv("LLM_MODEL", ""),
			Timeout: time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,
		},
		Jobs: JobsConfig{
			TTL:          time.Duration(getEnvAsInt("JOB_TTL_MINUTES", 60)) * time.Minute,
			ReapSchedule: getEnv("JOB_REAP_SCHEDULE", "*/10 * * * *"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			OTelEnabled:    getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid SERVER_PORT %d", cfg.Server.Port)
	}
	if cfg.LLM.BaseURL != "" && cfg.LLM.Model == "" {
		return nil, fmt.Errorf("LLM_MODEL is required when LLM_BASE_URL is set")
	}

	return cfg, nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
