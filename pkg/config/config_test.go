package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, int64(20)<<20, cfg.Server.MaxUploadBytes)
	assert.Equal(t, 20, cfg.Server.RateLimitPerSecond)
	assert.Equal(t, 40, cfg.Server.RateLimitBurst)

	assert.Empty(t, cfg.LLM.BaseURL)
	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout)

	assert.Equal(t, time.Hour, cfg.Jobs.TTL)
	assert.Equal(t, "*/10 * * * *", cfg.Jobs.ReapSchedule)

	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.False(t, cfg.Observability.OTelEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_MAX_UPLOAD_MB", "5")
	t.Setenv("LLM_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("LLM_MODEL", "mistral")
	t.Setenv("LLM_TIMEOUT_SECONDS", "30")
	t.Setenv("JOB_TTL_MINUTES", "15")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, int64(5)<<20, cfg.Server.MaxUploadBytes)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "mistral", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 15*time.Minute, cfg.Jobs.TTL)
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
}

func TestLoadModelRequiredWithBaseURL(t *testing.T) {
	t.Setenv("LLM_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("LLM_MODEL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_MODEL")
}
