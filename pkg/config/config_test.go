package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("AI_MODEL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("APP_ENV", "")

	cfg := Load()

	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	assert.Equal(t, "", cfg.Redis.URL)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.False(t, cfg.IsProduction())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("AI_PROVIDER", "http")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("SUGGESTION_RATE_BURST", "7")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	assert.Equal(t, "http", cfg.AI.Provider)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 7, cfg.Security.SuggestionBurst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
	assert.True(t, cfg.Observability.TracingEnabled)
	assert.True(t, cfg.IsProduction())
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "lots")
	t.Setenv("IDENTITY_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 20, cfg.Database.MaxConns)
	assert.Equal(t, 10*time.Second, cfg.Identity.Timeout)
}
