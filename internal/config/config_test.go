package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.InDelta(t, 0.6, cfg.Library.SearchThreshold, 1e-9)
	assert.Equal(t, 2, cfg.Library.FetchRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Library.RetryDelay)
	assert.Empty(t, cfg.AI.Endpoint)
	assert.Equal(t, "0 */6 * * *", cfg.Scheduler.RefreshSchedule)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LIBRARY_SEARCH_THRESHOLD", "0.75")
	t.Setenv("LIBRARY_RETRY_DELAY", "2s")
	t.Setenv("AI_ENDPOINT", "http://localhost:9999/complete")
	t.Setenv("SESSION_SECURE_COOKIES", "false")
	t.Setenv("LOG_FORMAT", "json")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.InDelta(t, 0.75, cfg.Library.SearchThreshold, 1e-9)
	assert.Equal(t, 2*time.Second, cfg.Library.RetryDelay)
	assert.Equal(t, "http://localhost:9999/complete", cfg.AI.Endpoint)
	assert.False(t, cfg.Session.SecureCookies)
	assert.Equal(t, "json", cfg.Log.Format)
}
