package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8190), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultOpenLibraryBaseURL, cfg.OpenLibrary.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.OpenLibrary.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 2, cfg.Search.MinQueryLength)
	assert.Equal(t, "", cfg.Search.InitialQuery)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.IdleTimeout)
	assert.True(t, cfg.Tasks.Enabled)
	assert.Equal(t, "0 3 * * *", cfg.Refresh.Schedule)
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_PATH", "/data/books.db")
	t.Setenv("OPENLIBRARY_RATE_LIMIT", "0")
	t.Setenv("SEARCH_DEBOUNCE", "250ms")
	t.Setenv("SEARCH_INITIAL_QUERY", "tolkien")
	t.Setenv("TASKS_ENABLED", "false")
	t.Setenv("REFRESH_SCHEDULE", "@hourly")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, "/data/books.db", cfg.Database.Path)
	assert.Zero(t, cfg.OpenLibrary.RateLimit)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, "tolkien", cfg.Search.InitialQuery)
	assert.False(t, cfg.Tasks.Enabled)
	assert.Equal(t, "@hourly", cfg.Refresh.Schedule)
}
