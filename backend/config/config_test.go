package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "AI_TIMEOUT_SECONDS", "PRACTICE_CACHE_TTL_MINUTES", "GEMINI_MODEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Equal(t, 24*time.Hour, cfg.PracticeCacheTTL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/lms.db")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("AI_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("GEMINI_MODEL", "gemini-test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/lms.db", cfg.SQLitePath)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Equal(t, "gemini-test", cfg.GeminiModel)
}
