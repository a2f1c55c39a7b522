package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// clear whatever the host environment carries; t.Setenv registers the
	// restore, the unset makes the variable truly absent
	for _, key := range []string{
		"HTTP_PORT", "LOG_LEVEL", "DATABASE_DRIVER", "DATABASE_URL",
		"CORS_ORIGINS", "ROOM_TTL", "EVICTION_INTERVAL", "SEND_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "sqlite3", cfg.DatabaseDriver)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Minute, cfg.RoomTTL)
	assert.Equal(t, 5*time.Second, cfg.SendTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/cardtable")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080")
	t.Setenv("ROOM_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "postgres://localhost:5432/cardtable", cfg.DatabaseURL)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:8080"}, cfg.CORSOrigins)
	assert.Equal(t, time.Hour, cfg.RoomTTL)
}
