package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "sqlite", cfg.DBDriver)
	require.Equal(t, "taskboard.db", cfg.DBDSN)
	require.Equal(t, 120*time.Minute, cfg.TokenExpiry)
	require.Equal(t, 10*time.Minute, cfg.FeedInterval)
	require.Equal(t, 30*time.Second, cfg.FeedFetchTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("JWT_EXPIRE_MINUTES", "30")
	t.Setenv("FEED_REFRESH_INTERVAL", "1m")

	cfg := Load()

	require.Equal(t, ":9000", cfg.HTTPAddr)
	require.Equal(t, "postgres", cfg.DBDriver)
	require.Equal(t, 30*time.Minute, cfg.TokenExpiry)
	require.Equal(t, time.Minute, cfg.FeedInterval)
}
