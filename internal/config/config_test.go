package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STATE_TABLE", "student-state")
	t.Setenv("PARAM_PREFIX", "/student-agent")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "student-state", cfg.StateTable)
	require.Equal(t, "/student-agent", cfg.ParamPrefix)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.Equal(t, 500, cfg.MaxMessageLength)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.True(t, cfg.IsDev())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STATE_TABLE", "t")
	t.Setenv("PARAM_PREFIX", "/p")
	t.Setenv("APP_ENV", "PROD")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SESSION_TTL", "45s")
	t.Setenv("MAX_MESSAGE_LENGTH", "120")

	cfg, err := Load()
	require.NoError(t, err)
	require.False(t, cfg.IsDev())
	require.Equal(t, 2, cfg.RedisDB)
	require.Equal(t, 45*time.Second, cfg.SessionTTL)
	require.Equal(t, 120, cfg.MaxMessageLength)
}

func TestLoad_RequiresTableAndPrefix(t *testing.T) {
	t.Setenv("STATE_TABLE", "")
	t.Setenv("PARAM_PREFIX", "/p")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("STATE_TABLE", "t")
	t.Setenv("SESSION_TTL", "soon")
	_, err = Load()
	require.Error(t, err)
}
