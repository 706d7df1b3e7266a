package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SAVE_TIMEOUT", "not-a-duration")
	t.Setenv("MAX_CONCURRENT_WRITES", "x")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.SaveTimeout)
	assert.Equal(t, 8, cfg.MaxConcurrentWrites)
	assert.Equal(t, "8080", cfg.ServerPort)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SAVE_TIMEOUT", "3s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.SaveTimeout)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
}
