package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lujangrego99/kiosco-sub000/internal/config"
)

func TestLoadAplicaDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "kiosco.db", cfg.DBPath)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, 10*time.Second, cfg.ProbeInterval)
	assert.Equal(t, 4, cfg.PushConcurrency)
	assert.NotEmpty(t, cfg.APIBaseURL)
}

func TestLoadLeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("KIOSCO_API_URL", "https://api.kiosco.test/v1")
	t.Setenv("KIOSCO_PUSH_CONCURRENCY", "2")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.kiosco.test/v1", cfg.APIBaseURL)
	assert.Equal(t, 2, cfg.PushConcurrency)
}
