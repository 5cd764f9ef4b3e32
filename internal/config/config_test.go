package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "credit-ledger-service", cfg.App.Name)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 1000, cfg.Ledger.StartingBalance)
	assert.Equal(t, "http://127.0.0.1:5000", cfg.Backend.BaseURL)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PROFILE_STORE_DRIVER", "redis")
	t.Setenv("LEDGER_STARTING_BALANCE", "500")
	t.Setenv("APP_PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, 500, cfg.Ledger.StartingBalance)
	assert.Equal(t, "0.0.0.0:9000", cfg.App.Addr())
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("LEDGER_STARTING_BALANCE", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Ledger.StartingBalance)
}

func TestLoad_InvalidRedisDBErrors(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
