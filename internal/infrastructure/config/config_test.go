package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(100), cfg.MinWithdrawal)
	assert.Equal(t, int64(50000), cfg.MaxWithdrawal)
	assert.Equal(t, int64(20000), cfg.MaxTransfer)
	assert.Equal(t, int64(50000), cfg.DailyTransferCap)
	assert.Equal(t, int64(1000), cfg.MinBalance)
	assert.Equal(t, int64(10000), cfg.StepUpThreshold)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LIMIT_MAX_TRANSFER", "30000")
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, int64(30000), cfg.MaxTransfer)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
}

func TestLimits(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	limits := cfg.Limits()
	assert.True(t, limits.MaxTransfer.Equal(decimal.NewFromInt(20000)))
	assert.True(t, limits.StepUpThreshold.Equal(decimal.NewFromInt(10000)))
}
