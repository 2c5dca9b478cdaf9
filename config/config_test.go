package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "gross_price", cfg.Pricing.DiscountBasis)
	assert.Equal(t, "gross_price", cfg.Pricing.GrossMarginBasis)
	assert.Equal(t, 5*time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, 2*time.Hour, cfg.Session.MaxIdle)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DISCOUNT_BASIS", "net_price")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "net_price", cfg.Pricing.DiscountBasis)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
