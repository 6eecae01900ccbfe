package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"kafka:9092", "kafka2:9092"}, CSV(" kafka:9092, ,kafka2:9092 "))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("SF_INT", "42")
	t.Setenv("SF_BAD_INT", "x")
	t.Setenv("SF_DEC", "0.2")
	t.Setenv("SF_NEG_DEC", "-1")
	t.Setenv("SF_DUR", "250ms")

	assert.Equal(t, 42, EnvIntDefault("SF_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("SF_BAD_INT", 1))
	assert.Equal(t, "fallback", EnvDefault("SF_MISSING", "fallback"))
	assert.True(t, decimal.RequireFromString("0.2").Equal(EnvDecimalDefault("SF_DEC", decimal.Zero)))
	assert.True(t, decimal.Zero.Equal(EnvDecimalDefault("SF_NEG_DEC", decimal.Zero)))
	assert.Equal(t, 250*time.Millisecond, EnvDurationDefault("SF_DUR", time.Second))
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("TAX_RATE", "")
	t.Setenv("SHIPPING_FEE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.True(t, decimal.RequireFromString("0.12").Equal(cfg.TaxRate))
	assert.True(t, decimal.RequireFromString("5").Equal(cfg.ShippingFee))
	assert.Equal(t, "product", cfg.ES_INDEX)
	assert.Equal(t, 10000, cfg.SessionCacheSize)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestLoadConfig_SessionCache(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SESSION_CACHE_SIZE", "500")
	t.Setenv("SESSION_TTL", "5m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.SessionCacheSize)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
}
