package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 100, cfg.Server.ResolveLimit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "https://api.lightspeedapp.com/API/V3", cfg.Retail.BaseURL)
	assert.Equal(t, 250, cfg.Retail.RateLimitMs)
	assert.Equal(t, 3, cfg.Ecom.MaxAttempts)
	assert.Equal(t, "append", cfg.Ecom.ImageMode)
	assert.Equal(t, 4, cfg.Sync.Concurrency)
	assert.Equal(t, "first_found", cfg.Sync.DuplicatePolicy)
	assert.Equal(t, "file", cfg.Cache.Driver)
	assert.Equal(t, 6379, cfg.Redis.Port)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("RETAIL_ACCESS_TOKEN", "tok")
	t.Setenv("RETAIL_RATE_LIMIT_MS", "500")
	t.Setenv("ECOM_IMAGE_MODE", "replace")
	t.Setenv("SYNC_CONCURRENCY", "8")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.Retail.AccessToken)
	assert.Equal(t, 500, cfg.Retail.RateLimitMs)
	assert.Equal(t, "replace", cfg.Ecom.ImageMode)
	assert.Equal(t, 8, cfg.Sync.Concurrency)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	// Registered first so the value Overload writes is restored afterwards.
	t.Setenv("ECOM_SHOP_ID", "")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ECOM_SHOP_ID=42\n"), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "42", cfg.Ecom.ShopID)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("SYNC_CONCURRENCY", "50")

	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestBindValues_Squash(t *testing.T) {
	type inner struct {
		Attempts int `mapstructure:"attempts" default:"3"`
	}
	type outer struct {
		Name  string `mapstructure:"name" default:"x"`
		inner `mapstructure:",squash"`
	}
	type root struct {
		Section outer `mapstructure:"section"`
	}

	v := viper.New()
	bindValues(v, root{}, "")

	assert.Equal(t, "x", v.GetString("section.name"))
	assert.Equal(t, 3, v.GetInt("section.attempts"))
	assert.False(t, v.IsSet("section.inner.attempts"))
}
