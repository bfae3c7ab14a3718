package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORAGE_DRIVER", "STORAGE_KEY", "METRICS_ENABLED", "WRITE_LIMIT_PER_MIN", "ADMIN_JWT_SECRET"} {
		t.Setenv(k, "")
	}

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, "products", cfg.StorageKey)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, 30, cfg.WriteLimit)
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", " File ")
	v.Set("STORAGE_DIR", t.TempDir())
	v.Set("WRITE_LIMIT_PER_MIN", 5)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, DriverFile, cfg.StorageDriver)
	assert.Equal(t, 5, cfg.WriteLimit)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]map[string]any{
		"unknown driver":    {"STORAGE_DRIVER": "redis"},
		"postgres no dsn":   {"STORAGE_DRIVER": "postgres", "DATABASE_URL": ""},
		"short jwt secret":  {"ADMIN_JWT_SECRET": "short"},
		"empty storage key": {"STORAGE_KEY": ""},
	}

	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			for k, val := range values {
				v.Set(k, val)
			}
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}
