package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("RATING_MIN_SCORE", "")
	t.Setenv("DISPATCH_LOCK_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 1, cfg.Rating.MinScore)
	assert.Equal(t, 5, cfg.Rating.MaxScore)
	assert.Equal(t, 30*time.Second, cfg.Dispatch.LockTTL)
	assert.Equal(t, "*/30 * * * * *", cfg.Dispatch.Schedule)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("RATING_MIN_SCORE", "0")
	t.Setenv("RATING_MAX_SCORE", "10")
	t.Setenv("DISPATCH_LOCK_TTL", "5s")
	t.Setenv("ENABLE_AUTO_DISPATCH", "true")
	t.Setenv("REDIS_ENABLED", "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 0, cfg.Rating.MinScore)
	assert.Equal(t, 10, cfg.Rating.MaxScore)
	assert.Equal(t, 5*time.Second, cfg.Dispatch.LockTTL)
	assert.True(t, cfg.Dispatch.AutoDispatch)
	assert.True(t, cfg.Redis.Enabled, "unparsable bool falls back to the default")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Store:    StoreConfig{Driver: DriverPostgres},
			Database: DatabaseConfig{Host: "db", Name: "delivery"},
			Rating:   RatingConfig{MinScore: 1, MaxScore: 5},
			Dispatch: DispatchConfig{LockTTL: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"memory needs no database", func(c *Config) { c.Store.Driver = DriverMemory; c.Database = DatabaseConfig{} }, ""},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }, "STORE_DRIVER"},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, "DB_HOST"},
		{"redis without host", func(c *Config) { c.Redis.Enabled = true }, "REDIS_HOST"},
		{"inverted rating range", func(c *Config) { c.Rating.MinScore = 6 }, "RATING_MIN_SCORE"},
		{"zero lock ttl", func(c *Config) { c.Dispatch.LockTTL = 0 }, "DISPATCH_LOCK_TTL"},
		{"auto dispatch without schedule", func(c *Config) { c.Dispatch.AutoDispatch = true }, "DISPATCH_SCHEDULE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
