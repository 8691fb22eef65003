// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Name: "POS Backend"},
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{Host: "localhost", Name: "pos", User: "postgres"},
		Redis:    RedisConfig{Host: "localhost"},
		JWT:      JWTConfig{Secret: "a-secret-that-is-at-least-32-chars-long"},
		POS: POSConfig{
			DefaultDiscountLimitPercent: 10,
			CriticalExpiryDays:          7,
			AlertExpiryDays:             30,
			CartTTL:                     12 * time.Hour,
			ServiceCallTimeout:          10 * time.Second,
		},
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid configuration passes", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("short JWT secret fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWT.Secret = "too-short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing database settings fail", func(t *testing.T) {
		for _, mutate := range []func(*Config){
			func(c *Config) { c.Database.Host = "" },
			func(c *Config) { c.Database.Name = "" },
			func(c *Config) { c.Database.User = "" },
		} {
			cfg := validConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		}
	})

	t.Run("missing redis host fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.Redis.Host = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing server port fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("critical window cannot exceed alert window", func(t *testing.T) {
		cfg := validConfig()
		cfg.POS.CriticalExpiryDays = 45
		cfg.POS.AlertExpiryDays = 30
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative expiry windows fail", func(t *testing.T) {
		cfg := validConfig()
		cfg.POS.CriticalExpiryDays = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("discount limit must be a percentage", func(t *testing.T) {
		for _, limit := range []float64{-1, 101} {
			cfg := validConfig()
			cfg.POS.DefaultDiscountLimitPercent = limit
			assert.Error(t, cfg.Validate())
		}
	})
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := validConfig()

	cfg.App.Environment = "development"
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.App.Environment = "production"
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}
