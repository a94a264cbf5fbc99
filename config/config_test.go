package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	cfg, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Command)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.JWT.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ANALYSIS_CACHE_TTL", "30m")
	t.Setenv("MAIL_TIMEOUT", "3s")
	t.Setenv("APP_ENV", "development")

	cfg, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 3*time.Second, cfg.Timeouts.Mail)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadEnvRejectsMalformedDuration(t *testing.T) {
	t.Setenv("COMMAND_TIMEOUT", "soon")
	_, err := LoadEnv()
	assert.Error(t, err)
}
