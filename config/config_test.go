package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "3002", cfg.AppPort)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.RedisEnabled)
	assert.Equal(t, "channel:atendimentos", cfg.RedisChannel)
	assert.Equal(t, time.Duration(0), cfg.SimulatorEvery)
	assert.Equal(t, 256, cfg.ClientSendBuffer)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, http://localhost:3001,")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SEED_DEMO_DATA", "1")
	t.Setenv("SIMULATOR_INTERVAL_SEC", "15")

	cfg := LoadConfig()

	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, cfg.CORSOrigins)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.SeedDemoData)
	assert.Equal(t, 15*time.Second, cfg.SimulatorEvery)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("ENABLE_TEST_EVENTS", "maybe")
	t.Setenv("CORS_ORIGINS", " , ")

	cfg := LoadConfig()

	assert.Equal(t, 0, cfg.RedisDB)
	assert.False(t, cfg.EnableTestEvents)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}
