package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigRequiresGatewayTarget(t *testing.T) {
	t.Setenv("GATEWAY_TARGET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GATEWAY_TARGET", "192.168.1.1:80")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.CacheDuration)
	assert.Equal(t, time.Second, cfg.ProviderMinInterval)
	assert.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 5*time.Second, cfg.SampleInterval)
	assert.Equal(t, 30*time.Second, cfg.ISPCheckInterval)
	assert.Equal(t, 60*time.Second, cfg.GatewayProbeInterval)
	assert.Equal(t, "1.1.1.1:443", cfg.LatencyTarget)
	assert.Equal(t, "192.168.1.1:80", cfg.GatewayTarget)
	assert.Contains(t, cfg.SQLitePath, "uplink.db")
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GATEWAY_TARGET", "10.0.0.1:443")
	t.Setenv("CACHE_DURATION", "1m")
	t.Setenv("SAMPLE_INTERVAL", "10")
	t.Setenv("SQLITE_PATH", "/tmp/custom.db")
	t.Setenv("PORT", "8080")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.CacheDuration)
	assert.Equal(t, 10*time.Second, cfg.SampleInterval, "plain numbers are read as seconds")
	assert.Equal(t, "/tmp/custom.db", cfg.SQLitePath)
	assert.Equal(t, "8080", cfg.Port)
}
