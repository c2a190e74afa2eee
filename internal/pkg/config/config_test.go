package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg := InitConfig("")

	assert.Equal(t, "evgo-dispatch", cfg.App.Name)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "nats", cfg.Broker.Type)
	assert.False(t, cfg.Identity.Enforce)
	assert.Equal(t, 32, cfg.Dispatch.FanoutConcurrency)
	assert.Equal(t, 5*time.Second, cfg.Dispatch.WriteTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Dispatch.ReplayWindow)
	assert.Equal(t, uint32(5), cfg.Dispatch.BreakerThreshold)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Empty(t, cfg.Redis.Host)
	assert.Equal(t, []string{"*"}, cfg.API.CORSAllowOrigins)
}

func TestInitConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("EVENT_BROKER", "nsq")
	t.Setenv("IDENTITY_ENFORCE", "true")
	t.Setenv("DISPATCH_WRITE_TIMEOUT", "750ms")
	t.Setenv("DISPATCH_REPLAY_ENABLED", "false")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://app.evgo.example, ,https://ops.evgo.example")

	cfg := InitConfig("")

	assert.Equal(t, []string{"https://app.evgo.example", "https://ops.evgo.example"}, cfg.API.CORSAllowOrigins)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "nsq", cfg.Broker.Type)
	assert.True(t, cfg.Identity.Enforce)
	assert.Equal(t, 750*time.Millisecond, cfg.Dispatch.WriteTimeout)
	assert.False(t, cfg.Dispatch.ReplayEnabled)
}

func TestInitConfig_LoadsEnvFileLocally(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	path := filepath.Join(t.TempDir(), "dispatch.env")
	require.NoError(t, os.WriteFile(path, []byte("DISPATCH_FANOUT_CONCURRENCY=4\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("DISPATCH_FANOUT_CONCURRENCY") })

	cfg := InitConfig(path)

	assert.Equal(t, 4, cfg.Dispatch.FanoutConcurrency)
}

func TestGetEnvHelpers_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("BAD_INT", "many")
	t.Setenv("BAD_BOOL", "perhaps")
	t.Setenv("BAD_DURATION", "soon")

	assert.Equal(t, 7, GetEnvAsInt("BAD_INT", 7))
	assert.True(t, GetEnvAsBool("BAD_BOOL", true))
	assert.Equal(t, time.Second, GetEnvAsDuration("BAD_DURATION", time.Second))
}
