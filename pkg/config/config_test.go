package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "Admin", cfg.Relay.SentinelAuthor)
	require.Equal(t, "webhookData", cfg.Store.Collection)
	require.Equal(t, time.Second, cfg.BroadcastStep())
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()
	err := applyEnv(&cfg, envMap(map[string]string{
		"PORT":              "8080",
		"STORE_DRIVER":      "postgres",
		"DATABASE_URL":      "postgres://relay@localhost/relay?sslmode=disable",
		"REDIS_URL":         "redis://localhost:6379",
		"SINK_DRIVER":       "redis",
		"SENTINEL_AUTHOR":   "Clinic",
		"BROADCAST_STEP_MS": "250",
	}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, StorePostgres, cfg.Store.Driver)
	require.Equal(t, SinkRedis, cfg.Sink.Driver)
	require.Equal(t, "Clinic", cfg.Relay.SentinelAuthor)
	require.Equal(t, 250*time.Millisecond, cfg.BroadcastStep())
}

func TestApplyEnvRejectsBadStep(t *testing.T) {
	cfg := Default()
	err := applyEnv(&cfg, envMap(map[string]string{"BROADCAST_STEP_MS": "soon"}))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store", func(c *Config) { c.Store.Driver = "firestore" }},
		{"postgres without url", func(c *Config) { c.Store.Driver = StorePostgres }},
		{"mongo without database", func(c *Config) { c.Store.MongoDatabase = "" }},
		{"no collection", func(c *Config) { c.Store.Collection = "" }},
		{"unknown sink", func(c *Config) { c.Sink.Driver = "kafka" }},
		{"redis sink without redis", func(c *Config) { c.Sink.Driver = SinkRedis }},
		{"empty sentinel", func(c *Config) { c.Relay.SentinelAuthor = "" }},
		{"negative step", func(c *Config) { c.Relay.BroadcastStepMs = -1 }},
		{"no port", func(c *Config) { c.Server.Port = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestValidateAllowsMemoryStoreAndZeroStep(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = StoreMemory
	cfg.Relay.BroadcastStepMs = 0
	require.NoError(t, cfg.Validate())
}

func TestLoadWithoutFileUsesEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", StoreMemory)
	t.Setenv("PORT", "9999")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, StoreMemory, cfg.Store.Driver)
	require.Equal(t, "9999", cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
