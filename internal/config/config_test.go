package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagsThenEnv(t *testing.T) {
	cfg := Default()
	fs := pflag.NewFlagSet("recall", pflag.ContinueOnError)
	cfg.BindFlags(fs)

	require.NoError(t, fs.Parse([]string{"--file", "flag.jsonl", "--store", "memory", "--timeout", "5s"}))
	assert.Equal(t, "flag.jsonl", cfg.FileStoragePath)
	assert.Equal(t, "memory", cfg.SyncStore)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)

	t.Setenv("FILE_STORAGE_PATH", "env.jsonl")
	t.Setenv("HTTP_TIMEOUT", "2s")
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "env.jsonl", cfg.FileStoragePath)
	assert.Equal(t, 2*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "memory", cfg.SyncStore, "unset env keeps the flag value")
}

func TestApplyEnvBadTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")
	assert.Error(t, Default().ApplyEnv())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.SyncStore = "postgres"
	assert.Error(t, cfg.Validate())
	cfg.DatabaseDSN = "postgres://localhost/recall"
	assert.NoError(t, cfg.Validate())

	cfg.SyncStore = "redis"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.LocalStore = "postgres"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.HTTPTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestServerOverride(t *testing.T) {
	cfg := Default()
	fs := pflag.NewFlagSet("recall", pflag.ContinueOnError)
	cfg.BindFlags(fs)

	require.NoError(t, fs.Parse([]string{"-s", "http://flag:8000"}))
	assert.Equal(t, "http://flag:8000", cfg.ServerURL)

	t.Setenv("RECALL_SERVER", "http://env:8000")
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "http://env:8000", cfg.ServerURL)
}
