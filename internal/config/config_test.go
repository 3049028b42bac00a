package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/slotpool/pool"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, "slotpool.yaml", `
pool:
  name: ingest
  workers: 8
  lock_threads: true
retry:
  max_attempts: 4
  initial_delay: 50ms
  backoff: decorrelated
rate_limit:
  per_second: 100
  burst: 10
log:
  level: debug
  file: /tmp/slotpool.log
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "ingest", cfg.Pool.Name)
	assert.Equal(t, 8, cfg.Pool.Workers)
	assert.True(t, cfg.Pool.LockThread)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.Equal(t, "decorrelated", cfg.Retry.Backoff)
	assert.Equal(t, 100.0, cfg.Rate.PerSecond)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Unset fields keep their defaults.
	assert.Equal(t, "5s", cfg.Retry.MaxDelay)
	assert.Equal(t, 3, cfg.Log.MaxBackups)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"unsupported extension", "c.toml", "", "unsupported config format"},
		{"bad yaml", "c.yaml", "pool: [", "failed to parse YAML"},
		{"zero workers", "c.yaml", "pool:\n  workers: 0\n", "pool.workers"},
		{"bad duration", "c.yml", "retry:\n  initial_delay: soon\n", "retry.initial_delay"},
		{"negative duration", "c.yml", "retry:\n  max_delay: -1s\n", "retry.max_delay"},
		{"bad backoff", "c.yaml", "retry:\n  backoff: linear\n", "unknown backoff type"},
		{"jitter out of range", "c.yaml", "retry:\n  jitter: 1.5\n", "retry.jitter"},
		{"rate without burst", "c.yaml", "rate_limit:\n  per_second: 5\n", "rate_limit.burst"},
		{"bad level", "c.yaml", "log:\n  level: loud\n", "unknown log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestParseBackoff(t *testing.T) {
	for name, want := range map[string]pool.BackoffType{
		"":             pool.BackoffExponential,
		"Exponential":  pool.BackoffExponential,
		"jittered":     pool.BackoffJittered,
		"DECORRELATED": pool.BackoffDecorrelated,
	} {
		got, err := ParseBackoff(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)
}

func TestPoolOptionsBuildAPool(t *testing.T) {
	cfg := Default()
	cfg.Pool.Name = "from-file"
	cfg.Pool.Workers = 2
	cfg.Rate = RateConfig{PerSecond: 1000, Burst: 10}
	require.NoError(t, cfg.Validate())

	p, err := pool.New(cfg.Pool.Workers, pool.Hooks[int]{
		Routine: func(_ context.Context, _ int) error { return nil },
	}, cfg.PoolOptions()...)
	require.NoError(t, err)
	defer p.Destroy()

	assert.Equal(t, "from-file", p.Name())
	assert.Equal(t, 2, p.WorkerCount())
}
