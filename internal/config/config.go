// Package config loads the slotpool CLI configuration file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/utkarsh5026/slotpool/pool"
)

// File is the on-disk layout of the configuration file.
type File struct {
	Pool  PoolConfig  `yaml:"pool"`
	Retry RetryConfig `yaml:"retry"`
	Rate  RateConfig  `yaml:"rate_limit"`
	Log   LogConfig   `yaml:"log"`
}

type PoolConfig struct {
	Name       string `yaml:"name"`
	Workers    int    `yaml:"workers"`
	LockThread bool   `yaml:"lock_threads"`
	PinCPU     bool   `yaml:"pin_cpu"`
}

type RetryConfig struct {
	MaxAttempts  int     `yaml:"max_attempts"`
	InitialDelay string  `yaml:"initial_delay"`
	MaxDelay     string  `yaml:"max_delay"`
	Backoff      string  `yaml:"backoff"`
	Jitter       float64 `yaml:"jitter"`
}

type RateConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the configuration used when no file is given.
func Default() *File {
	return &File{
		Pool: PoolConfig{Name: "slotpool", Workers: 5},
		Retry: RetryConfig{
			MaxAttempts:  1,
			InitialDelay: "100ms",
			MaxDelay:     "5s",
			Backoff:      "exponential",
			Jitter:       0.1,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// LoadFile reads a YAML file on top of Default and validates the result.
func LoadFile(path string) (*File, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("unsupported config format: %q", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and parses every duration and enum field.
func (f *File) Validate() error {
	if f.Pool.Workers < 1 {
		return fmt.Errorf("pool.workers must be at least 1, got %d", f.Pool.Workers)
	}
	if f.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", f.Retry.MaxAttempts)
	}
	if f.Retry.Jitter < 0 || f.Retry.Jitter > 1 {
		return fmt.Errorf("retry.jitter must be between 0 and 1")
	}
	if _, err := parseDuration("retry.initial_delay", f.Retry.InitialDelay); err != nil {
		return err
	}
	if _, err := parseDuration("retry.max_delay", f.Retry.MaxDelay); err != nil {
		return err
	}
	if _, err := ParseBackoff(f.Retry.Backoff); err != nil {
		return err
	}
	if f.Rate.PerSecond < 0 || f.Rate.Burst < 0 {
		return fmt.Errorf("rate_limit values must be non-negative")
	}
	if f.Rate.PerSecond > 0 && f.Rate.Burst == 0 {
		return fmt.Errorf("rate_limit.burst must be set when rate_limit.per_second is")
	}
	if _, err := ParseLevel(f.Log.Level); err != nil {
		return err
	}
	return nil
}

// PoolOptions converts the file into pool options. Call Validate first.
func (f *File) PoolOptions() []pool.Option {
	initial, _ := parseDuration("retry.initial_delay", f.Retry.InitialDelay)
	maxDelay, _ := parseDuration("retry.max_delay", f.Retry.MaxDelay)
	kind, _ := ParseBackoff(f.Retry.Backoff)

	opts := []pool.Option{
		pool.WithName(f.Pool.Name),
		pool.WithRetryPolicy(f.Retry.MaxAttempts, initial),
		pool.WithBackoff(kind, maxDelay, f.Retry.Jitter),
	}
	if f.Rate.PerSecond > 0 {
		opts = append(opts, pool.WithRateLimit(f.Rate.PerSecond, f.Rate.Burst))
	}
	if f.Pool.PinCPU {
		opts = append(opts, pool.WithCPUPinning())
	} else if f.Pool.LockThread {
		opts = append(opts, pool.WithLockedThreads())
	}
	return opts
}

// ParseBackoff maps a backoff name to its pool.BackoffType. Empty means
// exponential.
func ParseBackoff(name string) (pool.BackoffType, error) {
	switch strings.ToLower(name) {
	case "", "exponential":
		return pool.BackoffExponential, nil
	case "jittered":
		return pool.BackoffJittered, nil
	case "decorrelated":
		return pool.BackoffDecorrelated, nil
	default:
		return 0, fmt.Errorf("unknown backoff type: %s", name)
	}
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	if name == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("unknown log level: %s", name)
	}
	return lvl, nil
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must be non-negative", field)
	}
	return d, nil
}
