package pool

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/utkarsh5026/slotpool/internal/algorithms"
)

// BackoffType selects how the delay between routine retries grows.
type BackoffType = algorithms.Kind

const (
	BackoffExponential  = algorithms.Exponential
	BackoffJittered     = algorithms.Jittered
	BackoffDecorrelated = algorithms.Decorrelated
)

// Option is a functional option for configuring a Pool.
type Option func(*poolConfig)

type poolConfig struct {
	name   string
	logger *slog.Logger
	base   context.Context

	rateLimiter *rate.Limiter

	maxAttempts  int
	backoffType  BackoffType
	initialDelay time.Duration
	maxDelay     time.Duration
	jitter       float64

	lockThreads bool
	pinThreads  bool
}

func defaultConfig() *poolConfig {
	return &poolConfig{
		name:         "slotpool",
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		base:         context.Background(),
		maxAttempts:  1,
		backoffType:  BackoffExponential,
		initialDelay: 100 * time.Millisecond,
		maxDelay:     5 * time.Second,
		jitter:       0.1,
	}
}

// WithName labels the pool in log records and metrics.
func WithName(name string) Option {
	return func(cfg *poolConfig) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithLogger sets the structured logger used for worker lifecycle events,
// routine failures and recovered hook panics. Logging is discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *poolConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithBaseContext sets the parent of every job context. Canceling it cancels
// running routines without marking their slots as canceled, so they count as
// completed (failed) jobs, not preempted ones.
func WithBaseContext(ctx context.Context) Option {
	return func(cfg *poolConfig) {
		if ctx != nil {
			cfg.base = ctx
		}
	}
}

// WithRateLimit caps how many routine attempts start per second across all
// workers. The wait happens inside the job's occupancy, so a cancel during
// the wait preempts the job.
//
// Example:
//
//	WithRateLimit(10, 5) // 10 routine starts/sec with a burst of 5
func WithRateLimit(perSecond float64, burst int) Option {
	return func(cfg *poolConfig) {
		if perSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithRetryPolicy retries a routine that returns a non-cancellation error, up
// to maxAttempts total attempts, waiting initialDelay before the first retry
// and growing the wait according to the backoff type.
func WithRetryPolicy(maxAttempts int, initialDelay time.Duration) Option {
	return func(cfg *poolConfig) {
		if maxAttempts > 0 {
			cfg.maxAttempts = maxAttempts
		}
		if initialDelay > 0 {
			cfg.initialDelay = initialDelay
		}
	}
}

// WithBackoff picks the retry delay algorithm. maxDelay caps every delay and
// jitter (0..1) is only used by BackoffJittered.
func WithBackoff(kind BackoffType, maxDelay time.Duration, jitter float64) Option {
	return func(cfg *poolConfig) {
		cfg.backoffType = kind
		if maxDelay > 0 {
			cfg.maxDelay = maxDelay
		}
		if jitter >= 0 {
			cfg.jitter = jitter
		}
	}
}

// WithLockedThreads runs every worker on its own locked OS thread for the
// worker's whole life.
func WithLockedThreads() Option {
	return func(cfg *poolConfig) {
		cfg.lockThreads = true
	}
}

// WithCPUPinning locks every worker to an OS thread and pins worker i to the
// i-th allowed core (round-robin). Creation fails where pinning is not
// supported.
func WithCPUPinning() Option {
	return func(cfg *poolConfig) {
		cfg.lockThreads = true
		cfg.pinThreads = true
	}
}

func (cfg *poolConfig) newBackoff() algorithms.Backoff {
	return algorithms.New(cfg.backoffType, cfg.initialDelay, cfg.maxDelay, cfg.jitter)
}
