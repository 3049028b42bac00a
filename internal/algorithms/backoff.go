// Package algorithms holds the delay strategies the pool uses between
// retries of a failing routine.
package algorithms

import (
	"math/rand"
	"sync"
	"time"
)

// Kind selects a retry delay algorithm.
type Kind int

const (
	// Exponential doubles the delay on every attempt (default).
	Exponential Kind = iota
	// Jittered is Exponential with a random ±jitter factor applied.
	Jittered
	// Decorrelated picks each delay at random between the initial delay and
	// three times the previous one.
	Decorrelated
)

// maxShift caps the exponent so 1<<n never overflows an int64.
const maxShift = 62

// Backoff computes the delay before a retry. attempt is 0-indexed: 0 is the
// wait before the first retry.
type Backoff interface {
	NextDelay(attempt int) time.Duration
	Reset()
}

// New returns the Backoff for kind. Non-positive maxDelay means "no cap".
func New(kind Kind, initialDelay, maxDelay time.Duration, jitter float64) Backoff {
	if maxDelay <= 0 {
		maxDelay = time.Duration(1<<63 - 1)
	}
	if initialDelay < 0 {
		initialDelay = 0
	}

	switch kind {
	case Jittered:
		return &jittered{
			base:   exponential{initial: initialDelay, max: maxDelay},
			factor: clamp(jitter, 0, 1),
			rng:    rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter does not need crypto rand
		}
	case Decorrelated:
		return &decorrelated{
			initial: initialDelay,
			max:     maxDelay,
			prev:    initialDelay,
			rng:     rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404
		}
	default:
		return exponential{initial: initialDelay, max: maxDelay}
	}
}

type exponential struct {
	initial, max time.Duration
}

func (e exponential) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		return 0
	}
	if attempt > maxShift {
		return e.max
	}

	d := time.Duration(int64(1)<<uint(attempt)) * e.initial
	if d > e.max || d < 0 || (e.initial > 0 && d/e.initial != time.Duration(int64(1)<<uint(attempt))) {
		return e.max
	}
	return d
}

func (exponential) Reset() {}

// jittered spreads retries of jobs that failed together so they don't hit
// the downstream at the same instant.
type jittered struct {
	base   exponential
	factor float64

	mu  sync.Mutex
	rng *rand.Rand
}

func (j *jittered) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		return 0
	}
	d := j.base.NextDelay(attempt)

	j.mu.Lock()
	mult := 1.0 + (j.rng.Float64()*2-1)*j.factor
	j.mu.Unlock()

	return clamp(time.Duration(float64(d)*mult), 0, j.base.max)
}

func (*jittered) Reset() {}

// decorrelated implements sleep = min(max, random(initial, prev*3)).
type decorrelated struct {
	initial, max time.Duration

	mu   sync.Mutex
	prev time.Duration
	rng  *rand.Rand
}

func (d *decorrelated) NextDelay(attempt int) time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	if attempt <= 0 {
		d.prev = d.initial
		return d.initial
	}

	upper := min(time.Duration(float64(d.prev)*3), d.max)
	span := upper - d.initial
	if span <= 0 {
		d.prev = d.initial
		return d.initial
	}

	next := d.initial + time.Duration(d.rng.Int63n(int64(span)))
	d.prev = next
	return next
}

func (d *decorrelated) Reset() {
	d.mu.Lock()
	d.prev = d.initial
	d.mu.Unlock()
}

func clamp[N int64 | float64 | time.Duration](v, lo, hi N) N {
	return max(lo, min(v, hi))
}
