package pool

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// poolVariant is a pool configuration every lifecycle test runs against.
type poolVariant struct {
	name string
	opts []Option
}

func allVariants() []poolVariant {
	return []poolVariant{
		{name: "Default"},
		{name: "LockedThreads", opts: []Option{WithLockedThreads()}},
		{name: "RateLimited", opts: []Option{WithRateLimit(1e6, 1000)}},
		{name: "Retrying", opts: []Option{WithRetryPolicy(3, time.Millisecond)}},
	}
}

func runVariantTest(t *testing.T, testFunc func(t *testing.T, v poolVariant)) {
	for _, v := range allVariants() {
		t.Run(v.name, func(t *testing.T) {
			testFunc(t, v)
		})
	}
}

func mustNew[T any](t *testing.T, workers int, hooks Hooks[T], opts ...Option) *Pool[T] {
	t.Helper()
	p, err := New(workers, hooks, opts...)
	if err != nil {
		t.Fatalf("New(%d) failed: %v", workers, err)
	}
	return p
}

func mustEnqueue[T any](t *testing.T, p *Pool[T], payload T) Ticket {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	tk, err := p.Enqueue(ctx, payload)
	if err != nil {
		t.Fatalf("Enqueue(%v) failed: %v", payload, err)
	}
	return tk
}

// waitFor polls cond until it holds or the timeout passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func recv[V any](t *testing.T, ch <-chan V, what string) V {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		var zero V
		return zero
	}
}

// recorder collects hook events from concurrent workers.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) count(prefix string) int {
	n := 0
	for _, e := range r.snapshot() {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

// syncBuffer is a strings.Builder safe to hand to a slog handler and read
// from the test goroutine.
type syncBuffer struct {
	mu sync.Mutex
	sb strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.String()
}
