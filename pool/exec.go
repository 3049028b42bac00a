package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/utkarsh5026/slotpool/internal/algorithms"
)

// execute runs the routine for one job: rate limit wait, routine attempts
// with retry/backoff, and panic recovery. backoff belongs to the calling
// worker and is reset for every job. It returns the final attempt's error, or
// the context error if the job was interrupted while waiting.
func (p *Pool[T]) execute(ctx context.Context, slot int, payload T, backoff algorithms.Backoff) error {
	attempts := max(p.conf.maxAttempts, 1)
	backoff.Reset()

	var err error
	for attempt := range attempts {
		if attempt > 0 {
			if isCancellation(err) {
				return err
			}
			p.stats.retries.Add(1)
			p.hooks.retry(slot, attempt, err)

			if err := sleepCtx(ctx, backoff.NextDelay(attempt-1)); err != nil {
				return err
			}
		}

		if p.conf.rateLimiter != nil {
			if err := p.conf.rateLimiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return context.Cause(ctx)
				}
				return fmt.Errorf("rate limiter: %w", err)
			}
		}

		err = p.callRoutine(ctx, payload)
		if err == nil {
			return nil
		}
	}
	return err
}

func (p *Pool[T]) callRoutine(ctx context.Context, payload T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = &PanicError{Value: r, Stack: buf[:n]}
		}
	}()
	return p.hooks.hooks.Routine(ctx, payload)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// isCancellation reports whether err says the routine gave up because its
// context was canceled.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, ErrJobCanceled)
}
