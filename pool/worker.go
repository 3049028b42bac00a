package pool

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utkarsh5026/slotpool/internal/algorithms"
)

// job is a worker's private copy of its slot's occupancy.
type job[T any] struct {
	ticket  Ticket
	payload T
	ctx     context.Context

	// canceledEarly is set when the cancel request arrived before the worker
	// picked the job up.
	canceledEarly bool
}

// worker is the loop run by the goroutine bound to s. It reports thread setup
// on ready exactly once; on setup failure it returns without running any hook.
func (p *Pool[T]) worker(s *slot[T], ready chan<- error) error {
	if p.conf.lockThreads {
		release, err := bindThread(s.index, p.conf.pinThreads)
		if err != nil {
			err = fmt.Errorf("worker %d: %w", s.index, err)
			ready <- err
			return err
		}
		defer release()
	}
	ready <- nil

	p.hooks.init(s.index)
	p.log.Debug("worker started", slog.Int("slot", s.index))
	defer func() {
		p.hooks.exit(s.index)
		p.log.Debug("worker exited", slog.Int("slot", s.index))
	}()

	backoff := p.conf.newBackoff()
	for {
		j, ok := p.awaitJob(s)
		if !ok {
			return nil
		}
		p.runJob(s, j, backoff)
	}
}

// awaitJob blocks until s holds a job or the pool shuts down with s Empty.
// A job placed before shutdown is still returned after it: workers drain.
func (p *Pool[T]) awaitJob(s *slot[T]) (job[T], bool) {
	for {
		p.mu.Lock()
		if s.state != slotEmpty {
			j := job[T]{
				ticket:  Ticket{Slot: s.index, ID: s.jobID},
				payload: s.payload,
			}
			if s.state == slotCancelRequested {
				j.canceledEarly = true
			} else {
				ctx, cancel := context.WithCancelCause(withTicket(p.conf.base, j.ticket))
				s.cancel = cancel
				j.ctx = ctx
			}
			p.mu.Unlock()
			return j, true
		}
		if p.shutdown.Load() {
			p.mu.Unlock()
			return job[T]{}, false
		}
		p.mu.Unlock()

		select {
		case <-s.wake:
		case <-p.quit:
		}
	}
}

// runJob takes one job to completion and returns its slot to the pool. For
// every job exactly one of two things happens: the routine completes, or
// OnCancel runs.
func (p *Pool[T]) runJob(s *slot[T], j job[T], backoff algorithms.Backoff) {
	if j.canceledEarly {
		p.hooks.dequeue(s.index, j.payload)
		p.hooks.cancel(s.index)
		p.stats.dequeued.Add(1)
		p.log.Debug("job dequeued", slog.Int("slot", s.index), slog.Uint64("job", j.ticket.ID))
		p.release(s)
		return
	}

	err := p.execute(j.ctx, s.index, j.payload, backoff)

	p.mu.Lock()
	if s.state == slotCancelRequested && isCancellation(err) {
		p.mu.Unlock()

		p.hooks.cancel(s.index)
		p.stats.canceled.Add(1)
		p.log.Debug("job canceled", slog.Int("slot", s.index), slog.Uint64("job", j.ticket.ID))
		p.release(s)
		return
	}

	// Resetting under the same lock that observed the state means a cancel
	// arriving from here on finds the slot Empty.
	p.stats.completed.Add(1)
	if err != nil {
		p.stats.failed.Add(1)
	}
	s.reset()
	p.mu.Unlock()
	p.free.Release(1)

	if err != nil {
		p.log.Warn("routine failed",
			slog.Int("slot", s.index),
			slog.Uint64("job", j.ticket.ID),
			slog.Any("error", err),
		)
	}
}

func (p *Pool[T]) release(s *slot[T]) {
	p.mu.Lock()
	s.reset()
	p.mu.Unlock()
	p.free.Release(1)
}
