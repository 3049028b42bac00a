package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/utkarsh5026/slotpool/internal/cpu"
)

// bindThread is swapped out in tests to simulate thread setup failures.
var bindThread = cpu.Bind

// Pool is a fixed set of workers, each permanently bound to one job slot.
// A job occupies a slot from Enqueue until its routine (or its OnCancel hook)
// has returned; while every slot is occupied Enqueue blocks.
//
// Type parameters:
//   - T: The job payload type handed to the routine
type Pool[T any] struct {
	conf  *poolConfig
	hooks *hookRunner[T]
	log   *slog.Logger

	mu     sync.Mutex
	slots  []*slot[T]
	nextID uint64

	// free counts Empty slots not yet claimed by an Enqueue.
	free *semaphore.Weighted

	shutdown atomic.Bool
	quit     chan struct{}

	// lifetime is canceled by shutdown to release Enqueue callers blocked
	// on free.
	lifetime     context.Context
	stopLifetime context.CancelFunc

	workers  errgroup.Group
	stopOnce sync.Once
	done     chan struct{} // closed once every worker has returned

	stats counters
}

// New creates a pool of workerCount workers and starts them. Each worker runs
// hooks.OnInit on its own before accepting its first job; New does not wait
// for those calls.
//
// New fails if workerCount is not positive, if hooks.Routine is nil, or if a
// worker could not set up its thread (see WithLockedThreads, WithCPUPinning).
// In the last case the workers that did start are shut down, with their
// OnExit hooks run, before New returns.
//
// Example:
//
//	p, err := pool.New(4, pool.Hooks[string]{
//	    Routine: func(ctx context.Context, msg string) error {
//	        fmt.Print(msg)
//	        return nil
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Destroy()
func New[T any](workerCount int, hooks Hooks[T], opts ...Option) (*Pool[T], error) {
	if workerCount < 1 {
		return nil, ErrInvalidWorkerCount
	}
	if hooks.Routine == nil {
		return nil, ErrNilRoutine
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger.With(slog.String("pool", cfg.name))
	lifetime, stop := context.WithCancel(context.Background())

	p := &Pool[T]{
		conf:         cfg,
		hooks:        &hookRunner[T]{hooks: hooks, logger: logger},
		log:          logger,
		slots:        make([]*slot[T], workerCount),
		free:         semaphore.NewWeighted(int64(workerCount)),
		quit:         make(chan struct{}),
		lifetime:     lifetime,
		stopLifetime: stop,
		done:         make(chan struct{}),
	}
	for i := range p.slots {
		p.slots[i] = newSlot[T](i)
	}

	ready := make(chan error, workerCount)
	for _, s := range p.slots {
		p.workers.Go(func() error {
			return p.worker(s, ready)
		})
	}

	var setupErr error
	for range workerCount {
		if err := <-ready; err != nil && setupErr == nil {
			setupErr = err
		}
	}
	if setupErr != nil {
		p.Destroy()
		return nil, fmt.Errorf("start workers: %w", setupErr)
	}

	logger.Debug("pool started", slog.Int("workers", workerCount))
	return p, nil
}

// Enqueue places payload in the lowest-indexed Empty slot and wakes that
// slot's worker. While no slot is Empty it blocks until one frees up, ctx is
// done, or the pool shuts down. Blocked callers are not served in any
// promised order.
//
// Returns:
//   - Ticket: the slot the job landed in (the handle for Cancel) and its job ID
//   - error: ErrPoolClosed once shutdown has begun, or ctx's error
func (p *Pool[T]) Enqueue(ctx context.Context, payload T) (Ticket, error) {
	if p.shutdown.Load() {
		return Ticket{}, ErrPoolClosed
	}

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.lifetime, cancel)
	defer stop()

	if err := p.free.Acquire(waitCtx, 1); err != nil {
		if p.shutdown.Load() {
			return Ticket{}, ErrPoolClosed
		}
		if ctx.Err() != nil {
			return Ticket{}, ctx.Err()
		}
		return Ticket{}, err
	}
	return p.claim(payload)
}

// TryEnqueue is Enqueue without blocking: it fails with ErrNoFreeSlot when
// every slot is occupied.
func (p *Pool[T]) TryEnqueue(payload T) (Ticket, error) {
	if p.shutdown.Load() {
		return Ticket{}, ErrPoolClosed
	}
	if !p.free.TryAcquire(1) {
		return Ticket{}, ErrNoFreeSlot
	}
	return p.claim(payload)
}

// claim fills an Empty slot. The caller holds one permit of p.free, which
// guarantees an Empty slot exists; the permit passes to the slot and is
// returned by the worker once the slot is Empty again.
func (p *Pool[T]) claim(payload T) (Ticket, error) {
	p.mu.Lock()
	if p.shutdown.Load() {
		p.mu.Unlock()
		p.free.Release(1)
		return Ticket{}, ErrPoolClosed
	}

	var target *slot[T]
	for _, s := range p.slots {
		if s.state == slotEmpty {
			target = s
			break
		}
	}
	if target == nil {
		p.mu.Unlock()
		p.free.Release(1)
		return Ticket{}, ErrNoFreeSlot
	}

	p.nextID++
	target.fill(payload, p.nextID)
	t := Ticket{Slot: target.index, ID: p.nextID}
	p.stats.submitted.Add(1)
	p.mu.Unlock()

	target.signal()
	return t, nil
}

// Cancel asks the worker owning slot to abandon its current job. It never
// blocks and does not wait for the job to stop.
//
// The request is cooperative: the routine's context is canceled with cause
// ErrJobCanceled and the job counts as preempted only if the routine then
// returns a cancellation error, in which case OnCancel runs instead of a
// normal completion. A routine that returns normally despite the request
// completes normally and the request is dropped. A job that had not started
// yet never runs its routine; OnDequeue and then OnCancel run for it.
//
// Canceling a slot that already has a pending request is a no-op.
//
// Returns ErrInvalidSlot for an index outside [0, WorkerCount()),
// ErrNothingToCancel for an Empty slot and ErrPoolClosed once the pool has
// been destroyed.
func (p *Pool[T]) Cancel(slot int) error {
	if slot < 0 || slot >= len(p.slots) {
		return ErrInvalidSlot
	}
	if p.destroyed() {
		return ErrPoolClosed
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.requestCancel(p.slots[slot])
}

// CancelJob is Cancel restricted to the job identified by t: it fails with
// ErrNothingToCancel if that job has already left its slot, even when a newer
// job now occupies it.
func (p *Pool[T]) CancelJob(t Ticket) error {
	if t.Slot < 0 || t.Slot >= len(p.slots) {
		return ErrInvalidSlot
	}
	if p.destroyed() {
		return ErrPoolClosed
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.slots[t.Slot]
	if s.state == slotEmpty || s.jobID != t.ID {
		return ErrNothingToCancel
	}
	return p.requestCancel(s)
}

// requestCancel forwards a cancel to s and logs the state it left. Caller
// holds p.mu.
func (p *Pool[T]) requestCancel(s *slot[T]) error {
	from := s.state
	if err := s.requestCancel(); err != nil {
		return err
	}
	p.log.Debug("cancel requested",
		slog.Int("slot", s.index),
		slog.Uint64("job", s.jobID),
		slog.String("from", from.String()),
	)
	return nil
}

// Destroy shuts the pool down and blocks until every worker has finished its
// current job, if any, run OnExit and returned. Running routines are not
// interrupted. Enqueue callers blocked at that point fail with ErrPoolClosed.
// The pool cannot be used afterwards; calling Destroy again just waits.
func (p *Pool[T]) Destroy() {
	_ = p.Shutdown(0)
}

// Shutdown is Destroy with a bounded wait. With a positive timeout it returns
// ErrShutdownTimeout if workers are still draining when the timeout fires;
// they keep draining in the background.
func (p *Pool[T]) Shutdown(timeout time.Duration) error {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.shutdown.Store(true)
		close(p.quit)
		p.mu.Unlock()

		p.stopLifetime()
		p.log.Debug("shutdown requested")

		go func() {
			if err := p.workers.Wait(); err != nil {
				p.log.Debug("worker setup error during shutdown", slog.Any("error", err))
			}
			close(p.done)
			p.log.Debug("pool stopped")
		}()
	})

	return waitUntil(p.done, timeout)
}

// WorkerCount returns the fixed number of workers (and slots).
func (p *Pool[T]) WorkerCount() int {
	return len(p.slots)
}

// Name returns the label set with WithName.
func (p *Pool[T]) Name() string {
	return p.conf.name
}

func (p *Pool[T]) destroyed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// waitUntil blocks until either the done channel is closed or the timeout is
// reached. A non-positive timeout waits forever.
func waitUntil(d <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-d
		return nil
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-d:
		return nil
	case <-t.C:
		return ErrShutdownTimeout
	}
}
