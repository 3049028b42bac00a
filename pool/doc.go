// Package pool provides a fixed-capacity worker pool in which every worker
// is permanently bound to one job slot.
//
// The primary type is Pool[T]: N workers, N slots, and a set of lifecycle
// hooks. A job is a payload of type T handed to the routine hook. Enqueue
// places the job in the first free slot and blocks while every slot is
// busy; the slot index it returns is the handle for canceling that job.
//
// # Basic Usage
//
//	p, err := pool.New(5, pool.Hooks[string]{
//	    OnInit: func(slot int) { log.Printf("worker %d up", slot) },
//	    Routine: func(ctx context.Context, msg string) error {
//	        fmt.Print(msg)
//	        select {
//	        case <-time.After(2 * time.Second):
//	            return nil
//	        case <-ctx.Done():
//	            return ctx.Err()
//	        }
//	    },
//	    OnCancel: func(slot int) { log.Printf("slot %d canceled", slot) },
//	    OnExit:   func(slot int) { log.Printf("worker %d down", slot) },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	t, _ := p.Enqueue(ctx, "hello\n")
//	_ = p.Cancel(t.Slot)
//	p.Destroy() // waits for every worker to drain and exit
//
// # Worker Lifecycle
//
// Each worker runs OnInit once, then loops: wait for its slot to be filled,
// run the routine, free the slot. On Destroy each worker finishes the job
// it holds, runs OnExit once and returns. Destroy blocks until all of them
// have returned; it never interrupts a running routine.
//
// # Cancellation
//
// Cancel is cooperative. It cancels the routine's context (cause
// ErrJobCanceled); if the routine then returns a cancellation error the job
// counts as preempted and OnCancel runs in place of a normal completion.
// If the routine returns normally anyway, the job completes and the request
// is dropped. For every job exactly one of "routine completed" and
// "OnCancel ran" is true. A job canceled before its worker picked it up
// never runs its routine: OnDequeue receives the payload, then OnCancel
// runs.
//
// # Configuration Options
//
//   - WithName(name): label for logs and metrics
//   - WithLogger(logger): structured *slog.Logger (default: discard)
//   - WithBaseContext(ctx): parent context of every job
//   - WithRateLimit(perSecond, burst): throttle routine starts
//   - WithRetryPolicy(maxAttempts, initialDelay): retry failing routines
//   - WithBackoff(kind, maxDelay, jitter): retry delay algorithm
//   - WithLockedThreads(): one locked OS thread per worker
//   - WithCPUPinning(): locked threads pinned to distinct cores
//
// # Error Handling
//
// Every failure is returned as an error value; nothing in the package
// panics or exits. Panics raised by hooks are recovered and logged, and a
// panicking routine fails its job with a *PanicError.
package pool
