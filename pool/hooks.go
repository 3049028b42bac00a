package pool

import (
	"context"
	"log/slog"
	"runtime/debug"
)

// RoutineFunc processes one job payload. ctx is canceled with cause
// ErrJobCanceled when the job's slot is canceled; a routine that wants to be
// preemptible watches ctx and returns ctx.Err() (or an error wrapping it).
type RoutineFunc[T any] func(ctx context.Context, payload T) error

// Hooks are the user callbacks the pool invokes. Only Routine is required.
// Every hook except Routine receives the index of the slot whose worker is
// running it. Hooks of different workers run concurrently.
type Hooks[T any] struct {
	// OnInit runs once per worker before it accepts its first job.
	OnInit func(slot int)

	Routine RoutineFunc[T]

	// OnCancel runs instead of a normal completion for a job whose routine
	// was preempted by a cancel request.
	OnCancel func(slot int)

	// OnDequeue runs, before OnCancel, for a job canceled before its routine
	// started. It hands the unprocessed payload back to the caller.
	OnDequeue func(slot int, payload T)

	// OnRetry runs before each retry of a failed routine attempt.
	OnRetry func(slot int, attempt int, err error)

	// OnExit runs once per worker after its last job, during shutdown.
	OnExit func(slot int)
}

// hookRunner invokes optional hooks and keeps a panicking hook from taking
// its worker down with it.
type hookRunner[T any] struct {
	hooks  Hooks[T]
	logger *slog.Logger
}

func (h *hookRunner[T]) guard(name string, slot int, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("hook panicked",
				slog.String("hook", name),
				slog.Int("slot", slot),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	fn()
}

func (h *hookRunner[T]) init(slot int) {
	if h.hooks.OnInit != nil {
		h.guard("init", slot, func() { h.hooks.OnInit(slot) })
	}
}

func (h *hookRunner[T]) cancel(slot int) {
	if h.hooks.OnCancel != nil {
		h.guard("cancel", slot, func() { h.hooks.OnCancel(slot) })
	}
}

func (h *hookRunner[T]) dequeue(slot int, payload T) {
	if h.hooks.OnDequeue != nil {
		h.guard("dequeue", slot, func() { h.hooks.OnDequeue(slot, payload) })
	}
}

func (h *hookRunner[T]) retry(slot, attempt int, err error) {
	if h.hooks.OnRetry != nil {
		h.guard("retry", slot, func() { h.hooks.OnRetry(slot, attempt, err) })
	}
}

func (h *hookRunner[T]) exit(slot int) {
	if h.hooks.OnExit != nil {
		h.guard("exit", slot, func() { h.hooks.OnExit(slot) })
	}
}
