package pool

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidWorkerCount = errors.New("worker count must be positive")
	ErrNilRoutine         = errors.New("routine hook is required")

	ErrInvalidSlot     = errors.New("slot index out of range")
	ErrNothingToCancel = errors.New("no job to cancel in slot")

	ErrPoolClosed      = errors.New("pool is shut down")
	ErrNoFreeSlot      = errors.New("no free slot")
	ErrShutdownTimeout = errors.New("error in shutting down: timeout reached")

	// ErrJobCanceled is the cancellation cause of a job context canceled
	// through Cancel or CancelJob.
	ErrJobCanceled = errors.New("job canceled")
)

// PanicError is returned in place of a routine's error when the routine
// panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("routine panic: %v\nstack trace:\n%s", p.Value, p.Stack)
}
