package pool

import "context"

type slotState int

const (
	slotEmpty slotState = iota
	slotOccupied
	slotCancelRequested
)

func (s slotState) String() string {
	switch s {
	case slotEmpty:
		return "empty"
	case slotOccupied:
		return "occupied"
	case slotCancelRequested:
		return "cancel-requested"
	default:
		return "unknown"
	}
}

// slot is one worker's job mailbox. Every field except index and wake is
// guarded by Pool.mu. While the state is not Empty, payload belongs to the
// owning worker.
type slot[T any] struct {
	index int

	state   slotState
	payload T
	jobID   uint64

	// cancel is set by the worker once it has started the job and stays nil
	// while the job is still waiting to be picked up.
	cancel context.CancelCauseFunc

	// wake carries at most one pending "look at your slot" signal.
	wake chan struct{}
}

func newSlot[T any](index int) *slot[T] {
	return &slot[T]{
		index: index,
		wake:  make(chan struct{}, 1),
	}
}

func (s *slot[T]) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// fill hands a job to the slot. Caller holds Pool.mu and the slot is Empty.
func (s *slot[T]) fill(payload T, id uint64) {
	s.state = slotOccupied
	s.payload = payload
	s.jobID = id
}

// requestCancel moves an Occupied slot to CancelRequested and interrupts the
// running routine, if any. Caller holds Pool.mu.
func (s *slot[T]) requestCancel() error {
	switch s.state {
	case slotEmpty:
		return ErrNothingToCancel
	case slotCancelRequested:
		return nil
	}

	s.state = slotCancelRequested
	if s.cancel != nil {
		s.cancel(ErrJobCanceled)
	}
	return nil
}

// reset empties the slot. Caller holds Pool.mu and is the owning worker.
func (s *slot[T]) reset() {
	var zero T
	s.state = slotEmpty
	s.payload = zero
	s.jobID = 0
	if s.cancel != nil {
		s.cancel(nil)
		s.cancel = nil
	}
}
