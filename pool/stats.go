package pool

import "sync/atomic"

// Stats is a point-in-time snapshot of pool activity.
type Stats struct {
	Workers int
	Busy    int // slots currently Occupied or CancelRequested

	Submitted uint64
	Completed uint64 // routine returned without being preempted (includes Failed)
	Failed    uint64 // completed with a non-nil error or a panic
	Canceled  uint64 // routine preempted, OnCancel ran
	Dequeued  uint64 // canceled before the routine started
	Retries   uint64
}

type counters struct {
	submitted atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
	canceled  atomic.Uint64
	dequeued  atomic.Uint64
	retries   atomic.Uint64
}

// Stats returns current counters. Busy is read under the pool lock; the
// counters are read individually and may be mutually inconsistent by a job
// or two under load.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	busy := 0
	for _, s := range p.slots {
		if s.state != slotEmpty {
			busy++
		}
	}
	p.mu.Unlock()

	return Stats{
		Workers:   len(p.slots),
		Busy:      busy,
		Submitted: p.stats.submitted.Load(),
		Completed: p.stats.completed.Load(),
		Failed:    p.stats.failed.Load(),
		Canceled:  p.stats.canceled.Load(),
		Dequeued:  p.stats.dequeued.Load(),
		Retries:   p.stats.retries.Load(),
	}
}
