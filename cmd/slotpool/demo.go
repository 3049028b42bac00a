package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/slotpool/internal/report"
	"github.com/utkarsh5026/slotpool/pool"
)

type demoFlags struct {
	step       time.Duration
	cancelSlot int
}

func newDemoCmd(start starter) *cobra.Command {
	f := &demoFlags{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through enqueue, blocking, cancel and shutdown with a 5-slot pool",
		Long: `demo fills every slot with a message-printing job, cancels one of them
mid-flight to make room for a new job, enqueues two more jobs that block until
slots free up, and finally shuts the pool down. Timing is driven by --step:
each job runs for two steps.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return start(cmd, func(s *session) error {
				return runDemo(cmd.Context(), s, f)
			})
		},
	}

	cmd.Flags().DurationVar(&f.step, "step", time.Second, "pacing unit of the walkthrough")
	cmd.Flags().IntVar(&f.cancelSlot, "cancel-slot", 4, "slot index to cancel mid-flight")
	return cmd
}

// lockedWriter serializes writes from concurrent hooks.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func runDemo(ctx context.Context, s *session, f *demoFlags) error {
	out := &lockedWriter{w: s.out}
	step := f.step

	p, err := pool.New(s.cfg.Pool.Workers, pool.Hooks[string]{
		OnInit: func(slot int) {
			report.Event(out, slot, "%s", report.Green.Sprint("on_init: initializing"))
		},
		Routine: func(ctx context.Context, msg string) error {
			slot, _ := pool.SlotFromContext(ctx)
			report.Event(out, slot, "%s", msg)

			t := time.NewTimer(2 * step)
			defer t.Stop()
			select {
			case <-t.C:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		OnCancel: func(slot int) {
			report.Event(out, slot, "%s", report.Red.Sprint("on_cancel: oh dear!"))
		},
		OnDequeue: func(slot int, msg string) {
			report.Event(out, slot, "on_dequeue: %q never ran", msg)
		},
		OnExit: func(slot int) {
			report.Event(out, slot, "on_exit: exiting")
		},
	}, append(s.cfg.PoolOptions(), pool.WithLogger(s.logger))...)
	if err != nil {
		return fmt.Errorf("could not create pool: %w", err)
	}
	defer p.Destroy()

	enqueue := func(msg string) {
		tk, err := p.Enqueue(ctx, msg)
		if err != nil {
			_, _ = report.Red.Fprintf(out, "failed to enqueue %q: %v\n", msg, err)
			return
		}
		s.logger.Debug("enqueued", "slot", tk.Slot, "job", tk.ID)
	}
	pause := func(n int) error {
		select {
		case <-time.After(time.Duration(n) * step):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// The first batch starts at once; anything past the worker count blocks
	// until a slot frees up.
	for i, word := range []string{"hello", "world", "this", "is", "a..."} {
		enqueue(fmt.Sprintf("%d. %s", i+1, word))
	}

	if err := pause(1); err != nil {
		return err
	}
	if err := p.Cancel(f.cancelSlot); err != nil {
		_, _ = report.Yellow.Fprintf(out, "cancel slot %d: %v\n", f.cancelSlot, err)
	}

	// Blocks until the canceled slot is released, no retry loop needed.
	enqueue("4a. new")
	if err := pause(3); err != nil {
		return err
	}

	enqueue("6. blocking")
	enqueue("7. threadpool")
	_, _ = report.Bold.Fprintln(out, "here's the main routine")
	if err := pause(3); err != nil {
		return err
	}

	// Waits for running jobs; nothing is killed.
	p.Destroy()

	_, _ = fmt.Fprintln(out)
	return report.RenderStats(out, p.Name(), p.Stats(), 0)
}
