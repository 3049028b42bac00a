package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/utkarsh5026/slotpool/internal/report"
	"github.com/utkarsh5026/slotpool/metrics"
	"github.com/utkarsh5026/slotpool/pool"
)

type benchFlags struct {
	jobs        int
	work        time.Duration
	cancelEvery int
	failRate    float64
	metricsAddr string
	quiet       bool
}

var errInjected = errors.New("injected failure")

func newBenchCmd(start starter) *cobra.Command {
	f := &benchFlags{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Push a batch of jobs through the pool and report throughput",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.jobs < 1 {
				return fmt.Errorf("--jobs must be at least 1")
			}
			if f.failRate < 0 || f.failRate > 1 {
				return fmt.Errorf("--fail-rate must be between 0 and 1")
			}
			return start(cmd, func(s *session) error {
				return runBench(cmd.Context(), s, f)
			})
		},
	}

	fs := cmd.Flags()
	fs.IntVarP(&f.jobs, "jobs", "n", 1000, "number of jobs to enqueue")
	fs.DurationVar(&f.work, "work", time.Millisecond, "simulated duration of each job")
	fs.IntVar(&f.cancelEvery, "cancel-every", 0, "cancel every k-th job right after enqueueing it (0 disables)")
	fs.Float64Var(&f.failRate, "fail-rate", 0, "probability that a routine attempt fails")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

func runBench(ctx context.Context, s *session, f *benchFlags) error {
	var (
		mu      sync.Mutex
		samples = make([]time.Duration, 0, f.jobs)
	)
	bar := report.NewProgress(s.out, f.jobs, "Running jobs", f.quiet)
	latency := metrics.NewLatency("slotpool", "")

	p, err := pool.New(s.cfg.Pool.Workers, pool.Hooks[int]{
		Routine: func(ctx context.Context, _ int) error {
			begin := time.Now()
			err := simulateWork(ctx, f.work, f.failRate)
			d := time.Since(begin)

			latency.Observe(d, err)
			mu.Lock()
			samples = append(samples, d)
			mu.Unlock()
			return err
		},
	}, append(s.cfg.PoolOptions(), pool.WithLogger(s.logger), pool.WithBaseContext(ctx))...)
	if err != nil {
		return fmt.Errorf("could not create pool: %w", err)
	}
	defer p.Destroy()

	if f.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(metrics.NewCollector("slotpool", "", p), latency)
		addr, stop, err := serveMetrics(f.metricsAddr, reg)
		if err != nil {
			return err
		}
		defer stop()
		s.logger.Info("serving metrics", "addr", addr.String())
	}

	// The bar is sampled from Stats so canceled jobs count as finished too.
	done := make(chan struct{})
	var watch sync.WaitGroup
	watch.Add(1)
	go func() {
		defer watch.Done()
		trackProgress(p, bar, done)
	}()

	begin := time.Now()
	for i := range f.jobs {
		tk, err := p.Enqueue(ctx, i)
		if err != nil {
			close(done)
			watch.Wait()
			return fmt.Errorf("enqueue job %d: %w", i, err)
		}
		if f.cancelEvery > 0 && (i+1)%f.cancelEvery == 0 {
			if err := p.CancelJob(tk); err != nil && !errors.Is(err, pool.ErrNothingToCancel) {
				s.logger.Warn("cancel failed", "job", tk.ID, "error", err)
			}
		}
	}
	p.Destroy()
	elapsed := time.Since(begin)
	close(done)
	watch.Wait()

	stats := p.Stats()
	report.SectionHeader(s.out, "POOL STATISTICS",
		fmt.Sprintf("%d jobs on %d workers, %s of work each", f.jobs, stats.Workers, f.work))
	if err := report.RenderStats(s.out, p.Name(), stats, elapsed); err != nil {
		return fmt.Errorf("render stats: %w", err)
	}

	mu.Lock()
	pct := report.ComputePercentiles(samples)
	mu.Unlock()
	report.SectionHeader(s.out, "ROUTINE LATENCY",
		"  • P50: 50% of routine runs finish within this time",
		"  • P99: 99% of routine runs finish within this time")
	if err := report.RenderLatency(s.out, pct); err != nil {
		return fmt.Errorf("render latency: %w", err)
	}
	return nil
}

func simulateWork(ctx context.Context, work time.Duration, failRate float64) error {
	t := time.NewTimer(work)
	defer t.Stop()

	select {
	case <-t.C:
	case <-ctx.Done():
		return ctx.Err()
	}
	if failRate > 0 && rand.Float64() < failRate {
		return errInjected
	}
	return nil
}

func trackProgress(p *pool.Pool[int], bar *progressbar.ProgressBar, done <-chan struct{}) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	update := func() {
		s := p.Stats()
		report.SetProgress(bar, int(s.Completed+s.Canceled+s.Dequeued))
	}
	for {
		select {
		case <-ticker.C:
			update()
		case <-done:
			update()
			return
		}
	}
}

// serveMetrics starts a /metrics endpoint and returns its bound address and
// a func that stops it.
func serveMetrics(addr string, reg *prometheus.Registry) (net.Addr, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() { _ = srv.Serve(ln) }()

	return ln.Addr(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
