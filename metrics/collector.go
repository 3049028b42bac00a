// Package metrics exports pool statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/utkarsh5026/slotpool/pool"
)

// StatsSource is anything that can report a pool.Stats snapshot. *pool.Pool
// satisfies it for every payload type.
type StatsSource interface {
	Name() string
	Stats() pool.Stats
}

// Collector reads a fresh Stats snapshot on every scrape, so it never falls
// out of sync with the pool and needs no background goroutine.
type Collector struct {
	src StatsSource

	workers   *prometheus.Desc
	busy      *prometheus.Desc
	submitted *prometheus.Desc
	completed *prometheus.Desc
	failed    *prometheus.Desc
	canceled  *prometheus.Desc
	dequeued  *prometheus.Desc
	retries   *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector builds a collector for src. Every series carries a "pool"
// label with src.Name().
func NewCollector(namespace, subsystem string, src StatsSource) *Collector {
	labels := prometheus.Labels{"pool": src.Name()}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, labels)
	}

	return &Collector{
		src:       src,
		workers:   desc("workers", "Number of worker slots in the pool"),
		busy:      desc("busy_slots", "Number of slots currently holding a job"),
		submitted: desc("jobs_submitted_total", "Total number of jobs placed in a slot"),
		completed: desc("jobs_completed_total", "Total number of jobs whose routine ran to completion"),
		failed:    desc("jobs_failed_total", "Total number of completed jobs whose routine returned an error"),
		canceled:  desc("jobs_canceled_total", "Total number of running jobs preempted by a cancel"),
		dequeued:  desc("jobs_dequeued_total", "Total number of jobs canceled before their routine started"),
		retries:   desc("job_retries_total", "Total number of routine retries"),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.workers
	ch <- c.busy
	ch <- c.submitted
	ch <- c.completed
	ch <- c.failed
	ch <- c.canceled
	ch <- c.dequeued
	ch <- c.retries
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()

	ch <- prometheus.MustNewConstMetric(c.workers, prometheus.GaugeValue, float64(s.Workers))
	ch <- prometheus.MustNewConstMetric(c.busy, prometheus.GaugeValue, float64(s.Busy))
	ch <- prometheus.MustNewConstMetric(c.submitted, prometheus.CounterValue, float64(s.Submitted))
	ch <- prometheus.MustNewConstMetric(c.completed, prometheus.CounterValue, float64(s.Completed))
	ch <- prometheus.MustNewConstMetric(c.failed, prometheus.CounterValue, float64(s.Failed))
	ch <- prometheus.MustNewConstMetric(c.canceled, prometheus.CounterValue, float64(s.Canceled))
	ch <- prometheus.MustNewConstMetric(c.dequeued, prometheus.CounterValue, float64(s.Dequeued))
	ch <- prometheus.MustNewConstMetric(c.retries, prometheus.CounterValue, float64(s.Retries))
}
