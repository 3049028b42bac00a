package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Latency records how long routines take, split by outcome.
type Latency struct {
	hist *prometheus.HistogramVec
}

// NewLatency creates the histogram. It is not registered; pass it to a
// registry with MustRegister.
func NewLatency(namespace, subsystem string) *Latency {
	return &Latency{
		hist: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "job_duration_seconds",
			Help:      "Histogram of routine execution time",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
}

// Observe records one routine run. err decides the outcome label.
func (l *Latency) Observe(d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	l.hist.WithLabelValues(outcome).Observe(d.Seconds())
}

func (l *Latency) Describe(ch chan<- *prometheus.Desc) { l.hist.Describe(ch) }

func (l *Latency) Collect(ch chan<- prometheus.Metric) { l.hist.Collect(ch) }
