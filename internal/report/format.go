package report

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// FormatNumber formats an integer with comma separators.
func FormatNumber(n uint64) string {
	s := fmt.Sprintf("%d", n)
	var result strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			_, _ = result.WriteString(",")
		}
		_, _ = result.WriteRune(c)
	}
	return result.String()
}

// FormatLatency formats a duration in the most appropriate unit.
func FormatLatency(d time.Duration) string {
	if d == 0 {
		return "0"
	}

	ns := d.Nanoseconds()
	switch {
	case ns < 1000:
		return fmt.Sprintf("%dns", ns)
	case ns < 1_000_000:
		return trimUnit(float64(ns)/1000.0, "µs", 1)
	case ns < 1_000_000_000:
		return trimUnit(float64(ns)/1_000_000.0, "ms", 2)
	default:
		return fmt.Sprintf("%.2fs", float64(ns)/1_000_000_000.0)
	}
}

func trimUnit(v float64, unit string, prec int) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d%s", int64(v), unit)
	}
	return fmt.Sprintf("%.*f%s", prec, v, unit)
}

// Percentiles holds latency percentiles of a set of routine runs.
type Percentiles struct {
	Avg, P50, P95, P99, Max time.Duration
}

// ComputePercentiles sorts a copy of samples and picks nearest-rank
// percentiles. An empty input yields the zero value.
func ComputePercentiles(samples []time.Duration) Percentiles {
	if len(samples) == 0 {
		return Percentiles{}
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	at := func(p float64) time.Duration {
		idx := int(float64(len(sorted))*p+0.5) - 1
		return sorted[max(0, min(idx, len(sorted)-1))]
	}

	return Percentiles{
		Avg: sum / time.Duration(len(sorted)),
		P50: at(0.50),
		P95: at(0.95),
		P99: at(0.99),
		Max: sorted[len(sorted)-1],
	}
}
