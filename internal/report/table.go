package report

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/utkarsh5026/slotpool/pool"
)

// RenderStats writes a table of pool counters. elapsed, when positive, adds
// a throughput row.
func RenderStats(w io.Writer, name string, s pool.Stats, elapsed time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header("Metric", name)

	rows := [][]string{
		{"Workers", FormatNumber(uint64(s.Workers))},
		{"Busy slots", FormatNumber(uint64(s.Busy))},
		{"Submitted", FormatNumber(s.Submitted)},
		{"Completed", FormatNumber(s.Completed)},
		{"Failed", FormatNumber(s.Failed)},
		{"Canceled (running)", FormatNumber(s.Canceled)},
		{"Canceled (queued)", FormatNumber(s.Dequeued)},
		{"Retries", FormatNumber(s.Retries)},
	}
	if elapsed > 0 {
		finished := s.Completed + s.Canceled + s.Dequeued
		rows = append(rows,
			[]string{"Elapsed", elapsed.Round(time.Millisecond).String()},
			[]string{"Jobs/sec", FormatNumber(uint64(float64(finished) / elapsed.Seconds()))},
		)
	}

	for _, r := range rows {
		if err := table.Append(r[0], r[1]); err != nil {
			return fmt.Errorf("append row %q: %w", r[0], err)
		}
	}
	return table.Render()
}

// RenderLatency writes one row of routine latency percentiles.
func RenderLatency(w io.Writer, p Percentiles) error {
	table := tablewriter.NewWriter(w)
	table.Header("Avg", "P50 (median)", "P95", "P99", "Max")

	if err := table.Append(
		FormatLatency(p.Avg),
		FormatLatency(p.P50),
		FormatLatency(p.P95),
		FormatLatency(p.P99),
		FormatLatency(p.Max),
	); err != nil {
		return fmt.Errorf("append latency row: %w", err)
	}
	return table.Render()
}
