package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/slotpool/pool"
)

func init() {
	color.NoColor = true
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{100000, "100,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in))
	}
}

func TestFormatLatency(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0"},
		{750 * time.Nanosecond, "750ns"},
		{2 * time.Microsecond, "2µs"},
		{1500 * time.Nanosecond, "1.5µs"},
		{3 * time.Millisecond, "3ms"},
		{1250 * time.Microsecond, "1.25ms"},
		{2500 * time.Millisecond, "2.50s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatLatency(tt.in), tt.in.String())
	}
}

func TestComputePercentiles(t *testing.T) {
	assert.Equal(t, Percentiles{}, ComputePercentiles(nil))

	samples := make([]time.Duration, 0, 100)
	for i := 100; i >= 1; i-- {
		samples = append(samples, time.Duration(i)*time.Millisecond)
	}

	p := ComputePercentiles(samples)
	assert.Equal(t, 50*time.Millisecond, p.P50)
	assert.Equal(t, 95*time.Millisecond, p.P95)
	assert.Equal(t, 99*time.Millisecond, p.P99)
	assert.Equal(t, 100*time.Millisecond, p.Max)
	assert.Equal(t, 50500*time.Microsecond, p.Avg)

	// Input order is left alone.
	assert.Equal(t, 100*time.Millisecond, samples[0])

	single := ComputePercentiles([]time.Duration{time.Second})
	assert.Equal(t, time.Second, single.P50)
	assert.Equal(t, time.Second, single.P99)
}

func TestRenderStats(t *testing.T) {
	var buf bytes.Buffer
	err := RenderStats(&buf, "demo", pool.Stats{
		Workers:   5,
		Submitted: 12345,
		Completed: 12000,
		Canceled:  5,
	}, 2*time.Second)
	require.NoError(t, err)

	out := buf.String()
	for _, want := range []string{"METRIC", "DEMO", "12,345", "12,000", "ELAPSED", "6,002"} {
		assert.Contains(t, strings.ToUpper(out), want)
	}
}

func TestRenderStats_NoElapsedRow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderStats(&buf, "demo", pool.Stats{Workers: 1}, 0))
	assert.NotContains(t, strings.ToLower(buf.String()), "jobs/sec")
}

func TestRenderLatency(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderLatency(&buf, Percentiles{P50: 3 * time.Millisecond, Max: time.Second}))
	assert.Contains(t, buf.String(), "3ms")
	assert.Contains(t, buf.String(), "1.00s")
}

func TestEvent(t *testing.T) {
	var buf bytes.Buffer
	Event(&buf, 3, "processing %q", "hello")
	assert.Equal(t, "[slot 3] processing \"hello\"\n", buf.String())
}

func TestSlotColorIsStable(t *testing.T) {
	assert.Same(t, SlotColor(2), SlotColor(2+len(slotPalette)))
	assert.NotPanics(t, func() { SlotColor(-1) })
}

func TestProgress(t *testing.T) {
	assert.Nil(t, NewProgress(&bytes.Buffer{}, 10, "jobs", true))
	assert.NotPanics(t, func() { SetProgress(nil, 5) })

	var buf bytes.Buffer
	bar := NewProgress(&buf, 3, "jobs", false)
	require.NotNil(t, bar)
	SetProgress(bar, 2)
	assert.False(t, bar.IsFinished())
	SetProgress(bar, 3)
	assert.True(t, bar.IsFinished())
}
