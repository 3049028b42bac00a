// Package report renders pool activity and statistics for the terminal.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	Bold   = color.New(color.Bold)
	Green  = color.New(color.FgGreen)
	Red    = color.New(color.FgRed)
	Yellow = color.New(color.FgYellow)

	slotPalette = []*color.Color{
		color.New(color.FgCyan),
		color.New(color.FgMagenta),
		color.New(color.FgBlue),
		color.New(color.FgGreen),
		color.New(color.FgYellow),
		color.New(color.FgHiCyan),
		color.New(color.FgHiMagenta),
		color.New(color.FgHiBlue),
	}
)

// SlotColor returns a stable color for a slot index so lines from the same
// worker are easy to follow.
func SlotColor(slot int) *color.Color {
	if slot < 0 {
		slot = -slot
	}
	return slotPalette[slot%len(slotPalette)]
}

// Event writes one "[slot N] message" line with the slot's color.
func Event(w io.Writer, slot int, format string, a ...any) {
	prefix := SlotColor(slot).Sprintf("[slot %d]", slot)
	_, _ = fmt.Fprintf(w, "%s %s\n", prefix, fmt.Sprintf(format, a...))
}

// SectionHeader prints a bold title followed by dim description lines.
func SectionHeader(w io.Writer, title string, lines ...string) {
	_, _ = fmt.Fprintln(w)
	_, _ = Bold.Fprintln(w, title)
	for _, l := range lines {
		_, _ = fmt.Fprintln(w, l)
	}
	_, _ = fmt.Fprintln(w)
}
