package report

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// NewProgress returns a bar counting finished jobs, or nil when quiet is set.
// A nil bar is safe to pass to SetProgress.
func NewProgress(w io.Writer, total int, description string, quiet bool) *progressbar.ProgressBar {
	if quiet {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
	)
}

// SetProgress moves bar to n finished jobs if there is a bar.
func SetProgress(bar *progressbar.ProgressBar, n int) {
	if bar != nil {
		_ = bar.Set(n)
	}
}
