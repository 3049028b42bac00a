package main

import (
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/utkarsh5026/slotpool/internal/config"
)

// newLogger builds a text slog logger writing to stderr, or to a rotating
// file when lc.File is set. The returned func closes the file.
func newLogger(lc config.LogConfig, stderr io.Writer) (*slog.Logger, func(), error) {
	level, err := config.ParseLevel(lc.Level)
	if err != nil {
		return nil, nil, err
	}

	w := stderr
	closer := func() {}
	if lc.File != "" {
		lj := &lumberjack.Logger{
			Filename:   lc.File,
			MaxSize:    lc.MaxSizeMB,
			MaxBackups: lc.MaxBackups,
			MaxAge:     lc.MaxAgeDays,
			Compress:   lc.Compress,
		}
		w = lj
		closer = func() {
			if err := lj.Close(); err != nil {
				_, _ = fmt.Fprintf(stderr, "closing log file: %v\n", err)
			}
		}
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h), closer, nil
}
