package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewConsoleLogger creates a human-readable logger for interactive use.
// A nil writer logs to stderr so stdout stays free for the sync report.
func NewConsoleLogger(w io.Writer, level Level, color bool) Logger {
	if w == nil {
		w = os.Stderr
	}
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !color,
		TimeFormat: time.Kitchen,
	}
	return newZeroLogger(cw, level, nil)
}
