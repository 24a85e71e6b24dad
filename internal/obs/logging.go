// Package obs contains observability utilities such as logging.
package obs

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns the structured logger used by the exporter.
// Production output is JSON at info level; debug switches to a text handler
// at debug level for reading in a terminal.
func NewLogger(debug bool, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if debug {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
