package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/abhisek/learnhub/internal/store"
)

// SetupLogging routes slog output to the file at path so diagnostics do not
// draw over the TUI. An empty path discards logs. The returned function
// closes the file.
func SetupLogging(path string, level slog.Level) (func() error, error) {
	if path == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return func() error { return nil }, nil
	}
	if err := store.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return f.Close, nil
}
