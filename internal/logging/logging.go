// Package logging provides the process-wide structured logger.
// Logs go to a file so they never interleave with the interactive prompt
// or the rendered pipeline output on stdout.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Logger is the public logger instance accessible from all packages
var Logger *slog.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Initialize sets up the logger based on the debug flag and environment
func Initialize(debug bool, debugFile string) error {
	if os.Getenv("ADOPR_DEBUG") == "1" {
		debug = true
	}
	if envFile := os.Getenv("ADOPR_DEBUG_FILE"); envFile != "" && debugFile == "" {
		debugFile = envFile
	}

	if !debug && debugFile == "" {
		Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		return nil
	}

	logFilePath := debugFile
	if logFilePath == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return fmt.Errorf("failed to resolve log directory: %w", err)
		}
		logFilePath = filepath.Join(cacheDir, "adopr", "debug.log")
	}

	if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	Logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return nil
}
