// Package logging provides the process-wide logger and byte formatting
// helpers shared by the CLI commands.
package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger provides structured logging with quiet-mode handling.
type Logger struct {
	l     *log.Logger
	quiet bool
}

// New creates a new logger. Quiet suppresses everything below errors;
// verbose enables debug output.
func New(quiet, verbose bool) *Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "depositpack",
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	if quiet {
		l.SetLevel(log.ErrorLevel)
	}
	return &Logger{l: l, quiet: quiet}
}

// Info logs an info message with optional key-value pairs.
func (l *Logger) Info(msg string, keyvals ...interface{}) {
	l.l.Info(msg, keyvals...)
}

// Debug logs a debug message with optional key-value pairs.
func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	l.l.Debug(msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	l.l.Warn(msg, keyvals...)
}

// Error logs an error message with optional key-value pairs.
func (l *Logger) Error(msg string, keyvals ...interface{}) {
	l.l.Error(msg, keyvals...)
}

// PrintSummary prints a summary of a packaging run.
func (l *Logger) PrintSummary(files int, payloadBytes int64, items, archives int, finalBytes int64, duration time.Duration) {
	if l.quiet {
		return
	}

	fmt.Println()
	fmt.Println("=== Summary ===")
	fmt.Printf("Payload: %d files (%s)\n", files, FormatBytes(payloadBytes))
	fmt.Printf("Upload set: %d items, %d archives (%s)\n", items, archives, FormatBytes(finalBytes))
	fmt.Printf("Duration: %s\n", duration.Round(time.Millisecond))
}

// FormatBytes formats bytes in human readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
