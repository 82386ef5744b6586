// Package logger provides leveled logging for artid.
//
// Debug, Info and Section output appears only in verbose mode (--verbose).
// Warn and Error always print. In text format lines carry a "[LEVEL] "
// prefix; in JSON format every line is a structured slog record, which
// is what the HTTP server uses.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Format selects the output encoding.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	format  = FormatText
	output  io.Writer = os.Stderr
	jsonLog           = newJSONLogger(os.Stderr, false)
)

func newJSONLogger(w io.Writer, v bool) *slog.Logger {
	level := slog.LevelWarn
	if v {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	jsonLog = newJSONLogger(output, verbose)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	jsonLog = newJSONLogger(output, verbose)
}

// SetFormat switches between text and JSON output.
// Unknown values fall back to text.
func SetFormat(f Format) {
	mu.Lock()
	defer mu.Unlock()
	if f != FormatJSON {
		f = FormatText
	}
	format = f
}

// With returns a structured logger writing to the current output.
// Records below Warn are dropped unless verbose mode is on.
func With(args ...any) *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if format == FormatJSON {
		return jsonLog.With(args...)
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level})).With(args...)
}

func emit(level slog.Level, prefix, msg string, args []any) {
	mu.RLock()
	defer mu.RUnlock()
	if level < slog.LevelWarn && !verbose {
		return
	}
	text := fmt.Sprintf(msg, args...)
	if format == FormatJSON {
		jsonLog.Log(context.Background(), level, text)
		return
	}
	fmt.Fprintf(output, "%s%s\n", prefix, text)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	emit(slog.LevelDebug, "[DEBUG] ", format, args)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	emit(slog.LevelInfo, "[INFO] ", format, args)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	emit(slog.LevelWarn, "[WARN] ", format, args)
}

// Error prints an error message.
func Error(format string, args ...any) {
	emit(slog.LevelError, "[ERROR] ", format, args)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	if format == FormatJSON {
		jsonLog.Debug("section", "name", name)
		return
	}
	fmt.Fprintf(output, "\n=== %s ===\n", name)
}
