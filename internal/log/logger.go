package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Format selects the log record encoding.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown log format")

// ParseFormat returns the Format named s. Empty selects FormatText.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// NewLogger returns a text logger writing to w. Verbose enables debug
// records; otherwise Info and above are written.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewSecureHandler(h))
}

// NewJSONLogger is NewLogger with JSON output.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewSecureHandler(h))
}

func newLogger(w io.Writer, verbose bool, format Format) *slog.Logger {
	if format == FormatJSON {
		return NewJSONLogger(w, verbose)
	}
	return NewLogger(w, verbose)
}

// OpenFileLogger returns a logger writing to console and to the file at
// path, which is truncated first. An empty path logs to console only.
// The returned closer closes the file.
func OpenFileLogger(console io.Writer, path string, verbose bool, format Format) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return newLogger(console, verbose, format), nopCloser{}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // log path is user supplied
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return newLogger(io.MultiWriter(console, f), verbose, format), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
