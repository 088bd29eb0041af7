// Package log builds the slog handlers used by the doubles host and CLI.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats accepted by WithFormat.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// HandlerOption configures NewHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	writer    io.Writer
	format    string
	level     slog.Leveler
	addSource bool
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		writer: os.Stderr,
		format: FormatText,
		level:  slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
// Passing a *slog.LevelVar allows the level to change later.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithFormat selects FormatText or FormatJSON. Unknown formats fall back to text.
func WithFormat(format string) HandlerOption {
	return func(c *handlerConfig) {
		c.format = format
	}
}

// WithWriter sets the destination. Default: os.Stderr
func WithWriter(w io.Writer) HandlerOption {
	return func(c *handlerConfig) {
		c.writer = w
	}
}

// NewHandler creates a text or JSON slog handler with the given options.
func NewHandler(opts ...HandlerOption) slog.Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	hopts := &slog.HandlerOptions{
		AddSource: cfg.addSource,
		Level:     cfg.level,
	}
	if cfg.format == FormatJSON {
		return slog.NewJSONHandler(cfg.writer, hopts)
	}
	return slog.NewTextHandler(cfg.writer, hopts)
}

// New returns a logger backed by NewHandler.
func New(opts ...HandlerOption) *slog.Logger {
	return slog.New(NewHandler(opts...))
}

// ParseLevel converts debug, info, warn or error (any case) to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
