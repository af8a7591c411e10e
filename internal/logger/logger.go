// Package logger provides structured logging for the curriculum builder.
// It wraps log/slog with JSON formatting and optionally ships records to
// Better Stack through an async pipeline.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogbetterstack "github.com/samber/slog-betterstack"
)

// Logger is the application logger
type Logger struct {
	*slog.Logger

	// async is the remote shipping handler, kept for flush on shutdown.
	async *AsyncHandler
}

// Options configures optional remote log shipping.
type Options struct {
	// BetterstackToken enables remote log shipping when non-empty.
	BetterstackToken string

	// BetterstackEndpoint is the ingest endpoint (required with token).
	BetterstackEndpoint string
}

// New creates a new logger instance with JSON formatting
func New(level string) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithOptions creates a logger that writes JSON to stdout and, when a
// Better Stack token is configured, also ships records asynchronously so
// remote ingestion never blocks request handling.
func NewWithOptions(level string, opts Options) *Logger {
	stdout := newJSONHandler(parseLevel(level), os.Stdout)

	if opts.BetterstackToken == "" {
		return &Logger{Logger: slog.New(stdout)}
	}

	remote := slogbetterstack.Option{
		Token:    opts.BetterstackToken,
		Endpoint: opts.BetterstackEndpoint,
		Level:    parseLevel(level),
	}.NewBetterstackHandler()

	async := NewAsyncHandler(remote, AsyncOptions{})
	return &Logger{
		Logger: slog.New(NewMultiHandler(stdout, async)),
		async:  async,
	}
}

// NewWithWriter creates a new logger instance with JSON formatting writing to the provided writer
func NewWithWriter(level string, w io.Writer) *Logger {
	return &Logger{Logger: slog.New(newJSONHandler(parseLevel(level), w))}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newJSONHandler(level slog.Level, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			if a.Key == slog.LevelKey {
				a.Key = "level"
				level := a.Value.String()
				if level == "WARN" {
					level = "warning"
				} else {
					level = strings.ToLower(level)
				}
				a.Value = slog.StringValue(level)
			}
			if a.Key == slog.MessageKey {
				a.Key = "message"
			}
			return a
		},
	}
	return slog.NewJSONHandler(w, opts)
}

// WithModule creates a new entry with module field
func (l *Logger) WithModule(module string) *Logger {
	return &Logger{Logger: l.With("module", module), async: l.async}
}

// WithRequestID creates a new entry with request ID field
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.With("request_id", requestID), async: l.async}
}

// WithError creates a new entry with error field
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.With("error", err), async: l.async}
}

// WithField creates a new entry with a single field
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{Logger: l.With(key, value), async: l.async}
}

// WithFields creates a new entry with multiple fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.With(args...), async: l.async}
}

// Fatal logs the message at error level and exits the process.
// Reserved for unrecoverable startup conditions such as missing
// credentials or failed database initialization.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	_ = l.Flush(context.Background())
	os.Exit(1)
}

// Flush drains pending remote log records, if remote shipping is enabled.
// Call during graceful shutdown.
func (l *Logger) Flush(ctx context.Context) error {
	if l.async == nil {
		return nil
	}
	return l.async.Shutdown(ctx)
}

// Compatibility methods for logrus-style formatting

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.Debug(fmt.Sprintf(format, args...))
}
