// Package logger provides the JSON slog logger shared by every process.
//
// Records are enriched from the context: OTel trace and span ids, the chi
// request id, and any attributes bound with WithAttrs (the auth middleware
// binds tenant_id and user_id). Call the *Context methods to get them.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ghuser/inventory/pkg/config"
)

// Logger is the logging interface handed to services and handlers.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
	// ToSlog exposes the underlying logger for libraries that take *slog.Logger.
	ToSlog() *slog.Logger
}

// New writes JSON records to stdout at cfg.LogLevel, tagged with the service
// name and environment.
func New(cfg *config.Config) Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(cfg *config.Config, w io.Writer) Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(cfg.LogLevel)})
	var args []any
	if cfg.ServiceName != "" {
		args = append(args, "service", cfg.ServiceName)
	}
	if cfg.Environment != "" {
		args = append(args, "env", cfg.Environment)
	}
	return &slogLogger{Logger: slog.New(&contextHandler{h}).With(args...)}
}

// Nop discards everything.
func Nop() Logger {
	return &slogLogger{Logger: slog.New(slog.DiscardHandler)}
}

// ParseLevel maps debug, info, warn and error (any case) to a slog level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

type slogLogger struct {
	*slog.Logger
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{Logger: l.Logger.With(args...)}
}

func (l *slogLogger) ToSlog() *slog.Logger {
	return l.Logger
}
