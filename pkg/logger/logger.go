// Package logger provides the storefront's structured logger, built on log/slog.
//
// The key extension over plain slog is WithCtx: the request middleware stores a
// logger already tagged with the request ID in the context, so every log line
// from a handler or service is correlated:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("product created", "product_id", p.ID)
//	// → time=... level=INFO msg="product created" request_id=host/a1b2c3-000001 product_id=...
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// L is the process-wide base logger. Setup replaces it; until then it is a
// development text logger so packages can log from tests without booting.
var L = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

// Setup installs the base logger for env. Production gets JSON at INFO, every
// other environment gets human-readable text at DEBUG. Extra handlers (the
// Mongo sink, for instance) receive every record as well.
func Setup(env string, extra ...slog.Handler) *slog.Logger {
	L = slog.New(NewHandler(os.Stdout, env, extra...))
	slog.SetDefault(L)
	return L
}

// NewHandler builds the handler Setup uses, writing to w.
func NewHandler(w io.Writer, env string, extra ...slog.Handler) slog.Handler {
	var handler slog.Handler
	switch env {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	if len(extra) == 0 {
		return handler
	}
	return NewMultiHandler(append([]slog.Handler{handler}, extra...)...)
}

type ctxKey struct{}

// WithCtx returns the per-request logger stored by InjectLogger, or the base
// logger when ctx carries none.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log in ctx. Called by the request logging middleware.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
