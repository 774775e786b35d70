package logger

import (
	"context"
	"log/slog"
)

// context keys - use a struct to prevent conflicts
type contextKey struct {
	name string
}

var (
	logAttrsKey      = contextKey{"log-attrs"}
	requestLoggerKey = contextKey{"request-logger"}
)

// ContextWithLogAttrs allows handlers to add attributes to the final request log,
// for example the email of the signed in admin.
//
// The attributes are appended to a slice shared with the RequestLogging middleware.
func ContextWithLogAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if attrPtr, ok := ctx.Value(logAttrsKey).(*[]slog.Attr); ok {
		*attrPtr = append(*attrPtr, attrs...)
		return ctx
	}
	// programming error - the request did not go through RequestLogging
	slog.Warn("ContextWithLogAttrs called on context without shared log attributes slice")
	return ctx
}

func ContextLogAttrs(ctx context.Context) []slog.Attr {
	if attrPtr, ok := ctx.Value(logAttrsKey).(*[]slog.Attr); ok {
		return *attrPtr
	}
	return nil
}

// ContextRequestLogger returns the request-scoped logger (tagged with the request_id).
// Falls back to the default logger outside of RequestLogging, e.g in handler tests.
func ContextRequestLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(requestLoggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
