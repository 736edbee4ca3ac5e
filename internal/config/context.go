package config

import (
	"context"
	"log/slog"
)

// loggerKey is used to store the logger in context.
// Shared with the cli package so commands can retrieve it without an
// import cycle.
type loggerKey struct{}

// LoggerKey returns the context key used for storing the logger.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
