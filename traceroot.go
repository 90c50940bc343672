package traceroot

import (
	"context"

	"github.com/traceroot-ai/traceroot-sdk-go/pkg/config"
	"github.com/traceroot-ai/traceroot-sdk-go/pkg/logger"
)

// Config is the shared configuration record handed to Init.
type Config = config.Config

// Logger is a named, trace-correlated logger.
type Logger = logger.Logger

// ErrNotInitialized is returned by GetLogger before Init has run.
var ErrNotInitialized = logger.ErrNotInitialized

// Init wires the SDK's shared state. Call once at process start.
func Init(cfg Config) error {
	return logger.Init(cfg)
}

// GetLogger returns the cached root logger for name, constructing it on
// first use. An empty name selects the configured service name.
func GetLogger(name string) (*Logger, error) {
	return logger.GetLogger(name)
}

// GetLoggerWithLevel is GetLogger with a per-logger level override.
func GetLoggerWithLevel(name, level string) (*Logger, error) {
	return logger.GetLoggerWithLevel(name, level)
}

// Flush drains the cloud sinks of every registered root logger.
func Flush(ctx context.Context) error {
	return logger.Flush(ctx)
}

// Shutdown flushes all roots, closes every sink handle and clears the
// registry. Idempotent.
func Shutdown(ctx context.Context) error {
	return logger.Shutdown(ctx)
}
