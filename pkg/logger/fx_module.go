package logger

import (
	"context"

	"go.uber.org/fx"

	"github.com/traceroot-ai/traceroot-sdk-go/pkg/config"
)

// FXModule defines the Fx module for the logger package.
var FXModule = fx.Module("traceroot",
	fx.Provide(
		NewFromConfig,
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// NewFromConfig initializes the SDK from a resolved configuration record and
// returns the default root logger.
func NewFromConfig(cfg config.Config) (*Logger, error) {
	if err := Init(cfg); err != nil {
		return nil, err
	}
	return GetLogger("")
}

// RegisterLoggerLifecycle flushes and shuts the SDK down when the fx
// application stops.
func RegisterLoggerLifecycle(lc fx.Lifecycle, _ *Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return Shutdown(ctx) // drains cloud sinks before closing
		},
	})
}
