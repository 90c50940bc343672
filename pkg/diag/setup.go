package diag

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a wrapper around Uber's Zap logger dedicated to SDK self-reports.
type Logger struct {
	Zap *zap.Logger
}

// New initializes the diagnostic logger. Diagnostics are reported at Warn
// and above unless verbose is set.
func New(verbose bool) *Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	logLevel := zap.WarnLevel
	if verbose {
		logLevel = zap.DebugLevel
	}

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(logLevel),
		Development:       false,
		DisableCaller:     true,
		DisableStacktrace: true,
		Sampling:          nil,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths: []string{
			"stderr",
		},
		ErrorOutputPaths: []string{
			"stderr",
		},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"channel": "traceroot-diagnostics",
		},
	}

	logger, err := config.Build()
	if err != nil {
		log.Fatal(err)
	}

	return &Logger{Zap: logger}
}

// Nop returns a diagnostic logger that discards everything. Useful in tests.
func Nop() *Logger {
	return &Logger{Zap: zap.NewNop()}
}

// Sync flushes any buffered diagnostic output.
func (l *Logger) Sync() error {
	return l.Zap.Sync()
}
