package logger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/traceroot-ai/traceroot-sdk-go/pkg/config"
	"github.com/traceroot-ai/traceroot-sdk-go/pkg/credentials"
	"github.com/traceroot-ai/traceroot-sdk-go/pkg/diag"
	"github.com/traceroot-ai/traceroot-sdk-go/pkg/metrics"
	"github.com/traceroot-ai/traceroot-sdk-go/pkg/transport"
)

// ErrNotInitialized is returned by GetLogger when Init has not been called.
// Missing initialization is the one hard failure in the logging API.
var ErrNotInitialized = errors.New("logger: traceroot not initialized, call Init first")

// ErrAlreadyInitialized is returned by Init when the SDK is already up.
// Call Shutdown before re-initializing.
var ErrAlreadyInitialized = errors.New("logger: traceroot already initialized")

// bootstrapTimeout bounds the initial credential fetch performed when the
// first cloud-exporting root logger is constructed.
const bootstrapTimeout = 10 * time.Second

// Options carries optional collaborators for InitWithOptions. Zero values
// select the production defaults.
type Options struct {
	// Diagnostics overrides the SDK's internal diagnostic logger.
	Diagnostics *diag.Logger

	// Metrics receives the SDK's self-instrumentation. Nil disables it.
	Metrics *metrics.Metrics

	// CredentialClient overrides the verification endpoint client.
	CredentialClient credentials.Fetcher

	// VerboseDiagnostics lowers the diagnostic channel to debug level when
	// no Diagnostics logger is supplied.
	VerboseDiagnostics bool
}

// registry is the process-wide SDK state installed by Init.
type registry struct {
	cell    *config.Cell
	diag    *diag.Logger
	metrics *metrics.Metrics
	creds   *credentials.Manager

	mu      sync.Mutex
	loggers map[cacheKey]*Logger
}

// cacheKey identifies one live root logger: a name plus an optional level
// override. At most one instance exists per key.
type cacheKey struct {
	name          string
	levelOverride string
}

var (
	globalMu sync.Mutex
	global   *registry
)

// Init wires the SDK's shared state from a resolved configuration record.
// It must be called once before GetLogger; calling it while the SDK is
// already initialized returns ErrAlreadyInitialized.
func Init(cfg config.Config) error {
	return InitWithOptions(cfg, Options{})
}

// InitWithOptions is Init with injectable collaborators, primarily for
// tests and hosts that already run their own metrics registry.
func InitWithOptions(cfg config.Config, opts Options) error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		return ErrAlreadyInitialized
	}

	cell := config.NewCell(cfg)

	diagLogger := opts.Diagnostics
	if diagLogger == nil {
		diagLogger = diag.New(opts.VerboseDiagnostics)
	}

	client := opts.CredentialClient
	if client == nil {
		client = credentials.NewClient(cell.Load().APIEndpoint)
	}

	global = &registry{
		cell:    cell,
		diag:    diagLogger,
		metrics: opts.Metrics,
		creds:   credentials.NewManager(cell, client, diagLogger, opts.Metrics),
		loggers: make(map[cacheKey]*Logger),
	}
	return nil
}

// GetLogger returns the cached root logger for the given name, constructing
// it on first use. An empty name selects the service name from the shared
// configuration.
func GetLogger(name string) (*Logger, error) {
	return getLogger(name, "")
}

// GetLoggerWithLevel is GetLogger with a per-logger level override. The
// override applies instead of the configured log level; channel toggles
// still win, so a fully disabled channel stays silent.
func GetLoggerWithLevel(name, levelOverride string) (*Logger, error) {
	return getLogger(name, levelOverride)
}

func getLogger(name, levelOverride string) (*Logger, error) {
	globalMu.Lock()
	reg := global
	globalMu.Unlock()
	if reg == nil {
		return nil, ErrNotInitialized
	}

	cfg := reg.cell.Load()
	if name == "" {
		name = cfg.ServiceName
	}
	key := cacheKey{name: name, levelOverride: levelOverride}

	reg.mu.Lock()
	if l, ok := reg.loggers[key]; ok {
		reg.mu.Unlock()
		return l, nil
	}
	reg.mu.Unlock()

	// Built outside the map lock: the credential bootstrap may spend up to
	// bootstrapTimeout on the network and must not block unrelated
	// GetLogger calls.
	l := reg.newRoot(cfg, name, levelOverride)

	reg.mu.Lock()
	if existing, ok := reg.loggers[key]; ok {
		reg.mu.Unlock()
		l.transports.Close(context.Background())
		return existing, nil
	}
	reg.loggers[key] = l
	reg.mu.Unlock()

	if cfg.CloudExportActive() {
		reg.creds.Register(l)
	}
	return l, nil
}

// newRoot constructs a root logger and its transports. Sink construction
// failures degrade the logger (cloud export dropped, console kept) instead
// of failing GetLogger.
func (reg *registry) newRoot(cfg config.Config, name, levelOverride string) *Logger {
	l := &Logger{
		name:          name,
		levelOverride: levelOverride,
		cell:          reg.cell,
		creds:         reg.creds,
		diag:          reg.diag,
		transports:    transport.NewController(reg.diag, reg.metrics),
	}

	if cfg.EnableLogConsoleExport {
		l.transports.SetConsole(transport.NewConsoleSink())
	}

	if cfg.EnableLogKafkaExport {
		if sink, err := transport.NewKafkaSink(cfg, reg.diag); err != nil {
			reg.diag.Warn("kafka sink unavailable", err, map[string]interface{}{"logger": name})
		} else {
			l.transports.SetKafka(sink)
		}
	}

	if cfg.CloudExportActive() {
		snap := reg.cell.Snapshot()
		if snap == nil {
			ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
			snap = reg.creds.Bootstrap(ctx)
			cancel()
		}
		if snap != nil {
			if sink, err := transport.NewCloudWatchSink(cfg, snap, reg.diag); err != nil {
				reg.diag.Warn("cloud sink unavailable, continuing console-only", err, map[string]interface{}{"logger": name})
			} else {
				l.transports.AttachCloud(sink)
			}
		}
	}

	return l
}

// Flush drains the cloud sinks of every registered root logger.
func Flush(ctx context.Context) error {
	globalMu.Lock()
	reg := global
	globalMu.Unlock()
	if reg == nil {
		return nil
	}

	reg.mu.Lock()
	roots := make([]*Logger, 0, len(reg.loggers))
	for _, l := range reg.loggers {
		roots = append(roots, l)
	}
	reg.mu.Unlock()

	var firstErr error
	for _, l := range roots {
		if err := l.Flush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Shutdown flushes every registered root logger, closes all sink handles
// and clears the registry. It is idempotent: calling it when the SDK was
// never initialized, or calling it twice, is a no-op.
func Shutdown(ctx context.Context) error {
	globalMu.Lock()
	reg := global
	global = nil
	globalMu.Unlock()
	if reg == nil {
		return nil
	}

	reg.mu.Lock()
	roots := make([]*Logger, 0, len(reg.loggers))
	for _, l := range reg.loggers {
		roots = append(roots, l)
	}
	reg.loggers = make(map[cacheKey]*Logger)
	reg.mu.Unlock()

	var firstErr error
	for _, l := range roots {
		if err := l.transports.Drain(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("logger: draining %s: %w", l.name, err)
		}
		l.transports.Close(ctx)
	}

	_ = reg.diag.Sync()
	return firstErr
}
