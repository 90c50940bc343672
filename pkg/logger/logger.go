package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/traceroot-ai/traceroot-sdk-go/pkg/config"
	"github.com/traceroot-ai/traceroot-sdk-go/pkg/correlate"
	"github.com/traceroot-ai/traceroot-sdk-go/pkg/credentials"
	"github.com/traceroot-ai/traceroot-sdk-go/pkg/diag"
	"github.com/traceroot-ai/traceroot-sdk-go/pkg/transport"
)

// Logger emits trace-correlated records to the sinks owned by its root.
// Roots own a transport controller; children leave it nil and reach sinks
// through the parent chain. The childContext map is immutable after
// construction.
type Logger struct {
	name          string
	levelOverride string

	cell  *config.Cell
	creds *credentials.Manager
	diag  *diag.Logger

	// transports is set on roots only.
	transports *transport.Controller

	childContext map[string]interface{}
	parent       *Logger
}

var _ credentials.RotationListener = (*Logger)(nil)

// Child returns a new logger sharing this logger's sinks by reference, with
// the given context merged on top of the parent's. New keys win over parent
// keys at this step. The child delegates flush, shutdown and credential
// refresh to the root of its lineage.
func (l *Logger) Child(extra map[string]interface{}) *Logger {
	merged := make(map[string]interface{}, len(l.childContext)+len(extra))
	for k, v := range l.childContext {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return &Logger{
		name:          l.name,
		levelOverride: l.levelOverride,
		cell:          l.cell,
		creds:         l.creds,
		diag:          l.diag,
		childContext:  merged,
		parent:        l,
	}
}

// Name returns the logger's identity.
func (l *Logger) Name() string {
	return l.name
}

// root walks the parent chain to the parentless ancestor that owns the
// sinks.
func (l *Logger) root() *Logger {
	r := l
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Debug logs at debug level. The first string argument becomes the message;
// map arguments merge into the record's metadata.
func (l *Logger) Debug(ctx context.Context, args ...interface{}) {
	l.log(ctx, config.Debug, args)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, args ...interface{}) {
	l.log(ctx, config.Info, args)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, args ...interface{}) {
	l.log(ctx, config.Warn, args)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, args ...interface{}) {
	l.log(ctx, config.Error, args)
}

// Critical logs through the error path but tags the record with level
// "critical" so the cloud format can distinguish it from ordinary errors.
func (l *Logger) Critical(ctx context.Context, args ...interface{}) {
	l.log(ctx, config.Critical, args)
}

// log is the single emission path. It never panics through to the caller:
// any internal failure is reported on the diagnostic channel instead.
func (l *Logger) log(ctx context.Context, level string, args []interface{}) {
	defer func() {
		if r := recover(); r != nil {
			l.diag.Error("log call recovered", fmt.Errorf("%v", r), map[string]interface{}{
				"logger": l.name,
				"level":  level,
			})
		}
	}()

	cfg := l.cell.Load()

	// Normalization runs before gating: span-event buffering needs the
	// merged metadata even for records the sinks will not see.
	message, metadata := normalizeArgs(args, l.childContext)
	ident := correlate.FromContext(ctx, cfg.LocalMode)
	callSite := correlate.CaptureCallSite()

	if cfg.LocalMode {
		correlate.QueueLogEvent(ident, level, l.name, message, callSite, metadata)
	}

	if !l.levelPasses(cfg, level) {
		return
	}

	root := l.root()
	toCloud := cfg.CloudExportActive()
	if toCloud {
		// May suspend on a singleflight refresh; failures fall back to the
		// previous snapshot and never surface here.
		root.creds.Ensure(ctx)
	}

	rec := transport.Record{
		Timestamp:   time.Now(),
		Level:       level,
		LoggerName:  l.name,
		ServiceName: cfg.ServiceName,
		CommitHash:  cfg.GithubCommitHash,
		Owner:       cfg.GithubOwner,
		Repo:        cfg.GithubRepoName,
		Environment: cfg.Environment,
		TraceID:     ident.TraceID,
		SpanID:      ident.SpanID,
		StackTrace:  callSite,
		Message:     message,
		Metadata:    metadata,
	}
	root.transports.Dispatch(ctx, rec, cfg.EnableLogConsoleExport, toCloud, cfg.EnableLogKafkaExport)
}

// levelPasses gates one record against the effective level: Silent when
// every log channel is disabled, otherwise this logger's override or the
// configured level.
func (l *Logger) levelPasses(cfg config.Config, level string) bool {
	effective := cfg.EffectiveLogLevel()
	if effective == config.Silent {
		return false
	}
	if l.levelOverride != "" {
		effective = l.levelOverride
	}
	return config.LevelRank(level) >= config.LevelRank(effective)
}

// Flush waits until every cloud sink of this lineage's root reports
// drained. It resolves immediately when no cloud sink exists. Calling Flush
// on a nested child delegates to the root.
func (l *Logger) Flush(ctx context.Context) error {
	root := l.root()
	if root.transports == nil || !root.transports.HasCloud() {
		return nil
	}
	return root.transports.Drain(ctx)
}

// RefreshCredentials forces a freshness check on the shared snapshot. Only
// the root initiates the check; children delegate.
func (l *Logger) RefreshCredentials(ctx context.Context) {
	l.root().creds.Ensure(ctx)
}

// RotateTransport implements credentials.RotationListener: after a
// successful refresh the root builds a cloud sink on the new snapshot and
// hot-swaps it in. Failures leave the old sink attached.
func (l *Logger) RotateTransport(snap *config.CredentialSnapshot) {
	root := l.root()
	cfg := root.cell.Load()
	sink, err := transport.NewCloudWatchSink(cfg, snap, root.diag)
	if err != nil {
		root.diag.Warn("building rotated cloud sink failed, keeping previous transport", err, map[string]interface{}{
			"logger": root.name,
		})
		return
	}
	root.transports.Rotate(sink)
}
