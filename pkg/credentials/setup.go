package credentials

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/traceroot-ai/traceroot-sdk-go/pkg/config"
	"github.com/traceroot-ai/traceroot-sdk-go/pkg/diag"
	"github.com/traceroot-ai/traceroot-sdk-go/pkg/metrics"
)

// RotationListener is notified after a successful refresh so it can hot-swap
// transports onto the new snapshot. Implementations must not block for long;
// drain work belongs on the listener's own goroutines.
//
//go:generate mockgen -source=setup.go -destination=mock_listener.go -package=credentials
type RotationListener interface {
	RotateTransport(snap *config.CredentialSnapshot)
}

// Fetcher abstracts the verification client so tests can substitute one.
type Fetcher interface {
	Fetch(ctx context.Context, token string) (*config.CredentialSnapshot, error)
}

// Manager owns credential freshness for the whole process.
type Manager struct {
	cell    *config.Cell
	client  Fetcher
	diag    *diag.Logger
	metrics *metrics.Metrics

	group singleflight.Group

	mu        sync.Mutex
	listeners []RotationListener

	// now is swappable for freshness boundary tests.
	now func() time.Time
}

// NewManager wires a Manager over the shared config cell. The metrics
// handle may be nil.
func NewManager(cell *config.Cell, client Fetcher, diagLogger *diag.Logger, m *metrics.Metrics) *Manager {
	if diagLogger == nil {
		diagLogger = diag.Nop()
	}
	return &Manager{
		cell:    cell,
		client:  client,
		diag:    diagLogger,
		metrics: m,
		now:     time.Now,
	}
}

// Register adds a rotation listener. Root loggers register themselves at
// construction time.
func (m *Manager) Register(l RotationListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Bootstrap performs the initial credential fetch and installs the snapshot.
// It is called once when the first root logger with cloud export comes up.
// On failure the snapshot stays absent, the failure is reported on the
// diagnostic channel and nil is returned: the logger degrades to
// console-only operation.
func (m *Manager) Bootstrap(ctx context.Context) *config.CredentialSnapshot {
	cfg := m.cell.Load()
	if cfg.Token == "" {
		m.diag.Warn("credential bootstrap skipped: no token configured", nil, nil)
		m.metrics.ObserveRefresh("skipped")
		return nil
	}

	snap, err := m.client.Fetch(ctx, cfg.Token)
	if err != nil {
		m.diag.Warn("credential bootstrap failed, falling back to console-only export", err, nil)
		m.metrics.ObserveRefresh("failure")
		return nil
	}

	m.cell.ReplaceSnapshot(snap)
	m.metrics.ObserveRefresh("success")
	return snap
}

// Ensure returns a usable snapshot, refreshing first when the current one is
// stale. It never returns an error: a failed refresh leaves the previous
// (possibly expired) snapshot in place and the caller proceeds with it. An
// absent snapshot is returned as nil without triggering a refresh, since no
// cloud operation is possible anyway.
func (m *Manager) Ensure(ctx context.Context) *config.CredentialSnapshot {
	snap := m.cell.Snapshot()
	if snap == nil {
		return nil
	}
	if !snap.ExpiresWithin(m.now(), RefreshBufferWindow) {
		return snap
	}
	return m.refresh(ctx, snap)
}

// refresh funnels every stale observer through one in-flight fetch. All
// concurrent callers receive the result of the same network request. The
// fetch runs detached from the initiating caller's context: an awaiter that
// stops waiting must not abort the flight the others share. The client's own
// HTTP timeout still bounds it.
func (m *Manager) refresh(ctx context.Context, previous *config.CredentialSnapshot) *config.CredentialSnapshot {
	fetchCtx := context.Background()
	if ctx != nil {
		fetchCtx = context.WithoutCancel(ctx)
	}
	result, err, _ := m.group.Do("refresh", func() (interface{}, error) {
		cfg := m.cell.Load()
		fetched, fetchErr := m.client.Fetch(fetchCtx, cfg.Token)
		if fetchErr != nil {
			return nil, fetchErr
		}
		m.cell.ReplaceSnapshot(fetched)
		m.notifyRotation(fetched)
		return fetched, nil
	})
	if err != nil {
		m.diag.Warn("credential refresh failed, continuing with previous snapshot", err, map[string]interface{}{
			"expiration_utc": previous.ExpirationUTC,
		})
		m.metrics.ObserveRefresh("failure")
		return previous
	}

	m.metrics.ObserveRefresh("success")
	return result.(*config.CredentialSnapshot)
}

// notifyRotation tells every registered root logger to hot-swap its cloud
// transport onto the new snapshot.
func (m *Manager) notifyRotation(snap *config.CredentialSnapshot) {
	m.mu.Lock()
	listeners := make([]RotationListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, l := range listeners {
		l.RotateTransport(snap)
	}
}
