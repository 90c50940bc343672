package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/traceroot-ai/traceroot-sdk-go/pkg/diag"
	"github.com/traceroot-ai/traceroot-sdk-go/pkg/metrics"
)

// Sink is one destination for log records. Write may be asynchronous under
// the hood; Drain blocks until everything accepted so far has been
// delivered. Implementations whose backend offers no drain signal return
// from Drain immediately (best effort).
type Sink interface {
	Name() string
	Write(ctx context.Context, rec Record) error
	Drain(ctx context.Context) error
	Close() error
}

// sinkState tracks a managed cloud sink through the rotation protocol.
type sinkState int

const (
	stateActive sinkState = iota
	stateDraining
	stateClosed
)

type managedSink struct {
	sink  Sink
	state sinkState
}

// drainTimeout bounds the asynchronous drain step of a rotation so a stuck
// backend cannot pin an old sink forever.
const drainTimeout = 30 * time.Second

// Controller owns the sink handles of one root logger. Writes fan out to
// whichever sinks are attached; rotation hot-swaps the cloud sink without
// interrupting writes. Every sink failure is caught here, reported on the
// diagnostic channel and counted, never propagated.
type Controller struct {
	mu      sync.Mutex
	console Sink
	kafka   Sink
	cloud   []*managedSink
	closed  bool

	drains sync.WaitGroup

	diag    *diag.Logger
	metrics *metrics.Metrics
}

// NewController builds an empty controller. The metrics handle may be nil.
func NewController(diagLogger *diag.Logger, m *metrics.Metrics) *Controller {
	if diagLogger == nil {
		diagLogger = diag.Nop()
	}
	return &Controller{diag: diagLogger, metrics: m}
}

// SetConsole attaches the console sink. Called once at construction; the
// console never rotates.
func (c *Controller) SetConsole(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.console = s
}

// SetKafka attaches the optional Kafka sink. Like the console it never
// rotates.
func (c *Controller) SetKafka(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kafka = s
}

// AttachCloud attaches a cloud sink as Active. During rotation two cloud
// sinks are briefly attached at once.
func (c *Controller) AttachCloud(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cloud = append(c.cloud, &managedSink{sink: s, state: stateActive})
}

// HasCloud reports whether at least one cloud sink is attached.
func (c *Controller) HasCloud() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cloud) > 0
}

// Dispatch writes the record to the selected transports. Failures are
// swallowed after diagnostics and metrics; a broken sink never fails the
// caller's log call.
func (c *Controller) Dispatch(ctx context.Context, rec Record, toConsole, toCloud, toKafka bool) {
	c.mu.Lock()
	var targets []Sink
	if toConsole && c.console != nil {
		targets = append(targets, c.console)
	}
	if toCloud {
		for _, ms := range c.cloud {
			if ms.state != stateClosed {
				targets = append(targets, ms.sink)
			}
		}
	}
	if toKafka && c.kafka != nil {
		targets = append(targets, c.kafka)
	}
	c.mu.Unlock()

	for _, sink := range targets {
		c.writeOne(ctx, sink, rec)
	}
}

// writeOne performs one guarded sink write, converting panics and errors
// into diagnostics.
func (c *Controller) writeOne(ctx context.Context, sink Sink, rec Record) {
	defer func() {
		if r := recover(); r != nil {
			c.diag.Error("sink write panicked", fmt.Errorf("%v", r), map[string]interface{}{
				"sink": sink.Name(),
			})
			c.metrics.ObserveSinkError(sink.Name(), SinkErrorUnknown.String())
		}
	}()

	if err := sink.Write(ctx, rec); err != nil {
		classified := classifySinkError(sink.Name(), err)
		c.diag.Warn("sink write failed", classified, map[string]interface{}{
			"sink":  sink.Name(),
			"level": rec.Level,
		})
		c.metrics.ObserveSinkError(sink.Name(), classified.Kind.String())
		return
	}
	c.metrics.ObserveRecord(sink.Name(), rec.Level)
}

// Rotate hot-swaps the cloud transport onto newSink. Step order matters:
// attach the new sink first so no write window is lost, then drain the old
// sinks asynchronously, then detach them once drained. Any failure is
// reported and swallowed.
func (c *Controller) Rotate(newSink Sink) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = newSink.Close()
		return
	}
	old := make([]*managedSink, 0, len(c.cloud))
	for _, ms := range c.cloud {
		if ms.state == stateActive {
			ms.state = stateDraining
			old = append(old, ms)
		}
	}
	c.cloud = append(c.cloud, &managedSink{sink: newSink, state: stateActive})
	c.mu.Unlock()

	for _, ms := range old {
		c.drains.Add(1)
		go c.retire(ms)
	}
	c.metrics.ObserveRotation()
}

// retire drains one superseded sink, closes it and detaches it.
func (c *Controller) retire(ms *managedSink) {
	defer c.drains.Done()
	defer func() {
		if r := recover(); r != nil {
			c.diag.Error("sink retirement panicked", fmt.Errorf("%v", r), map[string]interface{}{
				"sink": ms.sink.Name(),
			})
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	if err := ms.sink.Drain(ctx); err != nil {
		c.diag.Warn("draining superseded sink failed", classifySinkError(ms.sink.Name(), err), nil)
	}
	if err := ms.sink.Close(); err != nil {
		c.diag.Warn("closing superseded sink failed", classifySinkError(ms.sink.Name(), err), nil)
	}

	c.mu.Lock()
	ms.state = stateClosed
	kept := c.cloud[:0]
	for _, existing := range c.cloud {
		if existing != ms {
			kept = append(kept, existing)
		}
	}
	c.cloud = kept
	c.mu.Unlock()
}

// Drain blocks until every attached cloud sink reports drained, including
// sinks still retiring from a rotation. It returns immediately when no
// cloud sink is attached. Console and Kafka are excluded: the console is
// synchronous and Kafka offers no drain signal.
func (c *Controller) Drain(ctx context.Context) error {
	c.mu.Lock()
	active := make([]Sink, 0, len(c.cloud))
	for _, ms := range c.cloud {
		if ms.state == stateActive {
			active = append(active, ms.sink)
		}
	}
	c.mu.Unlock()

	var firstErr error
	for _, sink := range active {
		if err := c.drainOne(ctx, sink); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	c.drains.Wait()
	return firstErr
}

// drainOne guards a single drain call against panics.
func (c *Controller) drainOne(ctx context.Context, sink Sink) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transport: drain of %s panicked: %v", sink.Name(), r)
		}
	}()
	if err := sink.Drain(ctx); err != nil {
		c.diag.Warn("sink drain failed", classifySinkError(sink.Name(), err), nil)
		return err
	}
	return nil
}

// Close drains and closes every attached sink and marks the controller
// closed. Safe to call more than once.
func (c *Controller) Close(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	console, kafka := c.console, c.kafka
	cloud := make([]*managedSink, len(c.cloud))
	copy(cloud, c.cloud)
	c.console, c.kafka, c.cloud = nil, nil, nil
	c.mu.Unlock()

	for _, ms := range cloud {
		if ms.state != stateActive {
			continue
		}
		if err := c.drainOne(ctx, ms.sink); err == nil {
			ms.state = stateDraining
		}
		c.closeOne(ms.sink)
		ms.state = stateClosed
	}
	c.drains.Wait()

	if kafka != nil {
		c.closeOne(kafka)
	}
	if console != nil {
		c.closeOne(console)
	}
}

func (c *Controller) closeOne(sink Sink) {
	defer func() {
		if r := recover(); r != nil {
			c.diag.Error("sink close panicked", fmt.Errorf("%v", r), map[string]interface{}{
				"sink": sink.Name(),
			})
		}
	}()
	if err := sink.Close(); err != nil {
		c.diag.Warn("sink close failed", classifySinkError(sink.Name(), err), nil)
	}
}
