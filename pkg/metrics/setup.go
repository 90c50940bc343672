package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics instruments the SDK itself: how many records each sink accepted,
// how many writes failed and why, and how credential refreshes went. A nil
// *Metrics is valid and records nothing, so callers never have to branch.
type Metrics struct {
	Server   *http.Server
	Registry *prometheus.Registry

	recordsTotal   *prometheus.CounterVec
	sinkErrors     *prometheus.CounterVec
	refreshesTotal *prometheus.CounterVec
	rotationsTotal prometheus.Counter
}

// NewMetrics builds the SDK metric set on a fresh registry. When
// cfg.EnableServer is set an HTTP server is prepared (but not started) on
// cfg.Address serving the scrape handler.
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()
	wrappedRegistry := prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registry)

	m := &Metrics{
		Registry: registry,
		recordsTotal: createCounterVec(
			"traceroot_log_records_total",
			"Log records accepted per sink and level.",
			[]string{"sink", "level"},
		),
		sinkErrors: createCounterVec(
			"traceroot_sink_errors_total",
			"Sink failures per sink and error kind.",
			[]string{"sink", "kind"},
		),
		refreshesTotal: createCounterVec(
			"traceroot_credential_refreshes_total",
			"Credential refresh attempts by result.",
			[]string{"result"},
		),
	}
	m.rotationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "traceroot_transport_rotations_total",
		Help: "Cloud transport hot-swaps completed after a credential refresh.",
	})

	wrappedRegistry.MustRegister(m.recordsTotal, m.sinkErrors, m.refreshesTotal, m.rotationsTotal)

	if cfg.EnableServer {
		addr := cfg.Address
		if addr == "" {
			addr = DefaultMetricsAddress
		}
		m.Server = &http.Server{
			Addr:    addr,
			Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}
	}

	return m
}

// ObserveRecord counts one record accepted by a sink.
func (m *Metrics) ObserveRecord(sink, level string) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(sink, level).Inc()
}

// ObserveSinkError counts one recovered sink failure.
func (m *Metrics) ObserveSinkError(sink, kind string) {
	if m == nil {
		return
	}
	m.sinkErrors.WithLabelValues(sink, kind).Inc()
}

// ObserveRefresh counts one credential refresh attempt. Result is "success",
// "failure" or "skipped".
func (m *Metrics) ObserveRefresh(result string) {
	if m == nil {
		return
	}
	m.refreshesTotal.WithLabelValues(result).Inc()
}

// ObserveRotation counts one completed transport hot-swap.
func (m *Metrics) ObserveRotation() {
	if m == nil {
		return
	}
	m.rotationsTotal.Inc()
}
