// Package correlate reads the active OpenTelemetry span and derives the
// trace/span identifiers attached to every log record.
//
// The package only consumes the span capability surface (span context,
// recording flag, attributes, events); it never creates spans and never
// talks to an exporter. When no recording span is active, or its identifiers
// are all-zero, the sentinels NoTrace and NoSpan are used so downstream
// formatting stays fixed-width and parseable.
//
// Two trace-id formats are produced: the raw 32-hex form for local mode, and
// an X-Ray compatible "1-<8hex>-<24hex>" form for cloud mode.
//
// In local mode the package also buffers each log record as a span event
// named "log.<level>" on the active span. Events are attached before the
// span ends because the trace provider gives no ordering guarantee between
// late events and span end.
package correlate
