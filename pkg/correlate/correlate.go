package correlate

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Sentinel identifiers used when no recording span is active or its ids are
// all-zero.
const (
	NoTrace = "no-trace"
	NoSpan  = "no-span"
)

// Identity carries the correlation fields derived from the active span,
// together with the span itself so callers can buffer events on it.
type Identity struct {
	TraceID   string
	SpanID    string
	Recording bool

	span trace.Span
}

// Span returns the active span the identity was derived from. It is the
// no-op span when no span was active.
func (id Identity) Span() trace.Span {
	return id.span
}

// FromContext derives the correlation identity from ctx. A nil context, a
// missing span, a non-recording span, or an all-zero trace id all yield the
// sentinels. Any panic while reading span state is swallowed; correlation
// degrades to the sentinels rather than failing the log call.
func FromContext(ctx context.Context, localMode bool) (ident Identity) {
	ident = Identity{TraceID: NoTrace, SpanID: NoSpan}
	defer func() {
		if recover() != nil {
			ident = Identity{TraceID: NoTrace, SpanID: NoSpan}
		}
	}()
	if ctx == nil {
		return ident
	}

	span := trace.SpanFromContext(ctx)
	ident.span = span

	sc := span.SpanContext()
	if !span.IsRecording() || !sc.HasTraceID() {
		return ident
	}

	ident.Recording = true
	ident.TraceID = FormatTraceID(sc.TraceID(), localMode)
	if sc.HasSpanID() {
		ident.SpanID = sc.SpanID().String()
	}
	return ident
}

// FormatTraceID renders a trace id either as the raw 32-hex string (local
// mode) or in the X-Ray compatible two-segment form "1-<8hex>-<24hex>".
func FormatTraceID(id trace.TraceID, localMode bool) string {
	hex := id.String()
	if localMode {
		return hex
	}
	return "1-" + hex[:8] + "-" + hex[8:]
}
