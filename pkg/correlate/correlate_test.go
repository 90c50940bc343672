package correlate

import (
	"context"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// newRecordingSpan starts a real recording span backed by an in-memory
// recorder so tests can inspect buffered events.
func newRecordingSpan(t *testing.T) (context.Context, *tracetest.SpanRecorder, trace.Span) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	ctx, span := provider.Tracer("correlate-test").Start(context.Background(), "op")
	return ctx, recorder, span
}

func TestFromContextNoSpan(t *testing.T) {
	ident := FromContext(context.Background(), false)
	if ident.TraceID != NoTrace {
		t.Errorf("expected %q, got %q", NoTrace, ident.TraceID)
	}
	if ident.SpanID != NoSpan {
		t.Errorf("expected %q, got %q", NoSpan, ident.SpanID)
	}
	if ident.Recording {
		t.Error("expected non-recording identity")
	}
}

func TestFromContextNilContext(t *testing.T) {
	ident := FromContext(nil, true)
	if ident.TraceID != NoTrace || ident.SpanID != NoSpan {
		t.Errorf("nil context must degrade to sentinels, got %+v", ident)
	}
}

func TestFromContextLocalMode(t *testing.T) {
	ctx, _, span := newRecordingSpan(t)
	defer span.End()

	ident := FromContext(ctx, true)
	if !ident.Recording {
		t.Fatal("expected recording identity")
	}
	want := span.SpanContext().TraceID().String()
	if ident.TraceID != want {
		t.Errorf("local mode trace id should be raw hex: got %q, want %q", ident.TraceID, want)
	}
	if len(ident.SpanID) != 16 || ident.SpanID != span.SpanContext().SpanID().String() {
		t.Errorf("unexpected span id %q", ident.SpanID)
	}
}

func TestFromContextCloudMode(t *testing.T) {
	ctx, _, span := newRecordingSpan(t)
	defer span.End()

	ident := FromContext(ctx, false)
	raw := span.SpanContext().TraceID().String()
	want := "1-" + raw[:8] + "-" + raw[8:]
	if ident.TraceID != want {
		t.Errorf("cloud mode trace id: got %q, want %q", ident.TraceID, want)
	}
	if !strings.HasPrefix(ident.TraceID, "1-") {
		t.Errorf("cloud trace id must carry the 1- prefix, got %q", ident.TraceID)
	}
	if len(ident.TraceID) != 2+8+1+24 {
		t.Errorf("cloud trace id must be two-segment 8/24 hex, got %q", ident.TraceID)
	}
}

func TestFromContextEndedSpanDegrades(t *testing.T) {
	ctx, _, span := newRecordingSpan(t)
	span.End()

	ident := FromContext(ctx, true)
	if ident.Recording {
		t.Error("ended span is not recording; identity must degrade")
	}
	if ident.TraceID != NoTrace || ident.SpanID != NoSpan {
		t.Errorf("expected sentinels for ended span, got %+v", ident)
	}
}

func TestQueueLogEventBuffersOneEvent(t *testing.T) {
	ctx, recorder, span := newRecordingSpan(t)

	ident := FromContext(ctx, true)
	QueueLogEvent(ident, "info", "svc", "hello", "main.go:main:10", map[string]interface{}{
		"user_id": 42,
		"tags":    []string{"a", "b"},
	})
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected one ended span, got %d", len(spans))
	}
	events := spans[0].Events()
	if len(events) != 1 {
		t.Fatalf("expected exactly one buffered event, got %d", len(events))
	}
	ev := events[0]
	if ev.Name != "log.info" {
		t.Errorf("expected event name log.info, got %q", ev.Name)
	}

	attrs := make(map[string]string, len(ev.Attributes))
	for _, kv := range ev.Attributes {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	if attrs["message"] != "hello" {
		t.Errorf("expected message attribute, got %q", attrs["message"])
	}
	if attrs["logger_name"] != "svc" {
		t.Errorf("expected logger_name attribute, got %q", attrs["logger_name"])
	}
	if attrs["user_id"] != "42" {
		t.Errorf("expected stringified user_id, got %q", attrs["user_id"])
	}
	if attrs["tags"] != `["a","b"]` {
		t.Errorf("expected JSON-encoded slice, got %q", attrs["tags"])
	}
}

func TestQueueLogEventSkipsNonRecording(t *testing.T) {
	ctx, recorder, span := newRecordingSpan(t)
	span.End()

	ident := FromContext(ctx, true)
	QueueLogEvent(ident, "info", "svc", "late", "", nil)

	if events := recorder.Ended()[0].Events(); len(events) != 0 {
		t.Errorf("non-recording span must not receive events, got %d", len(events))
	}
}

func TestFlattenMetadata(t *testing.T) {
	flat := FlattenMetadata(map[string]interface{}{
		"s":   "text",
		"i":   7,
		"f":   1.5,
		"b":   true,
		"nil": nil,
		"obj": map[string]int{"x": 1},
		"err": errTest{},
	})

	want := map[string]string{
		"s":   "text",
		"i":   "7",
		"f":   "1.5",
		"b":   "true",
		"nil": "null",
		"obj": `{"x":1}`,
		"err": "test error",
	}
	for k, v := range want {
		if flat[k] != v {
			t.Errorf("key %s: got %q, want %q", k, flat[k], v)
		}
	}

	if FlattenMetadata(nil) != nil {
		t.Error("empty metadata should flatten to nil")
	}
}

type errTest struct{}

func (errTest) Error() string { return "test error" }
