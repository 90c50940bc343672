package correlate

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// QueueLogEvent buffers one log record as an event named "log.<level>" on
// the identity's span. It is a no-op unless the span is recording. The event
// carries the level, logger name, message, correlation ids, call site and a
// flattened copy of the metadata, so a local collector sees the record even
// if the span ends before any log export runs.
func QueueLogEvent(ident Identity, level, loggerName, message, callSite string, metadata map[string]interface{}) {
	if !ident.Recording || ident.span == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("level", level),
		attribute.String("logger_name", loggerName),
		attribute.String("message", message),
		attribute.String("trace_id", ident.TraceID),
		attribute.String("span_id", ident.SpanID),
		attribute.String("stack_trace", callSite),
	}

	flat := FlattenMetadata(metadata)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, attribute.String(k, flat[k]))
	}

	ident.span.AddEvent("log."+level,
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(time.Now()),
	)
}

// FlattenMetadata stringifies metadata values for span-event attributes.
// Primitive values use their natural string form; everything else is JSON
// encoded, falling back to fmt.Sprintf on encode failure.
func FlattenMetadata(metadata map[string]interface{}) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = stringifyValue(v)
	}
	return out
}

func stringifyValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprint(val)
	case error:
		return val.Error()
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(encoded)
	}
}
