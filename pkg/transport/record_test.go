package transport

import (
	"strings"
	"testing"
	"time"
)

func sampleRecord() Record {
	return Record{
		Timestamp:   time.Date(2025, 6, 1, 12, 30, 45, 123_000_000, time.UTC),
		Level:       "info",
		LoggerName:  "checkout",
		ServiceName: "shop",
		CommitHash:  "abc1234",
		Owner:       "acme",
		Repo:        "shop",
		Environment: "production",
		TraceID:     "1-68fa3c01-9d4e5f6a7b8c9d0e1f203142",
		SpanID:      "00f067aa0ba902b7",
		StackTrace:  "/src/main.go:main:10",
		Message:     "order placed",
	}
}

func TestCloudLineFieldOrder(t *testing.T) {
	fields := strings.Split(sampleRecord().CloudLine(), ";")
	want := []string{
		"2025-06-01T12:30:45.123Z",
		"INFO",
		"shop",
		"abc1234",
		"acme",
		"shop",
		"production",
		"1-68fa3c01-9d4e5f6a7b8c9d0e1f203142",
		"00f067aa0ba902b7",
		"/src/main.go:main:10",
		"order placed",
	}
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %d: %v", len(want), len(fields), fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("field %d: got %q, want %q", i, fields[i], want[i])
		}
	}
}

func TestCloudLineMetadataInsideMessageField(t *testing.T) {
	rec := sampleRecord()
	rec.Metadata = map[string]interface{}{"order_id": "o-1"}

	fields := strings.Split(rec.CloudLine(), ";")
	if len(fields) != 11 {
		t.Fatalf("metadata must not add fields, got %d", len(fields))
	}
	if fields[10] != `order placed {"order_id":"o-1"}` {
		t.Errorf("unexpected message field %q", fields[10])
	}
}

func TestConsoleLineWithLoggerName(t *testing.T) {
	rec := sampleRecord()
	rec.Metadata = map[string]interface{}{"order_id": "o-1"}

	got := rec.ConsoleLine()
	want := `2025-06-01T12:30:45.123Z [INFO] [checkout] order placed {"order_id":"o-1"}`
	if got != want {
		t.Errorf("console line:\n got %q\nwant %q", got, want)
	}
}

func TestConsoleLineOmitsNameMatchingService(t *testing.T) {
	rec := sampleRecord()
	rec.LoggerName = rec.ServiceName

	got := rec.ConsoleLine()
	if strings.Contains(got, "[shop]") {
		t.Errorf("logger name equal to service name must be omitted: %q", got)
	}
	if !strings.HasPrefix(got, "2025-06-01T12:30:45.123Z [INFO] order placed") {
		t.Errorf("unexpected console line %q", got)
	}
}

func TestConsoleLineCriticalLevel(t *testing.T) {
	rec := sampleRecord()
	rec.Level = "critical"
	if !strings.Contains(rec.ConsoleLine(), "[CRITICAL]") {
		t.Errorf("critical level must render distinctly: %q", rec.ConsoleLine())
	}
	if !strings.Contains(rec.CloudLine(), ";CRITICAL;") {
		t.Errorf("cloud line must tag critical: %q", rec.CloudLine())
	}
}
