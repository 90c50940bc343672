package transport

import (
	"encoding/json"
	"strings"
	"time"
)

// timestampLayout renders record timestamps with millisecond precision in
// UTC for both the console and cloud formats.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Record is one normalized log record on its way to the sinks.
type Record struct {
	Timestamp  time.Time
	Level      string
	LoggerName string

	ServiceName string
	CommitHash  string
	Owner       string
	Repo        string
	Environment string

	TraceID    string
	SpanID     string
	StackTrace string

	Message  string
	Metadata map[string]interface{}
}

// CloudLine renders the record in the semicolon-delimited cloud stream
// format with fixed field order:
//
//	timestamp;LEVEL;service_name;commit_hash;owner;repo;environment;trace_id;span_id;stack_trace;message
//
// Metadata travels inside the message field as a trailing JSON object so the
// field count stays fixed.
func (r Record) CloudLine() string {
	fields := []string{
		r.Timestamp.UTC().Format(timestampLayout),
		strings.ToUpper(r.Level),
		r.ServiceName,
		r.CommitHash,
		r.Owner,
		r.Repo,
		r.Environment,
		r.TraceID,
		r.SpanID,
		r.StackTrace,
		r.messageWithMetadata(),
	}
	return strings.Join(fields, ";")
}

// ConsoleLine renders the human-readable console format:
//
//	timestamp [LEVEL] [loggerName]? message {jsonMetadata}?
//
// The logger-name segment is omitted when the logger's name equals the
// service name.
func (r Record) ConsoleLine() string {
	var sb strings.Builder
	sb.WriteString(r.Timestamp.UTC().Format(timestampLayout))
	sb.WriteString(" [")
	sb.WriteString(strings.ToUpper(r.Level))
	sb.WriteString("]")
	if r.LoggerName != "" && r.LoggerName != r.ServiceName {
		sb.WriteString(" [")
		sb.WriteString(r.LoggerName)
		sb.WriteString("]")
	}
	sb.WriteString(" ")
	sb.WriteString(r.Message)
	if meta := r.metadataJSON(); meta != "" {
		sb.WriteString(" ")
		sb.WriteString(meta)
	}
	return sb.String()
}

func (r Record) messageWithMetadata() string {
	meta := r.metadataJSON()
	if meta == "" {
		return r.Message
	}
	return r.Message + " " + meta
}

// metadataJSON renders metadata as a JSON object with sorted keys, or ""
// when there is none. Unencodable metadata degrades to its Go string form
// rather than dropping the record.
func (r Record) metadataJSON() string {
	if len(r.Metadata) == 0 {
		return ""
	}
	encoded, err := json.Marshal(r.Metadata)
	if err != nil {
		safe := make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			safe[k] = strings.TrimSpace(strings.ReplaceAll(stringify(v), "\n", " "))
		}
		encoded, _ = json.Marshal(safe)
	}
	return string(encoded)
}
