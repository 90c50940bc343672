package transport

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleSink writes human-readable lines synchronously. It is independent
// of credential state and never participates in rotation.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleSink writes to stdout.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{out: os.Stdout}
}

// NewConsoleSinkTo writes to an arbitrary writer. Used in tests.
func NewConsoleSinkTo(w io.Writer) *ConsoleSink {
	return &ConsoleSink{out: w}
}

// Name implements Sink.
func (s *ConsoleSink) Name() string {
	return "console"
}

// Write renders the record's console line. Console writes never suspend.
func (s *ConsoleSink) Write(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintln(s.out, rec.ConsoleLine()); err != nil {
		return &SinkError{Kind: SinkErrorUnknown, Sink: s.Name(), Err: err}
	}
	return nil
}

// Drain implements Sink. Console writes are synchronous, so there is never
// anything pending.
func (s *ConsoleSink) Drain(context.Context) error {
	return nil
}

// Close implements Sink. The underlying writer (stdout) is not owned by the
// sink and stays open.
func (s *ConsoleSink) Close() error {
	return nil
}
