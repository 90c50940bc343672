package transport

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/traceroot-ai/traceroot-sdk-go/pkg/config"
	"github.com/traceroot-ai/traceroot-sdk-go/pkg/diag"
)

// kafkaWriter is the subset of kafka.Writer the sink uses. Narrowed so tests
// can substitute a fake without a broker.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes records to a Kafka topic. Delivery is asynchronous;
// failed batches are reported through the writer's completion callback onto
// the diagnostic channel. Kafka has no per-message drain signal, so Drain
// returns immediately and remaining messages are flushed by Close.
type KafkaSink struct {
	writer kafkaWriter
	diag   *diag.Logger
}

// NewKafkaSink builds the sink from the shared configuration record.
func NewKafkaSink(cfg config.Config, diagLogger *diag.Logger) (*KafkaSink, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("transport: kafka export enabled but no brokers configured")
	}
	topic := cfg.KafkaTopic
	if topic == "" {
		topic = "traceroot-logs"
	}
	if diagLogger == nil {
		diagLogger = diag.Nop()
	}

	s := &KafkaSink{diag: diagLogger}
	s.writer = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				s.diag.Warn("kafka batch delivery failed", classifySinkError(s.Name(), err), map[string]interface{}{
					"topic":    topic,
					"messages": len(messages),
				})
			}
		},
	}
	return s, nil
}

// Name implements Sink.
func (s *KafkaSink) Name() string {
	return "kafka"
}

// Write hands one record to the async writer, keyed by trace id so records
// of one trace land in one partition.
func (s *KafkaSink) Write(ctx context.Context, rec Record) error {
	err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.TraceID),
		Value: []byte(rec.CloudLine()),
	})
	if err != nil {
		return &SinkError{Kind: SinkErrorNetwork, Sink: s.Name(), Err: err}
	}
	return nil
}

// Drain implements Sink. kafka-go exposes no flush short of closing the
// writer, so drain is best effort; Close delivers whatever is still
// buffered.
func (s *KafkaSink) Drain(context.Context) error {
	return nil
}

// Close flushes buffered messages and releases the writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
