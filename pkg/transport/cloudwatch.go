package transport

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"

	"github.com/traceroot-ai/traceroot-sdk-go/pkg/config"
	"github.com/traceroot-ai/traceroot-sdk-go/pkg/diag"
)

const (
	batchPublishFrequency = 5 * time.Second

	// See: https://docs.aws.amazon.com/AmazonCloudWatchLogs/latest/APIReference/API_PutLogEvents.html
	perEventBytes          = 26
	maximumBytesPerPut     = 1048576
	maximumLogEventsPerPut = 10000
	maximumBytesPerEvent   = 262144 - perEventBytes

	messageBufferDepth = 4096
)

// cloudwatchAPI is the subset of the CloudWatch Logs client the sink uses.
// Narrowed so tests can substitute a fake.
type cloudwatchAPI interface {
	CreateLogGroup(ctx context.Context, params *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error)
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

type flushRequest struct {
	done chan struct{}
}

// CloudWatchSink ships records to a CloudWatch Logs stream. Writes enqueue;
// a background goroutine batches on time and size the way the CloudWatch API
// requires. Drain flushes the queue and pending batch; Close drains and
// stops the goroutine.
type CloudWatchSink struct {
	groupName  string
	streamName string
	client     cloudwatchAPI
	diag       *diag.Logger

	messages chan Record
	flushes  chan flushRequest
	done     chan struct{}

	lock   sync.RWMutex
	closed bool
}

// NewCloudWatchSink builds a sink from the configuration record and one
// credential snapshot. The log group is derived from the environment and the
// stream from the service name and the snapshot's destination hash.
func NewCloudWatchSink(cfg config.Config, snap *config.CredentialSnapshot, diagLogger *diag.Logger) (*CloudWatchSink, error) {
	if snap == nil {
		return nil, fmt.Errorf("transport: no credential snapshot for cloudwatch sink")
	}

	region := snap.Region
	if region == "" {
		region = cfg.AwsRegion
	}
	if region == "" {
		return nil, fmt.Errorf("transport: no region for cloudwatch sink")
	}

	client := cloudwatchlogs.New(cloudwatchlogs.Options{
		Region: region,
		Credentials: aws.NewCredentialsCache(
			awscreds.NewStaticCredentialsProvider(snap.AccessKeyID, snap.SecretAccessKey, snap.SessionToken),
		),
	})

	return newCloudWatchSink(LogGroupName(cfg.Environment), LogStreamName(cfg.ServiceName, snap.Hash), client, diagLogger)
}

// newCloudWatchSink wires the sink over any cloudwatchAPI. Split out so
// tests can inject a fake client.
func newCloudWatchSink(group, stream string, client cloudwatchAPI, diagLogger *diag.Logger) (*CloudWatchSink, error) {
	if diagLogger == nil {
		diagLogger = diag.Nop()
	}
	s := &CloudWatchSink{
		groupName:  group,
		streamName: stream,
		client:     client,
		diag:       diagLogger,
		messages:   make(chan Record, messageBufferDepth),
		flushes:    make(chan flushRequest),
		done:       make(chan struct{}),
	}
	if err := s.ensureStream(context.Background()); err != nil {
		return nil, err
	}
	go s.collectBatch()
	return s, nil
}

// LogGroupName derives the cloud log group from the environment.
func LogGroupName(environment string) string {
	if environment == "" {
		environment = "development"
	}
	return "traceroot-" + environment
}

// LogStreamName derives the stream name from the service identity and the
// snapshot's destination hash.
func LogStreamName(serviceName, hash string) string {
	if hash == "" {
		return serviceName
	}
	return serviceName + "-" + hash
}

// Name implements Sink.
func (s *CloudWatchSink) Name() string {
	return "cloudwatch"
}

// Write enqueues one record for batched delivery.
func (s *CloudWatchSink) Write(ctx context.Context, rec Record) error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.closed {
		return &SinkError{Kind: SinkErrorUnknown, Sink: s.Name(), Err: errors.New("sink closed")}
	}
	select {
	case s.messages <- rec:
		return nil
	case <-ctx.Done():
		return &SinkError{Kind: SinkErrorNetwork, Sink: s.Name(), Err: ctx.Err()}
	}
}

// Drain publishes everything enqueued so far and blocks until the batch is
// on the wire (or ctx expires).
func (s *CloudWatchSink) Drain(ctx context.Context) error {
	s.lock.RLock()
	if s.closed {
		s.lock.RUnlock()
		return nil
	}
	s.lock.RUnlock()

	req := flushRequest{done: make(chan struct{})}
	select {
	case s.flushes <- req:
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops intake, publishes the remainder and waits for the batching
// goroutine to exit. Idempotent.
func (s *CloudWatchSink) Close() error {
	s.lock.Lock()
	if !s.closed {
		s.closed = true
		close(s.messages)
	}
	s.lock.Unlock()
	<-s.done
	return nil
}

// ensureStream creates the log group and stream, tolerating both already
// existing.
func (s *CloudWatchSink) ensureStream(ctx context.Context) error {
	_, err := s.client.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(s.groupName),
	})
	if err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("transport: creating log group %s: %w", s.groupName, err)
	}

	_, err = s.client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(s.groupName),
		LogStreamName: aws.String(s.streamName),
	})
	if err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("transport: creating log stream %s: %w", s.streamName, err)
	}
	return nil
}

func isAlreadyExists(err error) bool {
	var exists *types.ResourceAlreadyExistsException
	return errors.As(err, &exists)
}

// collectBatch batches queued records on time and size. Flush requests
// publish everything queued so far; closing the message channel publishes
// the remainder and ends the goroutine.
func (s *CloudWatchSink) collectBatch() {
	defer close(s.done)

	ticker := time.NewTicker(batchPublishFrequency)
	defer ticker.Stop()

	var events []types.InputLogEvent
	bytes := 0

	for {
		select {
		case <-ticker.C:
			s.publishBatch(events)
			events = events[:0]
			bytes = 0
		case req := <-s.flushes:
			events, bytes = s.drainQueued(events, bytes)
			s.publishBatch(events)
			events = events[:0]
			bytes = 0
			close(req.done)
		case rec, more := <-s.messages:
			if !more {
				s.publishBatch(events)
				return
			}
			events, bytes = s.appendRecord(events, bytes, rec)
		}
	}
}

// drainQueued moves everything currently queued into the pending batch,
// publishing intermediate batches when limits are hit.
func (s *CloudWatchSink) drainQueued(events []types.InputLogEvent, bytes int) ([]types.InputLogEvent, int) {
	for {
		select {
		case rec, more := <-s.messages:
			if !more {
				return events, bytes
			}
			events, bytes = s.appendRecord(events, bytes, rec)
		default:
			return events, bytes
		}
	}
}

// appendRecord splits the rendered line by the per-event byte cap and folds
// it into the batch, publishing when event-count or byte limits are reached.
func (s *CloudWatchSink) appendRecord(events []types.InputLogEvent, bytes int, rec Record) ([]types.InputLogEvent, int) {
	line := rec.CloudLine()
	timestamp := rec.Timestamp.UnixNano() / int64(time.Millisecond)

	unprocessed := []byte(line)
	for len(unprocessed) > 0 {
		lineBytes := len(unprocessed)
		if lineBytes > maximumBytesPerEvent {
			lineBytes = maximumBytesPerEvent
		}
		chunk := unprocessed[:lineBytes]
		unprocessed = unprocessed[lineBytes:]

		if len(events) >= maximumLogEventsPerPut || bytes+lineBytes+perEventBytes > maximumBytesPerPut {
			s.publishBatch(events)
			events = events[:0]
			bytes = 0
		}
		events = append(events, types.InputLogEvent{
			Message:   aws.String(string(chunk)),
			Timestamp: aws.Int64(timestamp),
		})
		bytes += lineBytes + perEventBytes
	}
	return events, bytes
}

// publishBatch puts one batch of events, sorted by timestamp as the API
// requires. Failures are reported on the diagnostic channel and the batch is
// dropped; delivery is at-most-once past this point.
func (s *CloudWatchSink) publishBatch(events []types.InputLogEvent) {
	if len(events) == 0 {
		return
	}

	sort.SliceStable(events, func(i, j int) bool {
		return aws.ToInt64(events[i].Timestamp) < aws.ToInt64(events[j].Timestamp)
	})

	batch := make([]types.InputLogEvent, len(events))
	copy(batch, events)

	_, err := s.client.PutLogEvents(context.Background(), &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(s.groupName),
		LogStreamName: aws.String(s.streamName),
		LogEvents:     batch,
	})
	if err != nil {
		s.diag.Warn("cloudwatch batch publish failed", classifySinkError(s.Name(), err), map[string]interface{}{
			"log_group":  s.groupName,
			"log_stream": s.streamName,
			"events":     len(batch),
		})
	}
}
