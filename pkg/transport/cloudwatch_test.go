package transport

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traceroot-ai/traceroot-sdk-go/pkg/diag"
)

type fakeCloudWatchAPI struct {
	mu sync.Mutex

	createGroupCalls  int
	createStreamCalls int
	createGroupErr    error
	createStreamErr   error

	putCalls []cloudwatchlogs.PutLogEventsInput
}

func (f *fakeCloudWatchAPI) CreateLogGroup(_ context.Context, _ *cloudwatchlogs.CreateLogGroupInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createGroupCalls++
	return &cloudwatchlogs.CreateLogGroupOutput{}, f.createGroupErr
}

func (f *fakeCloudWatchAPI) CreateLogStream(_ context.Context, _ *cloudwatchlogs.CreateLogStreamInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createStreamCalls++
	return &cloudwatchlogs.CreateLogStreamOutput{}, f.createStreamErr
}

func (f *fakeCloudWatchAPI) PutLogEvents(_ context.Context, params *cloudwatchlogs.PutLogEventsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls = append(f.putCalls, *params)
	return &cloudwatchlogs.PutLogEventsOutput{}, nil
}

func (f *fakeCloudWatchAPI) puts() []cloudwatchlogs.PutLogEventsInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]cloudwatchlogs.PutLogEventsInput, len(f.putCalls))
	copy(out, f.putCalls)
	return out
}

func TestLogGroupAndStreamNames(t *testing.T) {
	assert.Equal(t, "traceroot-production", LogGroupName("production"))
	assert.Equal(t, "traceroot-development", LogGroupName(""))
	assert.Equal(t, "checkout-ab12", LogStreamName("checkout", "ab12"))
	assert.Equal(t, "checkout", LogStreamName("checkout", ""))
}

func TestEnsureStreamCreatesGroupAndStream(t *testing.T) {
	api := &fakeCloudWatchAPI{}
	s, err := newCloudWatchSink("traceroot-test", "svc-h1", api, diag.Nop())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 1, api.createGroupCalls)
	assert.Equal(t, 1, api.createStreamCalls)
}

func TestEnsureStreamToleratesAlreadyExists(t *testing.T) {
	api := &fakeCloudWatchAPI{
		createGroupErr:  &types.ResourceAlreadyExistsException{Message: aws.String("group exists")},
		createStreamErr: &types.ResourceAlreadyExistsException{Message: aws.String("stream exists")},
	}
	s, err := newCloudWatchSink("traceroot-test", "svc-h1", api, diag.Nop())
	require.NoError(t, err)
	s.Close()
}

func TestEnsureStreamSurfacesOtherFailures(t *testing.T) {
	api := &fakeCloudWatchAPI{
		createStreamErr: &types.OperationAbortedException{Message: aws.String("boom")},
	}
	_, err := newCloudWatchSink("traceroot-test", "svc-h1", api, diag.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "svc-h1")
}

func TestWriteDrainPublishesBatch(t *testing.T) {
	api := &fakeCloudWatchAPI{}
	s, err := newCloudWatchSink("traceroot-test", "svc-h1", api, diag.Nop())
	require.NoError(t, err)
	defer s.Close()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// Enqueue out of timestamp order; the published batch must be sorted.
	require.NoError(t, s.Write(context.Background(), Record{
		Timestamp: base.Add(time.Second), Level: "INFO", Message: "second",
	}))
	require.NoError(t, s.Write(context.Background(), Record{
		Timestamp: base, Level: "INFO", Message: "first",
	}))

	require.NoError(t, s.Drain(context.Background()))

	puts := api.puts()
	require.Len(t, puts, 1)
	assert.Equal(t, "traceroot-test", aws.ToString(puts[0].LogGroupName))
	assert.Equal(t, "svc-h1", aws.ToString(puts[0].LogStreamName))
	require.Len(t, puts[0].LogEvents, 2)
	assert.Contains(t, aws.ToString(puts[0].LogEvents[0].Message), ";first")
	assert.Contains(t, aws.ToString(puts[0].LogEvents[1].Message), ";second")
	assert.Less(t,
		aws.ToInt64(puts[0].LogEvents[0].Timestamp),
		aws.ToInt64(puts[0].LogEvents[1].Timestamp))
}

func TestDrainWithEmptyQueueSkipsPut(t *testing.T) {
	api := &fakeCloudWatchAPI{}
	s, err := newCloudWatchSink("traceroot-test", "svc-h1", api, diag.Nop())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Drain(context.Background()))
	assert.Empty(t, api.puts())
}

func TestClosePublishesRemainderAndIsIdempotent(t *testing.T) {
	api := &fakeCloudWatchAPI{}
	s, err := newCloudWatchSink("traceroot-test", "svc-h1", api, diag.Nop())
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), Record{
		Timestamp: time.Now(), Level: "INFO", Message: "tail",
	}))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	puts := api.puts()
	require.Len(t, puts, 1)
	require.Len(t, puts[0].LogEvents, 1)

	err = s.Write(context.Background(), Record{Timestamp: time.Now()})
	require.Error(t, err)
	var sinkErr *SinkError
	require.ErrorAs(t, err, &sinkErr)
	assert.Equal(t, "cloudwatch", sinkErr.Sink)

	assert.NoError(t, s.Drain(context.Background()))
}

func TestAppendRecordSplitsOversizedLines(t *testing.T) {
	api := &fakeCloudWatchAPI{}
	s, err := newCloudWatchSink("traceroot-test", "svc-h1", api, diag.Nop())
	require.NoError(t, err)
	defer s.Close()

	big := Record{
		Timestamp: time.Now(),
		Level:     "INFO",
		Message:   strings.Repeat("x", maximumBytesPerEvent+100),
	}
	events, bytes := s.appendRecord(nil, 0, big)
	require.Len(t, events, 2)
	assert.Equal(t, maximumBytesPerEvent, len(aws.ToString(events[0].Message)))
	assert.Positive(t, bytes)
}
