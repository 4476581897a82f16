package streams

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	aggmocks "order-metrics/internal/aggregators/mocks"
	"order-metrics/internal/shared/loggers"
	"order-metrics/internal/shared/svcerrors"
	"order-metrics/internal/stores"
	storemocks "order-metrics/internal/stores/mocks"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeLog is a single-partition event log shared by every reader opened on it.
// A new reader resumes after the last committed offset, like a consumer group.
type fakeLog struct {
	mu         sync.Mutex
	messages   []kafka.Message
	nextOffset int64
	commits    []int64
	opened     int
	closed     int
}

func newFakeLog(payloads ...string) *fakeLog {
	log := &fakeLog{}
	for i, p := range payloads {
		log.messages = append(log.messages, kafka.Message{
			Topic:     "order_events",
			Partition: 0,
			Offset:    int64(i),
			Key:       []byte("T1"),
			Value:     []byte(p),
			Time:      time.Date(2025, 12, 28, 18, 3, 15, 0, time.UTC),
		})
	}
	return log
}

func (l *fakeLog) newReader() EventReader {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opened++
	return &fakeReader{log: l, pos: l.nextOffset}
}

func (l *fakeLog) snapshot() (commits []int64, opened, closed int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int64(nil), l.commits...), l.opened, l.closed
}

type fakeReader struct {
	log *fakeLog
	pos int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.log.mu.Lock()
	if r.pos < int64(len(r.log.messages)) {
		msg := r.log.messages[r.pos]
		r.pos++
		r.log.mu.Unlock()
		return msg, nil
	}
	r.log.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.log.mu.Lock()
	defer r.log.mu.Unlock()
	for _, m := range msgs {
		r.log.commits = append(r.log.commits, m.Offset)
		r.log.nextOffset = m.Offset + 1
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.log.mu.Lock()
	defer r.log.mu.Unlock()
	r.log.closed++
	return nil
}

func testConsumerOptions() ConsumerOptions {
	return ConsumerOptions{
		Topic:                "order_events",
		QueuePartitions:      2,
		QueueBufferSize:      4,
		RestartDelay:         10 * time.Millisecond,
		MaxRetries:           2,
		RetryInitialInterval: time.Millisecond,
		RetryMaxInterval:     2 * time.Millisecond,
	}
}

func startConsumer(t *testing.T, log *fakeLog, aggregation *aggmocks.MockAggregationService, deadLetters *storemocks.MockDeadLetterStore) {
	t.Helper()
	consumer := NewOrderEventConsumer(log.newReader, aggregation, deadLetters, testConsumerOptions(), loggers.Nop())
	consumer.Start(context.Background())
	t.Cleanup(consumer.Stop)
}

func waitForCommits(t *testing.T, log *fakeLog, want []int64) {
	t.Helper()
	require.Eventually(t, func() bool {
		commits, _, _ := log.snapshot()
		return assert.ObjectsAreEqual(want, commits)
	}, 2*time.Second, 5*time.Millisecond)
}

func unavailable() *svcerrors.ServiceError {
	return svcerrors.NewUnavailableError("AGG_2000", "bucket store unavailable", errors.New("connection refused"))
}

func TestOrderEventConsumer_CommitsInOrder(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	aggregation := aggmocks.NewMockAggregationService(ctrl)
	deadLetters := storemocks.NewMockDeadLetterStore(ctrl)
	log := newFakeLog(`{"n":0}`, `{"n":1}`, `{"n":2}`)

	var mu sync.Mutex
	var seen []string
	aggregation.EXPECT().Aggregate(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, payload []byte, receivedAt time.Time) *svcerrors.ServiceError {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, string(payload))
			assert.Equal(t, 2025, receivedAt.Year())
			return nil
		}).Times(3)

	startConsumer(t, log, aggregation, deadLetters)

	waitForCommits(t, log, []int64{0, 1, 2})
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{`{"n":0}`, `{"n":1}`, `{"n":2}`}, seen)
}

func TestOrderEventConsumer_MalformedGoesToDeadLetterAndIsCommitted(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	aggregation := aggmocks.NewMockAggregationService(ctrl)
	deadLetters := storemocks.NewMockDeadLetterStore(ctrl)
	log := newFakeLog(`{"tenantId":""}`, `{"n":1}`)

	gomock.InOrder(
		aggregation.EXPECT().Aggregate(gomock.Any(), []byte(`{"tenantId":""}`), gomock.Any()).
			Return(svcerrors.NewInvalidArgumentError("AGG_1000", "malformed order event", errors.New("tenantId is required"))),
		aggregation.EXPECT().Aggregate(gomock.Any(), []byte(`{"n":1}`), gomock.Any()).Return(nil),
	)
	deadLetters.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, letter *stores.DeadLetter) error {
		assert.Equal(t, "order_events", letter.Topic)
		assert.Equal(t, int64(0), letter.Offset)
		assert.Equal(t, "T1", letter.Key)
		assert.Equal(t, "AGG_1000", letter.ErrorCode)
		assert.Equal(t, `{"tenantId":""}`, letter.Payload)
		return nil
	})

	startConsumer(t, log, aggregation, deadLetters)

	waitForCommits(t, log, []int64{0, 1})
}

func TestOrderEventConsumer_DeadLetterFailureStillCommits(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	aggregation := aggmocks.NewMockAggregationService(ctrl)
	deadLetters := storemocks.NewMockDeadLetterStore(ctrl)
	log := newFakeLog(`not json`)

	aggregation.EXPECT().Aggregate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(svcerrors.NewInvalidArgumentError("AGG_1000", "malformed order event", nil))
	deadLetters.EXPECT().Put(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	startConsumer(t, log, aggregation, deadLetters)

	waitForCommits(t, log, []int64{0})
}

func TestOrderEventConsumer_RetriesUnavailableThenCommits(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	aggregation := aggmocks.NewMockAggregationService(ctrl)
	deadLetters := storemocks.NewMockDeadLetterStore(ctrl)
	log := newFakeLog(`{"n":0}`)

	gomock.InOrder(
		aggregation.EXPECT().Aggregate(gomock.Any(), gomock.Any(), gomock.Any()).Return(unavailable()).Times(2),
		aggregation.EXPECT().Aggregate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
	)

	startConsumer(t, log, aggregation, deadLetters)

	waitForCommits(t, log, []int64{0})
	_, opened, _ := log.snapshot()
	assert.Equal(t, 1, opened)
}

func TestOrderEventConsumer_RestartsSubscriptionWhenRetriesAreSpent(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	aggregation := aggmocks.NewMockAggregationService(ctrl)
	deadLetters := storemocks.NewMockDeadLetterStore(ctrl)
	log := newFakeLog(`{"n":0}`)

	// MaxRetries is 2: three attempts on the first subscription, then redelivery on the second.
	gomock.InOrder(
		aggregation.EXPECT().Aggregate(gomock.Any(), gomock.Any(), gomock.Any()).Return(unavailable()).Times(3),
		aggregation.EXPECT().Aggregate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
	)

	startConsumer(t, log, aggregation, deadLetters)

	waitForCommits(t, log, []int64{0})
	_, opened, closed := log.snapshot()
	assert.Equal(t, 2, opened)
	assert.GreaterOrEqual(t, closed, 1)
}

func TestOrderEventConsumer_RecoversPanicAndRetries(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	aggregation := aggmocks.NewMockAggregationService(ctrl)
	deadLetters := storemocks.NewMockDeadLetterStore(ctrl)
	log := newFakeLog(`{"n":0}`)

	gomock.InOrder(
		aggregation.EXPECT().Aggregate(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, []byte, time.Time) *svcerrors.ServiceError { panic("nil map") }),
		aggregation.EXPECT().Aggregate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
	)

	startConsumer(t, log, aggregation, deadLetters)

	waitForCommits(t, log, []int64{0})
}

func TestOrderEventConsumer_DeadLettersPayloadThatKeepsPanicking(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	aggregation := aggmocks.NewMockAggregationService(ctrl)
	deadLetters := storemocks.NewMockDeadLetterStore(ctrl)
	log := newFakeLog(`{"poison":true}`, `{"n":1}`)

	// MaxRetries is 2: three panics on the first message, then the next message proceeds.
	gomock.InOrder(
		aggregation.EXPECT().Aggregate(gomock.Any(), []byte(`{"poison":true}`), gomock.Any()).DoAndReturn(
			func(context.Context, []byte, time.Time) *svcerrors.ServiceError { panic("index out of range") }).Times(3),
		aggregation.EXPECT().Aggregate(gomock.Any(), []byte(`{"n":1}`), gomock.Any()).Return(nil),
	)
	deadLetters.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, letter *stores.DeadLetter) error {
		assert.Equal(t, int64(0), letter.Offset)
		assert.Equal(t, "SYS_9000", letter.ErrorCode)
		assert.Equal(t, `{"poison":true}`, letter.Payload)
		assert.Contains(t, letter.Reason, "index out of range")
		return nil
	})

	startConsumer(t, log, aggregation, deadLetters)

	waitForCommits(t, log, []int64{0, 1})
	_, opened, _ := log.snapshot()
	assert.Equal(t, 1, opened, "a panicking payload must not restart the subscription")
}

func TestOrderEventConsumer_StopClosesReader(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	log := newFakeLog()
	consumer := NewOrderEventConsumer(log.newReader, aggmocks.NewMockAggregationService(ctrl), storemocks.NewMockDeadLetterStore(ctrl), testConsumerOptions(), loggers.Nop())

	consumer.Start(context.Background())
	require.Eventually(t, func() bool {
		_, opened, _ := log.snapshot()
		return opened == 1
	}, time.Second, 5*time.Millisecond)

	consumer.Stop()
	consumer.Stop()

	_, opened, closed := log.snapshot()
	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, closed)
}
