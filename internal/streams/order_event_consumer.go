package streams

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"order-metrics/internal/aggregators"
	"order-metrics/internal/shared/loggers"
	"order-metrics/internal/shared/metrics"
	"order-metrics/internal/shared/svcerrors"
	"order-metrics/internal/shared/ulid"
	"order-metrics/internal/stores"

	"github.com/cenkalti/backoff/v5"
	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=order_event_consumer.go -destination=./mocks/order_event_consumer_mock.go -package=mocks
type OrderEventConsumer interface {
	Start(ctx context.Context)
	Stop()
}

type ConsumerOptions struct {
	Topic                string
	QueuePartitions      int
	QueueBufferSize      int
	RestartDelay         time.Duration
	MaxRetries           int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

type orderEventConsumer struct {
	newReader          func() EventReader
	aggregationService aggregators.AggregationService
	deadLetterStore    stores.DeadLetterStore
	opts               ConsumerOptions

	wg       sync.WaitGroup
	stopOnce sync.Once
	cancel   context.CancelFunc

	logger loggers.Logger
}

func NewOrderEventConsumer(
	newReader func() EventReader,
	aggregationService aggregators.AggregationService,
	deadLetterStore stores.DeadLetterStore,
	opts ConsumerOptions,
	logger loggers.Logger,
) OrderEventConsumer {
	return &orderEventConsumer{
		newReader:          newReader,
		aggregationService: aggregationService,
		deadLetterStore:    deadLetterStore,
		opts:               opts,
		cancel:             func() {},
		logger:             logger,
	}
}

// Start runs the subscription supervisor in the background. A failed subscription is
// closed and reopened after the restart delay until ctx is done or Stop is called.
func (consumer *orderEventConsumer) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	consumer.cancel = cancel

	consumer.wg.Add(1)
	go func() {
		defer consumer.wg.Done()
		consumer.supervise(ctx)
	}()
}

// Stop cancels the subscription and waits for in-flight events to finish.
func (consumer *orderEventConsumer) Stop() {
	consumer.stopOnce.Do(func() { consumer.cancel() })
	consumer.wg.Wait()
}

func (consumer *orderEventConsumer) supervise(ctx context.Context) {
	for {
		err := consumer.runSubscription(ctx)
		if ctx.Err() != nil {
			return
		}

		metricSubscriptionRestartsTotal.WithLabelValues().Inc()
		consumer.logger.Error().Err(err).
			Dur(loggers.FieldDuration, consumer.opts.RestartDelay).
			Msg("order event subscription failed, restarting")

		timer := time.NewTimer(consumer.opts.RestartDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// runSubscription fetches messages and routes each event log partition to one worker.
// It returns when ctx is done (nil) or when fetching or a worker fails.
func (consumer *orderEventConsumer) runSubscription(ctx context.Context) error {
	reader := consumer.newReader()
	defer func() {
		if err := reader.Close(); err != nil {
			consumer.logger.Warn().Err(err).Msg("failed to close event reader")
		}
	}()

	queue := NewPartitionedQueue[kafka.Message](consumer.opts.QueuePartitions, consumer.opts.QueueBufferSize)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < queue.PartitionCount(); i++ {
		ch := queue.Partition(i)
		g.Go(func() error {
			return consumer.runPartitionWorker(gctx, reader, i, ch)
		})
	}

	g.Go(func() error {
		defer queue.Close()
		for {
			msg, err := reader.FetchMessage(gctx)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("failed to fetch order event: %w", err)
			}
			if err := queue.Publish(gctx, strconv.Itoa(msg.Partition), msg); err != nil {
				return nil
			}
		}
	})

	return g.Wait()
}

func (consumer *orderEventConsumer) runPartitionWorker(ctx context.Context, reader EventReader, partitionIndex int, ch <-chan kafka.Message) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := consumer.handleMessage(ctx, reader, partitionIndex, msg); err != nil {
				return err
			}
		}
	}
}

// handleMessage aggregates one message and commits it unless the failure is retryable.
// A retryable failure that outlives its retries is returned, which ends the subscription
// without committing so the message is redelivered. A payload that keeps panicking is
// dead-lettered and committed instead so it cannot stall its partition.
func (consumer *orderEventConsumer) handleMessage(ctx context.Context, reader EventReader, partitionIndex int, msg kafka.Message) error {
	logger := consumer.logger.With().
		Str(loggers.FieldPartitionId, strconv.Itoa(msg.Partition)).
		Int64(loggers.FieldOffset, msg.Offset).
		Str(loggers.FieldTenantID, string(msg.Key)).
		Str(loggers.FieldRequestID, ulid.NewULID()).
		Logger()
	ctx = logger.WithContext(ctx)
	partitionLabel := strconv.Itoa(partitionIndex)

	svcErr := consumer.aggregateWithRetry(ctx, msg)
	switch {
	case svcErr == nil:
		metricOrderEventConsumedTotal.WithLabelValues(partitionLabel, metrics.ValueNoError).Inc()
	case svcErr.IsPanic():
		metricOrderEventConsumedTotal.WithLabelValues(partitionLabel, svcErr.Code).Inc()
		if ctx.Err() != nil {
			return nil
		}
		logger.Error().Err(svcErr).Str(loggers.FieldErrorCode, svcErr.Code).Msg("dropping order event that keeps panicking")
		consumer.deadLetter(ctx, msg, svcErr)
	case svcErr.IsRetryable():
		metricOrderEventConsumedTotal.WithLabelValues(partitionLabel, svcErr.Code).Inc()
		if ctx.Err() != nil {
			return nil
		}
		return errAggregateRetriesSpent(svcErr)
	default:
		metricOrderEventConsumedTotal.WithLabelValues(partitionLabel, svcErr.Code).Inc()
		logger.Warn().Err(svcErr).Str(loggers.FieldErrorCode, svcErr.Code).Msg("dropping order event")
		consumer.deadLetter(ctx, msg, svcErr)
	}

	if err := reader.CommitMessages(ctx, msg); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errInternalCommitFailed(err)
	}
	return nil
}

// aggregateWithRetry retries retryable failures with exponential backoff. Non-retryable
// failures are returned after the first attempt.
func (consumer *orderEventConsumer) aggregateWithRetry(ctx context.Context, msg kafka.Message) *svcerrors.ServiceError {
	receivedAt := msg.Time
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	attempt := 0
	operation := func() (struct{}, error) {
		attempt++
		svcErr := consumer.aggregateSafely(ctx, msg.Value, receivedAt)
		if svcErr == nil {
			return struct{}{}, nil
		}
		if !svcErr.IsRetryable() {
			return struct{}{}, backoff.Permanent(svcErr)
		}
		return struct{}{}, svcErr
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = consumer.opts.RetryInitialInterval
	policy.MaxInterval = consumer.opts.RetryMaxInterval

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(consumer.opts.MaxRetries)+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			code := ""
			if svcErr, ok := svcerrors.AsServiceError(err); ok {
				code = svcErr.Code
			}
			metricAggregateRetriesTotal.WithLabelValues(code).Inc()
			loggers.Ctx(ctx).Warn().Err(err).
				Int(loggers.FieldAttempt, attempt).
				Dur(loggers.FieldDuration, next).
				Msg("retrying order event")
		}),
	)
	if err == nil {
		return nil
	}
	if svcErr, ok := svcerrors.AsServiceError(err); ok {
		return svcErr
	}
	// ctx ended between attempts
	return svcerrors.NewUnavailableError(codeAggregateRetriesSpent, "order event retry interrupted", err)
}

// aggregateSafely turns a panic inside the aggregation pipeline into a retryable error.
func (consumer *orderEventConsumer) aggregateSafely(ctx context.Context, payload []byte, receivedAt time.Time) (svcErr *svcerrors.ServiceError) {
	defer func() {
		if r := recover(); r != nil {
			loggers.Ctx(ctx).Error().
				Bytes(loggers.FieldErrorStack, debug.Stack()).
				Msg("consumer panic recovered")

			panicErr, ok := r.(error)
			if !ok {
				panicErr = fmt.Errorf("%v", r)
			}
			svcErr = svcerrors.NewInternalErrorPanic(panicErr)
		}
	}()
	return consumer.aggregationService.Aggregate(ctx, payload, receivedAt)
}

func (consumer *orderEventConsumer) deadLetter(ctx context.Context, msg kafka.Message, svcErr *svcerrors.ServiceError) {
	topic := msg.Topic
	if topic == "" {
		topic = consumer.opts.Topic
	}
	letter := &stores.DeadLetter{
		Topic:      topic,
		Partition:  msg.Partition,
		Offset:     msg.Offset,
		Key:        string(msg.Key),
		Payload:    string(msg.Value),
		Reason:     svcErr.Error(),
		ErrorCode:  svcErr.Code,
		ReceivedAt: time.Now().UTC(),
	}
	if err := consumer.deadLetterStore.Put(ctx, letter); err != nil {
		metricDeadLettersTotal.WithLabelValues("failed").Inc()
		loggers.Ctx(ctx).Error().Err(err).Msg("failed to store dead letter")
		return
	}
	metricDeadLettersTotal.WithLabelValues("stored").Inc()
}
