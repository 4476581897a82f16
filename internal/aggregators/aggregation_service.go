package aggregators

import (
	"context"
	"time"

	"order-metrics/internal/events"
	"order-metrics/internal/models"
	"order-metrics/internal/realtime"
	"order-metrics/internal/shared/loggers"
	"order-metrics/internal/shared/svcerrors"
	"order-metrics/internal/stores"
)

// AggregationService applies one raw order event to the time buckets and refreshes the
// tenant's live view.
//
// The returned error is the explicit per-event result the consumer acts on:
//   - nil: the event is done (applied or intentionally skipped)
//   - invalid_argument: the payload is malformed and must be dropped
//   - unavailable: the bucket store failed before anything was applied; retry the event
//
// Once the buckets are written the event counts as applied. Snapshot and broadcast failures
// after that point are logged and never reported, so a retry cannot double count.
//
//go:generate mockgen -source=aggregation_service.go -destination=./mocks/aggregation_service_mock.go -package=mocks
type AggregationService interface {
	Aggregate(ctx context.Context, payload []byte, receivedAt time.Time) *svcerrors.ServiceError
}

type aggregationService struct {
	deltaBuilder           BucketDeltaBuilder
	bucketStore            stores.BucketStore
	calculator             RollingWindowCalculator
	broadcaster            realtime.Broadcaster
	defaultPrepTimeMinutes int64
	now                    func() time.Time
}

func NewAggregationService(
	deltaBuilder BucketDeltaBuilder,
	bucketStore stores.BucketStore,
	calculator RollingWindowCalculator,
	broadcaster realtime.Broadcaster,
	defaultPrepTimeMinutes int64,
	now func() time.Time,
) AggregationService {
	if now == nil {
		now = time.Now
	}
	return &aggregationService{
		deltaBuilder:           deltaBuilder,
		bucketStore:            bucketStore,
		calculator:             calculator,
		broadcaster:            broadcaster,
		defaultPrepTimeMinutes: defaultPrepTimeMinutes,
		now:                    now,
	}
}

func (s *aggregationService) Aggregate(ctx context.Context, payload []byte, receivedAt time.Time) *svcerrors.ServiceError {
	logger := loggers.Ctx(ctx)

	event, err := events.DecodeOrderEvent(payload, receivedAt, s.defaultPrepTimeMinutes)
	if err != nil {
		metricOrderEventsAggregatedTotal.WithLabelValues(resultMalformed).Inc()
		return errInvalidOrderEvent(err)
	}

	if !event.IsOrderCreated() {
		logger.Debug().
			Str(loggers.FieldTenantID, event.TenantID).
			Str(loggers.FieldEventType, string(event.EventType)).
			Msg("skipping non aggregated event type")
		metricOrderEventsAggregatedTotal.WithLabelValues(resultSkipped).Inc()
		return nil
	}

	delta, err := s.deltaBuilder.Build(event)
	if err != nil {
		metricOrderEventsAggregatedTotal.WithLabelValues(resultFailed).Inc()
		return errInternalDeltaBuildFailed(err)
	}

	if err := s.bucketStore.ApplyOrder(ctx, delta); err != nil {
		metricOrderEventsAggregatedTotal.WithLabelValues(resultUnavailable).Inc()
		return errUnavailableBucketStore(err)
	}
	metricOrderEventsAggregatedTotal.WithLabelValues(resultApplied).Inc()

	logger.Debug().
		Str(loggers.FieldTenantID, event.TenantID).
		Str(loggers.FieldOrderID, event.OrderID).
		Msg("applied order event to buckets")

	s.refreshLiveView(ctx, event, delta)
	return nil
}

// refreshLiveView recomputes the rolling snapshot and notifies the tenant's subscribers.
func (s *aggregationService) refreshLiveView(ctx context.Context, event *events.OrderEvent, delta *models.BucketDelta) {
	logger := loggers.Ctx(ctx).With().Str(loggers.FieldTenantID, event.TenantID).Logger()
	now := s.now()

	snapshot, svcErr := s.calculator.Recompute(ctx, event.TenantID)
	if svcErr != nil {
		logger.Warn().Err(svcErr).Str(loggers.FieldErrorCode, svcErr.Code).Msg("failed to recompute rolling snapshot")
	}
	if snapshot != nil {
		msg, err := realtime.NewMetricsUpdate(event.TenantID, snapshot, now)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to build metrics update")
		} else {
			s.broadcaster.Publish(ctx, msg)
		}
	}

	msg, err := realtime.NewOrderUpdate(event.TenantID, &realtime.OrderUpdate{
		OrderID:     event.OrderID,
		Status:      models.OrderStatusPending,
		TotalAmount: event.TotalAmount,
		ItemCount:   delta.TotalItemQuantity(),
		CreatedAt:   event.Timestamp,
	}, now)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to build order update")
		return
	}
	s.broadcaster.Publish(ctx, msg)
}
