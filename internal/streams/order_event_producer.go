package streams

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"order-metrics/internal/events"
	"order-metrics/internal/models"
	"order-metrics/internal/shared/loggers"
	"order-metrics/internal/shared/metrics"

	"github.com/segmentio/kafka-go"
)

// OrderEventProducer writes order events to the event log, keyed by tenant.
//
// The key is the only routing input: the writer hashes it to a partition, and the
// consumer maps each partition to one worker, so all events of a tenant are aggregated
// sequentially in the order they were produced while different tenants proceed in parallel.
//
//go:generate mockgen -source=order_event_producer.go -destination=./mocks/order_event_producer_mock.go -package=mocks
type OrderEventProducer interface {
	Produce(ctx context.Context, event *events.OrderEvent) error
}

type orderEventProducer struct {
	writer EventWriter
}

func NewOrderEventProducer(writer EventWriter) OrderEventProducer {
	return &orderEventProducer{writer: writer}
}

func (producer *orderEventProducer) Produce(ctx context.Context, event *events.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.TenantID),
		Value: payload,
		Time:  event.Timestamp,
	}
	if err := producer.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write order event: %w", err)
	}
	return nil
}

// OrderEventPublisher announces persisted orders. Publishing never fails the caller:
// the order is already stored, so a lost event only delays the live metrics until the
// analytics fallback reads the order store.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order)
}

type orderEventPublisher struct {
	producer               OrderEventProducer
	defaultPrepTimeMinutes int64
	timeout                time.Duration
}

func NewOrderEventPublisher(producer OrderEventProducer, defaultPrepTimeMinutes int64, timeout time.Duration) OrderEventPublisher {
	return &orderEventPublisher{
		producer:               producer,
		defaultPrepTimeMinutes: defaultPrepTimeMinutes,
		timeout:                timeout,
	}
}

func (publisher *orderEventPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) {
	if publisher.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publisher.timeout)
		defer cancel()
	}

	event := events.NewOrderCreatedEvent(order, publisher.defaultPrepTimeMinutes)
	if err := publisher.producer.Produce(ctx, event); err != nil {
		svcErr := errUnavailableEventLog(err)
		metricOrderEventPublishedTotal.WithLabelValues(svcErr.Code).Inc()
		loggers.Ctx(ctx).Error().Err(svcErr).
			Str(loggers.FieldTenantID, order.TenantID).
			Str(loggers.FieldOrderID, order.ID).
			Str(loggers.FieldErrorCode, svcErr.Code).
			Msg("failed to publish order event")
		return
	}
	metricOrderEventPublishedTotal.WithLabelValues(metrics.ValueNoError).Inc()
}
