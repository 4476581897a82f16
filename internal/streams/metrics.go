package streams

import (
	"order-metrics/internal/shared/metrics"
)

var (
	metricOrderEventPublishedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubStream,
			Name:      "order_event_published_total",
		},
		[]string{metrics.FieldErrorCode},
	)

	// metricOrderEventConsumedTotal counts consumed messages by the final aggregation error code.
	// ValueNoError means the event was applied (or skipped) and committed.
	metricOrderEventConsumedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubStream,
			Name:      "order_event_consumed_total",
		},
		[]string{"partition", metrics.FieldErrorCode},
	)

	metricAggregateRetriesTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubStream,
			Name:      "aggregate_retries_total",
		},
		[]string{metrics.FieldErrorCode},
	)

	metricDeadLettersTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubStream,
			Name:      "dead_letters_total",
		},
		[]string{"result"},
	)

	metricSubscriptionRestartsTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubStream,
			Name:      "subscription_restarts_total",
		},
		[]string{},
	)
)
