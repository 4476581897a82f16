package aggregators

import (
	"order-metrics/internal/shared/metrics"
)

const (
	resultApplied     = "applied"
	resultSkipped     = "skipped"
	resultMalformed   = "malformed"
	resultUnavailable = "unavailable"
	resultFailed      = "failed"
)

// metricOrderEventsAggregatedTotal counts order events by aggregation outcome.
//
// The result label is one of:
//   - "applied": the event was added to its minute, hour and day buckets
//   - "skipped": the event type is not aggregated (e.g. a future lifecycle event)
//   - "malformed": the payload can never be aggregated and was dropped
//   - "unavailable": the bucket store rejected the write; the event will be retried
//   - "failed": any other failure
var (
	metricOrderEventsAggregatedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAggregation,
			Name:      "order_events_total",
		},
		[]string{"result"},
	)

	// metricSnapshotRecomputeTotal counts rolling snapshot recomputations by error code.
	metricSnapshotRecomputeTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAggregation,
			Name:      "snapshot_recompute_total",
		},
		[]string{metrics.FieldErrorCode},
	)

	metricSnapshotRecomputeDuration = metrics.NewHistogramVec(
		metrics.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAggregation,
			Name:      "snapshot_recompute_duration_seconds",
			Buckets:   metrics.DefBuckets,
		},
		[]string{},
	)
)
