package analytics

import (
	"order-metrics/internal/shared/metrics"
)

// metricSummariesTotal counts served summaries by the path that produced them.
//
// The source label is one of:
//   - "buckets": hour/day buckets answered the query
//   - "order_store": the buckets were empty and the summary was rebuilt from raw orders
//   - "empty": neither path had data, or the order store failed
var (
	metricSummariesTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAnalytics,
			Name:      "summaries_total",
		},
		[]string{"source", "period"},
	)

	metricStageErrorsTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAnalytics,
			Name:      "stage_errors_total",
		},
		[]string{"stage", metrics.FieldErrorCode},
	)

	metricSummaryDuration = metrics.NewHistogramVec(
		metrics.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAnalytics,
			Name:      "summary_duration_seconds",
			Buckets:   metrics.DefBuckets,
		},
		[]string{"source"},
	)
)
