package realtime

import (
	"order-metrics/internal/shared/metrics"
)

const (
	dropQueueFull     = "queue_full"
	dropSlowConsumer  = "slow_subscriber"
	dropEncodeFailure = "encode_failed"
)

var (
	// metricMessagesPublishedTotal counts messages accepted for fan-out, by message type and origin (local, relay).
	metricMessagesPublishedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubRealtime,
			Name:      "messages_published_total",
		},
		[]string{"type", "origin"},
	)

	// metricMessagesDroppedTotal counts messages or deliveries given up on.
	// Broadcasting is best effort, so this is the only trace of a lost update.
	metricMessagesDroppedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubRealtime,
			Name:      "messages_dropped_total",
		},
		[]string{"reason"},
	)

	metricDeliveriesTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubRealtime,
			Name:      "deliveries_total",
		},
		[]string{"type"},
	)

	// metricSubscribersConnected tracks open subscriber connections by client family (Chrome, Firefox, ...).
	metricSubscribersConnected = metrics.NewGaugeVec(
		metrics.GaugeOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubRealtime,
			Name:      "subscribers_connected",
		},
		[]string{"client_family"},
	)

	metricRelayErrorsTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubRealtime,
			Name:      "relay_errors_total",
		},
		[]string{"op"},
	)
)
