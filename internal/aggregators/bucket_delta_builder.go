package aggregators

import (
	"fmt"

	"order-metrics/internal/events"
	"order-metrics/internal/models"
)

//go:generate mockgen -source=bucket_delta_builder.go -destination=./mocks/bucket_delta_builder_mock.go -package=mocks
type BucketDeltaBuilder interface {
	// Build turns an order_created event into the increments it contributes to its buckets.
	Build(event *events.OrderEvent) (*models.BucketDelta, error)
}

type bucketDeltaBuilder struct{}

func NewBucketDeltaBuilder() BucketDeltaBuilder {
	return &bucketDeltaBuilder{}
}

func (b *bucketDeltaBuilder) Build(event *events.OrderEvent) (*models.BucketDelta, error) {
	if !event.IsOrderCreated() {
		return nil, fmt.Errorf("eventType mismatch: want=%q, got=%q", events.EventTypeOrderCreated, event.EventType)
	}
	if event.TenantID == "" {
		return nil, fmt.Errorf("tenantID is empty")
	}
	if event.TotalAmount.IsNegative() {
		return nil, fmt.Errorf("totalAmount is negative: %s", event.TotalAmount)
	}

	delta := &models.BucketDelta{
		TenantID:        event.TenantID,
		OccurredAt:      event.Timestamp.UTC(),
		Revenue:         event.TotalAmount,
		PrepTimeMinutes: event.Metadata.PreparationTime,
		CustomerID:      event.CustomerID,
		ItemCounts:      make(map[string]int64, len(event.Items)),
	}

	// The same item may appear on several lines of one order
	for _, item := range event.Items {
		delta.ItemCounts[item.Name] += item.Quantity
	}

	return delta, nil
}
