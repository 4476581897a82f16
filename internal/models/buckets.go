package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MinuteBucket feeds the rolling one-hour snapshot.
type MinuteBucket struct {
	BucketStart          time.Time       `json:"bucketStart"`
	OrderCount           int64           `json:"orderCount"`
	Revenue              decimal.Decimal `json:"revenue"`
	TotalPrepTimeMinutes int64           `json:"totalPrepTime"`
	PrepTimeSampleCount  int64           `json:"prepTimeCount"`
	LastUpdated          time.Time       `json:"lastUpdated"`
}

// HourBucket feeds the short-period analytics charts and their top items.
type HourBucket struct {
	BucketStart     time.Time        `json:"bucketStart"`
	OrderCount      int64            `json:"orders"`
	Revenue         decimal.Decimal  `json:"revenue"`
	UniqueCustomers []string         `json:"customers"`
	ItemCounts      map[string]int64 `json:"items"`
	LastUpdated     time.Time        `json:"lastUpdated"`
}

// DayBucket feeds long-period charts and their top items.
type DayBucket struct {
	BucketStart     time.Time        `json:"bucketStart"`
	OrderCount      int64            `json:"orders"`
	Revenue         decimal.Decimal  `json:"revenue"`
	UniqueCustomers []string         `json:"customers"`
	ItemCounts      map[string]int64 `json:"items"`
	LastUpdated     time.Time        `json:"lastUpdated"`
}

// BucketDelta is what one order event adds to each of its buckets.
type BucketDelta struct {
	TenantID        string
	OccurredAt      time.Time
	Revenue         decimal.Decimal
	PrepTimeMinutes int64
	CustomerID      string
	ItemCounts      map[string]int64
}

// TotalItemQuantity sums the quantities of every line item in the delta.
func (d *BucketDelta) TotalItemQuantity() int64 {
	var total int64
	for _, q := range d.ItemCounts {
		total += q
	}
	return total
}
