package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RollingWindow is the width of the live dashboard window.
const RollingWindow = 60 * time.Minute

// RollingSnapshot summarises the trailing hour of minute buckets for a tenant.
// It is a cache and can always be rebuilt from the buckets.
type RollingSnapshot struct {
	OrdersPerMinute    decimal.Decimal `json:"ordersPerMinute"`
	AvgPrepTimeMinutes int64           `json:"avgPreparationTime"`
	TotalOrders        int64           `json:"totalOrders"`
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
	AvgOrderValue      decimal.Decimal `json:"avgOrderValue"`
	LastUpdated        time.Time       `json:"lastUpdated"`
}

// NewDefaultRollingSnapshot is served when nothing is known about a tenant.
func NewDefaultRollingSnapshot(now time.Time) *RollingSnapshot {
	return &RollingSnapshot{
		OrdersPerMinute: decimal.Zero,
		TotalRevenue:    decimal.Zero,
		AvgOrderValue:   decimal.Zero,
		LastUpdated:     now.UTC(),
	}
}
