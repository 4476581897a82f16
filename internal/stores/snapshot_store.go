package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"order-metrics/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var ErrSnapshotNotFound = errors.New("rolling snapshot not found")

const (
	fieldOrdersPerMinute = "ordersPerMinute"
	fieldAvgPrepTime     = "avgPrepTime"
	fieldTotalOrders     = "totalOrders"
	fieldTotalRevenue    = "totalRevenue"
	fieldAvgOrderValue   = "avgOrderValue"
)

// SnapshotStore caches the latest rolling snapshot per tenant under aggregated:{tenant}.
//
//go:generate mockgen -source=snapshot_store.go -destination=./mocks/snapshot_store_mock.go -package=mocks
type SnapshotStore interface {
	Save(ctx context.Context, tenantID string, snapshot *models.RollingSnapshot) error
	// Get returns ErrSnapshotNotFound when the tenant has no cached snapshot.
	Get(ctx context.Context, tenantID string) (*models.RollingSnapshot, error)
}

type snapshotStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewSnapshotStore(client redis.UniversalClient) SnapshotStore {
	return &snapshotStore{client: client, ttl: models.SnapshotTTL}
}

func (s *snapshotStore) Save(ctx context.Context, tenantID string, snapshot *models.RollingSnapshot) error {
	key := models.SnapshotKey(tenantID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		fieldOrdersPerMinute, snapshot.OrdersPerMinute.StringFixed(2),
		fieldAvgPrepTime, snapshot.AvgPrepTimeMinutes,
		fieldTotalOrders, snapshot.TotalOrders,
		fieldTotalRevenue, snapshot.TotalRevenue.StringFixed(2),
		fieldAvgOrderValue, snapshot.AvgOrderValue.String(),
		fieldLastUpdated, snapshot.LastUpdated.UTC().UnixMilli(),
	)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save rolling snapshot: %w", err)
	}
	return nil
}

func (s *snapshotStore) Get(ctx context.Context, tenantID string) (*models.RollingSnapshot, error) {
	h, err := s.client.HGetAll(ctx, models.SnapshotKey(tenantID)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get rolling snapshot: %w", err)
	}
	if len(h) == 0 {
		return nil, ErrSnapshotNotFound
	}

	return &models.RollingSnapshot{
		OrdersPerMinute:    parseDecimal(h, fieldOrdersPerMinute),
		AvgPrepTimeMinutes: parseInt(h, fieldAvgPrepTime),
		TotalOrders:        parseInt(h, fieldTotalOrders),
		TotalRevenue:       parseDecimal(h, fieldTotalRevenue),
		AvgOrderValue:      parseDecimal(h, fieldAvgOrderValue),
		LastUpdated:        time.UnixMilli(parseInt(h, fieldLastUpdated)).UTC(),
	}, nil
}

func parseDecimal(h map[string]string, field string) decimal.Decimal {
	d, err := decimal.NewFromString(h[field])
	if err != nil {
		return decimal.Zero
	}
	return d
}
