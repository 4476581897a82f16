package stores

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"order-metrics/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Hash fields of the bucket keys. Revenue is kept in integer minor units so it can be
// incremented atomically with HINCRBY.
const (
	fieldOrderCount    = "orderCount"
	fieldOrders        = "orders"
	fieldRevenueCents  = "revenueCents"
	fieldTotalPrepTime = "totalPrepTime"
	fieldPrepTimeCount = "prepTimeCount"
	fieldBucketStart   = "bucketStart"
	fieldLastUpdated   = "lastUpdated"
	fieldItemPrefix    = "item:"

	customersSuffix = ":customers"
)

// BucketStore keeps the additive per-tenant time buckets.
//
// One order event touches exactly one bucket per granularity. All writes for an event go
// through a single MULTI/EXEC so a reader never sees the minute bucket updated without the
// matching hour and day buckets. A bucket expires at a fixed instant, its end plus the
// granularity's retention, so late events never extend it. Granularities whose expiry
// has already passed are skipped.
//
// Example keys for an event of tenant "T1" at 2025-12-28T18:03:15Z:
//   - metrics:T1:minute:2025-12-28-18-03
//   - analytics:T1:hourly:2025-12-28-18 (+ analytics:T1:hourly:2025-12-28-18:customers)
//   - analytics:T1:daily:2025-12-28 (+ analytics:T1:daily:2025-12-28:customers)
//
//go:generate mockgen -source=bucket_store.go -destination=./mocks/bucket_store_mock.go -package=mocks
type BucketStore interface {
	ApplyOrder(ctx context.Context, delta *models.BucketDelta) error
	// The Get methods return the buckets that exist among starts, in the order of starts.
	GetMinuteBuckets(ctx context.Context, tenantID string, starts []time.Time) ([]*models.MinuteBucket, error)
	GetHourBuckets(ctx context.Context, tenantID string, starts []time.Time) ([]*models.HourBucket, error)
	GetDayBuckets(ctx context.Context, tenantID string, starts []time.Time) ([]*models.DayBucket, error)
}

type bucketStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewBucketStore(client redis.UniversalClient, now func() time.Time) BucketStore {
	if now == nil {
		now = time.Now
	}
	return &bucketStore{client: client, now: now}
}

func (s *bucketStore) ApplyOrder(ctx context.Context, delta *models.BucketDelta) error {
	revenueCents := toCents(delta.Revenue)
	now := s.now().UTC()
	lastUpdated := now.UnixMilli()

	pipe := s.client.TxPipeline()
	queued := false
	for _, g := range models.Granularities {
		expiresAt := g.ExpiresAt(delta.OccurredAt)
		if !expiresAt.After(now) {
			continue
		}
		queued = true
		key := g.BucketKey(delta.TenantID, delta.OccurredAt)

		switch g {
		case models.GranularityMinute:
			pipe.HIncrBy(ctx, key, fieldOrderCount, 1)
			pipe.HIncrBy(ctx, key, fieldRevenueCents, revenueCents)
			pipe.HIncrBy(ctx, key, fieldTotalPrepTime, delta.PrepTimeMinutes)
			pipe.HIncrBy(ctx, key, fieldPrepTimeCount, 1)
		default:
			pipe.HIncrBy(ctx, key, fieldOrders, 1)
			pipe.HIncrBy(ctx, key, fieldRevenueCents, revenueCents)
			if delta.CustomerID != "" {
				pipe.SAdd(ctx, key+customersSuffix, delta.CustomerID)
				pipe.ExpireAt(ctx, key+customersSuffix, expiresAt)
			}
		}
		if g != models.GranularityMinute {
			for name, quantity := range delta.ItemCounts {
				pipe.HIncrBy(ctx, key, fieldItemPrefix+name, quantity)
			}
		}

		pipe.HSet(ctx, key,
			fieldBucketStart, g.Truncate(delta.OccurredAt).Unix(),
			fieldLastUpdated, lastUpdated,
		)
		pipe.ExpireAt(ctx, key, expiresAt)
	}
	if !queued {
		return nil
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to apply order to buckets: %w", err)
	}
	return nil
}

func (s *bucketStore) GetMinuteBuckets(ctx context.Context, tenantID string, starts []time.Time) ([]*models.MinuteBucket, error) {
	hashes, _, err := s.readBuckets(ctx, models.GranularityMinute, tenantID, starts, false)
	if err != nil {
		return nil, err
	}

	buckets := make([]*models.MinuteBucket, 0, len(hashes))
	for i, h := range hashes {
		if len(h) == 0 {
			continue
		}
		buckets = append(buckets, &models.MinuteBucket{
			BucketStart:          models.GranularityMinute.Truncate(starts[i]),
			OrderCount:           parseInt(h, fieldOrderCount),
			Revenue:              fromCents(parseInt(h, fieldRevenueCents)),
			TotalPrepTimeMinutes: parseInt(h, fieldTotalPrepTime),
			PrepTimeSampleCount:  parseInt(h, fieldPrepTimeCount),
			LastUpdated:          time.UnixMilli(parseInt(h, fieldLastUpdated)).UTC(),
		})
	}
	return buckets, nil
}

func (s *bucketStore) GetHourBuckets(ctx context.Context, tenantID string, starts []time.Time) ([]*models.HourBucket, error) {
	hashes, customers, err := s.readBuckets(ctx, models.GranularityHour, tenantID, starts, true)
	if err != nil {
		return nil, err
	}

	buckets := make([]*models.HourBucket, 0, len(hashes))
	for i, h := range hashes {
		if len(h) == 0 {
			continue
		}
		buckets = append(buckets, &models.HourBucket{
			BucketStart:     models.GranularityHour.Truncate(starts[i]),
			OrderCount:      parseInt(h, fieldOrders),
			Revenue:         fromCents(parseInt(h, fieldRevenueCents)),
			UniqueCustomers: customers[i],
			ItemCounts:      itemCounts(h),
			LastUpdated:     time.UnixMilli(parseInt(h, fieldLastUpdated)).UTC(),
		})
	}
	return buckets, nil
}

func (s *bucketStore) GetDayBuckets(ctx context.Context, tenantID string, starts []time.Time) ([]*models.DayBucket, error) {
	hashes, customers, err := s.readBuckets(ctx, models.GranularityDay, tenantID, starts, true)
	if err != nil {
		return nil, err
	}

	buckets := make([]*models.DayBucket, 0, len(hashes))
	for i, h := range hashes {
		if len(h) == 0 {
			continue
		}
		buckets = append(buckets, &models.DayBucket{
			BucketStart:     models.GranularityDay.Truncate(starts[i]),
			OrderCount:      parseInt(h, fieldOrders),
			Revenue:         fromCents(parseInt(h, fieldRevenueCents)),
			UniqueCustomers: customers[i],
			ItemCounts:      itemCounts(h),
			LastUpdated:     time.UnixMilli(parseInt(h, fieldLastUpdated)).UTC(),
		})
	}
	return buckets, nil
}

// readBuckets fetches the hashes (and optionally the customer sets) of the given bucket
// starts in one round trip. Missing buckets come back as empty maps.
func (s *bucketStore) readBuckets(ctx context.Context, g models.Granularity, tenantID string, starts []time.Time, withCustomers bool) ([]map[string]string, [][]string, error) {
	if len(starts) == 0 {
		return nil, nil, nil
	}

	hashCmds := make([]*redis.MapStringStringCmd, len(starts))
	setCmds := make([]*redis.StringSliceCmd, len(starts))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, start := range starts {
			key := g.BucketKey(tenantID, start)
			hashCmds[i] = pipe.HGetAll(ctx, key)
			if withCustomers {
				setCmds[i] = pipe.SMembers(ctx, key+customersSuffix)
			}
		}
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, nil, fmt.Errorf("failed to read %s buckets: %w", g, err)
	}

	hashes := make([]map[string]string, len(starts))
	customers := make([][]string, len(starts))
	for i := range starts {
		hashes[i] = hashCmds[i].Val()
		if withCustomers {
			customers[i] = setCmds[i].Val()
		}
	}
	return hashes, customers, nil
}

func itemCounts(h map[string]string) map[string]int64 {
	items := make(map[string]int64)
	for field := range h {
		if name, ok := strings.CutPrefix(field, fieldItemPrefix); ok {
			items[name] = parseInt(h, field)
		}
	}
	return items
}

func parseInt(h map[string]string, field string) int64 {
	v, err := strconv.ParseInt(h[field], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
