package stores

import (
	"context"
	"testing"
	"time"

	"order-metrics/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 12, 28, 18, 3, 30, 0, time.UTC)

func newDelta(amount string, prep int64, customer string, items map[string]int64) *models.BucketDelta {
	return &models.BucketDelta{
		TenantID:        "T1",
		OccurredAt:      time.Date(2025, 12, 28, 18, 3, 15, 0, time.UTC),
		Revenue:         decimal.RequireFromString(amount),
		PrepTimeMinutes: prep,
		CustomerID:      customer,
		ItemCounts:      items,
	}
}

func TestBucketStore_ApplyOrder_WritesAllGranularities(t *testing.T) {
	t.Parallel()

	mr, client := newTestRedis(t)
	store := NewBucketStore(client, func() time.Time { return fixedNow })
	ctx := context.Background()

	require.NoError(t, store.ApplyOrder(ctx, newDelta("500", 15, "c1", map[string]int64{"Pizza": 2})))
	require.NoError(t, store.ApplyOrder(ctx, newDelta("300", 20, "c2", map[string]int64{"Pizza": 1, "Soda": 3})))
	require.NoError(t, store.ApplyOrder(ctx, newDelta("700", 25, "c1", nil)))

	minuteKey := "metrics:T1:minute:2025-12-28-18-03"
	hourKey := "analytics:T1:hourly:2025-12-28-18"
	dayKey := "analytics:T1:daily:2025-12-28"

	assert.Equal(t, "3", mr.HGet(minuteKey, "orderCount"))
	assert.Equal(t, "150000", mr.HGet(minuteKey, "revenueCents"))
	assert.Equal(t, "60", mr.HGet(minuteKey, "totalPrepTime"))
	assert.Equal(t, "3", mr.HGet(minuteKey, "prepTimeCount"))
	assert.Equal(t, "3", mr.HGet(hourKey, "orders"))
	assert.Equal(t, "3", mr.HGet(dayKey, "item:Pizza"))
	assert.Equal(t, "3", mr.HGet(dayKey, "item:Soda"))
	assert.Equal(t, "3", mr.HGet(hourKey, "item:Pizza"))
	assert.Empty(t, mr.HGet(minuteKey, "item:Pizza"))

	members, err := mr.Members(hourKey + ":customers")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "c2"}, members)

	// Expiry is bucket end plus retention, measured from 18:03:30.
	assert.Equal(t, 2*time.Hour+30*time.Second, mr.TTL(minuteKey))
	assert.Equal(t, 7*24*time.Hour+56*time.Minute+30*time.Second, mr.TTL(hourKey))
	assert.Equal(t, 30*24*time.Hour+5*time.Hour+56*time.Minute+30*time.Second, mr.TTL(dayKey))
	assert.Equal(t, mr.TTL(dayKey), mr.TTL(dayKey+":customers"))
	assert.Equal(t, mr.TTL(hourKey), mr.TTL(hourKey+":customers"))
}

func TestBucketStore_ApplyOrder_LaterWritesKeepExpiry(t *testing.T) {
	t.Parallel()

	mr, client := newTestRedis(t)
	now := fixedNow
	store := NewBucketStore(client, func() time.Time { return now })
	ctx := context.Background()

	minuteKey := "metrics:T1:minute:2025-12-28-18-03"
	require.NoError(t, store.ApplyOrder(ctx, newDelta("1", 10, "", nil)))
	assert.Equal(t, 2*time.Hour+30*time.Second, mr.TTL(minuteKey))

	mr.FastForward(90 * time.Minute)
	now = now.Add(90 * time.Minute)
	mr.SetTime(now)
	require.NoError(t, store.ApplyOrder(ctx, newDelta("1", 10, "", nil)))

	assert.Equal(t, "2", mr.HGet(minuteKey, "orderCount"))
	assert.Equal(t, 30*time.Minute+30*time.Second, mr.TTL(minuteKey))
	assert.False(t, mr.Exists("analytics:T1:hourly:2025-12-28-18:customers"), "no customer set without a customer id")
}

func TestBucketStore_ApplyOrder_LateEvent(t *testing.T) {
	t.Parallel()

	mr, client := newTestRedis(t)
	store := NewBucketStore(client, func() time.Time { return fixedNow })
	ctx := context.Background()

	tests := []struct {
		name       string
		occurredAt time.Time
		expectTTL  map[string]time.Duration
		absent     []string
	}{
		{
			name:       "a month old only reaches the day bucket",
			occurredAt: time.Date(2025, 11, 28, 12, 0, 0, 0, time.UTC),
			expectTTL: map[string]time.Duration{
				"analytics:T1:daily:2025-11-28":           5*time.Hour + 56*time.Minute + 30*time.Second,
				"analytics:T1:daily:2025-11-28:customers": 5*time.Hour + 56*time.Minute + 30*time.Second,
			},
			absent: []string{
				"metrics:T1:minute:2025-11-28-12-00",
				"analytics:T1:hourly:2025-11-28-12",
				"analytics:T1:hourly:2025-11-28-12:customers",
			},
		},
		{
			name:       "three hours old skips the minute bucket",
			occurredAt: time.Date(2025, 12, 28, 15, 0, 0, 0, time.UTC),
			expectTTL: map[string]time.Duration{
				"analytics:T1:hourly:2025-12-28-15": 7*24*time.Hour - 2*time.Hour - 3*time.Minute - 30*time.Second,
			},
			absent: []string{"metrics:T1:minute:2025-12-28-15-00"},
		},
		{
			name:       "older than every retention writes nothing",
			occurredAt: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
			absent: []string{
				"metrics:T1:minute:2025-10-01-00-00",
				"analytics:T1:hourly:2025-10-01-00",
				"analytics:T1:daily:2025-10-01",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta := newDelta("12.50", 10, "c1", map[string]int64{"Pizza": 1})
			delta.OccurredAt = tt.occurredAt
			require.NoError(t, store.ApplyOrder(ctx, delta))

			for key, ttl := range tt.expectTTL {
				assert.Equal(t, ttl, mr.TTL(key), key)
			}
			for _, key := range tt.absent {
				assert.False(t, mr.Exists(key), key)
			}
		})
	}
}

func TestBucketStore_ApplyOrder_Unavailable(t *testing.T) {
	t.Parallel()

	mr, client := newTestRedis(t)
	store := NewBucketStore(client, func() time.Time { return fixedNow })
	mr.SetError("LOADING redis is loading")

	err := store.ApplyOrder(context.Background(), newDelta("1", 10, "c1", nil))
	assert.ErrorContains(t, err, "failed to apply order to buckets")
}

func TestBucketStore_GetMinuteBuckets(t *testing.T) {
	t.Parallel()

	_, client := newTestRedis(t)
	store := NewBucketStore(client, func() time.Time { return fixedNow })
	ctx := context.Background()

	for _, d := range []*models.BucketDelta{newDelta("500", 15, "", nil), newDelta("300", 20, "", nil), newDelta("700", 25, "", nil)} {
		require.NoError(t, store.ApplyOrder(ctx, d))
	}

	starts := []time.Time{
		time.Date(2025, 12, 28, 18, 2, 0, 0, time.UTC),
		time.Date(2025, 12, 28, 18, 3, 0, 0, time.UTC),
	}
	buckets, err := store.GetMinuteBuckets(ctx, "T1", starts)
	require.NoError(t, err)
	require.Len(t, buckets, 1, "missing buckets are skipped")

	b := buckets[0]
	assert.Equal(t, starts[1], b.BucketStart)
	assert.Equal(t, int64(3), b.OrderCount)
	assert.True(t, decimal.NewFromInt(1500).Equal(b.Revenue))
	assert.Equal(t, int64(60), b.TotalPrepTimeMinutes)
	assert.Equal(t, int64(3), b.PrepTimeSampleCount)
	assert.Equal(t, fixedNow.Truncate(time.Millisecond), b.LastUpdated)
}

func TestBucketStore_GetHourAndDayBuckets(t *testing.T) {
	t.Parallel()

	_, client := newTestRedis(t)
	store := NewBucketStore(client, func() time.Time { return fixedNow })
	ctx := context.Background()

	require.NoError(t, store.ApplyOrder(ctx, newDelta("12.34", 15, "c1", map[string]int64{"Pizza": 2})))
	require.NoError(t, store.ApplyOrder(ctx, newDelta("0.66", 15, "c2", map[string]int64{"Pizza": 1, "Soda": 1})))

	hours, err := store.GetHourBuckets(ctx, "T1", []time.Time{time.Date(2025, 12, 28, 18, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Len(t, hours, 1)
	assert.Equal(t, int64(2), hours[0].OrderCount)
	assert.True(t, decimal.NewFromInt(13).Equal(hours[0].Revenue))
	assert.ElementsMatch(t, []string{"c1", "c2"}, hours[0].UniqueCustomers)
	assert.Equal(t, map[string]int64{"Pizza": 3, "Soda": 1}, hours[0].ItemCounts)

	days, err := store.GetDayBuckets(ctx, "T1", []time.Time{
		time.Date(2025, 12, 27, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 28, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, time.Date(2025, 12, 28, 0, 0, 0, 0, time.UTC), days[0].BucketStart)
	assert.Equal(t, map[string]int64{"Pizza": 3, "Soda": 1}, days[0].ItemCounts)
}

func TestBucketStore_ItemCountsSumToLineItemQuantities(t *testing.T) {
	t.Parallel()

	_, client := newTestRedis(t)
	store := NewBucketStore(client, func() time.Time { return fixedNow })
	ctx := context.Background()

	deltas := []*models.BucketDelta{
		newDelta("1", 1, "", map[string]int64{"A": 2, "B": 1}),
		newDelta("1", 1, "", map[string]int64{"A": 5}),
		newDelta("1", 1, "", map[string]int64{"C": 4, "B": 3}),
	}
	var want int64
	for _, d := range deltas {
		want += d.TotalItemQuantity()
		require.NoError(t, store.ApplyOrder(ctx, d))
	}

	days, err := store.GetDayBuckets(ctx, "T1", []time.Time{time.Date(2025, 12, 28, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Len(t, days, 1)

	var got int64
	for _, q := range days[0].ItemCounts {
		got += q
	}
	assert.Equal(t, want, got)
}

func TestBucketStore_Get_EmptyStarts(t *testing.T) {
	t.Parallel()

	_, client := newTestRedis(t)
	store := NewBucketStore(client, nil)

	buckets, err := store.GetHourBuckets(context.Background(), "T1", nil)
	require.NoError(t, err)
	assert.Empty(t, buckets)
}
