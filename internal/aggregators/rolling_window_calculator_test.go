package aggregators

import (
	"context"
	"errors"
	"testing"
	"time"

	"order-metrics/internal/models"
	"order-metrics/internal/stores"
	"order-metrics/internal/stores/mocks"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2025, 12, 28, 18, 3, 30, 0, time.UTC)

func fixedClock() time.Time { return now }

func newRedisClient(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	mr.SetTime(now)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestComputeRollingSnapshot_ThreeOrdersSameMinute(t *testing.T) {
	t.Parallel()

	bucket := &models.MinuteBucket{
		BucketStart:          time.Date(2025, 12, 28, 18, 3, 0, 0, time.UTC),
		OrderCount:           3,
		Revenue:              decimal.NewFromInt(1500),
		TotalPrepTimeMinutes: 15 + 20 + 25,
		PrepTimeSampleCount:  3,
		LastUpdated:          now.Add(-time.Second),
	}

	snapshot := ComputeRollingSnapshot([]*models.MinuteBucket{bucket}, now)

	assert.Equal(t, int64(3), snapshot.TotalOrders)
	assert.Equal(t, "1500.00", snapshot.TotalRevenue.StringFixed(2))
	assert.Equal(t, int64(20), snapshot.AvgPrepTimeMinutes)
	assert.Equal(t, "500", snapshot.AvgOrderValue.String())
	assert.Equal(t, "0.05", snapshot.OrdersPerMinute.StringFixed(2))
	assert.Equal(t, now.Add(-time.Second), snapshot.LastUpdated)
}

func TestComputeRollingSnapshot_Rounding(t *testing.T) {
	t.Parallel()

	buckets := []*models.MinuteBucket{
		{OrderCount: 50, Revenue: decimal.RequireFromString("100.005"), TotalPrepTimeMinutes: 25, PrepTimeSampleCount: 2},
		{OrderCount: 40, Revenue: decimal.RequireFromString("124.99"), TotalPrepTimeMinutes: 0, PrepTimeSampleCount: 0},
	}

	snapshot := ComputeRollingSnapshot(buckets, now)

	assert.Equal(t, "1.50", snapshot.OrdersPerMinute.StringFixed(2), "90/60")
	assert.Equal(t, int64(13), snapshot.AvgPrepTimeMinutes, "12.5 rounds half up")
	assert.Equal(t, "225.00", snapshot.TotalRevenue.StringFixed(2))
	assert.Equal(t, "2", snapshot.AvgOrderValue.String(), "224.995/90 rounds to 2")
	assert.Equal(t, now, snapshot.LastUpdated, "no bucket carries a write time")
}

func TestComputeRollingSnapshot_Empty(t *testing.T) {
	t.Parallel()

	snapshot := ComputeRollingSnapshot(nil, now)

	assert.Equal(t, int64(0), snapshot.TotalOrders)
	assert.True(t, snapshot.OrdersPerMinute.IsZero())
	assert.True(t, snapshot.AvgOrderValue.IsZero())
	assert.Equal(t, int64(0), snapshot.AvgPrepTimeMinutes)
}

func TestTrailingMinuteStarts(t *testing.T) {
	t.Parallel()

	starts := trailingMinuteStarts(now)

	require.Len(t, starts, 60)
	assert.Equal(t, time.Date(2025, 12, 28, 17, 4, 0, 0, time.UTC), starts[0])
	assert.Equal(t, time.Date(2025, 12, 28, 18, 3, 0, 0, time.UTC), starts[59])
}

func TestRollingWindowCalculator_Recompute_IdempotentAndWindowed(t *testing.T) {
	t.Parallel()

	_, client := newRedisClient(t)
	bucketStore := stores.NewBucketStore(client, fixedClock)
	snapshotStore := stores.NewSnapshotStore(client)
	calc := NewRollingWindowCalculator(bucketStore, snapshotStore, fixedClock)
	ctx := context.Background()

	apply := func(at time.Time, amount int64) {
		require.NoError(t, bucketStore.ApplyOrder(ctx, &models.BucketDelta{
			TenantID: "T1", OccurredAt: at, Revenue: decimal.NewFromInt(amount), PrepTimeMinutes: 20,
		}))
	}
	apply(now, 10)
	apply(now.Add(-30*time.Minute), 20)
	apply(now.Add(-59*time.Minute), 30)
	apply(now.Add(-61*time.Minute), 1000) // outside the window

	first, svcErr := calc.Recompute(ctx, "T1")
	require.Nil(t, svcErr)
	second, svcErr := calc.Recompute(ctx, "T1")
	require.Nil(t, svcErr)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(3), first.TotalOrders)
	assert.Equal(t, "60.00", first.TotalRevenue.StringFixed(2))

	cached, err := snapshotStore.Get(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, first.TotalOrders, cached.TotalOrders)
}

func TestRollingWindowCalculator_Recompute_BucketStoreDown(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bucketStore := mocks.NewMockBucketStore(ctrl)
	snapshotStore := mocks.NewMockSnapshotStore(ctrl)
	calc := NewRollingWindowCalculator(bucketStore, snapshotStore, fixedClock)

	bucketStore.EXPECT().GetMinuteBuckets(gomock.Any(), "T1", gomock.Len(60)).Return(nil, errors.New("dial tcp: refused"))

	snapshot, svcErr := calc.Recompute(context.Background(), "T1")
	assert.Nil(t, snapshot)
	require.NotNil(t, svcErr)
	assert.Equal(t, codeUnavailableBucketStore, svcErr.Code)
	assert.True(t, svcErr.IsRetryable())
}

func TestRollingWindowCalculator_Recompute_SaveFails(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bucketStore := mocks.NewMockBucketStore(ctrl)
	snapshotStore := mocks.NewMockSnapshotStore(ctrl)
	calc := NewRollingWindowCalculator(bucketStore, snapshotStore, fixedClock)

	bucketStore.EXPECT().GetMinuteBuckets(gomock.Any(), "T1", gomock.Any()).
		Return([]*models.MinuteBucket{{OrderCount: 2, Revenue: decimal.NewFromInt(10), LastUpdated: now}}, nil)
	snapshotStore.EXPECT().Save(gomock.Any(), "T1", gomock.Any()).Return(errors.New("READONLY"))

	snapshot, svcErr := calc.Recompute(context.Background(), "T1")
	require.NotNil(t, snapshot, "computed snapshot is still returned")
	assert.Equal(t, int64(2), snapshot.TotalOrders)
	require.NotNil(t, svcErr)
	assert.Equal(t, codeInternalSnapshotRecompute, svcErr.Code)
}

func TestRollingWindowCalculator_Current(t *testing.T) {
	t.Parallel()

	cachedSnapshot := &models.RollingSnapshot{TotalOrders: 7, LastUpdated: now}

	tests := []struct {
		name      string
		setup     func(b *mocks.MockBucketStore, s *mocks.MockSnapshotStore)
		wantTotal int64
	}{
		{
			name: "cache hit",
			setup: func(b *mocks.MockBucketStore, s *mocks.MockSnapshotStore) {
				s.EXPECT().Get(gomock.Any(), "T1").Return(cachedSnapshot, nil)
			},
			wantTotal: 7,
		},
		{
			name: "cache miss recomputes",
			setup: func(b *mocks.MockBucketStore, s *mocks.MockSnapshotStore) {
				s.EXPECT().Get(gomock.Any(), "T1").Return(nil, stores.ErrSnapshotNotFound)
				b.EXPECT().GetMinuteBuckets(gomock.Any(), "T1", gomock.Any()).
					Return([]*models.MinuteBucket{{OrderCount: 4, Revenue: decimal.NewFromInt(4)}}, nil)
				s.EXPECT().Save(gomock.Any(), "T1", gomock.Any()).Return(nil)
			},
			wantTotal: 4,
		},
		{
			name: "everything down serves defaults",
			setup: func(b *mocks.MockBucketStore, s *mocks.MockSnapshotStore) {
				s.EXPECT().Get(gomock.Any(), "T1").Return(nil, errors.New("i/o timeout"))
				b.EXPECT().GetMinuteBuckets(gomock.Any(), "T1", gomock.Any()).Return(nil, errors.New("i/o timeout"))
			},
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			bucketStore := mocks.NewMockBucketStore(ctrl)
			snapshotStore := mocks.NewMockSnapshotStore(ctrl)
			tt.setup(bucketStore, snapshotStore)

			calc := NewRollingWindowCalculator(bucketStore, snapshotStore, fixedClock)
			snapshot := calc.Current(context.Background(), "T1")

			require.NotNil(t, snapshot)
			assert.Equal(t, tt.wantTotal, snapshot.TotalOrders)
		})
	}
}
