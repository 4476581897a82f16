package aggregators

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"order-metrics/internal/aggregators/mocks"
	"order-metrics/internal/models"
	"order-metrics/internal/realtime"
	realtimemocks "order-metrics/internal/realtime/mocks"
	"order-metrics/internal/shared/svcerrors"
	"order-metrics/internal/stores"
	storemocks "order-metrics/internal/stores/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const validPayload = `{"tenantId":"T1","orderId":"o-1","eventType":"order_created","timestamp":"2025-12-28T18:03:15Z",
"customerId":"c1","totalAmount":500,"items":[{"name":"Pizza","quantity":2}],"metadata":{"preparationTime":15}}`

type serviceDeps struct {
	bucketStore *storemocks.MockBucketStore
	calculator  *mocks.MockRollingWindowCalculator
	broadcaster *realtimemocks.MockBroadcaster
}

func newServiceWithMocks(t *testing.T) (AggregationService, serviceDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	deps := serviceDeps{
		bucketStore: storemocks.NewMockBucketStore(ctrl),
		calculator:  mocks.NewMockRollingWindowCalculator(ctrl),
		broadcaster: realtimemocks.NewMockBroadcaster(ctrl),
	}
	svc := NewAggregationService(NewBucketDeltaBuilder(), deps.bucketStore, deps.calculator, deps.broadcaster, 20, fixedClock)
	return svc, deps
}

func TestAggregationService_Aggregate_Success(t *testing.T) {
	t.Parallel()

	svc, deps := newServiceWithMocks(t)
	ctx := context.Background()
	snapshot := &models.RollingSnapshot{TotalOrders: 1, LastUpdated: now}

	var published []*realtime.Message
	gomock.InOrder(
		deps.bucketStore.EXPECT().ApplyOrder(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, d *models.BucketDelta) error {
			assert.Equal(t, "T1", d.TenantID)
			assert.Equal(t, time.Date(2025, 12, 28, 18, 3, 15, 0, time.UTC), d.OccurredAt)
			assert.True(t, decimal.NewFromInt(500).Equal(d.Revenue))
			assert.Equal(t, int64(15), d.PrepTimeMinutes)
			assert.Equal(t, map[string]int64{"Pizza": 2}, d.ItemCounts)
			return nil
		}),
		deps.calculator.EXPECT().Recompute(ctx, "T1").Return(snapshot, nil),
		deps.broadcaster.EXPECT().Publish(ctx, gomock.Any()).Do(func(_ context.Context, m *realtime.Message) { published = append(published, m) }),
		deps.broadcaster.EXPECT().Publish(ctx, gomock.Any()).Do(func(_ context.Context, m *realtime.Message) { published = append(published, m) }),
	)

	svcErr := svc.Aggregate(ctx, []byte(validPayload), now)
	assert.Nil(t, svcErr)

	require.Len(t, published, 2)
	assert.Equal(t, realtime.MessageMetricsUpdate, published[0].Type)
	assert.Equal(t, "T1", published[0].TenantID)
	assert.Equal(t, now, published[0].Timestamp)
	assert.Equal(t, realtime.MessageOrderUpdate, published[1].Type)
	assert.Contains(t, string(published[1].Data), `"orderId":"o-1"`)
	assert.Contains(t, string(published[1].Data), `"itemCount":2`)
}

func TestAggregationService_Aggregate_MalformedIsDropped(t *testing.T) {
	t.Parallel()

	svc, _ := newServiceWithMocks(t)

	// no store, calculator or broadcaster calls are expected
	svcErr := svc.Aggregate(context.Background(), []byte(`{"orderId":"o-1","totalAmount":10}`), now)

	require.NotNil(t, svcErr)
	assert.Equal(t, codeInvalidOrderEvent, svcErr.Code)
	assert.True(t, svcErr.IsInvalidArgument())
	assert.False(t, svcErr.IsRetryable())
}

func TestAggregationService_Aggregate_SkipsOtherEventTypes(t *testing.T) {
	t.Parallel()

	svc, _ := newServiceWithMocks(t)

	svcErr := svc.Aggregate(context.Background(), []byte(`{"tenantId":"T1","eventType":"order_delivered"}`), now)
	assert.Nil(t, svcErr)
}

func TestAggregationService_Aggregate_BucketStoreUnavailable(t *testing.T) {
	t.Parallel()

	svc, deps := newServiceWithMocks(t)
	deps.bucketStore.EXPECT().ApplyOrder(gomock.Any(), gomock.Any()).Return(errors.New("dial tcp: connection refused"))

	svcErr := svc.Aggregate(context.Background(), []byte(validPayload), now)

	require.NotNil(t, svcErr)
	assert.Equal(t, codeUnavailableBucketStore, svcErr.Code)
	assert.True(t, svcErr.IsRetryable())
}

func TestAggregationService_Aggregate_RecomputeFailureIsNotReported(t *testing.T) {
	t.Parallel()

	svc, deps := newServiceWithMocks(t)
	deps.bucketStore.EXPECT().ApplyOrder(gomock.Any(), gomock.Any()).Return(nil)
	deps.calculator.EXPECT().Recompute(gomock.Any(), "T1").Return(nil, errUnavailableBucketStore(errors.New("timeout")))
	deps.broadcaster.EXPECT().Publish(gomock.Any(), gomock.Any()).Do(func(_ context.Context, m *realtime.Message) {
		assert.Equal(t, realtime.MessageOrderUpdate, m.Type, "only the lifecycle note goes out")
	})

	assert.Nil(t, svc.Aggregate(context.Background(), []byte(validPayload), now))
}

// integration with the redis-backed stores

type recordingBroadcaster struct {
	messages []*realtime.Message
}

func (b *recordingBroadcaster) Publish(_ context.Context, msg *realtime.Message) {
	b.messages = append(b.messages, msg)
}

func newIntegratedService(t *testing.T) (AggregationService, stores.BucketStore, *recordingBroadcaster) {
	t.Helper()
	_, client := newRedisClient(t)
	bucketStore := stores.NewBucketStore(client, fixedClock)
	calc := NewRollingWindowCalculator(bucketStore, stores.NewSnapshotStore(client), fixedClock)
	broadcaster := &recordingBroadcaster{}
	return NewAggregationService(NewBucketDeltaBuilder(), bucketStore, calc, broadcaster, 20, fixedClock), bucketStore, broadcaster
}

func TestAggregationService_NEventsCountedInMinuteBucket(t *testing.T) {
	t.Parallel()

	svc, bucketStore, _ := newIntegratedService(t)
	ctx := context.Background()

	const n = 25
	for i := 0; i < n; i++ {
		payload := fmt.Sprintf(`{"tenantId":"T1","orderId":"o-%d","timestamp":"2025-12-28T18:03:%02dZ","totalAmount":1}`, i, i)
		require.Nil(t, svc.Aggregate(ctx, []byte(payload), now))
	}

	buckets, err := bucketStore.GetMinuteBuckets(ctx, "T1", []time.Time{time.Date(2025, 12, 28, 18, 3, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, int64(n), buckets[0].OrderCount)
	assert.Equal(t, int64(n*20), buckets[0].TotalPrepTimeMinutes, "default preparation time applies")
}

func TestAggregationService_ThreeOrdersExampleSnapshot(t *testing.T) {
	t.Parallel()

	svc, bucketStore, broadcaster := newIntegratedService(t)
	ctx := context.Background()

	for _, o := range []struct{ amount, prep int }{{500, 15}, {300, 20}, {700, 25}} {
		payload := fmt.Sprintf(`{"tenantId":"T1","timestamp":"2025-12-28T18:03:10Z","totalAmount":%d,"metadata":{"preparationTime":%d}}`, o.amount, o.prep)
		require.Nil(t, svc.Aggregate(ctx, []byte(payload), now))
	}

	buckets, err := bucketStore.GetMinuteBuckets(ctx, "T1", []time.Time{time.Date(2025, 12, 28, 18, 3, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, int64(3), buckets[0].OrderCount)
	assert.True(t, decimal.NewFromInt(1500).Equal(buckets[0].Revenue))

	snapshot := ComputeRollingSnapshot(buckets, now)
	assert.Equal(t, int64(20), snapshot.AvgPrepTimeMinutes)

	require.NotEmpty(t, broadcaster.messages)
	last := broadcaster.messages[len(broadcaster.messages)-2]
	assert.Equal(t, realtime.MessageMetricsUpdate, last.Type)
	assert.Contains(t, string(last.Data), `"totalOrders":3`)
}

func TestAggregationService_MissingTenantDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	svc, bucketStore, _ := newIntegratedService(t)
	ctx := context.Background()

	payloads := []string{
		`{"tenantId":"A","timestamp":"2025-12-28T18:03:00Z","totalAmount":1}`,
		`{"timestamp":"2025-12-28T18:03:00Z","totalAmount":1}`,
		`{"tenantId":"B","timestamp":"2025-12-28T18:03:00Z","totalAmount":1}`,
	}

	var results []*svcerrors.ServiceError
	for _, p := range payloads {
		results = append(results, svc.Aggregate(ctx, []byte(p), now))
	}

	assert.Nil(t, results[0])
	require.NotNil(t, results[1])
	assert.True(t, results[1].IsInvalidArgument())
	assert.Nil(t, results[2])

	start := []time.Time{time.Date(2025, 12, 28, 18, 3, 0, 0, time.UTC)}
	for _, tenant := range []string{"A", "B"} {
		buckets, err := bucketStore.GetMinuteBuckets(ctx, tenant, start)
		require.NoError(t, err)
		require.Len(t, buckets, 1, tenant)
		assert.Equal(t, int64(1), buckets[0].OrderCount)
	}
}
