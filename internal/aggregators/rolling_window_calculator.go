package aggregators

import (
	"context"
	"errors"
	"time"

	"order-metrics/internal/models"
	"order-metrics/internal/shared/loggers"
	"order-metrics/internal/shared/metrics"
	"order-metrics/internal/shared/svcerrors"
	"order-metrics/internal/stores"

	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// RollingWindowCalculator derives the live one-hour snapshot of a tenant from its minute buckets.
//
// The snapshot only depends on the 60 minute buckets ending at the current minute, so it can be
// thrown away and rebuilt at any time. Recompute reads exactly those 60 deterministic keys; it
// never scans the keyspace.
//
//go:generate mockgen -source=rolling_window_calculator.go -destination=./mocks/rolling_window_calculator_mock.go -package=mocks
type RollingWindowCalculator interface {
	// Recompute rebuilds the snapshot from the buckets and caches it.
	Recompute(ctx context.Context, tenantID string) (*models.RollingSnapshot, *svcerrors.ServiceError)
	// Current returns the cached snapshot, rebuilding it when missing, or defaults when neither works.
	Current(ctx context.Context, tenantID string) *models.RollingSnapshot
}

type rollingWindowCalculator struct {
	bucketStore   stores.BucketStore
	snapshotStore stores.SnapshotStore
	now           func() time.Time
}

func NewRollingWindowCalculator(bucketStore stores.BucketStore, snapshotStore stores.SnapshotStore, now func() time.Time) RollingWindowCalculator {
	if now == nil {
		now = time.Now
	}
	return &rollingWindowCalculator{bucketStore: bucketStore, snapshotStore: snapshotStore, now: now}
}

func (c *rollingWindowCalculator) Recompute(ctx context.Context, tenantID string) (*models.RollingSnapshot, *svcerrors.ServiceError) {
	startedAt := time.Now()
	defer func() {
		metricSnapshotRecomputeDuration.WithLabelValues().Observe(time.Since(startedAt).Seconds())
	}()

	now := c.now().UTC()
	buckets, err := c.bucketStore.GetMinuteBuckets(ctx, tenantID, trailingMinuteStarts(now))
	if err != nil {
		svcErr := errUnavailableBucketStore(err)
		metricSnapshotRecomputeTotal.WithLabelValues(svcErr.Code).Inc()
		return nil, svcErr
	}

	snapshot := ComputeRollingSnapshot(buckets, now)
	if err := c.snapshotStore.Save(ctx, tenantID, snapshot); err != nil {
		svcErr := errInternalSnapshotRecompute(err)
		metricSnapshotRecomputeTotal.WithLabelValues(svcErr.Code).Inc()
		return snapshot, svcErr
	}

	metricSnapshotRecomputeTotal.WithLabelValues(metrics.ValueNoError).Inc()
	return snapshot, nil
}

func (c *rollingWindowCalculator) Current(ctx context.Context, tenantID string) *models.RollingSnapshot {
	logger := loggers.Ctx(ctx)

	snapshot, err := c.snapshotStore.Get(ctx, tenantID)
	if err == nil {
		return snapshot
	}
	if !errors.Is(err, stores.ErrSnapshotNotFound) {
		logger.Warn().Err(err).Str(loggers.FieldTenantID, tenantID).Msg("failed to read cached rolling snapshot")
	}

	snapshot, svcErr := c.Recompute(ctx, tenantID)
	if snapshot != nil {
		if svcErr != nil {
			logger.Warn().Err(svcErr).Str(loggers.FieldTenantID, tenantID).Msg("serving uncached rolling snapshot")
		}
		return snapshot
	}

	logger.Warn().Err(svcErr).Str(loggers.FieldTenantID, tenantID).Msg("serving default rolling snapshot")
	return models.NewDefaultRollingSnapshot(c.now())
}

// trailingMinuteStarts lists the starts of the 60 minute buckets ending at now's minute, oldest first.
func trailingMinuteStarts(now time.Time) []time.Time {
	n := int(models.RollingWindow / time.Minute)
	current := models.GranularityMinute.Truncate(now)
	starts := make([]time.Time, n)
	for i := 0; i < n; i++ {
		starts[i] = current.Add(-time.Duration(n-1-i) * time.Minute)
	}
	return starts
}

// ComputeRollingSnapshot folds minute buckets into a snapshot.
// lastUpdated is the most recent bucket write, or now when there are no buckets, so
// recomputing over unchanged buckets yields an identical snapshot.
func ComputeRollingSnapshot(buckets []*models.MinuteBucket, now time.Time) *models.RollingSnapshot {
	var (
		orders, prepTotal, prepSamples int64
		revenue                        = decimal.Zero
		lastUpdated                    time.Time
	)
	for _, b := range buckets {
		orders += b.OrderCount
		prepTotal += b.TotalPrepTimeMinutes
		prepSamples += b.PrepTimeSampleCount
		revenue = revenue.Add(b.Revenue)
		if b.LastUpdated.After(lastUpdated) {
			lastUpdated = b.LastUpdated
		}
	}
	if lastUpdated.IsZero() {
		lastUpdated = now.UTC()
	}

	snapshot := models.NewDefaultRollingSnapshot(lastUpdated)
	snapshot.TotalOrders = orders
	snapshot.TotalRevenue = revenue.Round(2)
	snapshot.OrdersPerMinute = decimal.NewFromInt(orders).Div(sixty).Round(2)
	if prepSamples > 0 {
		snapshot.AvgPrepTimeMinutes = decimal.NewFromInt(prepTotal).Div(decimal.NewFromInt(prepSamples)).Round(0).IntPart()
	}
	if orders > 0 {
		snapshot.AvgOrderValue = revenue.Div(decimal.NewFromInt(orders)).Round(0)
	}
	return snapshot
}
