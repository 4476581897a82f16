package analytics

import (
	"context"
	"errors"
	"time"

	"order-metrics/internal/aggregators"
	"order-metrics/internal/models"
	"order-metrics/internal/shared/loggers"
	"order-metrics/internal/shared/svcerrors"
	"order-metrics/internal/stores"
)

const (
	stageBuckets    = "buckets"
	stageOrderStore = "order_store"
	stageRates      = "rates"
)

// QueryService answers analytics queries for a tenant over a look-back period.
//
// A query resolves in two stages: the hour or day buckets of the period's chart first, then, when they hold no
// orders, a full recomputation from the order store bounded by a query timeout. Failures never
// reach the caller; the best available summary, possibly empty, is returned and the failure is logged.
//
//go:generate mockgen -source=query_service.go -destination=./mocks/query_service_mock.go -package=mocks
type QueryService interface {
	// Summarize returns the period summary with the default number of top items.
	Summarize(ctx context.Context, tenantID string, period models.Period) *models.AnalyticsSummary
	// TopItems returns up to limit items of the period ranked by quantity.
	TopItems(ctx context.Context, tenantID string, period models.Period, limit int) []models.ItemQuantity
}

type queryService struct {
	bucketStore   stores.BucketStore
	orderStore    stores.OrderStore
	calculator    aggregators.RollingWindowCalculator
	queryTimeout  time.Duration
	topItemsLimit int
	now           func() time.Time
}

func NewQueryService(
	bucketStore stores.BucketStore,
	orderStore stores.OrderStore,
	calculator aggregators.RollingWindowCalculator,
	queryTimeout time.Duration,
	topItemsLimit int,
	now func() time.Time,
) QueryService {
	if now == nil {
		now = time.Now
	}
	return &queryService{
		bucketStore:   bucketStore,
		orderStore:    orderStore,
		calculator:    calculator,
		queryTimeout:  queryTimeout,
		topItemsLimit: topItemsLimit,
		now:           now,
	}
}

func (s *queryService) Summarize(ctx context.Context, tenantID string, period models.Period) *models.AnalyticsSummary {
	summary := s.resolve(ctx, tenantID, period)
	summary.TopItems = limitItems(summary.TopItems, s.topItemsLimit)
	return summary
}

func (s *queryService) TopItems(ctx context.Context, tenantID string, period models.Period, limit int) []models.ItemQuantity {
	return limitItems(s.resolve(ctx, tenantID, period).TopItems, limit)
}

// resolve runs both stages and returns a summary with every ranked item.
func (s *queryService) resolve(ctx context.Context, tenantID string, period models.Period) *models.AnalyticsSummary {
	startedAt := time.Now()
	logger := loggers.Ctx(ctx).With().
		Str(loggers.FieldTenantID, tenantID).
		Str(loggers.FieldPeriod, string(period)).
		Logger()

	start, end := period.Window(s.now())

	summary, svcErr := s.loadFromBuckets(ctx, tenantID, period, start, end)
	if svcErr != nil {
		metricStageErrorsTotal.WithLabelValues(stageBuckets, svcErr.Code).Inc()
		logger.Warn().Err(svcErr).Str(loggers.FieldErrorCode, svcErr.Code).Msg("bucket read failed, falling back to order store")
	}

	if summary != nil {
		summary.Summary.AvgPreparationTime = s.calculator.Current(ctx, tenantID).AvgPrepTimeMinutes
		s.applyStatusRates(ctx, summary, start, end)
	} else {
		summary, svcErr = s.recomputeFromOrderStore(ctx, tenantID, period, start, end)
		if svcErr != nil {
			metricStageErrorsTotal.WithLabelValues(stageOrderStore, svcErr.Code).Inc()
			logger.Error().Err(svcErr).Str(loggers.FieldErrorCode, svcErr.Code).Msg("order store recomputation failed, serving empty summary")
			summary = models.NewEmptyAnalyticsSummary(tenantID, period, start, end)
		}
	}

	metricSummariesTotal.WithLabelValues(string(summary.Source), string(period)).Inc()
	metricSummaryDuration.WithLabelValues(string(summary.Source)).Observe(time.Since(startedAt).Seconds())
	return summary
}

// loadFromBuckets builds the summary from cached buckets of the chart granularity. The
// window is aligned to that granularity, so no bucket read reaches before its start.
// A nil summary means the buckets hold no orders for the window and the caller should recompute.
func (s *queryService) loadFromBuckets(ctx context.Context, tenantID string, period models.Period, start, end time.Time) (*models.AnalyticsSummary, *svcerrors.ServiceError) {
	chart := period.ChartGranularity()
	starts := chart.BucketStarts(start, end)

	var points []bucketPoint
	items := make(map[string]int64)
	addItems := func(counts map[string]int64) {
		for name, q := range counts {
			items[name] += q
		}
	}

	if chart == models.GranularityHour {
		hours, err := s.bucketStore.GetHourBuckets(ctx, tenantID, starts)
		if err != nil {
			return nil, errUnavailableBucketStore(err)
		}
		points = make([]bucketPoint, 0, len(hours))
		for _, h := range hours {
			points = append(points, bucketPoint{start: h.BucketStart, orders: h.OrderCount, revenue: h.Revenue, customers: h.UniqueCustomers})
			addItems(h.ItemCounts)
		}
	} else {
		days, err := s.bucketStore.GetDayBuckets(ctx, tenantID, starts)
		if err != nil {
			return nil, errUnavailableBucketStore(err)
		}
		points = make([]bucketPoint, 0, len(days))
		for _, d := range days {
			points = append(points, bucketPoint{start: d.BucketStart, orders: d.OrderCount, revenue: d.Revenue, customers: d.UniqueCustomers})
			addItems(d.ItemCounts)
		}
	}

	summary := assembleSummary(tenantID, period, start, end, points, items, models.SourceBuckets)
	if summary.Summary.TotalOrders == 0 {
		return nil, nil
	}
	return summary, nil
}

// recomputeFromOrderStore derives every field of the summary from raw orders.
func (s *queryService) recomputeFromOrderStore(ctx context.Context, tenantID string, period models.Period, start, end time.Time) (*models.AnalyticsSummary, *svcerrors.ServiceError) {
	qctx, cancel := s.withQueryTimeout(ctx)
	defer cancel()

	orders, err := s.orderStore.ListOrders(qctx, tenantID, start, end)
	if err != nil {
		return nil, errUnavailableOrderStore(err, isTimeout(qctx, err))
	}
	if len(orders) == 0 {
		return models.NewEmptyAnalyticsSummary(tenantID, period, start, end), nil
	}

	points := pointsFromOrders(orders, period.ChartGranularity())
	summary := assembleSummary(tenantID, period, start, end, points, itemsFromOrders(orders), models.SourceOrderStore)
	summary.Summary.AvgPreparationTime = avgPrepFromOrders(orders)
	summary.Summary.CompletionRate, summary.Summary.CancellationRate = statusRates(statusCountsFromOrders(orders))
	return summary, nil
}

// applyStatusRates reads live status counts because buckets do not track order outcomes.
// On failure both rates stay zero.
func (s *queryService) applyStatusRates(ctx context.Context, summary *models.AnalyticsSummary, start, end time.Time) {
	qctx, cancel := s.withQueryTimeout(ctx)
	defer cancel()

	counts, err := s.orderStore.CountByStatus(qctx, summary.TenantID, start, end)
	if err != nil {
		svcErr := errUnavailableOrderStore(err, isTimeout(qctx, err))
		metricStageErrorsTotal.WithLabelValues(stageRates, svcErr.Code).Inc()
		loggers.Ctx(ctx).Warn().Err(svcErr).
			Str(loggers.FieldTenantID, summary.TenantID).
			Str(loggers.FieldErrorCode, svcErr.Code).
			Msg("failed to read order status counts")
		return
	}
	summary.Summary.CompletionRate, summary.Summary.CancellationRate = statusRates(counts)
}

func (s *queryService) withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

func isTimeout(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}
