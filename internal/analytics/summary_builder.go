package analytics

import (
	"sort"
	"time"

	"order-metrics/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// bucketPoint is one chart bucket, whichever path produced it.
type bucketPoint struct {
	start     time.Time
	orders    int64
	revenue   decimal.Decimal
	customers []string
}

// assembleSummary folds chart buckets and item counts into a summary. Both resolution
// stages go through here so their output is interchangeable.
func assembleSummary(tenantID string, period models.Period, start, end time.Time, points []bucketPoint, items map[string]int64, source models.SummarySource) *models.AnalyticsSummary {
	summary := models.NewEmptyAnalyticsSummary(tenantID, period, start, end)
	summary.Source = source

	sort.Slice(points, func(i, j int) bool { return points[i].start.Before(points[j].start) })

	revenue := decimal.Zero
	customers := make(map[string]struct{})
	for _, p := range points {
		summary.Summary.TotalOrders += p.orders
		revenue = revenue.Add(p.revenue)
		for _, c := range p.customers {
			customers[c] = struct{}{}
		}

		summary.Charts.Revenue = append(summary.Charts.Revenue, models.ChartPoint{Timestamp: p.start, Value: p.revenue.Round(2)})
		summary.Charts.Orders = append(summary.Charts.Orders, models.ChartPoint{Timestamp: p.start, Value: decimal.NewFromInt(p.orders)})
		summary.Charts.Customers = append(summary.Charts.Customers, models.ChartPoint{Timestamp: p.start, Value: decimal.NewFromInt(int64(len(p.customers)))})
	}

	summary.Summary.TotalRevenue = revenue.Round(2)
	summary.Summary.CustomerCount = int64(len(customers))
	if summary.Summary.TotalOrders > 0 {
		summary.Summary.AvgOrderValue = revenue.Div(decimal.NewFromInt(summary.Summary.TotalOrders)).Round(0)
	}
	summary.TopItems = rankItems(items)
	return summary
}

// pointsFromOrders groups raw orders into chart buckets of granularity g.
func pointsFromOrders(orders []*models.Order, g models.Granularity) []bucketPoint {
	byStart := make(map[time.Time]*bucketPoint)
	seen := make(map[time.Time]map[string]struct{})
	for _, o := range orders {
		s := g.Truncate(o.CreatedAt)
		p, ok := byStart[s]
		if !ok {
			p = &bucketPoint{start: s, revenue: decimal.Zero}
			byStart[s] = p
			seen[s] = make(map[string]struct{})
		}
		p.orders++
		p.revenue = p.revenue.Add(o.TotalAmount)
		if o.CustomerID == "" {
			continue
		}
		if _, dup := seen[s][o.CustomerID]; !dup {
			seen[s][o.CustomerID] = struct{}{}
			p.customers = append(p.customers, o.CustomerID)
		}
	}

	points := make([]bucketPoint, 0, len(byStart))
	for _, p := range byStart {
		points = append(points, *p)
	}
	return points
}

// itemsFromOrders sums line-item quantities by name. Unnamed items are ignored and a
// missing quantity counts as one.
func itemsFromOrders(orders []*models.Order) map[string]int64 {
	items := make(map[string]int64)
	for _, o := range orders {
		for _, item := range o.Items {
			if item.Name == "" {
				continue
			}
			q := item.Quantity
			if q <= 0 {
				q = 1
			}
			items[item.Name] += q
		}
	}
	return items
}

// avgPrepFromOrders averages the preparation times that were recorded.
func avgPrepFromOrders(orders []*models.Order) int64 {
	var total, samples int64
	for _, o := range orders {
		if o.PreparationTimeMinutes > 0 {
			total += int64(o.PreparationTimeMinutes)
			samples++
		}
	}
	if samples == 0 {
		return 0
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(samples)).Round(0).IntPart()
}

func statusCountsFromOrders(orders []*models.Order) map[models.OrderStatus]int64 {
	counts := make(map[models.OrderStatus]int64)
	for _, o := range orders {
		counts[o.Status]++
	}
	return counts
}

// statusRates returns the delivered and cancelled shares as whole percentages.
func statusRates(counts map[models.OrderStatus]int64) (completion, cancellation int64) {
	var total int64
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0, 0
	}
	pct := func(n int64) int64 {
		return decimal.NewFromInt(n).Mul(hundred).Div(decimal.NewFromInt(total)).Round(0).IntPart()
	}
	return pct(counts[models.OrderStatusDelivered]), pct(counts[models.OrderStatusCancelled])
}

// rankItems orders items by quantity, highest first, breaking ties by name.
func rankItems(items map[string]int64) []models.ItemQuantity {
	ranked := make([]models.ItemQuantity, 0, len(items))
	for name, q := range items {
		ranked = append(ranked, models.ItemQuantity{Name: name, Quantity: q})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

func limitItems(items []models.ItemQuantity, limit int) []models.ItemQuantity {
	if limit <= 0 || len(items) <= limit {
		return items
	}
	return items[:limit]
}
