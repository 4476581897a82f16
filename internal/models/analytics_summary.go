package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SummarySource tells which path produced an AnalyticsSummary. Diagnostic only.
type SummarySource string

const (
	SourceBuckets    SummarySource = "buckets"
	SourceOrderStore SummarySource = "order_store"
	SourceEmpty      SummarySource = "empty"
)

type AnalyticsSummary struct {
	TenantID  string         `json:"tenantId"`
	Period    Period         `json:"period"`
	Summary   SummaryTotals  `json:"summary"`
	Charts    SummaryCharts  `json:"charts"`
	TopItems  []ItemQuantity `json:"topItems"`
	TimeRange TimeRange      `json:"timeRange"`
	Source    SummarySource  `json:"source"`
}

type SummaryTotals struct {
	TotalOrders        int64           `json:"totalOrders"`
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
	AvgOrderValue      decimal.Decimal `json:"avgOrderValue"`
	CustomerCount      int64           `json:"customerCount"`
	CompletionRate     int64           `json:"completionRate"`
	CancellationRate   int64           `json:"cancellationRate"`
	AvgPreparationTime int64           `json:"avgPreparationTime"`
}

type SummaryCharts struct {
	Revenue   []ChartPoint `json:"revenue"`
	Orders    []ChartPoint `json:"orders"`
	Customers []ChartPoint `json:"customers"`
}

// ChartPoint is one bucket of a chart series, keyed by bucket start.
type ChartPoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Value     decimal.Decimal `json:"value"`
}

type ItemQuantity struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewEmptyAnalyticsSummary returns a structurally complete summary with zero values.
func NewEmptyAnalyticsSummary(tenantID string, period Period, start, end time.Time) *AnalyticsSummary {
	return &AnalyticsSummary{
		TenantID: tenantID,
		Period:   period,
		Summary: SummaryTotals{
			TotalRevenue:  decimal.Zero,
			AvgOrderValue: decimal.Zero,
		},
		Charts: SummaryCharts{
			Revenue:   []ChartPoint{},
			Orders:    []ChartPoint{},
			Customers: []ChartPoint{},
		},
		TopItems:  []ItemQuantity{},
		TimeRange: TimeRange{Start: start, End: end},
		Source:    SourceEmpty,
	}
}
