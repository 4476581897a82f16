package analytics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"order-metrics/internal/models"
)

// WriteCSV renders a summary as a flat CSV: one metric per row, then the revenue, orders
// and top-item sections, each separated by a blank line.
func WriteCSV(w io.Writer, summary *models.AnalyticsSummary) error {
	totals := summary.Summary
	records := [][]string{
		{"Metric", "Value"},
		{"totalOrders", strconv.FormatInt(totals.TotalOrders, 10)},
		{"totalRevenue", totals.TotalRevenue.StringFixed(2)},
		{"avgOrderValue", totals.AvgOrderValue.String()},
		{"customerCount", strconv.FormatInt(totals.CustomerCount, 10)},
		{"completionRate", strconv.FormatInt(totals.CompletionRate, 10)},
		{"cancellationRate", strconv.FormatInt(totals.CancellationRate, 10)},
		{"avgPreparationTime", strconv.FormatInt(totals.AvgPreparationTime, 10)},
		{},
		{"Revenue Data"},
		{"Time", "Revenue"},
	}
	for _, p := range summary.Charts.Revenue {
		records = append(records, []string{p.Timestamp.UTC().Format(time.RFC3339), p.Value.StringFixed(2)})
	}

	records = append(records, []string{}, []string{"Orders Data"}, []string{"Time", "Orders"})
	for _, p := range summary.Charts.Orders {
		records = append(records, []string{p.Timestamp.UTC().Format(time.RFC3339), p.Value.String()})
	}

	records = append(records, []string{}, []string{"Top Items"}, []string{"Item", "Quantity"})
	for _, item := range summary.TopItems {
		records = append(records, []string{item.Name, strconv.FormatInt(item.Quantity, 10)})
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write analytics csv: %w", err)
	}
	return nil
}

// ExportFileName is the attachment name of a CSV export.
func ExportFileName(tenantID string, period models.Period) string {
	return fmt.Sprintf("analytics-%s-%s.csv", tenantID, period)
}
