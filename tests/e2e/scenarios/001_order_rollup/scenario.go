package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"order-metrics/internal/events"
	"order-metrics/internal/models"
	"order-metrics/internal/shared/configs"
	"order-metrics/internal/streams"

	"github.com/shopspring/decimal"
)

// ### Start - fixed configs (no change)
// These values define deterministic test data generation and must match expected results.
const (
	ordersPerTenant = 250
)

var (
	tenants = []string{"rest-a", "rest-b", "rest-c", "rest-d"}
	items   = []struct {
		name  string
		price string
	}{
		{"Burger", "8.50"},
		{"Fries", "3.20"},
		{"Pizza", "12.00"},
		{"Soda", "1.90"},
	}
)

// ### End - fixed configs

type expectedTotals struct {
	orders  int64
	revenue decimal.Decimal
	items   map[string]int64
}

// main runs the e2e scenario: 001_order_rollup
//
// It publishes ordersPerTenant order_created events for every tenant straight onto the
// order topic, then polls the HTTP API until the live metrics and the 24h analytics summary
// of each tenant account for every event.
//
// What it tests:
//   - Kafka consumption, per-partition ordering and offset commits
//   - Minute, hour and day bucket increments under concurrent publishers
//   - Rolling snapshot refresh after each event
//   - Analytics served from buckets and the CSV export
//
// Run it against a fresh Redis: the expected totals assume no earlier events in the last hour.
func main() {
	// these configs can be changed to run the scenario
	baseURL := getEnv("BASE_URL", "http://localhost:8080")
	brokers := getEnv("KAFKA_BROKERS", "localhost:9092")
	topic := getEnv("KAFKA_TOPIC", "order_events")
	parallel := 4
	waitFor := 60 * time.Second

	fmt.Println("Starting e2e scenario: 001_order_rollup")
	fmt.Printf("BASE_URL: %s\n", baseURL)
	fmt.Printf("KAFKA_BROKERS: %s\n", brokers)
	fmt.Printf("TENANTS: %d\n", len(tenants))
	fmt.Printf("ORDERS_PER_TENANT: %d\n", ordersPerTenant)
	fmt.Println()

	writer := streams.NewKafkaWriter(configs.KafkaConfig{
		Brokers:      strings.Split(brokers, ","),
		Topic:        topic,
		BatchTimeMs:  10,
		WriteTimeout: 5000,
	})
	defer writer.Close()
	producer := streams.NewOrderEventProducer(writer)

	now := time.Now().UTC()
	expected := make(map[string]*expectedTotals, len(tenants))
	var all []*events.OrderEvent
	for _, tenant := range tenants {
		totals := &expectedTotals{revenue: decimal.Zero, items: map[string]int64{}}
		for i := 0; i < ordersPerTenant; i++ {
			order := generateOrder(tenant, i, now)
			totals.orders++
			totals.revenue = totals.revenue.Add(order.TotalAmount)
			for _, item := range order.Items {
				totals.items[item.Name] += item.Quantity
			}
			all = append(all, events.NewOrderCreatedEvent(order, 20))
		}
		expected[tenant] = totals
	}

	// Publish with a bounded worker pool
	workerChan := make(chan struct{}, parallel)
	var wg sync.WaitGroup
	var failed int64
	for _, event := range all {
		wg.Add(1)
		workerChan <- struct{}{}
		go func(e *events.OrderEvent) {
			defer wg.Done()
			defer func() { <-workerChan }()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := producer.Produce(ctx, e); err != nil {
				atomic.AddInt64(&failed, 1)
				fmt.Fprintf(os.Stderr, "ERROR: publish %s/%s failed: %v\n", e.TenantID, e.OrderID, err)
			}
		}(event)
	}
	wg.Wait()

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "ERROR: %d publishes failed\n", failed)
		os.Exit(1)
	}
	fmt.Printf("Published %d events\n", len(all))
	fmt.Println()

	deadline := time.Now().Add(waitFor)
	for _, tenant := range tenants {
		if err := waitForTenant(baseURL, tenant, expected[tenant], deadline); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: tenant %s: %v\n", tenant, err)
			os.Exit(1)
		}
		fmt.Printf("Tenant %s verified (%d orders, revenue %s)\n", tenant, expected[tenant].orders, expected[tenant].revenue.StringFixed(2))
	}

	fmt.Println("Scenario completed successfully")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func generateOrder(tenant string, i int, now time.Time) *models.Order {
	first := items[i%len(items)]
	second := items[(i/len(items))%len(items)]

	orderItems := []models.OrderItem{
		{Name: first.name, Quantity: int64(i%3 + 1), UnitPrice: decimal.RequireFromString(first.price)},
		{Name: second.name, Quantity: 1, UnitPrice: decimal.RequireFromString(second.price)},
	}
	total := decimal.Zero
	for _, item := range orderItems {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)))
	}

	return &models.Order{
		ID:                     fmt.Sprintf("%s-order-%05d", tenant, i),
		TenantID:               tenant,
		CustomerID:             fmt.Sprintf("%s-customer-%03d", tenant, i%40),
		Status:                 models.OrderStatusPending,
		Items:                  orderItems,
		TotalAmount:            total,
		PreparationTimeMinutes: 15 + i%10,
		CreatedAt:              now,
	}
}

func waitForTenant(baseURL, tenant string, want *expectedTotals, deadline time.Time) error {
	var lastErr error
	for time.Now().Before(deadline) {
		lastErr = verifyTenant(baseURL, tenant, want)
		if lastErr == nil {
			return nil
		}
		time.Sleep(time.Second)
	}
	return lastErr
}

func verifyTenant(baseURL, tenant string, want *expectedTotals) error {
	var live struct {
		Data models.RollingSnapshot `json:"data"`
	}
	if err := getJSON(baseURL+"/tenants/"+tenant+"/metrics", &live); err != nil {
		return err
	}
	if live.Data.TotalOrders != want.orders {
		return fmt.Errorf("live totalOrders = %d, want %d", live.Data.TotalOrders, want.orders)
	}
	if !live.Data.TotalRevenue.Equal(want.revenue) {
		return fmt.Errorf("live totalRevenue = %s, want %s", live.Data.TotalRevenue, want.revenue)
	}

	var summary struct {
		Data models.AnalyticsSummary `json:"data"`
	}
	if err := getJSON(baseURL+"/tenants/"+tenant+"/analytics?period=24h", &summary); err != nil {
		return err
	}
	if summary.Data.Summary.TotalOrders != want.orders {
		return fmt.Errorf("summary totalOrders = %d, want %d", summary.Data.Summary.TotalOrders, want.orders)
	}
	for _, item := range summary.Data.TopItems {
		if item.Quantity != want.items[item.Name] {
			return fmt.Errorf("top item %s = %d, want %d", item.Name, item.Quantity, want.items[item.Name])
		}
	}

	resp, err := http.Get(baseURL + "/tenants/" + tenant + "/analytics/export?period=24h&format=csv")
	if err != nil {
		return fmt.Errorf("export request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}
	if line := fmt.Sprintf("totalOrders,%d", want.orders); !strings.Contains(string(body), line) {
		return fmt.Errorf("export is missing %q", line)
	}
	return nil
}

func getJSON(url string, out any) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("GET %s failed: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
