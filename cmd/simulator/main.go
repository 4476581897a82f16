// Command simulator stores random orders and publishes their order_created events,
// standing in for the order service that feeds the pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"order-metrics/internal/models"
	"order-metrics/internal/shared/configs"
	"order-metrics/internal/shared/loggers"
	"order-metrics/internal/shared/ulid"
	"order-metrics/internal/stores"
	"order-metrics/internal/streams"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

var menu = []models.OrderItem{
	{Name: "Burger", UnitPrice: decimal.RequireFromString("8.50")},
	{Name: "Fries", UnitPrice: decimal.RequireFromString("3.20")},
	{Name: "Pizza", UnitPrice: decimal.RequireFromString("12.00")},
	{Name: "Salad", UnitPrice: decimal.RequireFromString("7.40")},
	{Name: "Soda", UnitPrice: decimal.RequireFromString("1.90")},
}

func main() {
	configPath := flag.String("config", "./configs/configs.yml", "config file")
	tenants := flag.Int("tenants", 3, "number of tenants")
	ordersPerSecond := flag.Float64("rate", 2, "orders per second across all tenants")
	total := flag.Int("n", 0, "stop after n orders (0 runs until interrupted)")
	flag.Parse()

	cfg, err := configs.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := loggers.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = loggers.Component(logger, "simulator")

	db, err := stores.OpenOrderDB(cfg.OrderStore)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open order store")
	}
	orderStore := stores.NewOrderStore(db)

	writer := streams.NewKafkaWriter(cfg.Kafka)
	defer writer.Close()
	publisher := streams.NewOrderEventPublisher(
		streams.NewOrderEventProducer(writer),
		int64(cfg.Aggregation.DefaultPrepTimeMinutes),
		time.Duration(cfg.Kafka.WriteTimeout)*time.Millisecond,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	limiter := rate.NewLimiter(rate.Limit(*ordersPerSecond), 1)
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	for sent := 0; *total == 0 || sent < *total; sent++ {
		if err := limiter.Wait(ctx); err != nil {
			break
		}

		order := randomOrder(rnd, fmt.Sprintf("tenant-%d", rnd.Intn(*tenants)+1))
		if err := orderStore.Create(ctx, order); err != nil {
			logger.Error().Err(err).Str(loggers.FieldTenantID, order.TenantID).Msg("failed to store order")
			continue
		}
		publisher.PublishOrderCreated(ctx, order)

		// Settle a share of orders so completion and cancellation rates move.
		if status, ok := randomOutcome(rnd); ok {
			if err := orderStore.UpdateStatus(ctx, order.TenantID, order.ID, status); err != nil {
				logger.Warn().Err(err).Str(loggers.FieldOrderID, order.ID).Msg("failed to update order status")
			}
		}

		logger.Debug().
			Str(loggers.FieldTenantID, order.TenantID).
			Str(loggers.FieldOrderID, order.ID).
			Str("total", order.TotalAmount.StringFixed(2)).
			Msg("order simulated")
	}

	logger.Info().Msg("simulator stopped")
}

func randomOrder(rnd *rand.Rand, tenantID string) *models.Order {
	n := rnd.Intn(3) + 1
	items := make([]models.OrderItem, 0, n)
	total := decimal.Zero
	for i := 0; i < n; i++ {
		item := menu[rnd.Intn(len(menu))]
		item.Quantity = int64(rnd.Intn(3) + 1)
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)))
		items = append(items, item)
	}

	createdAt := time.Now().UTC()
	return &models.Order{
		ID:                     ulid.NewULIDAt(createdAt),
		TenantID:               tenantID,
		CustomerID:             fmt.Sprintf("customer-%d", rnd.Intn(50)+1),
		Status:                 models.OrderStatusPending,
		Items:                  items,
		TotalAmount:            total.Round(2),
		PreparationTimeMinutes: 10 + rnd.Intn(25),
		CreatedAt:              createdAt,
	}
}

func randomOutcome(rnd *rand.Rand) (models.OrderStatus, bool) {
	switch p := rnd.Intn(10); {
	case p < 6:
		return models.OrderStatusDelivered, true
	case p < 7:
		return models.OrderStatusCancelled, true
	default:
		return "", false
	}
}
