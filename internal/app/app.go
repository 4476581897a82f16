package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"order-metrics/internal/aggregators"
	"order-metrics/internal/analytics"
	internalhttp "order-metrics/internal/http"
	"order-metrics/internal/realtime"
	"order-metrics/internal/shared/configs"
	"order-metrics/internal/shared/filestorages"
	"order-metrics/internal/shared/loggers"
	"order-metrics/internal/stores"
	"order-metrics/internal/streams"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App holds all application dependencies and manages lifecycle.
type App struct {
	config    *configs.Config
	appLogger loggers.Logger
	server    *http.Server

	redisClient redis.UniversalClient
	orderDB     *gorm.DB

	hub                *realtime.Hub
	relay              *realtime.RedisRelay
	orderEventConsumer streams.OrderEventConsumer

	backgroundCtx    context.Context
	backgroundCancel context.CancelFunc
	backgroundWg     sync.WaitGroup
}

// New creates and initializes a new App instance.
func New(config *configs.Config) (*App, error) {
	appLogger, err := loggers.New(config.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger = appLogger.With().
		Str(loggers.FieldApp, "order-metrics").
		Logger()

	// Initialize connections
	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	redisClient, err := stores.OpenRedis(connectCtx, config.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bucket store: %w", err)
	}
	orderDB, err := stores.OpenOrderDB(config.OrderStore)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to initialize order store: %w", err)
	}

	// Initialize dead-letter storage
	fileStorage, err := filestorages.NewFileStorage(config.DeadLetter.RootDir)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to initialize dead-letter storage: %w", err)
	}

	// Initialize stores
	bucketStore := stores.NewBucketStore(redisClient, nil)
	snapshotStore := stores.NewSnapshotStore(redisClient)
	orderStore := stores.NewOrderStore(orderDB)
	deadLetterStore := stores.NewDeadLetterStore(fileStorage)

	// Initialize realtime broadcaster
	hub := realtime.NewHub(config.Realtime.DispatchQueueSize, appLogger)
	var broadcaster realtime.Broadcaster = hub
	var relay *realtime.RedisRelay
	if config.Realtime.RedisFanout {
		relay = realtime.NewRedisRelay(redisClient, hub, config.Realtime.DispatchQueueSize, appLogger)
		broadcaster = relay
	}

	// Initialize aggregation
	defaultPrep := int64(config.Aggregation.DefaultPrepTimeMinutes)
	calculator := aggregators.NewRollingWindowCalculator(bucketStore, snapshotStore, nil)
	aggregationService := aggregators.NewAggregationService(
		aggregators.NewBucketDeltaBuilder(),
		bucketStore,
		calculator,
		broadcaster,
		defaultPrep,
		nil,
	)

	consumerLogger := loggers.Component(appLogger, "consumer")
	orderEventConsumer := streams.NewOrderEventConsumer(
		streams.NewKafkaReaderFactory(config.Kafka),
		aggregationService,
		deadLetterStore,
		streams.ConsumerOptions{
			Topic:                config.Kafka.Topic,
			QueuePartitions:      config.Kafka.QueuePartitions,
			QueueBufferSize:      config.Kafka.QueueBufferSize,
			RestartDelay:         config.Kafka.RestartDelay(),
			MaxRetries:           config.Kafka.MaxRetries,
			RetryInitialInterval: config.Kafka.RetryInitialInterval(),
			RetryMaxInterval:     config.Kafka.RetryMaxInterval(),
		},
		consumerLogger,
	)

	// Initialize analytics
	queryService := analytics.NewQueryService(
		bucketStore,
		orderStore,
		calculator,
		config.OrderStore.QueryTimeout(),
		config.Analytics.TopItemsLimit,
		nil,
	)

	// Initialize http router
	httpLogger := loggers.Component(appLogger, "http")
	router := internalhttp.NewRouter(internalhttp.RouterDeps{
		Calculator:   calculator,
		QueryService: queryService,
		Rooms:        hub,
		Analytics:    config.Analytics,
		Realtime:     config.Realtime,
		RateLimit:    config.RateLimit,
	}, httpLogger)

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: time.Duration(config.Server.ReadHeaderTimeout) * time.Second,
		ReadTimeout:       time.Duration(config.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(config.Server.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(config.Server.IdleTimeout) * time.Second,
	}

	return &App{
		config:             config,
		appLogger:          appLogger,
		server:             server,
		redisClient:        redisClient,
		orderDB:            orderDB,
		hub:                hub,
		relay:              relay,
		orderEventConsumer: orderEventConsumer,
	}, nil
}

// Start starts the HTTP server in a blocking manner.
func (app *App) Start() error {
	app.appLogger.Info().
		Msgf("Starting order-metrics service on port %d (log_level=%s, topic=%s, redis_fanout=%t)",
			app.config.Server.Port,
			app.config.Log.Level,
			app.config.Kafka.Topic,
			app.config.Realtime.RedisFanout)

	// start background workers
	app.backgroundCtx, app.backgroundCancel = context.WithCancel(context.Background())

	app.backgroundWg.Add(1)
	go func() {
		defer app.backgroundWg.Done()
		app.hub.Run(app.backgroundCtx)
	}()

	if app.relay != nil {
		app.backgroundWg.Add(1)
		go func() {
			defer app.backgroundWg.Done()
			app.relay.Supervise(app.backgroundCtx, app.config.Realtime.RelayRestartDelay())
		}()
	}

	app.orderEventConsumer.Start(app.backgroundCtx)

	return app.server.ListenAndServe()
}

// Shutdown gracefully shuts down the application.
func (app *App) Shutdown(ctx context.Context) error {
	// 1) Shutdown server
	app.appLogger.Info().Msg("Shutting down server...")
	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	app.appLogger.Info().Msg("Server stopped")

	// 2) Cancel background workers
	if app.backgroundCancel != nil {
		app.backgroundCancel()
		app.appLogger.Info().Msg("Background workers cancelled")
	}

	// 3) Wait for background workers to finish
	app.orderEventConsumer.Stop()
	app.backgroundWg.Wait()
	app.appLogger.Info().Msg("Background workers stopped")

	// 4) Release connections
	var errs []error
	if err := app.redisClient.Close(); err != nil {
		errs = append(errs, fmt.Errorf("redis close failed: %w", err))
	}
	if sqlDB, err := app.orderDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("order store close failed: %w", err))
		}
	}
	return errors.Join(errs...)
}
