package http

import (
	"net/http"

	"order-metrics/internal/aggregators"
	"order-metrics/internal/analytics"
	"order-metrics/internal/models"
	"order-metrics/internal/shared/configs"
	"order-metrics/internal/shared/loggers"
	"order-metrics/internal/shared/metrics"

	"github.com/go-chi/chi/v5"
)

// RouterDeps groups what the HTTP surface reads from.
type RouterDeps struct {
	Calculator   aggregators.RollingWindowCalculator
	QueryService analytics.QueryService
	Rooms        RoomRegistry
	Analytics    configs.AnalyticsConfig
	Realtime     configs.RealtimeConfig
	RateLimit    configs.RateLimitConfig
}

// NewRouter creates and configures the HTTP router.
func NewRouter(deps RouterDeps, httpLogger loggers.Logger) http.Handler {
	router := chi.NewRouter()
	setupMiddleware(router, httpLogger)

	defaultPeriod := models.Period(deps.Analytics.DefaultPeriod)

	// Initialize handlers
	metricsHandler := NewTenantMetricsHandler(deps.Calculator)
	summaryHandler := NewAnalyticsSummaryHandler(deps.QueryService, defaultPeriod)
	topItemsHandler := NewTopItemsHandler(deps.QueryService, defaultPeriod, deps.Analytics.TopItemsLimit)
	exportHandler := NewAnalyticsExportHandler(deps.QueryService, defaultPeriod)

	// Routes
	router.Get("/metrics", metrics.PromHTTP.Handler().ServeHTTP)
	router.Handle("/ws", NewWebsocketHandler(deps.Rooms, deps.Realtime))

	router.Route("/tenants/{tenantId}", func(r chi.Router) {
		r.Use(mwTenantLogger)
		if deps.RateLimit.Enabled {
			r.Use(mwRateLimit(newRateLimiter(deps.RateLimit, nil)))
		}
		r.Get("/metrics", errorHandlingAdapter(metricsHandler))
		r.Get("/analytics", errorHandlingAdapter(summaryHandler))
		r.Get("/analytics/top-items", errorHandlingAdapter(topItemsHandler))
		r.Get("/analytics/export", errorHandlingAdapter(exportHandler))
	})

	return router
}
