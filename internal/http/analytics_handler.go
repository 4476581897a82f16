package http

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"order-metrics/internal/aggregators"
	"order-metrics/internal/analytics"
	"order-metrics/internal/models"

	"github.com/go-chi/chi/v5"
)

const (
	maxTopItemsLimit = 100

	exportFormatJSON = "json"
	exportFormatCSV  = "csv"
)

type tenantMetricsHandler struct {
	calculator aggregators.RollingWindowCalculator
}

func NewTenantMetricsHandler(calculator aggregators.RollingWindowCalculator) AppHttpHandler {
	return &tenantMetricsHandler{calculator: calculator}
}

// Handle serves GET /tenants/{tenantId}/metrics. A tenant without data gets zeros.
func (h *tenantMetricsHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	tenantID, err := tenantIDParam(r)
	if err != nil {
		return err
	}
	return writeData(w, http.StatusOK, h.calculator.Current(r.Context(), tenantID))
}

type analyticsHandler struct {
	queryService  analytics.QueryService
	defaultPeriod models.Period
	defaultLimit  int
}

func newAnalyticsHandler(queryService analytics.QueryService, defaultPeriod models.Period, defaultLimit int) *analyticsHandler {
	if defaultPeriod == "" {
		defaultPeriod = models.Period24Hours
	}
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &analyticsHandler{queryService: queryService, defaultPeriod: defaultPeriod, defaultLimit: defaultLimit}
}

// NewAnalyticsSummaryHandler serves GET /tenants/{tenantId}/analytics?period=.
func NewAnalyticsSummaryHandler(queryService analytics.QueryService, defaultPeriod models.Period) AppHttpHandler {
	h := newAnalyticsHandler(queryService, defaultPeriod, 0)
	return AppHttpHandlerFunc(h.summary)
}

// NewTopItemsHandler serves GET /tenants/{tenantId}/analytics/top-items?period=&limit=.
func NewTopItemsHandler(queryService analytics.QueryService, defaultPeriod models.Period, defaultLimit int) AppHttpHandler {
	h := newAnalyticsHandler(queryService, defaultPeriod, defaultLimit)
	return AppHttpHandlerFunc(h.topItems)
}

// NewAnalyticsExportHandler serves GET /tenants/{tenantId}/analytics/export?period=&format=json|csv.
func NewAnalyticsExportHandler(queryService analytics.QueryService, defaultPeriod models.Period) AppHttpHandler {
	h := newAnalyticsHandler(queryService, defaultPeriod, 0)
	return AppHttpHandlerFunc(h.export)
}

func (h *analyticsHandler) summary(w http.ResponseWriter, r *http.Request) error {
	tenantID, period, err := h.tenantAndPeriod(r)
	if err != nil {
		return err
	}
	return writeData(w, http.StatusOK, h.queryService.Summarize(r.Context(), tenantID, period))
}

func (h *analyticsHandler) topItems(w http.ResponseWriter, r *http.Request) error {
	tenantID, period, err := h.tenantAndPeriod(r)
	if err != nil {
		return err
	}

	limit := h.defaultLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 1 || n > maxTopItemsLimit {
			return errInvalidLimit(raw)
		}
		limit = n
	}

	return writeData(w, http.StatusOK, h.queryService.TopItems(r.Context(), tenantID, period, limit))
}

func (h *analyticsHandler) export(w http.ResponseWriter, r *http.Request) error {
	tenantID, period, err := h.tenantAndPeriod(r)
	if err != nil {
		return err
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = exportFormatJSON
	}
	if format != exportFormatJSON && format != exportFormatCSV {
		return errInvalidExportFormat(format)
	}

	summary := h.queryService.Summarize(r.Context(), tenantID, period)
	if format == exportFormatJSON {
		return writeData(w, http.StatusOK, summary)
	}

	var buf bytes.Buffer
	if err := analytics.WriteCSV(&buf, summary); err != nil {
		return errInternalExport(err)
	}
	w.Header().Set(headerContentType, "text/csv")
	w.Header().Set(headerContentDisposition, `attachment; filename="`+analytics.ExportFileName(tenantID, period)+`"`)
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(buf.Bytes())
	return err
}

func (h *analyticsHandler) tenantAndPeriod(r *http.Request) (string, models.Period, error) {
	tenantID, err := tenantIDParam(r)
	if err != nil {
		return "", "", err
	}

	raw := strings.TrimSpace(r.URL.Query().Get("period"))
	if raw == "" {
		return tenantID, h.defaultPeriod, nil
	}
	period, parseErr := models.ParsePeriod(raw)
	if parseErr != nil {
		return "", "", errInvalidPeriod(parseErr)
	}
	return tenantID, period, nil
}

func tenantIDParam(r *http.Request) (string, error) {
	tenantID := strings.TrimSpace(chi.URLParam(r, "tenantId"))
	if tenantID == "" {
		return "", errMissingTenantID()
	}
	return tenantID, nil
}
