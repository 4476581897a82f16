package http

import (
	"fmt"

	"order-metrics/internal/shared/svcerrors"
)

const (
	codeInvalidPeriod       = "HTTP_1000"
	codeInvalidLimit        = "HTTP_1001"
	codeInvalidExportFormat = "HTTP_1002"
	codeMissingTenantID     = "HTTP_1003"
	codeRateLimited         = "HTTP_4290"
	codeInternalExport      = "HTTP_9000"
)

func errInvalidPeriod(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeInvalidPeriod, "period must be one of 24h, 7d, 30d, 90d", cause)
}

func errInvalidLimit(raw string) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeInvalidLimit, fmt.Sprintf("limit must be an integer between 1 and %d", maxTopItemsLimit), fmt.Errorf("limit=%q", raw))
}

func errInvalidExportFormat(raw string) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeInvalidExportFormat, "format must be json or csv", fmt.Errorf("format=%q", raw))
}

func errMissingTenantID() *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeMissingTenantID, "tenantId is required", nil)
}

func errRateLimited() *svcerrors.ServiceError {
	return svcerrors.NewResourceExhaustedError(codeRateLimited, "rate limit exceeded", nil)
}

func errInternalExport(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalExport, fmt.Errorf("csvExportFailed: %w", cause))
}
