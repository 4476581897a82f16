package analytics

import (
	"fmt"

	"order-metrics/internal/shared/svcerrors"
)

const (
	codeUnavailableBucketStore = "ANA_2000"
	codeUnavailableOrderStore  = "ANA_2001"
	codeOrderStoreTimeout      = "ANA_2002"
)

func errUnavailableBucketStore(cause error) *svcerrors.ServiceError {
	return svcerrors.NewUnavailableError(codeUnavailableBucketStore, "bucket store unavailable", fmt.Errorf("bucketReadFailed: %w", cause))
}

// errUnavailableOrderStore distinguishes a query that ran out of time from one that failed outright.
func errUnavailableOrderStore(cause error, timedOut bool) *svcerrors.ServiceError {
	if timedOut {
		return svcerrors.NewUnavailableError(codeOrderStoreTimeout, "order store query timed out", fmt.Errorf("orderStoreTimeout: %w", cause))
	}
	return svcerrors.NewUnavailableError(codeUnavailableOrderStore, "order store unavailable", fmt.Errorf("orderStoreQueryFailed: %w", cause))
}
