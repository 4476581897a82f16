package aggregators

import (
	"fmt"

	"order-metrics/internal/shared/svcerrors"
)

const (
	codeInvalidOrderEvent         = "AGG_1000"
	codeUnavailableBucketStore    = "AGG_2000"
	codeInternalDeltaBuildFailed  = "AGG_9000"
	codeInternalSnapshotRecompute = "AGG_9001"
)

// errInvalidOrderEvent returns an error when an event payload can never be aggregated.
func errInvalidOrderEvent(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeInvalidOrderEvent, "malformed order event", cause)
}

// errUnavailableBucketStore returns an error when the bucket store rejects a write. The event may be retried.
func errUnavailableBucketStore(cause error) *svcerrors.ServiceError {
	return svcerrors.NewUnavailableError(codeUnavailableBucketStore, "bucket store unavailable", fmt.Errorf("bucketStoreApplyFailed: %w", cause))
}

func errInternalDeltaBuildFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalDeltaBuildFailed, fmt.Errorf("deltaBuildFailed: %w", cause))
}

func errInternalSnapshotRecompute(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalSnapshotRecompute, fmt.Errorf("snapshotRecomputeFailed: %w", cause))
}
