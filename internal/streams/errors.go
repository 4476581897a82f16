package streams

import (
	"fmt"

	"order-metrics/internal/shared/svcerrors"
)

const (
	codeUnavailableEventLog   = "STR_2000"
	codeAggregateRetriesSpent = "STR_2001"
	codeInternalCommitFailed  = "STR_9000"
)

func errUnavailableEventLog(cause error) *svcerrors.ServiceError {
	return svcerrors.NewUnavailableError(codeUnavailableEventLog, "event log unavailable", fmt.Errorf("eventLogWriteFailed: %w", cause))
}

// errAggregateRetriesSpent ends a subscription so the message is redelivered after a restart.
func errAggregateRetriesSpent(cause error) *svcerrors.ServiceError {
	return svcerrors.NewUnavailableError(codeAggregateRetriesSpent, "order event retries exhausted", cause)
}

func errInternalCommitFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalCommitFailed, fmt.Errorf("offsetCommitFailed: %w", cause))
}
