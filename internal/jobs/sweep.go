package jobs

import (
	"context"
	"fmt"

	"github.com/frahmantamala/checkout-payments/internal/gateway"
)

type StatusCode string

const (
	StatusOK        StatusCode = "OK"
	StatusNoMatches StatusCode = "OK_NO_MATCHES"
	StatusError     StatusCode = "ERROR"
)

// Status is the aggregate outcome of one sweep run.
type Status struct {
	Code    StatusCode
	Message string
}

func okStatus() Status {
	return Status{Code: StatusOK}
}

func noMatchesStatus() Status {
	return Status{Code: StatusNoMatches, Message: "No Orders found"}
}

func errorStatus(format string, args ...interface{}) Status {
	return Status{Code: StatusError, Message: fmt.Sprintf(format, args...)}
}

// FatalSweepError aborts the remaining batch. It marks conditions that
// likely affect every order equally, such as the gateway being down,
// where silently skipping order after order would only hide the outage.
type FatalSweepError struct {
	Reason string
}

func (e *FatalSweepError) Error() string {
	return "sweep aborted: " + e.Reason
}

// FinancialCaller is the slice of the gateway client the completion and
// refund sweeps use.
type FinancialCaller interface {
	Completion(ctx context.Context, txnNumber, orderID, amount string) *gateway.FinancialResult
	Void(ctx context.Context, txnNumber, orderID, amount string) *gateway.FinancialResult
	Refund(ctx context.Context, txnNumber, orderID, amount string) *gateway.FinancialResult
}
