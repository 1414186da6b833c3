package checkout

import (
	"strconv"

	ordermodel "github.com/frahmantamala/checkout-payments/internal/core/datamodel/order"
	"github.com/frahmantamala/checkout-payments/internal/gateway"
)

const (
	FailReasonCancelled = "Cancelled Transaction"
	FailReasonDeclined  = "Declined Transaction"
	FailReasonTimeout   = "Transaction Timeout"
)

// Response/ISO code pairs the gateway reports for an expired hosted
// page.
const (
	timeoutResponseCode = "113"
	timeoutISOCode1     = "68"
	timeoutISOCode2     = "96"
)

// FailReason renders a shopper-facing reason for a failed transaction,
// or an empty string when the order did not fail. A failed order with
// no recorded codes means the receipt never arrived, which is also a
// timeout.
func FailReason(ord *ordermodel.Order) string {
	if ord == nil {
		return ""
	}

	if ord.CancelledOrder {
		return FailReasonCancelled
	}

	timedOut := ord.ResponseCode == timeoutResponseCode &&
		(ord.ISOResponseCode == timeoutISOCode1 || ord.ISOResponseCode == timeoutISOCode2)
	if timedOut || (ord.ResponseCode == "" && ord.ISOResponseCode == "" && ord.Status == ordermodel.StatusFailed) {
		return FailReasonTimeout
	}

	if code, err := strconv.Atoi(ord.ResponseCode); err == nil && code >= gateway.SuccessThreshold {
		return FailReasonDeclined
	}

	return ""
}
