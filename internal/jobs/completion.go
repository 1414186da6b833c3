package jobs

import (
	"context"
	"errors"
	"log/slog"

	ordermodel "github.com/frahmantamala/checkout-payments/internal/core/datamodel/order"
	"github.com/frahmantamala/checkout-payments/internal/order"
)

// CompletionSweep captures shipped pre-auth orders that were never
// completed: it sends a completion call for the authorized amount and
// either confirms the order or cancels it on decline.
type CompletionSweep struct {
	orders      order.RepositoryAPI
	gateway     FinancialCaller
	environment string
	logger      *slog.Logger
}

func NewCompletionSweep(orders order.RepositoryAPI, gw FinancialCaller, environment string, logger *slog.Logger) *CompletionSweep {
	return &CompletionSweep{
		orders:      orders,
		gateway:     gw,
		environment: environment,
		logger:      logger,
	}
}

func (s *CompletionSweep) Run(ctx context.Context) Status {
	candidates, err := s.orders.FindPreAuthForCompletion()
	if err != nil {
		return errorStatus("failed to query pre-auth orders: %v", err)
	}
	if len(candidates) == 0 {
		return noMatchesStatus()
	}

	for _, ord := range candidates {
		if err := s.processOrder(ctx, ord); err != nil {
			var fatal *FatalSweepError
			if errors.As(err, &fatal) {
				s.logger.Error("completion sweep aborted", "error", err, "order_no", ord.OrderNo)
				return errorStatus("%v", err)
			}
			s.logger.Error("completion failed", "error", err, "order_no", ord.OrderNo)
		}
	}

	return okStatus()
}

func (s *CompletionSweep) processOrder(ctx context.Context, ord *ordermodel.Order) error {
	amount := ord.AuthorizedAmount.StringFixed(2)
	result := s.gateway.Completion(ctx, transactionNumber(ord, s.environment), ord.OrderNo, amount)

	if !result.OK {
		if result.UnavailableReason != "" {
			return &FatalSweepError{Reason: result.UnavailableReason}
		}
		s.logger.Error("completion request error", "order_no", ord.OrderNo)
	}

	response := result.Response

	if response != nil && response.Approved() {
		ord.ConfirmationStatus = ordermodel.ConfirmationStatusConfirmed
		ord.PaymentStatus = ordermodel.PaymentStatusPaid
		ord.TransactionID = response.TxnNumber
		ord.TransactionNo = response.TxnNumber
		if err := s.orders.Save(ord); err != nil {
			return err
		}
		return s.orders.AddNote(ord.OrderNo, "Pre-Auth Completion request is APPROVED.", response.Message)
	}

	message := ""
	if response != nil {
		message = response.Message
	}
	if err := s.orders.AddNote(ord.OrderNo, "Completion request is DECLINED. Reason: ", message); err != nil {
		return err
	}
	s.logger.Error("order capture failed", "order_no", ord.OrderNo)
	return s.orders.Cancel(ord)
}

// transactionNumber returns the gateway transaction number for
// follow-up financial calls. QA instances echo synthetic transaction
// ids, so the raw receipt transaction number is used there instead.
func transactionNumber(ord *ordermodel.Order, environment string) string {
	if environment == "qa" {
		return ord.TransactionNo
	}
	return ord.TransactionID
}
