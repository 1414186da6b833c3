package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	ordermodel "github.com/frahmantamala/checkout-payments/internal/core/datamodel/order"
	"github.com/frahmantamala/checkout-payments/internal/core/events"
	"github.com/frahmantamala/checkout-payments/internal/gateway"
	"github.com/frahmantamala/checkout-payments/internal/order"
)

// RefundSweep returns money for cancelled orders whose refund was never
// sent. A pre-auth that was never captured is closed with a zero-amount
// completion instead of moving money; everything else is voided, with a
// full refund as fallback when the void itself is declined.
type RefundSweep struct {
	orders      order.RepositoryAPI
	gateway     FinancialCaller
	bus         *events.EventBus
	environment string
	logger      *slog.Logger
}

func NewRefundSweep(orders order.RepositoryAPI, gw FinancialCaller, bus *events.EventBus, environment string, logger *slog.Logger) *RefundSweep {
	return &RefundSweep{
		orders:      orders,
		gateway:     gw,
		bus:         bus,
		environment: environment,
		logger:      logger,
	}
}

func (s *RefundSweep) publishOutcome(ctx context.Context, ord *ordermodel.Order, amount, kind string, success bool) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.NewRefundProcessedEvent(ord.OrderNo, amount, kind, success))
}

func (s *RefundSweep) Run(ctx context.Context) Status {
	candidates, err := s.orders.FindCancelledForRefund()
	if err != nil {
		return errorStatus("failed to query refund candidates: %v", err)
	}
	if len(candidates) == 0 {
		return noMatchesStatus()
	}

	for _, ord := range candidates {
		if err := s.processOrder(ctx, ord); err != nil {
			var fatal *FatalSweepError
			if errors.As(err, &fatal) {
				s.logger.Error("refund sweep aborted", "error", err, "order_no", ord.OrderNo)
				return errorStatus("%v", err)
			}
			s.logger.Error("refund failed", "error", err, "order_no", ord.OrderNo)
		}
	}

	return okStatus()
}

func (s *RefundSweep) processOrder(ctx context.Context, ord *ordermodel.Order) error {
	txnNumber := transactionNumber(ord, s.environment)

	if ord.TransactionCode == gateway.PreAuthTransactionCode &&
		ord.PaymentStatus == ordermodel.PaymentStatusNotPaid {
		return s.zeroAmountCompletion(ctx, ord, txnNumber)
	}
	return s.voidTransaction(ctx, ord, txnNumber)
}

// zeroAmountCompletion closes an uncaptured authorization without
// moving money.
func (s *RefundSweep) zeroAmountCompletion(ctx context.Context, ord *ordermodel.Order, txnNumber string) error {
	result := s.gateway.Completion(ctx, txnNumber, ord.OrderNo, gateway.ZeroAmount)

	if !result.OK {
		if result.UnavailableReason != "" {
			return &FatalSweepError{Reason: result.UnavailableReason}
		}
		s.logger.Error("zero amount completion request error", "order_no", ord.OrderNo)
	}

	response := result.Response

	if response != nil && response.Approved() {
		ord.ConfirmationStatus = ordermodel.ConfirmationStatusConfirmed
		ord.PaymentStatus = ordermodel.PaymentStatusPaid
		ord.TransactionID = response.TxnNumber
		ord.TransactionNo = response.TxnNumber
		ord.RefundStatus = ordermodel.RefundSuccess
		if err := s.orders.Save(ord); err != nil {
			return err
		}
		s.publishOutcome(ctx, ord, gateway.ZeroAmount, "zero_amount_completion", true)
		return s.orders.AddNote(ord.OrderNo, "Zero amount Completion request is APPROVED.", response.Message)
	}

	message := ""
	if response != nil {
		message = response.Message
	}
	if err := s.orders.AddNote(ord.OrderNo, "Zero amount Completion request is DECLINED. Reason: ", message); err != nil {
		return err
	}
	s.logger.Error("zero amount capture failed", "order_no", ord.OrderNo)
	ord.RefundStatus = ordermodel.RefundDeclined
	s.publishOutcome(ctx, ord, gateway.ZeroAmount, "zero_amount_completion", false)
	return s.orders.Save(ord)
}

func (s *RefundSweep) voidTransaction(ctx context.Context, ord *ordermodel.Order, txnNumber string) error {
	amount := ord.AuthorizedAmount.StringFixed(2)
	result := s.gateway.Void(ctx, txnNumber, ord.OrderNo, amount)

	if !result.OK {
		if result.UnavailableReason != "" {
			return &FatalSweepError{Reason: result.UnavailableReason}
		}
		s.logger.Error("void request error", "order_no", ord.OrderNo)
	}

	response := result.Response

	if response != nil && response.Approved() {
		ord.RefundStatus = ordermodel.RefundSuccess
		if err := s.orders.Save(ord); err != nil {
			return err
		}
		s.publishOutcome(ctx, ord, amount, "void", true)
		return s.orders.AddNote(ord.OrderNo, "Void request is APPROVED. Void info: ", marshalResponse(response))
	}

	message := ""
	if response != nil {
		message = response.Message
	}
	if err := s.orders.AddNote(ord.OrderNo, "Void request is DECLINED. Reason: ", message); err != nil {
		return err
	}

	// The void window has passed; fall back to refunding the same
	// amount the void was attempted for.
	return s.refundTransaction(ctx, ord, txnNumber, amount)
}

func (s *RefundSweep) refundTransaction(ctx context.Context, ord *ordermodel.Order, txnNumber, amount string) error {
	result := s.gateway.Refund(ctx, txnNumber, ord.OrderNo, amount)

	if !result.OK {
		if result.UnavailableReason != "" {
			return &FatalSweepError{Reason: result.UnavailableReason}
		}
		s.logger.Error("refund request error", "order_no", ord.OrderNo)
	}

	response := result.Response

	if response != nil && response.Approved() {
		ord.RefundStatus = ordermodel.RefundSuccess
		if err := s.orders.Save(ord); err != nil {
			return err
		}
		s.publishOutcome(ctx, ord, amount, "refund", true)
		return s.orders.AddNote(ord.OrderNo, "Refund request is APPROVED. Refund info: ", marshalResponse(response))
	}

	message := ""
	if response != nil {
		message = response.Message
	}
	if err := s.orders.AddNote(ord.OrderNo, "Refund request is DECLINED. Reason: ", message); err != nil {
		return err
	}
	s.logger.Error("order refund failed", "order_no", ord.OrderNo)
	ord.RefundStatus = ordermodel.RefundDeclined
	s.publishOutcome(ctx, ord, amount, "refund", false)
	return s.orders.Save(ord)
}

func marshalResponse(response *gateway.FinancialResponse) string {
	raw, err := json.Marshal(response)
	if err != nil {
		return ""
	}
	return string(raw)
}
