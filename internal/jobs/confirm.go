package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ordermodel "github.com/frahmantamala/checkout-payments/internal/core/datamodel/order"
	"github.com/frahmantamala/checkout-payments/internal/gateway"
	"github.com/frahmantamala/checkout-payments/internal/order"
	"github.com/frahmantamala/checkout-payments/internal/reconcile"
	"github.com/frahmantamala/checkout-payments/internal/vault"
)

// PaymentHandler settles an order's payment instrument.
type PaymentHandler interface {
	HandlePayments(ctx context.Context, ord *ordermodel.Order) *reconcile.AuthResult
}

// VaultMaintainer applies the post-authorization wallet maintenance.
type VaultMaintainer interface {
	Save(ctx context.Context, draft *vault.TokenDraft, ord *ordermodel.Order) (bool, error)
	Invalidate(ctx context.Context, validity []gateway.VaultEntry, ord *ordermodel.Order) (bool, error)
}

// ConfirmSweep picks up orders whose shoppers paid on the hosted page
// but never returned to place the order, and settles them from the
// stored ticket.
type ConfirmSweep struct {
	orders        order.RepositoryAPI
	processor     PaymentHandler
	vault         VaultMaintainer
	paymentMethod string
	logger        *slog.Logger
}

func NewConfirmSweep(orders order.RepositoryAPI, processor PaymentHandler, vault VaultMaintainer, paymentMethod string, logger *slog.Logger) *ConfirmSweep {
	return &ConfirmSweep{
		orders:        orders,
		processor:     processor,
		vault:         vault,
		paymentMethod: paymentMethod,
		logger:        logger,
	}
}

// Run processes every created order older than ageMinutes that still
// holds a gateway ticket. A gateway outage aborts the whole run; any
// other failure is order-local.
func (s *ConfirmSweep) Run(ctx context.Context, ageMinutes int) Status {
	cutoff := time.Now().Add(-time.Duration(ageMinutes) * time.Minute)

	candidates, err := s.orders.FindUnconfirmed(s.paymentMethod, cutoff)
	if err != nil {
		return errorStatus("failed to query unconfirmed orders: %v", err)
	}
	if len(candidates) == 0 {
		return noMatchesStatus()
	}

	for _, ord := range candidates {
		if ord.Ticket == "" {
			continue
		}

		if err := s.processOrder(ctx, ord); err != nil {
			var fatal *FatalSweepError
			if errors.As(err, &fatal) {
				s.logger.Error("confirmation sweep aborted", "error", err, "order_no", ord.OrderNo)
				return errorStatus("%v", err)
			}
			s.logger.Error("confirmation failed", "error", err, "order_no", ord.OrderNo)
		}
	}

	return okStatus()
}

func (s *ConfirmSweep) processOrder(ctx context.Context, ord *ordermodel.Order) error {
	res := s.processor.HandlePayments(ctx, ord)

	if res.ErrorMessage == reconcile.ServiceErrorMessage {
		return &FatalSweepError{Reason: res.ErrorMessage}
	}
	if res.Error {
		return fmt.Errorf("confirmation request error: %s", res.ErrorMessage)
	}

	if err := s.place(ctx, ord, res); err != nil {
		if failErr := s.orders.Fail(ord); failErr != nil {
			s.logger.Error("failed to fail order", "error", failErr, "order_no", ord.OrderNo)
		}
		return fmt.Errorf("order placement failed: %w", err)
	}

	return nil
}

// place applies the wallet maintenance and finalizes the order. A
// purchase is settled money, so it is confirmed immediately; a pre-auth
// stays unconfirmed for the completion sweep.
func (s *ConfirmSweep) place(ctx context.Context, ord *ordermodel.Order, res *reconcile.AuthResult) error {
	if _, err := s.vault.Invalidate(ctx, res.VaultData, ord); err != nil {
		return err
	}
	if _, err := s.vault.Save(ctx, res.Token, ord); err != nil {
		return err
	}

	if ord.TransactionCode == gateway.PurchaseTransactionCode {
		ord.ConfirmationStatus = ordermodel.ConfirmationStatusConfirmed
	}
	return s.orders.Place(ord)
}
