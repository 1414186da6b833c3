package reconcile

import (
	"context"
	"log/slog"

	ordermodel "github.com/frahmantamala/checkout-payments/internal/core/datamodel/order"
	"github.com/frahmantamala/checkout-payments/internal/gateway"
)

// Payment method identifiers recognized by the authorizer registry.
const (
	MethodHostedCheckout  = "MONERIS_PAYMENT"
	MethodCreditCard      = "CREDIT_CARD"
	MethodGiftCertificate = "GIFT_CERTIFICATE"
)

// Authorizer settles one payment instrument against the gateway.
type Authorizer interface {
	Authorize(ctx context.Context, ord *ordermodel.Order) *AuthResult
}

// ReceiptFetcher is the slice of the gateway client the hosted
// checkout authorizer needs.
type ReceiptFetcher interface {
	Receipt(ctx context.Context, ticket string) *gateway.ReceiptResult
}

// Registry maps payment method ids to their authorizers; unknown
// methods fall through to a basic accept-and-stamp authorizer.
type Registry struct {
	byMethod map[string]Authorizer
	fallback Authorizer
}

func NewRegistry() *Registry {
	return &Registry{
		byMethod: make(map[string]Authorizer),
		fallback: &BasicAuthorizer{},
	}
}

func (r *Registry) Register(method string, a Authorizer) {
	r.byMethod[method] = a
}

func (r *Registry) Get(method string) Authorizer {
	if a, ok := r.byMethod[method]; ok {
		return a
	}
	return r.fallback
}

// BasicAuthorizer accepts the payment without a gateway round trip and
// stamps the order number as the transaction id. It backs payment
// methods settled outside the hosted checkout.
type BasicAuthorizer struct{}

func (a *BasicAuthorizer) Authorize(_ context.Context, ord *ordermodel.Order) *AuthResult {
	if ord != nil && ord.TransactionID == "" {
		ord.TransactionID = ord.OrderNo
	}
	return &AuthResult{}
}

// HostedCheckoutAuthorizer fetches the receipt for the order's ticket
// and runs it through the reconciliation engine.
type HostedCheckoutAuthorizer struct {
	gateway ReceiptFetcher
	engine  *Engine
	logger  *slog.Logger
}

func NewHostedCheckoutAuthorizer(gw ReceiptFetcher, engine *Engine, logger *slog.Logger) *HostedCheckoutAuthorizer {
	return &HostedCheckoutAuthorizer{
		gateway: gw,
		engine:  engine,
		logger:  logger,
	}
}

func (a *HostedCheckoutAuthorizer) Authorize(ctx context.Context, ord *ordermodel.Order) *AuthResult {
	if ord == nil || ord.Ticket == "" {
		return &AuthResult{Error: true, SkipOrder: true, ErrorMessage: IncompleteOrderMessage}
	}

	rr := a.gateway.Receipt(ctx, ord.Ticket)
	return a.engine.Reconcile(ctx, ord, rr)
}

// Processor drives payment settlement for a whole order. Both the
// checkout placement path and the confirmation sweep run through it.
type Processor struct {
	registry *Registry
	orders   OrderStore
	logger   *slog.Logger
}

func NewProcessor(registry *Registry, orders OrderStore, logger *slog.Logger) *Processor {
	return &Processor{
		registry: registry,
		orders:   orders,
		logger:   logger,
	}
}

// HandlePayments authorizes the order's payment instrument. A zero
// total needs no settlement. An authorization error fails the order
// unless the result is flagged skippable, in which case the order is
// left untouched for a later retry.
func (p *Processor) HandlePayments(ctx context.Context, ord *ordermodel.Order) *AuthResult {
	if ord == nil {
		return &AuthResult{Error: true, SkipOrder: true, ErrorMessage: IncompleteOrderMessage}
	}

	if ord.GrossTotal.IsZero() {
		return &AuthResult{}
	}

	if ord.PaymentMethod == "" {
		p.logger.Error("order has no payment instrument", "order_no", ord.OrderNo)
		if err := p.orders.Fail(ord); err != nil {
			p.logger.Error("failed to fail order", "error", err, "order_no", ord.OrderNo)
		}
		return &AuthResult{Error: true, ErrorMessage: AuthorizationErrorMessage, IsAuthorizationError: true}
	}

	auth := p.registry.Get(ord.PaymentMethod).Authorize(ctx, ord)

	if auth.Error {
		auth.IsAuthorizationError = true
		if auth.ErrorMessage == "" {
			auth.ErrorMessage = AuthorizationErrorMessage
		}
		if !auth.SkipOrder {
			if err := p.orders.Fail(ord); err != nil {
				p.logger.Error("failed to fail order after declined authorization",
					"error", err, "order_no", ord.OrderNo)
			}
		}
	}

	return auth
}
