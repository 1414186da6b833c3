package checkout

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/checkout-payments/internal"
	ordermodel "github.com/frahmantamala/checkout-payments/internal/core/datamodel/order"
	"github.com/frahmantamala/checkout-payments/internal/core/events"
	"github.com/frahmantamala/checkout-payments/internal/gateway"
	"github.com/frahmantamala/checkout-payments/internal/order"
	"github.com/frahmantamala/checkout-payments/internal/reconcile"
	"github.com/frahmantamala/checkout-payments/internal/vault"
	"github.com/google/uuid"
)

// duplicateOrderMarker is the gateway's error text when a preload
// reuses an already-seen order number.
const duplicateOrderMarker = "Duplicate orderId"

// GatewayAPI is the slice of the gateway client the checkout flow uses.
type GatewayAPI interface {
	Preload(ctx context.Context, params gateway.PreloadParams) *gateway.PreloadResult
}

// WalletAPI lists saved tokens for preload and applies the post-
// authorization wallet maintenance.
type WalletAPI interface {
	List(ctx context.Context, customerNo string) ([]gateway.TokenHint, error)
	Save(ctx context.Context, draft *vault.TokenDraft, ord *ordermodel.Order) (bool, error)
	Invalidate(ctx context.Context, validity []gateway.VaultEntry, ord *ordermodel.Order) (bool, error)
}

// PaymentProcessor settles the order's payment instrument.
type PaymentProcessor interface {
	HandlePayments(ctx context.Context, ord *ordermodel.Order) *reconcile.AuthResult
}

type Service struct {
	gateway       GatewayAPI
	orders        order.RepositoryAPI
	wallet        WalletAPI
	processor     PaymentProcessor
	sessions      *SessionSigner
	bus           *events.EventBus
	paymentMethod string
	logger        *slog.Logger
}

func NewService(
	gw GatewayAPI,
	orders order.RepositoryAPI,
	wallet WalletAPI,
	processor PaymentProcessor,
	sessions *SessionSigner,
	bus *events.EventBus,
	paymentMethod string,
	logger *slog.Logger,
) *Service {
	return &Service{
		gateway:       gw,
		orders:        orders,
		wallet:        wallet,
		processor:     processor,
		sessions:      sessions,
		bus:           bus,
		paymentMethod: paymentMethod,
		logger:        logger,
	}
}

// GetTicket reserves an order number, opens a hosted payment session
// for the cart total and binds both into a signed checkout session.
// Authenticated shoppers get their vaulted cards offered on the hosted
// page.
func (s *Service) GetTicket(ctx context.Context, req *TicketRequest) (*TicketResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	orderNo, err := s.orders.AllocateOrderNo()
	if err != nil {
		s.logger.Error("failed to allocate order number", "error", err)
		return nil, internal.NewInternalError(internal.TechnicalErrorMessage, err)
	}

	params := gateway.PreloadParams{
		OrderNo:         orderNo,
		TxnTotal:        req.Total().StringFixed(2),
		ContactDetails:  req.Contact.toGateway(),
		ShippingDetails: req.ShippingAddress.toGateway(),
		BillingDetails:  req.BillingAddress.toGateway(),
	}

	customer, _ := internal.CustomerFromContext(ctx)
	if customer.Authenticated && customer.CustomerNo != "" {
		hints, err := s.wallet.List(ctx, customer.CustomerNo)
		if err != nil {
			s.logger.Error("failed to list payment tokens", "error", err, "customer_no", customer.CustomerNo)
		} else {
			params.Tokens = hints
		}
		params.CustID = customer.CustomerNo
	}

	result := s.gateway.Preload(ctx, params)

	if result.Response != nil && result.Response.Error != nil &&
		result.Response.Error.OrderNo == duplicateOrderMarker {
		s.logger.Error("duplicate order id on preload", "order_no", orderNo)
	}

	if !result.OK || result.Response == nil || result.Response.Success != "true" || result.Response.Ticket == "" {
		return nil, internal.ErrGatewayUnavailable
	}

	session, err := s.sessions.Sign(&SessionClaims{
		OrderNo:    orderNo,
		Ticket:     result.Response.Ticket,
		CustomerNo: customer.CustomerNo,
		Registered: customer.Registered,
	})
	if err != nil {
		s.logger.Error("failed to sign checkout session", "error", err, "order_no", orderNo)
		return nil, internal.NewInternalError(internal.TechnicalErrorMessage, err)
	}

	return &TicketResponse{
		Ticket:          result.Response.Ticket,
		OrderNo:         orderNo,
		CheckoutSession: session,
	}, nil
}

// SubmitPayment creates the order for the session's reserved order
// number and stamps the hosted payment method and ticket onto it. The
// returned session additionally carries the order token required by
// the follow-up calls.
func (s *Service) SubmitPayment(ctx context.Context, req *SubmitPaymentRequest) (*SubmitPaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.sessions.Validate(req.CheckoutSession)
	if err != nil {
		return nil, err
	}
	if claims.Ticket == "" {
		return nil, internal.ErrMissingPaymentInstrument
	}

	customer, _ := internal.CustomerFromContext(ctx)

	ord := &ordermodel.Order{
		OrderNo:            claims.OrderNo,
		OrderToken:         uuid.NewString(),
		CustomerNo:         claims.CustomerNo,
		CustomerEmail:      req.Email,
		RegisteredCustomer: claims.Registered || customer.Registered,
		CurrencyCode:       req.CurrencyCode,
		GrossTotal:         req.Total(),
		Status:             ordermodel.StatusCreated,
		PaymentMethod:      s.paymentMethod,
		Ticket:             claims.Ticket,
	}

	if err := s.orders.Create(ord); err != nil {
		s.logger.Error("failed to create order", "error", err, "order_no", claims.OrderNo)
		return nil, internal.NewInternalError(internal.TechnicalErrorMessage, err)
	}

	claims.OrderToken = ord.OrderToken
	session, err := s.sessions.Sign(claims)
	if err != nil {
		s.logger.Error("failed to re-sign checkout session", "error", err, "order_no", ord.OrderNo)
		return nil, internal.NewInternalError(internal.TechnicalErrorMessage, err)
	}

	s.logger.Info("order created for hosted payment", "order_no", ord.OrderNo)
	return &SubmitPaymentResponse{
		OrderNo:         ord.OrderNo,
		CheckoutSession: session,
	}, nil
}

// PlaceOrder settles the session's order against the gateway and
// finalizes it. A pre-auth order stays unconfirmed for the completion
// sweep; gateway failures surface as a generic technical error with
// the decline detail kept in the logs.
func (s *Service) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.sessions.Validate(req.CheckoutSession)
	if err != nil {
		return nil, err
	}

	ord, err := s.orders.GetByNumberAndToken(claims.OrderNo, claims.OrderToken)
	if err != nil {
		return nil, internal.ErrOrderNotFound
	}

	auth := s.processor.HandlePayments(ctx, ord)
	if auth.Error {
		s.logger.Error("payment authorization failed",
			"order_no", ord.OrderNo,
			"reason", auth.ErrorMessage,
			"skip_order", auth.SkipOrder)
		if auth.ErrorMessage == reconcile.ServiceErrorMessage {
			return nil, internal.ErrGatewayUnavailable
		}
		if s.bus != nil {
			s.bus.Publish(ctx, events.NewPaymentDeclinedEvent(ord.OrderNo, auth.ErrorMessage))
		}
		return nil, internal.NewExternalError(internal.TechnicalErrorMessage, internal.ErrCodeTransactionDeclined)
	}

	if err := s.finalize(ctx, ord, auth); err != nil {
		s.logger.Error("order placement failed", "error", err, "order_no", ord.OrderNo)
		if failErr := s.orders.Fail(ord); failErr != nil {
			s.logger.Error("failed to fail order", "error", failErr, "order_no", ord.OrderNo)
		}
		return nil, internal.NewInternalError(internal.TechnicalErrorMessage, err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.NewOrderPlacedEvent(
			ord.OrderNo,
			ord.CustomerEmail,
			auth.SettledAmount.StringFixed(2),
			ord.CurrencyCode))
	}

	s.logger.Info("order placed", "order_no", ord.OrderNo)
	return &PlaceOrderResponse{
		OrderNo:     ord.OrderNo,
		OrderToken:  ord.OrderToken,
		ContinueURL: "/order/confirm",
	}, nil
}

func (s *Service) finalize(ctx context.Context, ord *ordermodel.Order, auth *reconcile.AuthResult) error {
	if _, err := s.wallet.Invalidate(ctx, auth.VaultData, ord); err != nil {
		return err
	}
	if _, err := s.wallet.Save(ctx, auth.Token, ord); err != nil {
		return err
	}

	// An authorization-only transaction is captured later by the
	// completion sweep.
	if ord.TransactionCode == gateway.PreAuthTransactionCode {
		ord.ConfirmationStatus = ordermodel.ConfirmationStatusNotConfirmed
	}

	return s.orders.Place(ord)
}

// CancelOrder handles the shopper abandoning the hosted page: the
// order fails with the cancellation recorded as a first-class state,
// not a timeout.
func (s *Service) CancelOrder(ctx context.Context, req *CancelOrderRequest) (*CancelOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.sessions.Validate(req.CheckoutSession)
	if err != nil {
		return nil, err
	}

	ord, err := s.orders.GetByNumberAndToken(claims.OrderNo, claims.OrderToken)
	if err != nil {
		return nil, internal.ErrOrderNotFound
	}

	ord.CancelledOrder = true
	if err := s.orders.Fail(ord); err != nil {
		s.logger.Error("failed to fail cancelled order", "error", err, "order_no", ord.OrderNo)
		return nil, internal.NewInternalError(internal.TechnicalErrorMessage, err)
	}

	s.logger.Info("order cancelled by shopper", "order_no", ord.OrderNo)
	return &CancelOrderResponse{
		OrderNo:   ord.OrderNo,
		Cancelled: true,
	}, nil
}

// FailReasonFor returns the shopper-facing failure reason for an order
// identified by number and token.
func (s *Service) FailReasonFor(ctx context.Context, orderNo, orderToken string) (*FailReasonResponse, error) {
	ord, err := s.orders.GetByNumberAndToken(orderNo, orderToken)
	if err != nil {
		return nil, internal.ErrOrderNotFound
	}

	return &FailReasonResponse{
		OrderNo:    ord.OrderNo,
		FailReason: FailReason(ord),
	}, nil
}
