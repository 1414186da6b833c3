package cmd

import (
	"log/slog"

	"github.com/frahmantamala/checkout-payments/internal"
	"github.com/frahmantamala/checkout-payments/internal/checkout"
	"github.com/frahmantamala/checkout-payments/internal/core/events"
	"github.com/frahmantamala/checkout-payments/internal/gateway"
	"github.com/frahmantamala/checkout-payments/internal/jobs"
	"github.com/frahmantamala/checkout-payments/internal/order"
	orderpg "github.com/frahmantamala/checkout-payments/internal/order/postgres"
	"github.com/frahmantamala/checkout-payments/internal/reconcile"
	"github.com/frahmantamala/checkout-payments/internal/vault"
	vaultpg "github.com/frahmantamala/checkout-payments/internal/vault/postgres"
	"gorm.io/gorm"
)

// serviceStack wires the reconciliation core once so the HTTP server
// and the batch job commands share the same construction.
type serviceStack struct {
	Gateway         *gateway.Client
	Orders          order.RepositoryAPI
	Vault           *vault.Service
	Processor       *reconcile.Processor
	Bus             *events.EventBus
	CheckoutService *checkout.Service
	ConfirmSweep    *jobs.ConfirmSweep
	CompletionSweep *jobs.CompletionSweep
	RefundSweep     *jobs.RefundSweep
}

func buildServiceStack(cfg *internal.Config, gormDB *gorm.DB, lg *slog.Logger) *serviceStack {
	orderRepo := orderpg.NewOrderRepository(gormDB)
	tokenRepo := vaultpg.NewTokenRepository(gormDB)
	vaultSvc := vault.NewService(tokenRepo, lg)

	gw := gateway.NewClient(gateway.Config{
		BaseURL:           cfg.Gateway.BaseURL,
		StoreID:           cfg.Gateway.StoreID,
		APIToken:          cfg.Gateway.APIToken,
		CheckoutID:        cfg.Gateway.CheckoutID,
		Environment:       cfg.Gateway.Environment,
		DynamicDescriptor: cfg.Gateway.DynamicDescriptor,
		Language:          cfg.Gateway.Language,
		AskCVV:            cfg.Gateway.AskCVV,
		Timeout:           cfg.Gateway.Timeout,
	}, lg)

	engine := reconcile.NewEngine(orderRepo, vaultSvc, lg)

	registry := reconcile.NewRegistry()
	registry.Register(reconcile.MethodHostedCheckout, reconcile.NewHostedCheckoutAuthorizer(gw, engine, lg))
	processor := reconcile.NewProcessor(registry, orderRepo, lg)

	bus := events.NewEventBus(lg)
	subscribeOrderEvents(bus, lg)

	signer := checkout.NewSessionSigner(cfg.Checkout.SessionSecret, cfg.Checkout.SessionDuration)
	checkoutSvc := checkout.NewService(gw, orderRepo, vaultSvc, processor, signer, bus, cfg.Checkout.PaymentMethodID, lg)

	return &serviceStack{
		Gateway:         gw,
		Orders:          orderRepo,
		Vault:           vaultSvc,
		Processor:       processor,
		Bus:             bus,
		CheckoutService: checkoutSvc,
		ConfirmSweep:    jobs.NewConfirmSweep(orderRepo, processor, vaultSvc, cfg.Checkout.PaymentMethodID, lg),
		CompletionSweep: jobs.NewCompletionSweep(orderRepo, gw, cfg.Gateway.Environment, lg),
		RefundSweep:     jobs.NewRefundSweep(orderRepo, gw, bus, cfg.Gateway.Environment, lg),
	}
}
