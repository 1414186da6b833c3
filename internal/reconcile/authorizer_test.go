package reconcile_test

import (
	"context"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	ordermodel "github.com/frahmantamala/checkout-payments/internal/core/datamodel/order"
	"github.com/frahmantamala/checkout-payments/internal/gateway"
	"github.com/frahmantamala/checkout-payments/internal/reconcile"
)

type mockReceiptFetcher struct {
	result  *gateway.ReceiptResult
	tickets []string
}

func (m *mockReceiptFetcher) Receipt(_ context.Context, ticket string) *gateway.ReceiptResult {
	m.tickets = append(m.tickets, ticket)
	return m.result
}

type stubAuthorizer struct {
	result *reconcile.AuthResult
}

func (a *stubAuthorizer) Authorize(_ context.Context, _ *ordermodel.Order) *reconcile.AuthResult {
	return a.result
}

var _ = Describe("Registry", func() {
	It("should return the registered authorizer for a known method", func() {
		registry := reconcile.NewRegistry()
		hosted := &stubAuthorizer{result: &reconcile.AuthResult{}}
		registry.Register(reconcile.MethodHostedCheckout, hosted)

		Expect(registry.Get(reconcile.MethodHostedCheckout)).To(BeIdenticalTo(hosted))
	})

	It("should fall back to the basic authorizer for unknown methods", func() {
		registry := reconcile.NewRegistry()

		ord := &ordermodel.Order{OrderNo: "00000042"}
		res := registry.Get("SOMETHING_ELSE").Authorize(context.Background(), ord)

		Expect(res.Error).To(BeFalse())
		Expect(ord.TransactionID).To(Equal("00000042"))
	})
})

var _ = Describe("HostedCheckoutAuthorizer", func() {
	var (
		fetcher    *mockReceiptFetcher
		store      *mockOrderStore
		wallet     *mockWallet
		authorizer *reconcile.HostedCheckoutAuthorizer
		logger     *slog.Logger
	)

	BeforeEach(func() {
		fetcher = &mockReceiptFetcher{}
		store = &mockOrderStore{}
		wallet = &mockWallet{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		engine := reconcile.NewEngine(store, wallet, logger)
		authorizer = reconcile.NewHostedCheckoutAuthorizer(fetcher, engine, logger)
	})

	It("should skip an order without a ticket as incomplete", func() {
		ord := &ordermodel.Order{OrderNo: "00000042"}

		res := authorizer.Authorize(context.Background(), ord)

		Expect(res.Error).To(BeTrue())
		Expect(res.SkipOrder).To(BeTrue())
		Expect(res.ErrorMessage).To(Equal(reconcile.IncompleteOrderMessage))
		Expect(fetcher.tickets).To(BeEmpty())
	})

	It("should fetch the receipt for the order's ticket and reconcile it", func() {
		fetcher.result = &gateway.ReceiptResult{
			OK: true,
			Response: &gateway.ReceiptPayload{
				Receipt: &gateway.Receipt{
					Result: gateway.ResultAccepted,
					CC:     acceptedCardReceipt("027"),
				},
			},
		}
		ord := &ordermodel.Order{
			OrderNo:    "00000042",
			Ticket:     "ticket-abc",
			GrossTotal: decimal.RequireFromString("99.95"),
		}

		res := authorizer.Authorize(context.Background(), ord)

		Expect(fetcher.tickets).To(Equal([]string{"ticket-abc"}))
		Expect(res.Error).To(BeFalse())
		Expect(ord.PaymentStatus).To(Equal(ordermodel.PaymentStatusPaid))
	})
})

var _ = Describe("Processor", func() {
	var (
		registry  *reconcile.Registry
		store     *mockOrderStore
		processor *reconcile.Processor
		logger    *slog.Logger
	)

	BeforeEach(func() {
		registry = reconcile.NewRegistry()
		store = &mockOrderStore{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		processor = reconcile.NewProcessor(registry, store, logger)
	})

	It("should settle nothing for a zero total", func() {
		ord := &ordermodel.Order{OrderNo: "00000042"}

		res := processor.HandlePayments(context.Background(), ord)

		Expect(res.Error).To(BeFalse())
		Expect(store.failed).To(BeEmpty())
	})

	It("should fail an order without a payment instrument", func() {
		ord := &ordermodel.Order{
			OrderNo:    "00000042",
			GrossTotal: decimal.RequireFromString("10.00"),
		}

		res := processor.HandlePayments(context.Background(), ord)

		Expect(res.Error).To(BeTrue())
		Expect(res.IsAuthorizationError).To(BeTrue())
		Expect(store.failed).To(HaveLen(1))
	})

	It("should fail the order on a declined authorization", func() {
		registry.Register(reconcile.MethodHostedCheckout, &stubAuthorizer{
			result: &reconcile.AuthResult{Error: true, ErrorMessage: reconcile.DeclinedTransactionMessage},
		})
		ord := &ordermodel.Order{
			OrderNo:       "00000042",
			GrossTotal:    decimal.RequireFromString("10.00"),
			PaymentMethod: reconcile.MethodHostedCheckout,
		}

		res := processor.HandlePayments(context.Background(), ord)

		Expect(res.Error).To(BeTrue())
		Expect(res.IsAuthorizationError).To(BeTrue())
		Expect(res.ErrorMessage).To(Equal(reconcile.DeclinedTransactionMessage))
		Expect(store.failed).To(HaveLen(1))
	})

	It("should leave the order untouched on a skippable failure", func() {
		registry.Register(reconcile.MethodHostedCheckout, &stubAuthorizer{
			result: &reconcile.AuthResult{Error: true, SkipOrder: true, ErrorMessage: reconcile.ServiceErrorMessage},
		})
		ord := &ordermodel.Order{
			OrderNo:       "00000042",
			GrossTotal:    decimal.RequireFromString("10.00"),
			PaymentMethod: reconcile.MethodHostedCheckout,
		}

		res := processor.HandlePayments(context.Background(), ord)

		Expect(res.Error).To(BeTrue())
		Expect(res.SkipOrder).To(BeTrue())
		Expect(store.failed).To(BeEmpty())
	})

	It("should default a blank failure message to a generic authorization error", func() {
		registry.Register(reconcile.MethodHostedCheckout, &stubAuthorizer{
			result: &reconcile.AuthResult{Error: true},
		})
		ord := &ordermodel.Order{
			OrderNo:       "00000042",
			GrossTotal:    decimal.RequireFromString("10.00"),
			PaymentMethod: reconcile.MethodHostedCheckout,
		}

		res := processor.HandlePayments(context.Background(), ord)

		Expect(res.ErrorMessage).To(Equal(reconcile.AuthorizationErrorMessage))
	})
})
