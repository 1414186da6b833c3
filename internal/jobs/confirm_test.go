package jobs_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	ordermodel "github.com/frahmantamala/checkout-payments/internal/core/datamodel/order"
	"github.com/frahmantamala/checkout-payments/internal/gateway"
	"github.com/frahmantamala/checkout-payments/internal/jobs"
	"github.com/frahmantamala/checkout-payments/internal/reconcile"
	"github.com/frahmantamala/checkout-payments/internal/vault"
)

var _ = Describe("ConfirmSweep", func() {
	var (
		repo      *mockOrderRepository
		processor *mockPaymentHandler
		wallet    *mockVaultMaintainer
		sweep     *jobs.ConfirmSweep
		logger    *slog.Logger
	)

	newOrder := func(orderNo, ticket string) *ordermodel.Order {
		return &ordermodel.Order{
			OrderNo:       orderNo,
			Ticket:        ticket,
			Status:        ordermodel.StatusCreated,
			PaymentMethod: reconcile.MethodHostedCheckout,
			GrossTotal:    decimal.RequireFromString("99.95"),
		}
	}

	BeforeEach(func() {
		repo = &mockOrderRepository{}
		processor = &mockPaymentHandler{results: make(map[string]*reconcile.AuthResult)}
		wallet = &mockVaultMaintainer{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		sweep = jobs.NewConfirmSweep(repo, processor, wallet, reconcile.MethodHostedCheckout, logger)
	})

	It("should report no matches when there is nothing to confirm", func() {
		status := sweep.Run(context.Background(), 60)

		Expect(status.Code).To(Equal(jobs.StatusNoMatches))
		Expect(status.Message).To(Equal("No Orders found"))
	})

	It("should report an error when the candidate query fails", func() {
		repo.findError = errors.New("connection lost")

		status := sweep.Run(context.Background(), 60)

		Expect(status.Code).To(Equal(jobs.StatusError))
		Expect(status.Message).To(ContainSubstring("connection lost"))
	})

	It("should place a settled purchase and confirm it", func() {
		ord := newOrder("00000042", "ticket-abc")
		ord.TransactionCode = gateway.PurchaseTransactionCode
		repo.unconfirmed = []*ordermodel.Order{ord}
		processor.results["00000042"] = &reconcile.AuthResult{
			Token:     &vault.TokenDraft{DataKey: "dk-new"},
			VaultData: []gateway.VaultEntry{{DataKey: "dk-old", IsValid: false}},
		}

		status := sweep.Run(context.Background(), 60)

		Expect(status.Code).To(Equal(jobs.StatusOK))
		Expect(processor.handled).To(Equal([]string{"00000042"}))
		Expect(ord.ConfirmationStatus).To(Equal(ordermodel.ConfirmationStatusConfirmed))
		Expect(repo.placed).To(HaveLen(1))
		Expect(wallet.invalidations).To(HaveLen(1))
		Expect(wallet.savedDrafts).To(HaveLen(1))
	})

	It("should leave a pre-auth unconfirmed for the completion sweep", func() {
		ord := newOrder("00000042", "ticket-abc")
		ord.TransactionCode = gateway.PreAuthTransactionCode
		repo.unconfirmed = []*ordermodel.Order{ord}

		status := sweep.Run(context.Background(), 60)

		Expect(status.Code).To(Equal(jobs.StatusOK))
		Expect(ord.ConfirmationStatus).ToNot(Equal(ordermodel.ConfirmationStatusConfirmed))
		Expect(repo.placed).To(HaveLen(1))
	})

	It("should skip orders without a ticket", func() {
		repo.unconfirmed = []*ordermodel.Order{newOrder("00000042", "")}

		status := sweep.Run(context.Background(), 60)

		Expect(status.Code).To(Equal(jobs.StatusOK))
		Expect(processor.handled).To(BeEmpty())
	})

	It("should abort the whole run on a gateway outage", func() {
		first := newOrder("00000041", "ticket-1")
		second := newOrder("00000042", "ticket-2")
		repo.unconfirmed = []*ordermodel.Order{first, second}
		processor.results["00000041"] = &reconcile.AuthResult{
			Error:        true,
			SkipOrder:    true,
			ErrorMessage: reconcile.ServiceErrorMessage,
		}

		status := sweep.Run(context.Background(), 60)

		Expect(status.Code).To(Equal(jobs.StatusError))
		Expect(processor.handled).To(Equal([]string{"00000041"}))
	})

	It("should continue with the next order after an order-local failure", func() {
		first := newOrder("00000041", "ticket-1")
		second := newOrder("00000042", "ticket-2")
		repo.unconfirmed = []*ordermodel.Order{first, second}
		processor.results["00000041"] = &reconcile.AuthResult{
			Error:        true,
			SkipOrder:    true,
			ErrorMessage: reconcile.IncompleteOrderMessage,
		}

		status := sweep.Run(context.Background(), 60)

		Expect(status.Code).To(Equal(jobs.StatusOK))
		Expect(processor.handled).To(Equal([]string{"00000041", "00000042"}))
		Expect(repo.placed).To(HaveLen(1))
		Expect(repo.placed[0].OrderNo).To(Equal("00000042"))
	})

	It("should fail the order when placement breaks", func() {
		ord := newOrder("00000042", "ticket-abc")
		repo.unconfirmed = []*ordermodel.Order{ord}
		repo.placeError = errors.New("export hook failed")

		status := sweep.Run(context.Background(), 60)

		Expect(status.Code).To(Equal(jobs.StatusOK))
		Expect(repo.failed).To(HaveLen(1))
		Expect(repo.failed[0].OrderNo).To(Equal("00000042"))
	})
})
