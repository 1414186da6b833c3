package jobs_test

import (
	"context"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	ordermodel "github.com/frahmantamala/checkout-payments/internal/core/datamodel/order"
	"github.com/frahmantamala/checkout-payments/internal/gateway"
	"github.com/frahmantamala/checkout-payments/internal/jobs"
)

var _ = Describe("RefundSweep", func() {
	var (
		repo   *mockOrderRepository
		caller *mockFinancialCaller
		sweep  *jobs.RefundSweep
		logger *slog.Logger
	)

	cancelledOrder := func(transactionCode string, paymentStatus ordermodel.PaymentStatus) *ordermodel.Order {
		return &ordermodel.Order{
			OrderNo:          "00000042",
			Status:           ordermodel.StatusCancelled,
			TransactionCode:  transactionCode,
			TransactionID:    "txn-live",
			TransactionNo:    "txn-receipt",
			PaymentStatus:    paymentStatus,
			RefundStatus:     ordermodel.RefundNotSent,
			AuthorizedAmount: decimal.RequireFromString("99.95"),
		}
	}

	BeforeEach(func() {
		repo = &mockOrderRepository{}
		caller = &mockFinancialCaller{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		sweep = jobs.NewRefundSweep(repo, caller, nil, "prod", logger)
	})

	It("should report no matches when nothing is waiting for a refund", func() {
		status := sweep.Run(context.Background())

		Expect(status.Code).To(Equal(jobs.StatusNoMatches))
	})

	Context("uncaptured pre-auth orders", func() {
		It("should close the authorization with a zero amount completion", func() {
			ord := cancelledOrder(gateway.PreAuthTransactionCode, ordermodel.PaymentStatusNotPaid)
			repo.cancelled = []*ordermodel.Order{ord}
			caller.completionResults = []*gateway.FinancialResult{
				approvedResult("001", "660117-2_11", "APPROVED"),
			}

			status := sweep.Run(context.Background())

			Expect(status.Code).To(Equal(jobs.StatusOK))
			Expect(caller.calls).To(HaveLen(1))
			Expect(caller.calls[0].op).To(Equal("completion"))
			Expect(caller.calls[0].amount).To(Equal("0.00"))

			Expect(ord.RefundStatus).To(Equal(ordermodel.RefundSuccess))
			Expect(ord.ConfirmationStatus).To(Equal(ordermodel.ConfirmationStatusConfirmed))
			Expect(ord.PaymentStatus).To(Equal(ordermodel.PaymentStatusPaid))
			Expect(repo.notes).To(HaveLen(1))
			Expect(repo.notes[0].subject).To(Equal("Zero amount Completion request is APPROVED."))
		})

		It("should record the decline when the zero amount completion fails", func() {
			ord := cancelledOrder(gateway.PreAuthTransactionCode, ordermodel.PaymentStatusNotPaid)
			repo.cancelled = []*ordermodel.Order{ord}
			caller.completionResults = []*gateway.FinancialResult{
				approvedResult("96", "", "DECLINED"),
			}

			status := sweep.Run(context.Background())

			Expect(status.Code).To(Equal(jobs.StatusOK))
			Expect(ord.RefundStatus).To(Equal(ordermodel.RefundDeclined))
			Expect(repo.saved).To(HaveLen(1))
			Expect(repo.notes).To(HaveLen(1))
			Expect(repo.notes[0].subject).To(Equal("Zero amount Completion request is DECLINED. Reason: "))
			Expect(repo.notes[0].body).To(Equal("DECLINED"))
		})
	})

	Context("captured orders", func() {
		It("should void the transaction for the authorized amount", func() {
			ord := cancelledOrder(gateway.PurchaseTransactionCode, ordermodel.PaymentStatusPaid)
			repo.cancelled = []*ordermodel.Order{ord}
			caller.voidResults = []*gateway.FinancialResult{
				approvedResult("001", "660117-3_11", "APPROVED"),
			}

			status := sweep.Run(context.Background())

			Expect(status.Code).To(Equal(jobs.StatusOK))
			Expect(caller.calls).To(HaveLen(1))
			Expect(caller.calls[0].op).To(Equal("void"))
			Expect(caller.calls[0].txnNumber).To(Equal("txn-live"))
			Expect(caller.calls[0].amount).To(Equal("99.95"))

			Expect(ord.RefundStatus).To(Equal(ordermodel.RefundSuccess))
			Expect(repo.notes).To(HaveLen(1))
			Expect(repo.notes[0].subject).To(Equal("Void request is APPROVED. Void info: "))
			Expect(repo.notes[0].body).To(ContainSubstring("660117-3_11"))
		})

		It("should void a captured pre-auth that was already paid", func() {
			ord := cancelledOrder(gateway.PreAuthTransactionCode, ordermodel.PaymentStatusPaid)
			repo.cancelled = []*ordermodel.Order{ord}

			sweep.Run(context.Background())

			Expect(caller.calls).To(HaveLen(1))
			Expect(caller.calls[0].op).To(Equal("void"))
		})

		It("should fall back to a refund for the same amount when the void is declined", func() {
			ord := cancelledOrder(gateway.PurchaseTransactionCode, ordermodel.PaymentStatusPaid)
			repo.cancelled = []*ordermodel.Order{ord}
			caller.voidResults = []*gateway.FinancialResult{
				approvedResult("96", "", "VOID WINDOW CLOSED"),
			}
			caller.refundResults = []*gateway.FinancialResult{
				approvedResult("001", "660117-4_11", "APPROVED"),
			}

			status := sweep.Run(context.Background())

			Expect(status.Code).To(Equal(jobs.StatusOK))
			Expect(caller.calls).To(HaveLen(2))
			Expect(caller.calls[1].op).To(Equal("refund"))
			Expect(caller.calls[1].amount).To(Equal(caller.calls[0].amount))

			Expect(ord.RefundStatus).To(Equal(ordermodel.RefundSuccess))
			Expect(repo.notes).To(HaveLen(2))
			Expect(repo.notes[0].subject).To(Equal("Void request is DECLINED. Reason: "))
			Expect(repo.notes[1].subject).To(Equal("Refund request is APPROVED. Refund info: "))
		})

		It("should record the decline when the fallback refund also fails", func() {
			ord := cancelledOrder(gateway.PurchaseTransactionCode, ordermodel.PaymentStatusPaid)
			repo.cancelled = []*ordermodel.Order{ord}
			caller.voidResults = []*gateway.FinancialResult{
				approvedResult("96", "", "VOID WINDOW CLOSED"),
			}
			caller.refundResults = []*gateway.FinancialResult{
				approvedResult("481", "", "DECLINED"),
			}

			status := sweep.Run(context.Background())

			Expect(status.Code).To(Equal(jobs.StatusOK))
			Expect(ord.RefundStatus).To(Equal(ordermodel.RefundDeclined))
			Expect(repo.notes).To(HaveLen(2))
			Expect(repo.notes[1].subject).To(Equal("Refund request is DECLINED. Reason: "))
		})
	})

	It("should abort the run when the gateway is unreachable", func() {
		first := cancelledOrder(gateway.PurchaseTransactionCode, ordermodel.PaymentStatusPaid)
		second := cancelledOrder(gateway.PurchaseTransactionCode, ordermodel.PaymentStatusPaid)
		second.OrderNo = "00000043"
		repo.cancelled = []*ordermodel.Order{first, second}
		caller.voidResults = []*gateway.FinancialResult{
			unavailableResult("service unreachable: connection refused"),
		}

		status := sweep.Run(context.Background())

		Expect(status.Code).To(Equal(jobs.StatusError))
		Expect(caller.calls).To(HaveLen(1))
	})

	It("should use the receipt transaction number on qa instances", func() {
		sweep = jobs.NewRefundSweep(repo, caller, nil, "qa", logger)
		ord := cancelledOrder(gateway.PurchaseTransactionCode, ordermodel.PaymentStatusPaid)
		repo.cancelled = []*ordermodel.Order{ord}

		sweep.Run(context.Background())

		Expect(caller.calls[0].txnNumber).To(Equal("txn-receipt"))
	})
})
