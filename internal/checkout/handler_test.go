package checkout_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/checkout-payments/internal"
	"github.com/frahmantamala/checkout-payments/internal/checkout"
)

type mockCheckoutService struct {
	ticketResponse *checkout.TicketResponse
	ticketError    error

	submitResponse *checkout.SubmitPaymentResponse
	submitError    error

	placeResponse *checkout.PlaceOrderResponse
	placeError    error

	cancelResponse *checkout.CancelOrderResponse
	cancelError    error

	failReasonResponse *checkout.FailReasonResponse
	failReasonError    error

	failReasonCalls []string
}

func (m *mockCheckoutService) GetTicket(_ context.Context, req *checkout.TicketRequest) (*checkout.TicketResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if m.ticketError != nil {
		return nil, m.ticketError
	}
	return m.ticketResponse, nil
}

func (m *mockCheckoutService) SubmitPayment(_ context.Context, req *checkout.SubmitPaymentRequest) (*checkout.SubmitPaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if m.submitError != nil {
		return nil, m.submitError
	}
	return m.submitResponse, nil
}

func (m *mockCheckoutService) PlaceOrder(_ context.Context, req *checkout.PlaceOrderRequest) (*checkout.PlaceOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if m.placeError != nil {
		return nil, m.placeError
	}
	return m.placeResponse, nil
}

func (m *mockCheckoutService) CancelOrder(_ context.Context, req *checkout.CancelOrderRequest) (*checkout.CancelOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if m.cancelError != nil {
		return nil, m.cancelError
	}
	return m.cancelResponse, nil
}

func (m *mockCheckoutService) FailReasonFor(_ context.Context, orderNo, orderToken string) (*checkout.FailReasonResponse, error) {
	m.failReasonCalls = append(m.failReasonCalls, orderNo+"/"+orderToken)
	if m.failReasonError != nil {
		return nil, m.failReasonError
	}
	return m.failReasonResponse, nil
}

var _ = ginkgo.Describe("CheckoutHandler", func() {
	var (
		service *mockCheckoutService
		router  *chi.Mux
		logger  *slog.Logger
	)

	postJSON := func(target string, body interface{}) *httptest.ResponseRecorder {
		raw, err := json.Marshal(body)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, target, bytes.NewBuffer(raw))
		req.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		return recorder
	}

	ginkgo.BeforeEach(func() {
		service = &mockCheckoutService{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		router = chi.NewRouter()
		checkout.NewHandler(service, logger).RegisterRoutes(router)
	})

	ginkgo.Context("POST /checkout/ticket", func() {
		ginkgo.It("should return the hosted session", func() {
			service.ticketResponse = &checkout.TicketResponse{
				Ticket:          "ticket-abc",
				OrderNo:         "00000042",
				CheckoutSession: "session-jwt",
			}

			recorder := postJSON("/checkout/ticket", map[string]interface{}{
				"currencyCode": "CAD",
				"grossTotal":   "99.95",
			})

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			var response checkout.TicketResponse
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
			gomega.Expect(response.Ticket).To(gomega.Equal("ticket-abc"))
			gomega.Expect(response.OrderNo).To(gomega.Equal("00000042"))
		})

		ginkgo.It("should reject a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/checkout/ticket", bytes.NewBufferString("not json"))
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should surface validation failures with their error code", func() {
			recorder := postJSON("/checkout/ticket", map[string]interface{}{
				"currencyCode": "CAD",
				"grossTotal":   "-1.00",
			})

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			var response map[string]map[string]interface{}
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
			gomega.Expect(response["error"]["code"]).To(gomega.Equal("INVALID_AMOUNT"))
		})

		ginkgo.It("should return 502 when the gateway is unavailable", func() {
			service.ticketError = internal.ErrGatewayUnavailable

			recorder := postJSON("/checkout/ticket", map[string]interface{}{
				"currencyCode": "CAD",
				"grossTotal":   "99.95",
			})

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadGateway))
			var response map[string]map[string]interface{}
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
			gomega.Expect(response["error"]["message"]).To(gomega.Equal(internal.TechnicalErrorMessage))
		})
	})

	ginkgo.Context("POST /checkout/submit-payment", func() {
		ginkgo.It("should create the order", func() {
			service.submitResponse = &checkout.SubmitPaymentResponse{
				OrderNo:         "00000042",
				CheckoutSession: "session-jwt-2",
			}

			recorder := postJSON("/checkout/submit-payment", map[string]interface{}{
				"checkoutSession": "session-jwt",
				"currencyCode":    "CAD",
				"grossTotal":      "99.95",
				"shippingAddress": map[string]interface{}{"address1": "1 Main St"},
				"billingAddress":  map[string]interface{}{"address1": "1 Main St"},
			})

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusCreated))
		})

		ginkgo.It("should point the shopper back to the shipping step when the address is missing", func() {
			recorder := postJSON("/checkout/submit-payment", map[string]interface{}{
				"checkoutSession": "session-jwt",
				"currencyCode":    "CAD",
				"grossTotal":      "99.95",
				"billingAddress":  map[string]interface{}{"address1": "1 Main St"},
			})

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			var response map[string]map[string]interface{}
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
			stage := response["error"]["errorStage"].(map[string]interface{})
			gomega.Expect(stage["stage"]).To(gomega.Equal("shipping"))
			gomega.Expect(stage["step"]).To(gomega.Equal("address"))
		})

		ginkgo.It("should return 401 for a missing session", func() {
			recorder := postJSON("/checkout/submit-payment", map[string]interface{}{
				"currencyCode":    "CAD",
				"grossTotal":      "99.95",
				"shippingAddress": map[string]interface{}{},
				"billingAddress":  map[string]interface{}{},
			})

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Context("POST /checkout/place-order", func() {
		ginkgo.It("should return the continue URL", func() {
			service.placeResponse = &checkout.PlaceOrderResponse{
				OrderNo:     "00000042",
				OrderToken:  "order-token-1",
				ContinueURL: "/order/confirm",
			}

			recorder := postJSON("/checkout/place-order", map[string]interface{}{
				"checkoutSession": "session-jwt",
			})

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			var response map[string]interface{}
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
			gomega.Expect(response["orderID"]).To(gomega.Equal("00000042"))
			gomega.Expect(response["continueUrl"]).To(gomega.Equal("/order/confirm"))
		})

		ginkgo.It("should hide decline details behind the technical error message", func() {
			service.placeError = internal.NewExternalError(internal.TechnicalErrorMessage, internal.ErrCodeTransactionDeclined)

			recorder := postJSON("/checkout/place-order", map[string]interface{}{
				"checkoutSession": "session-jwt",
			})

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadGateway))
			var response map[string]map[string]interface{}
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
			gomega.Expect(response["error"]["code"]).To(gomega.Equal("TRANSACTION_DECLINED"))
			gomega.Expect(response["error"]["message"]).To(gomega.Equal(internal.TechnicalErrorMessage))
		})
	})

	ginkgo.Context("POST /checkout/cancel", func() {
		ginkgo.It("should acknowledge the cancellation", func() {
			service.cancelResponse = &checkout.CancelOrderResponse{
				OrderNo:   "00000042",
				Cancelled: true,
			}

			recorder := postJSON("/checkout/cancel", map[string]interface{}{
				"checkoutSession": "session-jwt",
			})

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			var response checkout.CancelOrderResponse
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
			gomega.Expect(response.Cancelled).To(gomega.BeTrue())
		})
	})

	ginkgo.Context("GET /orders/{orderNo}/fail-reason", func() {
		ginkgo.It("should pass the order number and token through to the service", func() {
			service.failReasonResponse = &checkout.FailReasonResponse{
				OrderNo:    "00000042",
				FailReason: checkout.FailReasonDeclined,
			}

			req := httptest.NewRequest(http.MethodGet, "/orders/00000042/fail-reason?orderToken=order-token-1", nil)
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(service.failReasonCalls).To(gomega.Equal([]string{"00000042/order-token-1"}))

			var response checkout.FailReasonResponse
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
			gomega.Expect(response.FailReason).To(gomega.Equal(checkout.FailReasonDeclined))
		})

		ginkgo.It("should require the order token", func() {
			req := httptest.NewRequest(http.MethodGet, "/orders/00000042/fail-reason", nil)
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(service.failReasonCalls).To(gomega.BeEmpty())
		})

		ginkgo.It("should return 404 for an unknown order", func() {
			service.failReasonError = internal.ErrOrderNotFound

			req := httptest.NewRequest(http.MethodGet, "/orders/99999999/fail-reason?orderToken=tok", nil)
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusNotFound))
		})
	})
})
