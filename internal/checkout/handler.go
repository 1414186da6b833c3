package checkout

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	errors "github.com/frahmantamala/checkout-payments/internal"
	"github.com/frahmantamala/checkout-payments/internal/transport"
)

type ServiceAPI interface {
	GetTicket(ctx context.Context, req *TicketRequest) (*TicketResponse, error)
	SubmitPayment(ctx context.Context, req *SubmitPaymentRequest) (*SubmitPaymentResponse, error)
	PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error)
	CancelOrder(ctx context.Context, req *CancelOrderRequest) (*CancelOrderResponse, error)
	FailReasonFor(ctx context.Context, orderNo, orderToken string) (*FailReasonResponse, error)
}

type Handler struct {
	transport.BaseHandler
	Service ServiceAPI
	Logger  *slog.Logger
}

func NewHandler(service ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		Service: service,
		Logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/checkout/ticket", h.GetTicket)
	r.Post("/checkout/submit-payment", h.SubmitPayment)
	r.Post("/checkout/place-order", h.PlaceOrder)
	r.Post("/checkout/cancel", h.CancelOrder)
	r.Get("/orders/{orderNo}/fail-reason", h.FailReason)
}

// GetTicket handles POST /api/v1/checkout/ticket
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	var req TicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("GetTicket: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	resp, err := h.Service.GetTicket(r.Context(), &req)
	if err != nil {
		h.Logger.Error("GetTicket: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// SubmitPayment handles POST /api/v1/checkout/submit-payment
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req SubmitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("SubmitPayment: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	resp, err := h.Service.SubmitPayment(r.Context(), &req)
	if err != nil {
		h.Logger.Error("SubmitPayment: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

// PlaceOrder handles POST /api/v1/checkout/place-order
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("PlaceOrder: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	resp, err := h.Service.PlaceOrder(r.Context(), &req)
	if err != nil {
		h.Logger.Error("PlaceOrder: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// CancelOrder handles POST /api/v1/checkout/cancel
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("CancelOrder: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	resp, err := h.Service.CancelOrder(r.Context(), &req)
	if err != nil {
		h.Logger.Error("CancelOrder: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// FailReason handles GET /api/v1/orders/{orderNo}/fail-reason
func (h *Handler) FailReason(w http.ResponseWriter, r *http.Request) {
	orderNo := chi.URLParam(r, "orderNo")
	orderToken := r.URL.Query().Get("orderToken")

	if orderNo == "" || orderToken == "" {
		h.HandleError(w, errors.NewValidationError("order number and token are required", errors.ErrCodeValidationFailed))
		return
	}

	resp, err := h.Service.FailReasonFor(r.Context(), orderNo, orderToken)
	if err != nil {
		h.Logger.Error("FailReason: service error", "error", err, "order_no", orderNo)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
