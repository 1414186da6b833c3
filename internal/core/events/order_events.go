package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeOrderPlaced     = "order.placed"
	EventTypePaymentDeclined = "payment.declined"
	EventTypeRefundProcessed = "refund.processed"
)

type OrderPlacedEvent struct {
	BaseEvent
	OrderNo       string `json:"order_no"`
	CustomerEmail string `json:"customer_email"`
	SettledAmount string `json:"settled_amount"`
	Currency      string `json:"currency"`
}

func NewOrderPlacedEvent(orderNo, customerEmail, settledAmount, currency string) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeOrderPlaced,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"order_no":       orderNo,
				"customer_email": customerEmail,
				"settled_amount": settledAmount,
				"currency":       currency,
			},
		},
		OrderNo:       orderNo,
		CustomerEmail: customerEmail,
		SettledAmount: settledAmount,
		Currency:      currency,
	}
}

type PaymentDeclinedEvent struct {
	BaseEvent
	OrderNo       string `json:"order_no"`
	DeclineReason string `json:"decline_reason"`
}

func NewPaymentDeclinedEvent(orderNo, declineReason string) *PaymentDeclinedEvent {
	return &PaymentDeclinedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentDeclined,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"order_no":       orderNo,
				"decline_reason": declineReason,
			},
		},
		OrderNo:       orderNo,
		DeclineReason: declineReason,
	}
}

type RefundProcessedEvent struct {
	BaseEvent
	OrderNo string `json:"order_no"`
	Amount  string `json:"amount"`
	Kind    string `json:"kind"`
	Success bool   `json:"success"`
}

// NewRefundProcessedEvent records one refund-sweep outcome; kind is
// "void", "refund" or "zero_amount_completion".
func NewRefundProcessedEvent(orderNo, amount, kind string, success bool) *RefundProcessedEvent {
	return &RefundProcessedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRefundProcessed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"order_no": orderNo,
				"amount":   amount,
				"kind":     kind,
				"success":  success,
			},
		},
		OrderNo: orderNo,
		Amount:  amount,
		Kind:    kind,
		Success: success,
	}
}
