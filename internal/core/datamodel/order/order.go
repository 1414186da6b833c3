package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusCreated   Status = "created"
	StatusNew       Status = "new"
	StatusOpen      Status = "open"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusNotPaid  PaymentStatus = "notpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusPartPaid PaymentStatus = "partpaid"
)

type ConfirmationStatus string

const (
	ConfirmationStatusNotConfirmed ConfirmationStatus = "notconfirmed"
	ConfirmationStatusConfirmed    ConfirmationStatus = "confirmed"
)

type ShippingStatus string

const (
	ShippingStatusNotShipped ShippingStatus = "notshipped"
	ShippingStatusShipped    ShippingStatus = "shipped"
)

type ExportStatus string

const (
	ExportStatusNotExported ExportStatus = "notexported"
	ExportStatusReady       ExportStatus = "ready"
)

// RefundStatus tracks the refund sweep outcome for cancelled orders.
type RefundStatus int

const (
	RefundNotSent  RefundStatus = 0
	RefundSuccess  RefundStatus = 1
	RefundDeclined RefundStatus = 2
)

// Order is the slice of the commerce platform's order record that payment
// reconciliation reads and mutates. The gateway reconciliation fields
// (Ticket through CVDStatus) are written only by this service; everything
// else is owned by the surrounding platform.
type Order struct {
	ID         int64  `gorm:"primaryKey"`
	OrderNo    string `gorm:"column:order_no;uniqueIndex;not null"`
	OrderToken string `gorm:"column:order_token;not null"`

	CustomerNo         string `gorm:"column:customer_no"`
	CustomerEmail      string `gorm:"column:customer_email"`
	RegisteredCustomer bool   `gorm:"column:registered_customer"`

	CurrencyCode string          `gorm:"column:currency_code"`
	GrossTotal   decimal.Decimal `gorm:"column:gross_total;type:numeric(12,2)"`

	Status             Status             `gorm:"column:status;default:created"`
	PaymentStatus      PaymentStatus      `gorm:"column:payment_status;default:notpaid"`
	ConfirmationStatus ConfirmationStatus `gorm:"column:confirmation_status;default:notconfirmed"`
	ShippingStatus     ShippingStatus     `gorm:"column:shipping_status;default:notshipped"`
	ExportStatus       ExportStatus       `gorm:"column:export_status;default:notexported"`

	PaymentMethod string `gorm:"column:payment_method"`
	Ticket        string `gorm:"column:ticket"`

	// Joined per-tender arrays (comma separated) when a receipt mixes
	// gift-card and credit-card components.
	TransactionNo   string `gorm:"column:transaction_no"`
	ReferenceNo     string `gorm:"column:reference_no"`
	TransactionCode string `gorm:"column:transaction_code"`
	TransactionType string `gorm:"column:transaction_type"`
	ResponseCode    string `gorm:"column:response_code"`
	ISOResponseCode string `gorm:"column:iso_response_code"`

	TransactionID    string          `gorm:"column:transaction_id"`
	AuthorizedAmount decimal.Decimal `gorm:"column:authorized_amount;type:numeric(12,2)"`

	CardType   string `gorm:"column:card_type"`
	CardNumber string `gorm:"column:card_number"`

	RefundStatus   RefundStatus `gorm:"column:refund_status;default:0"`
	CancelledOrder bool         `gorm:"column:cancelled_order;default:false"`

	SecureStatus      string `gorm:"column:secure_status"`
	FingerprintStatus string `gorm:"column:fingerprint_status"`
	AVSStatus         string `gorm:"column:avs_status"`
	CVDStatus         string `gorm:"column:cvd_status"`

	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (Order) TableName() string {
	return "orders"
}

// Note is an audit entry appended to an order by the reconciliation
// engine and the batch sweeps.
type Note struct {
	ID        int64     `gorm:"primaryKey"`
	OrderNo   string    `gorm:"column:order_no;index;not null"`
	Subject   string    `gorm:"column:subject;not null"`
	Body      string    `gorm:"column:body"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (Note) TableName() string {
	return "order_notes"
}
