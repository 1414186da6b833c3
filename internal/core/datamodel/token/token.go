package token

import "time"

// PaymentToken is a vaulted gateway credential saved to a customer's
// wallet. DataKey and IssuerID together identify the token on the
// gateway side; the card fields are display-only and come masked from
// the receipt.
type PaymentToken struct {
	ID         int64  `gorm:"primaryKey"`
	CustomerNo string `gorm:"column:customer_no;index;not null"`

	DataKey  string `gorm:"column:data_key;not null"`
	IssuerID string `gorm:"column:issuer_id"`

	CardType   string `gorm:"column:card_type"`
	CardHolder string `gorm:"column:card_holder"`
	CardNumber string `gorm:"column:card_number"`

	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (PaymentToken) TableName() string {
	return "payment_tokens"
}
