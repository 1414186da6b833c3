package checkout

import (
	"strings"

	"github.com/frahmantamala/checkout-payments/internal"
	"github.com/frahmantamala/checkout-payments/internal/gateway"
	"github.com/shopspring/decimal"
)

type ContactDTO struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type AddressDTO struct {
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	Province   string `json:"province"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
}

func (a *AddressDTO) toGateway() *gateway.AddressDetails {
	if a == nil {
		return nil
	}
	return &gateway.AddressDetails{
		Address1:   a.Address1,
		Address2:   a.Address2,
		City:       a.City,
		Province:   a.Province,
		Country:    a.Country,
		PostalCode: a.PostalCode,
	}
}

func (c *ContactDTO) toGateway() *gateway.ContactDetails {
	if c == nil {
		return nil
	}
	return &gateway.ContactDetails{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
	}
}

// TicketRequest carries the cart facts the hosted page needs to open a
// payment session.
type TicketRequest struct {
	CurrencyCode    string      `json:"currencyCode"`
	GrossTotal      string      `json:"grossTotal"`
	Contact         *ContactDTO `json:"contact,omitempty"`
	ShippingAddress *AddressDTO `json:"shippingAddress,omitempty"`
	BillingAddress  *AddressDTO `json:"billingAddress,omitempty"`
}

func (r *TicketRequest) Validate() error {
	if len(r.CurrencyCode) != 3 {
		return internal.NewValidationError("currency code must be 3 letters", internal.ErrCodeInvalidCurrency)
	}

	total, err := decimal.NewFromString(strings.TrimSpace(r.GrossTotal))
	if err != nil || total.IsNegative() || total.IsZero() {
		return internal.NewValidationError("gross total must be a positive amount", internal.ErrCodeInvalidAmount)
	}
	return nil
}

func (r *TicketRequest) Total() decimal.Decimal {
	total, _ := decimal.NewFromString(strings.TrimSpace(r.GrossTotal))
	return total
}

type TicketResponse struct {
	Ticket          string `json:"ticket"`
	OrderNo         string `json:"orderNo"`
	CheckoutSession string `json:"checkoutSession"`
}

// SubmitPaymentRequest creates the order for the session's reserved
// order number once the shopper picked the hosted payment method.
type SubmitPaymentRequest struct {
	CheckoutSession string      `json:"checkoutSession"`
	CurrencyCode    string      `json:"currencyCode"`
	GrossTotal      string      `json:"grossTotal"`
	Email           string      `json:"email"`
	ShippingAddress *AddressDTO `json:"shippingAddress,omitempty"`
	BillingAddress  *AddressDTO `json:"billingAddress,omitempty"`
}

func (r *SubmitPaymentRequest) Validate() error {
	if r.CheckoutSession == "" {
		return internal.ErrInvalidSession
	}
	if len(r.CurrencyCode) != 3 {
		return internal.NewValidationError("currency code must be 3 letters", internal.ErrCodeInvalidCurrency)
	}

	total, err := decimal.NewFromString(strings.TrimSpace(r.GrossTotal))
	if err != nil || total.IsNegative() || total.IsZero() {
		return internal.NewValidationError("gross total must be a positive amount", internal.ErrCodeInvalidAmount)
	}

	if r.ShippingAddress == nil {
		return internal.ErrMissingShippingAddress
	}
	if r.BillingAddress == nil {
		return internal.ErrMissingBillingAddress
	}
	return nil
}

func (r *SubmitPaymentRequest) Total() decimal.Decimal {
	total, _ := decimal.NewFromString(strings.TrimSpace(r.GrossTotal))
	return total
}

type SubmitPaymentResponse struct {
	OrderNo         string `json:"orderNo"`
	CheckoutSession string `json:"checkoutSession"`
}

type PlaceOrderRequest struct {
	CheckoutSession string `json:"checkoutSession"`
}

func (r *PlaceOrderRequest) Validate() error {
	if r.CheckoutSession == "" {
		return internal.ErrInvalidSession
	}
	return nil
}

type PlaceOrderResponse struct {
	OrderNo     string `json:"orderID"`
	OrderToken  string `json:"orderToken"`
	ContinueURL string `json:"continueUrl"`
}

type CancelOrderRequest struct {
	CheckoutSession string `json:"checkoutSession"`
}

func (r *CancelOrderRequest) Validate() error {
	if r.CheckoutSession == "" {
		return internal.ErrInvalidSession
	}
	return nil
}

type CancelOrderResponse struct {
	OrderNo   string `json:"orderNo"`
	Cancelled bool   `json:"cancelled"`
}

type FailReasonResponse struct {
	OrderNo    string `json:"orderNo"`
	FailReason string `json:"failReason,omitempty"`
}
