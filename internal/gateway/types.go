package gateway

// Wire contract for the hosted-checkout gateway. Field names are fixed
// by the gateway's public API and must be preserved exactly.

const (
	// ResultAccepted is the receipt-level accept marker; anything else
	// is a declined or abandoned transaction.
	ResultAccepted = "a"

	// SuccessThreshold is the exclusive upper bound for approved
	// per-tender response codes.
	SuccessThreshold = 50

	// ApprovalCodeMax is the inclusive upper bound for approved
	// completion/void/refund response codes.
	ApprovalCodeMax = 29

	PreAuthTransactionCode  = "01"
	PurchaseTransactionCode = "00"

	ZeroAmount = "0.00"
)

// TokenHint is a saved-token reference handed to preload so the hosted
// page can offer the shopper their vaulted cards.
type TokenHint struct {
	DataKey  string `json:"data_key"`
	IssuerID string `json:"issuer_id"`
}

type ContactDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type AddressDetails struct {
	Address1   string `json:"address_1"`
	Address2   string `json:"address_2"`
	City       string `json:"city"`
	Province   string `json:"province"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

type PreloadRequest struct {
	StoreID           string          `json:"store_id"`
	APIToken          string          `json:"api_token"`
	CheckoutID        string          `json:"checkout_id"`
	Environment       string          `json:"environment"`
	Action            string          `json:"action"`
	TxnTotal          string          `json:"txn_total"`
	AskCVV            string          `json:"ask_cvv"`
	OrderNo           string          `json:"order_no"`
	DynamicDescriptor string          `json:"dynamic_descriptor"`
	Language          string          `json:"language"`
	Token             []TokenHint     `json:"token,omitempty"`
	ContactDetails    *ContactDetails `json:"contact_details,omitempty"`
	ShippingDetails   *AddressDetails `json:"shipping_details,omitempty"`
	BillingDetails    *AddressDetails `json:"billing_details,omitempty"`
	CustID            string          `json:"cust_id,omitempty"`
}

type ReceiptRequest struct {
	StoreID     string `json:"store_id"`
	APIToken    string `json:"api_token"`
	CheckoutID  string `json:"checkout_id"`
	Environment string `json:"environment"`
	Action      string `json:"action"`
	Ticket      string `json:"ticket"`
}

// FinancialRequest is shared by completion, void and refund.
type FinancialRequest struct {
	StoreID   string `json:"store_id"`
	APIToken  string `json:"api_token"`
	TxnNumber string `json:"txn_number"`
	OrderID   string `json:"order_id"`
	Amount    string `json:"amount"`
}

// RequestError is the gateway's field-keyed error block; a preload for
// an already-used order number comes back as {order_no: "Duplicate orderId"}.
type RequestError struct {
	OrderNo string `json:"order_no,omitempty"`
	Message string `json:"message,omitempty"`
}

type PreloadPayload struct {
	Success string        `json:"success,omitempty"`
	Ticket  string        `json:"ticket,omitempty"`
	Error   *RequestError `json:"error,omitempty"`
}

type preloadEnvelope struct {
	Response *PreloadPayload `json:"response"`
}

// FraudCheck is one fraud-signal sub-object on a card transaction.
type FraudCheck struct {
	Status string `json:"status"`
}

type FraudDetails struct {
	ThreeDSecure *FraudCheck `json:"3d_secure,omitempty"`
	Kount        *FraudCheck `json:"kount,omitempty"`
	AVS          *FraudCheck `json:"avs,omitempty"`
	CVD          *FraudCheck `json:"cvd,omitempty"`
}

type TokenizeResult struct {
	Success string `json:"success"`
	DataKey string `json:"datakey"`
}

// CardReceipt is the credit-card leg of a receipt. All numeric fields
// arrive as strings on the wire.
type CardReceipt struct {
	Amount          string          `json:"amount"`
	TransactionNo   string          `json:"transaction_no"`
	ReferenceNo     string          `json:"reference_no"`
	TransactionCode string          `json:"transaction_code"`
	ResponseCode    string          `json:"response_code"`
	ISOResponseCode string          `json:"iso_response_code"`
	CardType        string          `json:"card_type"`
	First6Last4     string          `json:"first6last4"`
	IssuerID        string          `json:"issuer_id"`
	Result          string          `json:"result"`
	Tokenize        *TokenizeResult `json:"tokenize,omitempty"`
	Fraud           *FraudDetails   `json:"fraud,omitempty"`
}

// GiftReceipt is one gift-card tender applied to the transaction.
type GiftReceipt struct {
	BenefitAmount   string `json:"benefit_amount"`
	TransactionNo   string `json:"transaction_no"`
	ReferenceNo     string `json:"reference_no"`
	ResponseCode    string `json:"response_code"`
	ISOResponseCode string `json:"iso_response_code"`
}

type Receipt struct {
	Result string        `json:"result"`
	CC     *CardReceipt  `json:"cc,omitempty"`
	Gift   []GiftReceipt `json:"gift,omitempty"`
}

// RequestEcho reflects parts of the original preload request back with
// the receipt; the engine needs the token hint and cardholder from it.
type RequestEcho struct {
	Token *TokenHint   `json:"token,omitempty"`
	CC    *RequestCard `json:"cc,omitempty"`
}

type RequestCard struct {
	Cardholder  string `json:"cardholder"`
	First6Last4 string `json:"first6last4"`
}

// VaultEntry is the gateway's assertion about one previously vaulted
// token; tokens absent from the list are no longer usable.
type VaultEntry struct {
	DataKey string `json:"data_key"`
	IsValid bool   `json:"is_valid"`
}

type ReceiptPayload struct {
	Receipt   *Receipt      `json:"receipt,omitempty"`
	Request   *RequestEcho  `json:"request,omitempty"`
	VaultData []VaultEntry  `json:"vault_data,omitempty"`
	Error     *RequestError `json:"error,omitempty"`
}

type receiptEnvelope struct {
	Response *ReceiptPayload `json:"response"`
}

// FinancialResponse is shared by completion, void and refund. The
// gateway capitalizes these field names.
type FinancialResponse struct {
	ResponseCode string `json:"ResponseCode"`
	TxnNumber    string `json:"TxnNumber"`
	Message      string `json:"Message"`
}
