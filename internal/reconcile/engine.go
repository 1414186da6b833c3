package reconcile

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/frahmantamala/checkout-payments/internal"
	ordermodel "github.com/frahmantamala/checkout-payments/internal/core/datamodel/order"
	tokenmodel "github.com/frahmantamala/checkout-payments/internal/core/datamodel/token"
	"github.com/frahmantamala/checkout-payments/internal/gateway"
	"github.com/frahmantamala/checkout-payments/internal/vault"
	"github.com/shopspring/decimal"
)

const (
	ServiceErrorMessage        = "Service Error"
	IncompleteOrderMessage     = "Incomplete order"
	DeclinedTransactionMessage = "Declined Transaction"
	AuthorizationErrorMessage  = "Authorization Error"

	fraudStatusDisabled = "disabled"
)

// AuthResult is the outcome of reconciling one receipt against one
// order. SkipOrder marks transient failures (gateway unreachable,
// abandoned session) that must not fail the order; a later sweep
// retries them.
type AuthResult struct {
	Error                bool
	ErrorMessage         string
	SkipOrder            bool
	IsAuthorizationError bool

	// Token is a vault draft for the caller to save after placement;
	// VaultData is the gateway's token validity assertion.
	Token     *vault.TokenDraft
	VaultData []gateway.VaultEntry

	SettledAmount decimal.Decimal
}

// OrderStore is the slice of order persistence the engine needs.
type OrderStore interface {
	Save(ord *ordermodel.Order) error
	Fail(ord *ordermodel.Order) error
}

// Wallet looks up a stored vault token so a vaulted-card payment can
// reuse its saved display fields.
type Wallet interface {
	Find(ctx context.Context, customerNo, dataKey, issuerID string) (*tokenmodel.PaymentToken, error)
}

// Engine turns gateway receipts into order-state transitions.
type Engine struct {
	orders OrderStore
	wallet Wallet
	logger *slog.Logger
}

func NewEngine(orders OrderStore, wallet Wallet, logger *slog.Logger) *Engine {
	return &Engine{
		orders: orders,
		wallet: wallet,
		logger: logger,
	}
}

// AreAllGiftCardsValid reports whether every gift tender carries a
// numeric response code strictly below the success threshold. Gift
// tender is all-or-nothing: one bad entry voids the whole leg.
func AreAllGiftCardsValid(giftCards []gateway.GiftReceipt) bool {
	for _, card := range giftCards {
		if card.ResponseCode == "" {
			return false
		}
		code, err := strconv.Atoi(card.ResponseCode)
		if err != nil || code >= gateway.SuccessThreshold {
			return false
		}
	}
	return true
}

// IsCreditCardValid reports whether the card leg was accepted with a
// response code below the success threshold (exclusive boundary).
func IsCreditCardValid(cc *gateway.CardReceipt) bool {
	if cc == nil || cc.Result != gateway.ResultAccepted {
		return false
	}
	code, err := strconv.Atoi(cc.ResponseCode)
	if err != nil {
		return false
	}
	return code < gateway.SuccessThreshold
}

// Reconcile interprets a receipt fetch for the given order: validates
// the gift leg, then the card leg, aggregates the settled amount,
// persists the audit trail onto the order even for declined
// transactions, and prepares the token draft for vaulting.
func (e *Engine) Reconcile(ctx context.Context, ord *ordermodel.Order, rr *gateway.ReceiptResult) *AuthResult {
	res := &AuthResult{Error: true}

	if ord == nil {
		res.SkipOrder = true
		res.ErrorMessage = IncompleteOrderMessage
		return res
	}

	if rr == nil || !rr.OK || rr.Response == nil || rr.Response.Error != nil || rr.Response.Receipt == nil {
		res.SkipOrder = true
		if rr != nil && rr.UnavailableReason != "" {
			res.ErrorMessage = ServiceErrorMessage
		} else {
			res.ErrorMessage = IncompleteOrderMessage
		}
		return res
	}

	receipt := rr.Response.Receipt

	var transactionNos, referenceNos, responseCodes, transactionCodes, isoCodes []string
	total := decimal.Zero

	// Gift leg is evaluated before the card leg; its decline wins.
	if len(receipt.Gift) > 0 {
		if !AreAllGiftCardsValid(receipt.Gift) {
			e.logger.Warn("gift card validation failed", "order_no", ord.OrderNo)
			return res
		}
		for _, gift := range receipt.Gift {
			if amount, err := decimal.NewFromString(gift.BenefitAmount); err == nil {
				total = total.Add(amount)
			}
			transactionNos = append(transactionNos, gift.TransactionNo)
			referenceNos = append(referenceNos, gift.ReferenceNo)
			responseCodes = append(responseCodes, gift.ResponseCode)
			isoCodes = append(isoCodes, gift.ISOResponseCode)
		}
	}

	cardType := ""
	cardNumber := ""
	if receipt.CC != nil {
		if amount, err := decimal.NewFromString(receipt.CC.Amount); err == nil {
			total = total.Add(amount)
		}
		transactionNos = append(transactionNos, receipt.CC.TransactionNo)
		referenceNos = append(referenceNos, receipt.CC.ReferenceNo)
		responseCodes = append(responseCodes, receipt.CC.ResponseCode)
		transactionCodes = append(transactionCodes, receipt.CC.TransactionCode)
		isoCodes = append(isoCodes, receipt.CC.ISOResponseCode)
		cardNumber = receipt.CC.First6Last4
		cardType = receipt.CC.CardType
	}

	// A payment made with a vaulted token reuses the wallet's stored
	// display fields instead of the receipt's masked values.
	echo := rr.Response.Request
	if echo != nil && echo.Token != nil && echo.Token.DataKey != "" && ord.RegisteredCustomer {
		customerNo := ord.CustomerNo
		if c, ok := internal.CustomerFromContext(ctx); ok && c.CustomerNo != "" {
			customerNo = c.CustomerNo
		}
		if stored, err := e.wallet.Find(ctx, customerNo, echo.Token.DataKey, echo.Token.IssuerID); err == nil && stored != nil {
			cardNumber = stored.CardNumber
			cardType = stored.CardType
		}
	}

	isFailedTransaction := receipt.Result != gateway.ResultAccepted
	cardValid := receipt.CC != nil && IsCreditCardValid(receipt.CC)

	ord.RefundStatus = ordermodel.RefundNotSent
	ord.TransactionNo = strings.Join(transactionNos, ",")
	ord.ReferenceNo = strings.Join(referenceNos, ",")
	ord.TransactionCode = strings.Join(transactionCodes, ",")
	ord.TransactionType = strings.Join(transactionCodes, ",")
	ord.ResponseCode = strings.Join(responseCodes, ",")
	ord.ISOResponseCode = strings.Join(isoCodes, ",")
	ord.TransactionID = ord.TransactionNo

	if receipt.CC != nil {
		applyFraudStatuses(ord, receipt.CC.Fraud)

		// Purchase settles immediately; pre-auth stays unconfirmed
		// until an explicit completion call.
		if ord.TransactionCode == gateway.PurchaseTransactionCode && !isFailedTransaction {
			if ord.GrossTotal.Equal(total) {
				ord.PaymentStatus = ordermodel.PaymentStatusPaid
			} else {
				ord.PaymentStatus = ordermodel.PaymentStatusPartPaid
			}
		}
	}

	if cardValid {
		ord.AuthorizedAmount = total
		ord.CardType = cardType
		ord.CardNumber = cardNumber
	}

	// Receipt facts are persisted before the terminal checks so the
	// audit trail survives declined transactions.
	if err := e.orders.Save(ord); err != nil {
		e.logger.Error("failed to persist receipt facts", "error", err, "order_no", ord.OrderNo)
		res.ErrorMessage = AuthorizationErrorMessage
		return res
	}

	if receipt.CC != nil && !cardValid {
		res.ErrorMessage = DeclinedTransactionMessage
		return res
	}

	if isFailedTransaction {
		return res
	}

	res.Error = false
	res.SettledAmount = total

	// vault_data is only relevant for registered customers.
	if !ord.RegisteredCustomer {
		return res
	}

	if receipt.CC != nil && receipt.CC.Tokenize != nil && receipt.CC.Tokenize.Success == "true" {
		draft := &vault.TokenDraft{
			DataKey:  receipt.CC.Tokenize.DataKey,
			IssuerID: receipt.CC.IssuerID,
			CardType: cardType,
		}
		if echo != nil && echo.CC != nil {
			draft.CardHolder = echo.CC.Cardholder
			draft.CardNumber = echo.CC.First6Last4
		}
		res.Token = draft
	}

	res.VaultData = rr.Response.VaultData
	return res
}

func applyFraudStatuses(ord *ordermodel.Order, fraud *gateway.FraudDetails) {
	status := func(check *gateway.FraudCheck) string {
		if check == nil || check.Status == "" {
			return fraudStatusDisabled
		}
		return check.Status
	}

	if fraud == nil {
		ord.SecureStatus = fraudStatusDisabled
		ord.FingerprintStatus = fraudStatusDisabled
		ord.AVSStatus = fraudStatusDisabled
		ord.CVDStatus = fraudStatusDisabled
		return
	}

	ord.SecureStatus = status(fraud.ThreeDSecure)
	ord.FingerprintStatus = status(fraud.Kount)
	ord.AVSStatus = status(fraud.AVS)
	ord.CVDStatus = status(fraud.CVD)
}
