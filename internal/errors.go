package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidCurrency  ErrorCode = "INVALID_CURRENCY"

	ErrCodeOrderNotFound     ErrorCode = "ORDER_NOT_FOUND"
	ErrCodeDuplicateOrder    ErrorCode = "DUPLICATE_ORDER"
	ErrCodeMissingShipping   ErrorCode = "MISSING_SHIPPING_ADDRESS"
	ErrCodeMissingBilling    ErrorCode = "MISSING_BILLING_ADDRESS"
	ErrCodeMissingInstrument ErrorCode = "MISSING_PAYMENT_INSTRUMENT"

	ErrCodeInvalidSession ErrorCode = "INVALID_CHECKOUT_SESSION"
	ErrCodeSessionExpired ErrorCode = "CHECKOUT_SESSION_EXPIRED"

	ErrCodeServiceUnavailable  ErrorCode = "GATEWAY_UNAVAILABLE"
	ErrCodeTransactionDeclined ErrorCode = "TRANSACTION_DECLINED"
	ErrCodeIncompleteOrder     ErrorCode = "INCOMPLETE_ORDER"
	ErrCodePlacementFailed     ErrorCode = "ORDER_PLACEMENT_FAILED"
)

// ErrorStage tells the storefront which checkout step to return the shopper to.
type ErrorStage struct {
	Stage string `json:"stage"`
	Step  string `json:"step"`
}

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Stage      *ErrorStage `json:"errorStage,omitempty"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithStage(stage, step string) *AppError {
	e.Stage = &ErrorStage{Stage: stage, Step: step}
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewExternalError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
	}
}

// TechnicalErrorMessage is the only text ever shown to a shopper for
// gateway-side failures; raw gateway responses stay in the logs.
const TechnicalErrorMessage = "We are experiencing technical difficulties. Please try again later."

var (
	ErrOrderNotFound  = NewNotFoundError("Order not found", ErrCodeOrderNotFound)
	ErrInvalidSession = NewUnauthorizedError("Invalid checkout session", ErrCodeInvalidSession)
	ErrSessionExpired = NewUnauthorizedError("Checkout session has expired", ErrCodeSessionExpired)

	ErrMissingShippingAddress = NewValidationError("No shipping address on checkout", ErrCodeMissingShipping).
					WithStage("shipping", "address")
	ErrMissingBillingAddress = NewValidationError("No billing address on checkout", ErrCodeMissingBilling).
					WithStage("payment", "billingAddress")
	ErrMissingPaymentInstrument = NewValidationError("No payment instrument on checkout", ErrCodeMissingInstrument).
					WithStage("payment", "paymentInstrument")

	ErrGatewayUnavailable = NewExternalError(TechnicalErrorMessage, ErrCodeServiceUnavailable)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Stage   *ErrorStage `json:"errorStage,omitempty"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Stage:   e.Stage,
		Details: e.Details,
	})
}
