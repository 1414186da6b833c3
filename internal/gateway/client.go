package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	checkoutPath   = "/checkout/request"
	completionPath = "/gateway/completion"
	voidPath       = "/gateway/void"
	refundPath     = "/gateway/refund"
)

type Config struct {
	BaseURL           string
	StoreID           string
	APIToken          string
	CheckoutID        string
	Environment       string
	DynamicDescriptor string
	Language          string
	AskCVV            bool
	Timeout           time.Duration
}

// Client is a stateless wrapper around the gateway's five remote
// operations. It performs no retries; retry policy belongs to callers.
// A transport failure is reported through UnavailableReason on the
// result so callers can tell a dead gateway from a business decline.
type Client struct {
	client *http.Client
	cfg    Config
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		client: &http.Client{Timeout: timeout},
		cfg:    cfg,
		logger: logger,
	}
}

type PreloadResult struct {
	OK                bool
	UnavailableReason string
	Response          *PreloadPayload
}

type ReceiptResult struct {
	OK                bool
	UnavailableReason string
	Response          *ReceiptPayload
}

type FinancialResult struct {
	OK                bool
	UnavailableReason string
	Response          *FinancialResponse
}

// Approved reports whether a completion/void/refund response carries a
// numeric response code at or below the approval threshold.
func (r *FinancialResponse) Approved() bool {
	if r == nil || r.ResponseCode == "" {
		return false
	}
	code, err := strconv.Atoi(r.ResponseCode)
	if err != nil {
		return false
	}
	return code <= ApprovalCodeMax
}

// PreloadParams carries the per-checkout fields; merchant credentials
// come from the client config.
type PreloadParams struct {
	OrderNo         string
	TxnTotal        string
	Tokens          []TokenHint
	ContactDetails  *ContactDetails
	ShippingDetails *AddressDetails
	BillingDetails  *AddressDetails
	CustID          string
}

func (c *Client) Preload(ctx context.Context, params PreloadParams) *PreloadResult {
	askCVV := "N"
	if c.cfg.AskCVV {
		askCVV = "Y"
	}

	req := PreloadRequest{
		StoreID:           c.cfg.StoreID,
		APIToken:          c.cfg.APIToken,
		CheckoutID:        c.cfg.CheckoutID,
		Environment:       c.cfg.Environment,
		Action:            "preload",
		TxnTotal:          params.TxnTotal,
		AskCVV:            askCVV,
		OrderNo:           params.OrderNo,
		DynamicDescriptor: c.cfg.DynamicDescriptor,
		Language:          c.cfg.Language,
		Token:             params.Tokens,
		ContactDetails:    params.ContactDetails,
		ShippingDetails:   params.ShippingDetails,
		BillingDetails:    params.BillingDetails,
		CustID:            params.CustID,
	}

	var envelope preloadEnvelope
	if reason := c.post(ctx, checkoutPath, req, &envelope); reason != "" {
		return &PreloadResult{UnavailableReason: reason}
	}
	return &PreloadResult{OK: true, Response: envelope.Response}
}

func (c *Client) Receipt(ctx context.Context, ticket string) *ReceiptResult {
	req := ReceiptRequest{
		StoreID:     c.cfg.StoreID,
		APIToken:    c.cfg.APIToken,
		CheckoutID:  c.cfg.CheckoutID,
		Environment: c.cfg.Environment,
		Action:      "receipt",
		Ticket:      ticket,
	}

	var envelope receiptEnvelope
	if reason := c.post(ctx, checkoutPath, req, &envelope); reason != "" {
		return &ReceiptResult{UnavailableReason: reason}
	}
	return &ReceiptResult{OK: true, Response: envelope.Response}
}

func (c *Client) Completion(ctx context.Context, txnNumber, orderID, amount string) *FinancialResult {
	return c.financial(ctx, completionPath, txnNumber, orderID, amount)
}

func (c *Client) Void(ctx context.Context, txnNumber, orderID, amount string) *FinancialResult {
	return c.financial(ctx, voidPath, txnNumber, orderID, amount)
}

func (c *Client) Refund(ctx context.Context, txnNumber, orderID, amount string) *FinancialResult {
	return c.financial(ctx, refundPath, txnNumber, orderID, amount)
}

func (c *Client) financial(ctx context.Context, path, txnNumber, orderID, amount string) *FinancialResult {
	req := FinancialRequest{
		StoreID:   c.cfg.StoreID,
		APIToken:  c.cfg.APIToken,
		TxnNumber: txnNumber,
		OrderID:   orderID,
		Amount:    amount,
	}

	var resp FinancialResponse
	if reason := c.post(ctx, path, req, &resp); reason != "" {
		return &FinancialResult{UnavailableReason: reason}
	}
	return &FinancialResult{OK: true, Response: &resp}
}

// post serializes the request, performs the call and decodes the
// response into out. A non-empty return value is the unavailable
// reason: the gateway could not be reached or gave an unusable reply.
func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) string {
	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("failed to marshal gateway request", "error", err, "path", path)
		return fmt.Sprintf("marshal error: %v", err)
	}

	url := c.cfg.BaseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		c.logger.Error("failed to create gateway request", "error", err, "url", url)
		return fmt.Sprintf("request creation error: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("gateway request failed", "error", err, "url", url)
		return fmt.Sprintf("service unreachable: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("failed to read gateway response", "error", err, "url", url)
		return fmt.Sprintf("response read error: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("gateway returned error status",
			"status", resp.StatusCode,
			"url", url,
			"response", string(respBody))
		return fmt.Sprintf("HTTP %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		c.logger.Error("failed to unmarshal gateway response",
			"error", err,
			"url", url,
			"response", string(respBody))
		return fmt.Sprintf("response unmarshal error: %v", err)
	}

	return ""
}
