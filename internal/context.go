package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextCustomerKey ctxKey = "customer"

// Customer is the shopper bound to the current reconciliation context. A
// zero value means a guest session; batch sweeps run without any customer
// and resolve one from the order record when they need the wallet.
type Customer struct {
	CustomerNo    string
	Registered    bool
	Authenticated bool
}

func CustomerFromContext(ctx context.Context) (Customer, bool) {
	if ctx == nil {
		return Customer{}, false
	}
	if c, ok := ctx.Value(ContextCustomerKey).(Customer); ok {
		return c, true
	}
	return Customer{}, false
}

func ContextWithCustomer(ctx context.Context, c Customer) context.Context {
	return context.WithValue(ctx, ContextCustomerKey, c)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
