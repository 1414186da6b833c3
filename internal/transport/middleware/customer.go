package middleware

import (
	"net/http"

	"github.com/frahmantamala/checkout-payments/internal"
)

// Customer binds the shopper identity forwarded by the storefront into
// the request context. The storefront authenticates the shopper; this
// service trusts its headers the way it trusts the rest of the platform.
func Customer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		customerNo := r.Header.Get("X-Customer-No")
		if customerNo == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := internal.ContextWithCustomer(r.Context(), internal.Customer{
			CustomerNo:    customerNo,
			Registered:    r.Header.Get("X-Customer-Registered") == "true",
			Authenticated: r.Header.Get("X-Customer-Authenticated") == "true",
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
