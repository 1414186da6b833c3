package checkout

import (
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/checkout-payments/internal"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the checkout state carried between the ticket call
// and the follow-up order calls, signed so the storefront can hold it
// instead of a server-side session.
type SessionClaims struct {
	OrderNo    string `json:"order_no"`
	OrderToken string `json:"order_token,omitempty"`
	Ticket     string `json:"ticket"`
	CustomerNo string `json:"customer_no,omitempty"`
	Registered bool   `json:"registered,omitempty"`
	jwt.RegisteredClaims
}

type SessionSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionSigner(secret string, ttl time.Duration) *SessionSigner {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionSigner{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Sign issues a session token; registered claims are overwritten with
// a fresh issue/expiry window.
func (s *SessionSigner) Sign(claims *SessionClaims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Subject:   claims.OrderNo,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses a session token and returns its claims.
func (s *SessionSigner) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrSessionExpired
		}
		return nil, internal.ErrInvalidSession
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, internal.ErrInvalidSession
}
