package checkout_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/checkout-payments/internal"
	"github.com/frahmantamala/checkout-payments/internal/checkout"
)

var _ = Describe("SessionSigner", func() {
	var signer *checkout.SessionSigner

	BeforeEach(func() {
		signer = checkout.NewSessionSigner(sessionSecret, 30*time.Minute)
	})

	It("should round-trip the checkout claims", func() {
		token, err := signer.Sign(&checkout.SessionClaims{
			OrderNo:    "00000042",
			OrderToken: "order-token-1",
			Ticket:     "ticket-abc",
			CustomerNo: "cust-7",
			Registered: true,
		})
		Expect(err).ToNot(HaveOccurred())

		claims, err := signer.Validate(token)
		Expect(err).ToNot(HaveOccurred())
		Expect(claims.OrderNo).To(Equal("00000042"))
		Expect(claims.OrderToken).To(Equal("order-token-1"))
		Expect(claims.Ticket).To(Equal("ticket-abc"))
		Expect(claims.CustomerNo).To(Equal("cust-7"))
		Expect(claims.Registered).To(BeTrue())
	})

	It("should reject an expired session", func() {
		shortLived := checkout.NewSessionSigner(sessionSecret, time.Nanosecond)
		token, err := shortLived.Sign(&checkout.SessionClaims{OrderNo: "00000042"})
		Expect(err).ToNot(HaveOccurred())

		time.Sleep(10 * time.Millisecond)

		_, err = shortLived.Validate(token)
		Expect(err).To(Equal(internal.ErrSessionExpired))
	})

	It("should reject a session signed with a different secret", func() {
		other := checkout.NewSessionSigner("another-secret-another-secret-xx", 30*time.Minute)
		token, err := other.Sign(&checkout.SessionClaims{OrderNo: "00000042"})
		Expect(err).ToNot(HaveOccurred())

		_, err = signer.Validate(token)
		Expect(err).To(Equal(internal.ErrInvalidSession))
	})

	It("should reject garbage tokens", func() {
		_, err := signer.Validate("not-a-jwt")
		Expect(err).To(Equal(internal.ErrInvalidSession))
	})
})
