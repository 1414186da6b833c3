package order

import (
	"errors"
	"time"

	ordermodel "github.com/frahmantamala/checkout-payments/internal/core/datamodel/order"
)

var ErrNotFound = errors.New("order not found")

// RepositoryAPI is the narrow contract the reconciliation core uses
// against the platform's order store. Every mutating call commits its
// changes in a single transaction; callers never observe a partially
// applied order.
type RepositoryAPI interface {
	// AllocateOrderNo reserves the next order number before the
	// gateway preload call; the number is burned even if checkout is
	// later abandoned.
	AllocateOrderNo() (string, error)

	Create(ord *ordermodel.Order) error
	GetByNumber(orderNo string) (*ordermodel.Order, error)
	GetByNumberAndToken(orderNo, orderToken string) (*ordermodel.Order, error)

	// Save persists all mutated fields of the order.
	Save(ord *ordermodel.Order) error

	// Fail moves the order to failed status.
	Fail(ord *ordermodel.Order) error

	// Place finalizes a created order: new status, export ready.
	Place(ord *ordermodel.Order) error

	// Cancel moves the order to cancelled status.
	Cancel(ord *ordermodel.Order) error

	AddNote(orderNo, subject, body string) error
	NotesForOrder(orderNo string) ([]*ordermodel.Note, error)

	// FindUnconfirmed selects candidates for the payment confirmation
	// sweep: created orders older than the threshold, tagged with the
	// given payment method and still holding a gateway ticket.
	FindUnconfirmed(paymentMethod string, olderThan time.Time) ([]*ordermodel.Order, error)

	// FindPreAuthForCompletion selects open or new pre-auth orders
	// that shipped but were never captured.
	FindPreAuthForCompletion() ([]*ordermodel.Order, error)

	// FindCancelledForRefund selects cancelled orders whose refund was
	// never sent.
	FindCancelledForRefund() ([]*ordermodel.Order, error)
}
