package postgres

import (
	"errors"
	"fmt"
	"time"

	ordermodel "github.com/frahmantamala/checkout-payments/internal/core/datamodel/order"
	"github.com/frahmantamala/checkout-payments/internal/gateway"
	orderpkg "github.com/frahmantamala/checkout-payments/internal/order"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) orderpkg.RepositoryAPI {
	return &OrderRepository{
		db: db,
	}
}

func (r *OrderRepository) AllocateOrderNo() (string, error) {
	var next int64
	if err := r.db.Raw("SELECT nextval('order_no_seq')").Scan(&next).Error; err != nil {
		return "", fmt.Errorf("failed to allocate order number: %w", err)
	}
	return fmt.Sprintf("%08d", next), nil
}

func (r *OrderRepository) Create(ord *ordermodel.Order) error {
	return r.db.Create(ord).Error
}

func (r *OrderRepository) GetByNumber(orderNo string) (*ordermodel.Order, error) {
	var ord ordermodel.Order
	err := r.db.Where("order_no = ?", orderNo).First(&ord).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderpkg.ErrNotFound
		}
		return nil, err
	}
	return &ord, nil
}

func (r *OrderRepository) GetByNumberAndToken(orderNo, orderToken string) (*ordermodel.Order, error) {
	var ord ordermodel.Order
	err := r.db.Where("order_no = ? AND order_token = ?", orderNo, orderToken).First(&ord).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderpkg.ErrNotFound
		}
		return nil, err
	}
	return &ord, nil
}

func (r *OrderRepository) Save(ord *ordermodel.Order) error {
	ord.UpdatedAt = time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(ord).Error
	})
}

func (r *OrderRepository) Fail(ord *ordermodel.Order) error {
	ord.Status = ordermodel.StatusFailed
	return r.Save(ord)
}

func (r *OrderRepository) Place(ord *ordermodel.Order) error {
	ord.Status = ordermodel.StatusNew
	ord.ExportStatus = ordermodel.ExportStatusReady
	return r.Save(ord)
}

func (r *OrderRepository) Cancel(ord *ordermodel.Order) error {
	ord.Status = ordermodel.StatusCancelled
	return r.Save(ord)
}

func (r *OrderRepository) AddNote(orderNo, subject, body string) error {
	note := &ordermodel.Note{
		OrderNo: orderNo,
		Subject: subject,
		Body:    body,
	}
	return r.db.Create(note).Error
}

func (r *OrderRepository) NotesForOrder(orderNo string) ([]*ordermodel.Note, error) {
	var notes []*ordermodel.Note
	err := r.db.Where("order_no = ?", orderNo).Order("created_at ASC").Find(&notes).Error
	return notes, err
}

func (r *OrderRepository) FindUnconfirmed(paymentMethod string, olderThan time.Time) ([]*ordermodel.Order, error) {
	var orders []*ordermodel.Order
	err := r.db.
		Where("status = ?", ordermodel.StatusCreated).
		Where("created_at < ?", olderThan).
		Where("payment_method = ?", paymentMethod).
		Where("ticket <> ''").
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

// FindPreAuthForCompletion applies the pre-auth conditions to both the
// open and new status disjuncts.
func (r *OrderRepository) FindPreAuthForCompletion() ([]*ordermodel.Order, error) {
	var orders []*ordermodel.Order
	err := r.db.
		Where("status IN ?", []ordermodel.Status{ordermodel.StatusOpen, ordermodel.StatusNew}).
		Where("transaction_code = ?", gateway.PreAuthTransactionCode).
		Where("confirmation_status = ?", ordermodel.ConfirmationStatusNotConfirmed).
		Where("shipping_status = ?", ordermodel.ShippingStatusShipped).
		Where("transaction_no <> ''").
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) FindCancelledForRefund() ([]*ordermodel.Order, error) {
	var orders []*ordermodel.Order
	err := r.db.
		Where("status = ?", ordermodel.StatusCancelled).
		Where("refund_status = ?", ordermodel.RefundNotSent).
		Where("transaction_no <> ''").
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}
