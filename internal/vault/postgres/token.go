package postgres

import (
	tokenmodel "github.com/frahmantamala/checkout-payments/internal/core/datamodel/token"
	vaultpkg "github.com/frahmantamala/checkout-payments/internal/vault"
	"gorm.io/gorm"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) vaultpkg.RepositoryAPI {
	return &TokenRepository{
		db: db,
	}
}

func (r *TokenRepository) TokensForCustomer(customerNo string) ([]*tokenmodel.PaymentToken, error) {
	var tokens []*tokenmodel.PaymentToken
	err := r.db.Where("customer_no = ?", customerNo).Order("created_at ASC").Find(&tokens).Error
	return tokens, err
}

func (r *TokenRepository) Create(t *tokenmodel.PaymentToken) error {
	return r.db.Create(t).Error
}

func (r *TokenRepository) Delete(id int64) error {
	return r.db.Delete(&tokenmodel.PaymentToken{}, id).Error
}
