package vault

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/frahmantamala/checkout-payments/internal"
	ordermodel "github.com/frahmantamala/checkout-payments/internal/core/datamodel/order"
	tokenmodel "github.com/frahmantamala/checkout-payments/internal/core/datamodel/token"
	"github.com/frahmantamala/checkout-payments/internal/gateway"
)

// MaxTokens bounds the number of vaulted cards per customer; overflow
// evicts the oldest entries by creation timestamp.
const MaxTokens = 3

// RepositoryAPI is the wallet store contract.
type RepositoryAPI interface {
	TokensForCustomer(customerNo string) ([]*tokenmodel.PaymentToken, error)
	Create(t *tokenmodel.PaymentToken) error
	Delete(id int64) error
}

// TokenDraft is a vault entry candidate assembled by the reconciliation
// engine from the receipt and the echoed request card metadata.
type TokenDraft struct {
	DataKey    string
	IssuerID   string
	CardType   string
	CardHolder string
	CardNumber string
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// resolveCustomer prefers the customer bound to the current context and
// falls back to the customer number stored on the order. An empty
// result is not an error; vault operations just no-op.
func (s *Service) resolveCustomer(ctx context.Context, ord *ordermodel.Order) string {
	if c, ok := internal.CustomerFromContext(ctx); ok && c.CustomerNo != "" {
		return c.CustomerNo
	}
	if ord != nil {
		return ord.CustomerNo
	}
	return ""
}

// Save appends a vault entry for the order's customer and evicts the
// oldest entries beyond MaxTokens. Returns whether the token was saved.
func (s *Service) Save(ctx context.Context, draft *TokenDraft, ord *ordermodel.Order) (bool, error) {
	if ord == nil || !ord.RegisteredCustomer || draft == nil || draft.DataKey == "" {
		return false, nil
	}

	customerNo := s.resolveCustomer(ctx, ord)
	if customerNo == "" {
		return false, nil
	}

	entry := &tokenmodel.PaymentToken{
		CustomerNo: customerNo,
		DataKey:    draft.DataKey,
		IssuerID:   draft.IssuerID,
		CardType:   draft.CardType,
		CardHolder: draft.CardHolder,
		CardNumber: draft.CardNumber,
	}

	if err := s.repo.Create(entry); err != nil {
		s.logger.Error("failed to save payment token", "error", err, "customer_no", customerNo)
		return false, fmt.Errorf("failed to save payment token: %w", err)
	}

	tokens, err := s.repo.TokensForCustomer(customerNo)
	if err != nil {
		s.logger.Error("failed to list payment tokens after save", "error", err, "customer_no", customerNo)
		return true, nil
	}

	if len(tokens) > MaxTokens {
		sort.Slice(tokens, func(i, j int) bool {
			return tokens[i].CreatedAt.Before(tokens[j].CreatedAt)
		})
		for _, stale := range tokens[:len(tokens)-MaxTokens] {
			if err := s.repo.Delete(stale.ID); err != nil {
				s.logger.Error("failed to evict payment token",
					"error", err,
					"customer_no", customerNo,
					"token_id", stale.ID)
			}
		}
	}

	s.logger.Info("payment token saved", "customer_no", customerNo)
	return true, nil
}

// Invalidate removes every stored token the gateway no longer vouches
// for: absent from the validity list, or present with is_valid=false.
// Returns whether anything was removed.
func (s *Service) Invalidate(ctx context.Context, validity []gateway.VaultEntry, ord *ordermodel.Order) (bool, error) {
	if ord == nil || !ord.RegisteredCustomer || len(validity) == 0 {
		return false, nil
	}

	customerNo := s.resolveCustomer(ctx, ord)
	if customerNo == "" {
		return false, nil
	}

	tokens, err := s.repo.TokensForCustomer(customerNo)
	if err != nil {
		return false, fmt.Errorf("failed to list payment tokens: %w", err)
	}

	valid := make(map[string]bool, len(validity))
	for _, entry := range validity {
		valid[entry.DataKey] = entry.IsValid
	}

	removed := false
	for _, stored := range tokens {
		if valid[stored.DataKey] {
			continue
		}
		if err := s.repo.Delete(stored.ID); err != nil {
			s.logger.Error("failed to remove invalid payment token",
				"error", err,
				"customer_no", customerNo,
				"token_id", stored.ID)
			continue
		}
		removed = true
	}

	if removed {
		s.logger.Info("invalid payment tokens removed", "customer_no", customerNo)
	}
	return removed, nil
}

// List returns the customer's saved tokens reduced to the {data_key,
// issuer_id} pairs the preload call accepts as authorization hints.
func (s *Service) List(ctx context.Context, customerNo string) ([]gateway.TokenHint, error) {
	if customerNo == "" {
		return nil, nil
	}

	tokens, err := s.repo.TokensForCustomer(customerNo)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment tokens: %w", err)
	}

	hints := make([]gateway.TokenHint, 0, len(tokens))
	for _, t := range tokens {
		hints = append(hints, gateway.TokenHint{
			DataKey:  t.DataKey,
			IssuerID: t.IssuerID,
		})
	}
	return hints, nil
}

// Find returns the stored token matching the given data key and issuer
// id, or nil when the customer has no such token.
func (s *Service) Find(ctx context.Context, customerNo, dataKey, issuerID string) (*tokenmodel.PaymentToken, error) {
	if customerNo == "" {
		return nil, nil
	}

	tokens, err := s.repo.TokensForCustomer(customerNo)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment tokens: %w", err)
	}

	for _, t := range tokens {
		if t.DataKey == dataKey && t.IssuerID == issuerID {
			return t, nil
		}
	}
	return nil, nil
}
