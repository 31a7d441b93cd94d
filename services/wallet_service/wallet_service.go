package wallet_service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/repository"
	"github.com/joy095/settlement/utils"
	"github.com/shopspring/decimal"
)

// Service is the per-role wallet store.
type Service struct {
	store repository.Store
}

func NewService(store repository.Store) *Service {
	return &Service{store: store}
}

// WithTx returns a Service bound to an open transaction.
func (s *Service) WithTx(tx repository.Store) *Service {
	return &Service{store: tx}
}

// GetBalance returns the wallet for (userID, role), creating it on first
// access and linking the owner's virtual account if one exists.
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID, role wallet_models.RecipientRole) (*wallet_models.Wallet, error) {
	if _, err := wallet_models.ConfigFor(role); err != nil {
		return nil, err
	}

	w, err := s.store.EnsureWallet(ctx, role, userID)
	if err != nil {
		return nil, fmt.Errorf("load %s wallet: %w", role, err)
	}

	va, err := s.store.GetVirtualAccount(ctx, userID, role)
	switch {
	case errors.Is(err, utils.ErrRecordNotFound):
		return w, nil
	case err != nil:
		// The balance is still correct without the account details.
		logger.WarnLogger.Warnf("virtual account lookup failed for %s %s: %v", role, userID, err)
		return w, nil
	}

	if w.VirtualAccountID == nil {
		if err := s.store.LinkVirtualAccount(ctx, role, w.ID, va.ID); err != nil {
			logger.WarnLogger.Warnf("failed to link virtual account %s to wallet %s: %v", va.ID, w.ID, err)
		} else {
			w.VirtualAccountID = &va.ID
		}
	}
	w.VirtualAccount = va
	return w, nil
}

// Credit adds amount to the selected balance.
func (s *Service) Credit(ctx context.Context, userID uuid.UUID, role wallet_models.RecipientRole, amount decimal.Decimal, kind wallet_models.CreditKind) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	return s.store.CreditWallet(ctx, role, userID, amount, kind, true)
}

// Debit removes amount from the available balance. It either succeeds fully
// or returns ErrInsufficientBalance with the wallet unchanged.
func (s *Service) Debit(ctx context.Context, userID uuid.UUID, role wallet_models.RecipientRole, amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	return s.store.DebitWallet(ctx, role, userID, amount)
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return utils.ErrNegativeAmount
	}
	if amount.IsZero() {
		return utils.ErrInvalidAmount
	}
	return nil
}

// ListBankAccounts returns the payout destinations the owner has on file.
func (s *Service) ListBankAccounts(ctx context.Context, userID uuid.UUID, role wallet_models.RecipientRole) ([]wallet_models.BankAccount, error) {
	return s.store.ListBankAccounts(ctx, role, userID)
}

func (s *Service) GetBankAccount(ctx context.Context, userID uuid.UUID, role wallet_models.RecipientRole, bankAccountID uuid.UUID) (*wallet_models.BankAccount, error) {
	b, err := s.store.GetBankAccount(ctx, role, userID, bankAccountID)
	if errors.Is(err, utils.ErrRecordNotFound) {
		return nil, utils.ErrBankAccountNotFound
	}
	return b, err
}
