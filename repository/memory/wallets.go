package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/utils"
	"github.com/shopspring/decimal"
)

func (s *Store) EnsureWallet(_ context.Context, role wallet_models.RecipientRole, userID uuid.UUID) (*wallet_models.Wallet, error) {
	if _, err := wallet_models.ConfigFor(role); err != nil {
		return nil, err
	}
	defer s.lock()()
	w := s.walletLocked(role, userID)
	s.st.wallets[roleKey{role, userID}] = w
	return &w, nil
}

func (s *Store) GetVirtualAccount(_ context.Context, profileID uuid.UUID, role wallet_models.RecipientRole) (*wallet_models.VirtualAccount, error) {
	defer s.lock()()
	va, ok := s.st.virtualAccounts[roleKey{role, profileID}]
	if !ok || !va.IsActive {
		return nil, utils.ErrRecordNotFound
	}
	return &va, nil
}

func (s *Store) LinkVirtualAccount(_ context.Context, role wallet_models.RecipientRole, walletID, virtualAccountID uuid.UUID) error {
	defer s.lock()()
	for k, w := range s.st.wallets {
		if k.role == role && w.ID == walletID && w.VirtualAccountID == nil {
			id := virtualAccountID
			w.VirtualAccountID = &id
			s.st.wallets[k] = w
		}
	}
	return nil
}

func (s *Store) CreditWallet(_ context.Context, role wallet_models.RecipientRole, userID uuid.UUID, amount decimal.Decimal, kind wallet_models.CreditKind, earning bool) error {
	if _, err := wallet_models.ConfigFor(role); err != nil {
		return err
	}
	defer s.lock()()
	w := s.walletLocked(role, userID)
	if kind == wallet_models.CreditPending {
		w.PendingBalance = w.PendingBalance.Add(amount)
	} else {
		w.AvailableBalance = w.AvailableBalance.Add(amount)
	}
	if earning {
		w.TotalEarned = w.TotalEarned.Add(amount)
	}
	w.UpdatedAt = s.now()
	s.st.wallets[roleKey{role, userID}] = w
	return nil
}

func (s *Store) DebitWallet(_ context.Context, role wallet_models.RecipientRole, userID uuid.UUID, amount decimal.Decimal) error {
	defer s.lock()()
	w, ok := s.st.wallets[roleKey{role, userID}]
	if !ok || w.AvailableBalance.LessThan(amount) {
		return utils.ErrInsufficientBalance
	}
	w.AvailableBalance = w.AvailableBalance.Sub(amount)
	w.TotalWithdrawn = w.TotalWithdrawn.Add(amount)
	w.UpdatedAt = s.now()
	s.st.wallets[roleKey{role, userID}] = w
	return nil
}

func (s *Store) RestoreWallet(_ context.Context, role wallet_models.RecipientRole, userID uuid.UUID, amount decimal.Decimal) error {
	defer s.lock()()
	w, ok := s.st.wallets[roleKey{role, userID}]
	if !ok {
		return utils.ErrRecordNotFound
	}
	w.AvailableBalance = w.AvailableBalance.Add(amount)
	w.TotalWithdrawn = decimal.Max(w.TotalWithdrawn.Sub(amount), decimal.Zero)
	w.UpdatedAt = s.now()
	s.st.wallets[roleKey{role, userID}] = w
	return nil
}

func (s *Store) GetBankAccount(_ context.Context, role wallet_models.RecipientRole, ownerID, bankAccountID uuid.UUID) (*wallet_models.BankAccount, error) {
	defer s.lock()()
	b, ok := s.st.bankAccounts[roleKey{role, bankAccountID}]
	if !ok || b.OwnerID != ownerID {
		return nil, utils.ErrRecordNotFound
	}
	return &b, nil
}

func (s *Store) ListBankAccounts(_ context.Context, role wallet_models.RecipientRole, ownerID uuid.UUID) ([]wallet_models.BankAccount, error) {
	if _, err := wallet_models.ConfigFor(role); err != nil {
		return nil, err
	}
	defer s.lock()()
	accounts := []wallet_models.BankAccount{}
	for k, b := range s.st.bankAccounts {
		if k.role == role && b.OwnerID == ownerID {
			accounts = append(accounts, b)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].CreatedAt.After(accounts[j].CreatedAt) })
	return accounts, nil
}
