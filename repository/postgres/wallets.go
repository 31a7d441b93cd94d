package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/utils"
	"github.com/shopspring/decimal"
)

func (s *Store) EnsureWallet(ctx context.Context, role wallet_models.RecipientRole, userID uuid.UUID) (*wallet_models.Wallet, error) {
	cfg, err := roleConfig(role)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	if _, err := s.q.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`, cfg.WalletTable), id, userID); err != nil {
		return nil, fmt.Errorf("create %s: %w", cfg.WalletTable, err)
	}

	var (
		w       = wallet_models.Wallet{Role: role}
		credits decimal.NullDecimal
	)
	err = s.q.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, user_id, available_balance, pending_balance, total_earned, total_withdrawn,
		       carbon_credits, virtual_account_id, created_at, updated_at
		FROM %s WHERE user_id = $1`, cfg.WalletTable), userID).Scan(
		&w.ID, &w.UserID, &w.AvailableBalance, &w.PendingBalance, &w.TotalEarned, &w.TotalWithdrawn,
		&credits, &w.VirtualAccountID, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	if credits.Valid {
		w.CarbonCredits = &credits.Decimal
	}
	return &w, nil
}

func (s *Store) GetVirtualAccount(ctx context.Context, profileID uuid.UUID, role wallet_models.RecipientRole) (*wallet_models.VirtualAccount, error) {
	var (
		va      wallet_models.VirtualAccount
		roleStr string
	)
	err := s.q.QueryRow(ctx, `
		SELECT id, profile_id, role, account_number, account_name, bank_name, bank_code, is_active, created_at
		FROM virtual_accounts WHERE profile_id = $1 AND role = $2 AND is_active`,
		profileID, string(role)).Scan(
		&va.ID, &va.ProfileID, &roleStr, &va.AccountNumber, &va.AccountName, &va.BankName,
		&va.BankCode, &va.IsActive, &va.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	va.Role = wallet_models.RecipientRole(roleStr)
	return &va, nil
}

func (s *Store) LinkVirtualAccount(ctx context.Context, role wallet_models.RecipientRole, walletID, virtualAccountID uuid.UUID) error {
	cfg, err := roleConfig(role)
	if err != nil {
		return err
	}
	_, err = s.q.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET virtual_account_id = $1, updated_at = NOW()
		WHERE id = $2 AND virtual_account_id IS NULL`, cfg.WalletTable), virtualAccountID, walletID)
	return err
}

func (s *Store) CreditWallet(ctx context.Context, role wallet_models.RecipientRole, userID uuid.UUID, amount decimal.Decimal, kind wallet_models.CreditKind, earning bool) error {
	cfg, err := roleConfig(role)
	if err != nil {
		return err
	}
	available, pending := amount, decimal.Zero
	if kind == wallet_models.CreditPending {
		available, pending = decimal.Zero, amount
	}
	earned := decimal.Zero
	if earning {
		earned = amount
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	_, err = s.q.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %[1]s AS w (id, user_id, available_balance, pending_balance, total_earned)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			available_balance = w.available_balance + EXCLUDED.available_balance,
			pending_balance   = w.pending_balance + EXCLUDED.pending_balance,
			total_earned      = w.total_earned + EXCLUDED.total_earned,
			updated_at        = NOW()`, cfg.WalletTable),
		id, userID, available, pending, earned,
	)
	if err != nil {
		return fmt.Errorf("credit %s: %w", cfg.WalletTable, err)
	}
	return nil
}

func (s *Store) DebitWallet(ctx context.Context, role wallet_models.RecipientRole, userID uuid.UUID, amount decimal.Decimal) error {
	cfg, err := roleConfig(role)
	if err != nil {
		return err
	}
	tag, err := s.q.Exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET available_balance = available_balance - $1,
		    total_withdrawn   = total_withdrawn + $1,
		    updated_at        = NOW()
		WHERE user_id = $2 AND available_balance >= $1`, cfg.WalletTable), amount, userID)
	if err != nil {
		return fmt.Errorf("debit %s: %w", cfg.WalletTable, err)
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrInsufficientBalance
	}
	return nil
}

func (s *Store) RestoreWallet(ctx context.Context, role wallet_models.RecipientRole, userID uuid.UUID, amount decimal.Decimal) error {
	cfg, err := roleConfig(role)
	if err != nil {
		return err
	}
	tag, err := s.q.Exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET available_balance = available_balance + $1,
		    total_withdrawn   = GREATEST(total_withdrawn - $1, 0),
		    updated_at        = NOW()
		WHERE user_id = $2`, cfg.WalletTable), amount, userID)
	if err != nil {
		return fmt.Errorf("restore %s: %w", cfg.WalletTable, err)
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrRecordNotFound
	}
	return nil
}

func (s *Store) GetBankAccount(ctx context.Context, role wallet_models.RecipientRole, ownerID, bankAccountID uuid.UUID) (*wallet_models.BankAccount, error) {
	cfg, err := roleConfig(role)
	if err != nil {
		return nil, err
	}
	var b wallet_models.BankAccount
	err = s.q.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, owner_id, bank_name, bank_code, account_number, account_name, created_at, updated_at
		FROM %s WHERE id = $1 AND owner_id = $2`, cfg.BankAccountTable), bankAccountID, ownerID).Scan(
		&b.ID, &b.OwnerID, &b.BankName, &b.BankCode, &b.AccountNumber, &b.AccountName, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *Store) ListBankAccounts(ctx context.Context, role wallet_models.RecipientRole, ownerID uuid.UUID) ([]wallet_models.BankAccount, error) {
	cfg, err := roleConfig(role)
	if err != nil {
		return nil, err
	}
	rows, err := s.q.Query(ctx, fmt.Sprintf(`
		SELECT id, owner_id, bank_name, bank_code, account_number, account_name, created_at, updated_at
		FROM %s WHERE owner_id = $1 ORDER BY created_at DESC`, cfg.BankAccountTable), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}
	defer rows.Close()

	accounts := []wallet_models.BankAccount{}
	for rows.Next() {
		var b wallet_models.BankAccount
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.BankName, &b.BankCode, &b.AccountNumber, &b.AccountName, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan bank account: %w", err)
		}
		accounts = append(accounts, b)
	}
	return accounts, rows.Err()
}
