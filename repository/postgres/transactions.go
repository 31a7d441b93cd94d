package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/shared_models"
	"github.com/joy095/settlement/models/transaction_models"
	"github.com/joy095/settlement/models/wallet_models"
)

func (s *Store) InsertTransaction(ctx context.Context, role wallet_models.RecipientRole, t *transaction_models.Transaction) error {
	cfg, err := roleConfig(role)
	if err != nil {
		return err
	}
	_, err = s.q.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (transaction_id, user_id, type, amount, status, description,
			reference_id, reference_type, metadata, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, cfg.TransactionTable),
		t.TransactionID, t.UserID, t.Type, t.Amount, t.Status, t.Description,
		t.ReferenceID, t.ReferenceType, metadataOrEmpty(t.Metadata), t.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", cfg.TransactionTable, err)
	}
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, role wallet_models.RecipientRole, userID uuid.UUID, page shared_models.Pagination) ([]transaction_models.Transaction, error) {
	cfg, err := roleConfig(role)
	if err != nil {
		return nil, err
	}
	page = page.Normalize()
	rows, err := s.q.Query(ctx, fmt.Sprintf(`
		SELECT transaction_id, user_id, type, amount, status, description,
		       reference_id, reference_type, metadata, processed_at
		FROM %s WHERE user_id = $1
		ORDER BY processed_at DESC LIMIT $2 OFFSET $3`, cfg.TransactionTable), userID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", cfg.TransactionTable, err)
	}
	defer rows.Close()

	var out []transaction_models.Transaction
	for rows.Next() {
		var t transaction_models.Transaction
		if err := rows.Scan(&t.TransactionID, &t.UserID, &t.Type, &t.Amount, &t.Status, &t.Description,
			&t.ReferenceID, &t.ReferenceType, &t.Metadata, &t.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", cfg.TransactionTable, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) DeletePendingTransactions(ctx context.Context, role wallet_models.RecipientRole, referenceType, referenceID string) error {
	cfg, err := roleConfig(role)
	if err != nil {
		return err
	}
	_, err = s.q.Exec(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE reference_type = $1 AND reference_id = $2 AND status = 'pending'`, cfg.TransactionTable),
		referenceType, referenceID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", cfg.TransactionTable, err)
	}
	return nil
}
