package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joy095/settlement/models/payout_models"
	"github.com/joy095/settlement/models/shared_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/repository"
	"github.com/joy095/settlement/utils"
)

const payoutColumns = `id, recipient_id, bank_account_id, amount, fee, net_amount, status,
	transfer_reference, transfer_metadata, failure_reason, processed_at, wallet_restored_at,
	created_at, updated_at`

func scanPayout(row pgx.Row, role wallet_models.RecipientRole) (payout_models.PayoutRequest, error) {
	var (
		p      = payout_models.PayoutRequest{Role: role}
		status string
	)
	err := row.Scan(&p.ID, &p.RecipientID, &p.BankAccountID, &p.Amount, &p.Fee, &p.NetAmount, &status,
		&p.TransferReference, &p.TransferMetadata, &p.FailureReason, &p.ProcessedAt, &p.WalletRestoredAt,
		&p.CreatedAt, &p.UpdatedAt)
	p.Status = payout_models.Status(status)
	return p, err
}

func metadataOrEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{}`)
	}
	return raw
}

func (s *Store) InsertPayoutRequest(ctx context.Context, p *payout_models.PayoutRequest) error {
	cfg, err := roleConfig(p.Role)
	if err != nil {
		return err
	}
	_, err = s.q.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, recipient_id, bank_account_id, amount, fee, net_amount, status,
			transfer_reference, transfer_metadata, failure_reason, processed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`, cfg.PayoutTable),
		p.ID, p.RecipientID, p.BankAccountID, p.Amount, p.Fee, p.NetAmount, string(p.Status),
		p.TransferReference, metadataOrEmpty(p.TransferMetadata), p.FailureReason, p.ProcessedAt, p.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return utils.ErrDuplicateReference
		}
		return fmt.Errorf("insert %s: %w", cfg.PayoutTable, err)
	}
	return nil
}

func (s *Store) GetPayoutRequest(ctx context.Context, role wallet_models.RecipientRole, id uuid.UUID) (*payout_models.PayoutRequest, error) {
	cfg, err := roleConfig(role)
	if err != nil {
		return nil, err
	}
	p, err := scanPayout(s.q.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, payoutColumns, cfg.PayoutTable), id), role)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) GetPayoutRequestByReference(ctx context.Context, role wallet_models.RecipientRole, reference string) (*payout_models.PayoutRequest, error) {
	cfg, err := roleConfig(role)
	if err != nil {
		return nil, err
	}
	p, err := scanPayout(s.q.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE transfer_reference = $1`, payoutColumns, cfg.PayoutTable), reference), role)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) ListPayoutRequests(ctx context.Context, role wallet_models.RecipientRole, recipientID uuid.UUID, page shared_models.Pagination) ([]payout_models.PayoutRequest, error) {
	cfg, err := roleConfig(role)
	if err != nil {
		return nil, err
	}
	page = page.Normalize()
	rows, err := s.q.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM %s WHERE recipient_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, payoutColumns, cfg.PayoutTable),
		recipientID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", cfg.PayoutTable, err)
	}
	defer rows.Close()

	var out []payout_models.PayoutRequest
	for rows.Next() {
		p, err := scanPayout(rows, role)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", cfg.PayoutTable, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) UpdatePayoutStatus(ctx context.Context, role wallet_models.RecipientRole, id uuid.UUID, u repository.PayoutStatusUpdate) error {
	cfg, err := roleConfig(role)
	if err != nil {
		return err
	}
	tag, err := s.q.Exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET status = $1, processed_at = $2, failure_reason = $3,
		    transfer_metadata = COALESCE($4, transfer_metadata), updated_at = $5
		WHERE id = $6`, cfg.PayoutTable),
		string(u.Status), u.ProcessedAt, u.FailureReason, nullableJSON(u.Metadata), u.UpdatedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", cfg.PayoutTable, err)
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrRecordNotFound
	}
	return nil
}

func (s *Store) MarkPayoutRestored(ctx context.Context, role wallet_models.RecipientRole, id uuid.UUID, now time.Time) (bool, error) {
	cfg, err := roleConfig(role)
	if err != nil {
		return false, err
	}
	tag, err := s.q.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET wallet_restored_at = $1, updated_at = $1
		WHERE id = $2 AND status = 'failed' AND wallet_restored_at IS NULL`, cfg.PayoutTable), now, id)
	if err != nil {
		return false, fmt.Errorf("mark %s restored: %w", cfg.PayoutTable, err)
	}
	return tag.RowsAffected() == 1, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

func (s *Store) DeletePendingPayoutRequest(ctx context.Context, role wallet_models.RecipientRole, id uuid.UUID) (bool, error) {
	cfg, err := roleConfig(role)
	if err != nil {
		return false, err
	}
	tag, err := s.q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND status = 'pending'`, cfg.PayoutTable), id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", cfg.PayoutTable, err)
	}
	return tag.RowsAffected() == 1, nil
}
