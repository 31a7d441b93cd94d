package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joy095/settlement/models/settlement_models"
	"github.com/joy095/settlement/models/shared_models"
	"github.com/joy095/settlement/models/wallet_models"
)

const settlementColumns = `id, order_id, recipient_id, recipient_type, amount, fee, net_amount,
	status, payout_request_id, created_at, updated_at`

func scanSettlement(row pgx.Row) (settlement_models.Settlement, error) {
	var (
		st            settlement_models.Settlement
		recipientType string
		status        string
	)
	err := row.Scan(&st.ID, &st.OrderID, &st.RecipientID, &recipientType, &st.Amount, &st.Fee,
		&st.NetAmount, &status, &st.PayoutRequestID, &st.CreatedAt, &st.UpdatedAt)
	st.RecipientType = wallet_models.RecipientRole(recipientType)
	st.Status = settlement_models.Status(status)
	return st, err
}

func (s *Store) listSettlements(ctx context.Context, query string, args ...any) ([]settlement_models.Settlement, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query settlements: %w", err)
	}
	defer rows.Close()

	var out []settlement_models.Settlement
	for rows.Next() {
		st, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan settlement: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) InsertSettlement(ctx context.Context, st *settlement_models.Settlement) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		INSERT INTO settlements (id, order_id, recipient_id, recipient_type, amount, fee, net_amount,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (order_id, recipient_type) DO NOTHING`,
		st.ID, st.OrderID, st.RecipientID, string(st.RecipientType), st.Amount, st.Fee, st.NetAmount,
		string(st.Status), st.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert settlement: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) GetSettlement(ctx context.Context, id uuid.UUID) (*settlement_models.Settlement, error) {
	st, err := scanSettlement(s.q.QueryRow(ctx, `SELECT `+settlementColumns+` FROM settlements WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}

func (s *Store) ListSettlementsByOrder(ctx context.Context, orderID uuid.UUID) ([]settlement_models.Settlement, error) {
	return s.listSettlements(ctx, `SELECT `+settlementColumns+` FROM settlements
		WHERE order_id = $1 ORDER BY recipient_type`, orderID)
}

func (s *Store) ListSettlements(ctx context.Context, role wallet_models.RecipientRole, recipientID uuid.UUID, page shared_models.Pagination) ([]settlement_models.Settlement, error) {
	page = page.Normalize()
	return s.listSettlements(ctx, `SELECT `+settlementColumns+` FROM settlements
		WHERE recipient_type = $1 AND recipient_id = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`, string(role), recipientID, page.Limit, page.Offset)
}

func (s *Store) ListUnallocatedSettlements(ctx context.Context, role wallet_models.RecipientRole, recipientID uuid.UUID) ([]settlement_models.Settlement, error) {
	return s.listSettlements(ctx, `SELECT `+settlementColumns+` FROM settlements
		WHERE recipient_type = $1 AND recipient_id = $2 AND status = 'pending' AND payout_request_id IS NULL
		ORDER BY created_at, id
		FOR UPDATE`, string(role), recipientID)
}

func (s *Store) AllocateSettlements(ctx context.Context, ids []uuid.UUID, payoutRequestID uuid.UUID, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	_, err := s.q.Exec(ctx, `
		UPDATE settlements SET payout_request_id = $1, updated_at = $2
		WHERE id = ANY($3::uuid[]) AND payout_request_id IS NULL`, payoutRequestID, now, raw)
	if err != nil {
		return fmt.Errorf("allocate settlements: %w", err)
	}
	return nil
}

func (s *Store) UpdateSettlementStatus(ctx context.Context, id uuid.UUID, status settlement_models.Status, now time.Time) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE settlements SET status = $1, updated_at = $2
		WHERE id = $3 AND status = 'pending'`, string(status), now, id)
	if err != nil {
		return false, fmt.Errorf("update settlement: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) UpdateSettlementsByPayout(ctx context.Context, payoutRequestID uuid.UUID, status settlement_models.Status, now time.Time) (int64, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE settlements SET status = $1, updated_at = $2
		WHERE payout_request_id = $3 AND status = 'pending'`, string(status), now, payoutRequestID)
	if err != nil {
		return 0, fmt.Errorf("update settlements for payout: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) ReleaseSettlements(ctx context.Context, payoutRequestID uuid.UUID, now time.Time) (int64, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE settlements SET status = 'pending', payout_request_id = NULL, updated_at = $1
		WHERE payout_request_id = $2 AND status IN ('pending', 'failed')`, now, payoutRequestID)
	if err != nil {
		return 0, fmt.Errorf("release settlements for payout: %w", err)
	}
	return tag.RowsAffected(), nil
}
