package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/escrow_models"
	"github.com/joy095/settlement/utils"
)

const holdColumns = `id, order_id, payment_reference, total_amount, vendor_amount, rider_amount,
	platform_fee, status, released_at, refunded_at, created_at, updated_at`

func (s *Store) CreateHoldIfAbsent(ctx context.Context, h *escrow_models.PaymentHold) (*escrow_models.PaymentHold, error) {
	_, err := s.q.Exec(ctx, `
		INSERT INTO payment_holds (id, order_id, payment_reference, total_amount, vendor_amount,
			rider_amount, platform_fee, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (order_id) DO NOTHING`,
		h.ID, h.OrderID, h.PaymentReference, h.TotalAmount, h.VendorAmount,
		h.RiderAmount, h.PlatformFee, string(h.Status), h.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert payment hold: %w", err)
	}
	return s.GetHoldByOrderID(ctx, h.OrderID)
}

func (s *Store) GetHoldByOrderID(ctx context.Context, orderID uuid.UUID) (*escrow_models.PaymentHold, error) {
	var (
		h      escrow_models.PaymentHold
		status string
	)
	err := s.q.QueryRow(ctx, `SELECT `+holdColumns+` FROM payment_holds WHERE order_id = $1`, orderID).Scan(
		&h.ID, &h.OrderID, &h.PaymentReference, &h.TotalAmount, &h.VendorAmount, &h.RiderAmount,
		&h.PlatformFee, &status, &h.ReleasedAt, &h.RefundedAt, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	h.Status = escrow_models.HoldStatus(status)
	return &h, nil
}

func (s *Store) TransitionHold(ctx context.Context, h *escrow_models.PaymentHold, from escrow_models.HoldStatus) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE payment_holds
		SET status = $1, released_at = $2, refunded_at = $3, updated_at = $4
		WHERE id = $5 AND status = $6`,
		string(h.Status), h.ReleasedAt, h.RefundedAt, h.UpdatedAt, h.ID, string(from),
	)
	if err != nil {
		return fmt.Errorf("update payment hold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: hold %s is no longer %s", utils.ErrInvalidStateTransition, h.ID, from)
	}
	return nil
}
