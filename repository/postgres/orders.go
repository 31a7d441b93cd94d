package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/utils"
)

func (s *Store) GetOrder(ctx context.Context, orderID uuid.UUID) (*order_models.Order, error) {
	var o order_models.Order
	err := s.q.QueryRow(ctx, `
		SELECT id, customer_id, vendor_id, rider_id, subtotal, delivery_fee, total_amount,
		       status, payment_status, created_at, updated_at
		FROM orders WHERE id = $1`, orderID).Scan(
		&o.ID, &o.CustomerID, &o.VendorID, &o.RiderID, &o.Subtotal, &o.DeliveryFee, &o.TotalAmount,
		&o.Status, &o.PaymentStatus, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status, paymentStatus string, now time.Time) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE orders SET status = $1, payment_status = $2, updated_at = $3
		WHERE id = $4`, status, paymentStatus, now, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrRecordNotFound
	}
	return nil
}
