package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/escrow_models"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/utils"
)

func (s *Store) GetOrder(_ context.Context, orderID uuid.UUID) (*order_models.Order, error) {
	defer s.lock()()
	o, ok := s.st.orders[orderID]
	if !ok {
		return nil, utils.ErrRecordNotFound
	}
	return &o, nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, orderID uuid.UUID, status, paymentStatus string, now time.Time) error {
	defer s.lock()()
	o, ok := s.st.orders[orderID]
	if !ok {
		return utils.ErrRecordNotFound
	}
	o.Status = status
	o.PaymentStatus = paymentStatus
	o.UpdatedAt = now
	s.st.orders[orderID] = o
	return nil
}

func (s *Store) CreateHoldIfAbsent(_ context.Context, h *escrow_models.PaymentHold) (*escrow_models.PaymentHold, error) {
	defer s.lock()()
	if existing, ok := s.st.holds[h.OrderID]; ok {
		return &existing, nil
	}
	stored := *h
	stored.UpdatedAt = stored.CreatedAt
	s.st.holds[h.OrderID] = stored
	return &stored, nil
}

func (s *Store) GetHoldByOrderID(_ context.Context, orderID uuid.UUID) (*escrow_models.PaymentHold, error) {
	defer s.lock()()
	h, ok := s.st.holds[orderID]
	if !ok {
		return nil, utils.ErrRecordNotFound
	}
	return &h, nil
}

func (s *Store) TransitionHold(_ context.Context, h *escrow_models.PaymentHold, from escrow_models.HoldStatus) error {
	defer s.lock()()
	stored, ok := s.st.holds[h.OrderID]
	if !ok || stored.ID != h.ID || stored.Status != from {
		return fmt.Errorf("%w: hold %s is no longer %s", utils.ErrInvalidStateTransition, h.ID, from)
	}
	stored.Status = h.Status
	stored.ReleasedAt = h.ReleasedAt
	stored.RefundedAt = h.RefundedAt
	stored.UpdatedAt = h.UpdatedAt
	s.st.holds[h.OrderID] = stored
	return nil
}
