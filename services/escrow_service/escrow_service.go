package escrow_service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/escrow_models"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/models/settlement_models"
	"github.com/joy095/settlement/models/shared_models"
	"github.com/joy095/settlement/repository"
	"github.com/joy095/settlement/services/fee_service"
	"github.com/joy095/settlement/services/settlement_service"
	"github.com/joy095/settlement/utils"
)

// Service is the escrow ledger: one hold per paid order.
type Service struct {
	store       repository.Store
	fees        *fee_service.Calculator
	settlements *settlement_service.Service
	nowFn       func() time.Time
}

func NewService(store repository.Store, fees *fee_service.Calculator, settlements *settlement_service.Service, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{store: store, fees: fees, settlements: settlements, nowFn: nowFn}
}

func (s *Service) WithTx(tx repository.Store) *Service {
	return &Service{store: tx, fees: s.fees, settlements: s.settlements.WithTx(tx), nowFn: s.nowFn}
}

// CreateHold escrows the payment for a paid, open order whose total matches
// its parts. Calling it again for the same order returns the existing hold.
func (s *Service) CreateHold(ctx context.Context, orderID uuid.UUID, paymentReference string) (*escrow_models.PaymentHold, error) {
	if existing, err := s.store.GetHoldByOrderID(ctx, orderID); err == nil {
		return existing, nil
	} else if !errors.Is(err, utils.ErrRecordNotFound) {
		return nil, err
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}
	switch {
	case !order.IsPaid():
		return nil, fmt.Errorf("%w: order %s payment is %s", utils.ErrOrderNotSettleable, orderID, order.PaymentStatus)
	case order.Status == order_models.OrderStatusCancelled:
		return nil, fmt.Errorf("%w: order %s is cancelled", utils.ErrOrderNotSettleable, orderID)
	case !order.TotalsConsistent():
		return nil, fmt.Errorf("%w: order %s total %s != subtotal %s + delivery fee %s",
			utils.ErrOrderNotSettleable, orderID, order.TotalAmount, order.Subtotal, order.DeliveryFee)
	}
	shares, err := s.fees.Split(order.Subtotal, order.DeliveryFee)
	if err != nil {
		return nil, err
	}

	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, err
	}
	now := s.nowFn()
	hold, err := s.store.CreateHoldIfAbsent(ctx, &escrow_models.PaymentHold{
		ID:               id,
		OrderID:          order.ID,
		PaymentReference: strings.TrimSpace(paymentReference),
		TotalAmount:      order.TotalAmount,
		VendorAmount:     shares.VendorAmount,
		RiderAmount:      shares.RiderAmount,
		PlatformFee:      shares.PlatformFee,
		Status:           escrow_models.HoldStatusHeld,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return nil, err
	}
	logger.InfoLogger.Infof("payment hold %s for order %s: total=%s vendor=%s rider=%s platform=%s",
		hold.ID, hold.OrderID, hold.TotalAmount, hold.VendorAmount, hold.RiderAmount, hold.PlatformFee)
	return hold, nil
}

// Release settles a delivered, paid order: the hold moves to released and a
// pending settlement is recorded for each recipient, all or nothing.
func (s *Service) Release(ctx context.Context, orderID uuid.UUID) (*escrow_models.PaymentHold, []settlement_models.Settlement, error) {
	var (
		hold     *escrow_models.PaymentHold
		recorded []settlement_models.Settlement
	)
	err := s.store.RunInTx(ctx, func(tx repository.Store) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != order_models.OrderStatusDelivered || !order.IsPaid() {
			return fmt.Errorf("%w: order %s is %s/%s", utils.ErrOrderNotSettleable, order.ID, order.Status, order.PaymentStatus)
		}

		hold, err = tx.GetHoldByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := hold.Release(s.nowFn()); err != nil {
			return err
		}
		if err := tx.TransitionHold(ctx, hold, escrow_models.HoldStatusHeld); err != nil {
			return err
		}

		recorded, err = s.settlements.WithTx(tx).RecordPending(ctx, order, settlement_models.Shares{
			VendorAmount: hold.VendorAmount,
			RiderAmount:  hold.RiderAmount,
			PlatformFee:  hold.PlatformFee,
			Total:        hold.TotalAmount,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	logger.InfoLogger.Infof("payment hold %s released for order %s", hold.ID, orderID)
	return hold, recorded, nil
}

// Refund marks the order's hold refunded. Money movement for the refund is
// the caller's job.
func (s *Service) Refund(ctx context.Context, orderID uuid.UUID) (*escrow_models.PaymentHold, error) {
	hold, err := s.store.GetHoldByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := hold.Refund(s.nowFn()); err != nil {
		return nil, err
	}
	if err := s.store.TransitionHold(ctx, hold, escrow_models.HoldStatusHeld); err != nil {
		return nil, err
	}
	logger.InfoLogger.Infof("payment hold %s refunded for order %s", hold.ID, orderID)
	return hold, nil
}

func (s *Service) GetHold(ctx context.Context, orderID uuid.UUID) (*escrow_models.PaymentHold, error) {
	return s.store.GetHoldByOrderID(ctx, orderID)
}
