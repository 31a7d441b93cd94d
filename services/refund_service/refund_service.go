package refund_service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/escrow_models"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/models/shared_models"
	"github.com/joy095/settlement/models/transaction_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/repository"
	"github.com/joy095/settlement/services/escrow_service"
	"github.com/joy095/settlement/utils"
)

const DefaultWindow = 24 * time.Hour

// Service cancels paid, undelivered orders inside the refund window.
type Service struct {
	store  repository.Store
	escrow *escrow_service.Service
	window time.Duration
	nowFn  func() time.Time
}

func NewService(store repository.Store, escrow *escrow_service.Service, window time.Duration, nowFn func() time.Time) *Service {
	if window <= 0 {
		window = DefaultWindow
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{store: store, escrow: escrow, window: window, nowFn: nowFn}
}

// CanRefund returns nil when the order may be refunded now, otherwise
// ErrOrderNotRefundable or ErrRefundWindowExpired.
func (s *Service) CanRefund(order *order_models.Order) error {
	if order.Status == order_models.OrderStatusDelivered || order.Status == order_models.OrderStatusCancelled {
		return fmt.Errorf("%w: order is %s", utils.ErrOrderNotRefundable, order.Status)
	}
	if !order.IsPaid() {
		return fmt.Errorf("%w: payment is %s", utils.ErrOrderNotRefundable, order.PaymentStatus)
	}
	if s.nowFn().Sub(order.CreatedAt) > s.window {
		return utils.ErrRefundWindowExpired
	}
	return nil
}

// Eligibility reports whether the order can be refunded and, if not, why.
func (s *Service) Eligibility(ctx context.Context, orderID, customerID uuid.UUID) (*order_models.RefundEligibilityResponse, error) {
	order, err := s.loadOwned(ctx, s.store, orderID, customerID)
	if err != nil {
		return nil, err
	}
	resp := &order_models.RefundEligibilityResponse{OrderID: order.ID, Refundable: true}
	if err := s.CanRefund(order); err != nil {
		resp.Refundable = false
		resp.Reason = err.Error()
	}
	return resp, nil
}

// ProcessRefund cancels the order, marks its hold refunded and credits the
// customer wallet with the full amount, all in one transaction.
// customerID of uuid.Nil skips the ownership check.
func (s *Service) ProcessRefund(ctx context.Context, orderID, customerID uuid.UUID, reason string) (*escrow_models.PaymentHold, error) {
	var hold *escrow_models.PaymentHold
	err := s.store.RunInTx(ctx, func(tx repository.Store) error {
		order, err := s.loadOwned(ctx, tx, orderID, customerID)
		if err != nil {
			return err
		}
		if err := s.CanRefund(order); err != nil {
			return err
		}

		hold, err = s.escrow.WithTx(tx).Refund(ctx, order.ID)
		if errors.Is(err, utils.ErrRecordNotFound) {
			return fmt.Errorf("%w: no payment hold for order", utils.ErrOrderNotRefundable)
		}
		if err != nil {
			return err
		}

		now := s.nowFn()
		if err := tx.CreditWallet(ctx, wallet_models.RoleCustomer, order.CustomerID, order.TotalAmount, wallet_models.CreditAvailable, false); err != nil {
			return err
		}

		txnID, err := shared_models.GenerateUUIDv7()
		if err != nil {
			return err
		}
		meta, _ := json.Marshal(map[string]string{
			"reason":            reason,
			"hold_id":           hold.ID.String(),
			"payment_reference": hold.PaymentReference,
		})
		if err := tx.InsertTransaction(ctx, wallet_models.RoleCustomer, &transaction_models.Transaction{
			TransactionID: txnID,
			UserID:        order.CustomerID,
			Type:          transaction_models.TypeRefund,
			Amount:        order.TotalAmount,
			Status:        transaction_models.StatusCompleted,
			Description:   fmt.Sprintf("Refund for cancelled order %s", order.ID),
			ReferenceID:   order.ID.String(),
			ReferenceType: transaction_models.RefOrder,
			Metadata:      meta,
			ProcessedAt:   now,
		}); err != nil {
			return err
		}

		return tx.UpdateOrderStatus(ctx, order.ID, order_models.OrderStatusCancelled, order_models.PaymentStatusRefunded, now)
	})
	if err != nil {
		logger.WarnLogger.Warnf("refund for order %s rejected: %v", orderID, err)
		return nil, err
	}

	logger.InfoLogger.Infof("order %s refunded: %s credited to customer wallet", orderID, hold.TotalAmount)
	return hold, nil
}

func (s *Service) loadOwned(ctx context.Context, store repository.Store, orderID, customerID uuid.UUID) (*order_models.Order, error) {
	order, err := store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if customerID != uuid.Nil && order.CustomerID != customerID {
		return nil, utils.ErrUnauthorized
	}
	return order, nil
}
