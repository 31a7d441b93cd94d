package settlement_service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/config"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/models/payout_models"
	"github.com/joy095/settlement/models/settlement_models"
	"github.com/joy095/settlement/models/shared_models"
	"github.com/joy095/settlement/models/transaction_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/repository"
	"github.com/shopspring/decimal"
)

// Service records each recipient's share of a delivered order and credits
// their wallet in the same transaction.
type Service struct {
	store      repository.Store
	creditKind wallet_models.CreditKind
	nowFn      func() time.Time
}

// NewService builds the recorder. creditTarget is config.CreditTargetAvailable
// or config.CreditTargetPending.
func NewService(store repository.Store, creditTarget string, nowFn func() time.Time) *Service {
	kind := wallet_models.CreditAvailable
	if creditTarget == config.CreditTargetPending {
		kind = wallet_models.CreditPending
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{store: store, creditKind: kind, nowFn: nowFn}
}

func (s *Service) WithTx(tx repository.Store) *Service {
	return &Service{store: tx, creditKind: s.creditKind, nowFn: s.nowFn}
}

// RecordPending writes one pending settlement per recipient of the order and
// credits each recipient's wallet. Rows that already exist are returned
// without a second credit.
func (s *Service) RecordPending(ctx context.Context, order *order_models.Order, shares settlement_models.Shares) ([]settlement_models.Settlement, error) {
	now := s.nowFn()

	candidates := []settlement_models.Settlement{{
		OrderID:       order.ID,
		RecipientID:   order.VendorID,
		RecipientType: wallet_models.RoleVendor,
		Amount:        shares.VendorAmount.Add(shares.PlatformFee),
		Fee:           shares.PlatformFee,
		NetAmount:     shares.VendorAmount,
	}}
	switch {
	case order.RiderID != nil && shares.RiderAmount.IsPositive():
		candidates = append(candidates, settlement_models.Settlement{
			OrderID:       order.ID,
			RecipientID:   *order.RiderID,
			RecipientType: wallet_models.RoleRider,
			Amount:        shares.RiderAmount,
			Fee:           decimal.Zero,
			NetAmount:     shares.RiderAmount,
		})
	case shares.RiderAmount.IsPositive():
		logger.WarnLogger.Warnf("order %s has a delivery fee of %s but no rider; rider share not settled", order.ID, shares.RiderAmount)
	}

	var recorded []settlement_models.Settlement
	err := s.store.RunInTx(ctx, func(tx repository.Store) error {
		for _, st := range candidates {
			id, err := shared_models.GenerateUUIDv7()
			if err != nil {
				return err
			}
			st.ID = id
			st.Status = settlement_models.StatusPending
			st.CreatedAt = now
			st.UpdatedAt = now

			inserted, err := tx.InsertSettlement(ctx, &st)
			if err != nil {
				return err
			}
			if !inserted {
				logger.WarnLogger.Warnf("%s settlement for order %s already recorded", st.RecipientType, order.ID)
				continue
			}
			if st.NetAmount.IsPositive() {
				if err := s.credit(ctx, tx, &st, now); err != nil {
					return err
				}
			}
			recorded = append(recorded, st)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record settlements for order %s: %w", order.ID, err)
	}

	for _, st := range recorded {
		logger.InfoLogger.Infof("settlement %s recorded: order=%s %s=%s net=%s", st.ID, st.OrderID, st.RecipientType, st.RecipientID, st.NetAmount)
	}
	return recorded, nil
}

func (s *Service) credit(ctx context.Context, tx repository.Store, st *settlement_models.Settlement, now time.Time) error {
	if err := tx.CreditWallet(ctx, st.RecipientType, st.RecipientID, st.NetAmount, s.creditKind, true); err != nil {
		return err
	}

	txnStatus := transaction_models.StatusCompleted
	if s.creditKind == wallet_models.CreditPending {
		txnStatus = transaction_models.StatusPending
	}
	meta, _ := json.Marshal(map[string]string{
		"order_id":    st.OrderID.String(),
		"gross":       st.Amount.String(),
		"fee":         st.Fee.String(),
		"credited_to": string(s.creditKind),
	})
	txnID, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return err
	}
	return tx.InsertTransaction(ctx, st.RecipientType, &transaction_models.Transaction{
		TransactionID: txnID,
		UserID:        st.RecipientID,
		Type:          transaction_models.TypeSettlement,
		Amount:        st.NetAmount,
		Status:        txnStatus,
		Description:   fmt.Sprintf("Earnings for order %s", st.OrderID),
		ReferenceID:   st.ID.String(),
		ReferenceType: transaction_models.RefSettlement,
		Metadata:      meta,
		ProcessedAt:   now,
	})
}

// MarkCompleted moves a pending settlement to completed. Re-marking a
// settled row returns it unchanged.
func (s *Service) MarkCompleted(ctx context.Context, id uuid.UUID) (*settlement_models.Settlement, error) {
	return s.mark(ctx, id, settlement_models.StatusCompleted)
}

// MarkFailed moves a pending settlement to failed.
func (s *Service) MarkFailed(ctx context.Context, id uuid.UUID) (*settlement_models.Settlement, error) {
	return s.mark(ctx, id, settlement_models.StatusFailed)
}

func (s *Service) mark(ctx context.Context, id uuid.UUID, status settlement_models.Status) (*settlement_models.Settlement, error) {
	if _, err := s.store.UpdateSettlementStatus(ctx, id, status, s.nowFn()); err != nil {
		return nil, err
	}
	return s.store.GetSettlement(ctx, id)
}

// AllocateToPayout links the recipient's oldest unallocated pending
// settlements to a payout request, stopping at the first one that would push
// the running total past amount.
func (s *Service) AllocateToPayout(ctx context.Context, role wallet_models.RecipientRole, recipientID, payoutRequestID uuid.UUID, amount decimal.Decimal) (int, error) {
	if role == wallet_models.RoleCustomer {
		return 0, nil
	}
	open, err := s.store.ListUnallocatedSettlements(ctx, role, recipientID)
	if err != nil {
		return 0, err
	}

	var (
		ids   []uuid.UUID
		total decimal.Decimal
	)
	for _, st := range open {
		next := total.Add(st.NetAmount)
		if next.GreaterThan(amount) {
			break
		}
		total = next
		ids = append(ids, st.ID)
	}
	if err := s.store.AllocateSettlements(ctx, ids, payoutRequestID, s.nowFn()); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// ResolvePayout settles every settlement allocated to a payout once the
// payout reaches a terminal status.
func (s *Service) ResolvePayout(ctx context.Context, payoutRequestID uuid.UUID, status payout_models.Status) error {
	var target settlement_models.Status
	switch status {
	case payout_models.StatusCompleted:
		target = settlement_models.StatusCompleted
	case payout_models.StatusFailed:
		target = settlement_models.StatusFailed
	default:
		return nil
	}
	n, err := s.store.UpdateSettlementsByPayout(ctx, payoutRequestID, target, s.nowFn())
	if err != nil {
		return err
	}
	if n > 0 {
		logger.InfoLogger.Infof("%d settlements marked %s for payout %s", n, target, payoutRequestID)
	}
	return nil
}

// ReleasePayout returns a payout's unpaid settlements to the pool once the
// money is back in the wallet.
func (s *Service) ReleasePayout(ctx context.Context, payoutRequestID uuid.UUID) error {
	n, err := s.store.ReleaseSettlements(ctx, payoutRequestID, s.nowFn())
	if err != nil {
		return err
	}
	if n > 0 {
		logger.InfoLogger.Infof("%d settlements released from payout %s", n, payoutRequestID)
	}
	return nil
}

func (s *Service) ListForRecipient(ctx context.Context, role wallet_models.RecipientRole, recipientID uuid.UUID, page shared_models.Pagination) ([]settlement_models.Settlement, error) {
	if _, err := wallet_models.ConfigFor(role); err != nil {
		return nil, err
	}
	rows, err := s.store.ListSettlements(ctx, role, recipientID, page.Normalize())
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []settlement_models.Settlement{}
	}
	return rows, nil
}

func (s *Service) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]settlement_models.Settlement, error) {
	return s.store.ListSettlementsByOrder(ctx, orderID)
}
