package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/payout_models"
	"github.com/joy095/settlement/models/shared_models"
	"github.com/joy095/settlement/models/transaction_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/repository"
	"github.com/joy095/settlement/utils"
)

func (s *Store) InsertPayoutRequest(_ context.Context, p *payout_models.PayoutRequest) error {
	if _, err := wallet_models.ConfigFor(p.Role); err != nil {
		return err
	}
	defer s.lock()()
	for _, existing := range s.st.payouts {
		if existing.TransferReference == p.TransferReference {
			return utils.ErrDuplicateReference
		}
	}
	row := *p
	row.UpdatedAt = row.CreatedAt
	s.st.payouts = append(s.st.payouts, row)
	return nil
}

func (s *Store) findPayout(match func(payout_models.PayoutRequest) bool) (int, bool) {
	for i, p := range s.st.payouts {
		if match(p) {
			return i, true
		}
	}
	return -1, false
}

func (s *Store) GetPayoutRequest(_ context.Context, role wallet_models.RecipientRole, id uuid.UUID) (*payout_models.PayoutRequest, error) {
	defer s.lock()()
	i, ok := s.findPayout(func(p payout_models.PayoutRequest) bool { return p.Role == role && p.ID == id })
	if !ok {
		return nil, utils.ErrRecordNotFound
	}
	p := s.st.payouts[i]
	return &p, nil
}

func (s *Store) GetPayoutRequestByReference(_ context.Context, role wallet_models.RecipientRole, reference string) (*payout_models.PayoutRequest, error) {
	defer s.lock()()
	i, ok := s.findPayout(func(p payout_models.PayoutRequest) bool {
		return p.Role == role && p.TransferReference == reference
	})
	if !ok {
		return nil, utils.ErrRecordNotFound
	}
	p := s.st.payouts[i]
	return &p, nil
}

func (s *Store) ListPayoutRequests(_ context.Context, role wallet_models.RecipientRole, recipientID uuid.UUID, page shared_models.Pagination) ([]payout_models.PayoutRequest, error) {
	defer s.lock()()
	var out []payout_models.PayoutRequest
	for i := len(s.st.payouts) - 1; i >= 0; i-- {
		p := s.st.payouts[i]
		if p.Role == role && p.RecipientID == recipientID {
			out = append(out, p)
		}
	}
	return paginate(out, page), nil
}

func (s *Store) UpdatePayoutStatus(_ context.Context, role wallet_models.RecipientRole, id uuid.UUID, u repository.PayoutStatusUpdate) error {
	defer s.lock()()
	i, ok := s.findPayout(func(p payout_models.PayoutRequest) bool { return p.Role == role && p.ID == id })
	if !ok {
		return utils.ErrRecordNotFound
	}
	p := &s.st.payouts[i]
	p.Status = u.Status
	p.ProcessedAt = u.ProcessedAt
	p.FailureReason = u.FailureReason
	if len(u.Metadata) > 0 {
		p.TransferMetadata = u.Metadata
	}
	p.UpdatedAt = u.UpdatedAt
	return nil
}

func (s *Store) MarkPayoutRestored(_ context.Context, role wallet_models.RecipientRole, id uuid.UUID, now time.Time) (bool, error) {
	defer s.lock()()
	i, ok := s.findPayout(func(p payout_models.PayoutRequest) bool { return p.Role == role && p.ID == id })
	if !ok {
		return false, nil
	}
	p := &s.st.payouts[i]
	if p.Status != payout_models.StatusFailed || p.WalletRestoredAt != nil {
		return false, nil
	}
	p.WalletRestoredAt = &now
	p.UpdatedAt = now
	return true, nil
}

func (s *Store) DeletePendingPayoutRequest(_ context.Context, role wallet_models.RecipientRole, id uuid.UUID) (bool, error) {
	defer s.lock()()
	i, ok := s.findPayout(func(p payout_models.PayoutRequest) bool { return p.Role == role && p.ID == id })
	if !ok || s.st.payouts[i].Status != payout_models.StatusPending {
		return false, nil
	}
	s.st.payouts = append(s.st.payouts[:i], s.st.payouts[i+1:]...)
	return true, nil
}

func (s *Store) InsertTransaction(_ context.Context, role wallet_models.RecipientRole, t *transaction_models.Transaction) error {
	if _, err := wallet_models.ConfigFor(role); err != nil {
		return err
	}
	defer s.lock()()
	s.st.transactions[role] = append(s.st.transactions[role], *t)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, role wallet_models.RecipientRole, userID uuid.UUID, page shared_models.Pagination) ([]transaction_models.Transaction, error) {
	defer s.lock()()
	rows := s.st.transactions[role]
	var out []transaction_models.Transaction
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].UserID == userID {
			out = append(out, rows[i])
		}
	}
	return paginate(out, page), nil
}

func (s *Store) DeletePendingTransactions(_ context.Context, role wallet_models.RecipientRole, referenceType, referenceID string) error {
	defer s.lock()()
	kept := s.st.transactions[role][:0]
	for _, t := range s.st.transactions[role] {
		if t.ReferenceType == referenceType && t.ReferenceID == referenceID && t.Status == transaction_models.StatusPending {
			continue
		}
		kept = append(kept, t)
	}
	s.st.transactions[role] = kept
	return nil
}
