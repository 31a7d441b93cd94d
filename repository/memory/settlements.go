package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/settlement_models"
	"github.com/joy095/settlement/models/shared_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/utils"
)

func (s *Store) InsertSettlement(_ context.Context, st *settlement_models.Settlement) (bool, error) {
	defer s.lock()()
	for _, existing := range s.st.settlements {
		if existing.OrderID == st.OrderID && existing.RecipientType == st.RecipientType {
			return false, nil
		}
	}
	row := *st
	row.UpdatedAt = row.CreatedAt
	s.st.settlements = append(s.st.settlements, row)
	return true, nil
}

func (s *Store) GetSettlement(_ context.Context, id uuid.UUID) (*settlement_models.Settlement, error) {
	defer s.lock()()
	for _, st := range s.st.settlements {
		if st.ID == id {
			return &st, nil
		}
	}
	return nil, utils.ErrRecordNotFound
}

func (s *Store) ListSettlementsByOrder(_ context.Context, orderID uuid.UUID) ([]settlement_models.Settlement, error) {
	defer s.lock()()
	var out []settlement_models.Settlement
	for _, st := range s.st.settlements {
		if st.OrderID == orderID {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecipientType < out[j].RecipientType })
	return out, nil
}

func (s *Store) ListSettlements(_ context.Context, role wallet_models.RecipientRole, recipientID uuid.UUID, page shared_models.Pagination) ([]settlement_models.Settlement, error) {
	defer s.lock()()
	var out []settlement_models.Settlement
	for i := len(s.st.settlements) - 1; i >= 0; i-- {
		st := s.st.settlements[i]
		if st.RecipientType == role && st.RecipientID == recipientID {
			out = append(out, st)
		}
	}
	return paginate(out, page), nil
}

func (s *Store) ListUnallocatedSettlements(_ context.Context, role wallet_models.RecipientRole, recipientID uuid.UUID) ([]settlement_models.Settlement, error) {
	defer s.lock()()
	var out []settlement_models.Settlement
	for _, st := range s.st.settlements {
		if st.RecipientType == role && st.RecipientID == recipientID &&
			st.Status == settlement_models.StatusPending && st.PayoutRequestID == nil {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *Store) AllocateSettlements(_ context.Context, ids []uuid.UUID, payoutRequestID uuid.UUID, now time.Time) error {
	defer s.lock()()
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for i, st := range s.st.settlements {
		if want[st.ID] && st.PayoutRequestID == nil {
			pid := payoutRequestID
			s.st.settlements[i].PayoutRequestID = &pid
			s.st.settlements[i].UpdatedAt = now
		}
	}
	return nil
}

func (s *Store) UpdateSettlementStatus(_ context.Context, id uuid.UUID, status settlement_models.Status, now time.Time) (bool, error) {
	defer s.lock()()
	for i, st := range s.st.settlements {
		if st.ID == id {
			if st.Status != settlement_models.StatusPending {
				return false, nil
			}
			s.st.settlements[i].Status = status
			s.st.settlements[i].UpdatedAt = now
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) UpdateSettlementsByPayout(_ context.Context, payoutRequestID uuid.UUID, status settlement_models.Status, now time.Time) (int64, error) {
	defer s.lock()()
	var n int64
	for i, st := range s.st.settlements {
		if st.PayoutRequestID != nil && *st.PayoutRequestID == payoutRequestID && st.Status == settlement_models.StatusPending {
			s.st.settlements[i].Status = status
			s.st.settlements[i].UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (s *Store) ReleaseSettlements(_ context.Context, payoutRequestID uuid.UUID, now time.Time) (int64, error) {
	defer s.lock()()
	var n int64
	for i, st := range s.st.settlements {
		if st.PayoutRequestID == nil || *st.PayoutRequestID != payoutRequestID || st.Status == settlement_models.StatusCompleted {
			continue
		}
		s.st.settlements[i].PayoutRequestID = nil
		s.st.settlements[i].Status = settlement_models.StatusPending
		s.st.settlements[i].UpdatedAt = now
		n++
	}
	return n, nil
}

func paginate[T any](rows []T, page shared_models.Pagination) []T {
	page = page.Normalize()
	if page.Offset >= len(rows) {
		return nil
	}
	end := page.Offset + page.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[page.Offset:end]
}
