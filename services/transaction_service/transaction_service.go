package transaction_service

import (
	"context"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/shared_models"
	"github.com/joy095/settlement/models/transaction_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/repository"
)

// Service reads the append-only transaction log of each role.
type Service struct {
	store repository.TransactionRepository
}

func NewService(store repository.TransactionRepository) *Service {
	return &Service{store: store}
}

// List returns a user's transactions, newest first.
func (s *Service) List(ctx context.Context, role wallet_models.RecipientRole, userID uuid.UUID, page shared_models.Pagination) ([]transaction_models.Transaction, error) {
	if _, err := wallet_models.ConfigFor(role); err != nil {
		return nil, err
	}
	rows, err := s.store.ListTransactions(ctx, role, userID, page.Normalize())
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []transaction_models.Transaction{}
	}
	return rows, nil
}
