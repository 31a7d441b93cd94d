package transaction_service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/shared_models"
	"github.com/joy095/settlement/models/transaction_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/repository/memory"
	"github.com/joy095/settlement/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListNewestFirstAndPaginated(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	user := uuid.New()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.InsertTransaction(ctx, wallet_models.RoleRider, &transaction_models.Transaction{
			TransactionID: uuid.New(),
			UserID:        user,
			Type:          transaction_models.TypeSettlement,
			Amount:        decimal.NewFromInt(int64(i * 100)),
			Status:        transaction_models.StatusCompleted,
			ProcessedAt:   base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, store.InsertTransaction(ctx, wallet_models.RoleRider, &transaction_models.Transaction{
		TransactionID: uuid.New(), UserID: uuid.New(), Type: transaction_models.TypeSettlement,
		Amount: decimal.NewFromInt(1), Status: transaction_models.StatusCompleted,
	}))

	svc := NewService(store)

	rows, err := svc.List(ctx, wallet_models.RoleRider, user, shared_models.Pagination{Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(500)))
	assert.True(t, rows[1].Amount.Equal(decimal.NewFromInt(400)))

	rows, err = svc.List(ctx, wallet_models.RoleRider, user, shared_models.Pagination{Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(100)))

	rows, err = svc.List(ctx, wallet_models.RoleVendor, user, shared_models.Pagination{})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestListRejectsUnknownRole(t *testing.T) {
	svc := NewService(memory.NewStore())
	_, err := svc.List(context.Background(), wallet_models.RecipientRole("admin"), uuid.New(), shared_models.Pagination{})
	assert.ErrorIs(t, err, utils.ErrUnknownRole)
}
