// Package repository declares the persistence contract shared by the Postgres
// store and the in-memory store used in tests.
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/escrow_models"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/models/payout_models"
	"github.com/joy095/settlement/models/settlement_models"
	"github.com/joy095/settlement/models/shared_models"
	"github.com/joy095/settlement/models/transaction_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/shopspring/decimal"
)

// PayoutStatusUpdate is applied to a payout request during reconciliation.
type PayoutStatusUpdate struct {
	Status        payout_models.Status
	ProcessedAt   *time.Time
	FailureReason string
	Metadata      json.RawMessage
	UpdatedAt     time.Time
}

type OrderRepository interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*order_models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status, paymentStatus string, now time.Time) error
}

type HoldRepository interface {
	// CreateHoldIfAbsent inserts the hold unless one already exists for the
	// order, and returns whichever row is stored.
	CreateHoldIfAbsent(ctx context.Context, hold *escrow_models.PaymentHold) (*escrow_models.PaymentHold, error)
	GetHoldByOrderID(ctx context.Context, orderID uuid.UUID) (*escrow_models.PaymentHold, error)
	// TransitionHold persists a status change only when the stored row is
	// still in from.
	TransitionHold(ctx context.Context, hold *escrow_models.PaymentHold, from escrow_models.HoldStatus) error
}

type WalletRepository interface {
	EnsureWallet(ctx context.Context, role wallet_models.RecipientRole, userID uuid.UUID) (*wallet_models.Wallet, error)
	GetVirtualAccount(ctx context.Context, profileID uuid.UUID, role wallet_models.RecipientRole) (*wallet_models.VirtualAccount, error)
	LinkVirtualAccount(ctx context.Context, role wallet_models.RecipientRole, walletID, virtualAccountID uuid.UUID) error
	// CreditWallet adds amount to the selected balance, creating the wallet on
	// first credit. earning also raises total_earned.
	CreditWallet(ctx context.Context, role wallet_models.RecipientRole, userID uuid.UUID, amount decimal.Decimal, kind wallet_models.CreditKind, earning bool) error
	// DebitWallet removes amount from the available balance in one
	// conditional statement and fails with ErrInsufficientBalance when it
	// would go negative.
	DebitWallet(ctx context.Context, role wallet_models.RecipientRole, userID uuid.UUID, amount decimal.Decimal) error
	// RestoreWallet reverses a debit: available goes up, total_withdrawn down.
	RestoreWallet(ctx context.Context, role wallet_models.RecipientRole, userID uuid.UUID, amount decimal.Decimal) error
	GetBankAccount(ctx context.Context, role wallet_models.RecipientRole, ownerID, bankAccountID uuid.UUID) (*wallet_models.BankAccount, error)
	ListBankAccounts(ctx context.Context, role wallet_models.RecipientRole, ownerID uuid.UUID) ([]wallet_models.BankAccount, error)
}

type SettlementRepository interface {
	// InsertSettlement reports false when a row for (order, recipient type)
	// already exists.
	InsertSettlement(ctx context.Context, s *settlement_models.Settlement) (bool, error)
	GetSettlement(ctx context.Context, id uuid.UUID) (*settlement_models.Settlement, error)
	ListSettlementsByOrder(ctx context.Context, orderID uuid.UUID) ([]settlement_models.Settlement, error)
	ListSettlements(ctx context.Context, role wallet_models.RecipientRole, recipientID uuid.UUID, page shared_models.Pagination) ([]settlement_models.Settlement, error)
	ListUnallocatedSettlements(ctx context.Context, role wallet_models.RecipientRole, recipientID uuid.UUID) ([]settlement_models.Settlement, error)
	AllocateSettlements(ctx context.Context, ids []uuid.UUID, payoutRequestID uuid.UUID, now time.Time) error
	// UpdateSettlementStatus only moves pending rows and reports whether one moved.
	UpdateSettlementStatus(ctx context.Context, id uuid.UUID, status settlement_models.Status, now time.Time) (bool, error)
	UpdateSettlementsByPayout(ctx context.Context, payoutRequestID uuid.UUID, status settlement_models.Status, now time.Time) (int64, error)
	// ReleaseSettlements detaches a payout's pending or failed settlements and
	// returns them to pending so a later payout can take them.
	ReleaseSettlements(ctx context.Context, payoutRequestID uuid.UUID, now time.Time) (int64, error)
}

type PayoutRepository interface {
	InsertPayoutRequest(ctx context.Context, p *payout_models.PayoutRequest) error
	GetPayoutRequest(ctx context.Context, role wallet_models.RecipientRole, id uuid.UUID) (*payout_models.PayoutRequest, error)
	GetPayoutRequestByReference(ctx context.Context, role wallet_models.RecipientRole, reference string) (*payout_models.PayoutRequest, error)
	ListPayoutRequests(ctx context.Context, role wallet_models.RecipientRole, recipientID uuid.UUID, page shared_models.Pagination) ([]payout_models.PayoutRequest, error)
	UpdatePayoutStatus(ctx context.Context, role wallet_models.RecipientRole, id uuid.UUID, update PayoutStatusUpdate) error
	// MarkPayoutRestored sets wallet_restored_at on a failed request once and
	// reports whether this call did it.
	MarkPayoutRestored(ctx context.Context, role wallet_models.RecipientRole, id uuid.UUID, now time.Time) (bool, error)
	// DeletePendingPayoutRequest removes a request the provider never took and
	// reports whether a pending row was removed.
	DeletePendingPayoutRequest(ctx context.Context, role wallet_models.RecipientRole, id uuid.UUID) (bool, error)
}

type TransactionRepository interface {
	InsertTransaction(ctx context.Context, role wallet_models.RecipientRole, t *transaction_models.Transaction) error
	ListTransactions(ctx context.Context, role wallet_models.RecipientRole, userID uuid.UUID, page shared_models.Pagination) ([]transaction_models.Transaction, error)
	DeletePendingTransactions(ctx context.Context, role wallet_models.RecipientRole, referenceType, referenceID string) error
}

// Store is everything the services need. RunInTx runs fn against a Store
// bound to one database transaction; returning an error rolls it back.
type Store interface {
	OrderRepository
	HoldRepository
	WalletRepository
	SettlementRepository
	PayoutRepository
	TransactionRepository

	RunInTx(ctx context.Context, fn func(tx Store) error) error
}
