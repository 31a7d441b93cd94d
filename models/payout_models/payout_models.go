package payout_models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// MapProviderStatus folds the provider's vocabulary into the local model.
func MapProviderStatus(providerStatus string) Status {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "success", "successful", "completed":
		return StatusCompleted
	case "failed", "reversed":
		return StatusFailed
	default:
		return StatusProcessing
	}
}

// PayoutRequest is a vendor/rider payout or a customer withdrawal. The three
// role tables share this shape.
type PayoutRequest struct {
	ID                uuid.UUID                   `json:"id" db:"id"`
	Role              wallet_models.RecipientRole `json:"role"`
	RecipientID       uuid.UUID                   `json:"recipient_id" db:"recipient_id"`
	BankAccountID     uuid.UUID                   `json:"bank_account_id" db:"bank_account_id"`
	Amount            decimal.Decimal             `json:"amount" db:"amount"`
	Fee               decimal.Decimal             `json:"fee" db:"fee"`
	NetAmount         decimal.Decimal             `json:"net_amount" db:"net_amount"`
	Status            Status                      `json:"status" db:"status"`
	TransferReference string                      `json:"transfer_reference" db:"transfer_reference"`
	TransferMetadata  json.RawMessage             `json:"transfer_metadata,omitempty" db:"transfer_metadata"`
	FailureReason     string                      `json:"failure_reason,omitempty" db:"failure_reason"`
	ProcessedAt       *time.Time                  `json:"processed_at,omitempty" db:"processed_at"`
	WalletRestoredAt  *time.Time                  `json:"wallet_restored_at,omitempty" db:"wallet_restored_at"`
	CreatedAt         time.Time                   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at" db:"updated_at"`
}

// CreatePayoutRequest is the body of POST /payouts/:role.
type CreatePayoutRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	BankAccountID uuid.UUID       `json:"bank_account_id" binding:"required"`
}

// TransferWebhookEvent is the provider's transfer status callback.
type TransferWebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}
