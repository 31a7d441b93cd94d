package transaction_models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction types appended to the per-role audit log.
const (
	TypeSettlement     = "settlement"
	TypePayout         = "payout"
	TypeWithdrawal     = "withdrawal"
	TypeRefund         = "refund"
	TypePayoutReversal = "payout_reversal"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Reference types tie a transaction back to the row that produced it.
const (
	RefOrder         = "order"
	RefSettlement    = "settlement"
	RefPayoutRequest = "payout_request"
)

// Transaction rows are append-only.
type Transaction struct {
	TransactionID uuid.UUID       `json:"transaction_id" db:"transaction_id"`
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`
	Type          string          `json:"type" db:"type"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Status        string          `json:"status" db:"status"`
	Description   string          `json:"description" db:"description"`
	ReferenceID   string          `json:"reference_id" db:"reference_id"`
	ReferenceType string          `json:"reference_type" db:"reference_type"`
	Metadata      json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	ProcessedAt   time.Time       `json:"processed_at" db:"processed_at"`
}
