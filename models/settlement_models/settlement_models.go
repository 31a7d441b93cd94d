package settlement_models

import (
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether the settlement can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Settlement records one recipient's share of one order.
type Settlement struct {
	ID              uuid.UUID                   `json:"id" db:"id"`
	OrderID         uuid.UUID                   `json:"order_id" db:"order_id"`
	RecipientID     uuid.UUID                   `json:"recipient_id" db:"recipient_id"`
	RecipientType   wallet_models.RecipientRole `json:"recipient_type" db:"recipient_type"`
	Amount          decimal.Decimal             `json:"amount" db:"amount"`
	Fee             decimal.Decimal             `json:"fee" db:"fee"`
	NetAmount       decimal.Decimal             `json:"net_amount" db:"net_amount"`
	Status          Status                      `json:"status" db:"status"`
	PayoutRequestID *uuid.UUID                  `json:"payout_request_id,omitempty" db:"payout_request_id"`
	CreatedAt       time.Time                   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at" db:"updated_at"`
}

// Shares is the output of the split calculator for one order.
type Shares struct {
	VendorAmount decimal.Decimal `json:"vendor_amount"`
	RiderAmount  decimal.Decimal `json:"rider_amount"`
	PlatformFee  decimal.Decimal `json:"platform_fee"`
	Total        decimal.Decimal `json:"total"`
}
