package escrow_models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/utils"
	"github.com/shopspring/decimal"
)

type HoldStatus string

const (
	HoldStatusHeld           HoldStatus = "held"
	HoldStatusPartialRelease HoldStatus = "partial_release"
	HoldStatusReleased       HoldStatus = "released"
	HoldStatusRefunded       HoldStatus = "refunded"
)

// PaymentHold is the escrowed customer payment for one order. Rows are never
// deleted.
type PaymentHold struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	OrderID          uuid.UUID       `json:"order_id" db:"order_id"`
	PaymentReference string          `json:"payment_reference" db:"payment_reference"`
	TotalAmount      decimal.Decimal `json:"total_amount" db:"total_amount"`
	VendorAmount     decimal.Decimal `json:"vendor_amount" db:"vendor_amount"`
	RiderAmount      decimal.Decimal `json:"rider_amount" db:"rider_amount"`
	PlatformFee      decimal.Decimal `json:"platform_fee" db:"platform_fee"`
	Status           HoldStatus      `json:"status" db:"status"`
	ReleasedAt       *time.Time      `json:"released_at,omitempty" db:"released_at"`
	RefundedAt       *time.Time      `json:"refunded_at,omitempty" db:"refunded_at"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// Release moves a held payment to released. Any other starting state is an
// invalid transition and leaves the hold untouched.
func (h *PaymentHold) Release(now time.Time) error {
	if h.Status != HoldStatusHeld {
		return fmt.Errorf("%w: cannot release hold in status %s", utils.ErrInvalidStateTransition, h.Status)
	}
	h.Status = HoldStatusReleased
	h.ReleasedAt = &now
	h.UpdatedAt = now
	return nil
}

// Refund moves a held payment to refunded.
func (h *PaymentHold) Refund(now time.Time) error {
	if h.Status != HoldStatusHeld {
		return fmt.Errorf("%w: cannot refund hold in status %s", utils.ErrInvalidStateTransition, h.Status)
	}
	h.Status = HoldStatusRefunded
	h.RefundedAt = &now
	h.UpdatedAt = now
	return nil
}

// CreateHoldRequest is accepted by POST /escrow/holds.
type CreateHoldRequest struct {
	OrderID          uuid.UUID `json:"order_id" binding:"required"`
	PaymentReference string    `json:"payment_reference" binding:"required"`
}

// PaymentCapturedEvent is the signed payment-provider callback body.
type PaymentCapturedEvent struct {
	Event string `json:"event"`
	Data  struct {
		OrderID   uuid.UUID `json:"order_id"`
		Reference string    `json:"reference"`
		Status    string    `json:"status"`
	} `json:"data"`
}
