package order_models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order status values written by the order subsystem. Only Cancelled is
// written from here, on refund.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	CustomerID    uuid.UUID       `json:"customer_id" db:"customer_id"`
	VendorID      uuid.UUID       `json:"vendor_id" db:"vendor_id"`
	RiderID       *uuid.UUID      `json:"rider_id,omitempty" db:"rider_id"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee" db:"delivery_fee"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status        string          `json:"status" db:"status"`
	PaymentStatus string          `json:"payment_status" db:"payment_status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// IsPaid reports whether the customer's payment has been captured.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// TotalsConsistent reports whether total_amount equals subtotal plus delivery fee.
func (o *Order) TotalsConsistent() bool {
	return o.TotalAmount.Equal(o.Subtotal.Add(o.DeliveryFee))
}

// RefundRequest is the body of POST /orders/:order_id/refund.
type RefundRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type RefundEligibilityResponse struct {
	OrderID    uuid.UUID `json:"order_id"`
	Refundable bool      `json:"refundable"`
	Reason     string    `json:"reason,omitempty"`
}
