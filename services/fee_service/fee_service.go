package fee_service

import (
	"github.com/joy095/settlement/models/settlement_models"
	"github.com/joy095/settlement/models/shared_models"
	"github.com/joy095/settlement/utils"
	"github.com/shopspring/decimal"
)

var (
	DefaultPlatformFeeRate = decimal.RequireFromString("0.10")
	DefaultPayoutFeeRate   = decimal.RequireFromString("0.015")
)

// Calculator splits order payments and prices payouts. It holds no state
// beyond its rates.
type Calculator struct {
	platformRate decimal.Decimal
	payoutRate   decimal.Decimal
}

func NewCalculator(platformRate, payoutRate decimal.Decimal) *Calculator {
	return &Calculator{platformRate: platformRate, payoutRate: payoutRate}
}

// Split computes the vendor, rider and platform shares of an order. The
// platform fee is rounded and the vendor takes the remainder, so
// vendor + platform == subtotal holds exactly.
func (c *Calculator) Split(subtotal, deliveryFee decimal.Decimal) (settlement_models.Shares, error) {
	if subtotal.IsNegative() || deliveryFee.IsNegative() {
		return settlement_models.Shares{}, utils.ErrNegativeAmount
	}
	platformFee := shared_models.Round2(subtotal.Mul(c.platformRate))
	return settlement_models.Shares{
		VendorAmount: subtotal.Sub(platformFee),
		RiderAmount:  deliveryFee,
		PlatformFee:  platformFee,
		Total:        subtotal.Add(deliveryFee),
	}, nil
}

// PayoutFee returns the transfer fee and the amount that reaches the bank.
func (c *Calculator) PayoutFee(amount decimal.Decimal) (fee, net decimal.Decimal, err error) {
	if !amount.IsPositive() {
		return decimal.Zero, decimal.Zero, utils.ErrInvalidAmount
	}
	fee = shared_models.Round2(amount.Mul(c.payoutRate))
	return fee, amount.Sub(fee), nil
}
