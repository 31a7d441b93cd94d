package fee_service

import (
	"testing"

	"github.com/joy095/settlement/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSplitOrder(t *testing.T) {
	calc := NewCalculator(DefaultPlatformFeeRate, DefaultPayoutFeeRate)

	shares, err := calc.Split(d("10000"), d("500"))
	require.NoError(t, err)
	assert.True(t, shares.VendorAmount.Equal(d("9000")), shares.VendorAmount.String())
	assert.True(t, shares.PlatformFee.Equal(d("1000")))
	assert.True(t, shares.RiderAmount.Equal(d("500")))
	assert.True(t, shares.Total.Equal(d("10500")))
}

func TestSplitInvariantHoldsAfterRounding(t *testing.T) {
	calc := NewCalculator(DefaultPlatformFeeRate, DefaultPayoutFeeRate)

	for _, subtotal := range []string{"0", "0.01", "0.05", "10.05", "1234.57", "99999.99"} {
		shares, err := calc.Split(d(subtotal), d("350.25"))
		require.NoError(t, err)
		assert.True(t, shares.VendorAmount.Add(shares.PlatformFee).Equal(d(subtotal)), "subtotal %s", subtotal)
		assert.True(t, shares.RiderAmount.Equal(d("350.25")))
		assert.True(t, shares.PlatformFee.Equal(shares.PlatformFee.Round(2)))
	}
}

func TestSplitRoundsHalfUp(t *testing.T) {
	calc := NewCalculator(DefaultPlatformFeeRate, DefaultPayoutFeeRate)

	shares, err := calc.Split(d("10.05"), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "1.01", shares.PlatformFee.StringFixed(2))
	assert.Equal(t, "9.04", shares.VendorAmount.StringFixed(2))
}

func TestSplitRejectsNegative(t *testing.T) {
	calc := NewCalculator(DefaultPlatformFeeRate, DefaultPayoutFeeRate)

	_, err := calc.Split(d("-1"), d("0"))
	assert.ErrorIs(t, err, utils.ErrNegativeAmount)
	_, err = calc.Split(d("1"), d("-0.01"))
	assert.ErrorIs(t, err, utils.ErrNegativeAmount)
}

func TestPayoutFee(t *testing.T) {
	calc := NewCalculator(DefaultPlatformFeeRate, DefaultPayoutFeeRate)

	fee, net, err := calc.PayoutFee(d("4000"))
	require.NoError(t, err)
	assert.True(t, fee.Equal(d("60")))
	assert.True(t, net.Equal(d("3940")))

	fee, net, err = calc.PayoutFee(d("333.33"))
	require.NoError(t, err)
	assert.Equal(t, "5.00", fee.StringFixed(2))
	assert.True(t, fee.Add(net).Equal(d("333.33")))

	_, _, err = calc.PayoutFee(decimal.Zero)
	assert.ErrorIs(t, err, utils.ErrInvalidAmount)
}
