package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLeaseMonthlyPayment_AnnuityWithBalloon(t *testing.T) {
	// 200,000 price, 20,000 down, 20,000 balloon, 5% over 3 years
	payment := LeaseMonthlyPayment(
		decimal.NewFromInt(200000),
		decimal.NewFromInt(20000),
		decimal.NewFromInt(20000),
		decimal.NewFromInt(5),
		3,
	)

	assert.Equal(t, "4878.68", RoundMinor(payment).StringFixed(2))
}

func TestLeaseMonthlyPayment_ZeroRate(t *testing.T) {
	// No interest: straight-line capital repayment of (financed - balloon)
	payment := LeaseMonthlyPayment(
		decimal.NewFromInt(120000),
		decimal.NewFromInt(12000),
		decimal.NewFromInt(36000),
		decimal.Zero,
		3,
	)

	assert.True(t, payment.Equal(decimal.NewFromInt(2000)), "got %s", payment)
}

func TestLeaseMonthlyPayment_DegenerateDuration(t *testing.T) {
	payment := LeaseMonthlyPayment(
		decimal.NewFromInt(100000),
		decimal.Zero,
		decimal.Zero,
		decimal.NewFromInt(5),
		0,
	)

	assert.True(t, payment.IsZero())
}

func TestLeaseInterestPortion_DecliningBalance(t *testing.T) {
	lease := &Lease{
		RemainingBalance: decimal.NewFromInt(180000),
		InterestRate:     decimal.NewFromInt(5),
	}

	// 180,000 * 5% / 12 = 750
	assert.Equal(t, "750.00", lease.InterestPortion().StringFixed(2))
}

func TestLeaseMatured(t *testing.T) {
	lease := &Lease{DurationMonths: 36, PaymentsMade: 35}
	assert.False(t, lease.Matured())

	lease.PaymentsMade = 36
	assert.True(t, lease.Matured())
}

func TestLeaseValidate(t *testing.T) {
	lease := &Lease{
		Name:           "Harvester",
		TotalValue:     decimal.NewFromInt(200000),
		DurationMonths: 36,
	}
	assert.NoError(t, lease.Validate())

	lease.DurationMonths = 0
	assert.ErrorIs(t, lease.Validate(), ErrInvalidDuration)

	lease.DurationMonths = 36
	lease.TotalValue = decimal.Zero
	assert.ErrorIs(t, lease.Validate(), ErrNonPositiveAmount)
}
