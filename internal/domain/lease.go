package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaseStatus tracks the one-way lifecycle of a financed asset.
type LeaseStatus string

const (
	LeaseStatusActive    LeaseStatus = "active"
	LeaseStatusPurchased LeaseStatus = "purchased"
	LeaseStatusReturned  LeaseStatus = "returned"
)

// Lease is a financed-equipment agreement paired 1:1 with an Asset.
// RemainingBalance starts at TotalValue - InitialPayment and is reduced
// by the capital portion of each installment.
type Lease struct {
	ID               uuid.UUID
	Name             string
	TotalValue       decimal.Decimal
	InitialPayment   decimal.Decimal
	MonthlyPayment   decimal.Decimal
	DurationMonths   int
	ResidualValue    decimal.Decimal
	StartDate        time.Time
	PaymentsMade     int
	Status           LeaseStatus
	InterestRate     decimal.Decimal // annual percent
	RemainingBalance decimal.Decimal
}

// Validate ensures the lease adheres to domain rules.
func (l *Lease) Validate() error {
	if l.Name == "" {
		return errors.New("lease name cannot be empty")
	}
	if l.TotalValue.LessThanOrEqual(decimal.Zero) {
		return ErrNonPositiveAmount
	}
	if l.DurationMonths <= 0 {
		return ErrInvalidDuration
	}
	if l.InitialPayment.IsNegative() || l.ResidualValue.IsNegative() {
		return errors.New("payments cannot be negative")
	}
	return nil
}

// IsActive reports whether the lease still accrues installments.
func (l *Lease) IsActive() bool {
	return l.Status == LeaseStatusActive
}

// Matured reports whether all scheduled installments have been made,
// making the lease eligible for buyout or return.
func (l *Lease) Matured() bool {
	return l.PaymentsMade >= l.DurationMonths
}

// InterestPortion is the declining-balance interest share of the next
// installment, rounded to the minor unit.
func (l *Lease) InterestPortion() decimal.Decimal {
	return RoundMinor(l.RemainingBalance.Mul(l.InterestRate).Div(decimal.NewFromInt(1200)))
}

// LeaseMonthlyPayment computes the fixed installment for a financed
// asset using the annuity-with-balloon formula: the payment is sized so
// that after the full term exactly the residual (balloon) remains.
// A zero rate degrades to straight-line capital repayment. Degenerate
// durations yield zero; callers reject those before use.
func LeaseMonthlyPayment(price, downPayment, finalPayment, annualRate decimal.Decimal, durationYears int) decimal.Decimal {
	financed := price.Sub(downPayment)
	months := durationYears * 12
	if months <= 0 {
		return decimal.Zero
	}
	monthlyRate := annualRate.Div(decimal.NewFromInt(1200))
	if monthlyRate.IsZero() {
		return financed.Sub(finalPayment).Div(decimal.NewFromInt(int64(months)))
	}
	growth := decimal.NewFromInt(1).Add(monthlyRate).Pow(decimal.NewFromInt(int64(months)))
	pvResidual := finalPayment.Div(growth)
	one := decimal.NewFromInt(1)
	return financed.Sub(pvResidual).Mul(monthlyRate).Div(one.Sub(one.Div(growth)))
}
