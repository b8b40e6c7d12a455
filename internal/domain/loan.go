package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus tracks a revolving loan lifecycle; paid_off is terminal.
type LoanStatus string

const (
	LoanStatusActive  LoanStatus = "active"
	LoanStatusPaidOff LoanStatus = "paid_off"
)

// Loan is a revolving credit line with no fixed amortization schedule:
// the holder chooses each period between an interest-only payment and an
// arbitrary principal repayment. RemainingBalance is monotonically
// non-increasing.
type Loan struct {
	ID               uuid.UUID
	Name             string
	Principal        decimal.Decimal
	InterestRate     decimal.Decimal // annual percent
	StartDate        time.Time
	RemainingBalance decimal.Decimal
	Status           LoanStatus
}

// Validate ensures the loan adheres to domain rules.
func (l *Loan) Validate() error {
	if l.Name == "" {
		return errors.New("loan name cannot be empty")
	}
	if l.Principal.LessThanOrEqual(decimal.Zero) {
		return ErrNonPositiveAmount
	}
	if l.InterestRate.IsNegative() {
		return errors.New("interest rate cannot be negative")
	}
	return nil
}

// IsActive reports whether the loan still carries a balance.
func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusActive
}

// MonthlyInterest is one month of interest on the current balance,
// rounded to the whole currency unit.
func (l *Loan) MonthlyInterest() decimal.Decimal {
	return RoundWhole(l.RemainingBalance.Mul(l.InterestRate).Div(decimal.NewFromInt(1200)))
}

// LoanPayment records a single payment event against a loan.
// Amount = PrincipalPart + InterestPart; rows are immutable.
type LoanPayment struct {
	ID            uuid.UUID
	LoanID        uuid.UUID
	PeriodID      uuid.UUID
	Amount        decimal.Decimal
	PrincipalPart decimal.Decimal
	InterestPart  decimal.Decimal
	Date          time.Time
}
