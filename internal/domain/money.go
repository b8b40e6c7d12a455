package domain

import "github.com/shopspring/decimal"

// Monetary rounding boundaries. Aggregation is always exact decimal
// addition; rounding only happens where an amount is booked or displayed.

// RoundMinor rounds to the currency's minor unit (two places, half away
// from zero). Used for lease interest/capital splits, tax and dividends.
func RoundMinor(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundWhole rounds to the whole currency unit, half away from zero.
// Loan interest is quoted in whole units.
func RoundWhole(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// LoanPayoffEpsilon is the tolerance under which a loan balance is
// considered fully repaid, absorbing rounding drift from clamped
// principal payments.
var LoanPayoffEpsilon = decimal.NewFromFloat(0.01)

// BalanceSheetTolerance is the largest assets-vs-liabilities difference
// still considered balanced. A persistent difference above it indicates
// a booking-order bug and is surfaced, never corrected.
var BalanceSheetTolerance = decimal.NewFromInt(1)
