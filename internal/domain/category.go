package domain

import "github.com/google/uuid"

// CategoryType distinguishes revenue categories from expense categories.
type CategoryType string

const (
	CategoryTypeRevenue CategoryType = "revenue"
	CategoryTypeExpense CategoryType = "expense"
)

// Category labels transactions for reporting. Categories are seeded once
// at setup and never deleted; name is unique per type.
type Category struct {
	ID   uuid.UUID
	Name string
	Type CategoryType
	Icon string
}

// Names of the categories the engine posts derived transactions into.
const (
	CategoryCapitalGain   = "Capital Gain"
	CategoryCapitalLoss   = "Capital Loss"
	CategoryLeaseInterest = "Lease Interest"
	CategoryLoanInterest  = "Loan Interest"
	CategoryCorporateTax  = "Corporate Tax"
	CategoryOtherRevenue  = "Other Revenue"
	CategoryOtherExpenses = "Other Expenses"
)
