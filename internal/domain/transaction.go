package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a single dated ledger entry. Amount is always the
// absolute value; the sign is implied by Type.
type Transaction struct {
	ID         uuid.UUID
	PeriodID   uuid.UUID
	Date       time.Time
	Label      string
	Amount     decimal.Decimal
	Type       CategoryType
	CategoryID *uuid.UUID // nil renders as "uncategorized"
	Notes      *string
}

// Validate ensures the transaction adheres to domain rules.
func (t *Transaction) Validate() error {
	if t.Label == "" {
		return errors.New("transaction label cannot be empty")
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrNonPositiveAmount
	}
	if t.Type != CategoryTypeRevenue && t.Type != CategoryTypeExpense {
		return errors.New("transaction type must be revenue or expense")
	}
	return nil
}
