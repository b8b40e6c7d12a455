package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DividendType distinguishes the year-end mandatory distribution from a
// manually decided one.
type DividendType string

const (
	DividendTypeMandatory DividendType = "mandatory"
	DividendTypeManual    DividendType = "manual"
)

// Dividend is a distribution to shareholders, created only during
// year-end closing. PerShare = TotalAmount / total shares at creation.
type Dividend struct {
	ID           uuid.UUID
	FiscalYearID *uuid.UUID
	TotalAmount  decimal.Decimal
	PerShare     decimal.Decimal
	Type         DividendType
	Date         time.Time
}
