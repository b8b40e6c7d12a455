package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValuationSnapshot is a point-in-time cache of the derived valuation
// figures, written once per period close and once per year-end close.
// Valuation = Cash + TotalAssetNBV - TotalDebt - TotalLeaseObligations.
type ValuationSnapshot struct {
	ID                   uuid.UUID
	PeriodID             *uuid.UUID
	Date                 time.Time
	Cash                 decimal.Decimal
	TotalAssetNBV        decimal.Decimal
	TotalDebt            decimal.Decimal
	TotalLeaseObligation decimal.Decimal
	Valuation            decimal.Decimal
	SharePrice           decimal.Decimal
}
