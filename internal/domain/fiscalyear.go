package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FiscalYear is a sequence of periods terminated by a year-end closing.
// At most one fiscal year is open (ClosedAt == nil) at any time.
type FiscalYear struct {
	ID          uuid.UUID
	Name        string
	StartedAt   time.Time
	ClosedAt    *time.Time
	OpeningCash decimal.Decimal
}

// IsOpen reports whether the fiscal year has not been closed yet.
func (fy *FiscalYear) IsOpen() bool {
	return fy.ClosedAt == nil
}

// Period is the smallest closable accounting interval, nominally one
// in-game month. A period belongs to exactly one fiscal year and at most
// one period is open at any time.
type Period struct {
	ID                 uuid.UUID
	FiscalYearID       uuid.UUID
	Name               string
	StartedAt          time.Time
	ClosedAt           *time.Time
	DepreciationBooked decimal.Decimal
}

// IsOpen reports whether the period has not been closed yet.
func (p *Period) IsOpen() bool {
	return p.ClosedAt == nil
}

// PeriodsPerYear is the number of periods a fiscal year runs before the
// year-end closing projects the remainder.
const PeriodsPerYear = 12

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName returns the calendar name of the Nth period (0-indexed) of a
// year that starts at startMonth (1-12). The table rotates, so a year
// starting in August runs August, September, ... July.
func MonthName(startMonth, periodIndex int) string {
	if startMonth < 1 || startMonth > 12 {
		startMonth = 1
	}
	return monthNames[((startMonth-1)+periodIndex)%12]
}
