package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The storage collaborator is specified only through these interfaces.
// The engine does not depend on any particular storage technology; the
// sqlite adapter is one implementation, the in-memory store another.

// SettingsRepository persists the flat key/value configuration table.
type SettingsRepository interface {
	// Get retrieves a single setting value. Missing keys return
	// ErrNotFound (wrapped).
	Get(ctx context.Context, key string) (string, error)

	// Set inserts or overwrites a setting.
	Set(ctx context.Context, key, value string) error

	// All returns every setting row as a key/value map.
	All(ctx context.Context) (map[string]string, error)
}

// FiscalYearRepository persists fiscal years.
type FiscalYearRepository interface {
	Create(ctx context.Context, fy *FiscalYear) error

	GetByID(ctx context.Context, id uuid.UUID) (*FiscalYear, error)

	// Current returns the open fiscal year (ClosedAt == nil), or
	// ErrNotFound when every year is closed.
	Current(ctx context.Context) (*FiscalYear, error)

	// List returns all fiscal years in creation order.
	List(ctx context.Context) ([]*FiscalYear, error)

	// Close marks a fiscal year closed.
	Close(ctx context.Context, id uuid.UUID, closedAt time.Time) error
}

// PeriodRepository persists periods.
type PeriodRepository interface {
	Create(ctx context.Context, p *Period) error

	GetByID(ctx context.Context, id uuid.UUID) (*Period, error)

	// Current returns the open period, or ErrNotFound when none is open.
	Current(ctx context.Context) (*Period, error)

	// ListByFiscalYear returns a year's periods in creation order.
	ListByFiscalYear(ctx context.Context, fiscalYearID uuid.UUID) ([]*Period, error)

	// Close marks a period closed, storing the depreciation amount
	// booked while closing it.
	Close(ctx context.Context, id uuid.UUID, closedAt time.Time, depreciationBooked decimal.Decimal) error
}

// CategoryRepository persists transaction categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error

	// List returns categories, optionally filtered by type. An empty
	// typeFilter returns all categories.
	List(ctx context.Context, typeFilter CategoryType) ([]*Category, error)

	// GetByName finds a category by its per-type unique name. Missing
	// categories return ErrNotFound; callers treat that as
	// "uncategorized" rather than failing.
	GetByName(ctx context.Context, name string, typeFilter CategoryType) (*Category, error)
}

// TransactionScope narrows a ledger query. An explicit period is more
// specific than a fiscal year; when both are nil the query spans all
// time.
type TransactionScope struct {
	PeriodID     *uuid.UUID
	FiscalYearID *uuid.UUID
}

// TransactionRepository persists ledger transactions. Aggregation over
// the returned rows happens in the usecase layer with exact decimal
// addition.
type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error

	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// List returns transactions matching the scope, newest first.
	List(ctx context.Context, scope TransactionScope) ([]*Transaction, error)
}

// AssetRepository persists assets.
type AssetRepository interface {
	Create(ctx context.Context, a *Asset) error

	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)

	// GetByLeaseID finds the asset paired with a lease through its
	// non-owning from_lease_id back-reference.
	GetByLeaseID(ctx context.Context, leaseID uuid.UUID) (*Asset, error)

	// ListActive returns assets not yet sold.
	ListActive(ctx context.Context) ([]*Asset, error)

	List(ctx context.Context) ([]*Asset, error)

	// AddDepreciation increases an asset's accumulated depreciation.
	AddDepreciation(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	// MarkSold records the disposal of an asset.
	MarkSold(ctx context.Context, id uuid.UUID, soldDate time.Time, soldPrice decimal.Decimal) error
}

// LeaseRepository persists leases.
type LeaseRepository interface {
	Create(ctx context.Context, l *Lease) error

	GetByID(ctx context.Context, id uuid.UUID) (*Lease, error)

	// ListActive returns leases with status active.
	ListActive(ctx context.Context) ([]*Lease, error)

	List(ctx context.Context) ([]*Lease, error)

	// Update overwrites the mutable lease fields (payments made,
	// remaining balance, status).
	Update(ctx context.Context, l *Lease) error
}

// LoanRepository persists loans.
type LoanRepository interface {
	Create(ctx context.Context, l *Loan) error

	GetByID(ctx context.Context, id uuid.UUID) (*Loan, error)

	// ListActive returns loans with status active.
	ListActive(ctx context.Context) ([]*Loan, error)

	List(ctx context.Context) ([]*Loan, error)

	// Update overwrites the mutable loan fields (remaining balance,
	// status).
	Update(ctx context.Context, l *Loan) error
}

// LoanPaymentRepository persists immutable loan payment rows.
type LoanPaymentRepository interface {
	Create(ctx context.Context, p *LoanPayment) error

	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*LoanPayment, error)

	List(ctx context.Context) ([]*LoanPayment, error)
}

// DividendRepository persists dividend rows.
type DividendRepository interface {
	Create(ctx context.Context, d *Dividend) error

	List(ctx context.Context) ([]*Dividend, error)
}

// SnapshotRepository persists valuation snapshots.
type SnapshotRepository interface {
	Create(ctx context.Context, s *ValuationSnapshot) error

	// List returns snapshots in date order.
	List(ctx context.Context) ([]*ValuationSnapshot, error)
}
