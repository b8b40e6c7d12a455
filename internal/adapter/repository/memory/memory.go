// Package memory provides an in-memory implementation of the storage
// collaborator. It backs the engine tests and serves as a scratch store
// when no database path is configured. The engine runs single-writer
// (one synchronous command at a time), so no locking is used.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

// Store holds the whole state in insertion-ordered slices, mirroring the
// row order the sqlite adapter produces.
type Store struct {
	settings     map[string]string
	fiscalYears  []*domain.FiscalYear
	periods      []*domain.Period
	categories   []*domain.Category
	transactions []*domain.Transaction
	assets       []*domain.Asset
	leases       []*domain.Lease
	loans        []*domain.Loan
	loanPayments []*domain.LoanPayment
	dividends    []*domain.Dividend
	snapshots    []*domain.ValuationSnapshot
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{settings: make(map[string]string)}
}

// Repository accessors.

func (s *Store) Settings() domain.SettingsRepository         { return &settingsRepo{s} }
func (s *Store) FiscalYears() domain.FiscalYearRepository    { return &fiscalYearRepo{s} }
func (s *Store) Periods() domain.PeriodRepository            { return &periodRepo{s} }
func (s *Store) Categories() domain.CategoryRepository       { return &categoryRepo{s} }
func (s *Store) Transactions() domain.TransactionRepository  { return &transactionRepo{s} }
func (s *Store) Assets() domain.AssetRepository              { return &assetRepo{s} }
func (s *Store) Leases() domain.LeaseRepository              { return &leaseRepo{s} }
func (s *Store) Loans() domain.LoanRepository                { return &loanRepo{s} }
func (s *Store) LoanPayments() domain.LoanPaymentRepository  { return &loanPaymentRepo{s} }
func (s *Store) Dividends() domain.DividendRepository        { return &dividendRepo{s} }
func (s *Store) Snapshots() domain.SnapshotRepository        { return &snapshotRepo{s} }

// --- settings ---

type settingsRepo struct{ s *Store }

func (r *settingsRepo) Get(_ context.Context, key string) (string, error) {
	v, ok := r.s.settings[key]
	if !ok {
		return "", fmt.Errorf("setting %s: %w", key, domain.ErrNotFound)
	}
	return v, nil
}

func (r *settingsRepo) Set(_ context.Context, key, value string) error {
	r.s.settings[key] = value
	return nil
}

func (r *settingsRepo) All(_ context.Context) (map[string]string, error) {
	out := make(map[string]string, len(r.s.settings))
	for k, v := range r.s.settings {
		out[k] = v
	}
	return out, nil
}

// --- fiscal years ---

type fiscalYearRepo struct{ s *Store }

func (r *fiscalYearRepo) Create(_ context.Context, fy *domain.FiscalYear) error {
	cp := *fy
	r.s.fiscalYears = append(r.s.fiscalYears, &cp)
	return nil
}

func (r *fiscalYearRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.FiscalYear, error) {
	for _, fy := range r.s.fiscalYears {
		if fy.ID == id {
			cp := *fy
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("fiscal year %s: %w", id, domain.ErrNotFound)
}

func (r *fiscalYearRepo) Current(_ context.Context) (*domain.FiscalYear, error) {
	for i := len(r.s.fiscalYears) - 1; i >= 0; i-- {
		if r.s.fiscalYears[i].ClosedAt == nil {
			cp := *r.s.fiscalYears[i]
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("open fiscal year: %w", domain.ErrNotFound)
}

func (r *fiscalYearRepo) List(_ context.Context) ([]*domain.FiscalYear, error) {
	out := make([]*domain.FiscalYear, 0, len(r.s.fiscalYears))
	for _, fy := range r.s.fiscalYears {
		cp := *fy
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fiscalYearRepo) Close(_ context.Context, id uuid.UUID, closedAt time.Time) error {
	for _, fy := range r.s.fiscalYears {
		if fy.ID == id {
			t := closedAt
			fy.ClosedAt = &t
			return nil
		}
	}
	return fmt.Errorf("fiscal year %s: %w", id, domain.ErrNotFound)
}

// --- periods ---

type periodRepo struct{ s *Store }

func (r *periodRepo) Create(_ context.Context, p *domain.Period) error {
	cp := *p
	r.s.periods = append(r.s.periods, &cp)
	return nil
}

func (r *periodRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Period, error) {
	for _, p := range r.s.periods {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("period %s: %w", id, domain.ErrNotFound)
}

func (r *periodRepo) Current(_ context.Context) (*domain.Period, error) {
	for i := len(r.s.periods) - 1; i >= 0; i-- {
		if r.s.periods[i].ClosedAt == nil {
			cp := *r.s.periods[i]
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("open period: %w", domain.ErrNotFound)
}

func (r *periodRepo) ListByFiscalYear(_ context.Context, fiscalYearID uuid.UUID) ([]*domain.Period, error) {
	var out []*domain.Period
	for _, p := range r.s.periods {
		if p.FiscalYearID == fiscalYearID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *periodRepo) Close(_ context.Context, id uuid.UUID, closedAt time.Time, depreciationBooked decimal.Decimal) error {
	for _, p := range r.s.periods {
		if p.ID == id {
			t := closedAt
			p.ClosedAt = &t
			p.DepreciationBooked = depreciationBooked
			return nil
		}
	}
	return fmt.Errorf("period %s: %w", id, domain.ErrNotFound)
}

// --- categories ---

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Create(_ context.Context, c *domain.Category) error {
	cp := *c
	r.s.categories = append(r.s.categories, &cp)
	return nil
}

func (r *categoryRepo) List(_ context.Context, typeFilter domain.CategoryType) ([]*domain.Category, error) {
	var out []*domain.Category
	for _, c := range r.s.categories {
		if typeFilter != "" && c.Type != typeFilter {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *categoryRepo) GetByName(_ context.Context, name string, typeFilter domain.CategoryType) (*domain.Category, error) {
	for _, c := range r.s.categories {
		if c.Name == name && (typeFilter == "" || c.Type == typeFilter) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("category %s: %w", name, domain.ErrNotFound)
}

// --- transactions ---

type transactionRepo struct{ s *Store }

func (r *transactionRepo) Create(_ context.Context, tx *domain.Transaction) error {
	cp := *tx
	r.s.transactions = append(r.s.transactions, &cp)
	return nil
}

func (r *transactionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	for _, tx := range r.s.transactions {
		if tx.ID == id {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
}

func (r *transactionRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, tx := range r.s.transactions {
		if tx.ID == id {
			r.s.transactions = append(r.s.transactions[:i], r.s.transactions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
}

func (r *transactionRepo) List(_ context.Context, scope domain.TransactionScope) ([]*domain.Transaction, error) {
	periodsOfYear := map[uuid.UUID]bool{}
	if scope.PeriodID == nil && scope.FiscalYearID != nil {
		for _, p := range r.s.periods {
			if p.FiscalYearID == *scope.FiscalYearID {
				periodsOfYear[p.ID] = true
			}
		}
	}

	var out []*domain.Transaction
	for _, tx := range r.s.transactions {
		switch {
		case scope.PeriodID != nil:
			if tx.PeriodID != *scope.PeriodID {
				continue
			}
		case scope.FiscalYearID != nil:
			if !periodsOfYear[tx.PeriodID] {
				continue
			}
		}
		cp := *tx
		out = append(out, &cp)
	}
	return out, nil
}

// --- assets ---

type assetRepo struct{ s *Store }

func (r *assetRepo) Create(_ context.Context, a *domain.Asset) error {
	cp := *a
	r.s.assets = append(r.s.assets, &cp)
	return nil
}

func (r *assetRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Asset, error) {
	for _, a := range r.s.assets {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
}

func (r *assetRepo) GetByLeaseID(_ context.Context, leaseID uuid.UUID) (*domain.Asset, error) {
	for _, a := range r.s.assets {
		if a.FromLeaseID != nil && *a.FromLeaseID == leaseID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("asset for lease %s: %w", leaseID, domain.ErrNotFound)
}

func (r *assetRepo) ListActive(_ context.Context) ([]*domain.Asset, error) {
	var out []*domain.Asset
	for _, a := range r.s.assets {
		if a.SoldDate == nil {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *assetRepo) List(_ context.Context) ([]*domain.Asset, error) {
	out := make([]*domain.Asset, 0, len(r.s.assets))
	for _, a := range r.s.assets {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *assetRepo) AddDepreciation(_ context.Context, id uuid.UUID, amount decimal.Decimal) error {
	for _, a := range r.s.assets {
		if a.ID == id {
			a.AccumulatedDepreciation = a.AccumulatedDepreciation.Add(amount)
			return nil
		}
	}
	return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
}

func (r *assetRepo) MarkSold(_ context.Context, id uuid.UUID, soldDate time.Time, soldPrice decimal.Decimal) error {
	for _, a := range r.s.assets {
		if a.ID == id {
			t := soldDate
			p := soldPrice
			a.SoldDate = &t
			a.SoldPrice = &p
			return nil
		}
	}
	return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
}

// --- leases ---

type leaseRepo struct{ s *Store }

func (r *leaseRepo) Create(_ context.Context, l *domain.Lease) error {
	cp := *l
	r.s.leases = append(r.s.leases, &cp)
	return nil
}

func (r *leaseRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Lease, error) {
	for _, l := range r.s.leases {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("lease %s: %w", id, domain.ErrNotFound)
}

func (r *leaseRepo) ListActive(_ context.Context) ([]*domain.Lease, error) {
	var out []*domain.Lease
	for _, l := range r.s.leases {
		if l.Status == domain.LeaseStatusActive {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *leaseRepo) List(_ context.Context) ([]*domain.Lease, error) {
	out := make([]*domain.Lease, 0, len(r.s.leases))
	for _, l := range r.s.leases {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (r *leaseRepo) Update(_ context.Context, l *domain.Lease) error {
	for i, existing := range r.s.leases {
		if existing.ID == l.ID {
			cp := *l
			r.s.leases[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("lease %s: %w", l.ID, domain.ErrNotFound)
}

// --- loans ---

type loanRepo struct{ s *Store }

func (r *loanRepo) Create(_ context.Context, l *domain.Loan) error {
	cp := *l
	r.s.loans = append(r.s.loans, &cp)
	return nil
}

func (r *loanRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Loan, error) {
	for _, l := range r.s.loans {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("loan %s: %w", id, domain.ErrNotFound)
}

func (r *loanRepo) ListActive(_ context.Context) ([]*domain.Loan, error) {
	var out []*domain.Loan
	for _, l := range r.s.loans {
		if l.Status == domain.LoanStatusActive {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *loanRepo) List(_ context.Context) ([]*domain.Loan, error) {
	out := make([]*domain.Loan, 0, len(r.s.loans))
	for _, l := range r.s.loans {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (r *loanRepo) Update(_ context.Context, l *domain.Loan) error {
	for i, existing := range r.s.loans {
		if existing.ID == l.ID {
			cp := *l
			r.s.loans[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("loan %s: %w", l.ID, domain.ErrNotFound)
}

// --- loan payments ---

type loanPaymentRepo struct{ s *Store }

func (r *loanPaymentRepo) Create(_ context.Context, p *domain.LoanPayment) error {
	cp := *p
	r.s.loanPayments = append(r.s.loanPayments, &cp)
	return nil
}

func (r *loanPaymentRepo) ListByLoan(_ context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error) {
	var out []*domain.LoanPayment
	for _, p := range r.s.loanPayments {
		if p.LoanID == loanID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *loanPaymentRepo) List(_ context.Context) ([]*domain.LoanPayment, error) {
	out := make([]*domain.LoanPayment, 0, len(r.s.loanPayments))
	for _, p := range r.s.loanPayments {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// --- dividends ---

type dividendRepo struct{ s *Store }

func (r *dividendRepo) Create(_ context.Context, d *domain.Dividend) error {
	cp := *d
	r.s.dividends = append(r.s.dividends, &cp)
	return nil
}

func (r *dividendRepo) List(_ context.Context) ([]*domain.Dividend, error) {
	out := make([]*domain.Dividend, 0, len(r.s.dividends))
	for _, d := range r.s.dividends {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

// --- snapshots ---

type snapshotRepo struct{ s *Store }

func (r *snapshotRepo) Create(_ context.Context, snap *domain.ValuationSnapshot) error {
	cp := *snap
	r.s.snapshots = append(r.s.snapshots, &cp)
	return nil
}

func (r *snapshotRepo) List(_ context.Context) ([]*domain.ValuationSnapshot, error) {
	out := make([]*domain.ValuationSnapshot, 0, len(r.s.snapshots))
	for _, snap := range r.s.snapshots {
		cp := *snap
		out = append(out, &cp)
	}
	return out, nil
}
