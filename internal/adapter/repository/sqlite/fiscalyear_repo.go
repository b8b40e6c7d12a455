package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

// fiscalYearRepository implements domain.FiscalYearRepository
type fiscalYearRepository struct {
	db *DB
}

// NewFiscalYearRepository creates a new fiscal year repository
func NewFiscalYearRepository(db *DB) domain.FiscalYearRepository {
	return &fiscalYearRepository{db: db}
}

func (r *fiscalYearRepository) Create(ctx context.Context, fy *domain.FiscalYear) error {
	query := `
		INSERT INTO fiscal_years (id, name, started_at, closed_at, opening_cash)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		fy.ID.String(),
		fy.Name,
		timeToDB(fy.StartedAt),
		nullTimeToDB(fy.ClosedAt),
		fy.OpeningCash.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to create fiscal year: %w", err)
	}
	return nil
}

func (r *fiscalYearRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FiscalYear, error) {
	query := `
		SELECT id, name, started_at, closed_at, opening_cash
		FROM fiscal_years WHERE id = ?
	`
	fy, err := scanFiscalYear(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("fiscal year %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return fy, nil
}

func (r *fiscalYearRepository) Current(ctx context.Context) (*domain.FiscalYear, error) {
	query := `
		SELECT id, name, started_at, closed_at, opening_cash
		FROM fiscal_years WHERE closed_at IS NULL
		ORDER BY rowid DESC LIMIT 1
	`
	fy, err := scanFiscalYear(r.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("open fiscal year: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return fy, nil
}

func (r *fiscalYearRepository) List(ctx context.Context) ([]*domain.FiscalYear, error) {
	query := `
		SELECT id, name, started_at, closed_at, opening_cash
		FROM fiscal_years ORDER BY rowid
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list fiscal years: %w", err)
	}
	defer rows.Close()

	var out []*domain.FiscalYear
	for rows.Next() {
		fy, err := scanFiscalYear(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fy)
	}
	return out, rows.Err()
}

func (r *fiscalYearRepository) Close(ctx context.Context, id uuid.UUID, closedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE fiscal_years SET closed_at = ? WHERE id = ?`,
		timeToDB(closedAt), id.String())
	if err != nil {
		return fmt.Errorf("failed to close fiscal year: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("fiscal year %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFiscalYear(row rowScanner) (*domain.FiscalYear, error) {
	var fy domain.FiscalYear
	var idStr, startedStr, cashStr string
	var closed sql.NullString

	if err := row.Scan(&idStr, &fy.Name, &startedStr, &closed, &cashStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan fiscal year: %w", err)
	}

	var err error
	if fy.ID, err = uuidFromDB(idStr); err != nil {
		return nil, err
	}
	if fy.StartedAt, err = timeFromDB(startedStr); err != nil {
		return nil, err
	}
	if fy.ClosedAt, err = nullTimeFromDB(closed); err != nil {
		return nil, err
	}
	if fy.OpeningCash, err = decimalFromDB(cashStr); err != nil {
		return nil, err
	}
	return &fy, nil
}

// periodRepository implements domain.PeriodRepository
type periodRepository struct {
	db *DB
}

// NewPeriodRepository creates a new period repository
func NewPeriodRepository(db *DB) domain.PeriodRepository {
	return &periodRepository{db: db}
}

func (r *periodRepository) Create(ctx context.Context, p *domain.Period) error {
	query := `
		INSERT INTO periods (id, fiscal_year_id, name, started_at, closed_at, depreciation_booked)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID.String(),
		p.FiscalYearID.String(),
		p.Name,
		timeToDB(p.StartedAt),
		nullTimeToDB(p.ClosedAt),
		p.DepreciationBooked.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to create period: %w", err)
	}
	return nil
}

func (r *periodRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Period, error) {
	query := `
		SELECT id, fiscal_year_id, name, started_at, closed_at, depreciation_booked
		FROM periods WHERE id = ?
	`
	p, err := scanPeriod(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("period %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (r *periodRepository) Current(ctx context.Context) (*domain.Period, error) {
	query := `
		SELECT id, fiscal_year_id, name, started_at, closed_at, depreciation_booked
		FROM periods WHERE closed_at IS NULL
		ORDER BY rowid DESC LIMIT 1
	`
	p, err := scanPeriod(r.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("open period: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (r *periodRepository) ListByFiscalYear(ctx context.Context, fiscalYearID uuid.UUID) ([]*domain.Period, error) {
	query := `
		SELECT id, fiscal_year_id, name, started_at, closed_at, depreciation_booked
		FROM periods WHERE fiscal_year_id = ? ORDER BY rowid
	`
	rows, err := r.db.QueryContext(ctx, query, fiscalYearID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	defer rows.Close()

	var out []*domain.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *periodRepository) Close(ctx context.Context, id uuid.UUID, closedAt time.Time, depreciationBooked decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE periods SET closed_at = ?, depreciation_booked = ? WHERE id = ?`,
		timeToDB(closedAt), depreciationBooked.String(), id.String())
	if err != nil {
		return fmt.Errorf("failed to close period: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("period %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanPeriod(row rowScanner) (*domain.Period, error) {
	var p domain.Period
	var idStr, fyStr, startedStr, depStr string
	var closed sql.NullString

	if err := row.Scan(&idStr, &fyStr, &p.Name, &startedStr, &closed, &depStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan period: %w", err)
	}

	var err error
	if p.ID, err = uuidFromDB(idStr); err != nil {
		return nil, err
	}
	if p.FiscalYearID, err = uuidFromDB(fyStr); err != nil {
		return nil, err
	}
	if p.StartedAt, err = timeFromDB(startedStr); err != nil {
		return nil, err
	}
	if p.ClosedAt, err = nullTimeFromDB(closed); err != nil {
		return nil, err
	}
	if p.DepreciationBooked, err = decimalFromDB(depStr); err != nil {
		return nil, err
	}
	return &p, nil
}
