package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

// leaseRepository implements domain.LeaseRepository
type leaseRepository struct {
	db *DB
}

// NewLeaseRepository creates a new lease repository
func NewLeaseRepository(db *DB) domain.LeaseRepository {
	return &leaseRepository{db: db}
}

const leaseColumns = `id, name, total_value, initial_payment, monthly_payment, duration_months,
	residual_value, start_date, payments_made, status, interest_rate, remaining_balance`

func (r *leaseRepository) Create(ctx context.Context, l *domain.Lease) error {
	query := `
		INSERT INTO leases (` + leaseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		l.ID.String(),
		l.Name,
		l.TotalValue.String(),
		l.InitialPayment.String(),
		l.MonthlyPayment.String(),
		l.DurationMonths,
		l.ResidualValue.String(),
		timeToDB(l.StartDate),
		l.PaymentsMade,
		string(l.Status),
		l.InterestRate.String(),
		l.RemainingBalance.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}
	return nil
}

func (r *leaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE id = ?`
	l, err := scanLease(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lease %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return l, nil
}

func (r *leaseRepository) ListActive(ctx context.Context) ([]*domain.Lease, error) {
	return r.list(ctx, `SELECT `+leaseColumns+` FROM leases WHERE status = ? ORDER BY rowid`,
		string(domain.LeaseStatusActive))
}

func (r *leaseRepository) List(ctx context.Context) ([]*domain.Lease, error) {
	return r.list(ctx, `SELECT `+leaseColumns+` FROM leases ORDER BY rowid`)
}

func (r *leaseRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Lease, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leases: %w", err)
	}
	defer rows.Close()

	var out []*domain.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *leaseRepository) Update(ctx context.Context, l *domain.Lease) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE leases SET payments_made = ?, remaining_balance = ?, status = ? WHERE id = ?`,
		l.PaymentsMade, l.RemainingBalance.String(), string(l.Status), l.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update lease: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("lease %s: %w", l.ID, domain.ErrNotFound)
	}
	return nil
}

func scanLease(row rowScanner) (*domain.Lease, error) {
	var l domain.Lease
	var idStr, totalStr, initialStr, monthlyStr, residualStr, startStr, statusStr, rateStr, balanceStr string

	if err := row.Scan(&idStr, &l.Name, &totalStr, &initialStr, &monthlyStr, &l.DurationMonths,
		&residualStr, &startStr, &l.PaymentsMade, &statusStr, &rateStr, &balanceStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan lease: %w", err)
	}

	var err error
	if l.ID, err = uuidFromDB(idStr); err != nil {
		return nil, err
	}
	if l.TotalValue, err = decimalFromDB(totalStr); err != nil {
		return nil, err
	}
	if l.InitialPayment, err = decimalFromDB(initialStr); err != nil {
		return nil, err
	}
	if l.MonthlyPayment, err = decimalFromDB(monthlyStr); err != nil {
		return nil, err
	}
	if l.ResidualValue, err = decimalFromDB(residualStr); err != nil {
		return nil, err
	}
	if l.StartDate, err = timeFromDB(startStr); err != nil {
		return nil, err
	}
	if l.InterestRate, err = decimalFromDB(rateStr); err != nil {
		return nil, err
	}
	if l.RemainingBalance, err = decimalFromDB(balanceStr); err != nil {
		return nil, err
	}
	l.Status = domain.LeaseStatus(statusStr)
	return &l, nil
}
