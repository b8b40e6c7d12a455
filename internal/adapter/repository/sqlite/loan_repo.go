package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

// loanRepository implements domain.LoanRepository
type loanRepository struct {
	db *DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *DB) domain.LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, name, principal, interest_rate, start_date, remaining_balance, status`

func (r *loanRepository) Create(ctx context.Context, l *domain.Loan) error {
	query := `INSERT INTO loans (` + loanColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		l.ID.String(),
		l.Name,
		l.Principal.String(),
		l.InterestRate.String(),
		timeToDB(l.StartDate),
		l.RemainingBalance.String(),
		string(l.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = ?`
	l, err := scanLoan(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("loan %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return l, nil
}

func (r *loanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	return r.list(ctx, `SELECT `+loanColumns+` FROM loans WHERE status = ? ORDER BY rowid`,
		string(domain.LoanStatusActive))
}

func (r *loanRepository) List(ctx context.Context) ([]*domain.Loan, error) {
	return r.list(ctx, `SELECT `+loanColumns+` FROM loans ORDER BY rowid`)
}

func (r *loanRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Loan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var out []*domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *loanRepository) Update(ctx context.Context, l *domain.Loan) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE loans SET remaining_balance = ?, status = ? WHERE id = ?`,
		l.RemainingBalance.String(), string(l.Status), l.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("loan %s: %w", l.ID, domain.ErrNotFound)
	}
	return nil
}

func scanLoan(row rowScanner) (*domain.Loan, error) {
	var l domain.Loan
	var idStr, principalStr, rateStr, startStr, balanceStr, statusStr string

	if err := row.Scan(&idStr, &l.Name, &principalStr, &rateStr, &startStr, &balanceStr, &statusStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan loan: %w", err)
	}

	var err error
	if l.ID, err = uuidFromDB(idStr); err != nil {
		return nil, err
	}
	if l.Principal, err = decimalFromDB(principalStr); err != nil {
		return nil, err
	}
	if l.InterestRate, err = decimalFromDB(rateStr); err != nil {
		return nil, err
	}
	if l.StartDate, err = timeFromDB(startStr); err != nil {
		return nil, err
	}
	if l.RemainingBalance, err = decimalFromDB(balanceStr); err != nil {
		return nil, err
	}
	l.Status = domain.LoanStatus(statusStr)
	return &l, nil
}

// loanPaymentRepository implements domain.LoanPaymentRepository
type loanPaymentRepository struct {
	db *DB
}

// NewLoanPaymentRepository creates a new loan payment repository
func NewLoanPaymentRepository(db *DB) domain.LoanPaymentRepository {
	return &loanPaymentRepository{db: db}
}

const loanPaymentColumns = `id, loan_id, period_id, amount, principal_part, interest_part, date`

func (r *loanPaymentRepository) Create(ctx context.Context, p *domain.LoanPayment) error {
	query := `INSERT INTO loan_payments (` + loanPaymentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID.String(),
		p.LoanID.String(),
		p.PeriodID.String(),
		p.Amount.String(),
		p.PrincipalPart.String(),
		p.InterestPart.String(),
		timeToDB(p.Date),
	)
	if err != nil {
		return fmt.Errorf("failed to create loan payment: %w", err)
	}
	return nil
}

func (r *loanPaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error) {
	return r.list(ctx, `SELECT `+loanPaymentColumns+` FROM loan_payments WHERE loan_id = ? ORDER BY rowid`,
		loanID.String())
}

func (r *loanPaymentRepository) List(ctx context.Context) ([]*domain.LoanPayment, error) {
	return r.list(ctx, `SELECT `+loanPaymentColumns+` FROM loan_payments ORDER BY rowid`)
}

func (r *loanPaymentRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.LoanPayment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan payments: %w", err)
	}
	defer rows.Close()

	var out []*domain.LoanPayment
	for rows.Next() {
		p, err := scanLoanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanLoanPayment(row rowScanner) (*domain.LoanPayment, error) {
	var p domain.LoanPayment
	var idStr, loanStr, periodStr, amountStr, principalStr, interestStr, dateStr string

	if err := row.Scan(&idStr, &loanStr, &periodStr, &amountStr, &principalStr, &interestStr, &dateStr); err != nil {
		return nil, fmt.Errorf("failed to scan loan payment: %w", err)
	}

	var err error
	if p.ID, err = uuidFromDB(idStr); err != nil {
		return nil, err
	}
	if p.LoanID, err = uuidFromDB(loanStr); err != nil {
		return nil, err
	}
	if p.PeriodID, err = uuidFromDB(periodStr); err != nil {
		return nil, err
	}
	if p.Amount, err = decimalFromDB(amountStr); err != nil {
		return nil, err
	}
	if p.PrincipalPart, err = decimalFromDB(principalStr); err != nil {
		return nil, err
	}
	if p.InterestPart, err = decimalFromDB(interestStr); err != nil {
		return nil, err
	}
	if p.Date, err = timeFromDB(dateStr); err != nil {
		return nil, err
	}
	return &p, nil
}
