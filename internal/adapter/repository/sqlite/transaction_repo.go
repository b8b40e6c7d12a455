package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, period_id, date, label, amount, type, category_id, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	var notes interface{}
	if tx.Notes != nil {
		notes = *tx.Notes
	}
	_, err := r.db.ExecContext(ctx, query,
		tx.ID.String(),
		tx.PeriodID.String(),
		timeToDB(tx.Date),
		tx.Label,
		tx.Amount.String(),
		string(tx.Type),
		nullUUIDToDB(tx.CategoryID),
		notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `
		SELECT id, period_id, date, label, amount, type, category_id, notes
		FROM transactions WHERE id = ?
	`
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return tx, nil
}

func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *transactionRepository) List(ctx context.Context, scope domain.TransactionScope) ([]*domain.Transaction, error) {
	query := `
		SELECT t.id, t.period_id, t.date, t.label, t.amount, t.type, t.category_id, t.notes
		FROM transactions t
	`
	args := []interface{}{}
	switch {
	case scope.PeriodID != nil:
		query += ` WHERE t.period_id = ?`
		args = append(args, scope.PeriodID.String())
	case scope.FiscalYearID != nil:
		query += ` JOIN periods p ON p.id = t.period_id WHERE p.fiscal_year_id = ?`
		args = append(args, scope.FiscalYearID.String())
	}
	query += ` ORDER BY t.date DESC, t.rowid DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var idStr, periodStr, dateStr, amountStr, typeStr string
	var categoryID, notes sql.NullString

	if err := row.Scan(&idStr, &periodStr, &dateStr, &tx.Label, &amountStr, &typeStr, &categoryID, &notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	var err error
	if tx.ID, err = uuidFromDB(idStr); err != nil {
		return nil, err
	}
	if tx.PeriodID, err = uuidFromDB(periodStr); err != nil {
		return nil, err
	}
	if tx.Date, err = timeFromDB(dateStr); err != nil {
		return nil, err
	}
	if tx.Amount, err = decimalFromDB(amountStr); err != nil {
		return nil, err
	}
	if tx.CategoryID, err = nullUUIDFromDB(categoryID); err != nil {
		return nil, err
	}
	tx.Type = domain.CategoryType(typeStr)
	if notes.Valid {
		tx.Notes = &notes.String
	}
	return &tx, nil
}
