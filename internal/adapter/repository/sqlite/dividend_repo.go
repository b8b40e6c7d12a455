package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

// dividendRepository implements domain.DividendRepository
type dividendRepository struct {
	db *DB
}

// NewDividendRepository creates a new dividend repository
func NewDividendRepository(db *DB) domain.DividendRepository {
	return &dividendRepository{db: db}
}

func (r *dividendRepository) Create(ctx context.Context, d *domain.Dividend) error {
	query := `
		INSERT INTO dividends (id, fiscal_year_id, total_amount, per_share, type, date)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		d.ID.String(),
		nullUUIDToDB(d.FiscalYearID),
		d.TotalAmount.String(),
		d.PerShare.String(),
		string(d.Type),
		timeToDB(d.Date),
	)
	if err != nil {
		return fmt.Errorf("failed to create dividend: %w", err)
	}
	return nil
}

func (r *dividendRepository) List(ctx context.Context) ([]*domain.Dividend, error) {
	query := `
		SELECT id, fiscal_year_id, total_amount, per_share, type, date
		FROM dividends ORDER BY rowid
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list dividends: %w", err)
	}
	defer rows.Close()

	var out []*domain.Dividend
	for rows.Next() {
		var d domain.Dividend
		var idStr, amountStr, perShareStr, typeStr, dateStr string
		var fyID sql.NullString

		if err := rows.Scan(&idStr, &fyID, &amountStr, &perShareStr, &typeStr, &dateStr); err != nil {
			return nil, fmt.Errorf("failed to scan dividend: %w", err)
		}
		if d.ID, err = uuidFromDB(idStr); err != nil {
			return nil, err
		}
		if d.FiscalYearID, err = nullUUIDFromDB(fyID); err != nil {
			return nil, err
		}
		if d.TotalAmount, err = decimalFromDB(amountStr); err != nil {
			return nil, err
		}
		if d.PerShare, err = decimalFromDB(perShareStr); err != nil {
			return nil, err
		}
		if d.Date, err = timeFromDB(dateStr); err != nil {
			return nil, err
		}
		d.Type = domain.DividendType(typeStr)
		out = append(out, &d)
	}
	return out, rows.Err()
}

// snapshotRepository implements domain.SnapshotRepository
type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *DB) domain.SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Create(ctx context.Context, s *domain.ValuationSnapshot) error {
	query := `
		INSERT INTO valuation_snapshots
			(id, period_id, date, cash, total_asset_nbv, total_debt, total_lease_obligations, valuation, share_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID.String(),
		nullUUIDToDB(s.PeriodID),
		timeToDB(s.Date),
		s.Cash.String(),
		s.TotalAssetNBV.String(),
		s.TotalDebt.String(),
		s.TotalLeaseObligation.String(),
		s.Valuation.String(),
		s.SharePrice.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepository) List(ctx context.Context) ([]*domain.ValuationSnapshot, error) {
	query := `
		SELECT id, period_id, date, cash, total_asset_nbv, total_debt, total_lease_obligations, valuation, share_price
		FROM valuation_snapshots ORDER BY date, rowid
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []*domain.ValuationSnapshot
	for rows.Next() {
		var s domain.ValuationSnapshot
		var idStr, dateStr, cashStr, nbvStr, debtStr, leaseStr, valuationStr, priceStr string
		var periodID sql.NullString

		if err := rows.Scan(&idStr, &periodID, &dateStr, &cashStr, &nbvStr, &debtStr,
			&leaseStr, &valuationStr, &priceStr); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if s.ID, err = uuidFromDB(idStr); err != nil {
			return nil, err
		}
		if s.PeriodID, err = nullUUIDFromDB(periodID); err != nil {
			return nil, err
		}
		if s.Date, err = timeFromDB(dateStr); err != nil {
			return nil, err
		}
		if s.Cash, err = decimalFromDB(cashStr); err != nil {
			return nil, err
		}
		if s.TotalAssetNBV, err = decimalFromDB(nbvStr); err != nil {
			return nil, err
		}
		if s.TotalDebt, err = decimalFromDB(debtStr); err != nil {
			return nil, err
		}
		if s.TotalLeaseObligation, err = decimalFromDB(leaseStr); err != nil {
			return nil, err
		}
		if s.Valuation, err = decimalFromDB(valuationStr); err != nil {
			return nil, err
		}
		if s.SharePrice, err = decimalFromDB(priceStr); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
