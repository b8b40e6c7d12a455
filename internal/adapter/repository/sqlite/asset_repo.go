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

// assetRepository implements domain.AssetRepository
type assetRepository struct {
	db *DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

const assetColumns = `id, name, type, purchase_price, purchase_date, depreciation_years,
	accumulated_depreciation, from_lease_id, sold_date, sold_price`

func (r *assetRepository) Create(ctx context.Context, a *domain.Asset) error {
	query := `
		INSERT INTO assets (` + assetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var depYears interface{}
	if a.DepreciationYears != nil {
		depYears = *a.DepreciationYears
	}
	_, err := r.db.ExecContext(ctx, query,
		a.ID.String(),
		a.Name,
		string(a.Type),
		a.PurchasePrice.String(),
		timeToDB(a.PurchaseDate),
		depYears,
		a.AccumulatedDepreciation.String(),
		nullUUIDToDB(a.FromLeaseID),
		nullTimeToDB(a.SoldDate),
		nullDecimalToDB(a.SoldPrice),
	)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

func (r *assetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = ?`
	a, err := scanAsset(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return a, nil
}

func (r *assetRepository) GetByLeaseID(ctx context.Context, leaseID uuid.UUID) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE from_lease_id = ?`
	a, err := scanAsset(r.db.QueryRowContext(ctx, query, leaseID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset for lease %s: %w", leaseID, domain.ErrNotFound)
		}
		return nil, err
	}
	return a, nil
}

func (r *assetRepository) ListActive(ctx context.Context) ([]*domain.Asset, error) {
	return r.list(ctx, `SELECT `+assetColumns+` FROM assets WHERE sold_date IS NULL ORDER BY rowid`)
}

func (r *assetRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	return r.list(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY rowid`)
}

func (r *assetRepository) list(ctx context.Context, query string) ([]*domain.Asset, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var out []*domain.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *assetRepository) AddDepreciation(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	// Reads the stored decimal back into Go for the addition: sqlite
	// arithmetic on TEXT columns would go through floats.
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	updated := a.AccumulatedDepreciation.Add(amount)
	_, err = r.db.ExecContext(ctx,
		`UPDATE assets SET accumulated_depreciation = ? WHERE id = ?`,
		updated.String(), id.String())
	if err != nil {
		return fmt.Errorf("failed to update depreciation: %w", err)
	}
	return nil
}

func (r *assetRepository) MarkSold(ctx context.Context, id uuid.UUID, soldDate time.Time, soldPrice decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE assets SET sold_date = ?, sold_price = ? WHERE id = ?`,
		timeToDB(soldDate), soldPrice.String(), id.String())
	if err != nil {
		return fmt.Errorf("failed to mark asset sold: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanAsset(row rowScanner) (*domain.Asset, error) {
	var a domain.Asset
	var idStr, typeStr, priceStr, dateStr, accStr string
	var depYears sql.NullInt64
	var fromLease, soldDate, soldPrice sql.NullString

	if err := row.Scan(&idStr, &a.Name, &typeStr, &priceStr, &dateStr, &depYears,
		&accStr, &fromLease, &soldDate, &soldPrice); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan asset: %w", err)
	}

	var err error
	if a.ID, err = uuidFromDB(idStr); err != nil {
		return nil, err
	}
	a.Type = domain.AssetType(typeStr)
	if a.PurchasePrice, err = decimalFromDB(priceStr); err != nil {
		return nil, err
	}
	if a.PurchaseDate, err = timeFromDB(dateStr); err != nil {
		return nil, err
	}
	if depYears.Valid {
		years := int(depYears.Int64)
		a.DepreciationYears = &years
	}
	if a.AccumulatedDepreciation, err = decimalFromDB(accStr); err != nil {
		return nil, err
	}
	if a.FromLeaseID, err = nullUUIDFromDB(fromLease); err != nil {
		return nil, err
	}
	if a.SoldDate, err = nullTimeFromDB(soldDate); err != nil {
		return nil, err
	}
	if a.SoldPrice, err = nullDecimalFromDB(soldPrice); err != nil {
		return nil, err
	}
	return &a, nil
}
