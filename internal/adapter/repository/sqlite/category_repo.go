package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

// categoryRepository implements domain.CategoryRepository
type categoryRepository struct {
	db *DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *DB) domain.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `INSERT INTO categories (id, name, type, icon) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, c.ID.String(), c.Name, string(c.Type), c.Icon)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) List(ctx context.Context, typeFilter domain.CategoryType) ([]*domain.Category, error) {
	query := `SELECT id, name, type, icon FROM categories`
	args := []interface{}{}
	if typeFilter != "" {
		query += ` WHERE type = ?`
		args = append(args, string(typeFilter))
	}
	query += ` ORDER BY rowid`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *categoryRepository) GetByName(ctx context.Context, name string, typeFilter domain.CategoryType) (*domain.Category, error) {
	query := `SELECT id, name, type, icon FROM categories WHERE name = ? AND type = ?`
	c, err := scanCategory(r.db.QueryRowContext(ctx, query, name, string(typeFilter)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %s: %w", name, domain.ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var c domain.Category
	var idStr, typeStr string
	if err := row.Scan(&idStr, &c.Name, &typeStr, &c.Icon); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}

	var err error
	if c.ID, err = uuidFromDB(idStr); err != nil {
		return nil, err
	}
	c.Type = domain.CategoryType(typeStr)
	return &c, nil
}
