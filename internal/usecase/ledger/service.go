// Package ledger implements the transaction ledger: commands for manual
// entries and read-only aggregation by type, scope and category. The
// ledger is the factual record of revenue and expense; derived postings
// (capital gains, interest, tax) land here too, created by the other
// engines.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

// UncategorizedLabel is used when a transaction references no category
// or a category row that no longer resolves.
const UncategorizedLabel = "Uncategorized"

// CreateTransactionInput is the input for recording a manual ledger
// entry.
type CreateTransactionInput struct {
	Date       time.Time
	Label      string
	Amount     decimal.Decimal
	Type       domain.CategoryType
	CategoryID *uuid.UUID
	Notes      *string
}

// CategoryTotal is one row of a per-category aggregation, ordered by
// descending total.
type CategoryTotal struct {
	CategoryID *uuid.UUID
	Name       string
	Icon       string
	Total      decimal.Decimal
}

// Service aggregates and mutates the transaction ledger.
type Service struct {
	TransactionRepo domain.TransactionRepository
	PeriodRepo      domain.PeriodRepository
	CategoryRepo    domain.CategoryRepository
}

// NewService creates a new ledger Service instance.
func NewService(txRepo domain.TransactionRepository, periodRepo domain.PeriodRepository, categoryRepo domain.CategoryRepository) *Service {
	return &Service{
		TransactionRepo: txRepo,
		PeriodRepo:      periodRepo,
		CategoryRepo:    categoryRepo,
	}
}

// CreateTransaction records a manual entry into the currently open
// period. Rejected with ErrNoOpenPeriod when no period is open and with
// ErrNonPositiveAmount for amounts <= 0; nothing is written on
// rejection.
func (s *Service) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	period, err := s.PeriodRepo.Current(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNoOpenPeriod
		}
		return nil, fmt.Errorf("failed to resolve open period: %w", err)
	}

	tx := &domain.Transaction{
		ID:         uuid.New(),
		PeriodID:   period.ID,
		Date:       input.Date,
		Label:      input.Label,
		Amount:     input.Amount,
		Type:       input.Type,
		CategoryID: input.CategoryID,
		Notes:      input.Notes,
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	if err := s.TransactionRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

// DeleteTransaction removes a manual entry by id.
func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if err := s.TransactionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// List returns the transactions matching the scope, newest first.
func (s *Service) List(ctx context.Context, scope domain.TransactionScope) ([]*domain.Transaction, error) {
	return s.TransactionRepo.List(ctx, scope)
}

// SumByType returns the exact decimal sum of amounts for one
// transaction type within the scope. A period filter takes precedence
// over a fiscal-year filter; an empty scope spans all time. No rounding
// is applied at this layer.
func (s *Service) SumByType(ctx context.Context, txType domain.CategoryType, scope domain.TransactionScope) (decimal.Decimal, error) {
	txs, err := s.TransactionRepo.List(ctx, scope)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list transactions: %w", err)
	}

	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type == txType {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

// SumByCategory returns per-category totals for one transaction type
// within the scope, ordered by descending total; ties keep category
// order. A transaction whose category reference does not resolve is
// reported under the uncategorized row instead of failing the query.
func (s *Service) SumByCategory(ctx context.Context, txType domain.CategoryType, scope domain.TransactionScope) ([]CategoryTotal, error) {
	txs, err := s.TransactionRepo.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	categories, err := s.CategoryRepo.List(ctx, txType)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	byID := make(map[uuid.UUID]*domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	totals := make(map[uuid.UUID]decimal.Decimal)
	uncategorized := decimal.Zero
	hasUncategorized := false
	for _, tx := range txs {
		if tx.Type != txType {
			continue
		}
		if tx.CategoryID == nil || byID[*tx.CategoryID] == nil {
			uncategorized = uncategorized.Add(tx.Amount)
			hasUncategorized = true
			continue
		}
		totals[*tx.CategoryID] = totals[*tx.CategoryID].Add(tx.Amount)
	}

	rows := make([]CategoryTotal, 0, len(totals)+1)
	for _, c := range categories {
		total, ok := totals[c.ID]
		if !ok {
			continue
		}
		id := c.ID
		rows = append(rows, CategoryTotal{
			CategoryID: &id,
			Name:       c.Name,
			Icon:       c.Icon,
			Total:      total,
		})
	}
	if hasUncategorized {
		rows = append(rows, CategoryTotal{Name: UncategorizedLabel, Total: uncategorized})
	}

	// Stable sort keeps category order on equal totals.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total.GreaterThan(rows[j].Total)
	})

	return rows, nil
}
