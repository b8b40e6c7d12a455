// Package assets implements asset purchase and disposal plus the
// straight-line depreciation engine.
package assets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

// BuyAssetInput is the input for a direct asset purchase.
type BuyAssetInput struct {
	Name         string
	Type         domain.AssetType
	Price        decimal.Decimal
	PurchaseDate time.Time

	// DepreciationYears overrides the configured default for the asset
	// type when set. Land ignores it and never depreciates.
	DepreciationYears *int
}

// ScheduleRow is one year of a projected depreciation schedule.
type ScheduleRow struct {
	Year         int
	Charge       decimal.Decimal
	Accumulated  decimal.Decimal
	NetBookValue decimal.Decimal
}

// Service handles asset operations and depreciation booking.
type Service struct {
	AssetRepo       domain.AssetRepository
	TransactionRepo domain.TransactionRepository
	CategoryRepo    domain.CategoryRepository
	PeriodRepo      domain.PeriodRepository
	SettingsRepo    domain.SettingsRepository
}

// NewService creates a new assets Service instance.
func NewService(
	assetRepo domain.AssetRepository,
	txRepo domain.TransactionRepository,
	categoryRepo domain.CategoryRepository,
	periodRepo domain.PeriodRepository,
	settingsRepo domain.SettingsRepository,
) *Service {
	return &Service{
		AssetRepo:       assetRepo,
		TransactionRepo: txRepo,
		CategoryRepo:    categoryRepo,
		PeriodRepo:      periodRepo,
		SettingsRepo:    settingsRepo,
	}
}

// BuyAsset records a direct asset purchase. Requires an open period; the
// purchase itself is a balance-sheet cash movement, not a P&L entry, so
// no transaction is posted.
func (s *Service) BuyAsset(ctx context.Context, input BuyAssetInput) (*domain.Asset, error) {
	if _, err := currentPeriod(ctx, s.PeriodRepo); err != nil {
		return nil, err
	}

	depYears := input.DepreciationYears
	if depYears == nil {
		raw, err := s.SettingsRepo.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		settings, err := domain.ParseSettings(raw)
		if err != nil {
			return nil, err
		}
		depYears = settings.DepreciationYearsFor(input.Type)
	}
	if input.Type == domain.AssetTypeLand {
		depYears = nil
	}

	asset := &domain.Asset{
		ID:                      uuid.New(),
		Name:                    input.Name,
		Type:                    input.Type,
		PurchasePrice:           input.Price,
		PurchaseDate:            input.PurchaseDate,
		DepreciationYears:       depYears,
		AccumulatedDepreciation: decimal.Zero,
	}
	if err := asset.Validate(); err != nil {
		return nil, err
	}

	if err := s.AssetRepo.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}
	return asset, nil
}

// SellAsset disposes of an asset at the given price. The difference
// between price and raw net book value is posted as a derived "Capital
// gain" revenue or "Capital loss" expense transaction; a sale at exactly
// NBV posts nothing. Sold assets are immutable afterwards.
func (s *Service) SellAsset(ctx context.Context, id uuid.UUID, soldDate time.Time, soldPrice decimal.Decimal) (*domain.Asset, error) {
	period, err := currentPeriod(ctx, s.PeriodRepo)
	if err != nil {
		return nil, err
	}
	if soldPrice.IsNegative() {
		return nil, domain.ErrNonPositiveAmount
	}

	asset, err := s.AssetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	if asset.IsSold() {
		return nil, domain.ErrAlreadyTerminal
	}

	nbv := asset.NetBookValue()
	if err := s.AssetRepo.MarkSold(ctx, id, soldDate, soldPrice); err != nil {
		return nil, fmt.Errorf("failed to mark asset sold: %w", err)
	}

	// Booking boundary: the posted gain/loss is rounded to the minor
	// unit; the comparison itself uses the raw NBV.
	diff := domain.RoundMinor(soldPrice.Sub(nbv))
	switch {
	case diff.IsPositive():
		err = s.postCapitalResult(ctx, period.ID, soldDate, domain.CategoryTypeRevenue,
			domain.CategoryCapitalGain, fmt.Sprintf("Capital gain: %s", asset.Name), diff)
	case diff.IsNegative():
		err = s.postCapitalResult(ctx, period.ID, soldDate, domain.CategoryTypeExpense,
			domain.CategoryCapitalLoss, fmt.Sprintf("Capital loss: %s", asset.Name), diff.Abs())
	}
	if err != nil {
		return nil, err
	}

	asset.SoldDate = &soldDate
	asset.SoldPrice = &soldPrice
	return asset, nil
}

// BookDepreciation books the given number of months of straight-line
// depreciation against every active depreciable asset and returns the
// total charged. Exhausted bases are skipped and each charge is capped
// at the remaining depreciable base. months = 0 books nothing.
//
// The lifecycle invokes this exactly once per elapsed month: booking is
// reachable only through the open/close transitions, which the period
// state machine permits a single time per period.
func (s *Service) BookDepreciation(ctx context.Context, months int) (decimal.Decimal, error) {
	total := decimal.Zero
	if months <= 0 {
		return total, nil
	}

	active, err := s.AssetRepo.ListActive(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list active assets: %w", err)
	}

	for _, asset := range active {
		charge := depreciationCharge(asset, months)
		if charge.IsZero() {
			continue
		}
		if err := s.AssetRepo.AddDepreciation(ctx, asset.ID, charge); err != nil {
			return decimal.Zero, fmt.Errorf("failed to book depreciation for %s: %w", asset.Name, err)
		}
		total = total.Add(charge)
	}
	return total, nil
}

// ProjectDepreciation computes what BookDepreciation would charge for
// the given number of months without mutating anything. Year-end preview
// uses it for the not-yet-closed months.
func (s *Service) ProjectDepreciation(ctx context.Context, months int) (decimal.Decimal, error) {
	total := decimal.Zero
	if months <= 0 {
		return total, nil
	}

	active, err := s.AssetRepo.ListActive(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list active assets: %w", err)
	}
	for _, asset := range active {
		total = total.Add(depreciationCharge(asset, months))
	}
	return total, nil
}

// Schedule projects the yearly depreciation of an asset until its base
// is exhausted.
func (s *Service) Schedule(asset *domain.Asset) []ScheduleRow {
	if !asset.Depreciable() {
		return nil
	}

	annual := asset.PurchasePrice.Div(decimal.NewFromInt(int64(*asset.DepreciationYears)))
	rows := make([]ScheduleRow, 0, *asset.DepreciationYears)
	accumulated := decimal.Zero
	for year := 1; year <= *asset.DepreciationYears; year++ {
		charge := annual
		remaining := asset.PurchasePrice.Sub(accumulated)
		if charge.GreaterThan(remaining) {
			charge = remaining
		}
		accumulated = accumulated.Add(charge)
		rows = append(rows, ScheduleRow{
			Year:         year,
			Charge:       charge,
			Accumulated:  accumulated,
			NetBookValue: asset.PurchasePrice.Sub(accumulated),
		})
	}
	return rows
}

func depreciationCharge(asset *domain.Asset, months int) decimal.Decimal {
	if !asset.Depreciable() {
		return decimal.Zero
	}
	remaining := asset.PurchasePrice.Sub(asset.AccumulatedDepreciation)
	if remaining.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	charge := asset.MonthlyDepreciation().Mul(decimal.NewFromInt(int64(months)))
	if charge.GreaterThan(remaining) {
		return remaining
	}
	return charge
}

func (s *Service) postCapitalResult(ctx context.Context, periodID uuid.UUID, date time.Time, txType domain.CategoryType, categoryName, label string, amount decimal.Decimal) error {
	var categoryID *uuid.UUID
	category, err := s.CategoryRepo.GetByName(ctx, categoryName, txType)
	if err == nil {
		categoryID = &category.ID
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to resolve category %s: %w", categoryName, err)
	}

	tx := &domain.Transaction{
		ID:         uuid.New(),
		PeriodID:   periodID,
		Date:       date,
		Label:      label,
		Amount:     amount,
		Type:       txType,
		CategoryID: categoryID,
	}
	if err := s.TransactionRepo.Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to post %s: %w", label, err)
	}
	return nil
}

func currentPeriod(ctx context.Context, repo domain.PeriodRepository) (*domain.Period, error) {
	period, err := repo.Current(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNoOpenPeriod
		}
		return nil, fmt.Errorf("failed to resolve open period: %w", err)
	}
	return period, nil
}
