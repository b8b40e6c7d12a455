// Package setup bootstraps a fresh save: settings, the default category
// set, the first fiscal year and period, and the opening valuation
// snapshot.
package setup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

// ErrAlreadySetUp rejects repeated initialization of the same save.
var ErrAlreadySetUp = errors.New("setup already completed")

// Snapshotter writes the opening valuation snapshot.
type Snapshotter interface {
	Snapshot(ctx context.Context, periodID *uuid.UUID, date time.Time) (*domain.ValuationSnapshot, error)
}

// SetupConfig is the operator's answers to the initial questionnaire.
type SetupConfig struct {
	SaveName          string
	InitialCapital    decimal.Decimal
	TotalShares       int64
	InvestorShares    int64
	BuybackMultiplier decimal.Decimal
	TaxRate           decimal.Decimal // percent
	DepYearsVehicle   int
	DepYearsImplement int
	DepYearsBuilding  int
	StartMonth        int // 1-12
	StartDate         time.Time
}

func (c SetupConfig) validate() error {
	if c.SaveName == "" {
		return errors.New("save name cannot be empty")
	}
	if c.InitialCapital.LessThanOrEqual(decimal.Zero) {
		return domain.ErrNonPositiveAmount
	}
	if c.TotalShares <= 0 {
		return errors.New("total shares must be positive")
	}
	if c.InvestorShares < 0 || c.InvestorShares > c.TotalShares {
		return errors.New("investor shares must be between 0 and total shares")
	}
	if c.TaxRate.IsNegative() {
		return errors.New("tax rate cannot be negative")
	}
	if c.StartMonth < 1 || c.StartMonth > 12 {
		return errors.New("start month must be between 1 and 12")
	}
	return nil
}

// Service performs one-time save initialization.
type Service struct {
	SettingsRepo   domain.SettingsRepository
	CategoryRepo   domain.CategoryRepository
	FiscalYearRepo domain.FiscalYearRepository
	PeriodRepo     domain.PeriodRepository
	Valuation      Snapshotter
}

// NewService creates a new setup Service instance.
func NewService(
	settingsRepo domain.SettingsRepository,
	categoryRepo domain.CategoryRepository,
	fiscalYearRepo domain.FiscalYearRepository,
	periodRepo domain.PeriodRepository,
	valuation Snapshotter,
) *Service {
	return &Service{
		SettingsRepo:   settingsRepo,
		CategoryRepo:   categoryRepo,
		FiscalYearRepo: fiscalYearRepo,
		PeriodRepo:     periodRepo,
		Valuation:      valuation,
	}
}

// Initialize writes the settings, seeds categories, opens Year 1 with
// its first period and records the opening snapshot. Farm shares are
// whatever the investors don't hold; the initial share price is capital
// divided by total shares and stays fixed as the buyback floor basis.
func (s *Service) Initialize(ctx context.Context, config SetupConfig) (*domain.FiscalYear, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if done, err := s.SettingsRepo.Get(ctx, domain.SettingSetupComplete); err == nil && done == "1" {
		return nil, ErrAlreadySetUp
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	sharePrice := config.InitialCapital.Div(decimal.NewFromInt(config.TotalShares))
	settings := map[string]string{
		domain.SettingSaveName:          config.SaveName,
		domain.SettingInitialCapital:    config.InitialCapital.String(),
		domain.SettingTotalShares:       fmt.Sprintf("%d", config.TotalShares),
		domain.SettingInvestorShares:    fmt.Sprintf("%d", config.InvestorShares),
		domain.SettingFarmShares:        fmt.Sprintf("%d", config.TotalShares-config.InvestorShares),
		domain.SettingInitialSharePrice: sharePrice.String(),
		domain.SettingBuybackMultiplier: config.BuybackMultiplier.String(),
		domain.SettingAccumulatedLosses: "0",
		domain.SettingTaxRate:           config.TaxRate.String(),
		domain.SettingDepYearsVehicle:   fmt.Sprintf("%d", config.DepYearsVehicle),
		domain.SettingDepYearsImplement: fmt.Sprintf("%d", config.DepYearsImplement),
		domain.SettingDepYearsBuilding:  fmt.Sprintf("%d", config.DepYearsBuilding),
		domain.SettingStartMonth:        fmt.Sprintf("%d", config.StartMonth),
	}
	for key, value := range settings {
		if err := s.SettingsRepo.Set(ctx, key, value); err != nil {
			return nil, fmt.Errorf("failed to store setting %s: %w", key, err)
		}
	}

	if err := s.SeedCategories(ctx); err != nil {
		return nil, err
	}

	fy := &domain.FiscalYear{
		ID:          uuid.New(),
		Name:        "Year 1",
		StartedAt:   config.StartDate,
		OpeningCash: config.InitialCapital,
	}
	if err := s.FiscalYearRepo.Create(ctx, fy); err != nil {
		return nil, fmt.Errorf("failed to create fiscal year: %w", err)
	}
	period := &domain.Period{
		ID:           uuid.New(),
		FiscalYearID: fy.ID,
		Name:         domain.MonthName(config.StartMonth, 0),
		StartedAt:    config.StartDate,
	}
	if err := s.PeriodRepo.Create(ctx, period); err != nil {
		return nil, fmt.Errorf("failed to create period: %w", err)
	}

	if _, err := s.Valuation.Snapshot(ctx, &period.ID, config.StartDate); err != nil {
		return nil, fmt.Errorf("failed to write opening snapshot: %w", err)
	}

	if err := s.SettingsRepo.Set(ctx, domain.SettingSetupComplete, "1"); err != nil {
		return nil, fmt.Errorf("failed to store setting %s: %w", domain.SettingSetupComplete, err)
	}
	return fy, nil
}

type seedCategory struct {
	name  string
	ctype domain.CategoryType
	icon  string
}

var defaultCategories = []seedCategory{
	{"Crop Sales", domain.CategoryTypeRevenue, "🌾"},
	{"Livestock Sales", domain.CategoryTypeRevenue, "🐄"},
	{"Subsidies", domain.CategoryTypeRevenue, "🏛️"},
	{domain.CategoryCapitalGain, domain.CategoryTypeRevenue, "📈"},
	{domain.CategoryOtherRevenue, domain.CategoryTypeRevenue, "💰"},
	{"Seeds", domain.CategoryTypeExpense, "🌱"},
	{"Fertilizer", domain.CategoryTypeExpense, "🧪"},
	{"Fuel", domain.CategoryTypeExpense, "⛽"},
	{"Repairs", domain.CategoryTypeExpense, "🔧"},
	{"Wages", domain.CategoryTypeExpense, "👥"},
	{"Insurance", domain.CategoryTypeExpense, "🛡️"},
	{domain.CategoryLoanInterest, domain.CategoryTypeExpense, "🏦"},
	{domain.CategoryLeaseInterest, domain.CategoryTypeExpense, "📋"},
	{domain.CategoryCapitalLoss, domain.CategoryTypeExpense, "📉"},
	{domain.CategoryCorporateTax, domain.CategoryTypeExpense, "🧾"},
	{domain.CategoryOtherExpenses, domain.CategoryTypeExpense, "📦"},
}

// SeedCategories ensures the default category set exists. Categories
// already present, looked up by name and type, are left untouched, so
// re-running is safe.
func (s *Service) SeedCategories(ctx context.Context) error {
	for _, seed := range defaultCategories {
		_, err := s.CategoryRepo.GetByName(ctx, seed.name, seed.ctype)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to look up category %s: %w", seed.name, err)
		}
		category := &domain.Category{
			ID:   uuid.New(),
			Name: seed.name,
			Type: seed.ctype,
			Icon: seed.icon,
		}
		if err := s.CategoryRepo.Create(ctx, category); err != nil {
			return fmt.Errorf("failed to create category %s: %w", seed.name, err)
		}
	}
	return nil
}
