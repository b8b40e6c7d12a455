// Package closing drives the period and fiscal-year lifecycle: opening
// months, closing months, and the two-phase year-end closing. It is the
// only code path that books depreciation and lease installments, which
// keeps double booking structurally impossible rather than guarded.
package closing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

// DepreciationEngine books and projects straight-line depreciation.
type DepreciationEngine interface {
	BookDepreciation(ctx context.Context, months int) (decimal.Decimal, error)
	ProjectDepreciation(ctx context.Context, months int) (decimal.Decimal, error)
}

// InstallmentEngine settles lease installments into a period.
type InstallmentEngine interface {
	ProcessInstallments(ctx context.Context, periodID uuid.UUID, date time.Time, months int) error
}

// ValuationEngine recomputes cash and writes valuation snapshots.
type ValuationEngine interface {
	Cash(ctx context.Context) (decimal.Decimal, error)
	Snapshot(ctx context.Context, periodID *uuid.UUID, date time.Time) (*domain.ValuationSnapshot, error)
}

// YearEndPreview is the no-mutation phase of year-end closing. Commit
// uses the same computation, so the preview shown to the operator
// always agrees with what phase two writes.
type YearEndPreview struct {
	FiscalYearID          uuid.UUID
	Revenue               decimal.Decimal
	Expenses              decimal.Decimal
	BookedDepreciation    decimal.Decimal
	ProjectedDepreciation decimal.Decimal
	NetProfit             decimal.Decimal
	LossesBefore          decimal.Decimal
	AfterLosses           decimal.Decimal
	Tax                   decimal.Decimal
	AfterTax              decimal.Decimal
	SuggestedDividend     decimal.Decimal
	RemainingDepMonths    int
}

// YearEndResult reports what phase two wrote.
type YearEndResult struct {
	Preview       YearEndPreview
	LossesAfter   decimal.Decimal
	DividendPaid  decimal.Decimal
	FinalSnapshot *domain.ValuationSnapshot
	NewFiscalYear *domain.FiscalYear
	NewPeriod     *domain.Period
}

// Service drives lifecycle transitions.
type Service struct {
	FiscalYearRepo  domain.FiscalYearRepository
	PeriodRepo      domain.PeriodRepository
	SettingsRepo    domain.SettingsRepository
	TransactionRepo domain.TransactionRepository
	CategoryRepo    domain.CategoryRepository
	DividendRepo    domain.DividendRepository
	Depreciation    DepreciationEngine
	Installments    InstallmentEngine
	Valuation       ValuationEngine
}

// NewService creates a new closing Service instance.
func NewService(
	fiscalYearRepo domain.FiscalYearRepository,
	periodRepo domain.PeriodRepository,
	settingsRepo domain.SettingsRepository,
	txRepo domain.TransactionRepository,
	categoryRepo domain.CategoryRepository,
	dividendRepo domain.DividendRepository,
	depreciation DepreciationEngine,
	installments InstallmentEngine,
	valuation ValuationEngine,
) *Service {
	return &Service{
		FiscalYearRepo:  fiscalYearRepo,
		PeriodRepo:      periodRepo,
		SettingsRepo:    settingsRepo,
		TransactionRepo: txRepo,
		CategoryRepo:    categoryRepo,
		DividendRepo:    dividendRepo,
		Depreciation:    depreciation,
		Installments:    installments,
		Valuation:       valuation,
	}
}

// OpenMonth opens the next period of the current fiscal year. The name
// comes from the rotating month table seeded by the configured start
// month. Opening a period immediately settles one month of lease
// installments into it; a period's lease month is consumed exactly once,
// at open.
func (s *Service) OpenMonth(ctx context.Context, date time.Time) (*domain.Period, error) {
	fy, err := s.currentFiscalYear(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.PeriodRepo.Current(ctx); err == nil {
		return nil, domain.ErrPeriodStillOpen
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to get current period: %w", err)
	}
	return s.openPeriod(ctx, fy, date)
}

// CloseMonth closes the open period: one month of depreciation is
// booked, the valuation recomputed and snapshotted, and the period
// closed carrying the booked amount.
func (s *Service) CloseMonth(ctx context.Context, date time.Time) (*domain.ValuationSnapshot, error) {
	period, err := s.currentPeriod(ctx)
	if err != nil {
		return nil, err
	}

	booked, err := s.Depreciation.BookDepreciation(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to book depreciation: %w", err)
	}
	snapshot, err := s.Valuation.Snapshot(ctx, &period.ID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot valuation: %w", err)
	}
	if err := s.PeriodRepo.Close(ctx, period.ID, date, booked); err != nil {
		return nil, fmt.Errorf("failed to close period: %w", err)
	}
	return snapshot, nil
}

// PreviewYearEnd computes the year-end closing figures without touching
// any state: full-year revenue and expenses, depreciation booked into
// closed periods plus a projection for the months not yet closed, loss
// absorption, tax and the suggested investor dividend.
func (s *Service) PreviewYearEnd(ctx context.Context) (*YearEndPreview, error) {
	fy, err := s.currentFiscalYear(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}

	periods, err := s.PeriodRepo.ListByFiscalYear(ctx, fy.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	booked := decimal.Zero
	closed := 0
	for _, p := range periods {
		if !p.IsOpen() {
			booked = booked.Add(p.DepreciationBooked)
			closed++
		}
	}
	remaining := domain.PeriodsPerYear - closed

	revenue, expenses, err := s.yearTotals(ctx, fy.ID)
	if err != nil {
		return nil, err
	}
	projected, err := s.Depreciation.ProjectDepreciation(ctx, remaining)
	if err != nil {
		return nil, fmt.Errorf("failed to project depreciation: %w", err)
	}

	preview := &YearEndPreview{
		FiscalYearID:          fy.ID,
		Revenue:               revenue,
		Expenses:              expenses,
		BookedDepreciation:    booked,
		ProjectedDepreciation: projected,
		LossesBefore:          settings.AccumulatedLosses.Abs(),
		RemainingDepMonths:    remaining,
	}
	preview.NetProfit = revenue.Sub(expenses).Sub(booked).Sub(projected)

	preview.AfterLosses = preview.NetProfit.Sub(preview.LossesBefore)
	if preview.AfterLosses.IsNegative() {
		preview.AfterLosses = decimal.Zero
	}
	if preview.AfterLosses.IsPositive() {
		preview.Tax = domain.RoundMinor(preview.AfterLosses.Mul(settings.TaxRate).Div(decimal.NewFromInt(100)))
	}
	preview.AfterTax = preview.AfterLosses.Sub(preview.Tax)
	if preview.AfterTax.IsPositive() {
		preview.SuggestedDividend = domain.RoundMinor(preview.AfterTax.Mul(settings.InvestorRatio()))
	}
	return preview, nil
}

// CommitYearEnd runs phase two of year-end closing with the same
// figures PreviewYearEnd produces. A nil dividendOverride pays the
// suggested dividend; an explicit amount replaces it, including paying
// out at a loss, which is allowed.
func (s *Service) CommitYearEnd(ctx context.Context, date time.Time, dividendOverride *decimal.Decimal) (*YearEndResult, error) {
	preview, err := s.PreviewYearEnd(ctx)
	if err != nil {
		return nil, err
	}
	period, err := s.currentPeriod(ctx)
	if err != nil {
		return nil, err
	}
	fy, err := s.FiscalYearRepo.GetByID(ctx, preview.FiscalYearID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fiscal year: %w", err)
	}
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}

	// Carry losses forward: a net loss grows the pot, a profit eats
	// into it, a profit larger than the pot clears it.
	losses := preview.LossesBefore
	if preview.NetProfit.IsNegative() {
		losses = losses.Add(preview.NetProfit.Abs())
	} else {
		losses = losses.Sub(preview.NetProfit)
		if losses.IsNegative() {
			losses = decimal.Zero
		}
	}
	if err := s.SettingsRepo.Set(ctx, domain.SettingAccumulatedLosses, losses.String()); err != nil {
		return nil, fmt.Errorf("failed to store accumulated losses: %w", err)
	}

	if preview.Tax.IsPositive() {
		if err := s.postTax(ctx, period.ID, date, fy.Name, preview.Tax); err != nil {
			return nil, err
		}
	}

	dividend := preview.SuggestedDividend
	if dividendOverride != nil {
		dividend = *dividendOverride
	}
	if dividend.IsPositive() {
		perShare := decimal.Zero
		if settings.TotalShares > 0 {
			perShare = domain.RoundMinor(dividend.Div(decimal.NewFromInt(settings.TotalShares)))
		}
		row := &domain.Dividend{
			ID:           uuid.New(),
			FiscalYearID: &fy.ID,
			TotalAmount:  dividend,
			PerShare:     perShare,
			Type:         domain.DividendTypeMandatory,
			Date:         date,
		}
		if err := s.DividendRepo.Create(ctx, row); err != nil {
			return nil, fmt.Errorf("failed to record dividend: %w", err)
		}
	}

	// The open period's lease month was consumed when it was opened, so
	// installments run for one month fewer than depreciation.
	booked, err := s.Depreciation.BookDepreciation(ctx, preview.RemainingDepMonths)
	if err != nil {
		return nil, fmt.Errorf("failed to book depreciation: %w", err)
	}
	periods, err := s.PeriodRepo.ListByFiscalYear(ctx, fy.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	if months := domain.PeriodsPerYear - len(periods); months > 0 {
		if err := s.Installments.ProcessInstallments(ctx, period.ID, date, months); err != nil {
			return nil, fmt.Errorf("failed to process installments: %w", err)
		}
	}

	snapshot, err := s.Valuation.Snapshot(ctx, &period.ID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot valuation: %w", err)
	}
	if err := s.PeriodRepo.Close(ctx, period.ID, date, booked); err != nil {
		return nil, fmt.Errorf("failed to close period: %w", err)
	}
	if err := s.FiscalYearRepo.Close(ctx, fy.ID, date); err != nil {
		return nil, fmt.Errorf("failed to close fiscal year: %w", err)
	}

	cash, err := s.Valuation.Cash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute opening cash: %w", err)
	}
	years, err := s.FiscalYearRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list fiscal years: %w", err)
	}
	next := &domain.FiscalYear{
		ID:          uuid.New(),
		Name:        fmt.Sprintf("Year %d", len(years)+1),
		StartedAt:   date,
		OpeningCash: cash,
	}
	if err := s.FiscalYearRepo.Create(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to open fiscal year: %w", err)
	}
	firstPeriod, err := s.openPeriod(ctx, next, date)
	if err != nil {
		return nil, err
	}

	return &YearEndResult{
		Preview:       *preview,
		LossesAfter:   losses,
		DividendPaid:  dividend,
		FinalSnapshot: snapshot,
		NewFiscalYear: next,
		NewPeriod:     firstPeriod,
	}, nil
}

func (s *Service) openPeriod(ctx context.Context, fy *domain.FiscalYear, date time.Time) (*domain.Period, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}
	periods, err := s.PeriodRepo.ListByFiscalYear(ctx, fy.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}

	period := &domain.Period{
		ID:           uuid.New(),
		FiscalYearID: fy.ID,
		Name:         domain.MonthName(settings.StartMonth, len(periods)),
		StartedAt:    date,
	}
	if err := s.PeriodRepo.Create(ctx, period); err != nil {
		return nil, fmt.Errorf("failed to create period: %w", err)
	}
	if err := s.Installments.ProcessInstallments(ctx, period.ID, date, 1); err != nil {
		return nil, fmt.Errorf("failed to process installments: %w", err)
	}
	return period, nil
}

func (s *Service) yearTotals(ctx context.Context, fiscalYearID uuid.UUID) (revenue, expenses decimal.Decimal, err error) {
	txs, err := s.TransactionRepo.List(ctx, domain.TransactionScope{FiscalYearID: &fiscalYearID})
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to list transactions: %w", err)
	}
	for _, tx := range txs {
		if tx.Type == domain.CategoryTypeRevenue {
			revenue = revenue.Add(tx.Amount)
		} else {
			expenses = expenses.Add(tx.Amount)
		}
	}
	return revenue, expenses, nil
}

func (s *Service) postTax(ctx context.Context, periodID uuid.UUID, date time.Time, yearName string, amount decimal.Decimal) error {
	var categoryID *uuid.UUID
	category, err := s.CategoryRepo.GetByName(ctx, domain.CategoryCorporateTax, domain.CategoryTypeExpense)
	if err == nil {
		categoryID = &category.ID
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to resolve category %s: %w", domain.CategoryCorporateTax, err)
	}

	tx := &domain.Transaction{
		ID:         uuid.New(),
		PeriodID:   periodID,
		Date:       date,
		Label:      fmt.Sprintf("Corporate tax %s", yearName),
		Amount:     amount,
		Type:       domain.CategoryTypeExpense,
		CategoryID: categoryID,
	}
	if err := s.TransactionRepo.Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to post tax expense: %w", err)
	}
	return nil
}

func (s *Service) currentFiscalYear(ctx context.Context) (*domain.FiscalYear, error) {
	fy, err := s.FiscalYearRepo.Current(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNoOpenFiscalYear
		}
		return nil, fmt.Errorf("failed to get current fiscal year: %w", err)
	}
	return fy, nil
}

func (s *Service) currentPeriod(ctx context.Context) (*domain.Period, error) {
	period, err := s.PeriodRepo.Current(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNoOpenPeriod
		}
		return nil, fmt.Errorf("failed to get current period: %w", err)
	}
	return period, nil
}

func (s *Service) settings(ctx context.Context) (domain.Settings, error) {
	raw, err := s.SettingsRepo.All(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	settings, err := domain.ParseSettings(raw)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return settings, nil
}
