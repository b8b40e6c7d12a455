// Package valuation derives the cash position, enterprise valuation and
// per-share price from the current state of the books. Nothing here is
// stored except explicit snapshots; every figure is recomputed from the
// ledger and instrument balances on each read.
package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

// Figures bundles the derived valuation numbers at a point in time.
type Figures struct {
	Cash                  decimal.Decimal
	TotalAssetNBV         decimal.Decimal
	TotalDebt             decimal.Decimal
	TotalLeaseObligations decimal.Decimal
	Valuation             decimal.Decimal
	SharePrice            decimal.Decimal
}

// BuybackPricing is the floor and effective price for repurchasing
// investor shares.
type BuybackPricing struct {
	MinPrice       decimal.Decimal
	SharePrice     decimal.Decimal
	EffectivePrice decimal.Decimal

	// Cost of repurchasing every investor share at the effective
	// price, and what the investor gains over the initial stake.
	InvestorShares int64
	BuybackCost    decimal.Decimal
	InvestorReturn decimal.Decimal
}

// BalanceSheet is the two-sided cross-check over the books. A mismatch
// above the tolerance is surfaced in Difference/Balanced, never
// corrected.
type BalanceSheet struct {
	Cash                  decimal.Decimal
	TotalAssetNBV         decimal.Decimal
	AssetsTotal           decimal.Decimal
	ShareCapital          decimal.Decimal
	CurrentYearProfit     decimal.Decimal
	AccumulatedLosses     decimal.Decimal
	TotalDebt             decimal.Decimal
	TotalLeaseObligations decimal.Decimal
	LiabilitiesTotal      decimal.Decimal
	Difference            decimal.Decimal
	Balanced              bool
}

// Service computes valuation figures.
type Service struct {
	SettingsRepo    domain.SettingsRepository
	TransactionRepo domain.TransactionRepository
	AssetRepo       domain.AssetRepository
	LeaseRepo       domain.LeaseRepository
	LoanRepo        domain.LoanRepository
	LoanPaymentRepo domain.LoanPaymentRepository
	DividendRepo    domain.DividendRepository
	SnapshotRepo    domain.SnapshotRepository
	FiscalYearRepo  domain.FiscalYearRepository
	PeriodRepo      domain.PeriodRepository
}

// NewService creates a new valuation Service instance.
func NewService(
	settingsRepo domain.SettingsRepository,
	txRepo domain.TransactionRepository,
	assetRepo domain.AssetRepository,
	leaseRepo domain.LeaseRepository,
	loanRepo domain.LoanRepository,
	loanPaymentRepo domain.LoanPaymentRepository,
	dividendRepo domain.DividendRepository,
	snapshotRepo domain.SnapshotRepository,
	fiscalYearRepo domain.FiscalYearRepository,
	periodRepo domain.PeriodRepository,
) *Service {
	return &Service{
		SettingsRepo:    settingsRepo,
		TransactionRepo: txRepo,
		AssetRepo:       assetRepo,
		LeaseRepo:       leaseRepo,
		LoanRepo:        loanRepo,
		LoanPaymentRepo: loanPaymentRepo,
		DividendRepo:    dividendRepo,
		SnapshotRepo:    snapshotRepo,
		FiscalYearRepo:  fiscalYearRepo,
		PeriodRepo:      periodRepo,
	}
}

// Cash reconstructs the cash position from first principles:
//
//	initial capital
//	+ all revenue − all expenses
//	− direct asset purchases (lease-originated assets excluded)
//	+ asset sale proceeds
//	+ loan principal drawn − loan principal repaid
//	− dividends paid
//	− lease capital outflow (down payments, capital portions, buyouts)
//
// Interest on loans and leases already sits inside the expense total as
// posted transactions and is not subtracted again. The lease capital
// outflow for one lease is total value minus remaining balance, which
// covers the down payment, every capital portion paid, and the buyout
// residual once the balance is zeroed.
func (s *Service) Cash(ctx context.Context) (decimal.Decimal, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	cash := settings.InitialCapital

	txs, err := s.TransactionRepo.List(ctx, domain.TransactionScope{})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list transactions: %w", err)
	}
	for _, tx := range txs {
		if tx.Type == domain.CategoryTypeRevenue {
			cash = cash.Add(tx.Amount)
		} else {
			cash = cash.Sub(tx.Amount)
		}
	}

	assets, err := s.AssetRepo.List(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list assets: %w", err)
	}
	for _, a := range assets {
		if a.FromLeaseID == nil {
			cash = cash.Sub(a.PurchasePrice)
		}
		if a.IsSold() && a.SoldPrice != nil {
			cash = cash.Add(*a.SoldPrice)
		}
	}

	loans, err := s.LoanRepo.List(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list loans: %w", err)
	}
	for _, l := range loans {
		cash = cash.Add(l.Principal)
	}
	payments, err := s.LoanPaymentRepo.List(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list loan payments: %w", err)
	}
	for _, p := range payments {
		cash = cash.Sub(p.PrincipalPart)
	}

	dividends, err := s.DividendRepo.List(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list dividends: %w", err)
	}
	for _, d := range dividends {
		cash = cash.Sub(d.TotalAmount)
	}

	leases, err := s.LeaseRepo.List(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list leases: %w", err)
	}
	for _, l := range leases {
		cash = cash.Sub(l.TotalValue.Sub(l.RemainingBalance))
	}

	return cash, nil
}

// TotalAssetNBV sums net book value over assets not yet sold.
func (s *Service) TotalAssetNBV(ctx context.Context) (decimal.Decimal, error) {
	assets, err := s.AssetRepo.ListActive(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list assets: %w", err)
	}
	total := decimal.Zero
	for _, a := range assets {
		total = total.Add(a.NetBookValue())
	}
	return total, nil
}

// TotalDebt sums remaining balances over active loans.
func (s *Service) TotalDebt(ctx context.Context) (decimal.Decimal, error) {
	loans, err := s.LoanRepo.ListActive(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list loans: %w", err)
	}
	total := decimal.Zero
	for _, l := range loans {
		total = total.Add(l.RemainingBalance)
	}
	return total, nil
}

// TotalLeaseObligations sums remaining balances over active leases.
func (s *Service) TotalLeaseObligations(ctx context.Context) (decimal.Decimal, error) {
	leases, err := s.LeaseRepo.ListActive(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list leases: %w", err)
	}
	total := decimal.Zero
	for _, l := range leases {
		total = total.Add(l.RemainingBalance)
	}
	return total, nil
}

// Compute derives the full set of valuation figures from current state.
func (s *Service) Compute(ctx context.Context) (*Figures, error) {
	cash, err := s.Cash(ctx)
	if err != nil {
		return nil, err
	}
	nbv, err := s.TotalAssetNBV(ctx)
	if err != nil {
		return nil, err
	}
	debt, err := s.TotalDebt(ctx)
	if err != nil {
		return nil, err
	}
	leaseObl, err := s.TotalLeaseObligations(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}

	f := &Figures{
		Cash:                  cash,
		TotalAssetNBV:         nbv,
		TotalDebt:             debt,
		TotalLeaseObligations: leaseObl,
	}
	f.Valuation = cash.Add(nbv).Sub(debt).Sub(leaseObl)
	if settings.TotalShares > 0 {
		f.SharePrice = f.Valuation.Div(decimal.NewFromInt(settings.TotalShares))
	}
	return f, nil
}

// Buyback prices repurchasing investor shares: the floor is the initial
// share price times the configured multiplier, and the effective price
// never drops below it.
func (s *Service) Buyback(ctx context.Context) (*BuybackPricing, error) {
	figures, err := s.Compute(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}

	min := settings.InitialSharePrice.Mul(settings.BuybackMultiplier)
	effective := figures.SharePrice
	if min.GreaterThan(effective) {
		effective = min
	}

	investorShares := decimal.NewFromInt(settings.InvestorShares)
	cost := domain.RoundMinor(effective.Mul(investorShares))
	stake := settings.InitialSharePrice.Mul(investorShares)
	return &BuybackPricing{
		MinPrice:       min,
		SharePrice:     figures.SharePrice,
		EffectivePrice: effective,
		InvestorShares: settings.InvestorShares,
		BuybackCost:    cost,
		InvestorReturn: cost.Sub(stake),
	}, nil
}

// Snapshot computes the current figures and persists them, tagged to a
// period when one is supplied.
func (s *Service) Snapshot(ctx context.Context, periodID *uuid.UUID, date time.Time) (*domain.ValuationSnapshot, error) {
	figures, err := s.Compute(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := &domain.ValuationSnapshot{
		ID:                   uuid.New(),
		PeriodID:             periodID,
		Date:                 date,
		Cash:                 figures.Cash,
		TotalAssetNBV:        figures.TotalAssetNBV,
		TotalDebt:            figures.TotalDebt,
		TotalLeaseObligation: figures.TotalLeaseObligations,
		Valuation:            figures.Valuation,
		SharePrice:           figures.SharePrice,
	}
	if err := s.SnapshotRepo.Create(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return snapshot, nil
}

// Sheet builds the balance-sheet cross-check. The assets side is cash
// plus net book value; the other side is share capital plus the running
// year's profit, minus accumulated losses, plus debt and lease
// obligations. Current-year profit subtracts the depreciation already
// booked into the year's closed periods, since depreciation never
// passes through the ledger.
func (s *Service) Sheet(ctx context.Context) (*BalanceSheet, error) {
	figures, err := s.Compute(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}

	profit := decimal.Zero
	fy, err := s.FiscalYearRepo.Current(ctx)
	if err == nil {
		profit, err = s.currentYearProfit(ctx, fy)
		if err != nil {
			return nil, err
		}
	}

	losses := settings.AccumulatedLosses.Abs()

	sheet := &BalanceSheet{
		Cash:                  figures.Cash,
		TotalAssetNBV:         figures.TotalAssetNBV,
		AssetsTotal:           figures.Cash.Add(figures.TotalAssetNBV),
		ShareCapital:          settings.InitialCapital,
		CurrentYearProfit:     profit,
		AccumulatedLosses:     losses,
		TotalDebt:             figures.TotalDebt,
		TotalLeaseObligations: figures.TotalLeaseObligations,
	}
	sheet.LiabilitiesTotal = settings.InitialCapital.
		Add(profit).
		Sub(losses).
		Add(figures.TotalDebt).
		Add(figures.TotalLeaseObligations)
	sheet.Difference = sheet.AssetsTotal.Sub(sheet.LiabilitiesTotal)
	sheet.Balanced = sheet.Difference.Abs().LessThanOrEqual(domain.BalanceSheetTolerance)
	return sheet, nil
}

func (s *Service) currentYearProfit(ctx context.Context, fy *domain.FiscalYear) (decimal.Decimal, error) {
	txs, err := s.TransactionRepo.List(ctx, domain.TransactionScope{FiscalYearID: &fy.ID})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list transactions: %w", err)
	}
	profit := decimal.Zero
	for _, tx := range txs {
		if tx.Type == domain.CategoryTypeRevenue {
			profit = profit.Add(tx.Amount)
		} else {
			profit = profit.Sub(tx.Amount)
		}
	}

	periods, err := s.PeriodRepo.ListByFiscalYear(ctx, fy.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list periods: %w", err)
	}
	for _, p := range periods {
		profit = profit.Sub(p.DepreciationBooked)
	}
	return profit, nil
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
