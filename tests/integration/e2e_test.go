//go:build integration

package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarinho/farmbooks-backend/internal/adapter/repository/sqlite"
	"github.com/dmarinho/farmbooks-backend/internal/cli"
	"github.com/dmarinho/farmbooks-backend/internal/domain"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/assets"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/leases"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/ledger"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/loans"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/setup"
)

// newApp opens a fresh database in a temp dir and migrates it.
func newApp(t *testing.T) *cli.App {
	t.Helper()

	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "farmbooks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate("../../db/migrations"))
	return cli.NewApp(db, "EUR")
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// TestFullFiscalYear drives a complete year through the real sqlite
// stack: setup, bookkeeping, a loan, a monthly close, the two-phase
// year-end, and a lease settling into the new year.
func TestFullFiscalYear(t *testing.T) {
	ctx := context.Background()
	app := newApp(t)

	_, err := app.Setup.Initialize(ctx, setup.SetupConfig{
		SaveName:          "Greenfields",
		InitialCapital:    decimal.NewFromInt(500000),
		TotalShares:       1000,
		InvestorShares:    400,
		BuybackMultiplier: decimal.NewFromFloat(1.5),
		TaxRate:           decimal.NewFromInt(25),
		DepYearsVehicle:   5,
		DepYearsImplement: 10,
		DepYearsBuilding:  20,
		StartMonth:        8,
		StartDate:         date(2025, 8, 1),
	})
	require.NoError(t, err)

	// Second init must refuse.
	_, err = app.Setup.Initialize(ctx, setup.SetupConfig{
		SaveName:       "Greenfields",
		InitialCapital: decimal.NewFromInt(1),
		TotalShares:    1,
		StartMonth:     1,
		StartDate:      date(2025, 8, 1),
	})
	assert.ErrorIs(t, err, setup.ErrAlreadySetUp)

	// Bookkeeping in August.
	crops, err := app.Ledger.CategoryRepo.GetByName(ctx, "Crop Sales", domain.CategoryTypeRevenue)
	require.NoError(t, err)
	_, err = app.Ledger.CreateTransaction(ctx, ledger.CreateTransactionInput{
		Date:       date(2025, 8, 10),
		Label:      "Wheat harvest",
		Amount:     decimal.NewFromInt(100000),
		Type:       domain.CategoryTypeRevenue,
		CategoryID: &crops.ID,
	})
	require.NoError(t, err)

	_, err = app.Ledger.CreateTransaction(ctx, ledger.CreateTransactionInput{
		Date:   date(2025, 8, 12),
		Label:  "Seed stock",
		Amount: decimal.NewFromInt(40000),
		Type:   domain.CategoryTypeExpense,
	})
	require.NoError(t, err)

	_, err = app.Assets.BuyAsset(ctx, assets.BuyAssetInput{
		Name:         "Tractor",
		Type:         domain.AssetTypeVehicle,
		Price:        decimal.NewFromInt(60000),
		PurchaseDate: date(2025, 8, 15),
	})
	require.NoError(t, err)

	loan, err := app.Loans.CreateLoan(ctx, loans.CreateLoanInput{
		Name:         "Operating credit",
		Principal:    decimal.NewFromInt(50000),
		InterestRate: decimal.NewFromInt(4),
		StartDate:    date(2025, 8, 20),
	})
	require.NoError(t, err)

	payment, err := app.Loans.PayInterest(ctx, loan.ID, date(2025, 8, 25))
	require.NoError(t, err)
	assert.True(t, payment.InterestPart.Equal(decimal.NewFromInt(167)))

	// 500000 + 100000 - 40000 - 167 - 60000 + 50000
	cash, err := app.Valuation.Cash(ctx)
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.NewFromInt(549833)), "cash = %s", cash)

	figures, err := app.Valuation.Compute(ctx)
	require.NoError(t, err)
	assert.True(t, figures.TotalAssetNBV.Equal(decimal.NewFromInt(60000)))
	assert.True(t, figures.TotalDebt.Equal(decimal.NewFromInt(50000)))
	assert.True(t, figures.Valuation.Equal(decimal.NewFromInt(559833)))

	// One month of depreciation: 60000 over 5 years is 1000.
	snapshot, err := app.Closing.CloseMonth(ctx, date(2025, 8, 31))
	require.NoError(t, err)
	assert.True(t, snapshot.Valuation.Equal(decimal.NewFromInt(558833)))

	period, err := app.Closing.OpenMonth(ctx, date(2025, 9, 1))
	require.NoError(t, err)
	assert.Equal(t, "September", period.Name)

	preview, err := app.Closing.PreviewYearEnd(ctx)
	require.NoError(t, err)
	assert.True(t, preview.Revenue.Equal(decimal.NewFromInt(100000)))
	assert.True(t, preview.Expenses.Equal(decimal.NewFromInt(40167)))
	assert.True(t, preview.BookedDepreciation.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 11, preview.RemainingDepMonths)
	assert.True(t, preview.ProjectedDepreciation.Equal(decimal.NewFromInt(11000)))
	assert.True(t, preview.NetProfit.Equal(decimal.NewFromInt(47833)))
	assert.True(t, preview.Tax.Equal(decimal.NewFromFloat(11958.25)))
	assert.True(t, preview.SuggestedDividend.Equal(decimal.NewFromFloat(14349.90)))

	result, err := app.Closing.CommitYearEnd(ctx, date(2026, 7, 31), nil)
	require.NoError(t, err)
	assert.True(t, result.LossesAfter.IsZero())
	assert.True(t, result.DividendPaid.Equal(decimal.NewFromFloat(14349.90)))
	assert.Equal(t, "Year 2", result.NewFiscalYear.Name)
	assert.Equal(t, "August", result.NewPeriod.Name)
	// 549833 - 11958.25 tax - 14349.90 dividend
	assert.True(t, result.NewFiscalYear.OpeningCash.Equal(decimal.NewFromFloat(523524.85)),
		"opening cash = %s", result.NewFiscalYear.OpeningCash)

	// A lease taken in the new year settles its first installment when
	// the next month opens.
	lease, err := app.Leases.CreateLease(ctx, leases.CreateLeaseInput{
		Name:          "Harvester",
		AssetType:     domain.AssetTypeVehicle,
		Price:         decimal.NewFromInt(200000),
		DownPayment:   decimal.NewFromInt(20000),
		FinalPayment:  decimal.NewFromInt(20000),
		InterestRate:  decimal.NewFromInt(5),
		DurationYears: 3,
		StartDate:     date(2026, 8, 5),
	})
	require.NoError(t, err)
	assert.True(t, lease.MonthlyPayment.Equal(decimal.NewFromFloat(4878.68)))

	_, err = app.Closing.CloseMonth(ctx, date(2026, 8, 31))
	require.NoError(t, err)
	_, err = app.Closing.OpenMonth(ctx, date(2026, 9, 1))
	require.NoError(t, err)

	reloaded, err := app.Leases.LeaseRepo.GetByID(ctx, lease.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.PaymentsMade)
	// 180000 - (4878.68 - 750 interest)
	assert.True(t, reloaded.RemainingBalance.Equal(decimal.NewFromFloat(175871.32)),
		"balance = %s", reloaded.RemainingBalance)
}
