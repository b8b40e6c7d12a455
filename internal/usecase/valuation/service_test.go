package valuation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dmarinho/farmbooks-backend/internal/adapter/repository/memory"
	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

func newService(store *memory.Store) *Service {
	return NewService(
		store.Settings(), store.Transactions(), store.Assets(), store.Leases(),
		store.Loans(), store.LoanPayments(), store.Dividends(), store.Snapshots(),
		store.FiscalYears(), store.Periods(),
	)
}

func newFixture(t *testing.T) (*Service, *memory.Store, *domain.Period) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	for key, value := range map[string]string{
		domain.SettingInitialCapital:    "500000",
		domain.SettingTotalShares:       "1000",
		domain.SettingInvestorShares:    "400",
		domain.SettingFarmShares:        "600",
		domain.SettingInitialSharePrice: "500",
		domain.SettingBuybackMultiplier: "1.5",
		domain.SettingAccumulatedLosses: "0",
	} {
		assert.NoError(t, store.Settings().Set(ctx, key, value))
	}

	fy := &domain.FiscalYear{ID: uuid.New(), Name: "Year 1", StartedAt: time.Now(), OpeningCash: decimal.NewFromInt(500000)}
	assert.NoError(t, store.FiscalYears().Create(ctx, fy))
	period := &domain.Period{ID: uuid.New(), FiscalYearID: fy.ID, Name: "August", StartedAt: time.Now()}
	assert.NoError(t, store.Periods().Create(ctx, period))

	return newService(store), store, period
}

func postTx(t *testing.T, store *memory.Store, periodID uuid.UUID, txType domain.CategoryType, amount int64) {
	t.Helper()
	assert.NoError(t, store.Transactions().Create(context.Background(), &domain.Transaction{
		ID: uuid.New(), PeriodID: periodID, Date: time.Now(),
		Label: "entry", Amount: decimal.NewFromInt(amount), Type: txType,
	}))
}

// Plants the full mix of instruments the cash formula has to account
// for: ledger entries, a direct purchase, a lease-originated asset, a
// partially repaid loan, an active lease and a paid dividend.
func seedBooks(t *testing.T, store *memory.Store, period *domain.Period, withDividend bool) {
	t.Helper()
	ctx := context.Background()

	postTx(t, store, period.ID, domain.CategoryTypeRevenue, 100000)
	postTx(t, store, period.ID, domain.CategoryTypeExpense, 40000)

	assert.NoError(t, store.Assets().Create(ctx, &domain.Asset{
		ID: uuid.New(), Name: "Grain dryer", Type: domain.AssetTypeBuilding,
		PurchasePrice: decimal.NewFromInt(60000), PurchaseDate: time.Now(),
	}))

	leaseID := uuid.New()
	assert.NoError(t, store.Leases().Create(ctx, &domain.Lease{
		ID: leaseID, Name: "Combine lease", TotalValue: decimal.NewFromInt(200000),
		InitialPayment: decimal.NewFromInt(20000), DurationMonths: 36,
		RemainingBalance: decimal.NewFromInt(180000), Status: domain.LeaseStatusActive,
		StartDate: time.Now(),
	}))
	assert.NoError(t, store.Assets().Create(ctx, &domain.Asset{
		ID: uuid.New(), Name: "Combine", Type: domain.AssetTypeVehicle,
		PurchasePrice: decimal.NewFromInt(200000), PurchaseDate: time.Now(),
		FromLeaseID: &leaseID,
	}))

	loanID := uuid.New()
	assert.NoError(t, store.Loans().Create(ctx, &domain.Loan{
		ID: loanID, Name: "Operating credit", Principal: decimal.NewFromInt(50000),
		InterestRate: decimal.NewFromInt(4), StartDate: time.Now(),
		RemainingBalance: decimal.NewFromInt(40000), Status: domain.LoanStatusActive,
	}))
	assert.NoError(t, store.LoanPayments().Create(ctx, &domain.LoanPayment{
		ID: uuid.New(), LoanID: loanID, PeriodID: period.ID,
		Amount: decimal.NewFromInt(10000), PrincipalPart: decimal.NewFromInt(10000),
		InterestPart: decimal.Zero, Date: time.Now(),
	}))

	if withDividend {
		assert.NoError(t, store.Dividends().Create(ctx, &domain.Dividend{
			ID: uuid.New(), TotalAmount: decimal.NewFromInt(5000),
			PerShare: decimal.NewFromInt(5), Type: domain.DividendTypeManual, Date: time.Now(),
		}))
	}
}

func TestCash(t *testing.T) {
	service, store, period := newFixture(t)
	seedBooks(t, store, period, true)

	// 500000 + 100000 - 40000 - 60000 + 50000 - 10000 - 5000
	// - (200000 - 180000) = 515000. The leased asset's purchase price
	// never hits cash; only its capital outflow does.
	cash, err := service.Cash(context.Background())
	assert.NoError(t, err)
	assert.True(t, cash.Equal(decimal.NewFromInt(515000)), "got %s", cash)
}

func TestCompute(t *testing.T) {
	service, store, period := newFixture(t)
	seedBooks(t, store, period, true)

	figures, err := service.Compute(context.Background())
	assert.NoError(t, err)
	assert.True(t, figures.TotalAssetNBV.Equal(decimal.NewFromInt(260000)))
	assert.True(t, figures.TotalDebt.Equal(decimal.NewFromInt(40000)))
	assert.True(t, figures.TotalLeaseObligations.Equal(decimal.NewFromInt(180000)))
	assert.True(t, figures.Valuation.Equal(decimal.NewFromInt(555000)), "got %s", figures.Valuation)
	assert.True(t, figures.SharePrice.Equal(decimal.NewFromInt(555)))
}

func TestCompute_Idempotent(t *testing.T) {
	service, store, period := newFixture(t)
	seedBooks(t, store, period, true)
	ctx := context.Background()

	first, err := service.Compute(ctx)
	assert.NoError(t, err)
	second, err := service.Compute(ctx)
	assert.NoError(t, err)

	// Figures are derived, never incrementally maintained; reading
	// twice without writes in between yields identical numbers.
	assert.True(t, first.Cash.Equal(second.Cash))
	assert.True(t, first.Valuation.Equal(second.Valuation))
	assert.True(t, first.SharePrice.Equal(second.SharePrice))
}

func TestCompute_SoldAssetLeavesNBV(t *testing.T) {
	service, store, _ := newFixture(t)
	ctx := context.Background()

	asset := &domain.Asset{
		ID: uuid.New(), Name: "Old truck", Type: domain.AssetTypeVehicle,
		PurchasePrice: decimal.NewFromInt(30000), PurchaseDate: time.Now(),
	}
	assert.NoError(t, store.Assets().Create(ctx, asset))
	assert.NoError(t, store.Assets().MarkSold(ctx, asset.ID, time.Now(), decimal.NewFromInt(12000)))

	nbv, err := service.TotalAssetNBV(ctx)
	assert.NoError(t, err)
	assert.True(t, nbv.IsZero())

	// The sale proceeds flow into cash instead.
	cash, err := service.Cash(ctx)
	assert.NoError(t, err)
	assert.True(t, cash.Equal(decimal.NewFromInt(482000)), "got %s", cash)
}

func TestSharePrice_NoShares(t *testing.T) {
	service, store, _ := newFixture(t)
	ctx := context.Background()
	assert.NoError(t, store.Settings().Set(ctx, domain.SettingTotalShares, "0"))

	figures, err := service.Compute(ctx)
	assert.NoError(t, err)
	assert.True(t, figures.SharePrice.IsZero())
}

func TestBuyback(t *testing.T) {
	service, store, period := newFixture(t)
	seedBooks(t, store, period, true)
	ctx := context.Background()

	// Floor: 500 * 1.5 = 750, above the computed share price of 555.
	pricing, err := service.Buyback(ctx)
	assert.NoError(t, err)
	assert.True(t, pricing.MinPrice.Equal(decimal.NewFromInt(750)))
	assert.True(t, pricing.EffectivePrice.Equal(decimal.NewFromInt(750)))

	// Buying back 400 shares at 750 against a 500-per-share stake.
	assert.Equal(t, int64(400), pricing.InvestorShares)
	assert.True(t, pricing.BuybackCost.Equal(decimal.NewFromInt(300000)))
	assert.True(t, pricing.InvestorReturn.Equal(decimal.NewFromInt(100000)))

	// With a lower multiplier the market price wins.
	assert.NoError(t, store.Settings().Set(ctx, domain.SettingBuybackMultiplier, "1"))
	pricing, err = service.Buyback(ctx)
	assert.NoError(t, err)
	assert.True(t, pricing.MinPrice.Equal(decimal.NewFromInt(500)))
	assert.True(t, pricing.EffectivePrice.Equal(decimal.NewFromInt(555)))
	assert.True(t, pricing.BuybackCost.Equal(decimal.NewFromInt(222000)))
	assert.True(t, pricing.InvestorReturn.Equal(decimal.NewFromInt(22000)))
}

func TestSnapshot(t *testing.T) {
	service, store, period := newFixture(t)
	seedBooks(t, store, period, true)
	ctx := context.Background()

	snapshot, err := service.Snapshot(ctx, &period.ID, time.Now())
	assert.NoError(t, err)
	assert.True(t, snapshot.Valuation.Equal(decimal.NewFromInt(555000)))
	assert.Equal(t, period.ID, *snapshot.PeriodID)

	saved, err := store.Snapshots().List(ctx)
	assert.NoError(t, err)
	assert.Len(t, saved, 1)
	assert.True(t, saved[0].SharePrice.Equal(decimal.NewFromInt(555)))
}

func TestSheet_Balanced(t *testing.T) {
	service, store, period := newFixture(t)
	// No dividend: mid-year books with no equity-side movements beyond
	// retained profit keep the two sides equal.
	seedBooks(t, store, period, false)

	sheet, err := service.Sheet(context.Background())
	assert.NoError(t, err)
	assert.True(t, sheet.AssetsTotal.Equal(decimal.NewFromInt(780000)), "got %s", sheet.AssetsTotal)
	assert.True(t, sheet.CurrentYearProfit.Equal(decimal.NewFromInt(60000)))
	assert.True(t, sheet.Difference.IsZero())
	assert.True(t, sheet.Balanced)
}

func TestSheet_MismatchSurfaced(t *testing.T) {
	service, store, period := newFixture(t)
	seedBooks(t, store, period, true)

	// A mid-year dividend moves cash without an equity-side entry; the
	// sheet reports the gap instead of papering over it.
	sheet, err := service.Sheet(context.Background())
	assert.NoError(t, err)
	assert.True(t, sheet.Difference.Equal(decimal.NewFromInt(-5000)), "got %s", sheet.Difference)
	assert.False(t, sheet.Balanced)
}

func TestSheet_DepreciationReducesProfit(t *testing.T) {
	service, store, period := newFixture(t)
	ctx := context.Background()
	postTx(t, store, period.ID, domain.CategoryTypeRevenue, 10000)

	// Close the period with booked depreciation, then open another.
	fy, err := store.FiscalYears().Current(ctx)
	assert.NoError(t, err)
	assert.NoError(t, store.Periods().Close(ctx, period.ID, time.Now(), decimal.NewFromInt(1500)))
	assert.NoError(t, store.Periods().Create(ctx, &domain.Period{
		ID: uuid.New(), FiscalYearID: fy.ID, Name: "September", StartedAt: time.Now(),
	}))

	sheet, err := service.Sheet(ctx)
	assert.NoError(t, err)
	assert.True(t, sheet.CurrentYearProfit.Equal(decimal.NewFromInt(8500)), "got %s", sheet.CurrentYearProfit)
}
