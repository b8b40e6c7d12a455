package leases

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

func newFixture(t *testing.T) (*Service, *memory.Store, *domain.Period) {
	t.Helper()
	store := memory.NewStore()
	service := NewService(store.Leases(), store.Assets(), store.Transactions(), store.Categories(), store.Periods(), store.Settings())

	ctx := context.Background()
	period := &domain.Period{ID: uuid.New(), Name: "August", StartedAt: time.Now()}
	assert.NoError(t, store.Periods().Create(ctx, period))

	assert.NoError(t, store.Categories().Create(ctx, &domain.Category{
		ID: uuid.New(), Name: domain.CategoryLeaseInterest, Type: domain.CategoryTypeExpense,
	}))
	assert.NoError(t, store.Categories().Create(ctx, &domain.Category{
		ID: uuid.New(), Name: domain.CategoryCapitalLoss, Type: domain.CategoryTypeExpense,
	}))

	assert.NoError(t, store.Settings().Set(ctx, domain.SettingDepYearsVehicle, "5"))
	return service, store, period
}

func standardLease(t *testing.T, service *Service) *domain.Lease {
	t.Helper()
	lease, err := service.CreateLease(context.Background(), CreateLeaseInput{
		Name:          "Harvester",
		AssetType:     domain.AssetTypeVehicle,
		Price:         decimal.NewFromInt(200000),
		DownPayment:   decimal.NewFromInt(20000),
		FinalPayment:  decimal.NewFromInt(20000),
		InterestRate:  decimal.NewFromInt(5),
		DurationYears: 3,
		StartDate:     time.Now(),
	})
	assert.NoError(t, err)
	return lease
}

func TestCreateLease_PairsAssetAndOpensBalance(t *testing.T) {
	service, store, _ := newFixture(t)
	lease := standardLease(t, service)

	assert.Equal(t, 36, lease.DurationMonths)
	assert.True(t, lease.RemainingBalance.Equal(decimal.NewFromInt(180000)))
	assert.Equal(t, "4878.68", lease.MonthlyPayment.StringFixed(2))

	asset, err := store.Assets().GetByLeaseID(context.Background(), lease.ID)
	assert.NoError(t, err)
	assert.True(t, asset.PurchasePrice.Equal(decimal.NewFromInt(200000)))
	assert.NotNil(t, asset.DepreciationYears)
	assert.Equal(t, 5, *asset.DepreciationYears)
}

func TestCreateLease_Preconditions(t *testing.T) {
	service, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := service.CreateLease(ctx, CreateLeaseInput{
		Name: "Free harvester", AssetType: domain.AssetTypeVehicle,
		Price: decimal.Zero, DurationYears: 3, StartDate: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrNonPositiveAmount)

	_, err = service.CreateLease(ctx, CreateLeaseInput{
		Name: "Instant harvester", AssetType: domain.AssetTypeVehicle,
		Price: decimal.NewFromInt(100000), DurationYears: 0, StartDate: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
}

func TestProcessInstallments_FirstMonthSplit(t *testing.T) {
	service, store, period := newFixture(t)
	ctx := context.Background()
	lease := standardLease(t, service)

	assert.NoError(t, service.ProcessInstallments(ctx, period.ID, time.Now(), 1))

	reloaded, err := store.Leases().GetByID(ctx, lease.ID)
	assert.NoError(t, err)

	// Interest: 180,000 * 5% / 12 = 750; capital: 4878.68 - 750 = 4128.68
	assert.Equal(t, 1, reloaded.PaymentsMade)
	assert.Equal(t, "175871.32", reloaded.RemainingBalance.StringFixed(2))

	txs, _ := store.Transactions().List(ctx, domain.TransactionScope{})
	assert.Len(t, txs, 1)
	assert.Equal(t, "750.00", txs[0].Amount.StringFixed(2))
	assert.Equal(t, domain.CategoryTypeExpense, txs[0].Type)
}

func TestProcessInstallments_CapitalConservation(t *testing.T) {
	service, store, period := newFixture(t)
	ctx := context.Background()
	lease := standardLease(t, service)

	// Shadow the amortization independently: the balance must equal the
	// financed amount minus the sum of all capital portions at every
	// point in time.
	expected := decimal.NewFromInt(180000)
	capitalPaid := decimal.Zero
	for month := 0; month < 36; month++ {
		assert.NoError(t, service.ProcessInstallments(ctx, period.ID, time.Now(), 1))

		interest := domain.RoundMinor(expected.Mul(decimal.NewFromInt(5)).Div(decimal.NewFromInt(1200)))
		capital := domain.RoundMinor(lease.MonthlyPayment.Sub(interest))
		capitalPaid = capitalPaid.Add(capital)
		expected = expected.Sub(capital)

		reloaded, err := store.Leases().GetByID(ctx, lease.ID)
		assert.NoError(t, err)
		assert.True(t, reloaded.RemainingBalance.Equal(expected), "month %d: %s != %s", month, reloaded.RemainingBalance, expected)
		assert.True(t, capitalPaid.Add(reloaded.RemainingBalance).Equal(decimal.NewFromInt(180000)))
	}

	final, _ := store.Leases().GetByID(ctx, lease.ID)
	assert.Equal(t, 36, final.PaymentsMade)
	// After the full term roughly the residual remains on the balance
	assert.InDelta(t, 20000, final.RemainingBalance.InexactFloat64(), 1)
}

func TestProcessInstallments_StopsAtFullTerm(t *testing.T) {
	service, store, period := newFixture(t)
	ctx := context.Background()
	lease := standardLease(t, service)

	assert.NoError(t, service.ProcessInstallments(ctx, period.ID, time.Now(), 40))

	reloaded, _ := store.Leases().GetByID(ctx, lease.ID)
	assert.Equal(t, 36, reloaded.PaymentsMade)

	// Nothing more after maturity
	assert.NoError(t, service.ProcessInstallments(ctx, period.ID, time.Now(), 1))
	again, _ := store.Leases().GetByID(ctx, lease.ID)
	assert.Equal(t, 36, again.PaymentsMade)
	assert.True(t, again.RemainingBalance.Equal(reloaded.RemainingBalance))
}

func TestBuyout(t *testing.T) {
	service, store, period := newFixture(t)
	ctx := context.Background()
	lease := standardLease(t, service)

	_, err := service.Buyout(ctx, lease.ID)
	assert.ErrorIs(t, err, domain.ErrLeaseNotMature)

	assert.NoError(t, service.ProcessInstallments(ctx, period.ID, time.Now(), 36))

	bought, err := service.Buyout(ctx, lease.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.LeaseStatusPurchased, bought.Status)
	assert.True(t, bought.RemainingBalance.IsZero())

	// Asset is retained
	asset, err := store.Assets().GetByLeaseID(ctx, lease.ID)
	assert.NoError(t, err)
	assert.False(t, asset.IsSold())

	_, err = service.Buyout(ctx, lease.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
}

func TestReturn_DisposesAssetAndPostsLoss(t *testing.T) {
	service, store, period := newFixture(t)
	ctx := context.Background()
	lease := standardLease(t, service)

	assert.NoError(t, service.ProcessInstallments(ctx, period.ID, time.Now(), 36))

	returned, err := service.Return(ctx, lease.ID, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, domain.LeaseStatusReturned, returned.Status)

	asset, err := store.Assets().GetByLeaseID(ctx, lease.ID)
	assert.NoError(t, err)
	assert.True(t, asset.IsSold())
	assert.True(t, asset.SoldPrice.IsZero())

	// The asset still carried book value after 36 of 60 depreciation
	// months were never booked here, so a return loss is posted.
	txs, _ := store.Transactions().List(ctx, domain.TransactionScope{})
	var lossFound bool
	for _, tx := range txs {
		if tx.Type == domain.CategoryTypeExpense && tx.Amount.Equal(decimal.NewFromInt(200000)) {
			lossFound = true
		}
	}
	assert.True(t, lossFound, "expected a lease return loss expense")
}
