package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dmarinho/farmbooks-backend/internal/adapter/repository/memory"
	"github.com/dmarinho/farmbooks-backend/internal/domain"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/ledger"
)

func newFixture(t *testing.T) (*Service, *memory.Store, *domain.Period) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	fy := &domain.FiscalYear{ID: uuid.New(), Name: "Year 1", StartedAt: time.Now(), OpeningCash: decimal.NewFromInt(500000)}
	assert.NoError(t, store.FiscalYears().Create(ctx, fy))
	period := &domain.Period{ID: uuid.New(), FiscalYearID: fy.ID, Name: "August", StartedAt: time.Now()}
	assert.NoError(t, store.Periods().Create(ctx, period))

	service := NewService(ledger.NewService(store.Transactions(), store.Periods(), store.Categories()))
	return service, store, period
}

func seedCategory(t *testing.T, store *memory.Store, name string, ctype domain.CategoryType) uuid.UUID {
	t.Helper()
	c := &domain.Category{ID: uuid.New(), Name: name, Type: ctype}
	assert.NoError(t, store.Categories().Create(context.Background(), c))
	return c.ID
}

func postTx(t *testing.T, store *memory.Store, periodID uuid.UUID, ctype domain.CategoryType, categoryID *uuid.UUID, amount int64) {
	t.Helper()
	assert.NoError(t, store.Transactions().Create(context.Background(), &domain.Transaction{
		ID: uuid.New(), PeriodID: periodID, Date: time.Now(),
		Label: "entry", Amount: decimal.NewFromInt(amount), Type: ctype, CategoryID: categoryID,
	}))
}

func TestIncomeStatement(t *testing.T) {
	service, store, period := newFixture(t)

	crops := seedCategory(t, store, "Crop sales", domain.CategoryTypeRevenue)
	fuel := seedCategory(t, store, "Fuel", domain.CategoryTypeExpense)
	loanInt := seedCategory(t, store, domain.CategoryLoanInterest, domain.CategoryTypeExpense)
	leaseInt := seedCategory(t, store, domain.CategoryLeaseInterest, domain.CategoryTypeExpense)
	gain := seedCategory(t, store, domain.CategoryCapitalGain, domain.CategoryTypeRevenue)
	loss := seedCategory(t, store, domain.CategoryCapitalLoss, domain.CategoryTypeExpense)
	tax := seedCategory(t, store, domain.CategoryCorporateTax, domain.CategoryTypeExpense)

	postTx(t, store, period.ID, domain.CategoryTypeRevenue, &crops, 100000)
	postTx(t, store, period.ID, domain.CategoryTypeExpense, &fuel, 30000)
	postTx(t, store, period.ID, domain.CategoryTypeExpense, &loanInt, 2000)
	postTx(t, store, period.ID, domain.CategoryTypeExpense, &leaseInt, 750)
	postTx(t, store, period.ID, domain.CategoryTypeRevenue, &gain, 5000)
	postTx(t, store, period.ID, domain.CategoryTypeExpense, &loss, 1000)
	postTx(t, store, period.ID, domain.CategoryTypeExpense, &tax, 15000)
	// No category: reported in the operating block, not dropped.
	postTx(t, store, period.ID, domain.CategoryTypeExpense, nil, 500)

	statement, err := service.IncomeStatement(context.Background(), domain.TransactionScope{PeriodID: &period.ID})
	assert.NoError(t, err)

	assert.True(t, statement.OperatingRevenue.Total.Equal(decimal.NewFromInt(100000)))
	assert.True(t, statement.OperatingExpenses.Total.Equal(decimal.NewFromInt(30500)), "got %s", statement.OperatingExpenses.Total)
	assert.True(t, statement.FinancialExpenses.Total.Equal(decimal.NewFromInt(2750)))
	assert.Len(t, statement.FinancialExpenses.Lines, 2)
	assert.True(t, statement.ExceptionalRevenue.Total.Equal(decimal.NewFromInt(5000)))
	assert.True(t, statement.ExceptionalExpenses.Total.Equal(decimal.NewFromInt(1000)))
	assert.True(t, statement.Tax.Total.Equal(decimal.NewFromInt(15000)))

	assert.True(t, statement.OperatingResult.Equal(decimal.NewFromInt(69500)))
	assert.True(t, statement.ResultBeforeTax.Equal(decimal.NewFromInt(70750)), "got %s", statement.ResultBeforeTax)
	assert.True(t, statement.NetResult.Equal(decimal.NewFromInt(55750)))
}

func TestIncomeStatement_EmptyScope(t *testing.T) {
	service, _, _ := newFixture(t)

	statement, err := service.IncomeStatement(context.Background(), domain.TransactionScope{})
	assert.NoError(t, err)
	assert.Empty(t, statement.OperatingRevenue.Lines)
	assert.True(t, statement.NetResult.IsZero())
}

func TestIncomeStatement_ScopeFilters(t *testing.T) {
	service, store, period := newFixture(t)
	ctx := context.Background()

	crops := seedCategory(t, store, "Crop sales", domain.CategoryTypeRevenue)
	postTx(t, store, period.ID, domain.CategoryTypeRevenue, &crops, 40000)

	// A second period in the same year.
	other := &domain.Period{ID: uuid.New(), FiscalYearID: period.FiscalYearID, Name: "September", StartedAt: time.Now()}
	assert.NoError(t, store.Periods().Close(ctx, period.ID, time.Now(), decimal.Zero))
	assert.NoError(t, store.Periods().Create(ctx, other))
	postTx(t, store, other.ID, domain.CategoryTypeRevenue, &crops, 25000)

	byPeriod, err := service.IncomeStatement(ctx, domain.TransactionScope{PeriodID: &other.ID})
	assert.NoError(t, err)
	assert.True(t, byPeriod.OperatingRevenue.Total.Equal(decimal.NewFromInt(25000)))

	byYear, err := service.IncomeStatement(ctx, domain.TransactionScope{FiscalYearID: &period.FiscalYearID})
	assert.NoError(t, err)
	assert.True(t, byYear.OperatingRevenue.Total.Equal(decimal.NewFromInt(65000)))
}
