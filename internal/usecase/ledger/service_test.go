package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

// MockTransactionRepository is a mock implementation of TransactionRepository for testing
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTransactionRepository) List(ctx context.Context, scope domain.TransactionScope) ([]*domain.Transaction, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

// MockPeriodRepository is a mock implementation of PeriodRepository for testing
type MockPeriodRepository struct {
	mock.Mock
}

func (m *MockPeriodRepository) Create(ctx context.Context, p *domain.Period) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPeriodRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Period, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) Current(ctx context.Context) (*domain.Period, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) ListByFiscalYear(ctx context.Context, fiscalYearID uuid.UUID) ([]*domain.Period, error) {
	args := m.Called(ctx, fiscalYearID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) Close(ctx context.Context, id uuid.UUID, closedAt time.Time, depreciationBooked decimal.Decimal) error {
	args := m.Called(ctx, id, closedAt, depreciationBooked)
	return args.Error(0)
}

// MockCategoryRepository is a mock implementation of CategoryRepository for testing
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) List(ctx context.Context, typeFilter domain.CategoryType) ([]*domain.Category, error) {
	args := m.Called(ctx, typeFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByName(ctx context.Context, name string, typeFilter domain.CategoryType) (*domain.Category, error) {
	args := m.Called(ctx, name, typeFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func newTx(txType domain.CategoryType, amount int64, categoryID *uuid.UUID) *domain.Transaction {
	return &domain.Transaction{
		ID:         uuid.New(),
		PeriodID:   uuid.New(),
		Date:       time.Now(),
		Label:      "entry",
		Amount:     decimal.NewFromInt(amount),
		Type:       txType,
		CategoryID: categoryID,
	}
}

func TestCreateTransaction_StandardFlow(t *testing.T) {
	ctx := context.Background()
	mockTxRepo := new(MockTransactionRepository)
	mockPeriodRepo := new(MockPeriodRepository)
	mockCategoryRepo := new(MockCategoryRepository)

	service := NewService(mockTxRepo, mockPeriodRepo, mockCategoryRepo)

	period := &domain.Period{ID: uuid.New(), Name: "March", StartedAt: time.Now()}
	mockPeriodRepo.On("Current", ctx).Return(period, nil)
	mockTxRepo.On("Create", ctx, mock.AnythingOfType("*domain.Transaction")).Return(nil)

	tx, err := service.CreateTransaction(ctx, CreateTransactionInput{
		Date:   time.Now(),
		Label:  "Wheat delivery",
		Amount: decimal.NewFromInt(12500),
		Type:   domain.CategoryTypeRevenue,
	})

	assert.NoError(t, err)
	assert.Equal(t, period.ID, tx.PeriodID)
	mockTxRepo.AssertExpectations(t)
}

func TestCreateTransaction_NoOpenPeriod(t *testing.T) {
	ctx := context.Background()
	mockTxRepo := new(MockTransactionRepository)
	mockPeriodRepo := new(MockPeriodRepository)
	mockCategoryRepo := new(MockCategoryRepository)

	service := NewService(mockTxRepo, mockPeriodRepo, mockCategoryRepo)

	mockPeriodRepo.On("Current", ctx).Return(nil, domain.ErrNotFound)

	_, err := service.CreateTransaction(ctx, CreateTransactionInput{
		Date:   time.Now(),
		Label:  "Fuel",
		Amount: decimal.NewFromInt(300),
		Type:   domain.CategoryTypeExpense,
	})

	assert.ErrorIs(t, err, domain.ErrNoOpenPeriod)
	mockTxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateTransaction_NonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	mockTxRepo := new(MockTransactionRepository)
	mockPeriodRepo := new(MockPeriodRepository)
	mockCategoryRepo := new(MockCategoryRepository)

	service := NewService(mockTxRepo, mockPeriodRepo, mockCategoryRepo)

	period := &domain.Period{ID: uuid.New(), Name: "March", StartedAt: time.Now()}
	mockPeriodRepo.On("Current", ctx).Return(period, nil)

	_, err := service.CreateTransaction(ctx, CreateTransactionInput{
		Date:   time.Now(),
		Label:  "Nothing",
		Amount: decimal.Zero,
		Type:   domain.CategoryTypeExpense,
	})

	assert.ErrorIs(t, err, domain.ErrNonPositiveAmount)
	mockTxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSumByType_ExactDecimalAddition(t *testing.T) {
	ctx := context.Background()
	mockTxRepo := new(MockTransactionRepository)
	mockPeriodRepo := new(MockPeriodRepository)
	mockCategoryRepo := new(MockCategoryRepository)

	service := NewService(mockTxRepo, mockPeriodRepo, mockCategoryRepo)

	txs := []*domain.Transaction{
		newTx(domain.CategoryTypeRevenue, 100, nil),
		newTx(domain.CategoryTypeRevenue, 250, nil),
		newTx(domain.CategoryTypeExpense, 999, nil),
	}
	mockTxRepo.On("List", ctx, domain.TransactionScope{}).Return(txs, nil)

	total, err := service.SumByType(ctx, domain.CategoryTypeRevenue, domain.TransactionScope{})

	assert.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(350)), "got %s", total)
}

func TestSumByCategory_OrderedDescendingWithUncategorized(t *testing.T) {
	ctx := context.Background()
	mockTxRepo := new(MockTransactionRepository)
	mockPeriodRepo := new(MockPeriodRepository)
	mockCategoryRepo := new(MockCategoryRepository)

	service := NewService(mockTxRepo, mockPeriodRepo, mockCategoryRepo)

	wheat := &domain.Category{ID: uuid.New(), Name: "Wheat", Type: domain.CategoryTypeRevenue}
	milk := &domain.Category{ID: uuid.New(), Name: "Milk", Type: domain.CategoryTypeRevenue}
	danglingID := uuid.New() // category row that no longer resolves

	txs := []*domain.Transaction{
		newTx(domain.CategoryTypeRevenue, 100, &wheat.ID),
		newTx(domain.CategoryTypeRevenue, 400, &milk.ID),
		newTx(domain.CategoryTypeRevenue, 50, &danglingID),
		newTx(domain.CategoryTypeRevenue, 25, nil),
	}
	mockTxRepo.On("List", ctx, domain.TransactionScope{}).Return(txs, nil)
	mockCategoryRepo.On("List", ctx, domain.CategoryTypeRevenue).
		Return([]*domain.Category{wheat, milk}, nil)

	rows, err := service.SumByCategory(ctx, domain.CategoryTypeRevenue, domain.TransactionScope{})

	assert.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "Milk", rows[0].Name)
	assert.Equal(t, "Wheat", rows[1].Name)
	assert.Equal(t, UncategorizedLabel, rows[2].Name)
	// The dangling reference is folded into the uncategorized row
	assert.True(t, rows[2].Total.Equal(decimal.NewFromInt(75)), "got %s", rows[2].Total)
}

func TestSumByCategory_TiesKeepCategoryOrder(t *testing.T) {
	ctx := context.Background()
	mockTxRepo := new(MockTransactionRepository)
	mockPeriodRepo := new(MockPeriodRepository)
	mockCategoryRepo := new(MockCategoryRepository)

	service := NewService(mockTxRepo, mockPeriodRepo, mockCategoryRepo)

	first := &domain.Category{ID: uuid.New(), Name: "Seeds", Type: domain.CategoryTypeExpense}
	second := &domain.Category{ID: uuid.New(), Name: "Fuel", Type: domain.CategoryTypeExpense}

	txs := []*domain.Transaction{
		newTx(domain.CategoryTypeExpense, 200, &second.ID),
		newTx(domain.CategoryTypeExpense, 200, &first.ID),
	}
	mockTxRepo.On("List", ctx, domain.TransactionScope{}).Return(txs, nil)
	mockCategoryRepo.On("List", ctx, domain.CategoryTypeExpense).
		Return([]*domain.Category{first, second}, nil)

	rows, err := service.SumByCategory(ctx, domain.CategoryTypeExpense, domain.TransactionScope{})

	assert.NoError(t, err)
	assert.Equal(t, "Seeds", rows[0].Name)
	assert.Equal(t, "Fuel", rows[1].Name)
}
