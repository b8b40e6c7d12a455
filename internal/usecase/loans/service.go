// Package loans implements the revolving loan engine: drawing a loan,
// interest-only payments, and free-form principal repayments.
package loans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

// CreateLoanInput is the input for drawing a new loan.
type CreateLoanInput struct {
	Name         string
	Principal    decimal.Decimal
	InterestRate decimal.Decimal // annual percent
	StartDate    time.Time
}

// Service handles loan operations.
type Service struct {
	LoanRepo        domain.LoanRepository
	PaymentRepo     domain.LoanPaymentRepository
	TransactionRepo domain.TransactionRepository
	CategoryRepo    domain.CategoryRepository
	PeriodRepo      domain.PeriodRepository
}

// NewService creates a new loans Service instance.
func NewService(
	loanRepo domain.LoanRepository,
	paymentRepo domain.LoanPaymentRepository,
	txRepo domain.TransactionRepository,
	categoryRepo domain.CategoryRepository,
	periodRepo domain.PeriodRepository,
) *Service {
	return &Service{
		LoanRepo:        loanRepo,
		PaymentRepo:     paymentRepo,
		TransactionRepo: txRepo,
		CategoryRepo:    categoryRepo,
		PeriodRepo:      periodRepo,
	}
}

// CreateLoan draws a new loan. The proceeds are not posted to the
// ledger; they surface in the cash position as loan inflow.
func (s *Service) CreateLoan(ctx context.Context, input CreateLoanInput) (*domain.Loan, error) {
	if _, err := s.openPeriod(ctx); err != nil {
		return nil, err
	}

	loan := &domain.Loan{
		ID:               uuid.New(),
		Name:             input.Name,
		Principal:        input.Principal,
		InterestRate:     input.InterestRate,
		StartDate:        input.StartDate,
		RemainingBalance: input.Principal,
		Status:           domain.LoanStatusActive,
	}
	if err := loan.Validate(); err != nil {
		return nil, err
	}
	if err := s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to create loan: %w", err)
	}
	return loan, nil
}

// PayInterest makes an interest-only payment on a loan: one month of
// interest on the current balance, rounded to the whole currency unit.
// The balance does not move. A zero interest charge (tiny balance or a
// zero rate) is a silent no-op.
func (s *Service) PayInterest(ctx context.Context, loanID uuid.UUID, date time.Time) (*domain.LoanPayment, error) {
	period, err := s.openPeriod(ctx)
	if err != nil {
		return nil, err
	}

	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	if !loan.IsActive() {
		return nil, domain.ErrAlreadyTerminal
	}

	interest := loan.MonthlyInterest()
	if interest.LessThanOrEqual(decimal.Zero) {
		return nil, nil
	}

	payment := &domain.LoanPayment{
		ID:            uuid.New(),
		LoanID:        loan.ID,
		PeriodID:      period.ID,
		Amount:        interest,
		PrincipalPart: decimal.Zero,
		InterestPart:  interest,
		Date:          date,
	}
	if err := s.PaymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record loan payment: %w", err)
	}

	if err := s.postExpense(ctx, period.ID, date,
		fmt.Sprintf("Loan interest: %s", loan.Name), interest); err != nil {
		return nil, err
	}
	return payment, nil
}

// RepayPrincipal pays down the loan balance by the given amount,
// clamped to the remaining balance. No ledger transaction is posted;
// principal movements are cash flows, not income statement lines. A
// residual balance at or below the payoff epsilon closes the loan.
func (s *Service) RepayPrincipal(ctx context.Context, loanID uuid.UUID, amount decimal.Decimal, date time.Time) (*domain.Loan, error) {
	period, err := s.openPeriod(ctx)
	if err != nil {
		return nil, err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrNonPositiveAmount
	}

	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	if !loan.IsActive() {
		return nil, domain.ErrAlreadyTerminal
	}

	principal := amount
	if principal.GreaterThan(loan.RemainingBalance) {
		principal = loan.RemainingBalance
	}
	loan.RemainingBalance = loan.RemainingBalance.Sub(principal)

	if loan.RemainingBalance.LessThanOrEqual(domain.LoanPayoffEpsilon) {
		loan.RemainingBalance = decimal.Zero
		loan.Status = domain.LoanStatusPaidOff
	}
	if err := s.LoanRepo.Update(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}

	paymentRow := &domain.LoanPayment{
		ID:            uuid.New(),
		LoanID:        loan.ID,
		PeriodID:      period.ID,
		Amount:        principal,
		PrincipalPart: principal,
		InterestPart:  decimal.Zero,
		Date:          date,
	}
	if err := s.PaymentRepo.Create(ctx, paymentRow); err != nil {
		return nil, fmt.Errorf("failed to record loan payment: %w", err)
	}
	return loan, nil
}

// List returns all loans in creation order.
func (s *Service) List(ctx context.Context) ([]*domain.Loan, error) {
	return s.LoanRepo.List(ctx)
}

// Payments returns the payment history of a loan.
func (s *Service) Payments(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error) {
	return s.PaymentRepo.ListByLoan(ctx, loanID)
}

func (s *Service) postExpense(ctx context.Context, periodID uuid.UUID, date time.Time, label string, amount decimal.Decimal) error {
	var categoryID *uuid.UUID
	category, err := s.CategoryRepo.GetByName(ctx, domain.CategoryLoanInterest, domain.CategoryTypeExpense)
	if err == nil {
		categoryID = &category.ID
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to resolve category %s: %w", domain.CategoryLoanInterest, err)
	}

	tx := &domain.Transaction{
		ID:         uuid.New(),
		PeriodID:   periodID,
		Date:       date,
		Label:      label,
		Amount:     amount,
		Type:       domain.CategoryTypeExpense,
		CategoryID: categoryID,
	}
	if err := s.TransactionRepo.Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to post loan interest expense: %w", err)
	}
	return nil
}

func (s *Service) openPeriod(ctx context.Context) (*domain.Period, error) {
	period, err := s.PeriodRepo.Current(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNoOpenPeriod
		}
		return nil, fmt.Errorf("failed to get current period: %w", err)
	}
	return period, nil
}
