// Package leases implements the lease amortization engine: inception of
// financed assets, the monthly installment split between interest and
// capital, and the terminal buyout/return actions.
package leases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

// CreateLeaseInput is the input for lease inception.
type CreateLeaseInput struct {
	Name          string
	AssetType     domain.AssetType
	Price         decimal.Decimal
	DownPayment   decimal.Decimal
	FinalPayment  decimal.Decimal // residual / balloon
	InterestRate  decimal.Decimal // annual percent
	DurationYears int
	StartDate     time.Time
}

// Service handles lease operations.
type Service struct {
	LeaseRepo       domain.LeaseRepository
	AssetRepo       domain.AssetRepository
	TransactionRepo domain.TransactionRepository
	CategoryRepo    domain.CategoryRepository
	PeriodRepo      domain.PeriodRepository
	SettingsRepo    domain.SettingsRepository
}

// NewService creates a new leases Service instance.
func NewService(
	leaseRepo domain.LeaseRepository,
	assetRepo domain.AssetRepository,
	txRepo domain.TransactionRepository,
	categoryRepo domain.CategoryRepository,
	periodRepo domain.PeriodRepository,
	settingsRepo domain.SettingsRepository,
) *Service {
	return &Service{
		LeaseRepo:       leaseRepo,
		AssetRepo:       assetRepo,
		TransactionRepo: txRepo,
		CategoryRepo:    categoryRepo,
		PeriodRepo:      periodRepo,
		SettingsRepo:    settingsRepo,
	}
}

// CreateLease opens a lease and creates the paired asset at full price
// with the configured default depreciation for its type. The asset
// back-references the lease through from_lease_id; the remaining
// balance starts at price minus down payment.
func (s *Service) CreateLease(ctx context.Context, input CreateLeaseInput) (*domain.Lease, error) {
	if _, err := s.openPeriod(ctx); err != nil {
		return nil, err
	}
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrNonPositiveAmount
	}
	if input.DurationYears <= 0 {
		return nil, domain.ErrInvalidDuration
	}

	monthly := domain.RoundMinor(domain.LeaseMonthlyPayment(
		input.Price, input.DownPayment, input.FinalPayment, input.InterestRate, input.DurationYears))

	lease := &domain.Lease{
		ID:               uuid.New(),
		Name:             input.Name,
		TotalValue:       input.Price,
		InitialPayment:   input.DownPayment,
		MonthlyPayment:   monthly,
		DurationMonths:   input.DurationYears * 12,
		ResidualValue:    input.FinalPayment,
		StartDate:        input.StartDate,
		Status:           domain.LeaseStatusActive,
		InterestRate:     input.InterestRate,
		RemainingBalance: input.Price.Sub(input.DownPayment),
	}
	if err := lease.Validate(); err != nil {
		return nil, err
	}

	if err := s.LeaseRepo.Create(ctx, lease); err != nil {
		return nil, fmt.Errorf("failed to create lease: %w", err)
	}

	raw, err := s.SettingsRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	settings, err := domain.ParseSettings(raw)
	if err != nil {
		return nil, err
	}

	leaseID := lease.ID
	asset := &domain.Asset{
		ID:                uuid.New(),
		Name:              input.Name,
		Type:              input.AssetType,
		PurchasePrice:     input.Price,
		PurchaseDate:      input.StartDate,
		DepreciationYears: settings.DepreciationYearsFor(input.AssetType),
		FromLeaseID:       &leaseID,
	}
	if err := asset.Validate(); err != nil {
		return nil, err
	}
	if err := s.AssetRepo.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to create leased asset: %w", err)
	}

	return lease, nil
}

// ProcessInstallments settles the given number of monthly installments
// for every active lease that has not yet reached its full term. Per
// month: the interest portion (declining balance, rounded to the minor
// unit) is posted as a "Lease Interest" expense; the capital portion
// (payment minus interest, rounded independently) reduces the remaining
// balance and is tracked only there, as a non-P&L cash movement.
//
// The lifecycle invokes this exactly once per elapsed month.
func (s *Service) ProcessInstallments(ctx context.Context, periodID uuid.UUID, date time.Time, months int) error {
	if months <= 0 {
		return nil
	}

	active, err := s.LeaseRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active leases: %w", err)
	}

	for _, lease := range active {
		for i := 0; i < months && !lease.Matured(); i++ {
			interest := lease.InterestPortion()
			capital := domain.RoundMinor(lease.MonthlyPayment.Sub(interest))

			lease.RemainingBalance = lease.RemainingBalance.Sub(capital)
			lease.PaymentsMade++

			if interest.IsPositive() {
				if err := s.postExpense(ctx, periodID, date,
					fmt.Sprintf("Lease interest: %s", lease.Name), domain.CategoryLeaseInterest, interest); err != nil {
					return err
				}
			}
		}
		if err := s.LeaseRepo.Update(ctx, lease); err != nil {
			return fmt.Errorf("failed to update lease %s: %w", lease.Name, err)
		}
	}
	return nil
}

// Buyout exercises the purchase option at full term: the residual value
// is paid (a non-P&L cash outflow realized through the zeroed balance),
// the status becomes purchased and the asset is retained.
func (s *Service) Buyout(ctx context.Context, leaseID uuid.UUID) (*domain.Lease, error) {
	if _, err := s.openPeriod(ctx); err != nil {
		return nil, err
	}

	lease, err := s.LeaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lease: %w", err)
	}
	if !lease.IsActive() {
		return nil, domain.ErrAlreadyTerminal
	}
	if !lease.Matured() {
		return nil, domain.ErrLeaseNotMature
	}

	lease.Status = domain.LeaseStatusPurchased
	lease.RemainingBalance = decimal.Zero
	if err := s.LeaseRepo.Update(ctx, lease); err != nil {
		return nil, fmt.Errorf("failed to update lease: %w", err)
	}
	return lease, nil
}

// Return hands the equipment back at full term. The paired asset is
// disposed of at price zero; any positive net book value is posted as a
// "Lease return loss" expense.
func (s *Service) Return(ctx context.Context, leaseID uuid.UUID, date time.Time) (*domain.Lease, error) {
	period, err := s.openPeriod(ctx)
	if err != nil {
		return nil, err
	}

	lease, err := s.LeaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lease: %w", err)
	}
	if !lease.IsActive() {
		return nil, domain.ErrAlreadyTerminal
	}
	if !lease.Matured() {
		return nil, domain.ErrLeaseNotMature
	}

	lease.Status = domain.LeaseStatusReturned
	if err := s.LeaseRepo.Update(ctx, lease); err != nil {
		return nil, fmt.Errorf("failed to update lease: %w", err)
	}

	asset, err := s.AssetRepo.GetByLeaseID(ctx, leaseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// No paired asset to dispose of; the weak back-reference
			// carries no lifecycle obligation.
			return lease, nil
		}
		return nil, fmt.Errorf("failed to find leased asset: %w", err)
	}
	if asset.IsSold() {
		return lease, nil
	}

	nbv := asset.NetBookValue()
	if err := s.AssetRepo.MarkSold(ctx, asset.ID, date, decimal.Zero); err != nil {
		return nil, fmt.Errorf("failed to dispose leased asset: %w", err)
	}
	if nbv.IsPositive() {
		if err := s.postExpense(ctx, period.ID, date,
			fmt.Sprintf("Lease return loss: %s", lease.Name), domain.CategoryCapitalLoss, domain.RoundMinor(nbv)); err != nil {
			return nil, err
		}
	}
	return lease, nil
}

func (s *Service) postExpense(ctx context.Context, periodID uuid.UUID, date time.Time, label, categoryName string, amount decimal.Decimal) error {
	var categoryID *uuid.UUID
	category, err := s.CategoryRepo.GetByName(ctx, categoryName, domain.CategoryTypeExpense)
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
		Type:       domain.CategoryTypeExpense,
		CategoryID: categoryID,
	}
	if err := s.TransactionRepo.Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to post %s: %w", label, err)
	}
	return nil
}

func (s *Service) openPeriod(ctx context.Context) (*domain.Period, error) {
	period, err := s.PeriodRepo.Current(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNoOpenPeriod
		}
		return nil, fmt.Errorf("failed to resolve open period: %w", err)
	}
	return period, nil
}
