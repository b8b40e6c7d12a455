// Package cli implements the farmbooks command surface on
// google/subcommands, one file per command group.
package cli

import (
	"fmt"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/dmarinho/farmbooks-backend/internal/adapter/repository/sqlite"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/assets"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/closing"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/leases"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/ledger"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/loans"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/reporting"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/setup"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/valuation"
)

// App wires the engine services over one database and hands them to the
// commands.
type App struct {
	Setup     *setup.Service
	Ledger    *ledger.Service
	Assets    *assets.Service
	Leases    *leases.Service
	Loans     *loans.Service
	Valuation *valuation.Service
	Closing   *closing.Service
	Reporting *reporting.Service

	currency string
}

// NewApp builds the full service graph on a sqlite database.
func NewApp(db *sqlite.DB, currencyCode string) *App {
	settingsRepo := sqlite.NewSettingsRepository(db)
	fiscalYearRepo := sqlite.NewFiscalYearRepository(db)
	periodRepo := sqlite.NewPeriodRepository(db)
	categoryRepo := sqlite.NewCategoryRepository(db)
	txRepo := sqlite.NewTransactionRepository(db)
	assetRepo := sqlite.NewAssetRepository(db)
	leaseRepo := sqlite.NewLeaseRepository(db)
	loanRepo := sqlite.NewLoanRepository(db)
	loanPaymentRepo := sqlite.NewLoanPaymentRepository(db)
	dividendRepo := sqlite.NewDividendRepository(db)
	snapshotRepo := sqlite.NewSnapshotRepository(db)

	ledgerService := ledger.NewService(txRepo, periodRepo, categoryRepo)
	assetService := assets.NewService(assetRepo, txRepo, categoryRepo, periodRepo, settingsRepo)
	leaseService := leases.NewService(leaseRepo, assetRepo, txRepo, categoryRepo, periodRepo, settingsRepo)
	loanService := loans.NewService(loanRepo, loanPaymentRepo, txRepo, categoryRepo, periodRepo)
	valuationService := valuation.NewService(
		settingsRepo, txRepo, assetRepo, leaseRepo, loanRepo, loanPaymentRepo,
		dividendRepo, snapshotRepo, fiscalYearRepo, periodRepo,
	)
	closingService := closing.NewService(
		fiscalYearRepo, periodRepo, settingsRepo, txRepo, categoryRepo, dividendRepo,
		assetService, leaseService, valuationService,
	)

	return &App{
		Setup:     setup.NewService(settingsRepo, categoryRepo, fiscalYearRepo, periodRepo, valuationService),
		Ledger:    ledgerService,
		Assets:    assetService,
		Leases:    leaseService,
		Loans:     loanService,
		Valuation: valuationService,
		Closing:   closingService,
		Reporting: reporting.NewService(ledgerService),
		currency:  currencyCode,
	}
}

// Register registers every farmbooks command on the commander.
func Register(c *subcommands.Commander, app *App) {
	c.Register(&initCmd{app: app}, "setup")
	c.Register(&statusCmd{app: app}, "reports")
	c.Register(&reportCmd{app: app}, "reports")

	c.Register(&txCmd{app: app}, "bookkeeping")
	c.Register(&assetCmd{app: app}, "bookkeeping")
	c.Register(&leaseCmd{app: app}, "bookkeeping")
	c.Register(&loanCmd{app: app}, "bookkeeping")

	c.Register(&openMonthCmd{app: app}, "lifecycle")
	c.Register(&closeMonthCmd{app: app}, "lifecycle")
	c.Register(&closeYearCmd{app: app}, "lifecycle")
}

// fmtMoney renders a decimal amount in the configured display currency.
// Storage stays decimal; go-money only formats.
func (a *App) fmtMoney(d decimal.Decimal) string {
	minor := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return money.New(minor, a.currency).Display()
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}
