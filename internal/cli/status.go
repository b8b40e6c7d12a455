package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
)

type statusCmd struct {
	app *App
}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "show the current period, valuation and share price" }
func (*statusCmd) Usage() string {
	return `status:
  Print the open fiscal year and period plus the live valuation figures.
`
}

func (*statusCmd) SetFlags(*flag.FlagSet) {}

func (c *statusCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fy, err := c.app.Valuation.FiscalYearRepo.Current(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		fmt.Println("No open fiscal year. Run `init` first or `open-month` after a year-end.")
		return subcommands.ExitSuccess
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Fiscal year: %s (opening cash %s)\n", fy.Name, c.app.fmtMoney(fy.OpeningCash))

	period, err := c.app.Valuation.PeriodRepo.Current(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		fmt.Println("Period:      none open")
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	default:
		fmt.Printf("Period:      %s (since %s)\n", period.Name, period.StartedAt.Format("2006-01-02"))
	}

	figures, err := c.app.Valuation.Compute(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	buyback, err := c.app.Valuation.Buyback(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Println()
	fmt.Printf("Cash:              %s\n", c.app.fmtMoney(figures.Cash))
	fmt.Printf("Assets (NBV):      %s\n", c.app.fmtMoney(figures.TotalAssetNBV))
	fmt.Printf("Loan debt:         %s\n", c.app.fmtMoney(figures.TotalDebt))
	fmt.Printf("Lease obligations: %s\n", c.app.fmtMoney(figures.TotalLeaseObligations))
	fmt.Printf("Valuation:         %s\n", c.app.fmtMoney(figures.Valuation))
	fmt.Printf("Share price:       %s (buyback floor %s)\n",
		c.app.fmtMoney(figures.SharePrice), c.app.fmtMoney(buyback.MinPrice))
	fmt.Printf("Investor buyback:  %s for %d shares, investor return %s\n",
		c.app.fmtMoney(buyback.BuybackCost), buyback.InvestorShares,
		c.app.fmtMoney(buyback.InvestorReturn))
	return subcommands.ExitSuccess
}
