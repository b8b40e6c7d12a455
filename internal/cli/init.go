package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/dmarinho/farmbooks-backend/internal/usecase/setup"
)

type initCmd struct {
	app *App

	name         string
	capital      string
	shares       int64
	investor     int64
	multiplier   string
	taxRate      string
	depVehicle   int
	depImplement int
	depBuilding  int
	startMonth   int
	date         string
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "initialize the books for a new farm save" }
func (*initCmd) Usage() string {
	return `init -name <save> [-capital 500000] [-shares 1000] [-investor-shares 400] [-buyback-multiplier 1.5] [-tax-rate 25] [-start-month 8]:
  Set up settings, categories, the first fiscal year and its opening
  period, and take the opening valuation snapshot. Refuses to run twice.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "save name")
	f.StringVar(&c.capital, "capital", "500000", "initial capital")
	f.Int64Var(&c.shares, "shares", 1000, "total shares outstanding")
	f.Int64Var(&c.investor, "investor-shares", 400, "shares held by the outside investor")
	f.StringVar(&c.multiplier, "buyback-multiplier", "1.5", "buyback floor multiplier over the initial share price")
	f.StringVar(&c.taxRate, "tax-rate", "25", "corporate tax rate in percent")
	f.IntVar(&c.depVehicle, "dep-vehicle", 5, "vehicle depreciation years")
	f.IntVar(&c.depImplement, "dep-implement", 10, "implement depreciation years")
	f.IntVar(&c.depBuilding, "dep-building", 20, "building depreciation years")
	f.IntVar(&c.startMonth, "start-month", 8, "first calendar month of the fiscal year (1-12)")
	f.StringVar(&c.date, "date", "", "start date (YYYY-MM-DD, default today)")
}

func (c *initCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	capital, err := parseAmount(c.capital)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	multiplier, err := parseAmount(c.multiplier)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	taxRate, err := parseAmount(c.taxRate)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	date, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	fy, err := c.app.Setup.Initialize(ctx, setup.SetupConfig{
		SaveName:          c.name,
		InitialCapital:    capital,
		TotalShares:       c.shares,
		InvestorShares:    c.investor,
		BuybackMultiplier: multiplier,
		TaxRate:           taxRate,
		DepYearsVehicle:   c.depVehicle,
		DepYearsImplement: c.depImplement,
		DepYearsBuilding:  c.depBuilding,
		StartMonth:        c.startMonth,
		StartDate:         date,
	})
	if err != nil {
		if errors.Is(err, setup.ErrAlreadySetUp) {
			fmt.Fprintln(os.Stderr, "these books are already initialized")
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return subcommands.ExitFailure
	}

	sharePrice := capital.Div(decimal.NewFromInt(c.shares))
	fmt.Printf("Initialized %q: %s opening capital, %d shares at %s\n",
		c.name, c.app.fmtMoney(capital), c.shares, c.app.fmtMoney(sharePrice))
	fmt.Printf("Fiscal year %q is open.\n", fy.Name)
	return subcommands.ExitSuccess
}
