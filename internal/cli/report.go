package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/reporting"
)

type reportCmd struct {
	app *App
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print the income statement or balance sheet" }
func (*reportCmd) Usage() string {
	return `report income [-period]
report balance:
  The income statement covers the current fiscal year, or just the open
  period with -period. The balance sheet is a cross-check; a difference
  is reported, never corrected.
`
}

func (*reportCmd) SetFlags(*flag.FlagSet) {}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch f.Arg(0) {
	case "income":
		return c.income(ctx, f.Args()[1:])
	case "balance":
		return c.balance(ctx)
	default:
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
}

func (c *reportCmd) income(ctx context.Context, args []string) subcommands.ExitStatus {
	fs := flag.NewFlagSet("report income", flag.ContinueOnError)
	periodOnly := fs.Bool("period", false, "restrict to the open period")
	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}

	var scope domain.TransactionScope
	if *periodOnly {
		period, err := c.app.Valuation.PeriodRepo.Current(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				fmt.Fprintln(os.Stderr, "no open period")
			} else {
				fmt.Fprintln(os.Stderr, err)
			}
			return subcommands.ExitFailure
		}
		scope.PeriodID = &period.ID
		fmt.Printf("Income statement, period %s\n\n", period.Name)
	} else {
		fy, err := c.app.Valuation.FiscalYearRepo.Current(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				fmt.Fprintln(os.Stderr, "no open fiscal year")
			} else {
				fmt.Fprintln(os.Stderr, err)
			}
			return subcommands.ExitFailure
		}
		scope.FiscalYearID = &fy.ID
		fmt.Printf("Income statement, %s\n\n", fy.Name)
	}

	statement, err := c.app.Reporting.IncomeStatement(ctx, scope)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	c.section("Operating revenue", statement.OperatingRevenue)
	c.section("Operating expenses", statement.OperatingExpenses)
	fmt.Printf("%-36s %s\n\n", "Operating result", c.app.fmtMoney(statement.OperatingResult))
	c.section("Financial expenses", statement.FinancialExpenses)
	c.section("Exceptional revenue", statement.ExceptionalRevenue)
	c.section("Exceptional expenses", statement.ExceptionalExpenses)
	fmt.Printf("%-36s %s\n\n", "Result before tax", c.app.fmtMoney(statement.ResultBeforeTax))
	c.section("Tax", statement.Tax)
	fmt.Printf("%-36s %s\n", "Net result", c.app.fmtMoney(statement.NetResult))
	return subcommands.ExitSuccess
}

func (c *reportCmd) section(title string, s reporting.Section) {
	if len(s.Lines) == 0 {
		return
	}
	fmt.Printf("%s\n", title)
	for _, line := range s.Lines {
		fmt.Printf("  %-34s %s\n", line.Name, c.app.fmtMoney(line.Total))
	}
	fmt.Printf("  %-34s %s\n\n", "Total", c.app.fmtMoney(s.Total))
}

func (c *reportCmd) balance(ctx context.Context) subcommands.ExitStatus {
	sheet, err := c.app.Valuation.Sheet(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Println("Assets")
	fmt.Printf("  %-34s %s\n", "Cash", c.app.fmtMoney(sheet.Cash))
	fmt.Printf("  %-34s %s\n", "Fixed assets (NBV)", c.app.fmtMoney(sheet.TotalAssetNBV))
	fmt.Printf("  %-34s %s\n\n", "Total", c.app.fmtMoney(sheet.AssetsTotal))

	fmt.Println("Equity and liabilities")
	fmt.Printf("  %-34s %s\n", "Share capital", c.app.fmtMoney(sheet.ShareCapital))
	fmt.Printf("  %-34s %s\n", "Current year profit", c.app.fmtMoney(sheet.CurrentYearProfit))
	fmt.Printf("  %-34s %s\n", "Accumulated losses", c.app.fmtMoney(sheet.AccumulatedLosses.Neg()))
	fmt.Printf("  %-34s %s\n", "Loan debt", c.app.fmtMoney(sheet.TotalDebt))
	fmt.Printf("  %-34s %s\n", "Lease obligations", c.app.fmtMoney(sheet.TotalLeaseObligations))
	fmt.Printf("  %-34s %s\n\n", "Total", c.app.fmtMoney(sheet.LiabilitiesTotal))

	if sheet.Balanced {
		fmt.Println("The sheet balances.")
	} else {
		fmt.Printf("The sheet does NOT balance: difference %s.\n", c.app.fmtMoney(sheet.Difference))
	}
	return subcommands.ExitSuccess
}
