package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type openMonthCmd struct {
	app  *App
	date string
}

func (*openMonthCmd) Name() string     { return "open-month" }
func (*openMonthCmd) Synopsis() string { return "open the next monthly period" }
func (*openMonthCmd) Usage() string {
	return `open-month [-date YYYY-MM-DD]:
  Open the next period of the current fiscal year and settle one month
  of lease installments.
`
}

func (c *openMonthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "opening date (YYYY-MM-DD, default today)")
}

func (c *openMonthCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	when, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	period, err := c.app.Closing.OpenMonth(ctx, when)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Opened %s.\n", period.Name)
	return subcommands.ExitSuccess
}

type closeMonthCmd struct {
	app  *App
	date string
}

func (*closeMonthCmd) Name() string     { return "close-month" }
func (*closeMonthCmd) Synopsis() string { return "close the open monthly period" }
func (*closeMonthCmd) Usage() string {
	return `close-month [-date YYYY-MM-DD]:
  Book one month of depreciation, take a valuation snapshot and close
  the open period.
`
}

func (c *closeMonthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "closing date (YYYY-MM-DD, default today)")
}

func (c *closeMonthCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	when, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	snapshot, err := c.app.Closing.CloseMonth(ctx, when)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Month closed. Valuation %s, share price %s.\n",
		c.app.fmtMoney(snapshot.Valuation), c.app.fmtMoney(snapshot.SharePrice))
	return subcommands.ExitSuccess
}

type closeYearCmd struct {
	app      *App
	date     string
	dividend string
	commit   bool
}

func (*closeYearCmd) Name() string     { return "close-year" }
func (*closeYearCmd) Synopsis() string { return "preview or commit the fiscal year-end closing" }
func (*closeYearCmd) Usage() string {
	return `close-year [-commit] [-dividend <n>] [-date YYYY-MM-DD]:
  Without -commit, print the year-end preview and change nothing. With
  -commit, settle tax and dividend, book the remaining depreciation and
  installments, close the year and open the next one. -dividend
  overrides the suggested dividend.
`
}

func (c *closeYearCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "closing date (YYYY-MM-DD, default today)")
	f.StringVar(&c.dividend, "dividend", "", "dividend override (default: suggested)")
	f.BoolVar(&c.commit, "commit", false, "apply the closing instead of previewing it")
}

func (c *closeYearCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.commit {
		return c.preview(ctx)
	}

	when, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	var override *decimal.Decimal
	if c.dividend != "" {
		d, err := parseAmount(c.dividend)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		override = &d
	}

	result, err := c.app.Closing.CommitYearEnd(ctx, when, override)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Year closed. Tax %s, dividend %s, losses carried %s.\n",
		c.app.fmtMoney(result.Preview.Tax), c.app.fmtMoney(result.DividendPaid),
		c.app.fmtMoney(result.LossesAfter))
	fmt.Printf("Opened %s, period %s. Opening cash %s.\n",
		result.NewFiscalYear.Name, result.NewPeriod.Name,
		c.app.fmtMoney(result.NewFiscalYear.OpeningCash))
	return subcommands.ExitSuccess
}

func (c *closeYearCmd) preview(ctx context.Context) subcommands.ExitStatus {
	p, err := c.app.Closing.PreviewYearEnd(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println("Year-end preview (nothing written):")
	fmt.Printf("  Revenue                 %s\n", c.app.fmtMoney(p.Revenue))
	fmt.Printf("  Expenses                %s\n", c.app.fmtMoney(p.Expenses))
	fmt.Printf("  Depreciation booked     %s\n", c.app.fmtMoney(p.BookedDepreciation))
	fmt.Printf("  Depreciation projected  %s (%d months)\n", c.app.fmtMoney(p.ProjectedDepreciation), p.RemainingDepMonths)
	fmt.Printf("  Net profit              %s\n", c.app.fmtMoney(p.NetProfit))
	fmt.Printf("  Loss carry-forward      %s\n", c.app.fmtMoney(p.LossesBefore))
	fmt.Printf("  Taxable                 %s\n", c.app.fmtMoney(p.AfterLosses))
	fmt.Printf("  Tax                     %s\n", c.app.fmtMoney(p.Tax))
	fmt.Printf("  After tax               %s\n", c.app.fmtMoney(p.AfterTax))
	fmt.Printf("  Suggested dividend      %s\n", c.app.fmtMoney(p.SuggestedDividend))
	fmt.Println("Run with -commit to apply.")
	return subcommands.ExitSuccess
}
