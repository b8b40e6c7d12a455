package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/leases"
)

type leaseCmd struct {
	app *App
}

func (*leaseCmd) Name() string     { return "lease" }
func (*leaseCmd) Synopsis() string { return "start, buy out, return or list leases" }
func (*leaseCmd) Usage() string {
	return `lease add -name <text> -type vehicle|implement|building -price <n> -down <n> -residual <n> -rate <pct> -years <n> [-date YYYY-MM-DD]
lease buyout <id>
lease return <id> [-date YYYY-MM-DD]
lease list:
  Starting a lease also puts the leased asset on the books; installments
  settle automatically when a month opens.
`
}

func (*leaseCmd) SetFlags(*flag.FlagSet) {}

func (c *leaseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch f.Arg(0) {
	case "add":
		return c.add(ctx, f.Args()[1:])
	case "buyout":
		return c.buyout(ctx, f.Args()[1:])
	case "return":
		return c.giveBack(ctx, f.Args()[1:])
	case "list":
		return c.list(ctx)
	default:
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
}

func (c *leaseCmd) add(ctx context.Context, args []string) subcommands.ExitStatus {
	fs := flag.NewFlagSet("lease add", flag.ContinueOnError)
	name := fs.String("name", "", "lease name")
	assetType := fs.String("type", "", "vehicle, implement or building")
	price := fs.String("price", "", "total value of the leased asset")
	down := fs.String("down", "0", "down payment")
	residual := fs.String("residual", "0", "balloon payment due at buyout")
	rate := fs.String("rate", "0", "annual interest rate in percent")
	years := fs.Int("years", 0, "lease duration in years")
	date := fs.String("date", "", "start date (YYYY-MM-DD, default today)")
	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}

	price2, err := parseAmount(*price)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	down2, err := parseAmount(*down)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	residual2, err := parseAmount(*residual)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	rate2, err := parseAmount(*rate)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	when, err := parseDate(*date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	lease, err := c.app.Leases.CreateLease(ctx, leases.CreateLeaseInput{
		Name:          *name,
		AssetType:     domain.AssetType(*assetType),
		Price:         price2,
		DownPayment:   down2,
		FinalPayment:  residual2,
		InterestRate:  rate2,
		DurationYears: *years,
		StartDate:     when,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Leased %q: %s monthly over %d months, %s residual (%s)\n",
		lease.Name, c.app.fmtMoney(lease.MonthlyPayment), lease.DurationMonths,
		c.app.fmtMoney(lease.ResidualValue), lease.ID)
	return subcommands.ExitSuccess
}

func (c *leaseCmd) buyout(ctx context.Context, args []string) subcommands.ExitStatus {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: lease buyout <id>")
		return subcommands.ExitUsageError
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid lease id %q\n", args[0])
		return subcommands.ExitUsageError
	}
	lease, err := c.app.Leases.Buyout(ctx, id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Bought out %q; the asset is now owned outright.\n", lease.Name)
	return subcommands.ExitSuccess
}

func (c *leaseCmd) giveBack(ctx context.Context, args []string) subcommands.ExitStatus {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: lease return <id> [-date YYYY-MM-DD]")
		return subcommands.ExitUsageError
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid lease id %q\n", args[0])
		return subcommands.ExitUsageError
	}

	fs := flag.NewFlagSet("lease return", flag.ContinueOnError)
	date := fs.String("date", "", "return date (YYYY-MM-DD, default today)")
	if err := fs.Parse(args[1:]); err != nil {
		return subcommands.ExitUsageError
	}
	when, err := parseDate(*date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	lease, err := c.app.Leases.Return(ctx, id, when)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Returned %q to the lessor.\n", lease.Name)
	return subcommands.ExitSuccess
}

func (c *leaseCmd) list(ctx context.Context) subcommands.ExitStatus {
	rows, err := c.app.Leases.LeaseRepo.List(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if len(rows) == 0 {
		fmt.Println("No leases on the books.")
		return subcommands.ExitSuccess
	}
	for _, lease := range rows {
		fmt.Printf("%-30s %-9s %3d/%3d paid, balance %-14s %s\n",
			lease.Name, lease.Status, lease.PaymentsMade, lease.DurationMonths,
			c.app.fmtMoney(lease.RemainingBalance), lease.ID)
	}
	return subcommands.ExitSuccess
}
