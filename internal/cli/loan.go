package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/dmarinho/farmbooks-backend/internal/usecase/loans"
)

type loanCmd struct {
	app *App
}

func (*loanCmd) Name() string     { return "loan" }
func (*loanCmd) Synopsis() string { return "draw, service or list revolving loans" }
func (*loanCmd) Usage() string {
	return `loan add -name <text> -principal <n> -rate <pct> [-date YYYY-MM-DD]
loan interest <id> [-date YYYY-MM-DD]
loan repay <id> -amount <n> [-date YYYY-MM-DD]
loan list:
  Drawing a loan raises cash without touching the ledger. Interest posts
  as an expense; principal repayments only reduce the balance.
`
}

func (*loanCmd) SetFlags(*flag.FlagSet) {}

func (c *loanCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch f.Arg(0) {
	case "add":
		return c.add(ctx, f.Args()[1:])
	case "interest":
		return c.interest(ctx, f.Args()[1:])
	case "repay":
		return c.repay(ctx, f.Args()[1:])
	case "list":
		return c.list(ctx)
	default:
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
}

func (c *loanCmd) add(ctx context.Context, args []string) subcommands.ExitStatus {
	fs := flag.NewFlagSet("loan add", flag.ContinueOnError)
	name := fs.String("name", "", "loan name")
	principal := fs.String("principal", "", "amount drawn")
	rate := fs.String("rate", "0", "annual interest rate in percent")
	date := fs.String("date", "", "draw date (YYYY-MM-DD, default today)")
	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}

	principal2, err := parseAmount(*principal)
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

	loan, err := c.app.Loans.CreateLoan(ctx, loans.CreateLoanInput{
		Name:         *name,
		Principal:    principal2,
		InterestRate: rate2,
		StartDate:    when,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Drew %s on %q at %s%% (%s)\n",
		c.app.fmtMoney(loan.Principal), loan.Name, loan.InterestRate.String(), loan.ID)
	return subcommands.ExitSuccess
}

func (c *loanCmd) interest(ctx context.Context, args []string) subcommands.ExitStatus {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: loan interest <id> [-date YYYY-MM-DD]")
		return subcommands.ExitUsageError
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid loan id %q\n", args[0])
		return subcommands.ExitUsageError
	}

	fs := flag.NewFlagSet("loan interest", flag.ContinueOnError)
	date := fs.String("date", "", "payment date (YYYY-MM-DD, default today)")
	if err := fs.Parse(args[1:]); err != nil {
		return subcommands.ExitUsageError
	}
	when, err := parseDate(*date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	payment, err := c.app.Loans.PayInterest(ctx, id, when)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if payment == nil {
		fmt.Println("No interest due this month.")
		return subcommands.ExitSuccess
	}
	fmt.Printf("Paid %s interest.\n", c.app.fmtMoney(payment.InterestPart))
	return subcommands.ExitSuccess
}

func (c *loanCmd) repay(ctx context.Context, args []string) subcommands.ExitStatus {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: loan repay <id> -amount <n> [-date YYYY-MM-DD]")
		return subcommands.ExitUsageError
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid loan id %q\n", args[0])
		return subcommands.ExitUsageError
	}

	fs := flag.NewFlagSet("loan repay", flag.ContinueOnError)
	amount := fs.String("amount", "", "principal to repay")
	date := fs.String("date", "", "payment date (YYYY-MM-DD, default today)")
	if err := fs.Parse(args[1:]); err != nil {
		return subcommands.ExitUsageError
	}
	amount2, err := parseAmount(*amount)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	when, err := parseDate(*date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	loan, err := c.app.Loans.RepayPrincipal(ctx, id, amount2, when)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if loan.IsActive() {
		fmt.Printf("Repaid; %s outstanding on %q.\n", c.app.fmtMoney(loan.RemainingBalance), loan.Name)
	} else {
		fmt.Printf("%q is paid off.\n", loan.Name)
	}
	return subcommands.ExitSuccess
}

func (c *loanCmd) list(ctx context.Context) subcommands.ExitStatus {
	rows, err := c.app.Loans.List(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if len(rows) == 0 {
		fmt.Println("No loans on the books.")
		return subcommands.ExitSuccess
	}
	for _, loan := range rows {
		fmt.Printf("%-30s %-9s %s%% on %-14s balance %-14s %s\n",
			loan.Name, loan.Status, loan.InterestRate.String(),
			c.app.fmtMoney(loan.Principal), c.app.fmtMoney(loan.RemainingBalance), loan.ID)
	}
	return subcommands.ExitSuccess
}
