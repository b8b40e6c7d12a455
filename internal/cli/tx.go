package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/ledger"
)

type txCmd struct {
	app *App
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "record, delete or list ledger transactions" }
func (*txCmd) Usage() string {
	return `tx add -type revenue|expense -label <text> -amount <n> [-category <name>] [-date YYYY-MM-DD] [-notes <text>]
tx rm <id>
tx list:
  Manual ledger entries always land in the open period.
`
}

func (*txCmd) SetFlags(*flag.FlagSet) {}

func (c *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch f.Arg(0) {
	case "add":
		return c.add(ctx, f.Args()[1:])
	case "rm":
		return c.rm(ctx, f.Args()[1:])
	case "list":
		return c.list(ctx)
	default:
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
}

func (c *txCmd) add(ctx context.Context, args []string) subcommands.ExitStatus {
	fs := flag.NewFlagSet("tx add", flag.ContinueOnError)
	txType := fs.String("type", "", "revenue or expense")
	label := fs.String("label", "", "transaction label")
	amount := fs.String("amount", "", "positive amount")
	category := fs.String("category", "", "category name (optional)")
	date := fs.String("date", "", "date (YYYY-MM-DD, default today)")
	notes := fs.String("notes", "", "free-form notes (optional)")
	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}

	kind := domain.CategoryType(*txType)
	if kind != domain.CategoryTypeRevenue && kind != domain.CategoryTypeExpense {
		fmt.Fprintln(os.Stderr, "-type must be revenue or expense")
		return subcommands.ExitUsageError
	}
	value, err := parseAmount(*amount)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	when, err := parseDate(*date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	var categoryID *uuid.UUID
	if *category != "" {
		cat, err := c.app.Ledger.CategoryRepo.GetByName(ctx, *category, kind)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "no %s category named %q\n", kind, *category)
			} else {
				fmt.Fprintln(os.Stderr, err)
			}
			return subcommands.ExitFailure
		}
		categoryID = &cat.ID
	}
	var notesPtr *string
	if *notes != "" {
		notesPtr = notes
	}

	tx, err := c.app.Ledger.CreateTransaction(ctx, ledger.CreateTransactionInput{
		Date:       when,
		Label:      *label,
		Amount:     value,
		Type:       kind,
		CategoryID: categoryID,
		Notes:      notesPtr,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %s %q for %s (%s)\n", tx.Type, tx.Label, c.app.fmtMoney(tx.Amount), tx.ID)
	return subcommands.ExitSuccess
}

func (c *txCmd) rm(ctx context.Context, args []string) subcommands.ExitStatus {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: tx rm <id>")
		return subcommands.ExitUsageError
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid transaction id %q\n", args[0])
		return subcommands.ExitUsageError
	}
	if err := c.app.Ledger.DeleteTransaction(ctx, id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted transaction %s\n", id)
	return subcommands.ExitSuccess
}

func (c *txCmd) list(ctx context.Context) subcommands.ExitStatus {
	scope, status := c.currentPeriodScope(ctx)
	if status != subcommands.ExitSuccess {
		return status
	}
	rows, err := c.app.Ledger.List(ctx, scope)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if len(rows) == 0 {
		fmt.Println("No transactions in the open period.")
		return subcommands.ExitSuccess
	}
	for _, tx := range rows {
		sign := "+"
		if tx.Type == domain.CategoryTypeExpense {
			sign = "-"
		}
		fmt.Printf("%s  %s%-12s  %-40s  %s\n",
			tx.Date.Format("2006-01-02"), sign, c.app.fmtMoney(tx.Amount), tx.Label, tx.ID)
	}
	return subcommands.ExitSuccess
}

// currentPeriodScope resolves the open period into a list scope.
func (c *txCmd) currentPeriodScope(ctx context.Context) (domain.TransactionScope, subcommands.ExitStatus) {
	period, err := c.app.Valuation.PeriodRepo.Current(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Fprintln(os.Stderr, "no open period")
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return domain.TransactionScope{}, subcommands.ExitFailure
	}
	return domain.TransactionScope{PeriodID: &period.ID}, subcommands.ExitSuccess
}
