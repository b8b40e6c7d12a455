package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/assets"
)

type assetCmd struct {
	app *App
}

func (*assetCmd) Name() string     { return "asset" }
func (*assetCmd) Synopsis() string { return "buy, sell or list fixed assets" }
func (*assetCmd) Usage() string {
	return `asset buy -name <text> -type vehicle|implement|building|land -price <n> [-dep-years <n>] [-date YYYY-MM-DD]
asset sell <id> -price <n> [-date YYYY-MM-DD]
asset list:
  Purchases post no expense; cost enters the books through monthly
  depreciation. Sales post the realized gain or loss.
`
}

func (*assetCmd) SetFlags(*flag.FlagSet) {}

func (c *assetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch f.Arg(0) {
	case "buy":
		return c.buy(ctx, f.Args()[1:])
	case "sell":
		return c.sell(ctx, f.Args()[1:])
	case "list":
		return c.list(ctx)
	default:
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
}

func (c *assetCmd) buy(ctx context.Context, args []string) subcommands.ExitStatus {
	fs := flag.NewFlagSet("asset buy", flag.ContinueOnError)
	name := fs.String("name", "", "asset name")
	assetType := fs.String("type", "", "vehicle, implement, building or land")
	price := fs.String("price", "", "purchase price")
	depYears := fs.Int("dep-years", 0, "override depreciation years (0 uses the configured default)")
	date := fs.String("date", "", "purchase date (YYYY-MM-DD, default today)")
	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}

	value, err := parseAmount(*price)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	when, err := parseDate(*date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	input := assets.BuyAssetInput{
		Name:         *name,
		Type:         domain.AssetType(*assetType),
		Price:        value,
		PurchaseDate: when,
	}
	if *depYears > 0 {
		input.DepreciationYears = depYears
	}

	asset, err := c.app.Assets.BuyAsset(ctx, input)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Bought %s %q for %s (%s)\n", asset.Type, asset.Name, c.app.fmtMoney(asset.PurchasePrice), asset.ID)
	return subcommands.ExitSuccess
}

func (c *assetCmd) sell(ctx context.Context, args []string) subcommands.ExitStatus {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: asset sell <id> -price <n> [-date YYYY-MM-DD]")
		return subcommands.ExitUsageError
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid asset id %q\n", args[0])
		return subcommands.ExitUsageError
	}

	fs := flag.NewFlagSet("asset sell", flag.ContinueOnError)
	price := fs.String("price", "", "sale price")
	date := fs.String("date", "", "sale date (YYYY-MM-DD, default today)")
	if err := fs.Parse(args[1:]); err != nil {
		return subcommands.ExitUsageError
	}

	value, err := parseAmount(*price)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	when, err := parseDate(*date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	asset, err := c.app.Assets.SellAsset(ctx, id, when, value)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	result := value.Sub(asset.NetBookValue())
	verb := "gain"
	if result.IsNegative() {
		verb = "loss"
	}
	fmt.Printf("Sold %q for %s (%s of %s)\n", asset.Name, c.app.fmtMoney(value), verb, c.app.fmtMoney(result.Abs()))
	return subcommands.ExitSuccess
}

func (c *assetCmd) list(ctx context.Context) subcommands.ExitStatus {
	rows, err := c.app.Assets.AssetRepo.List(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if len(rows) == 0 {
		fmt.Println("No assets on the books.")
		return subcommands.ExitSuccess
	}
	for _, asset := range rows {
		state := fmt.Sprintf("NBV %s", c.app.fmtMoney(asset.NetBookValue()))
		if asset.SoldDate != nil {
			state = fmt.Sprintf("sold %s", asset.SoldDate.Format("2006-01-02"))
		}
		fmt.Printf("%-10s %-30s cost %-14s %s  %s\n",
			asset.Type, asset.Name, c.app.fmtMoney(asset.PurchasePrice), state, asset.ID)
	}
	return subcommands.ExitSuccess
}
