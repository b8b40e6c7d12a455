package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/dmarinho/farmbooks-backend/internal/adapter/repository/sqlite"
	"github.com/dmarinho/farmbooks-backend/internal/cli"
	"github.com/dmarinho/farmbooks-backend/internal/config"
	"github.com/dmarinho/farmbooks-backend/internal/logger"
)

var migrationsDir = flag.String("migrations", "db/migrations", "path to the schema migrations")

func main() {
	flag.Parse()

	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	db, err := sqlite.NewDB(config.Cfg.DatabasePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(*migrationsDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	c := subcommands.NewCommander(flag.CommandLine, "farmbooks")
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")
	cli.Register(c, cli.NewApp(db, config.Cfg.CurrencyCode))

	os.Exit(int(c.Execute(context.Background())))
}
