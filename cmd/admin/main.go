package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Natalia-54/sistema-academico-jfk/internal/account"
	"github.com/Natalia-54/sistema-academico-jfk/internal/config"
	"github.com/Natalia-54/sistema-academico-jfk/internal/db"
	"github.com/Natalia-54/sistema-academico-jfk/internal/metrics"
	"github.com/Natalia-54/sistema-academico-jfk/internal/schema"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := run(os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close(database)

	ctx := context.Background()
	if err := schema.Migrate(ctx, database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	cli := &commandLine{
		accounts: account.NewRepository(database, metrics.NewMock(), cfg.Database.QueryTimeout()),
		out:      os.Stdout,
	}
	return cli.run(ctx, args)
}
