// Command migrate applies or rolls back the embedded database schema migrations.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"booklib/config"
	logs "booklib/internal/infra/log"
	"booklib/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
)

// Supported subcommands:
// - up:      apply all pending migrations
// - down:    roll back every migration
// - version: print the current schema version

func main() {
	dbURL := flag.String("database-url", "", "postgres:// URL, overrides migrate.databaseUrl")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() != 1 {
		printUsage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0), *dbURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command, databaseURL string) error {
	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return errors.Wrap(err, "create logger")
	}
	if databaseURL == "" {
		databaseURL = cfg.Migrate.DatabaseURL
	}

	mg, err := postgres.NewMigrator(databaseURL, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := mg.Close(); closeErr != nil {
			logger.Warn("Failed to close migrator", slog.Any("error", closeErr))
		}
	}()

	switch command {
	case "up":
		return mg.Up()
	case "down":
		return mg.Down()
	case "version":
		version, dirty, err := mg.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)

		return nil
	default:
		printUsage()

		return errors.Errorf("unknown command %q", command)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: migrate [-database-url URL] <up|down|version>\n")
	flag.PrintDefaults()
}
