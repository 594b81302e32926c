package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/guto-escola/guto-api/internal/config"
	"github.com/guto-escola/guto-api/internal/platform/postgres"
)

// handleMigrations runs the migration mode selected on the command line.
func handleMigrations(ctx context.Context, cfg *config.Config, opts cliOptions, logger *slog.Logger) error {
	command := opts.migrate
	if opts.verifyMigrations {
		files, err := postgres.MigrationFiles()
		if err != nil {
			return fmt.Errorf("failed to list embedded migrations: %w", err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no embedded migrations found")
		}
		for _, f := range files {
			logger.Info("embedded migration", slog.String("file", f))
		}
		command = "status"
	}
	if !slices.Contains(postgres.MigrationCommands, command) {
		return fmt.Errorf("unknown migration command %q (expected one of %v)", command, postgres.MigrationCommands)
	}

	db, err := setupAppDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}()

	return postgres.Migrate(ctx, db, command, logger)
}
