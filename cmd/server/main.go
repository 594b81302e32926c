// Package main implements the entry point for the GUTO API server, which
// manages the school registry, enrollments and gradebooks.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/guto-escola/guto-api/internal/config"
	"github.com/guto-escola/guto-api/internal/platform/logger"
)

// cliOptions holds the parsed command line.
type cliOptions struct {
	migrate          string
	verifyMigrations bool
	issueToken       bool
	username         string
}

// parseFlags parses the command line arguments after the program name.
func parseFlags(args []string, output io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("guto-api", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.migrate, "migrate", "", "Run a database migration command (up, down, reset, status, version)")
	fs.BoolVar(&opts.verifyMigrations, "verify-migrations", false, "List the embedded migrations and report their status")
	fs.BoolVar(&opts.issueToken, "issue-token", false, "Print a signed access token for local development and exit")
	fs.StringVar(&opts.username, "username", "", "Username carried by the token issued with -issue-token")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	if opts.issueToken && opts.username == "" {
		return cliOptions{}, errors.New("-issue-token requires -username")
	}
	if opts.migrate != "" && opts.issueToken {
		return cliOptions{}, errors.New("-migrate and -issue-token cannot be combined")
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("Invalid arguments: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	reporter := logger.NewRollbarClient(cfg.Rollbar)
	var logOpts []logger.Option
	if reporter != nil {
		logOpts = append(logOpts, logger.WithReporter(reporter))
		defer reporter.Close()
	}
	appLogger, err := logger.Setup(cfg.Server, logOpts...)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	if err := run(context.Background(), cfg, opts, appLogger); err != nil {
		appLogger.Error("server exited with error", slog.String("error", err.Error()))
		if reporter != nil {
			reporter.Close()
		}
		os.Exit(1)
	}
}

// run dispatches to the requested mode.
func run(ctx context.Context, cfg *config.Config, opts cliOptions, logger *slog.Logger) error {
	if opts.issueToken {
		token, err := issueToken(ctx, cfg.Auth, opts.username)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	}

	logger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("rollbar_enabled", cfg.Rollbar.Enabled()))

	if opts.migrate != "" || opts.verifyMigrations {
		return handleMigrations(ctx, cfg, opts, logger)
	}

	db, err := setupAppDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
