// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/kelseyhightower/envconfig"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/canonical/tenant-sites/migrations"
)

// migrateCmd performs DB migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|status|check] [version]",
	Short: "Run database migrations",
	Long:  `Run database migrations, the DSN comes from --dsn or the DSN environment variable`,
	Args:  migrateArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		command := "up"
		if len(args) > 0 {
			command = args[0]
		}

		version := int64(-1)
		if len(args) > 1 {
			version, _ = strconv.ParseInt(args[1], 10, 64)
		}

		dsn, _ := cmd.Flags().GetString("dsn")
		format, _ := cmd.Flags().GetString("format")

		if dsn == "" {
			env := struct {
				DSN string `envconfig:"DSN"`
			}{}
			if err := envconfig.Process("", &env); err != nil {
				return err
			}
			dsn = env.DSN
		}

		if dsn == "" {
			return fmt.Errorf("a DSN is required, pass --dsn or set DSN")
		}

		return migrate(cmd.Context(), dsn, command, format, version, cmd.OutOrStdout())
	},
}

func migrateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(0, 2)(cmd, args); err != nil {
		return err
	}

	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "up", "down", "status", "check":
	default:
		return fmt.Errorf("invalid first argument: %q", args[0])
	}

	if len(args) == 2 {
		if args[0] != "down" {
			return fmt.Errorf("invalid argument combination: %q", args)
		}
		if v, err := strconv.ParseInt(args[1], 10, 64); err != nil || v < 0 {
			return fmt.Errorf("invalid version: %q", args[1])
		}
	}

	return nil
}

func init() {
	migrateCmd.Flags().String("dsn", "", "PostgreSQL DSN connection string")
	migrateCmd.Flags().StringP("format", "f", "text", "Output format (text or json)")

	rootCmd.AddCommand(migrateCmd)
}

func migrate(ctx context.Context, dsn, command, format string, version int64, out io.Writer) error {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("DSN validation failed: %w", err)
	}

	db := stdlib.OpenDB(*config)
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("DB connection failed: %w", err)
	}

	var opts []goose.ProviderOption
	if format == "json" {
		opts = append(opts, goose.WithLogger(goose.NopLogger()))
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.EmbedMigrations, opts...)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}

	switch command {
	case "down":
		var results []*goose.MigrationResult
		if version < 0 {
			result, err := provider.Down(ctx)
			if err != nil {
				return err
			}
			results = append(results, result)
		} else if results, err = provider.DownTo(ctx, version); err != nil {
			return err
		}
		return reportResults(out, format, results)
	case "status":
		return reportStatus(ctx, provider, format, out)
	case "check":
		return checkPending(ctx, provider, format, out)
	default:
		results, err := provider.Up(ctx)
		if err != nil {
			return err
		}
		return reportResults(out, format, results)
	}
}

func reportResults(out io.Writer, format string, results []*goose.MigrationResult) error {
	if results == nil {
		results = []*goose.MigrationResult{}
	}

	if format == "json" {
		return json.NewEncoder(out).Encode(map[string]any{"applied": results})
	}

	for _, r := range results {
		fmt.Fprintln(out, r.String())
	}
	return nil
}

func reportStatus(ctx context.Context, provider *goose.Provider, format string, out io.Writer) error {
	statuses, err := provider.Status(ctx)
	if err != nil {
		return err
	}

	if format == "json" {
		return json.NewEncoder(out).Encode(statuses)
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "APPLIED AT\tMIGRATION")
	for _, s := range statuses {
		appliedAt := "Pending"
		if s.State == goose.StateApplied {
			appliedAt = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\n", appliedAt, s.Source.Path)
	}
	return w.Flush()
}

// checkPending fails when migrations are pending, deployments run it before
// rolling out a new server version.
func checkPending(ctx context.Context, provider *goose.Provider, format string, out io.Writer) error {
	hasPending, err := provider.HasPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to check pending migrations: %w", err)
	}

	current, versionErr := provider.GetDBVersion(ctx)

	status := "ok"
	switch {
	case hasPending:
		status = "pending"
	case versionErr != nil:
		status = "unknown"
	}

	if format == "json" {
		if err := json.NewEncoder(out).Encode(map[string]any{"status": status, "version": current}); err != nil {
			return err
		}
	}

	if hasPending {
		return fmt.Errorf("migrations are pending: current version %d", current)
	}

	if format != "json" {
		fmt.Fprintf(out, "Database is up to date (version %d)\n", current)
	}
	return nil
}
