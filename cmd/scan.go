// -- cmd/scan.go --
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/JeeveshRajan/formscope/api/schemas"
	"github.com/JeeveshRajan/formscope/internal/browser"
	"github.com/JeeveshRajan/formscope/internal/config"
	"github.com/JeeveshRajan/formscope/internal/inspect"
	"github.com/JeeveshRajan/formscope/internal/observability"
	"github.com/JeeveshRajan/formscope/internal/reporting"
	"github.com/JeeveshRajan/formscope/internal/store"
)

// newScanCmd creates and configures the `scan` command.
func newScanCmd() *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan [url]",
		Short: "Scrapes a multi-step form and writes its structure schema",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so CLI flags override the
			// config file and environment with the right precedence.
			if err := viper.BindPFlag("scan.output", cmd.Flags().Lookup("output")); err != nil {
				return err
			}
			if err := viper.BindPFlag("scan.steps", cmd.Flags().Lookup("steps")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless")); err != nil {
				return err
			}
			return viper.BindPFlag("store.dsn", cmd.Flags().Lookup("store-dsn"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			var cfg config.Config
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to unmarshal config with flag overrides: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			url := config.DefaultTargetURL
			if len(args) == 1 {
				url = args[0]
			}
			if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
				url = "https://" + url
			}

			runID := uuid.New().String()
			logger.Info("Starting form scan",
				zap.String("run_id", runID),
				zap.String("url", url),
				zap.Int("expected_steps", cfg.Scan.Steps),
				zap.String("output", cfg.Scan.Output),
			)

			writer := reporting.NewWriter(cfg.Scan.Output, logger)

			schema, err := runScan(ctx, &cfg, logger, url)
			if err != nil {
				logger.Error("Scan failed", zap.String("run_id", runID), zap.Error(err))
				// Unrecoverable failure still produces an artifact: the
				// error document replaces the schema.
				if writeErr := writer.WriteError(err); writeErr != nil {
					logger.Error("Could not write error document", zap.Error(writeErr))
				}
				return err
			}

			if err := writer.WriteSchema(schema); err != nil {
				return err
			}

			if cfg.Store.DSN != "" {
				// Archiving is best effort; a broken database never fails a
				// scan that already produced its artifact.
				if err := archiveRun(ctx, cfg.Store.DSN, runID, schema, logger); err != nil {
					logger.Warn("Could not archive run", zap.String("run_id", runID), zap.Error(err))
				}
			}

			// The summary goes to stderr so stdout stays a parseable
			// artifact stream when the schema is written there.
			printRunSummary(cmd.ErrOrStderr(), runID, schema, cfg.Scan.Output)
			return nil
		},
	}

	scanCmd.Flags().StringP("output", "o", "", "Output file path for the schema. (Overrides config/env)")
	scanCmd.Flags().Int("steps", 0, "Number of form steps to extract. (Overrides config/env)")
	scanCmd.Flags().Bool("headless", true, "Run the browser headless. (Overrides config/env)")
	scanCmd.Flags().String("store-dsn", "", "Postgres DSN for the run archive. Empty disables archiving.")

	return scanCmd
}

// printRunSummary writes the human-readable run recap.
func printRunSummary(w io.Writer, runID string, schema *schemas.FormSchema, output string) {
	fmt.Fprintf(w, "\nScan complete. Run ID: %s\n", runID)
	fmt.Fprintf(w, "Steps: %d  Fields: %d  Output: %s\n",
		len(schema.Steps), schema.FieldCount(), output)
}

// runScan owns the browser resource for one scrape: launch, inspect, tear
// down on every exit path.
func runScan(ctx context.Context, cfg *config.Config, logger *zap.Logger, url string) (*schemas.FormSchema, error) {
	manager, err := browser.NewManager(ctx, logger, cfg.Browser)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}
	defer manager.Shutdown()

	session := manager.NewSession(cfg.Network.NavigationTimeout)
	defer session.Close()

	inspector := inspect.New(cfg, logger)
	return inspector.Run(ctx, session, url)
}

// archiveRun connects to the configured Postgres instance and inserts the
// completed run.
func archiveRun(ctx context.Context, dsn, runID string, schema *schemas.FormSchema, logger *zap.Logger) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	archive, err := store.New(ctx, pool, logger)
	if err != nil {
		return err
	}
	return archive.ArchiveRun(ctx, runID, schema)
}
