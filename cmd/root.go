package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/logging"
)

var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "askdb",
	Short: "Ask questions of your database in natural language",
	Long: `askdb turns natural-language questions into SQL, runs them against a
configured database (Postgres, DuckDB, or SQLite), and renders the result as
a table or a chart specification. Configuration comes from environment
variables with the ASKDB_ prefix, optionally merged over a JSON config file
named by ASKDB_CONFIG.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("configuration: %w", err)
		}

		if err := logging.Initialize(cfg.Logging); err != nil {
			return fmt.Errorf("logging: %w", err)
		}

		appConfig = cfg

		return nil
	},
}

func Execute() error {
	ctx := context.Background()
	return rootCmd.ExecuteContext(ctx)
}
