package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/pipeline"
	"github.com/askdb/askdb/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the query API server",
	Long: `Start the HTTP server exposing the query pipeline:

  POST /api/query   run a natural-language query, JSON in and out
  GET  /api/export  run a query and download the rows as CSV or JSON
  GET  /healthz     liveness check

The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.FromConfig(appConfig)
	if err != nil {
		return err
	}

	return server.New(p, appConfig.Server).Serve(ctx)
}
