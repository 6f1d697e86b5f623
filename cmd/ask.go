package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/pipeline"
)

var (
	askSource  string
	askFormat  string
	askShowSQL bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Run a one-shot natural-language query",
	Long: `Translate a natural-language question into SQL, execute it, and print the
result.

Examples:
  askdb ask "list all users"
  askdb ask --source sqlite "how many orders were placed last month"
  askdb ask --format json "show the enrollment trend over the last week"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSource, "source", "", "Data source kind (postgres, duckdb, sqlite); empty uses the configured default")
	askCmd.Flags().StringVar(&askFormat, "format", "table", "Output format: table, json, or csv")
	askCmd.Flags().BoolVar(&askShowSQL, "show-sql", false, "Print the executed SQL before the result")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	question := strings.TrimSpace(args[0])
	if question == "" {
		return fmt.Errorf("question must not be empty")
	}

	format := strings.ToLower(askFormat)
	if format != "table" && format != "json" && format != "csv" {
		return fmt.Errorf("unsupported output format %q (must be table, json, or csv)", askFormat)
	}

	p, err := pipeline.FromConfig(appConfig)
	if err != nil {
		return err
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " thinking..."
	s.Start()

	resp := p.Execute(ctx, pipeline.Request{Query: question, DataSource: askSource})

	s.Stop()

	if resp.Message != "" {
		return fmt.Errorf("%s", resp.Message)
	}

	if askShowSQL {
		fmt.Fprintf(os.Stderr, "SQL: %s\n\n", resp.SQL)
	}

	return renderResponse(cmd.OutOrStdout(), resp, format)
}
