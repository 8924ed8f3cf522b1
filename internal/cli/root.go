// Package cli implements booksctl: it loads the book dataset locally and renders
// the dashboard views in the terminal, or exports the dataset to a file.
package cli

import (
	"context"
	"os"
	"time"

	"github.com/bookstore-insights/backend/internal/dataset"
	"github.com/bookstore-insights/backend/internal/source"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Version is set at build time using -ldflags.
var Version = "0.0.0-dev"

var (
	sourceFlag  string
	timeoutFlag time.Duration
	noColor     bool
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "booksctl",
	Short:         "Explore the bookstore dataset from the terminal",
	Long:          `booksctl renders the Bookstore Insights views (dashboard, search, top rated, insights, ...) for a CSV source and exports datasets to CSV, XLSX, Arrow or Parquet.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			pterm.DisableStyling()
		}
		if verbose {
			pterm.EnableDebugMessages()
		}
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	def := os.Getenv("BOOKS_SOURCE_URL")
	if def == "" {
		def = source.DefaultURL
	}
	rootCmd.PersistentFlags().StringVarP(&sourceFlag, "source", "s", def, "CSV location: http(s) URL, file:// URL or path")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 60*time.Second, "fetch timeout for HTTP sources")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colors and styling")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print load diagnostics")
}

// loadPrimary fetches the configured source behind a spinner.
func loadPrimary(ctx context.Context) (*dataset.Dataset, error) {
	src, err := source.New(sourceFlag, timeoutFlag)
	if err != nil {
		return nil, err
	}

	spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Loading " + src.Identity())
	res, err := source.LoadResult(ctx, src)
	if spinner != nil {
		_ = spinner.Stop()
	}
	if err != nil {
		return nil, err
	}

	if n := len(res.Errors); n > 0 {
		pterm.Warning.Printf("Skipped %d malformed row(s); first at line %d: %s\n",
			n, res.Errors[0].Line, res.Errors[0].Reason)
	}
	pterm.Debug.Printfln("loaded %d rows (%d bytes) in %s, xxh3 %s",
		res.Dataset.Count(), res.Bytes, res.Duration.Round(time.Millisecond), res.Fingerprint)
	return res.Dataset, nil
}
