package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/bookstore-insights/backend/internal/dataset"
	"github.com/bookstore-insights/backend/internal/export"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	formatFlag string
	outFlag    string
	inputFlag  string
	limitFlag  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the dataset to CSV, XLSX, Arrow or Parquet",
	Long: `Export the --source dataset (or a local --file) in another format.

Without --out the file is written to stdout.`,
	Example: `  booksctl export --format xlsx --out books.xlsx
  booksctl export -s ./books.csv --format parquet --limit 100 -o top.parquet`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		var d *dataset.Dataset
		if inputFlag != "" {
			d, err = readFile(inputFlag)
		} else {
			d, err = loadPrimary(cmd.Context())
		}
		if err != nil {
			return err
		}
		if limitFlag > 0 {
			d = d.Limit(limitFlag)
		}

		var w io.Writer = cmd.OutOrStdout()
		if outFlag != "" {
			f, err := os.Create(outFlag)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outFlag, err)
			}
			defer f.Close()
			w = f
		}

		if err := export.Write(w, d, format); err != nil {
			return err
		}
		if outFlag != "" {
			pterm.Success.Printfln("Wrote %d rows to %s", d.Count(), outFlag)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&formatFlag, "format", "csv", "output format: csv, xlsx, arrow, parquet")
	exportCmd.Flags().StringVarP(&outFlag, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVarP(&inputFlag, "file", "f", "", "local CSV to export instead of --source")
	exportCmd.Flags().IntVar(&limitFlag, "limit", 0, "export only the first N rows")

	rootCmd.AddCommand(exportCmd)
}
