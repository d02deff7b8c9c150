package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"postmetrics/internal/adapters/sheet"
	"postmetrics/internal/domain"
)

var batchOut string

var batchCmd = &cobra.Command{
	Use:   "batch <file.csv|file.xlsx>",
	Short: "Fetch the metrics of every row of a sheet",
	Long: `Fetch the metrics of every row of a sheet with NAME and LINK columns.

Rows are processed one at a time, in order. A row that fails is reported
with N/A in every metric and never stops the batch.

Examples:
  postmetrics batch links.csv
  postmetrics batch links.xlsx --out results.xlsx
  postmetrics batch links.csv --json > results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "also write the results to a .csv or .xlsx file")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	inputs, err := sheet.Read(args[0], f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	progress := cmd.ErrOrStderr()
	rows := components.Batch.Execute(cmd.Context(), inputs, func(done, total int, row domain.BatchRow) {
		mark := color.GreenString("ok")
		if row.Placeholder() {
			mark = color.RedString("failed")
		}
		fmt.Fprintf(progress, "[%d/%d] %s %s\n", done, total, row.Name, mark)
	})

	if batchOut != "" {
		if err := writeSheet(batchOut, rows); err != nil {
			return err
		}
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), rows)
	}
	return printBatch(cmd.OutOrStdout(), rows)
}

func writeSheet(path string, rows []domain.BatchRow) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := sheet.Write(path, out, rows); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}
