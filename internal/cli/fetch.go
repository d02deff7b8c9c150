package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var errFetchFailed = errors.New("fetch failed")

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch the metrics of one post",
	Long: `Fetch the metrics of one post.

Examples:
  postmetrics fetch https://x.com/nasa/status/1234567890
  postmetrics fetch https://www.instagram.com/p/Cabc123/ --json`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	res := components.Fetch.Execute(cmd.Context(), args[0])

	var err error
	if jsonOutput {
		err = writeJSON(cmd.OutOrStdout(), newFetchOutput(res))
	} else {
		err = printFetch(cmd.OutOrStdout(), res)
	}
	if err != nil {
		return err
	}
	if res.Failed() {
		return errFetchFailed
	}
	return nil
}
