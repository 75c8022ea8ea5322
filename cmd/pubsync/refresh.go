package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nicomarr/pubsync/internal/openalex"
	"github.com/nicomarr/pubsync/internal/reconcile"
)

func init() {
	rootCmd.AddCommand(refreshCmd)
}

var refreshCmd = &cobra.Command{
	Use:   "refresh [dir]",
	Short: "Refresh citation counts for tracked articles",
	Long: `Refresh citation counts for every article in the table.

A row is rewritten only when the fetched count is strictly greater than
the stored one, so counts never decrease. cited_by_count and updated_date
advance together. Identifiers that fail to fetch are reported and skipped;
they are not retried.

Example:
  pubsync refresh ~/website/data`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRefresh,
}

func runRefresh(cmd *cobra.Command, args []string) error {
	dir := mustResolveDataDir(args...)
	recs := mustLoadTable(dir)

	client := newClient()
	works, failed := client.Works(cmd.Context(), refreshIdentifiers(recs), openalex.RefreshFields)
	failures := reportFailedCalls(failed)

	res := reconcile.Refresh(recs, works)
	if res.Updated > 0 {
		commitTable(dir, res.Table, res.Message)
	}
	outputInfo(res.Message)

	if failures > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}
