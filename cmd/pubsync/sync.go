package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nicomarr/pubsync/internal/config"
	"github.com/nicomarr/pubsync/internal/openalex"
	"github.com/nicomarr/pubsync/internal/reconcile"
	"github.com/nicomarr/pubsync/internal/record"
	"github.com/nicomarr/pubsync/internal/table"
)

func init() {
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync [dir]",
	Short: "Refresh citation counts and append new articles in one run",
	Long: `Run a full synchronization: refresh citation counts for tracked
articles, then append new articles from the identifier list. Both phases
always run; per-identifier failures in one never abort the other. A single
backup and write covers the combined result. Successes are reported first,
then every failed identifier; the run exits non-zero when any failed.

Example:
  pubsync sync ~/website/data`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	dir := mustResolveDataDir(args...)
	recs := mustLoadTable(dir)
	cfg := mustLoadConfig()
	client := newClient()

	var failedCalls []openalex.FailedCall
	var extractErrs []error

	// Phase one: citation counts
	works, failed := client.Works(cmd.Context(), refreshIdentifiers(recs), openalex.RefreshFields)
	failedCalls = append(failedCalls, failed...)
	refreshed := reconcile.Refresh(recs, works)

	// Phase two: new articles
	appended, listErr := syncAppend(cmd, dir, cfg, client, refreshed.Table, &failedCalls, &extractErrs)

	messages := []string{refreshed.Message, appended.Message}
	if refreshed.Updated+appended.Added > 0 {
		commitTable(dir, appended.Table, strings.Join(messages, " "))
	}
	for _, msg := range messages {
		outputInfo(msg)
	}

	failures := reportFailedCalls(failedCalls) + reportExtractionErrors(extractErrs)
	if listErr != nil {
		outputWarn("%v", listErr)
		failures++
	}
	if failures > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}

// syncAppend runs the append phase of a sync against an already-refreshed
// table. A missing identifier list degrades to a warning; any other read
// error is returned rather than exiting, so the caller still commits and
// reports the refresh result.
func syncAppend(cmd *cobra.Command, dir string, cfg *config.Config, client *openalex.Client, recs []record.Record, failedCalls *[]openalex.FailedCall, extractErrs *[]error) (reconcile.AppendResult, error) {
	idsPath := filepath.Join(dir, table.IDListFile)
	ids, err := table.ReadIDList(idsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			outputWarn("no identifier list at %s, skipping append phase", idsPath)
			return reconcile.AppendResult{Table: recs, Message: "No new articles found."}, nil
		}
		return reconcile.AppendResult{Table: recs, Message: "Append phase skipped."}, err
	}

	missing := reconcile.Missing(recs, ids)
	if len(missing) == 0 {
		return reconcile.AppendResult{Table: recs, Message: "No new articles found."}, nil
	}

	works, failed := client.Works(cmd.Context(), missing, openalex.AppendFields)
	*failedCalls = append(*failedCalls, failed...)

	cands, errs := record.FromWorks(works)
	*extractErrs = append(*extractErrs, errs...)

	return reconcile.Append(recs, cands, appendFilters(cfg)), nil
}
