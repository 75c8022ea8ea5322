package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nicomarr/pubsync/internal/config"
	"github.com/nicomarr/pubsync/internal/openalex"
	"github.com/nicomarr/pubsync/internal/reconcile"
	"github.com/nicomarr/pubsync/internal/record"
	"github.com/nicomarr/pubsync/internal/table"
)

var (
	appendIDFile        string
	appendExclude       []string
	appendIncludeErrata bool
	appendNoFilter      bool
)

func init() {
	appendCmd.Flags().StringVar(&appendIDFile, "ids-file", "", "Identifier list file (default: <dir>/"+table.IDListFile+")")
	appendCmd.Flags().StringSliceVar(&appendExclude, "exclude", nil, "Identifiers never to append (adds to config exclude list)")
	appendCmd.Flags().BoolVar(&appendIncludeErrata, "include-errata", false, "Keep erratum-typed works")
	appendCmd.Flags().BoolVar(&appendNoFilter, "no-filter", false, "Admit every fetched work (exclude list still applies)")
	rootCmd.AddCommand(appendCmd)
}

var appendCmd = &cobra.Command{
	Use:   "append [dir]",
	Short: "Append newly published articles from the identifier list",
	Long: `Append articles from the identifier list that are not yet in the table.

Identifiers already tracked (by pmid) are skipped, so a repeated run is a
no-op. Candidates must be journal articles carrying both a DOI and a PMID;
errata are excluded unless --include-errata is set. New rows are merged in
and the table is re-sorted by publication date, newest first.

Example:
  pubsync append ~/website/data`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAppend,
}

func runAppend(cmd *cobra.Command, args []string) error {
	dir := mustResolveDataDir(args...)
	recs := mustLoadTable(dir)
	cfg := mustLoadConfig()

	idsPath := appendIDFile
	if idsPath == "" {
		idsPath = filepath.Join(dir, table.IDListFile)
	}
	ids, err := table.ReadIDList(idsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			exitWithError(ExitConfigError, "no identifier list at %s", idsPath)
		}
		exitWithError(ExitDataError, "%v", err)
	}

	missing := reconcile.Missing(recs, ids)
	if len(missing) == 0 {
		outputInfo("No new articles found.")
		return nil
	}

	client := newClient()
	works, failed := client.Works(cmd.Context(), missing, openalex.AppendFields)
	failures := reportFailedCalls(failed)

	cands, errs := record.FromWorks(works)
	failures += reportExtractionErrors(errs)

	res := reconcile.Append(recs, cands, appendFilters(cfg))
	if res.Added > 0 {
		commitTable(dir, res.Table, res.Message)
	}
	outputInfo(res.Message)

	if failures > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}

// appendFilters merges the default append policy with config and flag
// overrides. --no-filter drops the type and identifier requirements but
// keeps the explicit exclude list.
func appendFilters(cfg *config.Config) reconcile.Filters {
	f := reconcile.DefaultFilters()
	if appendNoFilter {
		f = reconcile.Filters{}
	}
	if cfg.IncludeErrata || appendIncludeErrata {
		f.ExcludeErrata = false
	}
	f.ExcludeIDs = append(f.ExcludeIDs, cfg.Exclude...)
	f.ExcludeIDs = append(f.ExcludeIDs, appendExclude...)
	return f
}
