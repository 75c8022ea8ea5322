package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nicomarr/pubsync/internal/openalex"
	"github.com/nicomarr/pubsync/internal/reconcile"
	"github.com/nicomarr/pubsync/internal/record"
	"github.com/nicomarr/pubsync/internal/table"
)

var (
	bootstrapAuthor string
	bootstrapForce  bool
)

func init() {
	bootstrapCmd.Flags().StringVar(&bootstrapAuthor, "author", "", "OpenAlex author ID (e.g. A5023888391)")
	bootstrapCmd.Flags().BoolVar(&bootstrapForce, "force", false, "Overwrite an existing table")
	bootstrapCmd.MarkFlagRequired("author")
	rootCmd.AddCommand(bootstrapCmd)
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap --author <id> [dir]",
	Short: "Create a fresh table from an author's full work list",
	Long: `Create a publications table from scratch by fetching every work
attributed to an OpenAlex author ID. Works are fetched with cursor paging,
filtered with the same policy as append, and sorted by publication date,
newest first. An identifier list seeded with the pmids is written alongside
the table unless one already exists.

Example:
  pubsync bootstrap --author A5023888391 ~/website/data`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBootstrap,
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	dir := mustResolveDataDir(args...)
	cfg := mustLoadConfig()

	path := tablePath(dir)
	if _, err := os.Stat(path); err == nil && !bootstrapForce {
		exitWithError(ExitConfigError, "table already exists at %s (use --force to overwrite)", path)
	}

	client := newClient()
	works, err := client.WorksByAuthor(cmd.Context(), bootstrapAuthor, openalex.AppendFields)
	if err != nil {
		exitWithError(ExitDataError, "fetching works for author %s: %v", bootstrapAuthor, err)
	}
	outputInfo("Fetched %d work(s) for author %s.", len(works), bootstrapAuthor)

	cands, errs := record.FromWorks(works)
	failures := reportExtractionErrors(errs)

	res := reconcile.Append(nil, cands, appendFilters(cfg))

	if err := os.MkdirAll(dir, 0755); err != nil {
		exitWithError(ExitError, "creating data directory: %v", err)
	}
	if err := table.Save(path, res.Table); err != nil {
		exitWithError(ExitDataError, "saving table: %v", err)
	}

	idsPath := filepath.Join(dir, table.IDListFile)
	if _, err := os.Stat(idsPath); os.IsNotExist(err) {
		pmids := make([]string, 0, len(res.Table))
		for _, r := range res.Table {
			if r.PMID != "" {
				pmids = append(pmids, r.PMID)
			}
		}
		if err := table.AppendIDList(idsPath, pmids); err != nil {
			exitWithError(ExitDataError, "writing identifier list: %v", err)
		}
	}

	msg := fmt.Sprintf("Bootstrapped table with %d article(s).", len(res.Table))
	logPath := filepath.Join(dir, table.LogFile)
	if err := table.WriteLog(logPath, time.Now(), msg); err != nil {
		exitWithError(ExitDataError, "writing update log: %v", err)
	}

	outputInfo("Wrote %d article(s) to %s.", len(res.Table), path)

	if failures > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}
