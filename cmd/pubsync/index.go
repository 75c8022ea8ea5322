package main

import (
	"database/sql"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nicomarr/pubsync/internal/index"
)

var (
	indexStatus bool
	indexForce  bool
	indexPMID   string
)

func init() {
	indexCmd.Flags().BoolVar(&indexStatus, "status", false, "Report index freshness and stats without rebuilding")
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "Rebuild even when the index is fresh")
	indexCmd.Flags().StringVar(&indexPMID, "pmid", "", "Look up one article by pmid instead of rebuilding")
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index [dir]",
	Short: "Maintain and query the SQLite mirror of the table",
	Long: `Mirror the publications table into a SQLite database for ad-hoc
queries. The mirror is rebuilt when the table's content hash has changed
since the last rebuild. The CSV stays the source of truth; the database is
a disposable cache.

Examples:
  pubsync index
  pubsync index --status
  pubsync index --pmid 38374123`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	dir := mustResolveDataDir(args...)
	csvPath := tablePath(dir)

	db, err := index.Open(filepath.Join(dir, index.DBFile))
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	defer db.Close()

	if indexPMID != "" {
		return runIndexLookup(db, indexPMID)
	}

	stale, err := index.Stale(db, csvPath)
	if err != nil {
		exitWithError(ExitDataError, "checking index freshness: %v", err)
	}

	if indexStatus {
		stats, err := index.GetStats(db)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		freshness := "fresh"
		if stale {
			freshness = "stale"
		}
		outputInfo("Index is %s: %d article(s), %d citation(s).", freshness, stats.Articles, stats.Citations)
		if stats.YearMin != "" {
			outputInfo("Years %s to %s.", stats.YearMin, stats.YearMax)
		}
		if !stats.LastRebuild.IsZero() {
			outputInfo("Last rebuilt %s.", stats.LastRebuild.Format("2006-01-02 15:04:05 MST"))
		}
		return nil
	}

	if !stale && !indexForce {
		outputInfo("Index is up to date.")
		return nil
	}

	recs := mustLoadTable(dir)
	if err := index.Rebuild(db, csvPath, recs); err != nil {
		exitWithError(ExitDataError, "rebuilding index: %v", err)
	}
	outputInfo("Indexed %d article(s).", len(recs))
	return nil
}

func runIndexLookup(db *sql.DB, pmid string) error {
	rec, err := index.Lookup(db, pmid)
	if err == sql.ErrNoRows {
		exitWithError(ExitDataError, "no article with pmid %s in the index", pmid)
	}
	if err != nil {
		exitWithError(ExitDataError, "looking up pmid %s: %v", pmid, err)
	}

	outputInfo("%s et al. (%s) %s", rec.FirstAuthorLastName, rec.PublicationYear, rec.ArticleTitle)
	outputInfo("  Journal:   %s", rec.Journal)
	outputInfo("  Published: %s", rec.PublicationDate)
	outputInfo("  Cited by:  %s", rec.CitedByCount)
	if rec.DOIURL != "" {
		outputInfo("  DOI:       %s", rec.DOIURL)
	}
	if rec.PDFURL != "" {
		outputInfo("  PDF:       %s", rec.PDFURL)
	}
	return nil
}
