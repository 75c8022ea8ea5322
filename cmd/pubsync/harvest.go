package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nicomarr/pubsync/internal/harvest"
	"github.com/nicomarr/pubsync/internal/record"
	"github.com/nicomarr/pubsync/internal/table"
)

var harvestWrite bool

func init() {
	harvestCmd.Flags().BoolVar(&harvestWrite, "write", false, "Append harvested DOIs to the identifier list")
	rootCmd.AddCommand(harvestCmd)
}

var harvestCmd = &cobra.Command{
	Use:   "harvest <pdf-dir>",
	Short: "Extract DOIs from article PDFs",
	Long: `Scan a directory tree of article PDFs and extract one DOI per file,
searching the first pages of each. DOIs already present in the table are
dropped. With --write, the remaining DOIs are appended to the identifier
list so the next append run picks them up.

Example:
  pubsync harvest ~/Downloads/papers --write`,
	Args: cobra.ExactArgs(1),
	RunE: runHarvest,
}

func runHarvest(cmd *cobra.Command, args []string) error {
	dir := mustResolveDataDir()

	// Harvest works without a table; novelty filtering just has nothing
	// to compare against.
	var recs []record.Record
	tablePath := filepath.Join(dir, table.MetadataFile)
	if _, err := os.Stat(tablePath); err == nil {
		recs = mustLoadTable(dir)
	}

	found, errs := harvest.Dir(args[0])
	for _, err := range errs {
		outputWarn("%v", err)
	}

	novel := harvest.Novel(found, recs)
	if len(novel) == 0 {
		outputInfo("No new DOIs found.")
		return nil
	}

	for _, f := range novel {
		outputInfo("%s\t%s", f.DOI, f.Path)
	}

	if harvestWrite {
		dois := make([]string, len(novel))
		for i, f := range novel {
			dois[i] = f.DOI
		}
		idsPath := filepath.Join(dir, table.IDListFile)
		if err := table.AppendIDList(idsPath, dois); err != nil {
			exitWithError(ExitDataError, "appending to identifier list: %v", err)
		}
		outputInfo("Appended %d DOI(s) to %s.", len(dois), idsPath)
	}

	return nil
}
