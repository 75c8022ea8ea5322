package main

import (
	"path/filepath"
	"time"

	"github.com/nicomarr/pubsync/internal/record"
	"github.com/nicomarr/pubsync/internal/table"
)

// commitTable writes an updated table back to disk: timestamped backup
// first, then atomic save, then the update log. Callers only commit when
// something actually changed.
func commitTable(dir string, recs []record.Record, status string) {
	path := tablePath(dir)

	bkp, err := table.Backup(path)
	if err != nil {
		exitWithError(ExitDataError, "backing up table: %v", err)
	}
	outputInfo("Backed up table to %s.", filepath.Base(bkp))

	if err := table.Save(path, recs); err != nil {
		exitWithError(ExitDataError, "saving table: %v", err)
	}

	logPath := filepath.Join(dir, table.LogFile)
	if err := table.WriteLog(logPath, time.Now(), status); err != nil {
		exitWithError(ExitDataError, "writing update log: %v", err)
	}
}

// refreshIdentifiers collects one fetchable identifier per row, preferring
// the OpenAlex ID over the pmid.
func refreshIdentifiers(recs []record.Record) []string {
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		switch {
		case r.OAID != "":
			ids = append(ids, r.OAID)
		case r.PMID != "":
			ids = append(ids, r.PMID)
		}
	}
	return ids
}
