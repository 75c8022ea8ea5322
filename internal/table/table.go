// Package table persists the publications table to its CSV file, with
// timestamped backups and an update-log JSON record.
package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nicomarr/pubsync/internal/record"
)

// Default file names inside a data directory.
const (
	MetadataFile = "articles-metadata.csv"
	IDListFile   = "PMID-export.txt"
	LogFile      = "update-log.json"
)

// backupTimeLayout has second resolution so backups from the same run
// never collide.
const backupTimeLayout = "20060102-15h04m05s"

// Load reads the publications table from a CSV file. The header must match
// the canonical column set exactly.
func Load(path string) ([]record.Record, error) {
	if !strings.HasSuffix(path, ".csv") {
		return nil, fmt.Errorf("invalid file format: %s (want .csv)", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing table: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("table %s has no header row", path)
	}

	header := rows[0]
	if len(header) != len(record.Columns) {
		return nil, fmt.Errorf("table has %d columns, want %d", len(header), len(record.Columns))
	}
	for i, col := range record.Columns {
		if header[i] != col {
			return nil, fmt.Errorf("table column %d is %q, want %q", i, header[i], col)
		}
	}

	recs := make([]record.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := record.FromRow(row)
		if err != nil {
			return nil, fmt.Errorf("table row %d: %w", i+2, err)
		}
		recs = append(recs, rec)
	}

	return recs, nil
}

// Save writes the table atomically: a temp file in the same directory is
// synced and renamed over the target.
func Save(path string, recs []record.Record) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(record.Columns); err != nil {
		tmp.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	for i, rec := range recs {
		if err := w.Write(rec.Row()); err != nil {
			tmp.Close()
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing rows: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// Backup copies the current table file to a timestamped sibling and returns
// the backup path. Backups are taken before the primary write so a crash
// mid-update leaves a recoverable prior version.
func Backup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading table for backup: %w", err)
	}

	stamp := time.Now().Format(backupTimeLayout)
	bkpPath := strings.TrimSuffix(path, ".csv") + "_bkp-" + stamp + ".csv"

	if err := os.WriteFile(bkpPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}

	return bkpPath, nil
}

// ModTime returns the last modification time of the table file.
func ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat table: %w", err)
	}
	return info.ModTime(), nil
}
