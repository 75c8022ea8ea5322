// Package index maintains a read-only SQLite mirror of the publications
// table for ad-hoc querying. The CSV file stays the source of truth; the
// mirror is rebuilt whenever its stored content hash no longer matches the
// file.
package index

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nicomarr/pubsync/internal/record"
)

// DBFile is the mirror database name, kept next to the CSV.
const DBFile = "articles-index.db"

// Stats summarizes the mirror contents.
type Stats struct {
	Articles    int
	Citations   int
	YearMin     string
	YearMax     string
	LastRebuild time.Time
}

// Open opens the mirror database, creating the schema if needed.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createSchema(db *sql.DB) error {
	// Rows are keyed by rowid: not every article has a pmid (oaid-only
	// rows are valid), so pmid uniqueness is enforced only where present.
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS articles (
  pmid TEXT,
  pmcid TEXT,
  oaid TEXT,
  first_author_last_name TEXT,
  article_title TEXT,
  journal TEXT,
  publication_year TEXT,
  publication_date TEXT,
  doi_url TEXT,
  pdf_url TEXT,
  cited_by_count INTEGER,
  cited_by_ui_url TEXT,
  type TEXT,
  type_crossref TEXT,
  updated_date TEXT
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_articles_pmid ON articles(pmid) WHERE pmid != ''`,
		`CREATE INDEX IF NOT EXISTS idx_articles_publication_date ON articles(publication_date)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_journal ON articles(journal)`,
		`CREATE TABLE IF NOT EXISTS _meta (
  key TEXT PRIMARY KEY,
  value TEXT
)`,
	}

	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// FileHash returns the hex SHA-256 of a file's contents.
func FileHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Stale reports whether the mirror is out of date with respect to the CSV
// file at csvPath. A mirror with no stored hash is always stale.
func Stale(db *sql.DB, csvPath string) (bool, error) {
	current, err := FileHash(csvPath)
	if err != nil {
		return false, err
	}

	stored, err := storedHash(db)
	if err != nil {
		return false, err
	}

	return stored != current, nil
}

// Rebuild replaces the mirror contents with the given records and stamps
// the _meta table with the CSV hash and rebuild time. The whole rebuild
// runs in one transaction.
func Rebuild(db *sql.DB, csvPath string, records []record.Record) error {
	hash, err := FileHash(csvPath)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM articles`); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO articles
  (pmid, pmcid, oaid, first_author_last_name, article_title, journal,
   publication_year, publication_date, doi_url, pdf_url,
   cited_by_count, cited_by_ui_url, type, type_crossref, updated_date)
  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.PMID, r.PMCID, r.OAID, r.FirstAuthorLastName, r.ArticleTitle, r.Journal,
			r.PublicationYear, r.PublicationDate, r.DOIURL, r.PDFURL,
			r.CitedBy(), r.CitedByUIURL, r.Type, r.TypeCrossref, r.UpdatedDate,
		)
		if err != nil {
			return fmt.Errorf("indexing pmid %s: %w", r.PMID, err)
		}
	}

	metaStmt := `INSERT OR REPLACE INTO _meta (key, value) VALUES (?, ?)`
	if _, err := tx.Exec(metaStmt, "csv_hash", hash); err != nil {
		return fmt.Errorf("storing hash: %w", err)
	}
	if _, err := tx.Exec(metaStmt, "last_rebuild", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("storing rebuild time: %w", err)
	}

	return tx.Commit()
}

// Lookup fetches one article by pmid. Returns sql.ErrNoRows if absent.
func Lookup(db *sql.DB, pmid string) (record.Record, error) {
	var r record.Record
	var citedBy int

	err := db.QueryRow(`SELECT pmid, pmcid, oaid, first_author_last_name, article_title,
  journal, publication_year, publication_date, doi_url, pdf_url,
  cited_by_count, cited_by_ui_url, type, type_crossref, updated_date
  FROM articles WHERE pmid = ?`, pmid).Scan(
		&r.PMID, &r.PMCID, &r.OAID, &r.FirstAuthorLastName, &r.ArticleTitle,
		&r.Journal, &r.PublicationYear, &r.PublicationDate, &r.DOIURL, &r.PDFURL,
		&citedBy, &r.CitedByUIURL, &r.Type, &r.TypeCrossref, &r.UpdatedDate,
	)
	if err != nil {
		return record.Record{}, err
	}

	r.CitedByCount = fmt.Sprintf("%d", citedBy)
	return r, nil
}

// GetStats reports article and citation totals plus the last rebuild time.
func GetStats(db *sql.DB) (Stats, error) {
	var s Stats

	err := db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(cited_by_count), 0),
  COALESCE(MIN(publication_year), ''), COALESCE(MAX(publication_year), '')
  FROM articles`).
		Scan(&s.Articles, &s.Citations, &s.YearMin, &s.YearMax)
	if err != nil {
		return Stats{}, fmt.Errorf("reading stats: %w", err)
	}

	var timeStr sql.NullString
	err = db.QueryRow(`SELECT value FROM _meta WHERE key = 'last_rebuild'`).Scan(&timeStr)
	if err != nil && err != sql.ErrNoRows {
		return Stats{}, err
	}
	if timeStr.Valid {
		if t, err := time.Parse(time.RFC3339, timeStr.String); err == nil {
			s.LastRebuild = t
		}
	}

	return s, nil
}

func storedHash(db *sql.DB) (string, error) {
	var hash sql.NullString
	err := db.QueryRow(`SELECT value FROM _meta WHERE key = 'csv_hash'`).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return hash.String, nil
}
