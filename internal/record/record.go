// Package record defines the flat publications-table row and its CSV codec.
package record

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// PDFNotAvailable is the sentinel stored when a work has no open-access PDF.
const PDFNotAvailable = "not available"

// DateLayout is the canonical publication date format.
const DateLayout = "2006-01-02"

// Record is one row of the publications table. All fields are stored as
// strings in the CSV; numeric fields are decimal text.
type Record struct {
	FirstAuthorLastName string
	ArticleTitle        string
	Journal             string
	PublicationYear     string
	PublicationDate     string
	PMID                string
	PMCID               string
	OAID                string
	PDFURL              string
	DOIURL              string
	CitedByCount        string
	CitedByUIURL        string
	Type                string
	TypeCrossref        string
	UpdatedDate         string
}

// Columns is the CSV header, in table order.
var Columns = []string{
	"first_author_last_name",
	"article_title",
	"journal",
	"publication_year",
	"publication_date",
	"pmid",
	"pmcid",
	"oaid",
	"pdf_url",
	"doi_url",
	"cited_by_count",
	"cited_by_ui_url",
	"type",
	"type_crossref",
	"updated_date",
}

// Row returns the record as a CSV row in column order.
func (r Record) Row() []string {
	return []string{
		r.FirstAuthorLastName,
		r.ArticleTitle,
		r.Journal,
		r.PublicationYear,
		r.PublicationDate,
		r.PMID,
		r.PMCID,
		r.OAID,
		r.PDFURL,
		r.DOIURL,
		r.CitedByCount,
		r.CitedByUIURL,
		r.Type,
		r.TypeCrossref,
		r.UpdatedDate,
	}
}

// FromRow builds a record from a CSV row.
func FromRow(row []string) (Record, error) {
	if len(row) != len(Columns) {
		return Record{}, fmt.Errorf("row has %d fields, want %d", len(row), len(Columns))
	}
	return Record{
		FirstAuthorLastName: row[0],
		ArticleTitle:        row[1],
		Journal:             row[2],
		PublicationYear:     row[3],
		PublicationDate:     row[4],
		PMID:                row[5],
		PMCID:               row[6],
		OAID:                row[7],
		PDFURL:              row[8],
		DOIURL:              row[9],
		CitedByCount:        row[10],
		CitedByUIURL:        row[11],
		Type:                row[12],
		TypeCrossref:        row[13],
		UpdatedDate:         row[14],
	}, nil
}

// CitedBy returns the citation count as an integer. Unparsable values
// count as zero.
func (r Record) CitedBy() int {
	n, err := strconv.Atoi(r.CitedByCount)
	if err != nil {
		return 0
	}
	return n
}

// dateKey parses a canonical publication date for sorting. Unparsable
// dates sort as the zero time, i.e. last in descending order.
func dateKey(date string) time.Time {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SortByPublicationDate sorts records by publication date, most recent
// first. The sort is stable so pre-existing order decides ties.
func SortByPublicationDate(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return dateKey(recs[i].PublicationDate).After(dateKey(recs[j].PublicationDate))
	})
}
