package record

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/nicomarr/pubsync/internal/openalex"
)

// UnknownJournal is stored when a work carries no source display name.
const UnknownJournal = "Unknown"

// FromWork flattens one raw OpenAlex work into a table record.
// Optional fields get documented defaults; a work with no authorships or
// with neither a pmid nor an OpenAlex ID fails extraction.
func FromWork(w openalex.Work) (Record, error) {
	if len(w.Authorships) == 0 {
		return Record{}, fmt.Errorf("work %s: no authorships", w.ID)
	}

	nameFields := strings.Fields(w.Authorships[0].Author.DisplayName)
	if len(nameFields) == 0 {
		return Record{}, fmt.Errorf("work %s: first authorship has empty display name", w.ID)
	}
	lastName := nameFields[len(nameFields)-1]

	pmid := TrimResolverURL(w.IDs.PMID)
	pmcid := TrimResolverURL(w.IDs.PMCID)

	if pmid == "" && w.ID == "" {
		return Record{}, fmt.Errorf("work has neither pmid nor OpenAlex id")
	}

	rec := Record{
		FirstAuthorLastName: lastName,
		ArticleTitle:        strings.ReplaceAll(w.Title, `"`, ""),
		Journal:             journalName(w.PrimaryLocation),
		PublicationYear:     strconv.Itoa(w.PublicationYear),
		PublicationDate:     normalizeDate(w.PublicationDate),
		PMID:                pmid,
		PMCID:               pmcid,
		OAID:                w.ID,
		PDFURL:              pdfURL(w.BestOALocation, pmcid),
		DOIURL:              w.DOI,
		CitedByCount:        strconv.Itoa(w.CitedByCount),
		CitedByUIURL:        strings.ReplaceAll(w.CitedByAPIURL, "api.openalex.org", "openalex.org"),
		Type:                w.Type,
		TypeCrossref:        w.TypeCrossref,
		UpdatedDate:         w.UpdatedDate,
	}

	return rec, nil
}

// FromWorks extracts a batch of works, recording per-work failures instead
// of aborting. The returned errors identify the offending works.
func FromWorks(works []openalex.Work) ([]Record, []error) {
	var recs []Record
	var errs []error

	for _, w := range works {
		rec, err := FromWork(w)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		recs = append(recs, rec)
	}

	return recs, errs
}

// journalName resolves the source display name, defaulting when the
// location or source is absent.
func journalName(loc *openalex.Location) string {
	if loc == nil || loc.Source == nil || loc.Source.DisplayName == "" {
		return UnknownJournal
	}
	return loc.Source.DisplayName
}

// pdfURL picks the best PDF link: the best OA location's pdf_url when
// present, else a PubMed Central link derived from the pmcid, else the
// "not available" sentinel.
func pdfURL(loc *openalex.Location, pmcid string) string {
	if loc != nil && loc.PDFURL != nil && strings.HasPrefix(*loc.PDFURL, "http") {
		return *loc.PDFURL
	}
	if strings.HasPrefix(pmcid, "PMC") {
		return fmt.Sprintf("https://www.ncbi.nlm.nih.gov/pmc/articles/%s/pdf", pmcid)
	}
	return PDFNotAvailable
}

// TrimResolverURL strips a resolver-URL prefix from an identifier,
// keeping the last path segment. Non-URL values pass through.
func TrimResolverURL(id string) string {
	if !strings.HasPrefix(id, "http") {
		return id
	}
	id = strings.TrimRight(id, "/")
	parts := strings.Split(id, "/")
	return parts[len(parts)-1]
}

// normalizeDate canonicalizes a publication date to YYYY-MM-DD.
// Unparsable values are kept as the original string.
func normalizeDate(date string) string {
	if date == "" {
		return ""
	}
	t, err := dateparse.ParseAny(date)
	if err != nil {
		return date
	}
	return t.Format(DateLayout)
}
