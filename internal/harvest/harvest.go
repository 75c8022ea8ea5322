// Package harvest scans directories of article PDFs for DOIs so new works
// can be fed into the identifier list without manual lookup.
package harvest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/nicomarr/pubsync/internal/record"
)

// doiPattern matches DOIs embedded in page text.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// maxPages limits the scan to the front matter, where the DOI lives.
const maxPages = 3

// Found is one harvested identifier and the file it came from.
type Found struct {
	DOI  string
	Path string
}

// ExtractDOI extracts a DOI from a PDF file, searching the first few pages.
// Returns an empty string (not an error) if no DOI is present.
func ExtractDOI(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer f.Close()

	pages := maxPages
	if r.NumPage() < pages {
		pages = r.NumPage()
	}

	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if doi := FindDOI(text); doi != "" {
			return doi, nil
		}
	}

	return "", nil
}

// Dir walks a directory tree and extracts one DOI per PDF. Unreadable or
// DOI-less files are skipped with a recorded reason; the walk never aborts
// on a single bad file.
func Dir(root string) ([]Found, []error) {
	var found []Found
	var errs []error

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}

		doi, err := ExtractDOI(path)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if doi == "" {
			errs = append(errs, fmt.Errorf("no DOI found in %s", path))
			return nil
		}

		found = append(found, Found{DOI: doi, Path: path})
		return nil
	})
	if walkErr != nil {
		errs = append(errs, fmt.Errorf("walking %s: %w", root, walkErr))
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found, errs
}

// Novel filters harvested DOIs down to those not already in the table,
// comparing against the doi_url column. Duplicate finds collapse to one.
func Novel(found []Found, existing []record.Record) []Found {
	tracked := make(map[string]bool, len(existing))
	for _, r := range existing {
		if doi := normalizeDOI(r.DOIURL); doi != "" {
			tracked[doi] = true
		}
	}

	var novel []Found
	seen := make(map[string]bool)
	for _, f := range found {
		doi := normalizeDOI(f.DOI)
		if doi == "" || tracked[doi] || seen[doi] {
			continue
		}
		seen[doi] = true
		novel = append(novel, f)
	}

	return novel
}

// FindDOI finds the first valid DOI in text.
func FindDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI candidate.
func isValidDOI(doi string) bool {
	if len(doi) < 10 {
		return false
	}
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}

// normalizeDOI lowercases a DOI and strips a resolver-URL prefix, so table
// values like "https://doi.org/10.1/A" match harvested "10.1/a".
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(strings.ToLower(doi))
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	return doi
}
