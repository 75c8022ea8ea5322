// Package reconcile merges freshly fetched work metadata into the local
// publications table. It has two idempotent modes: Append adds rows for
// works not yet tracked, Refresh advances citation counts in place.
// Both operate purely in memory; callers decide whether the result warrants
// a write.
package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nicomarr/pubsync/internal/ident"
	"github.com/nicomarr/pubsync/internal/openalex"
	"github.com/nicomarr/pubsync/internal/record"
)

// Filters controls which candidate records Append will admit. Each filter
// is independently toggleable.
type Filters struct {
	// JournalArticlesOnly requires type_crossref == "journal-article" and
	// excludes works typed dataset.
	JournalArticlesOnly bool
	// RequireDOI drops candidates with an empty doi_url.
	RequireDOI bool
	// RequirePMID drops candidates with an empty pmid.
	RequirePMID bool
	// ExcludeErrata drops erratum-typed candidates.
	ExcludeErrata bool
	// ExcludeIDs drops candidates whose pmid or oaid appears in the list.
	ExcludeIDs []string
}

// DefaultFilters returns the curated-table policy: journal articles with a
// DOI and a PMID, errata excluded.
func DefaultFilters() Filters {
	return Filters{
		JournalArticlesOnly: true,
		RequireDOI:          true,
		RequirePMID:         true,
		ExcludeErrata:       true,
	}
}

// AppendResult reports an append pass. Added == 0 means the table is
// unchanged and no write is needed; it is never an error.
type AppendResult struct {
	Added   int
	Table   []record.Record
	Message string
}

// RefreshResult reports a refresh pass. Updated == 0 means the table is
// unchanged and no write is needed.
type RefreshResult struct {
	Updated int
	Table   []record.Record
	Message string
}

// Missing returns the candidate identifiers not yet present in the table,
// preserving input order and dropping duplicates. Candidates are matched
// against the pmid, oaid, and doi_url columns after identifier
// normalization, so a DOI in the list stops being fetched once its work is
// tracked.
func Missing(existing []record.Record, candidates []string) []string {
	tracked := make(map[string]bool, len(existing)*3)
	for _, r := range existing {
		for _, raw := range []string{r.PMID, r.OAID, r.DOIURL} {
			if key := idKey(raw); key != "" {
				tracked[key] = true
			}
		}
	}

	var missing []string
	seen := make(map[string]bool)
	for _, id := range candidates {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		key := idKey(id)
		if tracked[key] || seen[key] {
			continue
		}
		seen[key] = true
		missing = append(missing, id)
	}

	return missing
}

// idKey canonicalizes an identifier for set membership: resolver-URL
// prefixes are stripped and the result is lowercased, so
// "https://doi.org/10.1/ABC" and "10.1/abc" collide.
func idKey(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	id, _ := ident.Normalize(raw)
	return strings.ToLower(id)
}

// Append merges extracted candidate records into the existing table.
// Candidates are sorted by publication date descending, deduplicated by
// pmid (first occurrence wins), filtered, and placed ahead of the existing
// rows before the combined table is re-sorted. Candidates whose pmid is
// already tracked are skipped, which makes a repeated pass a no-op.
func Append(existing []record.Record, candidates []record.Record, f Filters) AppendResult {
	sorted := make([]record.Record, len(candidates))
	copy(sorted, candidates)
	record.SortByPublicationDate(sorted)

	tracked := make(map[string]bool, len(existing))
	for _, r := range existing {
		if r.PMID != "" {
			tracked[r.PMID] = true
		}
	}

	excluded := make(map[string]bool, len(f.ExcludeIDs))
	for _, id := range f.ExcludeIDs {
		excluded[id] = true
	}

	var fresh []record.Record
	seen := make(map[string]bool)
	for _, rec := range sorted {
		key := rec.PMID
		if key == "" {
			key = rec.OAID
		}
		if seen[key] || tracked[rec.PMID] {
			continue
		}
		if !admit(rec, f, excluded) {
			continue
		}
		seen[key] = true
		fresh = append(fresh, rec)
	}

	if len(fresh) == 0 {
		msg := "No new articles found."
		if f.ExcludeErrata {
			msg = "No new articles found (errata excluded)."
		}
		return AppendResult{Added: 0, Table: existing, Message: msg}
	}

	merged := make([]record.Record, 0, len(fresh)+len(existing))
	merged = append(merged, fresh...)
	merged = append(merged, existing...)
	record.SortByPublicationDate(merged)

	pmids := make([]string, len(fresh))
	for i, rec := range fresh {
		pmids[i] = rec.PMID
	}

	return AppendResult{
		Added:   len(fresh),
		Table:   merged,
		Message: fmt.Sprintf("Appended %d article(s) with PMID(s) %s.", len(fresh), strings.Join(pmids, ", ")),
	}
}

// admit applies the configured filters to one candidate.
func admit(rec record.Record, f Filters, excluded map[string]bool) bool {
	if f.JournalArticlesOnly {
		if rec.TypeCrossref != "journal-article" {
			return false
		}
		if rec.Type == "dataset" {
			return false
		}
	}
	if f.ExcludeErrata && rec.Type == "erratum" {
		return false
	}
	if f.RequireDOI && rec.DOIURL == "" {
		return false
	}
	if f.RequirePMID && rec.PMID == "" {
		return false
	}
	if excluded[rec.PMID] || excluded[rec.OAID] {
		return false
	}
	return true
}

// Refresh advances citation counts against freshly fetched works. A row is
// matched by oaid, falling back to pmid; unmatched rows are skipped (the
// identifier may have been retired upstream). cited_by_count and
// updated_date move together, and only when the fetched count is strictly
// greater than the stored one, so counts never decrease.
func Refresh(existing []record.Record, fetched []openalex.Work) RefreshResult {
	byOAID := make(map[string]openalex.Work, len(fetched))
	byPMID := make(map[string]openalex.Work, len(fetched))
	for _, w := range fetched {
		if w.ID != "" {
			byOAID[w.ID] = w
		}
		if pmid := record.TrimResolverURL(w.IDs.PMID); pmid != "" {
			byPMID[pmid] = w
		}
	}

	updatedTable := make([]record.Record, len(existing))
	copy(updatedTable, existing)

	updated := 0
	for i, r := range updatedTable {
		w, ok := byOAID[r.OAID]
		if !ok {
			w, ok = byPMID[r.PMID]
		}
		if !ok {
			continue
		}

		if w.CitedByCount > r.CitedBy() {
			updatedTable[i].CitedByCount = strconv.Itoa(w.CitedByCount)
			updatedTable[i].UpdatedDate = w.UpdatedDate
			updated++
		}
	}

	msg := "Loaded metadata were up-to-date. No changes were made."
	if updated > 0 {
		msg = fmt.Sprintf("Updated citation counts for %d article(s).", updated)
	}

	return RefreshResult{Updated: updated, Table: updatedTable, Message: msg}
}
