package reconcile

import (
	"testing"

	"github.com/nicomarr/pubsync/internal/openalex"
	"github.com/nicomarr/pubsync/internal/record"
)

func article(pmid, oaid, date string, citedBy string) record.Record {
	return record.Record{
		FirstAuthorLastName: "Doe",
		ArticleTitle:        "Title " + pmid,
		Journal:             "Journal of Testing",
		PublicationYear:     date[:4],
		PublicationDate:     date,
		PMID:                pmid,
		OAID:                oaid,
		PDFURL:              record.PDFNotAvailable,
		DOIURL:              "https://doi.org/10.1/" + pmid,
		CitedByCount:        citedBy,
		Type:                "article",
		TypeCrossref:        "journal-article",
		UpdatedDate:         "2024-01-01T00:00:00.000000",
	}
}

func TestMissing(t *testing.T) {
	existing := []record.Record{
		article("111", "https://openalex.org/W1", "2023-01-01", "5"),
	}

	got := Missing(existing, []string{"111", "222", "333", "222", "", "  111  "})
	want := []string{"222", "333"}

	if len(got) != len(want) {
		t.Fatalf("missing = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("missing[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMissingMatchesDOIAndOAID(t *testing.T) {
	existing := []record.Record{
		article("111", "https://openalex.org/W1", "2023-01-01", "5"),
	}

	// Identifier lists can carry DOIs (harvested from PDFs) and OpenAlex
	// IDs; once the work is tracked they must stop being fetched.
	candidates := []string{
		"10.1/111",                 // bare DOI of the tracked work
		"https://doi.org/10.1/111", // resolver-URL form of the same DOI
		"W1",                       // bare OpenAlex ID
		"https://openalex.org/W1",  // URL form
		"10.1/fresh",               // genuinely new DOI
	}

	got := Missing(existing, candidates)

	if len(got) != 1 || got[0] != "10.1/fresh" {
		t.Fatalf("missing = %v, want [10.1/fresh]", got)
	}
}

func TestAppendNewRecord(t *testing.T) {
	existing := []record.Record{
		article("111", "https://openalex.org/W1", "2021-01-01", "9"),
	}
	candidates := []record.Record{
		article("222", "https://openalex.org/W2", "2023-06-15", "5"),
	}

	res := Append(existing, candidates, DefaultFilters())

	if res.Added != 1 {
		t.Fatalf("Added = %d, want 1", res.Added)
	}
	if len(res.Table) != 2 {
		t.Fatalf("len(table) = %d, want 2", len(res.Table))
	}
	// Newest first after re-sort
	if res.Table[0].PMID != "222" {
		t.Errorf("table[0].PMID = %q, want 222", res.Table[0].PMID)
	}
	if res.Table[0].CitedByCount != "5" {
		t.Errorf("cited_by_count = %q, want \"5\"", res.Table[0].CitedByCount)
	}
}

func TestAppendIdempotent(t *testing.T) {
	existing := []record.Record{
		article("111", "https://openalex.org/W1", "2021-01-01", "9"),
	}
	candidates := []record.Record{
		article("222", "https://openalex.org/W2", "2023-06-15", "5"),
	}

	first := Append(existing, candidates, DefaultFilters())
	second := Append(first.Table, candidates, DefaultFilters())

	if second.Added != 0 {
		t.Errorf("second pass Added = %d, want 0", second.Added)
	}
	if len(second.Table) != len(first.Table) {
		t.Errorf("second pass changed table length: %d vs %d", len(second.Table), len(first.Table))
	}
	for i := range first.Table {
		if second.Table[i] != first.Table[i] {
			t.Errorf("second pass changed row %d", i)
		}
	}
}

func TestAppendDeduplicatesByPMID(t *testing.T) {
	older := article("222", "https://openalex.org/W2a", "2020-01-01", "1")
	newer := article("222", "https://openalex.org/W2b", "2023-01-01", "2")

	res := Append(nil, []record.Record{older, newer}, DefaultFilters())

	if res.Added != 1 {
		t.Fatalf("Added = %d, want 1", res.Added)
	}
	// Most recent duplicate wins: candidates are sorted by publication
	// date descending before first-occurrence dedup.
	if res.Table[0].OAID != "https://openalex.org/W2b" {
		t.Errorf("kept %q, want the more recent duplicate", res.Table[0].OAID)
	}
}

func TestAppendFilters(t *testing.T) {
	base := article("333", "https://openalex.org/W3", "2023-01-01", "0")

	tests := []struct {
		name    string
		mutate  func(*record.Record)
		filters Filters
		want    int
	}{
		{
			name:    "erratum dropped when excluded",
			mutate:  func(r *record.Record) { r.Type = "erratum" },
			filters: Filters{ExcludeErrata: true},
			want:    0,
		},
		{
			name:    "erratum kept when included",
			mutate:  func(r *record.Record) { r.Type = "erratum" },
			filters: Filters{},
			want:    1,
		},
		{
			name:    "dataset dropped by journal filter",
			mutate:  func(r *record.Record) { r.Type = "dataset" },
			filters: Filters{JournalArticlesOnly: true},
			want:    0,
		},
		{
			name:    "non journal-article crossref type dropped",
			mutate:  func(r *record.Record) { r.TypeCrossref = "posted-content" },
			filters: Filters{JournalArticlesOnly: true},
			want:    0,
		},
		{
			name:    "missing doi dropped",
			mutate:  func(r *record.Record) { r.DOIURL = "" },
			filters: Filters{RequireDOI: true},
			want:    0,
		},
		{
			name:    "missing pmid dropped",
			mutate:  func(r *record.Record) { r.PMID = "" },
			filters: Filters{RequirePMID: true},
			want:    0,
		},
		{
			name:    "explicit exclude list by pmid",
			mutate:  func(r *record.Record) {},
			filters: Filters{ExcludeIDs: []string{"333"}},
			want:    0,
		},
		{
			name:    "explicit exclude list by oaid",
			mutate:  func(r *record.Record) {},
			filters: Filters{ExcludeIDs: []string{"https://openalex.org/W3"}},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := base
			tt.mutate(&rec)
			res := Append(nil, []record.Record{rec}, tt.filters)
			if res.Added != tt.want {
				t.Errorf("Added = %d, want %d", res.Added, tt.want)
			}
		})
	}
}

func refreshWork(oaid, pmid string, citedBy int, updated string) openalex.Work {
	return openalex.Work{
		ID:           oaid,
		IDs:          openalex.WorkIDs{PMID: "https://pubmed.ncbi.nlm.nih.gov/" + pmid},
		CitedByCount: citedBy,
		UpdatedDate:  updated,
	}
}

func TestRefreshStrictlyGreaterOnly(t *testing.T) {
	existing := []record.Record{
		article("111", "W1", "2023-01-01", "3"),
	}

	t.Run("equal count leaves row untouched", func(t *testing.T) {
		res := Refresh(existing, []openalex.Work{refreshWork("W1", "111", 3, "2025-01-01T00:00:00")})
		if res.Updated != 0 {
			t.Errorf("Updated = %d, want 0", res.Updated)
		}
		if res.Table[0] != existing[0] {
			t.Error("row changed on equal count")
		}
	})

	t.Run("smaller count never decreases", func(t *testing.T) {
		rows := []record.Record{article("111", "W1", "2023-01-01", "10")}
		res := Refresh(rows, []openalex.Work{refreshWork("W1", "111", 7, "2025-01-01T00:00:00")})
		if res.Updated != 0 {
			t.Errorf("Updated = %d, want 0", res.Updated)
		}
		if res.Table[0].CitedByCount != "10" {
			t.Errorf("cited_by_count = %q, want 10", res.Table[0].CitedByCount)
		}
	})

	t.Run("greater count advances count and updated_date together", func(t *testing.T) {
		res := Refresh(existing, []openalex.Work{refreshWork("W1", "111", 5, "2025-01-01T00:00:00")})
		if res.Updated != 1 {
			t.Fatalf("Updated = %d, want 1", res.Updated)
		}
		if res.Table[0].CitedByCount != "5" {
			t.Errorf("cited_by_count = %q, want 5", res.Table[0].CitedByCount)
		}
		if res.Table[0].UpdatedDate != "2025-01-01T00:00:00" {
			t.Errorf("updated_date = %q, want advanced with count", res.Table[0].UpdatedDate)
		}
	})
}

func TestRefreshSkipsUnmatchedRows(t *testing.T) {
	existing := []record.Record{
		article("111", "W1", "2023-01-01", "3"),
		article("999", "W999", "2022-01-01", "1"),
	}

	res := Refresh(existing, []openalex.Work{refreshWork("W1", "111", 8, "2025-01-01T00:00:00")})

	if res.Updated != 1 {
		t.Errorf("Updated = %d, want 1", res.Updated)
	}
	if res.Table[1] != existing[1] {
		t.Error("unmatched row changed")
	}
}

func TestRefreshMatchesByPMIDFallback(t *testing.T) {
	existing := []record.Record{
		// Stored oaid differs from the fetched one (e.g. merged work IDs)
		article("111", "https://openalex.org/Wold", "2023-01-01", "3"),
	}

	res := Refresh(existing, []openalex.Work{refreshWork("https://openalex.org/Wnew", "111", 4, "2025-02-02T00:00:00")})

	if res.Updated != 1 {
		t.Errorf("Updated = %d, want 1 via pmid fallback", res.Updated)
	}
}

func TestRefreshIdempotent(t *testing.T) {
	existing := []record.Record{
		article("111", "W1", "2023-01-01", "3"),
	}
	fetched := []openalex.Work{refreshWork("W1", "111", 5, "2025-01-01T00:00:00")}

	first := Refresh(existing, fetched)
	second := Refresh(first.Table, fetched)

	if second.Updated != 0 {
		t.Errorf("second pass Updated = %d, want 0", second.Updated)
	}
}

func TestRefreshDoesNotMutateInput(t *testing.T) {
	existing := []record.Record{
		article("111", "W1", "2023-01-01", "3"),
	}

	Refresh(existing, []openalex.Work{refreshWork("W1", "111", 5, "2025-01-01T00:00:00")})

	if existing[0].CitedByCount != "3" {
		t.Error("Refresh mutated its input table")
	}
}
