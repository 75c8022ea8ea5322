package record

import (
	"strings"
	"testing"

	"github.com/nicomarr/pubsync/internal/openalex"
)

func ptr(s string) *string { return &s }

func sampleWork() openalex.Work {
	return openalex.Work{
		ID:    "https://openalex.org/W1997963236",
		DOI:   "https://doi.org/10.1186/s12967-023-04576-8",
		Title: `A "quoted" title`,
		Authorships: []openalex.Authorship{
			{Author: openalex.Author{DisplayName: "Jane Q Doe"}},
			{Author: openalex.Author{DisplayName: "John Smith"}},
		},
		PublicationYear: 2023,
		PublicationDate: "2023-05-01",
		IDs: openalex.WorkIDs{
			PMID:  "https://pubmed.ncbi.nlm.nih.gov/38857748",
			PMCID: "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC9046468",
		},
		PrimaryLocation: &openalex.Location{
			Source: &openalex.Source{DisplayName: "Journal of Testing"},
		},
		BestOALocation: &openalex.Location{
			PDFURL: ptr("https://example.org/paper.pdf"),
		},
		CitedByCount:  7,
		CitedByAPIURL: "https://api.openalex.org/works?filter=cites:W1997963236",
		Type:          "article",
		TypeCrossref:  "journal-article",
		UpdatedDate:   "2024-08-01T11:17:58.717683",
	}
}

func TestFromWork(t *testing.T) {
	rec, err := FromWork(sampleWork())
	if err != nil {
		t.Fatalf("FromWork error: %v", err)
	}

	if rec.FirstAuthorLastName != "Doe" {
		t.Errorf("first author = %q, want %q", rec.FirstAuthorLastName, "Doe")
	}
	if strings.Contains(rec.ArticleTitle, `"`) {
		t.Errorf("title retains quotes: %q", rec.ArticleTitle)
	}
	if rec.Journal != "Journal of Testing" {
		t.Errorf("journal = %q", rec.Journal)
	}
	if rec.PublicationYear != "2023" {
		t.Errorf("year = %q, want 2023", rec.PublicationYear)
	}
	if rec.PMID != "38857748" {
		t.Errorf("pmid = %q, want URL prefix stripped", rec.PMID)
	}
	if rec.PMCID != "PMC9046468" {
		t.Errorf("pmcid = %q, want URL prefix stripped", rec.PMCID)
	}
	if rec.PDFURL != "https://example.org/paper.pdf" {
		t.Errorf("pdf_url = %q", rec.PDFURL)
	}
	if rec.CitedByCount != "7" {
		t.Errorf("cited_by_count = %q, want \"7\"", rec.CitedByCount)
	}
	if rec.CitedByUIURL != "https://openalex.org/works?filter=cites:W1997963236" {
		t.Errorf("cited_by_ui_url = %q, want API host substituted", rec.CitedByUIURL)
	}
}

func TestFromWorkDefaults(t *testing.T) {
	t.Run("missing best_oa_location and pmcid", func(t *testing.T) {
		w := sampleWork()
		w.BestOALocation = nil
		w.IDs.PMCID = ""
		rec, err := FromWork(w)
		if err != nil {
			t.Fatalf("FromWork error: %v", err)
		}
		if rec.PDFURL != PDFNotAvailable {
			t.Errorf("pdf_url = %q, want %q", rec.PDFURL, PDFNotAvailable)
		}
		if rec.PMCID != "" {
			t.Errorf("pmcid = %q, want empty string", rec.PMCID)
		}
	})

	t.Run("null pdf_url falls back to PMC link", func(t *testing.T) {
		w := sampleWork()
		w.BestOALocation = &openalex.Location{PDFURL: nil}
		rec, err := FromWork(w)
		if err != nil {
			t.Fatalf("FromWork error: %v", err)
		}
		want := "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC9046468/pdf"
		if rec.PDFURL != want {
			t.Errorf("pdf_url = %q, want %q", rec.PDFURL, want)
		}
	})

	t.Run("missing primary location source", func(t *testing.T) {
		w := sampleWork()
		w.PrimaryLocation = nil
		rec, err := FromWork(w)
		if err != nil {
			t.Fatalf("FromWork error: %v", err)
		}
		if rec.Journal != UnknownJournal {
			t.Errorf("journal = %q, want %q", rec.Journal, UnknownJournal)
		}
	})

	t.Run("unparsable publication date kept as-is", func(t *testing.T) {
		w := sampleWork()
		w.PublicationDate = "Spring 2023???"
		rec, err := FromWork(w)
		if err != nil {
			t.Fatalf("FromWork error: %v", err)
		}
		if rec.PublicationDate != "Spring 2023???" {
			t.Errorf("publication_date = %q, want original kept", rec.PublicationDate)
		}
	})
}

func TestFromWorkFailures(t *testing.T) {
	t.Run("no authorships", func(t *testing.T) {
		w := sampleWork()
		w.Authorships = nil
		if _, err := FromWork(w); err == nil {
			t.Error("want extraction error for empty authorships")
		}
	})

	t.Run("neither pmid nor oaid", func(t *testing.T) {
		w := sampleWork()
		w.ID = ""
		w.IDs.PMID = ""
		if _, err := FromWork(w); err == nil {
			t.Error("want extraction error for missing identifiers")
		}
	})
}

func TestFromWorksIsolatesFailures(t *testing.T) {
	good := sampleWork()
	bad := sampleWork()
	bad.Authorships = nil

	recs, errs := FromWorks([]openalex.Work{good, bad, good})
	if len(recs) != 2 {
		t.Errorf("len(recs) = %d, want 2", len(recs))
	}
	if len(errs) != 1 {
		t.Errorf("len(errs) = %d, want 1", len(errs))
	}
}

func TestRowRoundTrip(t *testing.T) {
	rec, err := FromWork(sampleWork())
	if err != nil {
		t.Fatalf("FromWork error: %v", err)
	}

	got, err := FromRow(rec.Row())
	if err != nil {
		t.Fatalf("FromRow error: %v", err)
	}
	if got != rec {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, rec)
	}

	if _, err := FromRow([]string{"too", "short"}); err == nil {
		t.Error("want error for short row")
	}
}

func TestSortByPublicationDate(t *testing.T) {
	recs := []Record{
		{PMID: "1", PublicationDate: "2021-01-01"},
		{PMID: "2", PublicationDate: "2023-06-15"},
		{PMID: "3", PublicationDate: "not-a-date"},
		{PMID: "4", PublicationDate: "2023-06-15"},
	}
	SortByPublicationDate(recs)

	want := []string{"2", "4", "1", "3"}
	for i, pmid := range want {
		if recs[i].PMID != pmid {
			t.Errorf("recs[%d].PMID = %q, want %q (order %v)", i, recs[i].PMID, pmid, want)
		}
	}
}
