package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/nicomarr/pubsync/internal/config"
	"github.com/nicomarr/pubsync/internal/openalex"
	"github.com/nicomarr/pubsync/internal/record"
	"github.com/nicomarr/pubsync/internal/table"
)

func TestRefreshIdentifiersPrefersOAID(t *testing.T) {
	recs := []record.Record{
		{OAID: "https://openalex.org/W1", PMID: "111"},
		{PMID: "222"},
		{}, // no identifier at all, skipped
	}

	got := refreshIdentifiers(recs)
	want := []string{"https://openalex.org/W1", "222"}

	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAppendFiltersMergesConfigAndFlags(t *testing.T) {
	appendExclude = []string{"999"}
	appendIncludeErrata = false
	defer func() {
		appendExclude = nil
		appendIncludeErrata = false
	}()

	cfg := &config.Config{
		Exclude:       []string{"111"},
		IncludeErrata: true,
	}

	f := appendFilters(cfg)

	if f.ExcludeErrata {
		t.Error("config include_errata should disable the erratum filter")
	}
	if !f.JournalArticlesOnly || !f.RequireDOI || !f.RequirePMID {
		t.Error("default policy filters should stay on")
	}
	if len(f.ExcludeIDs) != 2 || f.ExcludeIDs[0] != "111" || f.ExcludeIDs[1] != "999" {
		t.Errorf("ExcludeIDs = %v, want [111 999]", f.ExcludeIDs)
	}
}

func TestReportersReturnFailureCounts(t *testing.T) {
	extractErrs := []error{
		errors.New("work W1: no authorships"),
		errors.New("work W2: no authorships"),
	}
	if got := reportExtractionErrors(extractErrs); got != 2 {
		t.Errorf("reportExtractionErrors = %d, want 2", got)
	}

	failed := []openalex.FailedCall{
		{UID: "111", StatusCode: 404, Reason: "404 Not Found: not found"},
	}
	if got := reportFailedCalls(failed); got != 1 {
		t.Errorf("reportFailedCalls = %d, want 1", got)
	}
}

func TestSyncAppendReturnsIDListReadError(t *testing.T) {
	dir := t.TempDir()
	// Occupy the identifier-list path with a directory so the read fails
	// with something other than a missing-file error.
	if err := os.Mkdir(filepath.Join(dir, table.IDListFile), 0755); err != nil {
		t.Fatal(err)
	}

	recs := []record.Record{{PMID: "111", OAID: "https://openalex.org/W1"}}
	var failed []openalex.FailedCall
	var extractErrs []error

	res, err := syncAppend(&cobra.Command{}, dir, &config.Config{}, nil, recs, &failed, &extractErrs)

	if err == nil {
		t.Fatal("want an error for an unreadable identifier list")
	}
	if errors.Is(err, os.ErrNotExist) {
		t.Fatal("read error should not be a missing-file error in this scenario")
	}
	// The refreshed table must survive so the caller can still commit it.
	if len(res.Table) != 1 || res.Table[0].PMID != "111" {
		t.Errorf("table not carried through: %+v", res.Table)
	}
}
