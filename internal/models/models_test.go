package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMatched(t *testing.T) {
	c := Candidate{CatalogID: "abc", Title: "Hello", Artist: "Adele", Kind: KindTrack}

	t.Run("resolved tier carries the candidate", func(t *testing.T) {
		v := Matched(TierExact, c)
		if v.Tier != TierExact {
			t.Errorf("expected tier exact, got %v", v.Tier)
		}
		if v.CatalogID != "abc" || v.Chosen == nil || v.Chosen.CatalogID != "abc" {
			t.Errorf("expected chosen candidate abc, got %+v", v)
		}
	})

	t.Run("missing catalog id degrades to no match", func(t *testing.T) {
		v := Matched(TierNormalized, Candidate{Title: "Hello"})
		if v.Tier != TierNoMatch || v.Chosen != nil || v.CatalogID != "" {
			t.Errorf("expected empty no_match verdict, got %+v", v)
		}
	})

	t.Run("unresolved tier degrades to no match", func(t *testing.T) {
		v := Matched(TierNoResults, c)
		if v.Tier != TierNoMatch || v.Chosen != nil {
			t.Errorf("expected no_match verdict, got %+v", v)
		}
	})
}

func TestTier(t *testing.T) {
	tc := []struct {
		tier     Tier
		name     string
		resolved bool
	}{
		{TierNoResults, "no_results", false},
		{TierNoMatch, "no_match", false},
		{TierExact, "exact", true},
		{TierNormalized, "normalized", true},
		{TierUser, "user", true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tier.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.tier.Resolved(); got != tt.resolved {
				t.Errorf("Resolved() = %v, want %v", got, tt.resolved)
			}
			if parsed, err := ParseTier(tt.name); err != nil || parsed != tt.tier {
				t.Errorf("ParseTier(%q) = %v, %v", tt.name, parsed, err)
			}
		})
	}
}

func TestTierText(t *testing.T) {
	data, err := json.Marshal(MatchVerdict{Tier: TierNormalized})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"tier":"normalized"}` {
		t.Errorf("unexpected json %s", data)
	}

	var v MatchVerdict
	if err := json.Unmarshal([]byte(`{"tier":"user"}`), &v); err != nil || v.Tier != TierUser {
		t.Errorf("unexpected verdict %+v, %v", v, err)
	}

	if _, err := ParseTier("fuzzy"); err == nil {
		t.Error("expected error for unknown tier")
	}
}

func TestBatchResult(t *testing.T) {
	b := &BatchResult{
		Matches: []TrackMatch{
			{Position: 0, Query: Query{Title: "A", Artist: "X"}, Verdict: Matched(TierExact, Candidate{CatalogID: "1"})},
			{Position: 1, Query: Query{Title: "B", Artist: "Y"}, Verdict: NoResults(), Err: errors.New("boom")},
			{Position: 2, Query: Query{Title: "C", Artist: "Z"}, Verdict: Matched(TierUser, Candidate{CatalogID: "3"})},
			{Position: 3, Query: Query{Title: "D", Artist: "W"}, Verdict: NoMatch()},
		},
		Resolved:       2,
		SearchFailures: 1,
	}

	t.Run("CatalogIDs keeps input order", func(t *testing.T) {
		ids := b.CatalogIDs()
		if len(ids) != 2 || ids[0] != "1" || ids[1] != "3" {
			t.Errorf("expected [1 3], got %v", ids)
		}
	})

	t.Run("Unmatched", func(t *testing.T) {
		u := b.Unmatched()
		if len(u) != 2 || u[0].Title != "B" || u[1].Title != "D" {
			t.Errorf("expected B and D, got %v", u)
		}
	})

	t.Run("TierCounts", func(t *testing.T) {
		counts := b.TierCounts()
		if counts[TierExact] != 1 || counts[TierUser] != 1 || counts[TierNoResults] != 1 || counts[TierNoMatch] != 1 {
			t.Errorf("unexpected counts %v", counts)
		}
	})

	t.Run("MatchPercentage", func(t *testing.T) {
		if got := b.MatchPercentage(); got != 50 {
			t.Errorf("expected 50, got %v", got)
		}
		if got := (&BatchResult{}).MatchPercentage(); got != 0 {
			t.Errorf("expected 0 for empty batch, got %v", got)
		}
	})
}

func TestQueryLabels(t *testing.T) {
	q := Query{Title: "Hello", Artist: "Adele"}
	if got := q.Label(); got != "Adele - Hello" {
		t.Errorf("Label() = %q", got)
	}
	if got := q.SearchString(); got != "Adele Hello" {
		t.Errorf("SearchString() = %q", got)
	}
}

func TestRun(t *testing.T) {
	run := NewRun(1, "https://www.bbc.co.uk/radio1/playlist", "Radio 1", "ytmusic", false)

	if err := run.Validate(); err == nil {
		t.Error("expected validation error without id")
	}

	run.SetID("run-1")
	if err := run.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	run.RecordBatch(&BatchResult{
		Matches: []TrackMatch{
			{Position: 0, Query: Query{Title: "A", Artist: "X"}, Verdict: Matched(TierExact, Candidate{CatalogID: "1"})},
			{Position: 1, Query: Query{Title: "B", Artist: "Y"}, Verdict: NoMatch()},
		},
		Resolved: 1,
	})

	if run.Total() != 2 || run.Resolved() != 1 || len(run.Tracks()) != 2 {
		t.Errorf("unexpected counts: total=%d resolved=%d tracks=%d", run.Total(), run.Resolved(), len(run.Tracks()))
	}

	run.SetStatus(RunFailed, errors.New("write failed"))
	if run.Status() != RunFailed || run.ErrorMessage() != "write failed" {
		t.Errorf("unexpected status %s / %q", run.Status(), run.ErrorMessage())
	}
}
