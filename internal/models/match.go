package models

import "fmt"

// Tier records how a query was resolved.
type Tier int

const (
	TierNoResults Tier = iota // the search returned nothing (or failed)
	TierNoMatch               // results existed but none was accepted
	TierExact                 // case-insensitive title equality
	TierNormalized            // equality after title normalization
	TierUser                  // chosen by the operator
)

func (t Tier) String() string {
	switch t {
	case TierNoResults:
		return "no_results"
	case TierNoMatch:
		return "no_match"
	case TierExact:
		return "exact"
	case TierNormalized:
		return "normalized"
	case TierUser:
		return "user"
	default:
		return "unknown"
	}
}

// ParseTier is the inverse of [Tier.String].
func ParseTier(s string) (Tier, error) {
	for t := TierNoResults; t <= TierUser; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return TierNoResults, fmt.Errorf("unknown tier %q", s)
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Resolved reports whether the tier carries a chosen catalog id.
func (t Tier) Resolved() bool {
	return t == TierExact || t == TierNormalized || t == TierUser
}

// MatchVerdict is the outcome of matching one query.
//
// CatalogID is non-empty exactly when Tier is resolved, and Chosen is set exactly
// when CatalogID is. Use [NoResults], [NoMatch] and [Matched] to build verdicts.
type MatchVerdict struct {
	Tier      Tier       `json:"tier"`
	Chosen    *Candidate `json:"chosen,omitempty"`
	CatalogID string     `json:"catalog_id,omitempty"`
}

func NoResults() MatchVerdict { return MatchVerdict{Tier: TierNoResults} }

func NoMatch() MatchVerdict { return MatchVerdict{Tier: TierNoMatch} }

// Matched builds a resolved verdict. A candidate without a catalog id, or an
// unresolved tier, degrades to [NoMatch].
func Matched(tier Tier, c Candidate) MatchVerdict {
	if !tier.Resolved() || c.CatalogID == "" {
		return NoMatch()
	}
	return MatchVerdict{Tier: tier, Chosen: &c, CatalogID: c.CatalogID}
}

// TrackMatch pairs a query with its verdict. Err holds the search failure when
// the verdict is [TierNoResults] because the catalog call failed.
type TrackMatch struct {
	Position int          `json:"position"`
	Query    Query        `json:"query"`
	Verdict  MatchVerdict `json:"verdict"`
	Err      error        `json:"-"`
}

// BatchResult is the ordered outcome of matching a tracklist.
type BatchResult struct {
	Matches        []TrackMatch `json:"matches"`
	Resolved       int          `json:"resolved"`
	SearchFailures int          `json:"search_failures"`
}

// Total returns the number of queries in the batch.
func (b *BatchResult) Total() int {
	return len(b.Matches)
}

// CatalogIDs returns the resolved catalog ids in input order.
func (b *BatchResult) CatalogIDs() []string {
	ids := make([]string, 0, b.Resolved)
	for _, m := range b.Matches {
		if m.Verdict.Tier.Resolved() {
			ids = append(ids, m.Verdict.CatalogID)
		}
	}
	return ids
}

// Unmatched returns the queries that did not resolve, in input order.
func (b *BatchResult) Unmatched() []Query {
	var out []Query
	for _, m := range b.Matches {
		if !m.Verdict.Tier.Resolved() {
			out = append(out, m.Query)
		}
	}
	return out
}

// TierCounts tallies verdicts per tier.
func (b *BatchResult) TierCounts() map[Tier]int {
	counts := make(map[Tier]int)
	for _, m := range b.Matches {
		counts[m.Verdict.Tier]++
	}
	return counts
}

// MatchPercentage returns the share of resolved queries, 0 for an empty batch.
func (b *BatchResult) MatchPercentage() float64 {
	if len(b.Matches) == 0 {
		return 0
	}
	return float64(b.Resolved) / float64(len(b.Matches)) * 100
}
