package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/desertthunder/plx/internal/models"
)

// Reporter prints one line per resolved query. Safe for concurrent use.
type Reporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewReporter creates a [Reporter] writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Report implements matcher.Reporter.
func (r *Reporter) Report(tier models.Tier, q models.Query, chosen *models.Candidate) {
	line := FormatMatch(tier, q, chosen)

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, line)
}

// FormatMatch renders the report line for a verdict.
//
//	Found match Adele - Hello -> Adele - Hello
//	No results Adele - Hello
func FormatMatch(tier models.Tier, q models.Query, chosen *models.Candidate) string {
	query := styles.info.Render(q.Label())

	if chosen != nil && tier.Resolved() {
		var prefix string
		switch tier {
		case models.TierExact:
			prefix = styles.ok.Render("Found match")
		case models.TierNormalized:
			prefix = styles.warn.Render("Found match")
		default:
			prefix = styles.warn.Render("User match")
		}
		return fmt.Sprintf("%s %s%s%s", prefix, query, styles.help.Render(" -> "), styles.warn.Render(chosen.Label()))
	}

	if tier == models.TierNoMatch {
		return fmt.Sprintf("%s %s", styles.err.Render("No match"), query)
	}
	return fmt.Sprintf("%s %s", styles.err.Render("No results"), query)
}
