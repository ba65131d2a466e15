package matcher

import (
	"strings"

	"github.com/desertthunder/plx/internal/models"
)

// Valid reports whether c is a well-formed track result. When q is non-nil the
// candidate artist must also equal the query artist, ignoring case.
func Valid(c models.Candidate, q *models.Query) bool {
	if c.Kind != models.KindTrack {
		return false
	}
	if c.Artist == "" || c.Title == "" || c.CatalogID == "" {
		return false
	}
	if q != nil && !strings.EqualFold(c.Artist, q.Artist) {
		return false
	}
	return true
}
