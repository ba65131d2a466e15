package matcher

import (
	"github.com/agnivade/levenshtein"
	"github.com/desertthunder/plx/internal/models"
)

// Choice is one option offered to the operator.
type Choice struct {
	Label     string
	Candidate models.Candidate
	// Distance is the edit distance between the normalized choice label and
	// the normalized query label. It is a display hint only.
	Distance int
}

// Choices builds the options for a prompt from raw search results.
//
// Invalid candidates are dropped. Candidates sharing a label collapse into one
// option that keeps the position of the first occurrence and resolves to the
// last one.
func (n *Normalizer) Choices(cs []models.Candidate, q models.Query) []Choice {
	var choices []Choice
	index := make(map[string]int)
	target := n.Normalize(q.Label())

	for _, c := range cs {
		if !Valid(c, nil) {
			continue
		}

		label := c.Label()
		if i, ok := index[label]; ok {
			choices[i].Candidate = c
			continue
		}

		index[label] = len(choices)
		choices = append(choices, Choice{
			Label:     label,
			Candidate: c,
			Distance:  levenshtein.ComputeDistance(n.Normalize(label), target),
		})
	}

	return choices
}

// Choices builds prompt options with the default rule set.
func Choices(cs []models.Candidate, q models.Query) []Choice {
	return defaultNormalizer.Choices(cs, q)
}

// Closest returns the index of the choice with the smallest distance, the
// first one on ties, or -1 for no choices.
func Closest(choices []Choice) int {
	best := -1
	for i, c := range choices {
		if best == -1 || c.Distance < choices[best].Distance {
			best = i
		}
	}
	return best
}
