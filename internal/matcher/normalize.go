package matcher

import (
	"regexp"
	"strings"
)

// Rule rewrites every occurrence of Pattern with Replace.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace string
}

// RuleOptions toggles the optional rules of [DefaultRules].
type RuleOptions struct {
	// TreatWithAsFeat rewrites the whole word WITH to FEAT.
	TreatWithAsFeat bool
}

// DefaultRules returns the ordered rule set used for title matching.
//
// Rules run against an upper-cased title, so patterns are written in upper case.
func DefaultRules(opts RuleOptions) []Rule {
	feat := `FEAT\.|FEATURING\.?`
	if opts.TreatWithAsFeat {
		feat += `|\bWITH\b`
	}

	return []Rule{
		{Name: "radio_edit", Pattern: regexp.MustCompile(`\(RADIO EDIT\) | \(RADIO EDIT\)|\(RADIO EDIT\)`)},
		{Name: "ampersand", Pattern: regexp.MustCompile(`&`), Replace: "AND"},
		{Name: "featuring", Pattern: regexp.MustCompile(feat), Replace: "FEAT"},
		{Name: "parentheses", Pattern: regexp.MustCompile(`\(|\)`)},
		{Name: "apostrophes", Pattern: regexp.MustCompile(`[\x{2018}\x{2019}\x{02BC}]`), Replace: "'"},
		{Name: "question_marks", Pattern: regexp.MustCompile(`\?`)},
	}
}

// Normalizer canonicalizes titles for comparison. The output is never shown
// to users or sent to a catalog.
type Normalizer struct {
	rules []Rule
}

// NewNormalizer creates a [Normalizer] applying rules in order.
func NewNormalizer(rules []Rule) *Normalizer {
	return &Normalizer{rules: rules}
}

var defaultNormalizer = NewNormalizer(DefaultRules(RuleOptions{}))

// maxPasses bounds Normalize for rule sets that never settle.
const maxPasses = 8

// Normalize upper-cases title and applies each rule whose pattern occurs in it.
//
// A later rule can expose text an earlier one rewrites ("FEAT(.)" becomes
// "FEAT." once the parentheses go), so the rules are applied again until a pass
// changes nothing. For the default rules this makes Normalize idempotent.
func (n *Normalizer) Normalize(title string) string {
	s := strings.ToUpper(title)
	for range maxPasses {
		next := n.apply(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func (n *Normalizer) apply(s string) string {
	for _, rule := range n.rules {
		if rule.Pattern.MatchString(s) {
			s = rule.Pattern.ReplaceAllLiteralString(s, rule.Replace)
		}
	}
	return s
}

// Rules returns the names of the rules in application order.
func (n *Normalizer) Rules() []string {
	names := make([]string, len(n.rules))
	for i, rule := range n.rules {
		names[i] = rule.Name
	}
	return names
}

// Normalize applies the default rule set.
func Normalize(title string) string {
	return defaultNormalizer.Normalize(title)
}
