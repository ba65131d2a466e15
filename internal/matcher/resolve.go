package matcher

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/models"
)

// Reporter receives exactly one notification per resolved query.
type Reporter interface {
	Report(tier models.Tier, q models.Query, chosen *models.Candidate)
}

// Disambiguator asks a human to pick one of choices for q. A nil candidate
// means "none of these". Implementations block until answered or ctx is done.
type Disambiguator interface {
	Ask(ctx context.Context, q models.Query, choices []Choice) (*models.Candidate, error)
}

// Resolver turns the search results of one query into a [models.MatchVerdict].
type Resolver struct {
	normalizer    *Normalizer
	reporter      Reporter
	disambiguator Disambiguator
	logger        *log.Logger
}

// NewResolver creates a [Resolver]. A nil normalizer uses the default rules and
// a nil reporter discards reports.
func NewResolver(normalizer *Normalizer, reporter Reporter, logger *log.Logger) *Resolver {
	if normalizer == nil {
		normalizer = defaultNormalizer
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{normalizer: normalizer, reporter: reporter, logger: logger}
}

// Guide enables guided mode: queries without an automatic match are handed to d.
func (r *Resolver) Guide(d Disambiguator) *Resolver {
	r.disambiguator = d
	return r
}

// Guided reports whether a disambiguator is configured.
func (r *Resolver) Guided() bool {
	return r.disambiguator != nil
}

// Resolve applies the tiers in order and reports the outcome once.
func (r *Resolver) Resolve(ctx context.Context, q models.Query, cs []models.Candidate) models.MatchVerdict {
	verdict := r.resolve(ctx, q, cs)
	if r.reporter != nil {
		r.reporter.Report(verdict.Tier, q, verdict.Chosen)
	}
	return verdict
}

func (r *Resolver) resolve(ctx context.Context, q models.Query, cs []models.Candidate) models.MatchVerdict {
	if len(cs) == 0 {
		return models.NoResults()
	}

	if verdict, ok := r.automatic(q, cs); ok {
		return verdict
	}

	if r.disambiguator == nil {
		return models.NoMatch()
	}

	choices := r.normalizer.Choices(cs, q)
	if len(choices) == 0 {
		return models.NoMatch()
	}

	chosen, err := r.disambiguator.Ask(ctx, q, choices)
	if err != nil {
		r.logger.Warn("disambiguation failed", "query", q.Label(), "error", err)
		return models.NoMatch()
	}
	if chosen == nil {
		return models.NoMatch()
	}

	return models.Matched(models.TierUser, *chosen)
}

// automatic walks the candidates once; the first valid candidate that matches
// exactly or after normalization wins.
func (r *Resolver) automatic(q models.Query, cs []models.Candidate) (models.MatchVerdict, bool) {
	normalized := r.normalizer.Normalize(q.Title)

	for _, c := range cs {
		if !Valid(c, &q) {
			continue
		}
		if strings.EqualFold(c.Title, q.Title) {
			return models.Matched(models.TierExact, c), true
		}
		if r.normalizer.Normalize(c.Title) == normalized {
			return models.Matched(models.TierNormalized, c), true
		}
	}

	return models.MatchVerdict{}, false
}
