package matcher

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/models"
	"golang.org/x/time/rate"
)

// DefaultMaxResults is the number of results requested per search.
const DefaultMaxResults = 5

// Searcher is the part of a catalog the batch needs.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]models.Candidate, error)
}

// Stage identifies which half of [Batch.ResolveAll] a progress callback belongs to.
type Stage int

const (
	StageSearch Stage = iota
	StageMatch
)

func (s Stage) String() string {
	if s == StageSearch {
		return "search"
	}
	return "match"
}

// ProgressFunc is called after each search completes and after each query is
// resolved. Searches complete in any order; resolutions in input order.
type ProgressFunc func(stage Stage, done, total int, q models.Query)

// BatchOpts configures a [Batch].
type BatchOpts struct {
	Workers           int     // concurrent searches (default 4, max 10)
	RequestsPerSecond float64 // search rate limit (default 5)
	MaxResults        int     // results requested per search (default 5)
}

// Batch matches a whole tracklist.
type Batch struct {
	searcher   Searcher
	resolver   *Resolver
	limiter    *rate.Limiter
	workers    int
	maxResults int
	logger     *log.Logger
}

// NewBatch creates a [Batch] searching with s and deciding with r.
func NewBatch(s Searcher, r *Resolver, opts BatchOpts, logger *log.Logger) *Batch {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Workers > 10 {
		opts.Workers = 10
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Batch{
		searcher:   s,
		resolver:   r,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		workers:    opts.Workers,
		maxResults: opts.MaxResults,
		logger:     logger,
	}
}

type searchJob struct {
	index int
	query models.Query
}

type searchResult struct {
	index      int
	candidates []models.Candidate
	err        error
}

// ResolveAll searches every query and resolves the results in input order.
//
// A failed search yields [models.TierNoResults] for its query and never aborts
// the batch. Once ctx is done no further searches are issued; the remaining
// queries resolve to [models.TierNoResults] carrying the context error.
func (b *Batch) ResolveAll(ctx context.Context, queries []models.Query, progress ProgressFunc) *models.BatchResult {
	slots := b.searchAll(ctx, queries, progress)

	result := &models.BatchResult{Matches: make([]models.TrackMatch, len(queries))}

	for i, q := range queries {
		slot := slots[i]
		candidates := slot.candidates
		if slot.err != nil {
			candidates = nil
			result.SearchFailures++
		}
		verdict := b.resolver.Resolve(ctx, q, candidates)

		result.Matches[i] = models.TrackMatch{Position: i, Query: q, Verdict: verdict, Err: slot.err}
		if verdict.Tier.Resolved() {
			result.Resolved++
		}

		if progress != nil {
			progress(StageMatch, i+1, len(queries), q)
		}
	}

	return result
}

// searchAll fans the searches out over the worker pool. Each result lands in
// the slot matching its query index.
func (b *Batch) searchAll(ctx context.Context, queries []models.Query, progress ProgressFunc) []searchResult {
	slots := make([]searchResult, len(queries))
	if len(queries) == 0 {
		return slots
	}

	jobs := make(chan searchJob, len(queries))
	results := make(chan searchResult, len(queries))

	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go b.searchWorker(ctx, &wg, jobs, results)
	}

	for i, q := range queries {
		jobs <- searchJob{index: i, query: q}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		slots[res.index] = res
		if progress != nil {
			progress(StageSearch, completed, len(queries), queries[res.index])
		}
	}

	return slots
}

// searchWorker runs searches from jobs until the channel is drained. After ctx
// is done it still drains jobs, recording the context error for each.
func (b *Batch) searchWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan searchJob, results chan<- searchResult) {
	defer wg.Done()

	for job := range jobs {
		res := searchResult{index: job.index}

		if err := ctx.Err(); err != nil {
			res.err = err
			results <- res
			continue
		}

		if err := b.limiter.Wait(ctx); err != nil {
			res.err = err
			results <- res
			continue
		}

		candidates, err := b.searcher.Search(ctx, job.query.SearchString(), b.maxResults)
		if err != nil {
			b.logger.Warn("search failed", "query", job.query.Label(), "error", err)
			res.err = err
		}
		res.candidates = candidates
		results <- res
	}
}
