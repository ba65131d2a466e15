// package tasks implements playlist builds from scraped tracklists.
//
// The core abstraction is Engine, which orchestrates login, scraping, matching, and the playlist write.
// Operations emit progress updates via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/matcher"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/scraper"
	"github.com/desertthunder/plx/internal/services"
	"github.com/desertthunder/plx/internal/shared"
)

// Tracklister fetches the tracklist of a page.
type Tracklister interface {
	Fetch(ctx context.Context, url string, schema scraper.Schema) (*models.Tracklist, error)
}

// RunRecorder persists build history. Implemented by repositories.RunRepository.
type RunRecorder interface {
	Create(run *models.Run) error
	Update(run *models.Run) error
}

// BuildOpts describes one build.
type BuildOpts struct {
	URL     string         // page to scrape
	Schema  scraper.Schema // selectors for the page
	Name    string         // overrides the scraped playlist name
	Replace bool           // overwrite the latest owned playlist with the same name
	DryRun  bool           // match only, write nothing to the catalog
}

// BuildResult contains all data from a build.
type BuildResult struct {
	Tracklist *models.Tracklist   // Scraped tracklist
	Batch     *models.BatchResult // Per-track verdicts in tracklist order
	Push      *models.PushReport  // Playlist write summary (nil for dry runs)
	Run       *models.Run         // History record (nil without a recorder)
}

// SearchResult is the outcome of matching a single query.
type SearchResult struct {
	Query      models.Query        `json:"query"`
	Candidates []models.Candidate  `json:"candidates"`
	Verdict    models.MatchVerdict `json:"verdict"`
}

// EngineOpts configures an [Engine].
type EngineOpts struct {
	Credentials map[string]string // passed to Catalog.Authenticate
	Batch       matcher.BatchOpts
	Logger      *log.Logger
}

// Engine builds playlists: it logs in, scrapes, matches and writes.
//
// Runs are recorded when a [RunRecorder] is set; recording failures are logged
// and never fail a build.
type Engine struct {
	scraper     Tracklister
	catalog     services.Catalog
	resolver    *matcher.Resolver
	batch       *matcher.Batch
	runs        RunRecorder
	credentials map[string]string
	maxResults  int
	logger      *log.Logger
}

// NewEngine creates a new Engine. runs may be nil.
func NewEngine(s Tracklister, catalog services.Catalog, resolver *matcher.Resolver, runs RunRecorder, opts EngineOpts) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Batch.MaxResults <= 0 {
		opts.Batch.MaxResults = matcher.DefaultMaxResults
	}

	return &Engine{
		scraper:     s,
		catalog:     catalog,
		resolver:    resolver,
		batch:       matcher.NewBatch(catalog, resolver, opts.Batch, logger),
		runs:        runs,
		credentials: opts.Credentials,
		maxResults:  opts.Batch.MaxResults,
		logger:      logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Login authenticates the catalog. No search is issued until it succeeds.
func (e *Engine) Login(ctx context.Context, progress chan<- ProgressUpdate) error {
	if e.catalog == nil {
		return fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, authenticateUpdate(e.catalog.Name()))
	if err := e.catalog.Authenticate(ctx, e.credentials); err != nil {
		return fmt.Errorf("failed to log in to %s: %w", e.catalog.Name(), err)
	}
	return nil
}

// Build logs in, scrapes opts.URL, matches every track and, unless this is a
// dry run, writes the resolved tracks to a playlist.
//
// A partial result is returned alongside errors raised after scraping.
func (e *Engine) Build(ctx context.Context, opts BuildOpts, progress chan<- ProgressUpdate) (*BuildResult, error) {
	if e.scraper == nil {
		return nil, fmt.Errorf("%w: scraper not initialized", shared.ErrServiceUnavailable)
	}

	if err := scraper.ValidateURL(opts.URL, opts.Schema); err != nil {
		return nil, err
	}

	if err := e.Login(ctx, progress); err != nil {
		return nil, err
	}

	e.sendProgress(progress, fetchingTracklistUpdate(opts.URL))
	tl, err := e.scraper.Fetch(ctx, opts.URL, opts.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tracklist: %w", err)
	}
	if opts.Name != "" {
		tl.Name = opts.Name
	}
	e.sendProgress(progress, foundTracklistUpdate(tl))

	result := &BuildResult{Tracklist: tl}
	result.Run = e.startRun(tl)

	result.Batch = e.batch.ResolveAll(ctx, tl.Tracks, func(stage matcher.Stage, done, total int, q models.Query) {
		if stage == matcher.StageSearch {
			e.sendProgress(progress, searchTracksUpdate(done, total, q))
		} else {
			e.sendProgress(progress, matchTracksUpdate(done, total, q))
		}
	})

	if result.Run != nil {
		result.Run.RecordBatch(result.Batch)
	}

	if err := ctx.Err(); err != nil {
		e.finishRun(result.Run, models.RunFailed, err)
		return result, err
	}

	if opts.DryRun {
		e.finishRun(result.Run, models.RunMatched, nil)
		return result, nil
	}

	report, err := e.Push(ctx, tl, result.Batch.CatalogIDs(), opts.Replace, progress)
	if err != nil {
		e.finishRun(result.Run, models.RunFailed, err)
		return result, err
	}

	result.Push = report
	if result.Run != nil {
		result.Run.SetPlaylist(report.Playlist.ID, report.Playlist.URL)
	}
	e.finishRun(result.Run, models.RunCompleted, nil)

	return result, nil
}

// Search matches a single query against the catalog. [Engine.Login] must have succeeded.
func (e *Engine) Search(ctx context.Context, q models.Query) (*SearchResult, error) {
	candidates, err := e.catalog.Search(ctx, q.SearchString(), e.maxResults)
	if err != nil {
		return nil, fmt.Errorf("search for %s failed: %w", q.Label(), err)
	}

	return &SearchResult{
		Query:      q,
		Candidates: candidates,
		Verdict:    e.resolver.Resolve(ctx, q, candidates),
	}, nil
}

func (e *Engine) startRun(tl *models.Tracklist) *models.Run {
	if e.runs == nil {
		return nil
	}

	run := models.NewRun(0, tl.Source, tl.Name, e.catalog.Name(), e.resolver.Guided())
	if err := e.runs.Create(run); err != nil {
		e.logger.Warn("failed to record run", "error", err)
		return nil
	}
	return run
}

func (e *Engine) finishRun(run *models.Run, status models.RunStatus, err error) {
	if run == nil {
		return
	}

	run.SetStatus(status, err)

	if updateErr := e.runs.Update(run); updateErr != nil {
		e.logger.Warn("failed to update run", "id", run.ID(), "error", updateErr)
	}
}
