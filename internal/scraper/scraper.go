// Package scraper extracts tracklists from HTML pages using CSS selector schemas.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

// MetaDescription as PlaylistDescriptionSelector reads <meta name="description">.
const MetaDescription = "meta"

const userAgent = "plx/1.0 (+https://github.com/desertthunder/plx)"

// Schema describes where the tracks of one kind of page live.
//
// Its fields mirror [shared.SchemaConfig], so a configured schema converts directly.
type Schema struct {
	URLPattern                  string
	TracklistSelector           string
	TrackSelector               string
	ArtistSelector              string
	AltArtistSelector           string
	TitleSelector               string
	PlaylistNameSelector        string
	PlaylistDescriptionSelector string
}

// FromConfig converts a configured schema.
func FromConfig(c shared.SchemaConfig) Schema {
	return Schema(c)
}

// Scraper fetches and parses tracklist pages.
type Scraper struct {
	client *http.Client
	logger *log.Logger
}

// New creates a [Scraper]. A nil client gets a 30 second timeout.
func New(client *http.Client, logger *log.Logger) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Scraper{client: client, logger: logger}
}

// ValidateURL checks that rawURL is an absolute http(s) URL accepted by the schema's URL pattern.
func ValidateURL(rawURL string, schema Schema) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute http(s) URL", shared.ErrInvalidURL, rawURL)
	}

	if schema.URLPattern == "" {
		return nil
	}

	pattern, err := regexp.Compile(schema.URLPattern)
	if err != nil {
		return fmt.Errorf("%w: url pattern %q: %v", shared.ErrInvalidConfig, schema.URLPattern, err)
	}
	if !pattern.MatchString(rawURL) {
		return fmt.Errorf("%w: %q does not match %q", shared.ErrInvalidURL, rawURL, schema.URLPattern)
	}

	return nil
}

// Fetch downloads rawURL and parses it with schema.
func (s *Scraper) Fetch(ctx context.Context, rawURL string, schema Schema) (*models.Tracklist, error) {
	if err := ValidateURL(rawURL, schema); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	s.logger.Debug("fetching tracklist", "url", rawURL)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET %s returned status %d", shared.ErrAPIRequest, rawURL, resp.StatusCode)
	}

	return s.Parse(resp.Body, rawURL, schema)
}

// Parse reads a tracklist page. Tracks missing a title or an artist are skipped.
func (s *Scraper) Parse(r io.Reader, source string, schema Schema) (*models.Tracklist, error) {
	if schema.TrackSelector == "" || schema.TitleSelector == "" || schema.ArtistSelector == "" {
		return nil, fmt.Errorf("%w: schema needs track, title and artist selectors", shared.ErrInvalidSelector)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	tracks := doc.Selection
	if schema.TracklistSelector != "" {
		tracks = doc.Find(schema.TracklistSelector)
	}

	list := &models.Tracklist{
		Name:        text(doc.Selection, schema.PlaylistNameSelector),
		Description: Describe(description(doc, schema.PlaylistDescriptionSelector), source),
		Source:      source,
	}

	tracks.Find(schema.TrackSelector).Each(func(i int, sel *goquery.Selection) {
		q := models.Query{
			Artist: firstText(sel, schema.ArtistSelector, schema.AltArtistSelector),
			Title:  text(sel, schema.TitleSelector),
		}
		if q.Artist == "" || q.Title == "" {
			s.logger.Warn("skipping incomplete track", "position", i, "artist", q.Artist, "title", q.Title)
			return
		}
		list.Tracks = append(list.Tracks, q)
	})

	if len(list.Tracks) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrEmptyTracklist, source)
	}

	s.logger.Debug("parsed tracklist", "name", list.Name, "tracks", len(list.Tracks))
	return list, nil
}

// Describe appends the source URL to a scraped description.
func Describe(description, source string) string {
	if description == "" {
		return "source: " + source
	}
	return fmt.Sprintf("%s | source: %s", description, source)
}

func description(doc *goquery.Document, selector string) string {
	switch selector {
	case "":
		return ""
	case MetaDescription:
		content, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
		return clean(content)
	default:
		return text(doc.Selection, selector)
	}
}

// firstText returns the text of the first selector that yields any.
func firstText(sel *goquery.Selection, selectors ...string) string {
	for _, selector := range selectors {
		if t := text(sel, selector); t != "" {
			return t
		}
	}
	return ""
}

func text(sel *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return clean(sel.Find(selector).First().Text())
}

// clean collapses runs of whitespace.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
