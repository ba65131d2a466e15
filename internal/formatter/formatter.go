// package formatter renders match reports to CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

// Format selects an exporter.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or a file extension with or without the dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unsupported report format %q", shared.ErrInvalidArgument, s)
	}
}

// Report is everything known about one build: what was scraped, how each track
// matched and, when the playlist was written, what the push did.
type Report struct {
	Tracklist *models.Tracklist   `json:"tracklist"`
	Batch     *models.BatchResult `json:"batch"`
	Push      *models.PushReport  `json:"push,omitempty"`
}

func (r *Report) name() string {
	if r.Push != nil && r.Push.Playlist.Name != "" {
		return r.Push.Playlist.Name
	}
	if r.Tracklist != nil {
		return r.Tracklist.Name
	}
	return ""
}

// Summary is the one-line outcome, e.g. "matched 18 of 20 tracks (90.0%)".
func (r *Report) Summary() string {
	if r.Batch == nil {
		return "matched 0 of 0 tracks"
	}
	return fmt.Sprintf("matched %d of %d tracks (%.1f%%)", r.Batch.Resolved, r.Batch.Total(), r.Batch.MatchPercentage())
}

func chosenLabel(m models.TrackMatch) string {
	if m.Verdict.Chosen == nil {
		return ""
	}
	return m.Verdict.Chosen.Label()
}

// ExportToCSV writes one row per track with columns: Position, Artist, Title, Tier, CatalogID, Chosen
func ExportToCSV(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Artist", "Title", "Tier", "CatalogID", "Chosen"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	if r.Batch != nil {
		for _, m := range r.Batch.Matches {
			record := []string{
				strconv.Itoa(m.Position + 1),
				m.Query.Artist,
				m.Query.Title,
				m.Verdict.Tier.String(),
				m.Verdict.CatalogID,
				chosenLabel(m),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a summary header, the tier breakdown and a track table
func ExportToMarkdown(r *Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", r.name()))

	if r.Tracklist != nil && r.Tracklist.Source != "" {
		buf.WriteString(fmt.Sprintf("**Source**: %s\n\n", r.Tracklist.Source))
	}
	if r.Push != nil {
		if r.Push.Playlist.URL != "" {
			buf.WriteString(fmt.Sprintf("**Playlist**: [%s](%s)\n\n", r.Push.Playlist.Name, r.Push.Playlist.URL))
		}
		buf.WriteString(fmt.Sprintf("**Mode**: %s (%d added, %d removed)\n\n", r.Push.Mode, r.Push.Pushed, r.Push.Cut))
	}

	buf.WriteString(fmt.Sprintf("**Result**: %s\n\n", r.Summary()))

	if r.Batch == nil || r.Batch.Total() == 0 {
		return buf.Bytes(), nil
	}

	counts := r.Batch.TierCounts()
	buf.WriteString("## Tiers\n\n")
	for t := models.TierExact; t <= models.TierUser; t++ {
		buf.WriteString(fmt.Sprintf("- %s: %d\n", t, counts[t]))
	}
	buf.WriteString(fmt.Sprintf("- %s: %d\n", models.TierNoMatch, counts[models.TierNoMatch]))
	buf.WriteString(fmt.Sprintf("- %s: %d\n\n", models.TierNoResults, counts[models.TierNoResults]))

	buf.WriteString("## Tracks\n\n")
	buf.WriteString("| # | Track | Tier | Match |\n")
	buf.WriteString("|---|-------|------|-------|\n")
	for _, m := range r.Batch.Matches {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n",
			m.Position+1, escapeCell(m.Query.Label()), m.Verdict.Tier, escapeCell(chosenLabel(m))))
	}

	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// ExportToText renders the report as plain text with unmatched tracks listed last
func ExportToText(r *Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", r.name()))
	if r.Push != nil && r.Push.Playlist.URL != "" {
		buf.WriteString(fmt.Sprintf("URL: %s\n", r.Push.Playlist.URL))
	}
	buf.WriteString(r.Summary() + "\n\n")

	if r.Batch == nil {
		return buf.Bytes(), nil
	}

	for _, m := range r.Batch.Matches {
		if !m.Verdict.Tier.Resolved() {
			continue
		}
		buf.WriteString(fmt.Sprintf("%d. %s -> %s [%s]\n", m.Position+1, m.Query.Label(), chosenLabel(m), m.Verdict.Tier))
	}

	if unmatched := r.Batch.Unmatched(); len(unmatched) > 0 {
		buf.WriteString("\nUnmatched:\n")
		for _, q := range unmatched {
			buf.WriteString(fmt.Sprintf("  %s\n", q.Label()))
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the whole report as indented JSON
func ExportToJSON(r *Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// Export renders r in the given format.
func Export(r *Report, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(r)
	case FormatMarkdown:
		return ExportToMarkdown(r)
	case FormatText:
		return ExportToText(r)
	case FormatJSON:
		return ExportToJSON(r)
	default:
		return nil, fmt.Errorf("%w: unsupported report format %q", shared.ErrInvalidArgument, f)
	}
}

// WriteReport writes r to path. An empty format is taken from the file extension.
//
// Missing parent directories are created.
func WriteReport(r *Report, path, format string) error {
	if format == "" {
		format = filepath.Ext(path)
	}
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}

	data, err := Export(r, f)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}
