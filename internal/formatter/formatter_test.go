package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
	th "github.com/desertthunder/plx/internal/testing"
)

func newReport() *Report {
	return &Report{
		Tracklist: &models.Tracklist{
			Name:   "Radio 1 Playlist",
			Source: "https://www.bbc.co.uk/radio1/playlist",
			Tracks: []models.Query{
				{Title: "Hello", Artist: "Adele"},
				{Title: "Yellow (Radio Edit)", Artist: "Coldplay"},
				{Title: "Unknown | Song", Artist: "Nobody"},
			},
		},
		Batch: &models.BatchResult{
			Matches: []models.TrackMatch{
				{
					Position: 0,
					Query:    models.Query{Title: "Hello", Artist: "Adele"},
					Verdict:  models.Matched(models.TierExact, models.Candidate{CatalogID: "v1", Title: "Hello", Artist: "Adele"}),
				},
				{
					Position: 1,
					Query:    models.Query{Title: "Yellow (Radio Edit)", Artist: "Coldplay"},
					Verdict:  models.Matched(models.TierNormalized, models.Candidate{CatalogID: "v2", Title: "Yellow", Artist: "Coldplay"}),
				},
				{
					Position: 2,
					Query:    models.Query{Title: "Unknown | Song", Artist: "Nobody"},
					Verdict:  models.NoResults(),
				},
			},
			Resolved: 2,
		},
		Push: &models.PushReport{
			Playlist: models.Playlist{ID: "PL1", Name: "Radio 1", URL: "https://music.youtube.com/playlist?list=PL1"},
			Mode:     models.PushReplaced,
			Pushed:   2,
			Cut:      5,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in   string
		want Format
	}{
		{"csv", FormatCSV},
		{".csv", FormatCSV},
		{"markdown", FormatMarkdown},
		{".MD", FormatMarkdown},
		{"text", FormatText},
		{".txt", FormatText},
		{"json", FormatJSON},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		if _, err := ParseFormat(".xlsx"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestExporters(t *testing.T) {
	r := newReport()

	t.Run("Summary", func(t *testing.T) {
		if got := r.Summary(); got != "matched 2 of 3 tracks (66.7%)" {
			t.Errorf("unexpected summary %q", got)
		}
		if got := (&Report{}).Summary(); got != "matched 0 of 0 tracks" {
			t.Errorf("unexpected empty summary %q", got)
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(r)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected header plus 3 rows, got %d: %q", len(lines), lines)
		}
		if lines[0] != "Position,Artist,Title,Tier,CatalogID,Chosen" {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		if lines[2] != "2,Coldplay,Yellow (Radio Edit),normalized,v2,Coldplay - Yellow" {
			t.Errorf("unexpected normalized row %q", lines[2])
		}
		if lines[3] != "3,Nobody,Unknown | Song,no_results,," {
			t.Errorf("unexpected unmatched row %q", lines[3])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(r)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		output := string(data)

		for _, want := range []string{
			"# Radio 1\n",
			"**Source**: https://www.bbc.co.uk/radio1/playlist",
			"**Playlist**: [Radio 1](https://music.youtube.com/playlist?list=PL1)",
			"**Mode**: replaced (2 added, 5 removed)",
			"**Result**: matched 2 of 3 tracks",
			"- exact: 1\n",
			"- normalized: 1\n",
			"- no_results: 1\n",
			"| 1 | Adele - Hello | exact | Adele - Hello |",
			`| 3 | Nobody - Unknown \| Song | no_results |  |`,
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown without push", func(t *testing.T) {
		dry := newReport()
		dry.Push = nil

		data, err := ExportToMarkdown(dry)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		output := string(data)
		if !strings.HasPrefix(output, "# Radio 1 Playlist\n") {
			t.Errorf("expected tracklist name as title, got %q", output)
		}
		if strings.Contains(output, "**Playlist**") || strings.Contains(output, "**Mode**") {
			t.Errorf("dry run report should not mention a playlist:\n%s", output)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(r)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		output := string(data)

		if !strings.Contains(output, "Playlist: Radio 1\n") || !strings.Contains(output, "URL: https://music.youtube.com/playlist?list=PL1") {
			t.Errorf("Text missing header, got:\n%s", output)
		}
		if !strings.Contains(output, "2. Coldplay - Yellow (Radio Edit) -> Coldplay - Yellow [normalized]") {
			t.Errorf("Text missing matched line, got:\n%s", output)
		}
		if !strings.Contains(output, "Unmatched:\n  Nobody - Unknown | Song\n") {
			t.Errorf("Text missing unmatched section, got:\n%s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(r)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded struct {
			Batch struct {
				Matches []struct {
					Verdict struct {
						Tier      string `json:"tier"`
						CatalogID string `json:"catalog_id"`
					} `json:"verdict"`
				} `json:"matches"`
				Resolved int `json:"resolved"`
			} `json:"batch"`
			Push *struct {
				Pushed int `json:"pushed"`
			} `json:"push"`
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Batch.Resolved != 2 || len(decoded.Batch.Matches) != 3 {
			t.Errorf("unexpected batch %+v", decoded.Batch)
		}
		if decoded.Batch.Matches[1].Verdict.Tier != "normalized" || decoded.Batch.Matches[1].Verdict.CatalogID != "v2" {
			t.Errorf("unexpected verdict %+v", decoded.Batch.Matches[1].Verdict)
		}
		if decoded.Push == nil || decoded.Push.Pushed != 2 {
			t.Errorf("unexpected push %+v", decoded.Push)
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		empty := &Report{Tracklist: &models.Tracklist{Name: "Empty"}}
		for _, f := range []Format{FormatCSV, FormatMarkdown, FormatText, FormatJSON} {
			if _, err := Export(empty, f); err != nil {
				t.Errorf("Export(%s) failed: %v", f, err)
			}
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := Export(r, Format("xml")); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestWriteReport(t *testing.T) {
	r := newReport()

	t.Run("format from extension", func(t *testing.T) {
		tc := []struct {
			file string
			want string
		}{
			{"report.csv", "Position,Artist,Title,Tier,CatalogID,Chosen"},
			{"report.md", "# Radio 1"},
			{"report.txt", "Playlist: Radio 1"},
			{"report.json", `"tracklist"`},
		}

		dir := t.TempDir()
		for _, tt := range tc {
			t.Run(tt.file, func(t *testing.T) {
				path := filepath.Join(dir, tt.file)
				if err := WriteReport(r, path, ""); err != nil {
					t.Fatalf("WriteReport failed: %v", err)
				}
				th.AssertFileExists(t, path)
				if content := th.MustReadFile(t, path); !strings.Contains(content, tt.want) {
					t.Errorf("expected %q in %s, got:\n%s", tt.want, tt.file, content)
				}
			})
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reports", "2025", "radio1.md")
		if err := WriteReport(r, path, ""); err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("relative path in working directory", func(t *testing.T) {
		th.MustChdir(t, t.TempDir())
		if err := WriteReport(r, "out.txt", ""); err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		th.AssertFileExists(t, "out.txt")
	})

	t.Run("explicit format wins over extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.log")
		if err := WriteReport(r, path, "json"); err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		if content := th.MustReadFile(t, path); !strings.HasPrefix(content, "{") {
			t.Errorf("expected JSON content, got:\n%s", content)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.xlsx")
		if err := WriteReport(r, path, ""); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
