package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plx/internal/matcher"
	"github.com/desertthunder/plx/internal/models"
)

func candidate(id, artist, title string) models.Candidate {
	return models.Candidate{CatalogID: id, Artist: artist, Title: title, Kind: models.KindTrack}
}

func TestFormatMatch(t *testing.T) {
	q := models.Query{Artist: "Adele", Title: "Hello"}
	c := candidate("v1", "Adele", "Hello (Live)")

	tests := []struct {
		name   string
		tier   models.Tier
		chosen *models.Candidate
		want   []string
	}{
		{"exact", models.TierExact, &c, []string{"Found match", "Adele - Hello", " -> ", "Adele - Hello (Live)"}},
		{"normalized", models.TierNormalized, &c, []string{"Found match", "Adele - Hello (Live)"}},
		{"user", models.TierUser, &c, []string{"User match", "Adele - Hello (Live)"}},
		{"no match", models.TierNoMatch, nil, []string{"No match", "Adele - Hello"}},
		{"no results", models.TierNoResults, nil, []string{"No results", "Adele - Hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatMatch(tt.tier, q, tt.chosen)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("expected %q in %q", want, got)
				}
			}
		})
	}

	t.Run("unresolved tier ignores chosen", func(t *testing.T) {
		if got := FormatMatch(models.TierNoMatch, q, &c); strings.Contains(got, "->") {
			t.Errorf("unexpected arrow in %q", got)
		}
	})
}

func TestReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Report(models.TierNoResults, models.Query{Artist: "A", Title: "B"}, nil)
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.Contains(line, "No results") || !strings.Contains(line, "A - B") {
			t.Errorf("garbled line %q", line)
		}
	}
}

func testChoices() []matcher.Choice {
	q := models.Query{Artist: "Adele", Title: "Hello"}
	return matcher.Choices([]models.Candidate{
		candidate("far", "Adele", "Someone Like You"),
		candidate("near", "Adele", "Hello (Live)"),
	}, q)
}

func send(m chooserModel, msgs ...tea.Msg) chooserModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(chooserModel)
	}
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestChooserModel(t *testing.T) {
	q := models.Query{Artist: "Adele", Title: "Hello"}

	t.Run("preselects the closest choice", func(t *testing.T) {
		m := newChooserModel(q, testChoices())
		if got := m.list.Index(); got != 1 {
			t.Fatalf("expected closest choice at index 1, got %d", got)
		}

		m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
		if !m.done || m.chosen == nil || m.chosen.CatalogID != "near" {
			t.Errorf("expected 'near' chosen, got %+v", m.chosen)
		}
	})

	t.Run("navigates up", func(t *testing.T) {
		m := send(newChooserModel(q, testChoices()), keyRunes("k"), tea.KeyMsg{Type: tea.KeyEnter})
		if m.chosen == nil || m.chosen.CatalogID != "far" {
			t.Errorf("expected 'far' chosen, got %+v", m.chosen)
		}
	})

	t.Run("none of these", func(t *testing.T) {
		m := send(newChooserModel(q, testChoices()), tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
		if !m.done || m.chosen != nil {
			t.Errorf("expected no choice, got %+v", m.chosen)
		}
	})

	t.Run("skip", func(t *testing.T) {
		m := send(newChooserModel(q, testChoices()), keyRunes("s"))
		if !m.done || m.chosen != nil || m.aborted {
			t.Errorf("expected skip, got %+v", m)
		}
	})

	t.Run("abort", func(t *testing.T) {
		m := send(newChooserModel(q, testChoices()), tea.KeyMsg{Type: tea.KeyCtrlC})
		if !m.aborted || m.chosen != nil {
			t.Errorf("expected abort, got %+v", m)
		}
		if m.View() != "" {
			t.Error("expected empty view after abort")
		}
	})

	t.Run("view lists choices and none", func(t *testing.T) {
		view := newChooserModel(q, testChoices()).View()
		for _, want := range []string{"Adele - Hello (Live)", "None of these", "Adele - Hello"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected %q in view", want)
			}
		}
	})
}

func TestChooserAsk(t *testing.T) {
	q := models.Query{Artist: "Adele", Title: "Hello"}

	t.Run("enter picks the preselected choice", func(t *testing.T) {
		c := NewChooser(strings.NewReader("\r"), &bytes.Buffer{}, nil)
		chosen, err := c.Ask(context.Background(), q, testChoices())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if chosen == nil || chosen.CatalogID != "near" {
			t.Errorf("expected 'near', got %+v", chosen)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := NewChooser(strings.NewReader(""), &bytes.Buffer{}, nil)
		if _, err := c.Ask(ctx, q, testChoices()); err == nil {
			t.Error("expected error for cancelled context")
		}
	})

	t.Run("abort calls back", func(t *testing.T) {
		var aborted bool
		c := NewChooser(strings.NewReader("\x03"), &bytes.Buffer{}, func() { aborted = true })
		_, err := c.Ask(context.Background(), q, testChoices())
		if !errors.Is(err, ErrAborted) || !aborted {
			t.Errorf("expected ErrAborted and callback, got %v, %v", err, aborted)
		}
	})
}
