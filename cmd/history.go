package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/ui"
	"github.com/urfave/cli/v3"
)

type runTrackView struct {
	Position  int         `json:"position"`
	Artist    string      `json:"artist"`
	Title     string      `json:"title"`
	Tier      models.Tier `json:"tier"`
	CatalogID string      `json:"catalog_id,omitempty"`
}

type runView struct {
	ID           string           `json:"id"`
	Sequence     int              `json:"sequence"`
	Source       string           `json:"source"`
	PlaylistName string           `json:"playlist_name"`
	Service      string           `json:"service"`
	Guided       bool             `json:"guided"`
	Status       models.RunStatus `json:"status"`
	Total        int              `json:"total"`
	Resolved     int              `json:"resolved"`
	Failed       int              `json:"failed"`
	PlaylistURL  string           `json:"playlist_url,omitempty"`
	Error        string           `json:"error,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	Tracks       []runTrackView   `json:"tracks,omitempty"`
}

func newRunView(run *models.Run) runView {
	v := runView{
		ID:           run.ID(),
		Sequence:     run.Sequence(),
		Source:       run.Source(),
		PlaylistName: run.PlaylistName(),
		Service:      run.Service(),
		Guided:       run.Guided(),
		Status:       run.Status(),
		Total:        run.Total(),
		Resolved:     run.Resolved(),
		Failed:       run.Failed(),
		PlaylistURL:  run.PlaylistURL(),
		Error:        run.ErrorMessage(),
		CreatedAt:    run.CreatedAt(),
	}
	for _, t := range run.Tracks() {
		v.Tracks = append(v.Tracks, runTrackView(t))
	}
	return v
}

func (r *Runner) history(cmd *cli.Command) (RunStore, error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	store := r.runStore(config)
	if store == nil {
		return nil, fmt.Errorf("%w: run history is unavailable at %s", shared.ErrInvalidConfig, config.Database.Path)
	}
	return store, nil
}

// HistoryList prints recent builds, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.history(cmd)
	if err != nil {
		return err
	}

	runs, err := store.List(map[string]any{
		"limit":   cmd.Int("limit"),
		"status":  cmd.String("status"),
		"service": cmd.String("service"),
	})
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if cmd.Bool("json") {
		views := make([]runView, 0, len(runs))
		for _, run := range runs {
			views = append(views, newRunView(run))
		}
		return r.writeJSON(views, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No builds recorded yet.\n")
	}

	r.writePlain("Found %d builds:\n\n", len(runs))
	for _, run := range runs {
		r.writePlain("#%d %s %s\n", run.Sequence(), run.PlaylistName(), statusLabel(run.Status()))
		r.writePlain("   Source: %s\n", run.Source())
		r.writePlain("   Matched: %d of %d on %s\n", run.Resolved(), run.Total(), run.Service())
		r.writePlain("   %s\n\n", ui.Muted(fmt.Sprintf("%s  %s", run.ID(), run.CreatedAt().Format(time.DateTime))))
	}

	return nil
}

// HistoryShow prints one build with the verdict recorded for each position.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run id is required", shared.ErrMissingArgument)
	}

	store, err := r.history(cmd)
	if err != nil {
		return err
	}

	run, err := store.Get(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(newRunView(run), true)
	}

	r.writePlainHeader(fmt.Sprintf("Run #%d: %s", run.Sequence(), run.PlaylistName()))
	r.writePlain("Status: %s\n", statusLabel(run.Status()))
	r.writePlain("Source: %s\n", run.Source())
	r.writePlain("Service: %s\n", run.Service())
	r.writePlain("Matched: %d of %d\n", run.Resolved(), run.Total())
	if run.PlaylistURL() != "" {
		r.writePlain("URL: %s\n", run.PlaylistURL())
	}
	if msg := run.ErrorMessage(); msg != "" {
		r.writePlain("Error: %s\n", ui.Failure(msg))
	}

	if tracks := run.Tracks(); len(tracks) > 0 {
		r.writePlain("\nTracks:\n")
		for _, t := range tracks {
			id := t.CatalogID
			if id == "" {
				id = "-"
			}
			r.writePlain("%3d. %s - %s [%s] %s\n", t.Position+1, t.Artist, t.Title, t.Tier, ui.Muted(id))
		}
	}

	return nil
}

func statusLabel(status models.RunStatus) string {
	switch status {
	case models.RunCompleted, models.RunMatched:
		return ui.Success(string(status))
	case models.RunFailed:
		return ui.Failure(string(status))
	default:
		return ui.Warning(string(status))
	}
}
