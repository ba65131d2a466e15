package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/plx/internal/matcher"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Search matches a single track and lists the results it was matched against.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	q, err := searchQuery(cmd.StringArg("query"), cmd.String("artist"), cmd.String("title"))
	if err != nil {
		return err
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	catalog, err := r.login(ctx, config)
	if err != nil {
		return err
	}

	useJSON := cmd.Bool("json")

	var reporter matcher.Reporter
	if !useJSON {
		reporter = ui.NewReporter(r.output)
	}

	r.logger.Info("searching", "catalog", catalog.Name(), "query", q.Label())

	result, err := r.newEngine(config, catalog, engineConfig{reporter: reporter}).Search(ctx, q)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlain("\nFound %d results:\n\n", len(result.Candidates))
	for i, c := range result.Candidates {
		marker := " "
		if result.Verdict.Chosen != nil && result.Verdict.CatalogID == c.CatalogID {
			marker = ui.Success("*")
		}
		r.writePlain("%s %d. %s\n", marker, i+1, c.Label())
		if c.Album != "" {
			r.writePlain("     Album: %s\n", c.Album)
		}
		r.writePlain("     ID: %s (%s)\n", c.CatalogID, c.Kind)
	}

	return nil
}

// searchQuery builds the query from --artist/--title or an "Artist - Title" argument.
func searchQuery(arg, artist, title string) (models.Query, error) {
	if artist != "" || title != "" {
		if artist == "" || title == "" {
			return models.Query{}, fmt.Errorf("%w: --artist and --title must be used together", shared.ErrMissingArgument)
		}
		return models.Query{Title: title, Artist: artist}, nil
	}

	if strings.TrimSpace(arg) == "" {
		return models.Query{}, fmt.Errorf("%w: a query or --artist and --title is required", shared.ErrMissingArgument)
	}

	artist, title, ok := strings.Cut(arg, " - ")
	artist, title = strings.TrimSpace(artist), strings.TrimSpace(title)
	if !ok || artist == "" || title == "" {
		return models.Query{}, fmt.Errorf(`%w: query must look like "Artist - Title"`, shared.ErrInvalidArgument)
	}
	return models.Query{Title: title, Artist: artist}, nil
}

// Playlists lists the playlists in the catalog library.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	catalog, err := r.login(ctx, config)
	if err != nil {
		return err
	}

	r.logger.Info("listing playlists", "catalog", catalog.Name())

	playlists, err := catalog.GetPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if cmd.Bool("owned") {
		owned := playlists[:0]
		for _, p := range playlists {
			if p.Owned {
				owned = append(owned, p)
			}
		}
		playlists = owned
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			r.writePlain("   Description: %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
		if !p.Owned {
			r.writePlain("   %s\n", ui.Muted("Followed"))
		}
		if p.URL != "" {
			r.writePlain("   URL: %s\n", p.URL)
		}
		r.writePlain("\n")
	}

	return nil
}

type stationView struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Schema string `json:"schema"`
}

// Stations lists the preset stations from the configuration.
func (r *Runner) Stations(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	names := config.StationNames()
	stations := make([]stationView, 0, len(names))
	for _, name := range names {
		st := config.Stations[name]
		stations = append(stations, stationView{Name: name, URL: st.URL, Schema: st.Schema})
	}

	if cmd.Bool("json") {
		return r.writeJSON(stations, true)
	}

	if len(stations) == 0 {
		return r.writePlain("No stations configured. Add [stations.<name>] entries to %s\n", r.configPath)
	}

	r.writePlain("Stations:\n\n")
	for _, st := range stations {
		r.writePlain("  %-14s %s %s\n", st.Name, st.URL, ui.Muted("("+st.Schema+")"))
	}
	r.writePlain("\nUse: plx build --station <name>\n")

	return nil
}
