package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/formatter"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/scraper"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
	"github.com/desertthunder/plx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Build scrapes a tracklist, matches every track and writes the playlist.
//
// In guided mode logs go to the configured log file while the chooser owns the terminal.
// With --json the chooser draws on stderr so stdout stays one JSON document.
func (r *Runner) Build(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	url, schema, err := target(config, cmd.String("url"), cmd.String("station"), cmd.String("schema"))
	if err != nil {
		return err
	}

	catalog, err := r.getCatalog(config)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var aborted atomic.Bool
	ec := engineConfig{logger: r.logger, record: true}
	if !cmd.Bool("json") {
		ec.reporter = ui.NewReporter(r.output)
	}

	if cmd.Bool("guided") || config.Matching.Guided {
		fileLogger, closer := shared.NewFileLogger(config.Log.File)
		defer closer.Close()
		shared.SetLogLevel(fileLogger, r.logger.GetLevel())

		r.logger.Info("guided mode, logging to file", "path", config.Log.File)
		ec.logger = fileLogger
		screen := r.output
		if cmd.Bool("json") {
			screen = r.errOutput
		}
		ec.chooser = ui.NewChooser(r.input, screen, func() {
			aborted.Store(true)
			cancel()
		})
	}

	engine := r.newEngine(config, catalog, ec)

	opts := tasks.BuildOpts{
		URL:     url,
		Schema:  schema,
		Name:    cmd.String("name"),
		Replace: cmd.Bool("replace") || config.Playlist.ReplaceExisting,
		DryRun:  cmd.Bool("dry-run"),
	}
	ec.logger.Info("starting build", "url", url, "catalog", catalog.Name(), "replace", opts.Replace, "dry_run", opts.DryRun)

	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			logProgress(ec.logger, update)
		}
	}()

	result, buildErr := engine.Build(ctx, opts, progress)
	close(progress)
	<-done

	if result != nil {
		report := &formatter.Report{Tracklist: result.Tracklist, Batch: result.Batch, Push: result.Push}

		if path := cmd.String("report"); path != "" {
			if err := formatter.WriteReport(report, path, cmd.String("format")); err != nil {
				r.logger.Warn("failed to write report", "path", path, "error", err)
			} else {
				r.logger.Info("report written", "path", path)
			}
		}

		if cmd.Bool("json") {
			if err := r.writeJSON(report, true); err != nil {
				return err
			}
		} else {
			r.writeSummary(report, result.Run)
		}
	}

	if buildErr != nil {
		if aborted.Load() {
			return ui.ErrAborted
		}
		return buildErr
	}
	return nil
}

// target resolves the page to scrape and its selector schema from --url or --station.
func target(config *shared.Config, url, station, schemaName string) (string, scraper.Schema, error) {
	switch {
	case url != "" && station != "":
		return "", scraper.Schema{}, fmt.Errorf("%w: --url and --station cannot be combined", shared.ErrInvalidArgument)
	case station != "":
		st, err := config.Station(station)
		if err != nil {
			return "", scraper.Schema{}, err
		}
		url = st.URL
		if schemaName == "" {
			schemaName = st.Schema
		}
	case url == "":
		return "", scraper.Schema{}, fmt.Errorf("%w: either --url or --station must be provided", shared.ErrMissingArgument)
	}

	if schemaName == "" {
		schemaName = defaultSchema
	}

	sc, err := config.Schema(schemaName)
	if err != nil {
		return "", scraper.Schema{}, err
	}
	return url, scraper.FromConfig(sc), nil
}

func logProgress(logger *log.Logger, update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.SearchTracks, tasks.MatchTracks:
		logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
	default:
		logger.Info(update.Message, "phase", update.Phase)
	}
}

func (r *Runner) writeSummary(report *formatter.Report, run *models.Run) {
	title := "Build Complete!"
	if report.Push == nil {
		title = "Matching Complete!"
	}

	r.writePlainln("")
	r.writePlainHeader(title)

	if report.Tracklist != nil {
		r.writePlain("Source: %s\n", report.Tracklist.Source)
	}
	r.writePlain("%s\n", report.Summary())

	if push := report.Push; push != nil {
		r.writePlain("%s Playlist %s: %s\n", ui.Success("✓"), push.Mode, push.Playlist.Name)
		r.writePlain("Tracks added: %d\n", push.Pushed)
		if push.Mode == models.PushReplaced {
			r.writePlain("Tracks removed: %d\n", push.Cut)
		}
		if push.Playlist.URL != "" {
			r.writePlain("URL: %s\n", push.Playlist.URL)
		}
	}

	if report.Batch != nil {
		if unmatched := report.Batch.Unmatched(); len(unmatched) > 0 {
			r.writePlain("\nNo match for %d tracks:\n", len(unmatched))
			for _, q := range unmatched {
				r.writePlain("  - %s\n", q.Label())
			}
		}
		if report.Batch.SearchFailures > 0 {
			r.writePlain("%s %d searches failed\n", ui.Warning("⚠"), report.Batch.SearchFailures)
		}
	}

	if run != nil {
		r.writePlain("\n%s\n", ui.Muted(fmt.Sprintf("Recorded as run %s", run.ID())))
	}
}
