package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/matcher"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/repositories"
	"github.com/desertthunder/plx/internal/scraper"
	"github.com/desertthunder/plx/internal/services"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
	"github.com/urfave/cli/v3"
)

const (
	defaultConfigPath = "config.toml"
	defaultSchema     = "bbc_playlister"
	defaultTimeout    = 30 * time.Second
)

// RunStore is the run history the CLI records to and reads from.
// Implemented by repositories.RunRepository.
type RunStore interface {
	tasks.RunRecorder
	Get(id string) (*models.Run, error)
	List(criteria map[string]any) ([]*models.Run, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies that are not injected are built lazily from the configuration on first use.
type Runner struct {
	config     *shared.Config
	configPath string
	catalog    services.Catalog
	scraper    tasks.Tracklister
	runs       RunStore
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	input      io.Reader
	output     io.Writer
	errOutput  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Catalog    services.Catalog
	Scraper    tasks.Tracklister
	Runs       RunStore
	HTTPClient *http.Client
	Logger     *log.Logger
	Input      io.Reader // chooser keys; nil reads the terminal
	Output     io.Writer
	ErrOutput  io.Writer // chooser screen when stdout carries JSON
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		catalog:    opts.Catalog,
		scraper:    opts.Scraper,
		runs:       opts.Runs,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		input:      opts.Input,
		output:     opts.Output,
		errOutput:  opts.ErrOutput,
	}
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "plx",
		Usage:   "Build streaming playlists from radio station tracklists",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log debug output",
			},
		},
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		buildCommand, searchCommand, playlistsCommand, stationsCommand, authCommand, setupCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Close releases the history database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// loadConfig returns the injected config or reads the file named by --config.
//
// A missing file falls back to the embedded defaults; a malformed one is an error.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	if r.config == nil {
		if path := cmd.String("config"); path != "" {
			r.configPath = path
		}
		if r.configPath == "" {
			r.configPath = defaultConfigPath
		}

		if _, err := os.Stat(r.configPath); err != nil {
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
			r.config = shared.DefaultConfig()
		} else {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return nil, err
			}
			r.config = config
		}
	}

	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	} else {
		shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Log.Level))
	}

	return r.config, nil
}

func (r *Runner) getCatalog(config *shared.Config) (services.Catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}

	catalog, err := services.NewCatalog(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog service: %w", err)
	}
	r.catalog = catalog
	return catalog, nil
}

// login builds the configured catalog and authenticates it.
func (r *Runner) login(ctx context.Context, config *shared.Config) (services.Catalog, error) {
	catalog, err := r.getCatalog(config)
	if err != nil {
		return nil, err
	}

	if err := catalog.Authenticate(ctx, services.Credentials(config)); err != nil {
		return nil, fmt.Errorf("failed to log in to %s: %w", catalog.Name(), err)
	}
	return catalog, nil
}

// runStore opens the history database on first use. A database that cannot be
// opened disables recording; builds still run.
func (r *Runner) runStore(config *shared.Config) RunStore {
	if r.runs != nil {
		return r.runs
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		r.logger.Warn("run history disabled", "path", config.Database.Path, "error", err)
		return nil
	}

	r.db = db
	r.runs = repositories.NewRunRepository(db)
	return r.runs
}

// engineConfig selects the optional parts of an engine.
type engineConfig struct {
	logger   *log.Logger
	reporter matcher.Reporter
	chooser  matcher.Disambiguator
	record   bool
}

func (r *Runner) newEngine(config *shared.Config, catalog services.Catalog, ec engineConfig) *tasks.Engine {
	if ec.logger == nil {
		ec.logger = r.logger
	}
	ec.logger = shared.WithLogger(ec.logger, "catalog", catalog.Name())

	rules := matcher.DefaultRules(matcher.RuleOptions{TreatWithAsFeat: config.Matching.TreatWithAsFeat})
	normalizer := matcher.NewNormalizer(rules)
	ec.logger.Debug("matching rules", "rules", normalizer.Rules(), "guided", ec.chooser != nil)

	resolver := matcher.NewResolver(normalizer, ec.reporter, ec.logger)
	if ec.chooser != nil {
		resolver.Guide(ec.chooser)
	}

	s := r.scraper
	if s == nil {
		s = scraper.New(r.httpClient, ec.logger)
	}

	var runs tasks.RunRecorder
	if ec.record {
		if store := r.runStore(config); store != nil {
			runs = store
		}
	}

	return tasks.NewEngine(s, catalog, resolver, runs, tasks.EngineOpts{
		Credentials: services.Credentials(config),
		Batch: matcher.BatchOpts{
			Workers:           config.Matching.Workers,
			RequestsPerSecond: config.Matching.RequestsPerSecond,
			MaxResults:        config.Catalog.MaxResults,
		},
		Logger: ec.logger,
	})
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
