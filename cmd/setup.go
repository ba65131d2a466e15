package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/plx/internal/services"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/ui"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the embedded example config to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		path = defaultConfigPath
	}

	r.logger.Info("creating config file", "path", path)

	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	r.configPath = path
	r.writePlain("%s Config written to %s\n", ui.Success("✓"), path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set [catalog] service to %q or %q\n", services.ServiceYouTube, services.ServiceSpotify)
	r.writePlain("2. Run 'plx auth youtube' or 'plx auth spotify'\n")
	r.writePlain("3. Run 'plx stations' to see the preset tracklists\n")
	return nil
}

// SetupDatabase initializes the history database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	version, err := shared.MigrationVersion(db)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("%s Database ready at %s (schema version %d)\n", ui.Success("✓"), config.Database.Path, version)
	return nil
}
