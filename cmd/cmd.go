// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// buildCommand scrapes a tracklist and writes the matches to a playlist
func buildCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Build a playlist from a tracklist page",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "Tracklist page to scrape",
			},
			&cli.StringFlag{
				Name:    "station",
				Aliases: []string{"s"},
				Usage:   "Preset station name (see `plx stations`)",
			},
			&cli.StringFlag{
				Name:  "schema",
				Usage: "Selector schema for the page (default: the station's schema or " + defaultSchema + ")",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Playlist name (default: the scraped page title)",
			},
			&cli.BoolFlag{
				Name:    "guided",
				Aliases: []string{"g"},
				Usage:   "Ask which result to use when no result matches automatically",
			},
			&cli.BoolFlag{
				Name:  "replace",
				Usage: "Overwrite your newest playlist with the same name",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Match tracks without writing a playlist",
			},
			&cli.StringFlag{
				Name:    "report",
				Aliases: []string{"o"},
				Usage:   "Write a match report to this file",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Report format: csv, markdown, txt or json (default: from the report extension)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the result as JSON",
			},
		},
		Action: r.Build,
	}
}

// searchCommand matches a single track
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: `Search the catalog for one track ("Artist - Title") and show the verdict`,
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "artist",
				Usage: "Track artist",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Track title",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Search,
	}
}

// playlistsCommand lists the catalog library
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "List playlists in your library",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "owned",
				Usage: "Only show playlists you created",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Playlists,
	}
}

// stationsCommand lists the configured presets
func stationsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stations",
		Usage: "List preset stations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Stations,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage catalog authentication",
		Commands: []*cli.Command{
			{
				Name:   "spotify",
				Usage:  "Authenticate with Spotify using OAuth2",
				Action: r.AuthSpotify,
			},
			{
				Name:    "youtube",
				Aliases: []string{"yt", "ytmusic"},
				Usage:   "Configure YouTube Music authentication from browser headers",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Output path for browser.json (default: ~/.plx/browser.json)",
					},
				},
				Action: r.AuthYouTube,
			},
			{
				Name:   "status",
				Usage:  "Check that the configured catalog accepts your credentials",
				Action: r.AuthStatus,
			},
		},
	}
}

// setupCommand handles first-run setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file with the default settings",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the history database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// historyCommand reads recorded builds
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show previous builds",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent builds",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of builds to show",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (pending, matched, completed, failed)",
					},
					&cli.StringFlag{
						Name:  "service",
						Usage: "Filter by catalog service",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show the per-track verdicts of one build",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryShow,
			},
		},
	}
}
