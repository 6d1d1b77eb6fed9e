// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// feedCommand handles feed paging and export
func feedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "feed",
		Usage: "Page through and export the track feed",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print tracks from one or more feed pages",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "First page to request",
						Value: 1,
					},
					&cli.IntFlag{
						Name:    "pages",
						Aliases: []string{"n"},
						Usage:   "Number of pages to load (0 walks to the end of the feed)",
						Value:   1,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.FeedList,
			},
			{
				Name:  "export",
				Usage: "Walk the whole feed and write it to disk",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: json, csv, markdown, or text (default: config export.format)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: config export.output_dir, then feed_export_{timestamp})",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Page requests per second (default: config export.rate_limit)",
					},
					&cli.IntFlag{
						Name:  "max-pages",
						Usage: "Stop after this many pages (0 for no limit)",
					},
					&cli.BoolFlag{
						Name:  "no-cache",
						Usage: "Do not store exported tracks in the local cache",
					},
				},
				Action: r.FeedExport,
			},
		},
	}
}

// playCommand streams a single track to the speaker
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a track's audio through the speaker",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "url",
			},
		},
		Action: r.Play,
	}
}

// cacheCommand handles the local track cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and clear the local track cache",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached tracks",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks to list",
						Value: 50,
					},
					&cli.StringFlag{
						Name:  "user",
						Usage: "Only tracks uploaded by this username",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached track",
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand handles setup operations for the database, config, and session.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the track cache and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config file with default settings",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Where to write the file (default: XDG config dir)",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "session",
				Usage: "Store the site session cookie from a browser request",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.SetupSession,
			},
		},
	}
}

// apiCommand handles raw requests against the site
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Raw requests against the site, for debugging",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "GET a path on the site and print the response",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// serveCommand starts the preview server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the feed page and the browser client locally",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: config server.host:server.port)",
			},
			&cli.StringFlag{
				Name:  "static",
				Usage: "Directory holding feed.wasm and wasm_exec.js (default: config server.static_dir)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the page in the browser once listening",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for browsing the feed.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"browse", "ui"},
		Usage:   "Browse and play the feed in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI runs",
				Value: "./tmp/mixfeed-tui.log",
			},
		},
		Action: r.TUI,
	}
}
