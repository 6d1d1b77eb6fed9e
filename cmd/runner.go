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
	"github.com/desertthunder/mixfeed/internal/player"
	"github.com/desertthunder/mixfeed/internal/repositories"
	"github.com/desertthunder/mixfeed/internal/services"
	"github.com/desertthunder/mixfeed/internal/shared"
	"github.com/desertthunder/mixfeed/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	feed       services.Service
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
	newPlayer  func(rawURL string) player.Interface
	injected   bool // clients came from RunnerOpts and survive config reloads
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Feed       services.Service
	API        *services.APIService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
	NewPlayer  func(rawURL string) player.Interface
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		feed:       opts.Feed,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
		newPlayer:  opts.NewPlayer,
		injected:   opts.Feed != nil,
	}
	r.wireServices()
	return r
}

// wireServices fills in the feed and API clients the caller did not inject.
func (r *Runner) wireServices() {
	feedCfg := r.config.Feed
	if r.feed == nil {
		r.feed = services.NewFeedClientFromConfig(feedCfg, r.httpClient, r.logger)
	}
	if r.api == nil {
		r.api = services.NewAPIService(feedCfg.BaseURL, r.httpClient).
			WithHeader("Cookie", feedCfg.SessionCookie).
			WithHeader("User-Agent", feedCfg.UserAgent)
	}
	if r.newPlayer == nil {
		source := player.HTTPSource(&http.Client{}, feedCfg.SessionCookie)
		buffer := time.Duration(r.config.Player.BufferMS) * time.Millisecond
		logger := r.logger
		r.newPlayer = func(rawURL string) player.Interface {
			return player.New(rawURL, player.Options{Buffer: buffer, Source: source, Logger: logger})
		}
	}
}

// Before resolves the configuration named by the global flags and rebuilds the clients from it.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	config, path, err := shared.ResolveConfig(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	if path != "" {
		r.logger.Debug("loaded config", "path", path)
		r.configPath = path
	} else if explicit := cmd.String("config"); explicit != "" {
		r.configPath = explicit
	}

	r.config = config
	if !r.injected {
		r.feed, r.api, r.newPlayer = nil, nil, nil
	}
	r.wireServices()
	return ctx, nil
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// openCache returns the track cache, opening it on first use.
func (r *Runner) openCache() (*repositories.TrackRepository, error) {
	if r.db == nil {
		db, err := shared.OpenCache(r.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open track cache: %w", err)
		}
		r.db = db
	}
	return repositories.NewTrackRepository(r.db), nil
}

// Close releases the cache connection.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// engine builds a feed engine, caching tracks when cacher is not nil.
func (r *Runner) engine(cacher tasks.TrackCacher) *tasks.FeedEngine {
	return tasks.NewFeedEngine(r.feed, cacher, r.logger)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		feedCommand, playCommand, cacheCommand, setupCommand, apiCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
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
