package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mixfeed/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase creates the track cache and runs pending migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Database.Path
	if path == "" {
		p, err := shared.DefaultDatabasePath()
		if err != nil {
			return fmt.Errorf("failed to resolve cache path: %w", err)
		}
		path = p
	}

	r.logger.Info("initializing database", "path", path)

	cfg := r.config.Database
	cfg.Path = path
	db, err := shared.OpenCache(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := shared.AppliedMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", path)
	r.writePlain("✓ Track cache ready at %s (%d migrations applied)\n", path, len(applied))
	return nil
}

// SetupConfig writes the default config file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if path == "" {
		path = shared.ConfigPaths("")[0]
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set feed.base_url in %s\n", path)
	r.writePlain("2. Run 'mixfeed setup session --curl-file request.sh' if the feed needs a login\n")
	return nil
}

// SetupSession stores the session cookie from a browser request copied as cURL.
func (r *Runner) SetupSession(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var curlHeaders *shared.CurlHeaders
	var err error

	if curlFile != "" {
		curlHeaders, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		curlHeaders, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	cookie := curlHeaders.SessionCookie()
	if cookie == "" {
		return fmt.Errorf("%w: no session cookie found in the request", shared.ErrInvalidInput)
	}

	path := r.configPath
	if path == "" {
		path = shared.ConfigPaths("")[0]
	}

	if err := shared.SetSessionCookie(path, cookie); err != nil {
		return err
	}

	r.config.Feed.SessionCookie = cookie
	r.logger.Info("session cookie saved", "path", path, "length", len(cookie))
	r.writePlain("✓ Session cookie saved to %s\n", path)
	return nil
}
