package main

import (
	"context"
	"fmt"
	"net"

	"github.com/desertthunder/mixfeed/internal/server"
	"github.com/desertthunder/mixfeed/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the preview server until the command is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}
	staticDir := cmd.String("static")
	if staticDir == "" {
		staticDir = r.config.Server.StaticDir
	}

	srv := server.New(server.Options{
		Fetcher:   r.feed,
		BaseURL:   r.config.Feed.BaseURL,
		StaticDir: staticDir,
		Title:     "mixfeed",
		Logger:    r.logger,
	})

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	pageURL := "http://" + listener.Addr().String() + "/"
	r.writePlain("Serving the feed at %s\n", pageURL)

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(pageURL); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	return srv.Serve(ctx, listener)
}
