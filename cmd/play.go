package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/mixfeed/internal/services"
	"github.com/desertthunder/mixfeed/internal/shared"
	"github.com/urfave/cli/v3"
)

// Play streams one track until it ends or the command is interrupted.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("url")
	if raw == "" {
		return fmt.Errorf("%w: url is required", shared.ErrMissingArgument)
	}
	trackURL := services.ResolveURL(r.config.Feed.BaseURL, raw)

	p := r.newPlayer(trackURL)
	defer p.Close()

	done := make(chan struct{})
	var once sync.Once
	p.Listen(nil, func() { once.Do(func() { close(done) }) })

	r.logger.Debug("starting playback", "url", trackURL)
	if err := p.Play(ctx); err != nil {
		return err
	}
	r.writePlain("▶ Playing %s (Ctrl+C to stop)\n", trackURL)

	select {
	case <-done:
		r.writePlain("■ Finished\n")
	case <-ctx.Done():
		r.writePlain("■ Stopped\n")
	}
	return nil
}
