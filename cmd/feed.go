package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/mixfeed/internal/formatter"
	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/desertthunder/mixfeed/internal/render"
	"github.com/desertthunder/mixfeed/internal/repositories"
	"github.com/desertthunder/mixfeed/internal/shared"
	"github.com/desertthunder/mixfeed/internal/tasks"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// FeedList prints the tracks of one or more pages, deduplicated by slug.
func (r *Runner) FeedList(ctx context.Context, cmd *cli.Command) error {
	start := int(cmd.Int("page"))
	pages := int(cmd.Int("pages"))
	if start < 1 {
		return fmt.Errorf("%w: --page must be at least 1", shared.ErrInvalidFlag)
	}
	if pages < 0 {
		return fmt.Errorf("%w: --pages must not be negative", shared.ErrInvalidFlag)
	}

	r.logger.Info("listing feed", "start", start, "pages", pages)

	result, err := r.engine(nil).Walk(ctx, nil, tasks.WalkOpts{
		StartPage: start,
		MaxPages:  pages,
		RateLimit: r.config.Export.RateLimit,
	})
	if err != nil && (result == nil || len(result.Tracks) == 0) {
		return err
	}
	if err != nil {
		r.logger.Warn("stopped early", "err", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Tracks, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", renderTracks(result.Tracks, isTerminal(r.output)))
	switch {
	case result.Complete:
		r.writePlain("%s from %d pages. End of feed.\n", countLabel(len(result.Tracks)), result.Pages)
	default:
		r.writePlain("%s from %d pages. Next page: %d\n", countLabel(len(result.Tracks)), result.Pages, result.Cursor.NextPage)
	}
	return nil
}

// FeedExport walks the feed to the end and writes the tracks in the requested format.
func (r *Runner) FeedExport(ctx context.Context, cmd *cli.Command) error {
	formatName := cmd.String("format")
	if formatName == "" {
		formatName = r.config.Export.Format
	}
	format, err := formatter.ParseFormat(formatName)
	if err != nil {
		return err
	}

	rate := cmd.Float("rate")
	if rate == 0 {
		rate = r.config.Export.RateLimit
	}
	if rate < 0 {
		return fmt.Errorf("%w: --rate must not be negative", shared.ErrInvalidFlag)
	}

	outputDir := cmd.String("output")
	if outputDir == "" {
		outputDir = r.config.Export.OutputDir
	}

	var cacher tasks.TrackCacher
	if !cmd.Bool("no-cache") {
		repo, err := r.openCache()
		if err != nil {
			r.logger.Warn("track cache unavailable, exporting without it", "err", err)
		} else {
			defer r.Close()
			cacher = repositories.NewTrackCacheAdapter(repo)
		}
	}

	r.writePlainHeader("Exporting feed")
	r.writePlain("Source: %s\n", r.config.Feed.BaseURL)
	r.writePlain("Format: %s\n\n", format)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchPage:
				if update.Message != "" {
					r.writePlain("📥 %s\n", update.Message)
				}
			case tasks.RetryPage:
				r.writePlain("⚠  %s\n", update.Message)
			case tasks.CacheTracks:
				if update.Step == update.Total {
					r.writePlain("💾 Cached %s\n", countLabel(update.Total))
				}
			case tasks.WriteFiles:
				r.writePlain("📝 %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine(cacher).Export(ctx, progressCh, tasks.ExportOpts{
		WalkOpts: tasks.WalkOpts{
			MaxPages:  int(cmd.Int("max-pages")),
			RateLimit: rate,
		},
		Format:    format,
		OutputDir: outputDir,
		Source:    r.config.Feed.BaseURL,
	})
	close(progressCh)
	wg.Wait()

	if err != nil && !tasks.IsPartial(result, err) {
		if errors.Is(err, shared.ErrExportLocked) {
			return fmt.Errorf("%w (is another export running?)", err)
		}
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Tracks: %s from %d pages\n", humanize.Comma(int64(len(result.Tracks))), result.Pages)
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	for _, file := range result.Files {
		r.writePlain("  - %s\n", file)
	}
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	if result.CacheErrors > 0 {
		r.writePlain("⚠  %d tracks could not be cached\n", result.CacheErrors)
	}
	if err != nil {
		r.writePlain("⚠  Export stopped early at page %d: %v\n", result.Cursor.NextPage, err)
		return err
	}
	return nil
}

func renderTracks(tracks []models.TrackSummary, fancy bool) string {
	rows := make([][]string, 0, len(tracks))
	for _, t := range tracks {
		rows = append(rows, []string{
			t.Slug,
			t.Title,
			t.Profile.Name(),
			t.CreatedAgo,
			t.DurationDisplay,
			render.CommentLabel(t.CommentCount),
		})
	}
	return renderTable(
		[]string{"Slug", "Title", "Artist", "Posted", "Length", "Comments"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		fancy,
	)
}

func countLabel(n int) string {
	if n == 1 {
		return "1 track"
	}
	return humanize.Comma(int64(n)) + " tracks"
}
