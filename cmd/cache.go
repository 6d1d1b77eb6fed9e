package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// cachedTrackJSON is the JSON shape of a cache entry.
type cachedTrackJSON struct {
	ID       string              `json:"id"`
	Sequence int                 `json:"sequence"`
	CachedAt string              `json:"cached_at"`
	Track    models.TrackSummary `json:"track"`
}

// CacheList prints the most recently cached tracks.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.openCache()
	if err != nil {
		return err
	}
	defer r.Close()

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if user := cmd.String("user"); user != "" {
		criteria["username"] = user
	}

	tracks, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list cached tracks: %w", err)
	}
	total, err := repo.Count()
	if err != nil {
		return fmt.Errorf("failed to count cached tracks: %w", err)
	}

	r.logger.Debug("listed cache", "shown", len(tracks), "total", total)

	if cmd.Bool("json") {
		out := make([]cachedTrackJSON, 0, len(tracks))
		for _, t := range tracks {
			out = append(out, cachedTrackJSON{
				ID:       t.ID(),
				Sequence: t.Sequence(),
				CachedAt: t.UpdatedAt().UTC().Format("2006-01-02T15:04:05Z"),
				Track:    t.Track(),
			})
		}
		return r.writeJSON(out, true)
	}

	if len(tracks) == 0 {
		r.writePlain("The track cache is empty. Run 'mixfeed feed export' to fill it.\n")
		return nil
	}

	rows := make([][]string, 0, len(tracks))
	for _, t := range tracks {
		summary := t.Track()
		rows = append(rows, []string{
			fmt.Sprintf("%d", t.Sequence()),
			summary.Slug,
			summary.Title,
			summary.Profile.Name(),
			humanize.Time(t.UpdatedAt()),
		})
	}
	r.writePlain("%s\n", renderTable(
		[]string{"#", "Slug", "Title", "Artist", "Cached"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
		isTerminal(r.output),
	))
	r.writePlain("Showing %d of %s\n", len(tracks), countLabel(total))
	return nil
}

// CacheClear removes every cached track.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.openCache()
	if err != nil {
		return err
	}
	defer r.Close()

	n, err := repo.Clear()
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	r.logger.Info("cleared track cache", "tracks", n)
	r.writePlain("✓ Cleared %s from the cache\n", countLabel(int(n)))
	return nil
}
