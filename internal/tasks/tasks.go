package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixfeed/internal/audio"
	"github.com/desertthunder/mixfeed/internal/feed"
	"github.com/desertthunder/mixfeed/internal/formatter"
	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/desertthunder/mixfeed/internal/shared"
	"github.com/gofrs/flock"
	"golang.org/x/time/rate"
)

const (
	defaultRateLimit   = 2.0
	defaultMaxAttempts = 3
	lockFileName       = ".mixfeed.lock"
	manifestFileName   = "export_manifest.json"
)

// TrackCacher persists tracks seen during an operation.
type TrackCacher interface {
	CacheTrack(track models.TrackSummary) (bool, error)
}

// WalkOpts configures [FeedEngine.Walk].
type WalkOpts struct {
	StartPage   int     // first page to request (default: 1)
	MaxPages    int     // stop after this many pages, 0 for no limit
	RateLimit   float64 // page requests per second (default: 2)
	MaxAttempts int     // attempts per page before giving up (default: 3)
	Seen        []string
}

// WalkResult is the outcome of a walk.
type WalkResult struct {
	Tracks   []models.TrackSummary
	Pages    int
	Complete bool // the server reported the last page
	Cursor   models.Cursor
}

// ExportOpts configures [FeedEngine.Export].
type ExportOpts struct {
	WalkOpts
	Format    formatter.Format
	OutputDir string // default: feed_export_{epoch}
	Source    string
}

// ExportResult contains the files written by an export.
type ExportResult struct {
	WalkResult
	OutputDirectory string
	Files           []string
	ManifestPath    string
	Cached          int
	CacheErrors     int
}

// Manifest describes an export directory.
type Manifest struct {
	Source     string    `json:"source"`
	Format     string    `json:"format"`
	ExportedAt time.Time `json:"exported_at"`
	Pages      int       `json:"pages"`
	Tracks     int       `json:"tracks"`
	Complete   bool      `json:"complete"`
	Files      []string  `json:"files"`
}

// FeedEngine runs feed walks and exports.
type FeedEngine struct {
	fetcher feed.Fetcher
	cacher  TrackCacher
	logger  *log.Logger
}

// NewFeedEngine creates a new FeedEngine. cacher may be nil.
func NewFeedEngine(fetcher feed.Fetcher, cacher TrackCacher, logger *log.Logger) *FeedEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &FeedEngine{fetcher: fetcher, cacher: cacher, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *FeedEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// collector is a [feed.View] that keeps the appended tracks.
type collector struct {
	mu        sync.Mutex
	tracks    []models.TrackSummary
	announced string
}

func (c *collector) SetLoading(bool)       {}
func (c *collector) AppendEndPanel(string) {}

func (c *collector) AppendCard(track models.TrackSummary, _ string) audio.Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracks = append(c.tracks, track)
	return nil
}

func (c *collector) Announce(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.announced = message
}

// take returns the tracks and announcement collected since the last call.
func (c *collector) take() ([]models.TrackSummary, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tracks, msg := c.tracks, c.announced
	c.tracks, c.announced = nil, ""
	return tracks, msg
}

// Walk pages through the feed until it is exhausted, MaxPages is reached, or a page keeps failing.
//
// On a persistent failure the tracks collected so far are returned along with the error.
func (e *FeedEngine) Walk(ctx context.Context, progress chan<- ProgressUpdate, opts WalkOpts) (*WalkResult, error) {
	if e.fetcher == nil {
		return nil, fmt.Errorf("%w: feed client not initialized", shared.ErrServiceUnavailable)
	}
	if opts.StartPage <= 0 {
		opts.StartPage = 1
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}

	view := &collector{}
	loader := feed.NewLoader(e.fetcher, view, nil, feed.Options{
		Logger:   e.logger,
		Renderer: func(models.TrackSummary) (string, error) { return "", nil },
		EndPanel: "-",
	})
	loader.Seed(models.Hints{HasNext: true, NextPage: opts.StartPage, Slugs: opts.Seen})

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	result := &WalkResult{}

	for loader.Phase() != feed.Done {
		if opts.MaxPages > 0 && result.Pages >= opts.MaxPages {
			break
		}

		page := loader.Cursor().NextPage
		if err := e.loadWithRetry(ctx, progress, loader, limiter, page, opts, result.Pages+1); err != nil {
			result.Cursor = loader.Cursor()
			return result, err
		}

		tracks, msg := view.take()
		result.Pages++
		result.Tracks = append(result.Tracks, tracks...)
		e.sendProgress(progress, pageLoadedUpdate(result.Pages, opts.MaxPages, msg, tracks))
	}

	result.Complete = loader.Phase() == feed.Done
	result.Cursor = loader.Cursor()
	return result, nil
}

func (e *FeedEngine) loadWithRetry(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	loader *feed.Loader,
	limiter *rate.Limiter,
	page int,
	opts WalkOpts,
	step int,
) error {
	var lastErr error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		e.sendProgress(progress, fetchPageUpdate(step, opts.MaxPages, page))
		_, err := loader.LoadNextPage(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = err
		e.sendProgress(progress, retryPageUpdate(attempt, opts.MaxAttempts, page, err))
	}
	return fmt.Errorf("giving up after %d attempts: %w", opts.MaxAttempts, lastErr)
}

// Export walks the feed and writes the collected tracks into OutputDir.
func (e *FeedEngine) Export(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("feed_export_%d", time.Now().Unix())
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(opts.OutputDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", shared.ErrExportLocked, opts.OutputDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			e.logger.Warn("failed to release export lock", "err", err)
		}
		os.Remove(lock.Path())
	}()

	walk, walkErr := e.Walk(ctx, progress, opts.WalkOpts)
	if walk == nil {
		return nil, walkErr
	}
	if walkErr != nil && len(walk.Tracks) == 0 {
		return nil, walkErr
	}

	result := &ExportResult{WalkResult: *walk, OutputDirectory: opts.OutputDir}

	if e.cacher != nil {
		for i, track := range walk.Tracks {
			if _, err := e.cacher.CacheTrack(track); err != nil {
				result.CacheErrors++
				e.logger.Warn("failed to cache track", "slug", track.Slug, "err", err)
				continue
			}
			result.Cached++
			e.sendProgress(progress, cacheTracksUpdate(i+1, len(walk.Tracks), track))
		}
	}

	export := &formatter.FeedExport{
		Source:     opts.Source,
		ExportedAt: time.Now().UTC(),
		Pages:      walk.Pages,
		Tracks:     walk.Tracks,
	}
	path, err := formatter.WriteExport(export, opts.Format, opts.OutputDir)
	if err != nil {
		return result, err
	}
	result.Files = append(result.Files, path)
	e.sendProgress(progress, writeFilesUpdate(path))

	manifestPath := filepath.Join(opts.OutputDir, manifestFileName)
	if err := writeManifest(manifestPath, Manifest{
		Source:     opts.Source,
		Format:     string(opts.Format),
		ExportedAt: export.ExportedAt,
		Pages:      walk.Pages,
		Tracks:     len(walk.Tracks),
		Complete:   walk.Complete,
		Files:      result.Files,
	}); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	if walkErr != nil {
		return result, fmt.Errorf("partial export: %w", walkErr)
	}
	return result, nil
}

func writeManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// IsPartial reports whether err came from an export that wrote files before failing.
func IsPartial(result *ExportResult, err error) bool {
	return err != nil && result != nil && len(result.Files) > 0 && !errors.Is(err, shared.ErrExportLocked)
}
