package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixfeed/internal/audio"
	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/desertthunder/mixfeed/internal/render"
	"github.com/desertthunder/mixfeed/internal/shared"
)

// Announcements written to the live region.
const (
	MsgLoadFailed = "Could not load more tracks. Please try again."
	MsgEndOfFeed  = "End of feed."
)

// Phase is the loader's position in its state machine.
type Phase int

const (
	Idle Phase = iota
	Fetching
	Done
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "Idle"
	case Fetching:
		return "Fetching"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// Fetcher retrieves one page of the feed.
type Fetcher interface {
	FetchPage(ctx context.Context, page int) (*models.FeedPage, error)
}

// View is the surface the loader renders into.
type View interface {
	// SetLoading shows or hides the loading indicator.
	SetLoading(loading bool)
	// AppendCard adds a rendered card to the end of the feed and returns its audio element, or nil.
	AppendCard(track models.TrackSummary, markup string) audio.Element
	// AppendEndPanel adds the terminal end-of-feed panel.
	AppendEndPanel(markup string)
	// Announce replaces the live region's text.
	Announce(message string)
}

// Registrar takes ownership of appended audio elements.
type Registrar interface {
	Register(el audio.Element, slug string) bool
}

// Renderer produces the markup of one card.
type Renderer func(models.TrackSummary) (string, error)

// Trigger is an activation source the loader disconnects once the feed is exhausted.
type Trigger interface {
	Disconnect()
}

// Options configures a [Loader].
type Options struct {
	Logger   *log.Logger
	Renderer Renderer // defaults to [render.Card]
	EndPanel string   // defaults to [render.EndPanel]
}

// Loader owns pagination state and appends new tracks to a [View].
type Loader struct {
	fetcher   Fetcher
	view      View
	registrar Registrar
	render    Renderer
	endPanel  string
	logger    *log.Logger
	seen      *SeenSet

	mu       sync.Mutex
	cursor   models.Cursor
	phase    Phase
	endShown bool
	triggers []Trigger
}

// NewLoader creates a loader positioned at page 2, the first page after the server-rendered one.
// registrar may be nil.
func NewLoader(fetcher Fetcher, view View, registrar Registrar, opts Options) *Loader {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Renderer == nil {
		opts.Renderer = render.Card
	}
	if opts.EndPanel == "" {
		opts.EndPanel = render.EndPanel()
	}

	return &Loader{
		fetcher:   fetcher,
		view:      view,
		registrar: registrar,
		render:    opts.Renderer,
		endPanel:  opts.EndPanel,
		logger:    opts.Logger,
		seen:      NewSeenSet(),
		cursor:    models.NewCursor(2, true),
	}
}

// Seed initializes the cursor and the seen set from the server-rendered page.
//
// A page that reports no next page leaves the loader Done; its end panel is part of the
// server-rendered markup.
func (l *Loader) Seed(h models.Hints) {
	for _, slug := range h.Slugs {
		l.seen.Add(slug)
	}

	l.mu.Lock()
	l.cursor = models.NewCursor(h.NextPage, h.HasNext)
	done := !h.HasNext
	if done {
		l.phase = Done
		l.endShown = true
	}
	triggers := l.takeTriggersIfDone()
	l.mu.Unlock()

	disconnect(triggers)
	l.logger.Debug("seeded feed", "next_page", h.NextPage, "has_next", h.HasNext, "ssr_tracks", len(h.Slugs))
}

// Attach registers a trigger to disconnect on Done. Attaching to a finished loader
// disconnects the trigger immediately.
func (l *Loader) Attach(t Trigger) {
	l.mu.Lock()
	if l.phase == Done {
		l.mu.Unlock()
		t.Disconnect()
		return
	}
	l.triggers = append(l.triggers, t)
	l.mu.Unlock()
}

// LoadNextPage fetches the next page and appends its unseen tracks, returning how many
// were appended.
//
// It is a no-op returning (0, nil) while a fetch is in flight or after the last page.
// On failure the cursor is left unchanged so the same page is retried on the next trigger.
func (l *Loader) LoadNextPage(ctx context.Context) (int, error) {
	l.mu.Lock()
	if l.phase != Idle || !l.cursor.HasMore {
		l.mu.Unlock()
		return 0, nil
	}
	l.phase = Fetching
	page := l.cursor.NextPage
	l.mu.Unlock()

	l.view.SetLoading(true)

	result, err := l.fetcher.FetchPage(ctx, page)
	if err != nil {
		l.logger.Error("failed to load feed page", "page", page, "err", err)
		l.view.Announce(MsgLoadFailed)
		l.finish(Idle)
		return 0, fmt.Errorf("page %d: %w", page, err)
	}

	appended := l.appendTracks(result.Tracks)

	l.mu.Lock()
	l.cursor = l.cursor.Advance(result.HasNext)
	showEnd := !result.HasNext && !l.endShown
	if showEnd {
		l.endShown = true
	}
	l.mu.Unlock()

	if msg := Announcement(appended, result.HasNext); msg != "" {
		l.view.Announce(msg)
	}
	if showEnd {
		l.view.AppendEndPanel(l.endPanel)
	}

	l.logger.Info("loaded feed page", "page", page, "appended", appended, "has_next", result.HasNext)

	if result.HasNext {
		l.finish(Idle)
	} else {
		l.finish(Done)
	}
	return appended, nil
}

func (l *Loader) appendTracks(tracks []models.TrackSummary) int {
	appended := 0
	for _, track := range tracks {
		if l.seen.Has(track.Slug) {
			continue
		}

		markup, err := l.render(track)
		if err != nil {
			l.logger.Error("failed to render track", "slug", track.Slug, "err", err)
			continue
		}

		el := l.view.AppendCard(track, markup)
		l.seen.Add(track.Slug)
		appended++

		if el != nil && l.registrar != nil {
			l.registrar.Register(el, track.Slug)
		}
	}
	return appended
}

// finish hides the loading indicator and leaves the Fetching phase.
func (l *Loader) finish(next Phase) {
	l.view.SetLoading(false)

	l.mu.Lock()
	l.phase = next
	triggers := l.takeTriggersIfDone()
	l.mu.Unlock()

	disconnect(triggers)
}

// takeTriggersIfDone must be called with l.mu held.
func (l *Loader) takeTriggersIfDone() []Trigger {
	if l.phase != Done {
		return nil
	}
	triggers := l.triggers
	l.triggers = nil
	return triggers
}

func disconnect(triggers []Trigger) {
	for _, t := range triggers {
		t.Disconnect()
	}
}

// Cursor returns the current pagination cursor.
func (l *Loader) Cursor() models.Cursor {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor
}

// Phase returns the loader's current phase.
func (l *Loader) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// Seen returns the set of slugs rendered this session.
func (l *Loader) Seen() *SeenSet {
	return l.seen
}

// Announcement returns the live-region text after a successful page, or "" when nothing
// should be announced.
func Announcement(appended int, hasNext bool) string {
	loaded := ""
	switch {
	case appended == 1:
		loaded = "Loaded 1 more track"
	case appended > 1:
		loaded = fmt.Sprintf("Loaded %d more tracks", appended)
	}

	if hasNext {
		return loaded
	}
	if loaded == "" {
		return MsgEndOfFeed
	}
	return loaded + ". " + MsgEndOfFeed
}
