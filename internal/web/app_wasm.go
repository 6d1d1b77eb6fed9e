//go:build js && wasm

package web

import (
	"context"
	"net/http"
	"syscall/js"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixfeed/internal/audio"
	"github.com/desertthunder/mixfeed/internal/feed"
	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/desertthunder/mixfeed/internal/services"
	"github.com/desertthunder/mixfeed/internal/shared"
)

// Options configures [Run].
type Options struct {
	Endpoint        string // default /tracks/feed-api/
	RootMargin      string // default 200px
	ScrollThreshold float64
	Logger          *log.Logger
}

// App is a running browser client.
type App struct {
	Loader  *feed.Loader
	Manager *audio.Manager
}

// Run binds the loader to the current document. It returns without error and without an
// App when the page has no feed container.
func Run(ctx context.Context, opts Options) (*App, error) {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	window := js.Global()
	doc := window.Get("document")
	container := doc.Call("getElementById", FeedID)
	if !container.Truthy() {
		opts.Logger.Debug("no feed container on page")
		return nil, nil
	}

	view := &domView{
		feed:      container,
		loading:   doc.Call("getElementById", LoadingID),
		announcer: doc.Call("getElementById", AnnouncerID),
	}
	view.SetLoading(false)

	origin := window.Get("location").Get("origin").String()
	client := services.NewFeedClient(services.FeedClientOpts{
		BaseURL:    origin,
		Endpoint:   opts.Endpoint,
		HTTPClient: http.DefaultClient,
		Logger:     opts.Logger,
	})

	manager := audio.NewManager(buttonIndicator(doc), opts.Logger)
	loader := feed.NewLoader(client, view, manager, feed.Options{Logger: opts.Logger})

	slugs := bindServerCards(container, view, manager)
	hints := models.ParseHints(
		attr(container, HasNextAttr),
		attr(container, NextPageAttr),
		slugs,
	)
	loader.Seed(hints)

	if button := doc.Call("getElementById", BackToTopID); button.Truthy() {
		watchBackToTop(button)
	}

	if loader.Phase() == feed.Done {
		return &App{Loader: loader, Manager: manager}, nil
	}

	sentinel := doc.Call("getElementById", SentinelID)
	switch {
	case sentinel.Truthy() && window.Get("IntersectionObserver").Truthy():
		loader.Attach(observeSentinel(ctx, loader, sentinel, RootMargin(opts.RootMargin)))
	default:
		loader.Attach(watchScroll(ctx, loader, opts.ScrollThreshold))
	}

	opts.Logger.Info("feed client started", "next_page", hints.NextPage, "has_next", hints.HasNext, "ssr_tracks", len(slugs))
	return &App{Loader: loader, Manager: manager}, nil
}

// bindServerCards registers the audio of every server-rendered card and returns their slugs
// in document order.
func bindServerCards(container js.Value, view *domView, manager *audio.Manager) []string {
	cards := container.Call("querySelectorAll", CardSelector)
	slugs := make([]string, 0, cards.Length())
	for i := 0; i < cards.Length(); i++ {
		card := cards.Index(i)
		slug := attr(card, SlugAttr)
		if slug == "" {
			continue
		}
		slugs = append(slugs, slug)
		if el := view.bindCard(card); el != nil {
			manager.Register(el, slug)
		}
	}
	return slugs
}

// attr returns the attribute value, or "" when it is missing.
func attr(el js.Value, name string) string {
	v := el.Call("getAttribute", name)
	if v.IsNull() || v.IsUndefined() {
		return ""
	}
	return v.String()
}
