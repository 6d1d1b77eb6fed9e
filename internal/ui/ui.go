package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixfeed/internal/audio"
	"github.com/desertthunder/mixfeed/internal/feed"
	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/desertthunder/mixfeed/internal/player"
	"github.com/desertthunder/mixfeed/internal/services"
	"github.com/desertthunder/mixfeed/internal/shared"
)

// DefaultRowThreshold is how many rows from the bottom the scroll trigger fires.
const DefaultRowThreshold = 3

// Options configures a [Model].
type Options struct {
	Fetcher   feed.Fetcher
	BaseURL   string       // resolves relative audio and detail URLs
	Hints     models.Hints // a zero NextPage starts at page 1
	Threshold int          // rows, default [DefaultRowThreshold]
	NewPlayer func(rawURL string) player.Interface
	OpenURL   func(rawURL string) error // default [shared.OpenBrowser]
	Logger    *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	opts     Options
	loader   *feed.Loader
	view     *termView
	watcher  *feed.ScrollWatcher
	manager  *audio.Manager
	sub      *audio.Subscription
	players  map[string]player.Interface
	list     list.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	logger   *log.Logger
	loading  bool
	ended    bool
	status   string
	failed   bool
	width    int
	height   int
	quitting bool
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultRowThreshold
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}
	if opts.NewPlayer == nil {
		opts.NewPlayer = func(rawURL string) player.Interface {
			return player.New(rawURL, player.Options{Logger: opts.Logger})
		}
	}
	if opts.Hints.NextPage <= 0 {
		opts.Hints = models.Hints{HasNext: true, NextPage: 1, Slugs: opts.Hints.Slugs}
	}

	m := &Model{
		ctx:     ctx,
		opts:    opts,
		players: make(map[string]player.Interface),
		help:    help.New(),
		keys:    newKeyMap(),
		logger:  opts.Logger,
	}

	m.manager = audio.NewManager(nil, opts.Logger)
	m.sub = m.manager.Subscribe()
	m.view = newTermView(func(track models.TrackSummary) player.Interface {
		return opts.NewPlayer(services.ResolveURL(opts.BaseURL, track.AudioURL))
	})
	m.loader = feed.NewLoader(opts.Fetcher, m.view, m.manager, feed.Options{
		Logger:   opts.Logger,
		Renderer: trackLine,
		EndPanel: endOfFeedTitle,
	})
	m.loader.Seed(opts.Hints)
	m.watcher = feed.NewScrollWatcher(m.loader, float64(opts.Threshold))
	m.loader.Attach(m.watcher)

	m.list = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.list.Title = "Feed"
	m.list.SetShowHelp(false)
	m.list.SetFilteringEnabled(false)
	m.list.SetShowStatusBar(false)

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.spinner.Style = styles.muted

	if !opts.Hints.HasNext {
		m.ended = true
		m.list.SetItems([]list.Item{endItem{}})
	}
	return m
}

// Init starts the first page load and the audio event listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadPage(), m.waitForState())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPageLoaded:
		result := msg.data.(pageResult)
		m.loading = false
		m.appendPage(result)
		return m, m.checkScroll()

	case MsgStateChanged:
		return m, m.waitForState()

	case MsgPlayFailed:
		data := msg.data.(struct {
			slug string
			err  error
		})
		m.logger.Error("playback failed", "slug", data.slug, "err", data.err)
		m.status = fmt.Sprintf("Could not play %s", data.slug)
		m.failed = true
		return m, nil

	case MsgOpenFailed:
		m.status = fmt.Sprintf("Could not open browser: %v", msg.data.(error))
		m.failed = true
		return m, nil
	}
	return m, nil
}

func (m *Model) appendPage(result pageResult) {
	items := m.list.Items()
	for _, c := range result.cards {
		if c.player != nil {
			m.players[c.track.Slug] = c.player
		}
		items = append(items, trackItem{track: c.track, line: c.line, manager: m.manager})
	}
	if result.end && !m.ended {
		m.ended = true
		items = append(items, endItem{})
	}
	m.list.SetItems(items)

	if result.announcement != "" {
		m.status = result.announcement
		m.failed = result.err != nil
	}
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.quitting = true
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.top):
		m.list.Select(0)
		return m, nil

	case key.Matches(msg, m.keys.play):
		return m, m.togglePlayback()

	case key.Matches(msg, m.keys.open):
		return m, m.openSelected()

	case key.Matches(msg, m.keys.more):
		return m, m.loadPage()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, tea.Batch(cmd, m.checkScroll())
}

// viewport maps the list selection onto the scroll trigger's geometry, one row per track.
func (m *Model) viewport() feed.Viewport {
	return feed.Viewport{
		ScrollY:        float64(m.list.Index()),
		InnerHeight:    1,
		DocumentHeight: float64(len(m.list.Items())),
	}
}

// checkScroll fires the scroll trigger when the selection is near the bottom.
func (m *Model) checkScroll() tea.Cmd {
	if m.loading || !m.watcher.Connected() || !m.watcher.NearBottom(m.viewport()) {
		return nil
	}

	m.loading = true
	vp := m.viewport()
	return func() tea.Msg {
		_, err := m.watcher.Scrolled(m.ctx, vp)
		return pageLoadedMsg(m.view.take(err))
	}
}

// loadPage requests the next page directly, e.g. for the first page or a manual retry.
func (m *Model) loadPage() tea.Cmd {
	if m.loading || m.loader.Phase() == feed.Done {
		return nil
	}

	m.loading = true
	return func() tea.Msg {
		_, err := m.loader.LoadNextPage(m.ctx)
		return pageLoadedMsg(m.view.take(err))
	}
}

func (m *Model) waitForState() tea.Cmd {
	sub := m.sub
	return func() tea.Msg {
		select {
		case change := <-sub.StateChanged:
			return stateChangedMsg(change)
		case <-sub.Done:
			return nil
		}
	}
}

func (m *Model) selectedTrack() (models.TrackSummary, bool) {
	item, ok := m.list.SelectedItem().(trackItem)
	if !ok {
		return models.TrackSummary{}, false
	}
	return item.track, true
}

func (m *Model) togglePlayback() tea.Cmd {
	track, ok := m.selectedTrack()
	if !ok {
		return nil
	}
	p, ok := m.players[track.Slug]
	if !ok {
		return nil
	}

	return func() tea.Msg {
		if err := p.Toggle(m.ctx); err != nil {
			return playFailedMsg(track.Slug, err)
		}
		return nil
	}
}

func (m *Model) openSelected() tea.Cmd {
	track, ok := m.selectedTrack()
	if !ok {
		return nil
	}
	target := services.ResolveURL(m.opts.BaseURL, track.DetailURL)
	open := m.opts.OpenURL

	return func() tea.Msg {
		if err := open(target); err != nil {
			return openFailedMsg(err)
		}
		return nil
	}
}

// Close stops playback and releases every player.
func (m *Model) Close() {
	for slug, p := range m.players {
		if err := p.Close(); err != nil {
			m.logger.Warn("failed to close player", "slug", slug, "err", err)
		}
	}
	m.manager.Unsubscribe(m.sub)
}

// View renders the feed list, the status line, and help.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderStatus() string {
	switch {
	case m.loading:
		return fmt.Sprintf("%s %s", m.spinner.View(), styles.muted.Render("Loading more tracks..."))
	case m.failed:
		return styles.err.Render(m.status)
	case m.ended && m.status == "":
		return styles.end.Render(endOfFeedTitle)
	case m.status != "":
		return styles.ok.Render(m.status)
	default:
		return ""
	}
}
