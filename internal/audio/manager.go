package audio

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixfeed/internal/shared"
)

// Element is one playable audio element.
//
// Implementations must be comparable (typically pointers); the manager uses them as map keys.
type Element interface {
	// Pause stops playback, keeping the position.
	Pause()
	// Rewind moves the playback position back to the start.
	Rewind()
	// Listen installs the element's play and pause event handlers.
	Listen(onPlay, onPause func())
}

// Indicator reflects a track's state in the UI (e.g. the play button label).
type Indicator interface {
	SetState(slug string, state State)
}

// IndicatorFunc adapts a function to [Indicator].
type IndicatorFunc func(slug string, state State)

func (f IndicatorFunc) SetState(slug string, state State) { f(slug, state) }

// Manager enforces single-track playback.
type Manager struct {
	mu          sync.Mutex
	indicator   Indicator
	logger      *log.Logger
	elements    map[Element]string
	bySlug      map[string]Element
	states      map[string]State
	current     Element
	currentSlug string
	subscribers []*Subscription
}

// NewManager creates a manager reporting state changes to indicator, which may be nil.
func NewManager(indicator Indicator, logger *log.Logger) *Manager {
	if indicator == nil {
		indicator = IndicatorFunc(func(string, State) {})
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Manager{
		indicator: indicator,
		logger:    logger,
		elements:  make(map[Element]string),
		bySlug:    make(map[string]Element),
		states:    make(map[string]State),
	}
}

// Register attaches play and pause handlers to el. Registering the same element twice is a
// no-op and returns false.
func (m *Manager) Register(el Element, slug string) bool {
	if el == nil {
		return false
	}

	m.mu.Lock()
	if _, ok := m.elements[el]; ok {
		m.mu.Unlock()
		return false
	}
	m.elements[el] = slug
	m.bySlug[slug] = el
	m.mu.Unlock()

	el.Listen(func() { m.HandlePlay(el, slug) }, func() { m.HandlePause(el, slug) })
	m.logger.Debug("registered audio element", "slug", slug)
	return true
}

// Registered reports how many elements are registered.
func (m *Manager) Registered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.elements)
}

// OnPlay handles a play event for the element registered under slug.
func (m *Manager) OnPlay(slug string) {
	if el, ok := m.lookup(slug); ok {
		m.HandlePlay(el, slug)
		return
	}
	m.logger.Warn("play event for unregistered track", "slug", slug)
}

// OnPause handles a pause event for the element registered under slug.
func (m *Manager) OnPause(slug string) {
	if el, ok := m.lookup(slug); ok {
		m.HandlePause(el, slug)
		return
	}
	m.logger.Warn("pause event for unregistered track", "slug", slug)
}

// HandlePlay makes el the current element, stopping and rewinding the previous one.
func (m *Manager) HandlePlay(el Element, slug string) {
	m.mu.Lock()
	prev, prevSlug := m.current, m.currentSlug
	stopPrev := prev != nil && prev != el

	m.current, m.currentSlug = el, slug
	if stopPrev {
		m.setState(prevSlug, Stopped)
	}
	m.setState(slug, Playing)
	m.mu.Unlock()

	if stopPrev {
		prev.Pause()
		prev.Rewind()
		m.logger.Debug("stopped previous track", "slug", prevSlug, "now_playing", slug)
	}
}

// HandlePause marks slug paused when el is the current element; other pauses are ignored.
func (m *Manager) HandlePause(el Element, slug string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el != m.current {
		return
	}
	m.setState(slug, Paused)
}

// Current returns the slug of the current element and whether it is playing.
func (m *Manager) Current() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return "", false
	}
	return m.currentSlug, m.states[m.currentSlug] == Playing
}

// State returns the last indicated state for slug.
func (m *Manager) State(slug string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[slug]
}

// Subscribe returns a subscription receiving every subsequent state change.
func (m *Manager) Subscribe() *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := newSubscription()
	m.subscribers = append(m.subscribers, sub)
	return sub
}

// Unsubscribe stops delivery to sub and closes its Done channel.
func (m *Manager) Unsubscribe(sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.subscribers {
		if s == sub {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			sub.close()
			return
		}
	}
}

func (m *Manager) lookup(slug string) (Element, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.bySlug[slug]
	return el, ok
}

// setState must be called with m.mu held.
func (m *Manager) setState(slug string, state State) {
	prev := m.states[slug]
	m.states[slug] = state
	m.indicator.SetState(slug, state)

	change := StateChange{Slug: slug, Previous: prev, Current: state}
	for _, sub := range m.subscribers {
		sub.sendState(change)
	}
}
