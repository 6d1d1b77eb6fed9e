package feed

import (
	"context"
	"sync"
)

const (
	// DefaultScrollThreshold is how close to the bottom, in pixels, the scroll fallback fires.
	DefaultScrollThreshold = 200
	// BackToTopOffset is the scroll offset past which the back-to-top control is shown.
	BackToTopOffset = 600
)

// PageLoader is the operation triggers invoke.
type PageLoader interface {
	LoadNextPage(ctx context.Context) (int, error)
}

// trigger holds the disconnect state shared by [Sentinel] and [ScrollWatcher].
type trigger struct {
	mu           sync.Mutex
	loader       PageLoader
	disconnected bool
	onDisconnect func()
}

// Disconnect stops the trigger from firing. It runs the OnDisconnect hook once.
func (t *trigger) Disconnect() {
	t.mu.Lock()
	if t.disconnected {
		t.mu.Unlock()
		return
	}
	t.disconnected = true
	hook := t.onDisconnect
	t.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// OnDisconnect sets a hook run when the trigger is disconnected, e.g. to release a browser observer.
func (t *trigger) OnDisconnect(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDisconnect = fn
}

// Connected reports whether the trigger can still fire.
func (t *trigger) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.disconnected
}

func (t *trigger) fire(ctx context.Context) (int, error) {
	if !t.Connected() {
		return 0, nil
	}
	return t.loader.LoadNextPage(ctx)
}

// Sentinel fires when the sentinel element intersects the (margin-expanded) viewport.
type Sentinel struct {
	trigger
}

// NewSentinel creates a sentinel trigger for loader.
func NewSentinel(loader PageLoader) *Sentinel {
	return &Sentinel{trigger: trigger{loader: loader}}
}

// Intersect handles one intersection observation.
func (s *Sentinel) Intersect(ctx context.Context, intersecting bool) (int, error) {
	if !intersecting {
		return 0, nil
	}
	return s.fire(ctx)
}

// Viewport is a scroll position snapshot, in pixels.
type Viewport struct {
	ScrollY        float64
	InnerHeight    float64
	DocumentHeight float64
}

// ScrollWatcher is the fallback trigger used when intersection observation is unavailable.
type ScrollWatcher struct {
	trigger
	Threshold float64
}

// NewScrollWatcher creates a scroll trigger for loader. A non-positive threshold uses
// [DefaultScrollThreshold].
func NewScrollWatcher(loader PageLoader, threshold float64) *ScrollWatcher {
	if threshold <= 0 {
		threshold = DefaultScrollThreshold
	}
	return &ScrollWatcher{trigger: trigger{loader: loader}, Threshold: threshold}
}

// NearBottom reports whether v is within the threshold of the document's end.
func (w *ScrollWatcher) NearBottom(v Viewport) bool {
	return v.InnerHeight+v.ScrollY >= v.DocumentHeight-w.Threshold
}

// Scrolled handles one scroll event.
func (w *ScrollWatcher) Scrolled(ctx context.Context, v Viewport) (int, error) {
	if !w.NearBottom(v) {
		return 0, nil
	}
	return w.fire(ctx)
}

// BackToTopVisible reports whether the back-to-top control should be shown at scrollY.
func BackToTopVisible(scrollY float64) bool {
	return scrollY > BackToTopOffset
}
