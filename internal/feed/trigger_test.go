package feed

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingLoader struct {
	mu    sync.Mutex
	calls int
}

func (c *countingLoader) LoadNextPage(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 1, nil
}

func TestSentinel(t *testing.T) {
	ctx := context.Background()

	t.Run("fires only when intersecting", func(t *testing.T) {
		l := &countingLoader{}
		s := NewSentinel(l)

		s.Intersect(ctx, false)
		assert.Zero(t, l.calls)

		n, err := s.Intersect(ctx, true)
		assert.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, 1, l.calls)
	})

	t.Run("disconnect runs hook once and stops firing", func(t *testing.T) {
		l := &countingLoader{}
		s := NewSentinel(l)
		hooks := 0
		s.OnDisconnect(func() { hooks++ })

		s.Disconnect()
		s.Disconnect()
		s.Intersect(ctx, true)

		assert.Equal(t, 1, hooks)
		assert.Zero(t, l.calls)
	})
}

func TestScrollWatcher(t *testing.T) {
	ctx := context.Background()

	t.Run("default threshold", func(t *testing.T) {
		w := NewScrollWatcher(&countingLoader{}, -5)
		assert.Equal(t, float64(DefaultScrollThreshold), w.Threshold)
	})

	t.Run("NearBottom", func(t *testing.T) {
		w := NewScrollWatcher(&countingLoader{}, 200)

		assert.True(t, w.NearBottom(Viewport{ScrollY: 1000, InnerHeight: 800, DocumentHeight: 2000}))
		assert.False(t, w.NearBottom(Viewport{ScrollY: 999, InnerHeight: 800, DocumentHeight: 2000}))
		assert.True(t, w.NearBottom(Viewport{ScrollY: 0, InnerHeight: 800, DocumentHeight: 600}))
	})

	t.Run("Scrolled fires near the bottom", func(t *testing.T) {
		l := &countingLoader{}
		w := NewScrollWatcher(l, 200)

		w.Scrolled(ctx, Viewport{ScrollY: 0, InnerHeight: 800, DocumentHeight: 5000})
		assert.Zero(t, l.calls)

		w.Scrolled(ctx, Viewport{ScrollY: 4000, InnerHeight: 800, DocumentHeight: 5000})
		assert.Equal(t, 1, l.calls)

		w.Disconnect()
		w.Scrolled(ctx, Viewport{ScrollY: 4000, InnerHeight: 800, DocumentHeight: 5000})
		assert.Equal(t, 1, l.calls)
	})
}

func TestBackToTopVisible(t *testing.T) {
	assert.False(t, BackToTopVisible(0))
	assert.False(t, BackToTopVisible(600))
	assert.True(t, BackToTopVisible(601))
}

func TestSeenSet(t *testing.T) {
	s := NewSeenSet("a", "b", "a")

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Add("c"))
	assert.False(t, s.Add("b"))
	assert.True(t, s.Has("c"))
	assert.Equal(t, []string{"a", "b", "c"}, s.Slugs())
}
