package player

import (
	"context"
	"sync"

	"github.com/desertthunder/mixfeed/internal/audio"
)

// Mock is a test double for [Player]. It never touches the speaker.
type Mock struct {
	mu        sync.Mutex
	url       string
	state     audio.State
	playErr   error
	playCalls int
	rewinds   int
	onPlay    func()
	onPause   func()
}

// NewMock creates a stopped mock for rawURL.
func NewMock(rawURL string) *Mock {
	return &Mock{url: rawURL}
}

// SetPlayErr makes subsequent Play calls fail with err.
func (m *Mock) SetPlayErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) Play(context.Context) error {
	m.mu.Lock()
	m.playCalls++
	if m.playErr != nil {
		err := m.playErr
		m.mu.Unlock()
		return err
	}
	m.state = audio.Playing
	onPlay := m.onPlay
	m.mu.Unlock()

	if onPlay != nil {
		onPlay()
	}
	return nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	if m.state != audio.Playing {
		m.mu.Unlock()
		return
	}
	m.state = audio.Paused
	onPause := m.onPause
	m.mu.Unlock()

	if onPause != nil {
		onPause()
	}
}

func (m *Mock) Rewind() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewinds++
	m.state = audio.Stopped
}

func (m *Mock) Toggle(ctx context.Context) error {
	if m.State() == audio.Playing {
		m.Pause()
		return nil
	}
	return m.Play(ctx)
}

func (m *Mock) Listen(onPlay, onPause func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPlay, m.onPause = onPlay, onPause
}

func (m *Mock) State() audio.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) URL() string  { return m.url }
func (m *Mock) Close() error { return nil }

// PlayCalls returns how many times Play was called.
func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

// Rewinds returns how many times Rewind was called.
func (m *Mock) Rewinds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rewinds
}
