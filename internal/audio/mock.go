package audio

import "sync"

// MockElement is a test double for [Element].
//
// Play and Pause fire the installed handlers synchronously, the way a browser dispatches
// media events.
type MockElement struct {
	mu      sync.Mutex
	onPlay  func()
	onPause func()
	playing bool
	pauses  int
	rewinds int
	listens int
}

// NewMockElement creates an idle mock element.
func NewMockElement() *MockElement {
	return &MockElement{}
}

// Play simulates the user starting playback.
func (m *MockElement) Play() {
	m.mu.Lock()
	m.playing = true
	onPlay := m.onPlay
	m.mu.Unlock()

	if onPlay != nil {
		onPlay()
	}
}

func (m *MockElement) Pause() {
	m.mu.Lock()
	wasPlaying := m.playing
	m.playing = false
	m.pauses++
	onPause := m.onPause
	m.mu.Unlock()

	if wasPlaying && onPause != nil {
		onPause()
	}
}

func (m *MockElement) Rewind() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewinds++
}

func (m *MockElement) Listen(onPlay, onPause func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPlay, m.onPause = onPlay, onPause
	m.listens++
}

// Playing reports whether the element is playing.
func (m *MockElement) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Calls returns how many times Pause, Rewind, and Listen were called.
func (m *MockElement) Calls() (pauses, rewinds, listens int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauses, m.rewinds, m.listens
}
