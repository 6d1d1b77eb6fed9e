package ui

import (
	"sync"

	"github.com/desertthunder/mixfeed/internal/audio"
	"github.com/desertthunder/mixfeed/internal/feed"
	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/desertthunder/mixfeed/internal/player"
)

var _ feed.View = (*termView)(nil)

// card is one appended track and its player.
type card struct {
	track  models.TrackSummary
	line   string
	player player.Interface
}

// termView buffers loader output until the update loop picks it up.
//
// The loader calls it from command goroutines, so every method takes the lock.
type termView struct {
	mu        sync.Mutex
	newPlayer func(models.TrackSummary) player.Interface
	pending   []card
	announced string
	end       bool
	loading   bool
}

func newTermView(newPlayer func(models.TrackSummary) player.Interface) *termView {
	return &termView{newPlayer: newPlayer}
}

func (v *termView) SetLoading(loading bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = loading
}

func (v *termView) AppendCard(track models.TrackSummary, markup string) audio.Element {
	p := v.newPlayer(track)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = append(v.pending, card{track: track, line: markup, player: p})
	return p
}

func (v *termView) AppendEndPanel(string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.end = true
}

func (v *termView) Announce(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.announced = message
}

// take drains the buffered output into a page result.
func (v *termView) take(err error) pageResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	result := pageResult{cards: v.pending, announcement: v.announced, end: v.end, err: err}
	v.pending, v.announced, v.end = nil, "", false
	return result
}

// Loading reports whether a fetch is in flight.
func (v *termView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}
