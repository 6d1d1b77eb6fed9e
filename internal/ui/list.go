package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mixfeed/internal/audio"
	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/desertthunder/mixfeed/internal/render"
)

var (
	_ list.Item = trackItem{}
	_ list.Item = endItem{}
)

// trackItem wraps [models.TrackSummary] to implement [list.Item].
//
// The play state is read from the manager on every render.
type trackItem struct {
	track   models.TrackSummary
	line    string
	manager *audio.Manager
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string {
	if i.manager != nil && i.manager.State(i.track.Slug) == audio.Playing {
		return styles.playing.Render("▶ " + i.line)
	}
	return i.line
}

func (i trackItem) Description() string {
	state := audio.Stopped
	if i.manager != nil {
		state = i.manager.State(i.track.Slug)
	}

	desc := fmt.Sprintf("[%s] %s ago", state.ButtonLabel(), i.track.CreatedAgo)
	if i.track.DurationDisplay != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.DurationDisplay)
	}
	return fmt.Sprintf("%s • %s", desc, render.CommentLabel(i.track.CommentCount))
}

// endItem is the terminal end-of-feed row.
type endItem struct{}

func (endItem) FilterValue() string { return "" }
func (endItem) Title() string       { return endOfFeedTitle }
func (endItem) Description() string { return endOfFeedHint }

const (
	endOfFeedTitle = "You've reached the end of the feed"
	endOfFeedHint  = "Check back later for new tracks."
)

// trackLine is the loader's renderer for terminal rows.
func trackLine(track models.TrackSummary) (string, error) {
	if err := track.Validate(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s · %s", track.Title, track.Profile.Name()), nil
}
