package web

import (
	"strings"

	"github.com/desertthunder/mixfeed/internal/audio"
)

// Element ids and selectors of the feed document.
const (
	FeedID            = "track-feed"
	LoadingID         = "loading"
	SentinelID        = "feed-sentinel"
	AnnouncerID       = "sr-announcer"
	BackToTopID       = "backToTop"
	CardSelector      = "[data-track-slug]"
	PlayButtonClass   = "play-btn"
	SlugAttr          = "data-track-slug"
	HasNextAttr       = "data-has-next"
	NextPageAttr      = "data-next-page"
	DefaultRootMargin = "200px"
)

// CardQuery returns the selector of the card for slug.
func CardQuery(slug string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(slug)
	return `[` + SlugAttr + `="` + escaped + `"]`
}

// ButtonState is how a play button reflects a track's state.
type ButtonState struct {
	Label   string
	Pressed string // aria-pressed
}

// PlayButton returns the play button state for s.
func PlayButton(s audio.State) ButtonState {
	pressed := "false"
	if s == audio.Playing {
		pressed = "true"
	}
	return ButtonState{Label: s.ButtonLabel(), Pressed: pressed}
}

// RootMargin returns margin, or [DefaultRootMargin] when it is blank.
func RootMargin(margin string) string {
	if strings.TrimSpace(margin) == "" {
		return DefaultRootMargin
	}
	return margin
}
