package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Profile is the uploader attached to a [TrackSummary].
type Profile struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
	Avatar      string `json:"avatar,omitempty"` // null in the payload decodes to ""
}

// Name returns the display name, falling back to the username.
func (p Profile) Name() string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	return strings.TrimSpace(p.Username)
}

// TrackSummary is the server-supplied card data for a single track.
//
// Slug is globally unique and stable; it is the deduplication key and the anchor
// (data-track-slug) of the rendered card.
type TrackSummary struct {
	Slug            string  `json:"slug"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	CreatedAgo      string  `json:"created_ago"`
	DurationDisplay string  `json:"duration_display,omitempty"`
	AudioURL        string  `json:"audio_url"`
	ImageURL        string  `json:"image_url,omitempty"`
	CommentCount    int     `json:"comment_count"`
	DetailURL       string  `json:"detail_url"`
	Profile         Profile `json:"profile"`
}

// Validate checks the fields the client relies on.
func (t TrackSummary) Validate() error {
	if strings.TrimSpace(t.Slug) == "" {
		return fmt.Errorf("track slug is required")
	}
	if t.CommentCount < 0 {
		return fmt.Errorf("track %s: negative comment count %d", t.Slug, t.CommentCount)
	}
	return nil
}

// FeedPage is one page of the feed endpoint's response.
type FeedPage struct {
	Tracks  []TrackSummary `json:"tracks"`
	HasNext bool           `json:"has_next"`
}

// Cursor is the client's position in the paginated feed.
//
// NextPage is the page the next fetch requests; HasMore is false once the server
// has reported the last page.
type Cursor struct {
	NextPage int
	HasMore  bool
}

// NewCursor returns a cursor starting at page, clamped to 1.
func NewCursor(page int, hasMore bool) Cursor {
	if page < 1 {
		page = 1
	}
	return Cursor{NextPage: page, HasMore: hasMore}
}

// Advance returns the cursor after a successful fetch that reported hasNext.
func (c Cursor) Advance(hasNext bool) Cursor {
	return Cursor{NextPage: c.NextPage + 1, HasMore: hasNext}
}

// Hints are the pagination hints the server renders into the first page.
type Hints struct {
	HasNext  bool
	NextPage int
	Slugs    []string // slugs of server-rendered cards
}

// ParseHints builds [Hints] from the raw data-has-next and data-next-page attribute values.
//
// A missing or unparsable next page defaults to 2, since page 1 is always server-rendered.
// A missing has-next value is treated as true so the client probes at least once.
func ParseHints(hasNext, nextPage string, slugs []string) Hints {
	h := Hints{HasNext: true, NextPage: 2, Slugs: slugs}

	switch strings.ToLower(strings.TrimSpace(hasNext)) {
	case "false", "0", "no":
		h.HasNext = false
	}

	if n, err := strconv.Atoi(strings.TrimSpace(nextPage)); err == nil && n >= 1 {
		h.NextPage = n
	}

	return h
}
