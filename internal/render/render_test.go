package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrack() models.TrackSummary {
	return models.TrackSummary{
		Slug:            "night-drive",
		Title:           "Night Drive",
		Description:     "late set",
		CreatedAgo:      "3 hours",
		DurationDisplay: "4:12",
		AudioURL:        "/media/night-drive.mp3",
		CommentCount:    2,
		DetailURL:       "/tracks/night-drive/",
		Profile:         models.Profile{Username: "ana", DisplayName: "Ana", URL: "/profiles/ana/"},
	}
}

func TestCard(t *testing.T) {
	t.Run("renders card contract", func(t *testing.T) {
		html, err := Card(sampleTrack())
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(html, `<div class="card mb-3" data-track-slug="night-drive">`))
		assert.Contains(t, html, `<source src="/media/night-drive.mp3" type="audio/mpeg">`)
		assert.Equal(t, 1, strings.Count(html, "<audio"))
		assert.Contains(t, html, `class="btn btn-sm btn-outline-primary play-btn">Play</button>`)
		assert.Contains(t, html, "Night Drive • 4:12")
		assert.Contains(t, html, "2 comments")
		assert.Contains(t, html, `href="/tracks/night-drive/#comments"`)
		assert.Contains(t, html, "3 hours")
	})

	t.Run("escapes user text", func(t *testing.T) {
		track := sampleTrack()
		track.Title = "<script>alert(1)</script>"
		track.Description = `Tom & "Jerry's" <b>mix</b>`

		html, err := Card(track)
		require.NoError(t, err)

		assert.NotContains(t, html, "<script>")
		assert.Contains(t, html, "&lt;script&gt;alert(1)&lt;/script&gt;")
		assert.Contains(t, html, "Tom &amp; &#34;Jerry&#39;s&#34; &lt;b&gt;mix&lt;/b&gt;")
	})

	t.Run("neutralizes unsafe url schemes", func(t *testing.T) {
		track := sampleTrack()
		track.DetailURL = "javascript:alert(1)"

		html, err := Card(track)
		require.NoError(t, err)

		assert.NotContains(t, html, "javascript:alert")
	})

	t.Run("omits optional parts", func(t *testing.T) {
		track := sampleTrack()
		track.DurationDisplay = ""
		track.Description = ""
		track.CommentCount = 0

		html, err := Card(track)
		require.NoError(t, err)

		assert.NotContains(t, html, " • ")
		assert.NotContains(t, html, "card-text")
		assert.Contains(t, html, "No comments yet")
		assert.Contains(t, html, "track-artwork-placeholder")
	})

	t.Run("avatar image or initial badge", func(t *testing.T) {
		track := sampleTrack()
		track.Profile.Avatar = "/media/avatars/ana.png"
		html, err := Card(track)
		require.NoError(t, err)
		assert.Contains(t, html, `<img src="/media/avatars/ana.png" class="rounded-circle me-2" alt="Ana"`)

		track.Profile = models.Profile{Username: "émile"}
		html, err = Card(track)
		require.NoError(t, err)
		assert.Contains(t, html, `<span class="avatar-initial rounded-circle me-2">É</span>`)
	})

	t.Run("truncates long descriptions", func(t *testing.T) {
		track := sampleTrack()
		track.Description = strings.Repeat("a", 500)

		html, err := Card(track)
		require.NoError(t, err)

		assert.Contains(t, html, strings.Repeat("a", DescriptionWidth-1)+"…")
		assert.NotContains(t, html, strings.Repeat("a", DescriptionWidth+1))
	})
}

func TestCommentLabel(t *testing.T) {
	assert.Equal(t, "No comments yet", CommentLabel(0))
	assert.Equal(t, "1 comment", CommentLabel(1))
	assert.Equal(t, "7 comments", CommentLabel(7))
}

func TestInitial(t *testing.T) {
	assert.Equal(t, "A", Initial(models.Profile{DisplayName: "ana"}))
	assert.Equal(t, "B", Initial(models.Profile{DisplayName: " ", Username: "bob"}))
	assert.Equal(t, "?", Initial(models.Profile{}))
}

func TestEndPanel(t *testing.T) {
	assert.Contains(t, EndPanel(), "You've reached the end of the feed")
	assert.Contains(t, EndPanel(), "feed-end")
}

func TestPage(t *testing.T) {
	t.Run("renders dom contract", func(t *testing.T) {
		var buf bytes.Buffer
		err := Page(&buf, PageData{
			Tracks:      []models.TrackSummary{sampleTrack()},
			HasNext:     true,
			NextPage:    2,
			WasmURL:     "/static/feed.wasm",
			WasmExecURL: "/static/wasm_exec.js",
		})
		require.NoError(t, err)

		html := buf.String()
		for _, id := range []string{`id="track-feed"`, `id="loading"`, `id="feed-sentinel"`, `id="sr-announcer"`, `id="backToTop"`} {
			assert.Contains(t, html, id)
		}
		assert.Contains(t, html, `data-has-next="true" data-next-page="2"`)
		assert.Contains(t, html, `aria-live="polite"`)
		assert.Contains(t, html, `data-track-slug="night-drive"`)
		assert.Contains(t, html, `<script src="/static/wasm_exec.js"></script>`)
		assert.Contains(t, html, "feed.wasm")
		assert.NotContains(t, html, "feed-end")
	})

	t.Run("single page feed shows end panel", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Page(&buf, PageData{HasNext: false}))

		html := buf.String()
		assert.Contains(t, html, `data-has-next="false"`)
		assert.Contains(t, html, "feed-end")
		assert.NotContains(t, html, "<script")
		assert.Contains(t, html, "<title>Feed</title>")
	})
}
