package web

import (
	"bytes"
	"testing"

	"github.com/desertthunder/mixfeed/internal/audio"
	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/desertthunder/mixfeed/internal/render"
	tu "github.com/desertthunder/mixfeed/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderedDocumentMatchesContract(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Page(&buf, render.PageData{
		Tracks:  []models.TrackSummary{tu.Track("a")},
		HasNext: true,
	}))
	page := buf.String()

	for _, id := range []string{FeedID, LoadingID, SentinelID, AnnouncerID, BackToTopID} {
		assert.Contains(t, page, `id="`+id+`"`)
	}
	assert.Contains(t, page, HasNextAttr+`="true"`)
	assert.Contains(t, page, NextPageAttr+`="2"`)
	assert.Contains(t, page, SlugAttr+`="a"`)
	assert.Contains(t, page, PlayButtonClass)
	assert.Contains(t, page, `aria-live="polite"`)
}

func TestCardQuery(t *testing.T) {
	assert.Equal(t, `[data-track-slug="night-drive"]`, CardQuery("night-drive"))
	assert.Equal(t, `[data-track-slug="a\"b"]`, CardQuery(`a"b`))
}

func TestPlayButton(t *testing.T) {
	assert.Equal(t, ButtonState{Label: "Pause", Pressed: "true"}, PlayButton(audio.Playing))
	assert.Equal(t, ButtonState{Label: "Play", Pressed: "false"}, PlayButton(audio.Paused))
	assert.Equal(t, ButtonState{Label: "Play", Pressed: "false"}, PlayButton(audio.Stopped))
}

func TestRootMargin(t *testing.T) {
	assert.Equal(t, "200px", RootMargin(""))
	assert.Equal(t, "400px", RootMargin("400px"))
}
