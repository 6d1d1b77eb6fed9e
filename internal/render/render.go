// package render turns track summaries into feed card markup
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DescriptionWidth is the number of display cells a card description is cut to.
const DescriptionWidth = 200

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("render").Funcs(template.FuncMap{
	"commentLabel": CommentLabel,
	"initial":      Initial,
	"truncate":     truncateDescription,
}).ParseFS(templateFS, "templates/*.html"))

var endPanel = mustExecute("end", nil)

// PageData is the input of [Page].
type PageData struct {
	Title         string
	Tracks        []models.TrackSummary
	HasNext       bool
	NextPage      int
	StylesheetURL string
	WasmURL       string // scripts are omitted when empty
	WasmExecURL   string
}

// Card renders the markup of one track card.
//
// All user text is HTML-escaped and URLs with unsafe schemes are neutralized.
func Card(track models.TrackSummary) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "card", track); err != nil {
		return "", fmt.Errorf("failed to render card %s: %w", track.Slug, err)
	}
	return buf.String(), nil
}

// EndPanel returns the terminal "end of feed" panel.
func EndPanel() string {
	return endPanel
}

// Page renders a complete feed document with the first page of cards server-rendered.
func Page(w io.Writer, data PageData) error {
	if data.Title == "" {
		data.Title = "Feed"
	}
	if data.NextPage < 1 {
		data.NextPage = 2
	}
	if err := templates.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

// CommentLabel phrases a comment count.
func CommentLabel(n int) string {
	switch {
	case n <= 0:
		return "No comments yet"
	case n == 1:
		return "1 comment"
	default:
		return fmt.Sprintf("%d comments", n)
	}
}

// Initial returns the upper-cased first character of the profile's name for the avatar badge, or "?".
func Initial(p models.Profile) string {
	name := p.Name()
	if name == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return cases.Upper(language.Und).String(string(r))
}

func truncateDescription(s string) string {
	return runewidth.Truncate(strings.TrimSpace(s), DescriptionWidth, "…")
}

func mustExecute(name string, data any) string {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		panic(fmt.Sprintf("failed to render %s: %v", name, err))
	}
	return buf.String()
}
