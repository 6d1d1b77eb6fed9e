// package formatter provides functions to export feed tracks to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/desertthunder/mixfeed/internal/render"
	"github.com/desertthunder/mixfeed/internal/shared"
)

// Format is an export file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat accepts a format name or its common file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (expected json, csv, markdown, or text)", shared.ErrInvalidArgument, s)
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatMarkdown:
		return "md"
	case FormatText:
		return "txt"
	default:
		return "json"
	}
}

// FeedExport is a walk of the feed, ready to be written out.
type FeedExport struct {
	Source     string                `json:"source"`
	ExportedAt time.Time             `json:"exported_at"`
	Pages      int                   `json:"pages"`
	Tracks     []models.TrackSummary `json:"tracks"`
}

// ExportToCSV converts a FeedExport to CSV with one row per track.
func ExportToCSV(export *FeedExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Slug", "Title", "Artist", "Username", "Duration", "Comments", "Created", "AudioURL", "DetailURL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range export.Tracks {
		record := []string{
			track.Slug,
			track.Title,
			track.Profile.Name(),
			track.Profile.Username,
			track.DurationDisplay,
			strconv.Itoa(track.CommentCount),
			track.CreatedAgo,
			track.AudioURL,
			track.DetailURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a FeedExport to a Markdown track list.
func ExportToMarkdown(export *FeedExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Feed\n\n")
	if export.Source != "" {
		buf.WriteString(fmt.Sprintf("**Source**: %s\n", export.Source))
	}
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(export.Tracks)))
	buf.WriteString(fmt.Sprintf("**Exported**: %s\n\n", export.ExportedAt.Format(time.RFC3339)))

	buf.WriteString("## Tracks\n\n")
	for i, track := range export.Tracks {
		duration := ""
		if track.DurationDisplay != "" {
			duration = fmt.Sprintf(" [%s]", track.DurationDisplay)
		}
		buf.WriteString(fmt.Sprintf("%d. [%s](%s) by %s%s (%s)\n",
			i+1, escapeMarkdown(track.Title), track.DetailURL, escapeMarkdown(track.Profile.Name()), duration,
			strings.ToLower(render.CommentLabel(track.CommentCount))))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a FeedExport to plain text format
func ExportToText(export *FeedExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(export.Tracks)))
	for i, track := range export.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Profile.Name(), track.Title))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a FeedExport to indented JSON.
func ExportToJSON(export *FeedExport) ([]byte, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return append(data, '\n'), nil
}

// Export encodes export in format.
func Export(export *FeedExport, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	default:
		return ExportToJSON(export)
	}
}

// WriteExport writes export to {dir}/feed_tracks.{ext} and returns the file path.
//
// The directory defaults to the working directory and is created when missing.
func WriteExport(export *FeedExport, format Format, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := Export(export, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	path := filepath.Join(dir, "feed_tracks."+format.Extension())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

var markdownEscaper = strings.NewReplacer(`[`, `\[`, `]`, `\]`, `*`, `\*`, `_`, `\_`, "`", "\\`")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
