package tasks

import (
	"fmt"

	"github.com/desertthunder/mixfeed/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPage Phase = iota
	RetryPage
	CacheTracks
	WriteFiles
)

func (p Phase) String() string {
	switch p {
	case FetchPage:
		return "fetch_page"
	case RetryPage:
		return "retry_page"
	case CacheTracks:
		return "cache_tracks"
	case WriteFiles:
		return "write_files"
	default:
		return ""
	}
}

func fetchPageUpdate(step, total, page int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPage,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching page %d...", page),
	}
}

func pageLoadedUpdate(step, total int, announcement string, tracks []models.TrackSummary) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPage,
		Step:    step,
		Total:   total,
		Message: announcement,
		Data:    tracks,
	}
}

func retryPageUpdate(attempt, max, page int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RetryPage,
		Step:    attempt,
		Total:   max,
		Message: fmt.Sprintf("[%d/%d] Page %d failed: %v", attempt, max, page, err),
	}
}

func cacheTracksUpdate(step, total int, track models.TrackSummary) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Cached %s", step, total, track.Title),
	}
}

func writeFilesUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteFiles,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("✓ Wrote %s", path),
		Data:    path,
	}
}
