package repositories

import (
	"fmt"

	"github.com/desertthunder/mixfeed/internal/models"
)

// TrackCacheAdapter implements tasks.TrackCacher using TrackRepository.
//
// Caching a slug twice refreshes the stored summary instead of inserting a duplicate.
type TrackCacheAdapter struct {
	repo *TrackRepository
}

// NewTrackCacheAdapter creates a new TrackCacheAdapter with the given repository
func NewTrackCacheAdapter(repo *TrackRepository) *TrackCacheAdapter {
	return &TrackCacheAdapter{repo: repo}
}

// CacheTrack stores track, returning true when it was not cached before.
func (a *TrackCacheAdapter) CacheTrack(track models.TrackSummary) (bool, error) {
	_, created, err := a.repo.Upsert(track)
	if err != nil {
		return false, fmt.Errorf("failed to cache track %s: %w", track.Slug, err)
	}
	return created, nil
}
