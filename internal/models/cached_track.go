package models

import (
	"fmt"
	"time"
)

// CachedTrack is a [TrackSummary] remembered in the local cache.
type CachedTrack struct {
	id        string
	sequence  int
	track     TrackSummary
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

var _ Model = (*CachedTrack)(nil)

// NewCachedTrack creates a new [CachedTrack] for the given summary.
func NewCachedTrack(sequence int, track TrackSummary) *CachedTrack {
	now := time.Now()
	return &CachedTrack{
		sequence:  sequence,
		track:     track,
		createdAt: now,
		updatedAt: now,
	}
}

func (c *CachedTrack) ID() string                { return c.id }
func (c *CachedTrack) Sequence() int             { return c.sequence }
func (c *CachedTrack) Slug() string              { return c.track.Slug }
func (c *CachedTrack) Track() TrackSummary       { return c.track }
func (c *CachedTrack) CreatedAt() time.Time      { return c.createdAt }
func (c *CachedTrack) UpdatedAt() time.Time      { return c.updatedAt }
func (c *CachedTrack) DeletedAt() *time.Time     { return c.deletedAt }
func (c *CachedTrack) SetID(id string)           { c.id = id }
func (c *CachedTrack) SetSequence(seq int)       { c.sequence = seq }
func (c *CachedTrack) SetTrack(t TrackSummary)   { c.track = t }
func (c *CachedTrack) SetCreatedAt(t time.Time)  { c.createdAt = t }
func (c *CachedTrack) SetUpdatedAt(t time.Time)  { c.updatedAt = t }
func (c *CachedTrack) SetDeletedAt(t *time.Time) { c.deletedAt = t }

// Validate checks that the cached track has an id and a valid summary.
func (c *CachedTrack) Validate() error {
	if c.id == "" {
		return fmt.Errorf("cached track id is required")
	}
	return c.track.Validate()
}
