// Package models defines the feed's wire types and the persisted cache entity.
//
// The package contains two categories of types:
//
// 1. Wire types: read-only data supplied by the feed endpoint
//   - [TrackSummary] : One track card's worth of data, keyed by slug
//   - [Profile] : The uploader shown on a card
//   - [FeedPage] : One page of the paginated feed
//   - [Cursor] : Client-side pagination position
//
// 2. Persistent entities: database-backed models
//   - [CachedTrack] : A track summary remembered across sessions
//
// Persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
