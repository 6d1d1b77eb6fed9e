// Package repositories implements SQLite persistence for the local track cache.
//
// [TrackRepository] stores every [models.TrackSummary] the feed has delivered, keyed by slug,
// with atomic sequence generation for stable ordering. Deletes are soft: deleted_at is set and
// deleted rows are excluded from queries. Caching a slug that was deleted restores it.
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
