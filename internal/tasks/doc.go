// Package tasks runs long feed operations with real-time progress reporting.
//
// # Core Operations
//
// [FeedEngine] drives a [feed.Loader] against a collecting view:
//
//  1. [FeedEngine.Walk] : page through the feed until the server reports the last page
//     - Requests are paced with a token-bucket rate limiter
//     - Failed pages are retried a bounded number of times, reusing the loader's unchanged cursor
//     - Tracks are deduplicated by slug exactly as in the browser
//
//  2. [FeedEngine.Export] : walk the feed and write the tracks to disk
//     - Holds an advisory lock on the output directory for the duration of the export
//     - Writes the tracks in the requested format plus an export_manifest.json
//     - Caches every track through the optional [TrackCacher]
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, and a message. Updates use select
// with default to prevent blocking.
package tasks
