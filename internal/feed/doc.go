// Package feed loads the track feed incrementally.
//
// The first page is server-rendered; a [Loader] seeded with the page's hints fetches page 2
// onward when a trigger fires. Each page's tracks are deduplicated by slug against every
// track seen this session, rendered, appended through a [View], and their audio elements
// registered for exclusive playback.
//
// The loader moves through three phases:
//
//	Idle ──trigger──▶ Fetching ──has_next──▶ Idle
//	                     │ └──────error────▶ Idle
//	                     └──!has_next──────▶ Done
//
// Done is terminal. Entering it disconnects every attached [Trigger] and appends the
// end-of-feed panel once.
package feed
