// Package audio keeps at most one audio element playing across the whole feed.
//
// A [Manager] tracks every registered [Element] by slug. When an element starts playing,
// the previously playing element is paused, rewound to the start, and its indicator is
// reset to [Stopped]. Elements registered after start-up (cards appended by the feed
// loader) take part in the same exclusivity.
//
// The manager never holds its lock while calling back into an element, so elements that
// dispatch their pause event synchronously from Pause do not deadlock.
package audio
