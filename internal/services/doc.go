// Package services implements the HTTP clients that talk to the audio-sharing site.
//
// # Feed Client
//
// [FeedClient] requests one page of the track feed at a time:
//
//	GET {base_url}/tracks/feed-api/?page=N
//	Accept: application/json
//
// An opaque session cookie and a User-Agent are forwarded when configured. The client never
// interprets the session; authentication happens in the browser.
//
// # Error Handling
//
// Failures are classified with sentinel errors from the shared package:
//   - [shared.ErrFeedRequest] : the request could not be sent or the body could not be read
//   - [shared.ErrFeedStatus] : the server answered with a non-2xx status
//   - [shared.ErrMalformedFeed] : the body is not JSON, lacks tracks/has_next, or has a track without a slug
//
// # Raw API Client
//
// [APIService] performs raw GET requests and reports status, headers, and body. It backs the
// "api get" debugging command.
package services
