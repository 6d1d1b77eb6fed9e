// Package server provides the preview server: HTTP routing, middleware, and the feed handlers
// that host the browser client.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Routes
//
//	GET /                   → first feed page rendered on the server, with pagination hints
//	GET /tracks/feed-api/   → upstream feed page, validated and re-encoded with absolute URLs
//	GET /static/            → wasm bundle and stylesheet from the configured directory
//	GET /health             → liveness check
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
