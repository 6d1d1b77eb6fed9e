// Package web is the browser host of the feed loader, compiled to WebAssembly.
//
// It binds the loader and the audio manager to the server-rendered document:
//
//   - #track-feed carries data-has-next and data-next-page, and holds the cards
//   - #loading is shown while a page is in flight
//   - #feed-sentinel is observed with an IntersectionObserver; without one a scroll
//     listener fires within 200px of the bottom
//   - #sr-announcer is the polite live region
//   - #backToTop appears past 600px of scroll
//
// Every card is a [data-track-slug] element with one <audio> and an optional .play-btn.
//
// Only the DOM contract lives outside the js && wasm build so it can be tested natively.
package web
