// Package ui implements an interactive terminal feed browser using bubbletea's Elm architecture.
//
// The browser is a second host for the feed loader: tracks are appended to a list as pages load,
// a scroll trigger fires when the selection nears the bottom, and enter plays a track through the
// speaker with at most one track playing at a time.
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Page loads run in commands off the update loop; audio state changes flow in from an [audio.Subscription].
//
// Keyboard navigation uses vim-style bindings (j/k, g, enter, o, m, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
