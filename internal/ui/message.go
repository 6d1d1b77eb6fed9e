package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mixfeed/internal/audio"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPageLoaded MsgKind = iota
	MsgStateChanged
	MsgPlayFailed
	MsgOpenFailed
)

// pageResult is the payload of [MsgPageLoaded].
type pageResult struct {
	cards        []card
	announcement string
	end          bool
	err          error
}

// pageLoadedMsg is the constructor for [MsgPageLoaded]
func pageLoadedMsg(result pageResult) Msg {
	return Msg{kind: MsgPageLoaded, data: result}
}

// stateChangedMsg is the constructor for [MsgStateChanged]
func stateChangedMsg(change audio.StateChange) Msg {
	return Msg{kind: MsgStateChanged, data: change}
}

// playFailedMsg is the constructor for [MsgPlayFailed]
func playFailedMsg(slug string, err error) Msg {
	return Msg{
		kind: MsgPlayFailed,
		data: struct {
			slug string
			err  error
		}{slug, err},
	}
}

// openFailedMsg is the constructor for [MsgOpenFailed]
func openFailedMsg(err error) Msg {
	return Msg{kind: MsgOpenFailed, data: err}
}
