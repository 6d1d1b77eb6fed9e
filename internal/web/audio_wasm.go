//go:build js && wasm

package web

import (
	"syscall/js"

	"github.com/desertthunder/mixfeed/internal/audio"
)

var _ audio.Element = (*audioElement)(nil)

// audioElement wraps an <audio> node.
type audioElement struct {
	node  js.Value
	funcs []js.Func
}

func newAudioElement(node js.Value) *audioElement {
	return &audioElement{node: node}
}

func (a *audioElement) Pause() { a.node.Call("pause") }

func (a *audioElement) Rewind() { a.node.Set("currentTime", 0) }

func (a *audioElement) Listen(onPlay, onPause func()) {
	a.on("play", onPlay)
	a.on("pause", onPause)
	a.on("ended", onPause)
}

// Toggle plays a paused element and pauses a playing one.
func (a *audioElement) Toggle() {
	if a.node.Get("paused").Bool() {
		// play() returns a promise that rejects when autoplay is blocked; the element stays paused.
		promise := a.node.Call("play")
		if promise.Truthy() && promise.Get("catch").Truthy() {
			var catch js.Func
			catch = js.FuncOf(func(js.Value, []js.Value) any {
				catch.Release()
				return nil
			})
			promise.Call("catch", catch)
		}
		return
	}
	a.Pause()
}

func (a *audioElement) on(event string, fn func()) {
	f := js.FuncOf(func(js.Value, []js.Value) any {
		fn()
		return nil
	})
	a.funcs = append(a.funcs, f)
	a.node.Call("addEventListener", event, f)
}
