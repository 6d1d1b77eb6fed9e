//go:build js && wasm

package web

import (
	"syscall/js"

	"github.com/desertthunder/mixfeed/internal/audio"
	"github.com/desertthunder/mixfeed/internal/feed"
	"github.com/desertthunder/mixfeed/internal/models"
)

var _ feed.View = (*domView)(nil)

// domView renders loader output into the document.
type domView struct {
	feed      js.Value
	loading   js.Value
	announcer js.Value
	buttons   []js.Func
}

func (v *domView) SetLoading(loading bool) {
	if !v.loading.Truthy() {
		return
	}
	display := "none"
	if loading {
		display = ""
	}
	v.loading.Get("style").Set("display", display)
}

func (v *domView) AppendCard(track models.TrackSummary, markup string) audio.Element {
	v.feed.Call("insertAdjacentHTML", "beforeend", markup)
	card := v.feed.Get("lastElementChild")
	if !card.Truthy() {
		return nil
	}
	return v.bindCard(card)
}

func (v *domView) AppendEndPanel(markup string) {
	v.feed.Call("insertAdjacentHTML", "beforeend", markup)
}

// Announce replaces the live region text. Clearing it first makes repeated messages audible.
func (v *domView) Announce(message string) {
	if !v.announcer.Truthy() {
		return
	}
	v.announcer.Set("textContent", "")
	v.announcer.Set("textContent", message)
}

// bindCard wraps the card's <audio> and wires its .play-btn, if any.
func (v *domView) bindCard(card js.Value) audio.Element {
	node := card.Call("querySelector", "audio")
	if !node.Truthy() {
		return nil
	}
	el := newAudioElement(node)

	button := card.Call("querySelector", "."+PlayButtonClass)
	if button.Truthy() {
		click := js.FuncOf(func(js.Value, []js.Value) any {
			el.Toggle()
			return nil
		})
		v.buttons = append(v.buttons, click)
		button.Call("addEventListener", "click", click)
	}
	return el
}

// buttonIndicator mirrors track state onto the card's play button.
func buttonIndicator(doc js.Value) audio.Indicator {
	return audio.IndicatorFunc(func(slug string, state audio.State) {
		card := doc.Call("querySelector", CardQuery(slug))
		if !card.Truthy() {
			return
		}
		button := card.Call("querySelector", "."+PlayButtonClass)
		if !button.Truthy() {
			return
		}
		b := PlayButton(state)
		button.Set("textContent", b.Label)
		button.Call("setAttribute", "aria-pressed", b.Pressed)
	})
}
