//go:build js && wasm

package web

import (
	"context"
	"syscall/js"

	"github.com/desertthunder/mixfeed/internal/feed"
)

// observeSentinel fires the loader whenever the sentinel enters the margin-expanded viewport.
func observeSentinel(ctx context.Context, loader *feed.Loader, sentinel js.Value, rootMargin string) *feed.Sentinel {
	trigger := feed.NewSentinel(loader)

	callback := js.FuncOf(func(_ js.Value, args []js.Value) any {
		entries := args[0]
		for i := 0; i < entries.Length(); i++ {
			if entries.Index(i).Get("isIntersecting").Bool() {
				go trigger.Intersect(ctx, true)
				break
			}
		}
		return nil
	})

	options := js.Global().Get("Object").New()
	options.Set("rootMargin", rootMargin)
	observer := js.Global().Get("IntersectionObserver").New(callback, options)
	observer.Call("observe", sentinel)

	trigger.OnDisconnect(func() {
		observer.Call("disconnect")
		callback.Release()
	})
	return trigger
}

// watchScroll is the fallback trigger for browsers without IntersectionObserver.
func watchScroll(ctx context.Context, loader *feed.Loader, threshold float64) *feed.ScrollWatcher {
	trigger := feed.NewScrollWatcher(loader, threshold)
	window := js.Global()

	listener := js.FuncOf(func(js.Value, []js.Value) any {
		v := currentViewport()
		if trigger.NearBottom(v) {
			go trigger.Scrolled(ctx, v)
		}
		return nil
	})
	opts := js.Global().Get("Object").New()
	opts.Set("passive", true)
	window.Call("addEventListener", "scroll", listener, opts)

	trigger.OnDisconnect(func() {
		window.Call("removeEventListener", "scroll", listener)
		listener.Release()
	})
	return trigger
}

// watchBackToTop toggles the back-to-top control and scrolls up when it is clicked.
func watchBackToTop(button js.Value) {
	window := js.Global()

	onScroll := js.FuncOf(func(js.Value, []js.Value) any {
		display := "none"
		if feed.BackToTopVisible(window.Get("scrollY").Float()) {
			display = ""
		}
		button.Get("style").Set("display", display)
		return nil
	})
	opts := js.Global().Get("Object").New()
	opts.Set("passive", true)
	window.Call("addEventListener", "scroll", onScroll, opts)

	onClick := js.FuncOf(func(js.Value, []js.Value) any {
		to := js.Global().Get("Object").New()
		to.Set("top", 0)
		to.Set("behavior", "smooth")
		window.Call("scrollTo", to)
		return nil
	})
	button.Call("addEventListener", "click", onClick)
}

func currentViewport() feed.Viewport {
	window := js.Global()
	root := window.Get("document").Get("documentElement")
	return feed.Viewport{
		ScrollY:        window.Get("scrollY").Float(),
		InnerHeight:    window.Get("innerHeight").Float(),
		DocumentHeight: root.Get("scrollHeight").Float(),
	}
}
