//go:build js && wasm

// Command feedwasm is the browser client of the feed, served by `mixfeed serve` as /static/feed.wasm.
//
//	GOOS=js GOARCH=wasm go build -o static/feed.wasm ./cmd/feedwasm
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixfeed/internal/shared"
	"github.com/desertthunder/mixfeed/internal/web"
)

func main() {
	logger := shared.NewLogger(os.Stderr)
	logger.SetLevel(log.InfoLevel)

	if _, err := web.Run(context.Background(), web.Options{Logger: logger}); err != nil {
		logger.Error("feed client failed to start", "err", err)
		return
	}

	select {}
}
