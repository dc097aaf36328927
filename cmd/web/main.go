//go:build js && wasm

// Command web is the browser front-end, compiled to WebAssembly and loaded
// by index.html. Build it into web/dist with go generate ./web.
package main

import (
	"context"

	"FundLens/internal/browser"
	"FundLens/internal/client"
	"FundLens/internal/domview"
	"FundLens/internal/logger"
)

func main() {
	ctx := context.Background()

	page := domview.New()
	b := browser.New(client.New(client.DefaultBaseURL, nil), page)
	page.Bind(ctx, b)

	go func() {
		if err := b.Load(ctx); err != nil {
			logger.Log.Warnf("fund list unavailable: %v", err)
		}
	}()
	logger.Log.Info("fund browser ready")

	select {}
}
