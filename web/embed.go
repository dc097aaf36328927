// Package web embeds the static front-end served at the site root.
//
// The WebAssembly front-end loaded by index.html is built into web/dist,
// the default server.assets_dir, with:
//
//	go generate ./web
package web

import "embed"

//go:generate mkdir -p dist
//go:generate sh -c "GOOS=js GOARCH=wasm go build -o dist/main.wasm ../cmd/web"
//go:generate sh -c "cp \"$(go env GOROOT)/lib/wasm/wasm_exec.js\" dist/ 2>/dev/null || cp \"$(go env GOROOT)/misc/wasm/wasm_exec.js\" dist/"

// Static holds index.html and its stylesheet.
//
//go:embed static
var Static embed.FS
