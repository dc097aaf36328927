// Command tui is a terminal fund browser talking to a running FundLens
// server.
package main

import (
	"context"
	"os"
	"strings"

	"FundLens/internal/browser"
	"FundLens/internal/client"
	"FundLens/internal/logger"
	"FundLens/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

const defaultAPI = "http://localhost:8080/api"

func main() {
	api := defaultAPI
	if v := os.Getenv("FUNDLENS_API"); v != "" {
		api = v
	}

	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "logs/tui.log"
	}
	if err := logger.InitFileOnly(os.Getenv("LOG_LEVEL"), logFile); err != nil {
		logger.Log.Fatalf("init logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := tui.NewBridge()
	b := browser.New(client.New(api, nil), bridge)

	m := tui.NewModel(ctx, b)
	m.ChartBase = strings.TrimSuffix(strings.TrimRight(api, "/"), "/api")

	p := tea.NewProgram(m, tea.WithAltScreen())
	bridge.Attach(p)

	if _, err := p.Run(); err != nil {
		logger.Log.Fatalf("run tui: %v", err)
	}
}
