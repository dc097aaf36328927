// Package tui is a terminal front-end for the fund browser.
package tui

import (
	"sync"

	"FundLens/internal/browser"
	"FundLens/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// Messages delivered from the controller to the model, one per View call.
type (
	fundsLoadingMsg struct{ loading bool }
	fundsErrorMsg   struct{ text string }
	listVisibleMsg  struct{ visible bool }
	listMsg         struct{ funds []model.Fund }
	highlightMsg    struct{ index int }
	detailMsg       struct{ detail browser.Detail }
	hideDetailMsg   struct{}
	resetMsg        struct{}
	costLoadingMsg  struct{ visible bool }
	costErrorMsg    struct{ text string }
	chartMsg        struct{ card browser.ChartCard }
)

// Bridge implements browser.View by forwarding every call to a running
// bubbletea program as a message. Calls made before a sender is attached
// are dropped.
type Bridge struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

var _ browser.View = (*Bridge)(nil)

// NewBridge returns a Bridge with no sender attached.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach routes messages to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.SetSender(p.Send)
}

// SetSender routes messages to send.
func (b *Bridge) SetSender(send func(tea.Msg)) {
	b.mu.Lock()
	b.send = send
	b.mu.Unlock()
}

func (b *Bridge) emit(msg tea.Msg) {
	b.mu.RLock()
	send := b.send
	b.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (b *Bridge) ShowFundsLoading()                  { b.emit(fundsLoadingMsg{loading: true}) }
func (b *Bridge) HideFundsLoading()                  { b.emit(fundsLoadingMsg{loading: false}) }
func (b *Bridge) ShowFundsError(msg string)          { b.emit(fundsErrorMsg{text: msg}) }
func (b *Bridge) SetListVisible(visible bool)        { b.emit(listVisibleMsg{visible: visible}) }
func (b *Bridge) HighlightFund(i int)                { b.emit(highlightMsg{index: i}) }
func (b *Bridge) ShowDetail(d browser.Detail)        { b.emit(detailMsg{detail: d}) }
func (b *Bridge) HideDetail()                        { b.emit(hideDetailMsg{}) }
func (b *Bridge) ResetAnalysis()                     { b.emit(resetMsg{}) }
func (b *Bridge) SetCostLoading(visible bool)        { b.emit(costLoadingMsg{visible: visible}) }
func (b *Bridge) ShowCostError(msg string)           { b.emit(costErrorMsg{text: msg}) }
func (b *Bridge) RenderChart(card browser.ChartCard) { b.emit(chartMsg{card: card}) }

// RenderList copies funds so the model never shares the controller's slice.
func (b *Bridge) RenderList(funds []model.Fund) {
	b.emit(listMsg{funds: append([]model.Fund(nil), funds...)})
}
