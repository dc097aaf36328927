//go:build js && wasm

// Package domview renders the fund browser into the page DOM.
package domview

import (
	"context"
	"strconv"
	"syscall/js"

	"FundLens/internal/browser"
	"FundLens/internal/logger"
	"FundLens/internal/model"
)

const (
	errorColor = "#ef4444"
	queueSize  = 64
)

// Page implements browser.View over the elements of index.html.
type Page struct {
	doc js.Value

	searchInput     js.Value
	searchBtn       js.Value
	listContainer   js.Value
	fundList        js.Value
	countBadge      js.Value
	loadingFunds    js.Value
	detailPanel     js.Value
	backBtn         js.Value
	detailTitle     js.Value
	detailType      js.Value
	pdfLink         js.Value
	viewPdfLink     js.Value
	chartsContainer js.Value
	costError       js.Value
	costLoading     js.Value

	items     []js.Value
	itemFuncs []js.Func
	onSelect  func(f model.Fund)

	actions chan func()
}

var _ browser.View = (*Page)(nil)

// New looks up the page elements.
func New() *Page {
	doc := js.Global().Get("document")
	byID := func(id string) js.Value { return doc.Call("getElementById", id) }
	return &Page{
		doc:             doc,
		searchInput:     byID("searchInput"),
		searchBtn:       byID("searchBtn"),
		listContainer:   doc.Call("querySelector", ".list-container"),
		fundList:        byID("fundList"),
		countBadge:      byID("countBadge"),
		loadingFunds:    byID("loadingFunds"),
		detailPanel:     byID("detailPanel"),
		backBtn:         byID("backBtn"),
		detailTitle:     byID("detailTitle"),
		detailType:      byID("detailType"),
		pdfLink:         byID("pdfLink"),
		viewPdfLink:     byID("viewPdfLink"),
		chartsContainer: byID("chartsContainer"),
		costError:       byID("costError"),
		costLoading:     byID("costLoading"),
	}
}

// Bind wires the search box, search button, back button and list entries to
// b. JS callbacks must not block, so events are queued and handled in order
// by one goroutine; analyses then run on their own.
func (p *Page) Bind(ctx context.Context, b *browser.Browser) {
	p.actions = make(chan func(), queueSize)
	go func() {
		for fn := range p.actions {
			fn()
		}
	}()

	search := func() {
		term := p.searchInput.Get("value").String()
		p.enqueue(func() { b.Search(term) })
	}
	p.searchInput.Call("addEventListener", "keydown", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 && args[0].Get("key").String() == "Enter" {
			search()
		}
		return nil
	}))
	p.searchBtn.Call("addEventListener", "click", js.FuncOf(func(this js.Value, args []js.Value) any {
		search()
		return nil
	}))
	if p.backBtn.Truthy() {
		p.backBtn.Call("addEventListener", "click", js.FuncOf(func(this js.Value, args []js.Value) any {
			p.enqueue(b.Back)
			return nil
		}))
	}
	p.onSelect = func(f model.Fund) {
		p.enqueue(func() {
			if run := b.Activate(f); run != nil {
				go run(ctx)
			}
		})
	}
}

func (p *Page) enqueue(fn func()) {
	select {
	case p.actions <- fn:
	default:
		logger.Log.Warn("ui event queue full, dropping event")
	}
}

func show(el js.Value)                { el.Get("classList").Call("remove", "hidden") }
func hide(el js.Value)                { el.Get("classList").Call("add", "hidden") }
func addClass(el js.Value, c string)  { el.Get("classList").Call("add", c) }
func dropClass(el js.Value, c string) { el.Get("classList").Call("remove", c) }

func (p *Page) ShowFundsLoading() { show(p.loadingFunds) }

func (p *Page) HideFundsLoading() { hide(p.loadingFunds) }

func (p *Page) ShowFundsError(msg string) {
	p.loadingFunds.Set("innerText", msg)
	p.loadingFunds.Get("style").Set("color", errorColor)
	addClass(p.loadingFunds, "failed")
	show(p.loadingFunds)
}

func (p *Page) SetListVisible(visible bool) {
	if visible {
		addClass(p.listContainer, "visible")
	} else {
		dropClass(p.listContainer, "visible")
	}
}

// RenderList rebuilds fundList. Fund fields are set as textContent.
func (p *Page) RenderList(funds []model.Fund) {
	for _, fn := range p.itemFuncs {
		fn.Release()
	}
	p.items = p.items[:0]
	p.itemFuncs = p.itemFuncs[:0]

	p.fundList.Set("innerHTML", "")
	p.countBadge.Set("innerText", strconv.Itoa(len(funds)))

	for _, f := range funds {
		li := p.doc.Call("createElement", "li")
		li.Set("className", "fund-item")

		name := p.doc.Call("createElement", "span")
		name.Set("className", "fund-name")
		name.Set("textContent", f.Name)
		li.Call("appendChild", name)

		meta := p.doc.Call("createElement", "div")
		meta.Set("className", "fund-meta")
		meta.Set("textContent", browser.MetaLine(f))
		li.Call("appendChild", meta)

		fund := f
		fn := js.FuncOf(func(this js.Value, args []js.Value) any {
			if p.onSelect != nil {
				p.onSelect(fund)
			}
			return nil
		})
		li.Call("addEventListener", "click", fn)

		p.fundList.Call("appendChild", li)
		p.items = append(p.items, li)
		p.itemFuncs = append(p.itemFuncs, fn)
	}
}

func (p *Page) HighlightFund(i int) {
	for j, li := range p.items {
		if j == i {
			addClass(li, "active")
		} else {
			dropClass(li, "active")
		}
	}
}

func (p *Page) ShowDetail(d browser.Detail) {
	addClass(p.listContainer, "hidden-mobile")
	addClass(p.detailPanel, "visible-mobile")
	show(p.detailPanel)

	p.detailTitle.Set("innerText", d.Title)
	p.detailType.Set("innerText", d.Type)
	p.pdfLink.Set("href", d.PDFLink)
	p.viewPdfLink.Set("href", d.ViewPDFLink)
}

func (p *Page) HideDetail() {
	dropClass(p.listContainer, "hidden-mobile")
	dropClass(p.detailPanel, "visible-mobile")
	hide(p.detailPanel)
}

func (p *Page) ResetAnalysis() {
	hide(p.chartsContainer)
	p.chartsContainer.Set("innerHTML", "")
	hide(p.costError)
}

func (p *Page) SetCostLoading(visible bool) {
	if visible {
		show(p.costLoading)
	} else {
		hide(p.costLoading)
	}
}

func (p *Page) ShowCostError(msg string) {
	p.costError.Set("innerText", msg)
	show(p.costError)
}

func (p *Page) RenderChart(card browser.ChartCard) {
	show(p.chartsContainer)
	p.chartsContainer.Set("innerHTML", "")

	div := p.doc.Call("createElement", "div")
	div.Set("className", "chart-card")
	if card.ImageURL != "" {
		div.Get("style").Set("gridColumn", "1 / -1")
		h4 := p.doc.Call("createElement", "h4")
		h4.Set("innerText", card.Caption)
		div.Call("appendChild", h4)

		img := p.doc.Call("createElement", "img")
		img.Set("src", card.ImageURL)
		img.Set("alt", card.Caption)
		div.Call("appendChild", img)
	} else {
		msg := p.doc.Call("createElement", "p")
		msg.Set("innerText", card.Message)
		div.Call("appendChild", msg)
	}
	p.chartsContainer.Call("appendChild", div)
}
