package analyzer

import (
	"fmt"
	"math"
	"strings"

	"FundLens/internal/pdf"
)

const (
	minImageWidth  = 200.0 // points
	minImageHeight = 100.0
	minVectorPaths = 30

	imageMarginTop    = 30.0
	imageMarginBottom = 80.0

	anchorMaxTop     = 400.0
	defaultAnchorTop = 100.0
	vectorMarginTop  = 20.0
	vectorBandHeight = 550.0
)

var relevantKeywords = []string{"onerosita", "isc", "grafico"}

// ChartKind says how a chart was drawn on its page.
type ChartKind string

const (
	KindImage  ChartKind = "image"
	KindVector ChartKind = "vector"
)

// Selection is the chart chosen in a document: a page and the horizontal
// band to crop, in points.
type Selection struct {
	Page   int
	Kind   ChartKind
	Top    float64
	Bottom float64
}

type candidate struct {
	page  int
	kind  ChartKind
	image pdf.Box
}

// FindChart locates the last chart of the cost sheet. Cost sheets put the ISC
// chart after the text mentioning it, so the search stops one page past the
// last page naming the indicator. It returns nil when no page qualifies.
func FindChart(doc pdf.Document, debug *DebugLog) (*Selection, error) {
	n := doc.NumPages()
	pages := make([]pdf.Page, n)
	folded := make([]string, n)

	lastRelevant := -1
	for i := 0; i < n; i++ {
		p, err := doc.Page(i)
		if err != nil {
			return nil, err
		}
		pages[i] = p
		folded[i] = fold(p.Text)
		if containsAny(folded[i], relevantKeywords...) {
			lastRelevant = i
		}
	}

	searchEnd := n
	if lastRelevant >= 0 {
		searchEnd = min(n, lastRelevant+2)
	}
	debug.Addf("scanning pages 2-%d of %d", searchEnd, n)

	var found *candidate
	for i := 1; i < searchEnd; i++ {
		p := pages[i]
		if img, ok := lastLargeImage(p.Images); ok {
			found = &candidate{page: i, kind: KindImage, image: img}
			debug.Addf("page %d: image %.0fx%.0fpt", i+1, img.Width, img.Height)
			continue
		}
		if p.Paths > minVectorPaths && containsAny(folded[i], "isc", "onerosita") {
			found = &candidate{page: i, kind: KindVector}
			debug.Addf("page %d: vector drawing with %d paths", i+1, p.Paths)
		}
	}
	if found == nil {
		debug.Addf("no chart candidate found")
		return nil, nil
	}

	sel := crop(found, pages[found.page])
	debug.Addf("selected %s chart on page %d, band %.0f-%.0fpt", sel.Kind, sel.Page+1, sel.Top, sel.Bottom)
	return sel, nil
}

func crop(c *candidate, p pdf.Page) *Selection {
	sel := &Selection{Page: c.page, Kind: c.kind}
	switch c.kind {
	case KindImage:
		sel.Top = math.Max(0, c.image.Top-imageMarginTop)
		sel.Bottom = math.Min(p.Height, c.image.Bottom()+imageMarginBottom)
	default:
		anchor := defaultAnchorTop
		for _, w := range p.Words {
			if strings.Contains(fold(w.Text), "onerosita") && w.Top < anchorMaxTop {
				anchor = w.Top
				break
			}
		}
		sel.Top = math.Max(0, anchor-vectorMarginTop)
		sel.Bottom = math.Min(p.Height, sel.Top+vectorBandHeight)
	}
	return sel
}

func lastLargeImage(images []pdf.Box) (pdf.Box, bool) {
	for i := len(images) - 1; i >= 0; i-- {
		if images[i].Width > minImageWidth && images[i].Height > minImageHeight {
			return images[i], true
		}
	}
	return pdf.Box{}, false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// DebugLog collects the human-readable trace returned with an analysis.
type DebugLog struct {
	lines []string
}

// Addf appends a formatted line. A nil log discards it.
func (d *DebugLog) Addf(format string, args ...any) {
	if d == nil {
		return
	}
	d.lines = append(d.lines, fmt.Sprintf(format, args...))
}

// Lines returns the collected lines, never nil.
func (d *DebugLog) Lines() []string {
	if d == nil || d.lines == nil {
		return []string{}
	}
	return d.lines
}
