// Package pdf describes the page layout information the chart finder needs,
// independent of the PDF engine that produces it.
package pdf

import "image"

// Box is a rectangle in PDF points, with the origin at the top-left corner.
type Box struct {
	Left, Top, Width, Height float64
}

// Bottom returns the lower edge of the box.
func (b Box) Bottom() float64 { return b.Top + b.Height }

// Word is a word of page text with the top coordinate of its line.
type Word struct {
	Text string
	Top  float64
}

// Page is the layout of a single page.
type Page struct {
	Width  float64
	Height float64
	Text   string
	Words  []Word
	Images []Box
	Paths  int // vector drawing operations
}

// Document is an open PDF.
type Document interface {
	NumPages() int
	Page(n int) (Page, error)
	// Render rasterises the horizontal band [top, bottom] of page n,
	// across its full width, at the given resolution.
	Render(n int, top, bottom, dpi float64) (image.Image, error)
	Close() error
}

// Opener opens a PDF held in memory.
type Opener func(data []byte) (Document, error)
