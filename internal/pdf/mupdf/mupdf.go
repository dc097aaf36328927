// Package mupdf implements pdf.Document on top of MuPDF.
package mupdf

import (
	"fmt"
	"image"
	"math"
	"strings"
	"sync"

	"FundLens/internal/pdf"

	"github.com/gen2brain/go-fitz"
)

// Document wraps a MuPDF document. MuPDF contexts are not safe for
// concurrent use, so every call holds the document mutex.
type Document struct {
	mu  sync.Mutex
	doc *fitz.Document
}

// Open parses a PDF held in memory.
func Open(data []byte) (pdf.Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &Document{doc: doc}, nil
}

func (d *Document) NumPages() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.NumPage()
}

// Page extracts text, image placements and the vector path count of page n.
func (d *Document) Page(n int) (pdf.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	text, err := d.doc.Text(n)
	if err != nil {
		return pdf.Page{}, fmt.Errorf("page %d text: %w", n, err)
	}
	markup, err := d.doc.HTML(n, false)
	if err != nil {
		return pdf.Page{}, fmt.Errorf("page %d html: %w", n, err)
	}
	layout, err := pdf.ParseHTMLLayout(strings.NewReader(markup))
	if err != nil {
		return pdf.Page{}, fmt.Errorf("page %d layout: %w", n, err)
	}
	svg, err := d.doc.SVG(n)
	if err != nil {
		return pdf.Page{}, fmt.Errorf("page %d svg: %w", n, err)
	}

	page := pdf.Page{
		Width:  layout.Width,
		Height: layout.Height,
		Text:   text,
		Words:  layout.Words,
		Images: layout.Images,
		Paths:  pdf.CountPaths(svg),
	}
	if page.Width == 0 || page.Height == 0 {
		if b, err := d.doc.Bound(n); err == nil {
			page.Width = float64(b.Dx())
			page.Height = float64(b.Dy())
		}
	}
	return page, nil
}

// Render rasterises page n at dpi and crops it to the band [top, bottom],
// given in points.
func (d *Document) Render(n int, top, bottom, dpi float64) (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := d.doc.ImageDPI(n, dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", n, err)
	}
	scale := dpi / 72
	b := img.Bounds()
	band := image.Rect(b.Min.X, b.Min.Y+int(math.Floor(top*scale)), b.Max.X, b.Min.Y+int(math.Ceil(bottom*scale)))
	return img.SubImage(band.Intersect(b)), nil
}

func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Close()
}
