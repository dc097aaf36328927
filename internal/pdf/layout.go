package pdf

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	pageSelector  = cascadia.MustCompile("div[id^=page]")
	imageSelector = cascadia.MustCompile("img[style]")
	lineSelector  = cascadia.MustCompile("p[style]")
)

// Layout is what ParseHTMLLayout recovers from a page rendered as HTML.
type Layout struct {
	Width  float64
	Height float64
	Images []Box
	Words  []Word
}

// ParseHTMLLayout reads the absolutely positioned HTML MuPDF emits for a
// page: a page div carrying the size, img elements for placed images and one
// p element per text line. Coordinates are in points.
func ParseHTMLLayout(r io.Reader) (*Layout, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}

	l := &Layout{}
	if page := pageSelector.MatchFirst(doc); page != nil {
		st := parseStyle(attr(page, "style"))
		l.Width = st["width"]
		l.Height = st["height"]
	}

	for _, img := range imageSelector.MatchAll(doc) {
		st := parseStyle(attr(img, "style"))
		l.Images = append(l.Images, Box{
			Left:   st["left"],
			Top:    st["top"],
			Width:  st["width"],
			Height: st["height"],
		})
	}

	for _, p := range lineSelector.MatchAll(doc) {
		top := parseStyle(attr(p, "style"))["top"]
		for _, w := range strings.Fields(textContent(p)) {
			l.Words = append(l.Words, Word{Text: w, Top: top})
		}
	}
	return l, nil
}

// CountPaths counts the vector drawing elements of an SVG page rendering.
// Glyph outlines, clip paths and other definitions are not counted.
func CountPaths(svg string) int {
	z := html.NewTokenizer(strings.NewReader(svg))
	count, defsDepth := 0, 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return count
		case html.StartTagToken:
			name, _ := z.TagName()
			switch tag := string(name); {
			case isDefinition(tag):
				defsDepth++
			case defsDepth == 0 && isShape(tag):
				count++
			}
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if defsDepth == 0 && isShape(string(name)) {
				count++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if isDefinition(string(name)) && defsDepth > 0 {
				defsDepth--
			}
		}
	}
}

func isDefinition(tag string) bool {
	switch tag {
	case "defs", "symbol", "clippath", "mask", "pattern":
		return true
	}
	return false
}

func isShape(tag string) bool {
	return tag == "path" || tag == "rect"
}

// parseStyle reads "key:12.5pt;..." declarations into numbers. Values that
// are not numeric lengths are dropped.
func parseStyle(style string) map[string]float64 {
	out := make(map[string]float64)
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		v = strings.TrimSuffix(strings.TrimSpace(v), "pt")
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		out[strings.TrimSpace(strings.ToLower(k))] = f
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
