package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"FundLens/internal/model"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	rowSelector    = cascadia.MustCompile("table#datatable-1 tbody tr")
	anchorSelector = cascadia.MustCompile("a[href]")
)

// COVIPFetcher scrapes the COVIP cost-sheet list page.
type COVIPFetcher struct {
	Client    *http.Client
	ListURL   string
	UserAgent string
}

// NewCOVIPFetcher creates a fetcher for the given list page.
func NewCOVIPFetcher(client *http.Client, listURL, userAgent string) *COVIPFetcher {
	return &COVIPFetcher{Client: client, ListURL: listURL, UserAgent: userAgent}
}

func (f *COVIPFetcher) Name() string { return "covip" }

// ListFunds downloads the list page and parses the fund table.
func (f *COVIPFetcher) ListFunds(ctx context.Context) ([]model.Fund, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.ListURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch covip list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("covip list: status %d, body: %s", resp.StatusCode, string(body))
	}

	base, err := url.Parse(f.ListURL)
	if err != nil {
		return nil, fmt.Errorf("parse list url: %w", err)
	}
	return ParseFundTable(resp.Body, base)
}

// ParseFundTable extracts funds from the COVIP table. Columns are registry
// number, name, cost-sheet link and fund type; rows with fewer than four
// cells are skipped. Relative links are resolved against base when non-nil.
func ParseFundTable(r io.Reader, base *url.URL) ([]model.Fund, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse covip html: %w", err)
	}

	funds := []model.Fund{}
	for _, row := range rowSelector.MatchAll(doc) {
		cells := childCells(row)
		if len(cells) < 4 {
			continue
		}
		fund := model.Fund{
			Albo: nodeText(cells[0]),
			Name: nodeText(cells[1]),
			Type: nodeText(cells[3]),
		}
		if a := anchorSelector.MatchFirst(cells[2]); a != nil {
			fund.Link = resolveLink(base, attr(a, "href"))
		}
		funds = append(funds, fund)
	}
	return funds, nil
}

func childCells(row *html.Node) []*html.Node {
	var cells []*html.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "td" {
			cells = append(cells, c)
		}
	}
	return cells
}

// nodeText returns the text content of n with whitespace runs collapsed.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || base == nil {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(u).String()
}
