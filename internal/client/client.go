// Package client talks to the FundLens HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"FundLens/internal/model"
)

// DefaultBaseURL is the API root when the UI is served by the API itself.
const DefaultBaseURL = "/api"

// ErrNoLink is returned when analysis is requested for a fund without a PDF.
var ErrNoLink = errors.New("fund has no pdf link")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code    int
	Status  string
	Message string // "error" field of the body, if any
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Status
}

// Client is a FundLens API client.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client rooted at baseURL.
func New(baseURL string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	// The default client has no timeout; analyses can run for minutes.
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: hc}
}

// Funds fetches the whole fund list.
func (c *Client) Funds(ctx context.Context) ([]model.Fund, error) {
	var funds []model.Fund
	if err := c.get(ctx, c.BaseURL+"/funds", &funds); err != nil {
		return nil, fmt.Errorf("fetch funds: %w", err)
	}
	if funds == nil {
		funds = []model.Fund{}
	}
	return funds, nil
}

// Analyze requests the cost analysis of a fund. A result carrying an Error
// is returned as-is; transport failures and non-2xx statuses are errors.
func (c *Client) Analyze(ctx context.Context, f model.Fund) (*model.AnalysisResult, error) {
	if !f.HasLink() {
		return nil, ErrNoLink
	}
	var res model.AnalysisResult
	if err := c.get(ctx, c.AnalyzeURL(f), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AnalyzeURL builds the /analyze request URL for a fund.
func (c *Client) AnalyzeURL(f model.Fund) string {
	return c.BaseURL + "/analyze?url=" + url.QueryEscape(f.Link) +
		"&type=" + url.QueryEscape(f.Type) +
		"&albo=" + url.QueryEscape(f.Albo) +
		"&name=" + url.QueryEscape(f.Name)
}

// ProxyPDFURL is the same-origin address streaming a fund's PDF.
func (c *Client) ProxyPDFURL(link string) string {
	return c.BaseURL + "/proxy_pdf?url=" + url.QueryEscape(link)
}

func (c *Client) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Code: resp.StatusCode, Status: resp.Status}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil {
			se.Message = payload.Error
		}
		return se
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
