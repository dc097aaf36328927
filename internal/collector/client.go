package collector

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"time"
)

// NewHTTPClient builds the outbound client shared by the COVIP scraper and
// the PDF downloader, with optional proxy support.
func NewHTTPClient(proxyURL string, timeout time.Duration, insecureSkipVerify bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if insecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
