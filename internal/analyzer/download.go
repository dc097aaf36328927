package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"
)

var (
	// ErrNotPDF is returned when a downloaded document lacks the PDF header.
	ErrNotPDF = errors.New("document is not a PDF")
	// ErrTooLarge is returned when a document exceeds the size limit.
	ErrTooLarge = errors.New("document exceeds size limit")
	// ErrForbiddenURL is returned for non-http(s) URLs and, unless
	// AllowPrivate is set, for hosts on loopback or private networks.
	ErrForbiddenURL = errors.New("url not allowed")
)

// headerWindow is how far into the file the PDF header may appear.
const headerWindow = 1024

// Downloader fetches cost-sheet PDFs from fund websites. All outbound
// requests share one token bucket.
type Downloader struct {
	Client    *http.Client
	UserAgent string
	MaxBytes  int64
	Limiter   *rate.Limiter

	// AllowPrivate permits loopback, private and link-local hosts.
	AllowPrivate bool

	lookupIP func(ctx context.Context, host string) ([]net.IPAddr, error)
}

// NewDownloader creates a downloader allowing perSecond requests with burst.
func NewDownloader(client *http.Client, userAgent string, maxBytes int64, perSecond float64, burst int) *Downloader {
	return &Downloader{
		Client:    client,
		UserAgent: userAgent,
		MaxBytes:  maxBytes,
		Limiter:   rate.NewLimiter(rate.Limit(perSecond), burst),
		lookupIP:  net.DefaultResolver.LookupIPAddr,
	}
}

// checkURL enforces the scheme and host rules of ErrForbiddenURL.
func (d *Downloader) checkURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrForbiddenURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrForbiddenURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrForbiddenURL)
	}
	if d.AllowPrivate {
		return nil
	}

	var addrs []net.IPAddr
	if ip := net.ParseIP(host); ip != nil {
		addrs = []net.IPAddr{{IP: ip}}
	} else {
		lookup := d.lookupIP
		if lookup == nil {
			lookup = net.DefaultResolver.LookupIPAddr
		}
		if addrs, err = lookup(ctx, host); err != nil {
			return fmt.Errorf("resolve %s: %w", host, err)
		}
	}
	for _, a := range addrs {
		if internalIP(a.IP) {
			return fmt.Errorf("%w: %s resolves to %s", ErrForbiddenURL, host, a.IP)
		}
	}
	return nil
}

func internalIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsInterfaceLocalMulticast()
}

// Open starts a download and returns the response. The caller closes the body.
func (d *Downloader) Open(ctx context.Context, url string) (*http.Response, error) {
	if err := d.checkURL(ctx, url); err != nil {
		return nil, err
	}
	if d.Limiter != nil {
		if err := d.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download pdf: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("download pdf: status %d", resp.StatusCode)
	}
	return resp, nil
}

// Fetch downloads the whole document and checks it is a PDF.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := d.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body := io.Reader(resp.Body)
	if d.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, d.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if d.MaxBytes > 0 && int64(len(data)) > d.MaxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, d.MaxBytes)
	}
	if !bytes.Contains(data[:min(len(data), headerWindow)], []byte("%PDF-")) {
		return nil, ErrNotPDF
	}
	return data, nil
}
