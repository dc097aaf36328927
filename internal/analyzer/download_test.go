package analyzer

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloader_Fetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/ok.pdf":
			w.Write([]byte("%PDF-1.7\nbody"))
		case "/junk-prefix.pdf":
			w.Write([]byte("\r\n\r\n%PDF-1.4\n"))
		case "/page.html":
			w.Write([]byte("<html>not found</html>"))
		case "/big.pdf":
			w.Write([]byte("%PDF-" + strings.Repeat("x", 100)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	d := NewDownloader(srv.Client(), "agent/1.0", 64, 100, 10)
	d.AllowPrivate = true
	ctx := context.Background()

	data, err := d.Fetch(ctx, srv.URL+"/ok.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7\nbody", string(data))
	assert.Equal(t, "agent/1.0", gotUA)

	_, err = d.Fetch(ctx, srv.URL+"/junk-prefix.pdf")
	assert.NoError(t, err)

	_, err = d.Fetch(ctx, srv.URL+"/page.html")
	assert.True(t, errors.Is(err, ErrNotPDF))

	_, err = d.Fetch(ctx, srv.URL+"/big.pdf")
	assert.True(t, errors.Is(err, ErrTooLarge))

	_, err = d.Fetch(ctx, srv.URL+"/missing.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestDownloader_RateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-"))
	}))
	defer srv.Close()

	d := NewDownloader(srv.Client(), "", 0, 0.001, 1)
	d.AllowPrivate = true
	_, err := d.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestDownloader_RejectsInternalURLs(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("%PDF-"))
	}))
	defer srv.Close()

	d := NewDownloader(srv.Client(), "", 0, 100, 10)
	d.lookupIP = func(_ context.Context, host string) ([]net.IPAddr, error) {
		switch host {
		case "intranet.example":
			return []net.IPAddr{{IP: net.ParseIP("10.1.2.3")}}, nil
		case "fund.example":
			return []net.IPAddr{{IP: net.ParseIP("93.184.216.34")}}, nil
		}
		return nil, errors.New("no such host")
	}
	ctx := context.Background()

	for _, u := range []string{
		srv.URL + "/x.pdf",
		"http://169.254.169.254/latest/meta-data",
		"http://[::1]/x.pdf",
		"http://0.0.0.0/x.pdf",
		"http://intranet.example/x.pdf",
		"file:///etc/passwd",
		"ftp://fund.example/x.pdf",
		"/relative.pdf",
	} {
		_, err := d.Open(ctx, u)
		assert.ErrorIs(t, err, ErrForbiddenURL, u)
	}
	assert.Zero(t, hits.Load())

	assert.NoError(t, d.checkURL(ctx, "https://fund.example/x.pdf"))

	d.AllowPrivate = true
	resp, err := d.Open(ctx, srv.URL+"/x.pdf")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(1), hits.Load())
}
