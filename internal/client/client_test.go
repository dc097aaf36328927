package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"FundLens/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c := New("", nil)
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	assert.Zero(t, c.HTTP.Timeout)

	c = New("http://h/api/", nil)
	assert.Equal(t, "http://h/api", c.BaseURL)
}

func TestFunds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/funds", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"Alpha","albo":"123","type":"FPN","link":"https://x/a.pdf"}]`))
	}))
	defer srv.Close()

	funds, err := New(srv.URL+"/api/", srv.Client()).Funds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Fund{{Name: "Alpha", Albo: "123", Type: "FPN", Link: "https://x/a.pdf"}}, funds)
}

func TestFunds_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"bad json", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("<html>")) }},
		{"not an array", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"error":"x"}`)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			_, err := New(srv.URL, srv.Client()).Funds(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestFunds_NullIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer srv.Close()

	funds, err := New(srv.URL, srv.Client()).Funds(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, funds)
	assert.Empty(t, funds)
}

func TestAnalyzeURL(t *testing.T) {
	c := New("", nil)
	f := model.Fund{Name: "Fondo A&B", Albo: "12 3", Type: "PIP/FPA", Link: "https://x.example/a b.pdf?x=1&y=2"}
	assert.Equal(t,
		"/api/analyze?url=https%3A%2F%2Fx.example%2Fa+b.pdf%3Fx%3D1%26y%3D2&type=PIP%2FFPA&albo=12+3&name=Fondo+A%26B",
		c.AnalyzeURL(f))
	assert.Equal(t, "/api/proxy_pdf?url=https%3A%2F%2Fx.example%2Fa+b.pdf%3Fx%3D1%26y%3D2", c.ProxyPDFURL(f.Link))
}

func TestAnalyze(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{"url": q.Get("url"), "type": q.Get("type"), "albo": q.Get("albo"), "name": q.Get("name")}
		switch q.Get("albo") {
		case "err":
			w.Write([]byte(`{"general_costs":[],"debug_log":[],"error":"bad pdf"}`))
		case "500":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"boom"}`))
		case "503":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.Write([]byte(`{"general_costs":[],"chart_image":"/charts/chart_x.png","debug_log":["ok"]}`))
		}
	}))
	defer srv.Close()
	c := New(srv.URL, srv.Client())
	ctx := context.Background()

	res, err := c.Analyze(ctx, model.Fund{Name: "Alpha", Albo: "1", Type: "FPN", Link: "https://a/x.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "/charts/chart_x.png", res.ChartImage)
	assert.Equal(t, map[string]string{"url": "https://a/x.pdf", "type": "FPN", "albo": "1", "name": "Alpha"}, gotQuery)

	res, err = c.Analyze(ctx, model.Fund{Albo: "err", Link: "l"})
	require.NoError(t, err)
	assert.Equal(t, "bad pdf", res.Error)

	_, err = c.Analyze(ctx, model.Fund{Albo: "500", Link: "l"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 500, se.Code)
	assert.Equal(t, "boom", err.Error())

	_, err = c.Analyze(ctx, model.Fund{Albo: "503", Link: "l"})
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "503 Service Unavailable", err.Error())

	_, err = c.Analyze(ctx, model.Fund{Albo: "1"})
	assert.ErrorIs(t, err, ErrNoLink)
}
