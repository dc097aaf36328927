package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"FundLens/internal/catalog"
	"FundLens/internal/collector"
	"FundLens/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAnalyzer struct {
	got    []model.AnalysisRequest
	result model.AnalysisResult
}

func (s *stubAnalyzer) Analyze(_ context.Context, req model.AnalysisRequest) model.AnalysisResult {
	s.got = append(s.got, req)
	return s.result
}

type stubPDFs struct {
	body string
	err  error
	got  string
}

func (s *stubPDFs) Open(_ context.Context, url string) (*http.Response, error) {
	s.got = url
	if s.err != nil {
		return nil, s.err
	}
	return &http.Response{
		StatusCode:    http.StatusOK,
		ContentLength: int64(len(s.body)),
		Body:          io.NopCloser(strings.NewReader(s.body)),
	}, nil
}

type failingCatalog struct{}

func (failingCatalog) Search(context.Context, string) ([]model.Fund, error) {
	return nil, errors.New("list funds: covip list: status 503")
}

var funds = []model.Fund{
	{Name: "Alpha Previdenza", Albo: "123", Type: "FPN", Link: "https://a/a.pdf"},
	{Name: "Beta", Albo: "4567", Type: "FPA", Link: ""},
}

type fixture struct {
	srv       *Server
	analyzer  *stubAnalyzer
	pdfs      *stubPDFs
	chartsDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		analyzer:  &stubAnalyzer{result: model.AnalysisResult{GeneralCosts: []model.CostItem{}, ChartImage: "/charts/chart_x.png", DebugLog: []string{"ok"}}},
		pdfs:      &stubPDFs{body: "%PDF-1.4 data"},
		chartsDir: t.TempDir(),
	}
	srv, err := New(Options{
		Catalog:   catalog.New(&collector.StaticLister{Funds: funds}, nil, 0, nil),
		Analyzer:  f.analyzer,
		PDFs:      f.pdfs,
		ChartsDir: f.chartsDir,
	})
	require.NoError(t, err)
	f.srv = srv
	return f
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func TestListFunds(t *testing.T) {
	f := newFixture(t)

	w := f.get("/api/funds")
	require.Equal(t, http.StatusOK, w.Code)
	var got []model.Fund
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, funds, got)

	w = f.get("/api/funds?q=PREVIDENZA")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "123", got[0].Albo)

	w = f.get("/api/funds?q=nothing")
	assert.Equal(t, "[]", w.Body.String())
}

func TestListFunds_UpstreamFailure(t *testing.T) {
	srv, err := New(Options{Catalog: failingCatalog{}, ChartsDir: t.TempDir()})
	require.NoError(t, err)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/funds", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
	assert.Contains(t, w.Body.String(), "status 503")
}

func TestAnalyze(t *testing.T) {
	f := newFixture(t)

	w := f.get("/api/analyze?url=https%3A%2F%2Fa%2Fa.pdf&type=PIP&albo=123&name=Alpha+Previdenza")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.analyzer.got, 1)
	assert.Equal(t, model.AnalysisRequest{URL: "https://a/a.pdf", Type: "PIP", Albo: "123", Name: "Alpha Previdenza"}, f.analyzer.got[0])

	var res model.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "/charts/chart_x.png", res.ChartImage)
	assert.Contains(t, w.Body.String(), `"general_costs":[]`)
}

func TestAnalyze_DefaultsTypeToFPN(t *testing.T) {
	f := newFixture(t)
	f.get("/api/analyze?url=x")
	require.Len(t, f.analyzer.got, 1)
	assert.Equal(t, "FPN", f.analyzer.got[0].Type)
}

func TestAnalyze_MissingURL(t *testing.T) {
	f := newFixture(t)
	w := f.get("/api/analyze?type=FPN")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"url is required"}`, w.Body.String())
	assert.Empty(t, f.analyzer.got)
}

func TestProxyPDF(t *testing.T) {
	f := newFixture(t)
	w := f.get("/api/proxy_pdf?url=https%3A%2F%2Fa%2Fa.pdf")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://a/a.pdf", f.pdfs.got)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "inline; filename=scheda_costi.pdf", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4 data", w.Body.String())
}

func TestProxyPDF_Errors(t *testing.T) {
	f := newFixture(t)
	w := f.get("/api/proxy_pdf")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.pdfs.err = errors.New("download pdf: status 404")
	w = f.get("/api/proxy_pdf?url=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "status 404")
}

func TestBenchmarks(t *testing.T) {
	f := newFixture(t)

	w := f.get("/api/benchmarks")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Horizons []int              `json:"horizons_years"`
		ISC10y   map[string]float64 `json:"isc_10y"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []int{2, 5, 10, 35}, body.Horizons)
	assert.Equal(t, 1.1, body.ISC10y["FPA"])

	w = f.get("/api/benchmarks.png?type=PIP")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "\x89PNG"))
}

func TestChartsAreServed(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.chartsDir, "chart_abc.png"), []byte("png-bytes"), 0o644))

	w := f.get("/charts/chart_abc.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
}

func TestIndexAndStatic(t *testing.T) {
	f := newFixture(t)

	w := f.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	for _, id := range []string{"searchInput", "searchBtn", "fundList", "countBadge", "detailPanel", "loadingFunds",
		"backBtn", "detailTitle", "detailType", "pdfLink", "viewPdfLink", "chartsContainer", "costError", "costLoading"} {
		assert.Contains(t, w.Body.String(), `id="`+id+`"`)
	}

	w = f.get("/static/style.css")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".list-container.visible")
}

func TestFrontendAssets(t *testing.T) {
	dir := t.TempDir()
	err := checkAssets(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main.wasm, wasm_exec.js missing")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.wasm"), []byte("\x00asm"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wasm_exec.js"), []byte("// go"), 0o644))
	require.NoError(t, checkAssets(dir))

	srv, err := New(Options{Catalog: failingCatalog{}, ChartsDir: t.TempDir(), AssetsDir: dir})
	require.NoError(t, err)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assets/main.wasm", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "\x00asm", w.Body.String())
}

func TestMiddleware(t *testing.T) {
	f := newFixture(t)

	w := f.get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/funds", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.get("/api/funds")

	w := f.get("/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fundlens_http_requests_total")
	assert.Contains(t, w.Body.String(), "fundlens_catalog_fetches_total")
}
