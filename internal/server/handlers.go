package server

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"FundLens/internal/benchmark"
	"FundLens/internal/logger"
	"FundLens/internal/metrics"
	"FundLens/internal/model"

	"github.com/gin-gonic/gin"
)

// listFunds handles GET /api/funds[?q=].
func (s *Server) listFunds(c *gin.Context) {
	funds, err := s.opts.Catalog.Search(c.Request.Context(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		logger.Log.Errorf("list funds: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, funds)
}

// analyze handles GET /api/analyze?url=&type=&albo=&name=.
func (s *Server) analyze(c *gin.Context) {
	req := model.AnalysisRequest{
		URL:  strings.TrimSpace(c.Query("url")),
		Type: c.DefaultQuery("type", benchmark.FPN),
		Albo: c.Query("albo"),
		Name: c.Query("name"),
	}
	if req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}
	logger.Log.Infof("analyze %s (%s) %s", req.Name, req.Albo, req.URL)
	c.JSON(http.StatusOK, s.opts.Analyzer.Analyze(c.Request.Context(), req))
}

// proxyPDF handles GET /api/proxy_pdf?url=, streaming the document inline
// so browsers display it instead of downloading it.
func (s *Server) proxyPDF(c *gin.Context) {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}
	resp, err := s.opts.PDFs.Open(c.Request.Context(), url)
	if err != nil {
		logger.Log.Warnf("proxy pdf %s: %v", url, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer resp.Body.Close()

	c.DataFromReader(http.StatusOK, resp.ContentLength, "application/pdf", &countingReader{r: resp.Body},
		map[string]string{"Content-Disposition": "inline; filename=scheda_costi.pdf"})
}

// benchmarks handles GET /api/benchmarks with the full ISC table.
func (s *Server) benchmarks(c *gin.Context) {
	table := make(map[string][4]float64)
	for _, class := range benchmark.Classes() {
		table[class] = benchmark.Values(class)
	}
	c.JSON(http.StatusOK, gin.H{
		"horizons_years": benchmark.Horizons,
		"isc":            table,
		"isc_10y":        benchmark.TenYear(),
	})
}

// benchmarkChart handles GET /api/benchmarks.png[?type=].
func (s *Server) benchmarkChart(c *gin.Context) {
	var buf bytes.Buffer
	if err := benchmark.RenderBarChart(&buf, c.Query("type")); err != nil {
		logger.Log.Errorf("benchmark chart: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

type countingReader struct {
	r io.Reader
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	metrics.ProxiedBytes.Add(float64(n))
	return n, err
}
