// Package server exposes the fund list, cost analysis and PDF proxy over HTTP
// and serves the web front-end.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"FundLens/internal/analyzer"
	"FundLens/internal/logger"
	"FundLens/internal/model"
	"FundLens/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FundCatalog lists and filters funds.
type FundCatalog interface {
	Search(ctx context.Context, q string) ([]model.Fund, error)
}

// ChartAnalyzer runs the cost-sheet analysis.
type ChartAnalyzer interface {
	Analyze(ctx context.Context, req model.AnalysisRequest) model.AnalysisResult
}

// PDFSource opens remote PDFs for proxying.
type PDFSource interface {
	Open(ctx context.Context, url string) (*http.Response, error)
}

// Options wires the server to its collaborators.
type Options struct {
	Catalog   FundCatalog
	Analyzer  ChartAnalyzer
	PDFs      PDFSource
	ChartsDir string
	AssetsDir string // compiled front-end, served under /assets
}

// Server is the FundLens HTTP API.
type Server struct {
	opts   Options
	engine *gin.Engine
}

// frontendFiles are the build outputs index.html loads from /assets.
var frontendFiles = []string{"main.wasm", "wasm_exec.js"}

// New builds the router.
func New(opts Options) (*Server, error) {
	s := &Server{opts: opts}

	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(), Cors())

	api := r.Group("/api")
	{
		api.GET("/funds", s.listFunds)
		api.GET("/analyze", s.analyze)
		api.GET("/proxy_pdf", s.proxyPDF)
		api.GET("/benchmarks", s.benchmarks)
		api.GET("/benchmarks.png", s.benchmarkChart)
	}

	r.Static(analyzer.ChartURLPrefix, opts.ChartsDir)
	if opts.AssetsDir != "" {
		if err := checkAssets(opts.AssetsDir); err != nil {
			logger.Log.Warnf("web front-end will not load: %v (run go generate ./web)", err)
		}
		r.Static("/assets", opts.AssetsDir)
	}
	r.StaticFS("/static", http.FS(static))
	r.GET("/", func(c *gin.Context) {
		c.FileFromFS("/", http.FS(static))
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine = r
	return s, nil
}

func checkAssets(dir string) error {
	var missing []string
	for _, name := range frontendFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s missing from %s", strings.Join(missing, ", "), dir)
	}
	return nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Infof("http server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Log.Info("http server stopped")
	return nil
}
