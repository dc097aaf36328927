// Package analyzer extracts the ISC cost chart from a fund's cost sheet.
package analyzer

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"FundLens/internal/benchmark"
	"FundLens/internal/logger"
	"FundLens/internal/metrics"
	"FundLens/internal/model"
	"FundLens/internal/pdf"
	"FundLens/internal/recorder"

	"golang.org/x/sync/singleflight"
)

// ChartURLPrefix is the public path charts are served under.
const ChartURLPrefix = "/charts/"

// Fetcher downloads a cost-sheet PDF.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Analyzer downloads cost sheets, finds the ISC chart and stores it as PNG.
type Analyzer struct {
	Fetcher   Fetcher
	Open      pdf.Opener
	ChartsDir string
	DPI       float64
	Recorder  recorder.Recorder

	group singleflight.Group
}

// New creates an Analyzer.
func New(fetcher Fetcher, open pdf.Opener, chartsDir string, dpi float64, rec recorder.Recorder) *Analyzer {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Analyzer{
		Fetcher:   fetcher,
		Open:      open,
		ChartsDir: chartsDir,
		DPI:       dpi,
		Recorder:  rec,
	}
}

// ChartFileName is the stable file name of the chart extracted from url.
func ChartFileName(url string) string {
	sum := md5.Sum([]byte(url))
	return "chart_" + hex.EncodeToString(sum[:]) + ".png"
}

// Analyze runs the extraction for req. Failures are reported in the
// result's Error field, never as a Go error. Concurrent requests for the
// same document share one run.
func (a *Analyzer) Analyze(ctx context.Context, req model.AnalysisRequest) model.AnalysisResult {
	start := time.Now()
	v, _, shared := a.group.Do(req.URL, func() (any, error) {
		return a.analyze(context.WithoutCancel(ctx), req.URL), nil
	})
	res := v.(model.AnalysisResult)
	if shared {
		res.DebugLog = append([]string(nil), res.DebugLog...)
	}

	res.BenchmarkType = benchmark.Classify(req.Type)
	res.Benchmarks10y = benchmark.TenYear()

	elapsed := time.Since(start)
	outcome := res.Outcome()
	metrics.Analyses.WithLabelValues(outcome).Inc()
	metrics.AnalysisDuration.Observe(elapsed.Seconds())
	if err := a.Recorder.RecordAnalysis(&recorder.AnalysisEvent{
		Albo:      req.Albo,
		Name:      req.Name,
		URL:       req.URL,
		FundType:  req.Type,
		Outcome:   outcome,
		ChartPath: res.ChartImage,
		Error:     res.Error,
		Duration:  elapsed,
	}); err != nil {
		logger.Log.Errorf("record analysis: %v", err)
	}
	return res
}

func (a *Analyzer) analyze(ctx context.Context, url string) model.AnalysisResult {
	debug := &DebugLog{}
	res := model.AnalysisResult{GeneralCosts: []model.CostItem{}}
	finish := func() model.AnalysisResult {
		res.DebugLog = debug.Lines()
		return res
	}

	debug.Addf("downloading %s", url)
	data, err := a.Fetcher.Fetch(ctx, url)
	if err != nil {
		logger.Log.Warnf("analyze %s: %v", url, err)
		debug.Addf("download failed: %v", err)
		res.Error = err.Error()
		return finish()
	}
	debug.Addf("downloaded %d bytes", len(data))

	doc, err := a.Open(data)
	if err != nil {
		logger.Log.Warnf("analyze %s: %v", url, err)
		debug.Addf("open failed: %v", err)
		res.Error = err.Error()
		return finish()
	}
	defer doc.Close()
	debug.Addf("document has %d pages", doc.NumPages())

	sel, err := FindChart(doc, debug)
	if err != nil {
		logger.Log.Warnf("analyze %s: %v", url, err)
		debug.Addf("layout extraction failed: %v", err)
		return finish()
	}
	if sel == nil {
		return finish()
	}

	img, err := doc.Render(sel.Page, sel.Top, sel.Bottom, a.DPI)
	if err != nil {
		logger.Log.Warnf("analyze %s: %v", url, err)
		debug.Addf("render failed: %v", err)
		return finish()
	}

	name := ChartFileName(url)
	if err := a.save(name, img); err != nil {
		logger.Log.Errorf("save chart %s: %v", name, err)
		debug.Addf("save failed: %v", err)
		return finish()
	}
	debug.Addf("chart saved as %s", name)
	res.ChartImage = ChartURLPrefix + name
	return finish()
}

// save writes img atomically so concurrent readers never see a partial file.
func (a *Analyzer) save(name string, img image.Image) error {
	if err := os.MkdirAll(a.ChartsDir, 0o755); err != nil {
		return fmt.Errorf("create charts dir: %w", err)
	}
	tmp, err := os.CreateTemp(a.ChartsDir, ".chart-*.png")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), filepath.Join(a.ChartsDir, name))
}
