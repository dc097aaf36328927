package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundlens_catalog_fetches_total",
			Help: "Fund list fetches by source and result",
		},
		[]string{"source", "result"},
	)

	CatalogFunds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fundlens_catalog_funds",
			Help: "Number of funds in the last fetched list",
		},
	)

	Analyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundlens_analyses_total",
			Help: "Cost-sheet analyses by outcome",
		},
		[]string{"outcome"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fundlens_analysis_duration_seconds",
			Help:    "Duration of cost-sheet analyses in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	ProxiedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fundlens_proxied_pdf_bytes_total",
			Help: "Bytes streamed through the PDF proxy",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundlens_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "status"},
	)
)
