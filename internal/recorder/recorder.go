package recorder

import "time"

// AnalysisEvent is one /api/analyze run.
type AnalysisEvent struct {
	Albo      string
	Name      string
	URL       string
	FundType  string
	Outcome   string // "chart", "no_chart" or "error"
	ChartPath string
	Error     string
	Duration  time.Duration
}

// CatalogEvent is one fetch of the COVIP fund list.
type CatalogEvent struct {
	Source    string // lister name
	FundCount int
	Error     string
	Duration  time.Duration
}

// FundCount is a fund with how often it was analyzed.
type FundCount struct {
	Albo  string
	Name  string
	Count int
}

// Stats summarises activity since a point in time.
type Stats struct {
	Since          time.Time
	Analyses       int
	Charts         int
	NoChart        int
	Errors         int
	CatalogFetches int
	CatalogErrors  int
	LastFundCount  int
	TopFunds       []FundCount
}

// Recorder persists analysis and catalog history.
type Recorder interface {
	RecordAnalysis(evt *AnalysisEvent) error
	RecordCatalog(evt *CatalogEvent) error
	Stats(since time.Time) (*Stats, error)
	Close() error
}
