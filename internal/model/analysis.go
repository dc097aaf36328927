package model

// AnalysisRequest identifies the cost sheet to analyze.
type AnalysisRequest struct {
	URL  string
	Type string
	Albo string
	Name string
}

// RequestFor builds the analysis request for a fund.
func RequestFor(f Fund) AnalysisRequest {
	return AnalysisRequest{URL: f.Link, Type: f.Type, Albo: f.Albo, Name: f.Name}
}

// CostItem is a labelled cost line read from a cost sheet.
type CostItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// AnalysisResult is the payload of /api/analyze.
type AnalysisResult struct {
	GeneralCosts  []CostItem         `json:"general_costs"`
	ChartImage    string             `json:"chart_image,omitempty"`
	DebugLog      []string           `json:"debug_log"`
	Benchmarks10y map[string]float64 `json:"benchmarks_10y,omitempty"`
	BenchmarkType string             `json:"benchmark_type,omitempty"`
	Error         string             `json:"error,omitempty"`
}

// Outcome classifies a result for metrics and history.
func (r *AnalysisResult) Outcome() string {
	switch {
	case r.Error != "":
		return OutcomeError
	case r.ChartImage != "":
		return OutcomeChart
	default:
		return OutcomeNoChart
	}
}

const (
	OutcomeChart   = "chart"
	OutcomeNoChart = "no_chart"
	OutcomeError   = "error"
)
