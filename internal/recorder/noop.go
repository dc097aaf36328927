package recorder

import "time"

// NoopRecorder is used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(_ *AnalysisEvent) error { return nil }
func (n *NoopRecorder) RecordCatalog(_ *CatalogEvent) error   { return nil }
func (n *NoopRecorder) Stats(since time.Time) (*Stats, error) { return &Stats{Since: since}, nil }
func (n *NoopRecorder) Close() error                          { return nil }
