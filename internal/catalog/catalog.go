// Package catalog serves the COVIP fund list to the API.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FundLens/internal/collector"
	"FundLens/internal/logger"
	"FundLens/internal/metrics"
	"FundLens/internal/model"
	"FundLens/internal/recorder"

	"golang.org/x/sync/singleflight"
)

// Service returns the fund list, fetching it from the lister when the cache
// is empty or disabled.
type Service struct {
	Lister   collector.FundLister
	Cache    Cache
	TTL      time.Duration
	Recorder recorder.Recorder

	group singleflight.Group
}

// New creates a Service. A zero ttl disables caching.
func New(lister collector.FundLister, cache Cache, ttl time.Duration, rec recorder.Recorder) *Service {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Service{Lister: lister, Cache: cache, TTL: ttl, Recorder: rec}
}

// List returns the current fund list.
func (s *Service) List(ctx context.Context) ([]model.Fund, error) {
	if s.TTL > 0 {
		funds, ok, err := s.Cache.Get(ctx)
		if err != nil {
			logger.Log.Warnf("catalog cache read: %v", err)
		} else if ok {
			metrics.CatalogFetches.WithLabelValues("cache", "ok").Inc()
			return funds, nil
		}
	}
	return s.Refresh(ctx)
}

// Refresh fetches the list from the lister and repopulates the cache.
// Concurrent callers share one fetch, which outlives any single caller:
// a cancelled ctx only abandons the wait.
func (s *Service) Refresh(ctx context.Context) ([]model.Fund, error) {
	ch := s.group.DoChan("funds", func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]model.Fund), nil
	}
}

func (s *Service) fetch(ctx context.Context) ([]model.Fund, error) {
	start := time.Now()
	funds, err := s.Lister.ListFunds(ctx)
	evt := &recorder.CatalogEvent{Source: s.Lister.Name(), FundCount: len(funds), Duration: time.Since(start)}
	if err != nil {
		evt.Error = err.Error()
	}
	if rerr := s.Recorder.RecordCatalog(evt); rerr != nil {
		logger.Log.Errorf("record catalog fetch: %v", rerr)
	}

	if err != nil {
		metrics.CatalogFetches.WithLabelValues(s.Lister.Name(), "error").Inc()
		return nil, fmt.Errorf("list funds: %w", err)
	}
	metrics.CatalogFetches.WithLabelValues(s.Lister.Name(), "ok").Inc()
	metrics.CatalogFunds.Set(float64(len(funds)))
	logger.Log.Infof("fetched %d funds from %s in %v", len(funds), s.Lister.Name(), evt.Duration.Round(time.Millisecond))

	if s.TTL > 0 {
		if err := s.Cache.Set(ctx, funds, s.TTL); err != nil {
			logger.Log.Warnf("catalog cache write: %v", err)
		}
	}
	return funds, nil
}

// Search returns the funds whose name or registry number contains q,
// ignoring case. An empty q returns the whole list.
func (s *Service) Search(ctx context.Context, q string) ([]model.Fund, error) {
	funds, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(funds, q), nil
}

// Filter applies the Search match to funds.
func Filter(funds []model.Fund, q string) []model.Fund {
	if q == "" {
		return funds
	}
	q = strings.ToLower(q)
	out := []model.Fund{}
	for _, f := range funds {
		if strings.Contains(strings.ToLower(f.Name), q) || strings.Contains(strings.ToLower(f.Albo), q) {
			out = append(out, f)
		}
	}
	return out
}
