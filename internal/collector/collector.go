package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"

	"FundLens/internal/model"
)

// StaticLister serves a fixed fund list, for offline development and tests.
type StaticLister struct {
	Funds []model.Fund
	Err   error
	calls atomic.Int64
}

func (s *StaticLister) Name() string { return "static" }

func (s *StaticLister) ListFunds(_ context.Context) ([]model.Fund, error) {
	s.calls.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.Fund, len(s.Funds))
	copy(out, s.Funds)
	return out, nil
}

// Calls returns how many times ListFunds ran.
func (s *StaticLister) Calls() int { return int(s.calls.Load()) }

// LoadStaticLister reads a JSON array of funds, in the /api/funds format.
func LoadStaticLister(path string) (*StaticLister, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fund fixture: %w", err)
	}
	var funds []model.Fund
	if err := json.Unmarshal(data, &funds); err != nil {
		return nil, fmt.Errorf("decode fund fixture: %w", err)
	}
	return &StaticLister{Funds: funds}, nil
}
