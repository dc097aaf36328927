package collector

import (
	"context"

	"FundLens/internal/model"
)

// FundLister fetches the published list of pension funds.
type FundLister interface {
	ListFunds(ctx context.Context) ([]model.Fund, error)
	Name() string
}
