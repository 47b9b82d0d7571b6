package usage

import (
	"context"

	"github.com/adminhub/ai-gateway/models"
)

// Usage is the accumulated consumption of one provider
type Usage struct {
	Requests int64
	Tokens   int64
	Cost     float64
}

// Ledger tracks per-provider consumption counters. Every executed request
// updates the ledger exactly once, success or failure; the routing quota gate
// reads it on every selection.
type Ledger interface {
	// Record adds one request with its token and cost estimates
	Record(ctx context.Context, provider models.ProviderType, tokens int64, cost float64) error

	// Usage returns the accumulated counters for one provider
	Usage(ctx context.Context, provider models.ProviderType) (Usage, error)

	// Reset clears the counters for one provider
	Reset(ctx context.Context, provider models.ProviderType) error
}
