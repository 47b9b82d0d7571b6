package usage

import (
	"context"
	"sync"

	"github.com/adminhub/ai-gateway/models"
)

// MemoryLedger is the in-process ledger used when Redis is not configured.
// Counters reset with the process.
type MemoryLedger struct {
	mu       sync.RWMutex
	counters map[models.ProviderType]*Usage
}

// NewMemoryLedger creates an empty in-process ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		counters: make(map[models.ProviderType]*Usage),
	}
}

// Record adds one request with its token and cost estimates
func (l *MemoryLedger) Record(ctx context.Context, provider models.ProviderType, tokens int64, cost float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, ok := l.counters[provider]
	if !ok {
		u = &Usage{}
		l.counters[provider] = u
	}
	u.Requests++
	u.Tokens += tokens
	u.Cost += cost
	return nil
}

// Usage returns the accumulated counters for one provider
func (l *MemoryLedger) Usage(ctx context.Context, provider models.ProviderType) (Usage, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if u, ok := l.counters[provider]; ok {
		return *u, nil
	}
	return Usage{}, nil
}

// Reset clears the counters for one provider
func (l *MemoryLedger) Reset(ctx context.Context, provider models.ProviderType) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.counters, provider)
	return nil
}
