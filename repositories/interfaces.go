package repositories

import (
	"context"
	"time"

	"github.com/adminhub/ai-gateway/models"
)

// ProviderConfigRepository reads provider configurations from the
// administrative store. Writes are owned by an external collaborator.
type ProviderConfigRepository interface {
	// ListActive returns all active provider configurations
	ListActive(ctx context.Context) ([]models.ProviderConfig, error)
}

// RequestRecordRepository is the one-way append interface for audit records
// plus the aggregate usage query used for analytics.
type RequestRecordRepository interface {
	// Insert appends one immutable request record
	Insert(ctx context.Context, record *models.RequestRecord) error

	// UsageStats aggregates counts, token/cost sums and average duration,
	// grouped by provider and status, for records created at or after since.
	// provider narrows the aggregation to one provider when non-nil.
	UsageStats(ctx context.Context, provider *models.ProviderType, since time.Time) ([]models.UsageStat, error)
}
