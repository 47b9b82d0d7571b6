package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/adminhub/ai-gateway/models"
	"github.com/adminhub/ai-gateway/repositories"
)

// ProviderRepository implements repositories.ProviderConfigRepository
type ProviderRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewProviderRepository creates a new provider config repository
func NewProviderRepository(db *DB, logger *zap.Logger) repositories.ProviderConfigRepository {
	return &ProviderRepository{
		db:     db,
		logger: logger,
	}
}

// ListActive returns all active provider configurations
func (r *ProviderRepository) ListActive(ctx context.Context) ([]models.ProviderConfig, error) {
	query := `
		SELECT id, name, type, api_key, endpoint, is_active, capabilities,
		       total_requests, total_tokens, cost, last_used,
		       monthly_limit, current_month_usage
		FROM ai_providers
		WHERE is_active = true
		ORDER BY type
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query providers: %w", err)
	}
	defer rows.Close()

	var configs []models.ProviderConfig
	for rows.Next() {
		var (
			cfg          models.ProviderConfig
			capabilities pq.StringArray
			endpoint     sql.NullString
			lastUsed     sql.NullTime
		)

		if err := rows.Scan(
			&cfg.ID,
			&cfg.Name,
			&cfg.Type,
			&cfg.APIKey,
			&endpoint,
			&cfg.IsActive,
			&capabilities,
			&cfg.Usage.TotalRequests,
			&cfg.Usage.TotalTokens,
			&cfg.Usage.Cost,
			&lastUsed,
			&cfg.Usage.MonthlyLimit,
			&cfg.Usage.CurrentMonthUsage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan provider row: %w", err)
		}

		cfg.Endpoint = endpoint.String
		if lastUsed.Valid {
			cfg.Usage.LastUsed = lastUsed.Time
		}
		cfg.Capabilities = make([]models.Capability, 0, len(capabilities))
		for _, c := range capabilities {
			cfg.Capabilities = append(cfg.Capabilities, models.Capability(c))
		}

		configs = append(configs, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate provider rows: %w", err)
	}

	r.logger.Debug("loaded provider configurations", zap.Int("count", len(configs)))
	return configs, nil
}
