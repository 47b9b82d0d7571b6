package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/adminhub/ai-gateway/models"
	"github.com/adminhub/ai-gateway/repositories"
)

// RequestRecordRepository implements repositories.RequestRecordRepository
type RequestRecordRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRequestRecordRepository creates a new request record repository
func NewRequestRecordRepository(db *DB, logger *zap.Logger) repositories.RequestRecordRepository {
	return &RequestRecordRepository{
		db:     db,
		logger: logger,
	}
}

// Insert appends one immutable request record
func (r *RequestRecordRepository) Insert(ctx context.Context, record *models.RequestRecord) error {
	query := `
		INSERT INTO ai_requests (
			id, provider, capability, input, output, tokens, cost,
			duration_ms, status, error_message, user_id, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	var output interface{}
	if len(record.Output) > 0 {
		output = []byte(record.Output)
	}
	var userID interface{}
	if record.UserID != "" {
		userID = record.UserID
	}
	var errMsg interface{}
	if record.ErrorMessage != "" {
		errMsg = record.ErrorMessage
	}

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.Provider,
		record.Capability,
		[]byte(record.Input),
		output,
		record.Tokens,
		record.Cost,
		record.DurationMs,
		record.Status,
		errMsg,
		userID,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert request record: %w", err)
	}

	r.logger.Debug("request record inserted",
		zap.String("id", record.ID.String()),
		zap.String("provider", string(record.Provider)),
		zap.String("status", string(record.Status)))
	return nil
}

// UsageStats aggregates counts, token/cost sums and average duration grouped
// by provider and status for records created at or after since.
func (r *RequestRecordRepository) UsageStats(ctx context.Context, provider *models.ProviderType, since time.Time) ([]models.UsageStat, error) {
	query := `
		SELECT provider, status, COUNT(*),
		       COALESCE(SUM(tokens), 0),
		       COALESCE(SUM(cost), 0),
		       COALESCE(AVG(duration_ms), 0)
		FROM ai_requests
		WHERE created_at >= $1
	`
	args := []interface{}{since}
	if provider != nil {
		query += " AND provider = $2"
		args = append(args, *provider)
	}
	query += " GROUP BY provider, status ORDER BY provider, status"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage stats: %w", err)
	}
	defer rows.Close()

	var stats []models.UsageStat
	for rows.Next() {
		var s models.UsageStat
		if err := rows.Scan(
			&s.Provider,
			&s.Status,
			&s.Requests,
			&s.TotalTokens,
			&s.TotalCost,
			&s.AvgDurationMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan usage stat row: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate usage stat rows: %w", err)
	}

	return stats, nil
}
