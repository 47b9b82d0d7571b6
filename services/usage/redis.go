package usage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/adminhub/ai-gateway/models"
)

const redisKeyPrefix = "ai:usage"

// RedisLedger is the shared ledger for multi-instance deployments. Counters
// survive restarts and are visible to every gateway instance.
type RedisLedger struct {
	client *redis.Client
}

// NewRedisLedger creates a ledger backed by the given Redis client
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func redisKey(provider models.ProviderType, field string) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, provider, field)
}

// Record adds one request with its token and cost estimates
func (l *RedisLedger) Record(ctx context.Context, provider models.ProviderType, tokens int64, cost float64) error {
	pipe := l.client.Pipeline()
	pipe.Incr(ctx, redisKey(provider, "requests"))
	pipe.IncrBy(ctx, redisKey(provider, "tokens"), tokens)
	pipe.IncrByFloat(ctx, redisKey(provider, "cost"), cost)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("recording usage for %s: %w", provider, err)
	}
	return nil
}

// Usage returns the accumulated counters for one provider. Missing keys read
// as zero.
func (l *RedisLedger) Usage(ctx context.Context, provider models.ProviderType) (Usage, error) {
	values, err := l.client.MGet(ctx,
		redisKey(provider, "requests"),
		redisKey(provider, "tokens"),
		redisKey(provider, "cost"),
	).Result()
	if err != nil {
		return Usage{}, fmt.Errorf("reading usage for %s: %w", provider, err)
	}

	var u Usage
	u.Requests = parseInt(values[0])
	u.Tokens = parseInt(values[1])
	u.Cost = parseFloat(values[2])
	return u, nil
}

// Reset clears the counters for one provider
func (l *RedisLedger) Reset(ctx context.Context, provider models.ProviderType) error {
	err := l.client.Del(ctx,
		redisKey(provider, "requests"),
		redisKey(provider, "tokens"),
		redisKey(provider, "cost"),
	).Err()
	if err != nil {
		return fmt.Errorf("resetting usage for %s: %w", provider, err)
	}
	return nil
}

func parseInt(v interface{}) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(v interface{}) float64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
