package usage

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminhub/ai-gateway/models"
)

func TestMemoryLedgerRecordAndUsage(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	u, err := ledger.Usage(ctx, models.ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, Usage{}, u)

	require.NoError(t, ledger.Record(ctx, models.ProviderOpenAI, 120, 0.0024))
	require.NoError(t, ledger.Record(ctx, models.ProviderOpenAI, 80, 0.0016))
	require.NoError(t, ledger.Record(ctx, models.ProviderGoogle, 50, 0.00075))

	u, err = ledger.Usage(ctx, models.ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, int64(2), u.Requests)
	assert.Equal(t, int64(200), u.Tokens)
	assert.InDelta(t, 0.004, u.Cost, 1e-9)

	u, err = ledger.Usage(ctx, models.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.Requests)
}

func TestMemoryLedgerReset(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Record(ctx, models.ProviderQwen, 10, 0.0001))
	require.NoError(t, ledger.Reset(ctx, models.ProviderQwen))

	u, err := ledger.Usage(ctx, models.ProviderQwen)
	require.NoError(t, err)
	assert.Equal(t, Usage{}, u)
}

func TestMemoryLedgerConcurrentRecords(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ledger.Record(ctx, models.ProviderOpenAI, 10, 0.0002)
		}()
	}
	wg.Wait()

	u, err := ledger.Usage(ctx, models.ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, int64(50), u.Requests)
	assert.Equal(t, int64(500), u.Tokens)
}

func newRedisLedger(t *testing.T) *RedisLedger {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLedger(client)
}

func TestRedisLedgerRecordAndUsage(t *testing.T) {
	ledger := newRedisLedger(t)
	ctx := context.Background()

	u, err := ledger.Usage(ctx, models.ProviderAnthropic)
	require.NoError(t, err)
	assert.Equal(t, Usage{}, u)

	require.NoError(t, ledger.Record(ctx, models.ProviderAnthropic, 300, 0.0075))
	require.NoError(t, ledger.Record(ctx, models.ProviderAnthropic, 100, 0.0025))

	u, err = ledger.Usage(ctx, models.ProviderAnthropic)
	require.NoError(t, err)
	assert.Equal(t, int64(2), u.Requests)
	assert.Equal(t, int64(400), u.Tokens)
	assert.InDelta(t, 0.01, u.Cost, 1e-9)
}

func TestRedisLedgerIsolatesProviders(t *testing.T) {
	ledger := newRedisLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Record(ctx, models.ProviderOpenAI, 10, 0.0002))

	u, err := ledger.Usage(ctx, models.ProviderMistral)
	require.NoError(t, err)
	assert.Equal(t, Usage{}, u)
}

func TestRedisLedgerReset(t *testing.T) {
	ledger := newRedisLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Record(ctx, models.ProviderKimi, 10, 0.00008))
	require.NoError(t, ledger.Reset(ctx, models.ProviderKimi))

	u, err := ledger.Usage(ctx, models.ProviderKimi)
	require.NoError(t, err)
	assert.Equal(t, Usage{}, u)
}
