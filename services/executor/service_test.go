package executor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adminhub/ai-gateway/models"
	"github.com/adminhub/ai-gateway/services"
	"github.com/adminhub/ai-gateway/services/providers"
	"github.com/adminhub/ai-gateway/services/routing"
	"github.com/adminhub/ai-gateway/services/usage"
)

// stubAdapter returns canned results and counts calls
type stubAdapter struct {
	providerType models.ProviderType
	text         string
	err          error

	mu    sync.Mutex
	calls int
}

func (a *stubAdapter) called() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func (a *stubAdapter) record() {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
}

func (a *stubAdapter) Type() models.ProviderType { return a.providerType }
func (a *stubAdapter) CostPerToken() float64     { return providers.CostPerToken(a.providerType) }

func (a *stubAdapter) GenerateText(ctx context.Context, prompt string, opts *providers.GenerateOptions) (string, error) {
	a.record()
	return a.text, a.err
}

func (a *stubAdapter) AnalyzeText(ctx context.Context, text string, kind providers.AnalysisKind) (*providers.TextAnalysis, error) {
	a.record()
	if a.err != nil {
		return nil, a.err
	}
	return &providers.TextAnalysis{Kind: kind, Summary: a.text}, nil
}

func (a *stubAdapter) TranslateText(ctx context.Context, text, from, to string) (string, error) {
	a.record()
	return a.text, a.err
}

func (a *stubAdapter) AnalyzeDocument(ctx context.Context, doc *providers.DocumentInput) (*providers.DocumentAnalysis, error) {
	a.record()
	if a.err != nil {
		return nil, a.err
	}
	return &providers.DocumentAnalysis{Analysis: a.text}, nil
}

func (a *stubAdapter) GenerateCode(ctx context.Context, description, language string) (string, error) {
	a.record()
	return a.text, a.err
}

func (a *stubAdapter) AnalyzeImage(ctx context.Context, image *providers.ImageInput) (*providers.ImageAnalysis, error) {
	a.record()
	if a.err != nil {
		return nil, a.err
	}
	return &providers.ImageAnalysis{Description: a.text, ModelUsed: "stub-model"}, nil
}

// fakeRecordRepo captures inserted records
type fakeRecordRepo struct {
	mu        sync.Mutex
	inserted  []*models.RequestRecord
	insertErr error
	stats     []models.UsageStat
	statsErr  error
}

func (r *fakeRecordRepo) Insert(ctx context.Context, record *models.RequestRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, record)
	return nil
}

func (r *fakeRecordRepo) UsageStats(ctx context.Context, provider *models.ProviderType, since time.Time) ([]models.UsageStat, error) {
	return r.stats, r.statsErr
}

func (r *fakeRecordRepo) records() []*models.RequestRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.RequestRecord(nil), r.inserted...)
}

type fixture struct {
	service *Service
	ledger  *usage.MemoryLedger
	repo    *fakeRecordRepo
}

func newFixture(t *testing.T, adapters ...*stubAdapter) *fixture {
	t.Helper()
	registry := providers.NewRegistry(nil, nil, zap.NewNop())
	for _, a := range adapters {
		registry.Register(models.ProviderConfig{
			ID:           string(a.providerType),
			Name:         string(a.providerType),
			Type:         a.providerType,
			IsActive:     true,
			Capabilities: models.AllCapabilities(),
		}, a)
	}
	ledger := usage.NewMemoryLedger()
	repo := &fakeRecordRepo{}
	router := routing.NewService(registry, ledger, zap.NewNop())
	return &fixture{
		service: NewService(registry, router, ledger, repo, zap.NewNop()),
		ledger:  ledger,
		repo:    repo,
	}
}

func TestGenerateTextSuccess(t *testing.T) {
	adapter := &stubAdapter{providerType: models.ProviderOpenAI, text: "a haiku"}
	f := newFixture(t, adapter)
	ctx := context.Background()

	result, err := f.service.GenerateText(ctx, "write a haiku", nil, RequestContext{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "a haiku", result.Text)
	assert.Equal(t, models.ProviderOpenAI, result.Meta.Provider)
	assert.Greater(t, result.Meta.Tokens, 0)
	assert.InDelta(t, float64(result.Meta.Tokens)*providers.CostPerToken(models.ProviderOpenAI), result.Meta.Cost, 1e-12)

	u, err := f.ledger.Usage(ctx, models.ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.Requests)
	assert.Equal(t, int64(result.Meta.Tokens), u.Tokens)

	records := f.repo.records()
	require.Len(t, records, 1)
	assert.Equal(t, models.RequestStatusCompleted, records[0].Status)
	assert.Equal(t, models.CapabilityTextGeneration, records[0].Capability)
	assert.Equal(t, "u1", records[0].UserID)
	assert.NotEmpty(t, records[0].Input)
	assert.NotEmpty(t, records[0].Output)
}

func TestGenerateTextProviderFailure(t *testing.T) {
	adapter := &stubAdapter{providerType: models.ProviderOpenAI, err: errors.New("upstream down")}
	f := newFixture(t, adapter)
	ctx := context.Background()

	_, err := f.service.GenerateText(ctx, "hello", nil, RequestContext{})
	require.Error(t, err)
	assert.True(t, services.IsType(err, services.ErrorTypeProviderCall))

	// The failure still counts one request, with zero tokens and cost
	u, uerr := f.ledger.Usage(ctx, models.ProviderOpenAI)
	require.NoError(t, uerr)
	assert.Equal(t, int64(1), u.Requests)
	assert.Equal(t, int64(0), u.Tokens)
	assert.Zero(t, u.Cost)

	records := f.repo.records()
	require.Len(t, records, 1)
	assert.Equal(t, models.RequestStatusFailed, records[0].Status)
	assert.Equal(t, "upstream down", records[0].ErrorMessage)
	assert.Zero(t, records[0].Tokens)
	assert.Zero(t, records[0].Cost)
	assert.Empty(t, records[0].Output)
}

func TestProviderOverride(t *testing.T) {
	openai := &stubAdapter{providerType: models.ProviderOpenAI, text: "from openai"}
	qwen := &stubAdapter{providerType: models.ProviderQwen, text: "from qwen"}
	f := newFixture(t, openai, qwen)

	result, err := f.service.GenerateText(context.Background(), "hello", nil,
		RequestContext{Provider: models.ProviderQwen})
	require.NoError(t, err)
	assert.Equal(t, "from qwen", result.Text)
	assert.Equal(t, 0, openai.called())
	assert.Equal(t, 1, qwen.called())
}

func TestProviderOverrideUnknown(t *testing.T) {
	adapter := &stubAdapter{providerType: models.ProviderOpenAI, text: "hi"}
	f := newFixture(t, adapter)

	_, err := f.service.GenerateText(context.Background(), "hello", nil,
		RequestContext{Provider: models.ProviderMistral})
	require.Error(t, err)
	assert.True(t, services.IsType(err, services.ErrorTypeNoProvider))

	// The failed resolution never reaches an adapter or the accounting
	assert.Equal(t, 0, adapter.called())
	assert.Empty(t, f.repo.records())
}

func TestAnalyzeTextSentimentCapability(t *testing.T) {
	adapter := &stubAdapter{providerType: models.ProviderAnthropic, text: "positive"}
	f := newFixture(t, adapter)

	_, err := f.service.AnalyzeText(context.Background(), "great", providers.AnalysisSentiment, RequestContext{})
	require.NoError(t, err)

	records := f.repo.records()
	require.Len(t, records, 1)
	assert.Equal(t, models.CapabilitySentimentAnalysis, records[0].Capability)
}

func TestAnalyzeTextInvalidKind(t *testing.T) {
	f := newFixture(t, &stubAdapter{providerType: models.ProviderOpenAI})

	_, err := f.service.AnalyzeText(context.Background(), "text", "vibes", RequestContext{})
	require.Error(t, err)
	assert.True(t, services.IsType(err, services.ErrorTypeValidation))
}

func TestSummarizeText(t *testing.T) {
	adapter := &stubAdapter{providerType: models.ProviderAnthropic, text: "short version"}
	f := newFixture(t, adapter)

	result, err := f.service.SummarizeText(context.Background(), "long text", RequestContext{})
	require.NoError(t, err)
	assert.Equal(t, "short version", result.Analysis.Summary)

	records := f.repo.records()
	require.Len(t, records, 1)
	assert.Equal(t, models.CapabilitySummarization, records[0].Capability)
}

func TestTranslateText(t *testing.T) {
	adapter := &stubAdapter{providerType: models.ProviderGoogle, text: "Hola"}
	f := newFixture(t, adapter)

	result, err := f.service.TranslateText(context.Background(), "Hello", "en", "es", RequestContext{})
	require.NoError(t, err)
	assert.Equal(t, "Hola", result.Text)
	assert.Equal(t, models.ProviderGoogle, result.Meta.Provider)
}

func TestAnalyzeDocument(t *testing.T) {
	adapter := &stubAdapter{providerType: models.ProviderAnthropic, text: "a report"}
	f := newFixture(t, adapter)

	result, err := f.service.AnalyzeDocument(context.Background(),
		&providers.DocumentInput{Text: "Q3 numbers"}, RequestContext{})
	require.NoError(t, err)
	assert.Equal(t, "a report", result.Analysis.Analysis)
}

func TestGenerateCode(t *testing.T) {
	adapter := &stubAdapter{providerType: models.ProviderDeepSeek, text: "func main() {}"}
	f := newFixture(t, adapter)

	result, err := f.service.GenerateCode(context.Background(), "hello world", "Go", RequestContext{})
	require.NoError(t, err)
	assert.Equal(t, "func main() {}", result.Text)

	records := f.repo.records()
	require.Len(t, records, 1)
	assert.Equal(t, models.CapabilityCodeGeneration, records[0].Capability)
}

func TestAnalyzeImageOmitsInlineBytes(t *testing.T) {
	adapter := &stubAdapter{providerType: models.ProviderGoogle, text: "a cat"}
	f := newFixture(t, adapter)

	result, err := f.service.AnalyzeImage(context.Background(),
		&providers.ImageInput{Data: "aGVsbG8=", MimeType: "image/png"}, RequestContext{})
	require.NoError(t, err)
	assert.Equal(t, "a cat", result.Analysis.Description)

	records := f.repo.records()
	require.Len(t, records, 1)
	assert.NotContains(t, string(records[0].Input), "aGVsbG8=")
	assert.Contains(t, string(records[0].Input), `"inline":true`)
}

func TestRecordInsertFailureIsSwallowed(t *testing.T) {
	adapter := &stubAdapter{providerType: models.ProviderOpenAI, text: "hi"}
	f := newFixture(t, adapter)
	f.repo.insertErr = errors.New("db down")

	result, err := f.service.GenerateText(context.Background(), "hello", nil, RequestContext{})
	require.NoError(t, err)
	assert.Equal(t, "hi", result.Text)

	// The ledger still advanced despite the failed insert
	u, uerr := f.ledger.Usage(context.Background(), models.ProviderOpenAI)
	require.NoError(t, uerr)
	assert.Equal(t, int64(1), u.Requests)
}

func TestConcurrentRequestsLedgerOncePerRequest(t *testing.T) {
	adapter := &stubAdapter{providerType: models.ProviderOpenAI, text: "hi"}
	f := newFixture(t, adapter)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.GenerateText(ctx, "hello", nil, RequestContext{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	u, err := f.ledger.Usage(ctx, models.ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, int64(2), u.Requests)
	assert.Len(t, f.repo.records(), 2)
}

func TestUsageStats(t *testing.T) {
	f := newFixture(t, &stubAdapter{providerType: models.ProviderOpenAI})
	f.repo.stats = []models.UsageStat{
		{Provider: models.ProviderOpenAI, Status: models.RequestStatusCompleted, Requests: 3},
	}

	stats, err := f.service.UsageStats(context.Background(), nil, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(3), stats[0].Requests)
}

func TestUsageStatsError(t *testing.T) {
	f := newFixture(t, &stubAdapter{providerType: models.ProviderOpenAI})
	f.repo.statsErr = errors.New("query failed")

	_, err := f.service.UsageStats(context.Background(), nil, time.Now())
	require.Error(t, err)
	assert.True(t, services.IsType(err, services.ErrorTypeInternal))
}

func TestCheckProviders(t *testing.T) {
	healthy := &stubAdapter{providerType: models.ProviderOpenAI, text: "pong"}
	broken := &stubAdapter{providerType: models.ProviderGoogle, err: errors.New("timeout")}
	f := newFixture(t, healthy, broken)

	results := f.service.CheckProviders(context.Background())
	require.Len(t, results, 2)

	byProvider := make(map[models.ProviderType]ProviderHealth)
	for _, r := range results {
		byProvider[r.Provider] = r
	}
	assert.True(t, byProvider[models.ProviderOpenAI].Healthy)
	assert.False(t, byProvider[models.ProviderGoogle].Healthy)
	assert.Contains(t, byProvider[models.ProviderGoogle].Error, "timeout")

	// Probes bypass the audit trail and ledger
	assert.Empty(t, f.repo.records())
	u, err := f.ledger.Usage(context.Background(), models.ProviderOpenAI)
	require.NoError(t, err)
	assert.Zero(t, u.Requests)
}
