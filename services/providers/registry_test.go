package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adminhub/ai-gateway/config"
	"github.com/adminhub/ai-gateway/models"
)

type fakeProviderRepo struct {
	configs []models.ProviderConfig
	err     error
}

func (r *fakeProviderRepo) ListActive(ctx context.Context) ([]models.ProviderConfig, error) {
	return r.configs, r.err
}

func stubFactory(cfg models.ProviderConfig) (Adapter, error) {
	return NewOpenAIAdapter("stub", "", 0), nil
}

func activeConfig(id string, t models.ProviderType) models.ProviderConfig {
	return models.ProviderConfig{
		ID:           id,
		Name:         string(t),
		Type:         t,
		IsActive:     true,
		Capabilities: []models.Capability{models.CapabilityTextGeneration},
	}
}

func TestRegistryLoad(t *testing.T) {
	repo := &fakeProviderRepo{configs: []models.ProviderConfig{
		activeConfig("p1", models.ProviderOpenAI),
		activeConfig("p2", models.ProviderAnthropic),
	}}
	registry := NewRegistry(repo, stubFactory, zap.NewNop())

	require.NoError(t, registry.Load(context.Background()))

	_, ok := registry.Adapter(models.ProviderOpenAI)
	assert.True(t, ok)
	_, ok = registry.Adapter(models.ProviderAnthropic)
	assert.True(t, ok)
	_, ok = registry.Adapter(models.ProviderGoogle)
	assert.False(t, ok)

	assert.Equal(t, []models.ProviderType{models.ProviderOpenAI, models.ProviderAnthropic}, registry.Types())
}

func TestRegistryLoadSkipsInvalidConfig(t *testing.T) {
	invalid := models.ProviderConfig{ID: "bad", Type: "unknown", IsActive: true}
	repo := &fakeProviderRepo{configs: []models.ProviderConfig{
		invalid,
		activeConfig("p1", models.ProviderQwen),
	}}
	registry := NewRegistry(repo, stubFactory, zap.NewNop())

	require.NoError(t, registry.Load(context.Background()))

	assert.Len(t, registry.Snapshot(), 1)
	_, ok := registry.Config(models.ProviderQwen)
	assert.True(t, ok)
}

func TestRegistryLoadSkipsDuplicateType(t *testing.T) {
	repo := &fakeProviderRepo{configs: []models.ProviderConfig{
		activeConfig("first", models.ProviderOpenAI),
		activeConfig("second", models.ProviderOpenAI),
	}}
	registry := NewRegistry(repo, stubFactory, zap.NewNop())

	require.NoError(t, registry.Load(context.Background()))

	cfg, ok := registry.Config(models.ProviderOpenAI)
	require.True(t, ok)
	assert.Equal(t, "first", cfg.ID)
}

func TestRegistryLoadRepositoryError(t *testing.T) {
	repo := &fakeProviderRepo{err: errors.New("connection refused")}
	registry := NewRegistry(repo, stubFactory, zap.NewNop())

	err := registry.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRegistryLoadReplacesEntries(t *testing.T) {
	repo := &fakeProviderRepo{configs: []models.ProviderConfig{
		activeConfig("p1", models.ProviderOpenAI),
	}}
	registry := NewRegistry(repo, stubFactory, zap.NewNop())
	require.NoError(t, registry.Load(context.Background()))

	repo.configs = []models.ProviderConfig{activeConfig("p2", models.ProviderGoogle)}
	require.NoError(t, registry.Load(context.Background()))

	_, ok := registry.Adapter(models.ProviderOpenAI)
	assert.False(t, ok)
	_, ok = registry.Adapter(models.ProviderGoogle)
	assert.True(t, ok)
}

func TestRegistrySnapshotOrder(t *testing.T) {
	repo := &fakeProviderRepo{configs: []models.ProviderConfig{
		activeConfig("q", models.ProviderQwen),
		activeConfig("a", models.ProviderAnthropic),
		activeConfig("o", models.ProviderOpenAI),
	}}
	registry := NewRegistry(repo, stubFactory, zap.NewNop())
	require.NoError(t, registry.Load(context.Background()))

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, models.ProviderOpenAI, snapshot[0].Type)
	assert.Equal(t, models.ProviderAnthropic, snapshot[1].Type)
	assert.Equal(t, models.ProviderQwen, snapshot[2].Type)
}

func TestDefaultFactoryCredentialFallback(t *testing.T) {
	vendors := config.ProvidersConfig{
		OpenAI: config.VendorConfig{APIKey: "env-key", BaseURL: "https://env.example.com"},
	}
	factory := DefaultFactory(vendors)

	// Stored credentials win over the environment
	cfg := activeConfig("p1", models.ProviderOpenAI)
	cfg.APIKey = "stored-key"
	cfg.Endpoint = "https://stored.example.com"

	adapter, err := factory(cfg)
	require.NoError(t, err)
	chat, ok := adapter.(*ChatAdapter)
	require.True(t, ok)
	assert.Equal(t, "stored-key", chat.settings.apiKey)
	assert.Equal(t, "https://stored.example.com", chat.settings.baseURL)

	// Blank stored fields fall back to the environment
	cfg.APIKey = ""
	cfg.Endpoint = ""
	adapter, err = factory(cfg)
	require.NoError(t, err)
	chat = adapter.(*ChatAdapter)
	assert.Equal(t, "env-key", chat.settings.apiKey)
	assert.Equal(t, "https://env.example.com", chat.settings.baseURL)
}

func TestDefaultFactoryCoversAllTypes(t *testing.T) {
	factory := DefaultFactory(config.ProvidersConfig{})
	for _, pt := range models.AllProviderTypes() {
		adapter, err := factory(activeConfig("id-"+string(pt), pt))
		require.NoError(t, err)
		assert.Equal(t, pt, adapter.Type())
	}
}

func TestDefaultFactoryUnknownType(t *testing.T) {
	factory := DefaultFactory(config.ProvidersConfig{})
	_, err := factory(models.ProviderConfig{ID: "x", Type: "fax-machine"})
	require.Error(t, err)
}
