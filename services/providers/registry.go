package providers

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/adminhub/ai-gateway/config"
	"github.com/adminhub/ai-gateway/models"
	"github.com/adminhub/ai-gateway/repositories"
)

// AdapterFactory builds a live adapter for one provider configuration.
// Pulled out as a function type so tests can register stub adapters.
type AdapterFactory func(cfg models.ProviderConfig) (Adapter, error)

// DefaultFactory builds real vendor adapters. Credentials stored with the
// provider configuration win; the environment-derived vendor config fills
// anything the store leaves blank.
func DefaultFactory(vendors config.ProvidersConfig) AdapterFactory {
	return func(cfg models.ProviderConfig) (Adapter, error) {
		var fallback config.VendorConfig
		switch cfg.Type {
		case models.ProviderOpenAI:
			fallback = vendors.OpenAI
		case models.ProviderGoogle:
			fallback = vendors.Google
		case models.ProviderAnthropic:
			fallback = vendors.Anthropic
		case models.ProviderXAI:
			fallback = vendors.XAI
		case models.ProviderDeepSeek:
			fallback = vendors.DeepSeek
		case models.ProviderMistral:
			fallback = vendors.Mistral
		case models.ProviderKimi:
			fallback = vendors.Kimi
		case models.ProviderQwen:
			fallback = vendors.Qwen
		default:
			return nil, fmt.Errorf("no adapter for provider type %q", cfg.Type)
		}

		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = fallback.APIKey
		}
		baseURL := cfg.Endpoint
		if baseURL == "" {
			baseURL = fallback.BaseURL
		}

		switch cfg.Type {
		case models.ProviderOpenAI:
			return NewOpenAIAdapter(apiKey, baseURL, fallback.Timeout), nil
		case models.ProviderGoogle:
			return NewGoogleAdapter(apiKey, baseURL, fallback.Timeout), nil
		case models.ProviderAnthropic:
			return NewAnthropicAdapter(apiKey, baseURL, fallback.Timeout), nil
		case models.ProviderXAI:
			return NewXAIAdapter(apiKey, baseURL, fallback.Timeout), nil
		case models.ProviderDeepSeek:
			return NewDeepSeekAdapter(apiKey, baseURL, fallback.Timeout), nil
		case models.ProviderMistral:
			return NewMistralAdapter(apiKey, baseURL, fallback.Timeout), nil
		case models.ProviderKimi:
			return NewKimiAdapter(apiKey, baseURL, fallback.Timeout), nil
		default:
			return NewQwenAdapter(apiKey, baseURL, fallback.Timeout), nil
		}
	}
}

type registryEntry struct {
	config  models.ProviderConfig
	adapter Adapter
}

// Registry holds the live adapter set, keyed by provider type. At most one
// provider of each type is registered; reloads replace the whole set
// atomically.
type Registry struct {
	mu      sync.RWMutex
	entries map[models.ProviderType]*registryEntry

	repo    repositories.ProviderConfigRepository
	factory AdapterFactory
	logger  *zap.Logger
}

// NewRegistry creates an empty registry backed by the administrative store
func NewRegistry(repo repositories.ProviderConfigRepository, factory AdapterFactory, logger *zap.Logger) *Registry {
	return &Registry{
		entries: make(map[models.ProviderType]*registryEntry),
		repo:    repo,
		factory: factory,
		logger:  logger,
	}
}

// Load reads active provider configurations from the store, validates them
// and swaps in the new adapter set. A config that fails validation or adapter
// construction is skipped with a log line rather than aborting the load.
func (r *Registry) Load(ctx context.Context) error {
	configs, err := r.repo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("loading provider configurations: %w", err)
	}

	entries := make(map[models.ProviderType]*registryEntry, len(configs))
	for _, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			r.logger.Warn("skipping invalid provider configuration",
				zap.String("provider_id", cfg.ID),
				zap.Error(err))
			continue
		}
		if _, exists := entries[cfg.Type]; exists {
			r.logger.Warn("skipping duplicate provider type",
				zap.String("provider_id", cfg.ID),
				zap.String("provider_type", string(cfg.Type)))
			continue
		}

		adapter, err := r.factory(cfg)
		if err != nil {
			r.logger.Warn("skipping provider with no adapter",
				zap.String("provider_id", cfg.ID),
				zap.String("provider_type", string(cfg.Type)),
				zap.Error(err))
			continue
		}

		entries[cfg.Type] = &registryEntry{config: cfg, adapter: adapter}
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()

	r.logger.Info("provider registry loaded", zap.Int("providers", len(entries)))
	return nil
}

// Register installs one provider directly, bypassing the store
func (r *Registry) Register(cfg models.ProviderConfig, adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[cfg.Type] = &registryEntry{config: cfg, adapter: adapter}
}

// Adapter returns the live adapter for a provider type
func (r *Registry) Adapter(t models.ProviderType) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[t]
	if !ok {
		return nil, false
	}
	return entry.adapter, true
}

// Config returns the stored configuration for a provider type
func (r *Registry) Config(t models.ProviderType) (models.ProviderConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[t]
	if !ok {
		return models.ProviderConfig{}, false
	}
	return entry.config, true
}

// Snapshot returns the registered configurations in the fixed type order
func (r *Registry) Snapshot() []models.ProviderConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	configs := make([]models.ProviderConfig, 0, len(r.entries))
	for _, t := range models.AllProviderTypes() {
		if entry, ok := r.entries[t]; ok {
			configs = append(configs, entry.config)
		}
	}
	return configs
}

// Types returns the registered provider types in the fixed order
func (r *Registry) Types() []models.ProviderType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]models.ProviderType, 0, len(r.entries))
	for _, t := range models.AllProviderTypes() {
		if _, ok := r.entries[t]; ok {
			types = append(types, t)
		}
	}
	return types
}
