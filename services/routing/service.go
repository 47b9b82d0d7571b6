package routing

import (
	"context"

	"go.uber.org/zap"

	"github.com/adminhub/ai-gateway/models"
	"github.com/adminhub/ai-gateway/services"
	"github.com/adminhub/ai-gateway/services/providers"
	"github.com/adminhub/ai-gateway/services/usage"
)

// costBudgetRatio bounds spend relative to the monthly request limit. A
// provider whose accumulated cost reaches this fraction of its limit is
// excluded even when its request count is still under quota.
const costBudgetRatio = 0.1

// preferences maps each capability to its provider preference order. The
// first registered, capable, under-quota provider in the list wins.
var preferences = map[models.Capability][]models.ProviderType{
	models.CapabilityTextGeneration:    {models.ProviderOpenAI, models.ProviderAnthropic, models.ProviderGoogle},
	models.CapabilityTextAnalysis:      {models.ProviderAnthropic, models.ProviderOpenAI, models.ProviderGoogle},
	models.CapabilitySentimentAnalysis: {models.ProviderAnthropic, models.ProviderOpenAI, models.ProviderGoogle},
	models.CapabilityTranslation:       {models.ProviderGoogle, models.ProviderOpenAI, models.ProviderQwen},
	models.CapabilitySummarization:     {models.ProviderAnthropic, models.ProviderOpenAI, models.ProviderMistral},
	models.CapabilityCodeGeneration:    {models.ProviderDeepSeek, models.ProviderOpenAI, models.ProviderAnthropic},
	models.CapabilityImageAnalysis:     {models.ProviderGoogle, models.ProviderOpenAI, models.ProviderAnthropic},
	models.CapabilityDocumentAnalysis:  {models.ProviderAnthropic, models.ProviderGoogle, models.ProviderOpenAI},
}

// arabicTextGeneration overrides the text-generation preference for Arabic
// input. Qwen and Kimi handle Arabic noticeably better than the default
// chain.
var arabicTextGeneration = []models.ProviderType{
	models.ProviderQwen, models.ProviderKimi, models.ProviderOpenAI,
}

// Options carries the request attributes that influence provider selection
type Options struct {
	// Language is the ISO code of the request's primary language, when known
	Language string
}

// Service selects a provider for each request. Selection is deterministic:
// the same registry state, ledger state and request attributes always yield
// the same provider.
type Service struct {
	registry *providers.Registry
	ledger   usage.Ledger
	logger   *zap.Logger
}

// NewService creates the capability router
func NewService(registry *providers.Registry, ledger usage.Ledger, logger *zap.Logger) *Service {
	return &Service{
		registry: registry,
		ledger:   ledger,
		logger:   logger,
	}
}

// Select returns the provider that should serve a request for the given
// capability. Providers must be registered, declare the capability and be
// under quota; among those, the capability's preference order decides, then
// registry order as the fallback.
func (s *Service) Select(ctx context.Context, capability models.Capability, opts Options) (models.ProviderType, error) {
	if !capability.IsValid() {
		return "", services.ErrUnsupportedCapability
	}

	eligible := s.eligible(ctx, capability)
	if len(eligible) == 0 {
		return "", services.NewNoProviderError(string(capability))
	}

	for _, preferred := range s.preferenceOrder(capability, opts) {
		if _, ok := eligible[preferred]; ok {
			return preferred, nil
		}
	}

	// No preferred provider is eligible; fall back to registry order
	for _, t := range s.registry.Types() {
		if _, ok := eligible[t]; ok {
			return t, nil
		}
	}

	return "", services.NewNoProviderError(string(capability))
}

// Eligible returns the providers that could serve a capability right now,
// in registry order. Exposed for the health and status surfaces.
func (s *Service) Eligible(ctx context.Context, capability models.Capability) []models.ProviderType {
	eligible := s.eligible(ctx, capability)
	var types []models.ProviderType
	for _, t := range s.registry.Types() {
		if _, ok := eligible[t]; ok {
			types = append(types, t)
		}
	}
	return types
}

func (s *Service) preferenceOrder(capability models.Capability, opts Options) []models.ProviderType {
	if capability == models.CapabilityTextGeneration && opts.Language == "ar" {
		return arabicTextGeneration
	}
	return preferences[capability]
}

func (s *Service) eligible(ctx context.Context, capability models.Capability) map[models.ProviderType]struct{} {
	eligible := make(map[models.ProviderType]struct{})
	for _, cfg := range s.registry.Snapshot() {
		if !cfg.IsActive || !cfg.HasCapability(capability) {
			continue
		}
		if !s.underQuota(ctx, cfg) {
			continue
		}
		eligible[cfg.Type] = struct{}{}
	}
	return eligible
}

// underQuota applies the monthly gate: the request count must be below the
// limit and the accumulated cost below costBudgetRatio of it. A limit of
// zero or less means the provider is unmetered.
func (s *Service) underQuota(ctx context.Context, cfg models.ProviderConfig) bool {
	limit := cfg.Usage.MonthlyLimit
	if limit <= 0 {
		return true
	}

	u, err := s.ledger.Usage(ctx, cfg.Type)
	if err != nil {
		// Fail open: a ledger outage must not take every provider down
		s.logger.Warn("usage ledger read failed, skipping quota gate",
			zap.String("provider", string(cfg.Type)),
			zap.Error(err))
		return true
	}

	return u.Requests < limit && u.Cost < float64(limit)*costBudgetRatio
}
