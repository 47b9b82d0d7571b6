package executor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adminhub/ai-gateway/models"
	"github.com/adminhub/ai-gateway/repositories"
	"github.com/adminhub/ai-gateway/services"
	"github.com/adminhub/ai-gateway/services/providers"
	"github.com/adminhub/ai-gateway/services/routing"
	"github.com/adminhub/ai-gateway/services/usage"
)

// Meta carries the execution accounting returned alongside every result
type Meta struct {
	Provider   models.ProviderType `json:"provider"`
	Tokens     int                 `json:"tokens"`
	Cost       float64             `json:"cost"`
	DurationMs int64               `json:"duration_ms"`
}

// RequestContext carries the attributes common to every capability request
type RequestContext struct {
	// Provider pins the request to one provider, bypassing routing.
	// An unregistered provider fails before any network call.
	Provider models.ProviderType

	// Language is the ISO code of the request's primary language, when known
	Language string

	// UserID attributes the request in the audit trail
	UserID string
}

// Service executes capability requests end to end: resolve a provider,
// dispatch to its adapter, account for usage and append the audit record.
// Every execution updates the ledger and produces exactly one record,
// success or failure.
type Service struct {
	registry *providers.Registry
	router   *routing.Service
	ledger   usage.Ledger
	records  repositories.RequestRecordRepository
	logger   *zap.Logger
}

// NewService creates the request executor
func NewService(
	registry *providers.Registry,
	router *routing.Service,
	ledger usage.Ledger,
	records repositories.RequestRecordRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		registry: registry,
		router:   router,
		ledger:   ledger,
		records:  records,
		logger:   logger,
	}
}

// resolve returns the adapter for a request: the pinned provider when set,
// otherwise the router's choice for the capability.
func (s *Service) resolve(ctx context.Context, capability models.Capability, rc RequestContext) (providers.Adapter, error) {
	if rc.Provider != "" {
		adapter, ok := s.registry.Adapter(rc.Provider)
		if !ok {
			return nil, services.NewNoProviderError(string(capability)).
				WithDetail("requested_provider", string(rc.Provider))
		}
		return adapter, nil
	}

	selected, err := s.router.Select(ctx, capability, routing.Options{Language: rc.Language})
	if err != nil {
		return nil, err
	}
	adapter, ok := s.registry.Adapter(selected)
	if !ok {
		return nil, services.NewNoProviderError(string(capability))
	}
	return adapter, nil
}

// run dispatches one resolved request and settles its accounting. The
// adapter error, if any, is returned wrapped in the domain taxonomy with the
// original reachable via Unwrap.
func (s *Service) run(
	ctx context.Context,
	capability models.Capability,
	rc RequestContext,
	input interface{},
	call func(providers.Adapter) (interface{}, error),
) (interface{}, Meta, error) {
	adapter, err := s.resolve(ctx, capability, rc)
	if err != nil {
		return nil, Meta{}, err
	}

	start := time.Now()
	output, callErr := call(adapter)
	durationMs := time.Since(start).Milliseconds()

	meta := Meta{
		Provider:   adapter.Type(),
		DurationMs: durationMs,
	}
	if callErr == nil {
		tokens := estimateTokens(input, output)
		meta.Tokens = tokens
		meta.Cost = float64(tokens) * adapter.CostPerToken()
	}

	s.settle(ctx, capability, rc, input, output, meta, callErr)

	if callErr != nil {
		return nil, meta, services.NewProviderCallError(string(adapter.Type()), callErr)
	}
	return output, meta, nil
}

// settle updates the ledger and appends the audit record. Failures here are
// logged and swallowed: accounting must never fail a request that the
// provider already answered.
func (s *Service) settle(
	ctx context.Context,
	capability models.Capability,
	rc RequestContext,
	input, output interface{},
	meta Meta,
	callErr error,
) {
	if err := s.ledger.Record(ctx, meta.Provider, int64(meta.Tokens), meta.Cost); err != nil {
		s.logger.Error("usage ledger update failed",
			zap.String("provider", string(meta.Provider)),
			zap.Error(err))
	}

	record := &models.RequestRecord{
		ID:         uuid.New(),
		Provider:   meta.Provider,
		Capability: capability,
		Input:      marshalRaw(input),
		Tokens:     meta.Tokens,
		Cost:       meta.Cost,
		DurationMs: meta.DurationMs,
		Status:     models.RequestStatusCompleted,
		UserID:     rc.UserID,
		CreatedAt:  time.Now().UTC(),
	}
	if callErr != nil {
		record.Status = models.RequestStatusFailed
		record.ErrorMessage = callErr.Error()
	} else {
		record.Output = marshalRaw(output)
	}

	if err := s.records.Insert(ctx, record); err != nil {
		s.logger.Error("request record insert failed",
			zap.String("provider", string(meta.Provider)),
			zap.String("capability", string(capability)),
			zap.Error(err))
	}
}

// estimateTokens approximates token consumption as one token per four bytes
// of serialized input plus output, rounded up. This feeds cost estimation
// and the quota gate; it is not billed truth.
func estimateTokens(input, output interface{}) int {
	size := len(marshalRaw(input)) + len(marshalRaw(output))
	return (size + 3) / 4
}

func marshalRaw(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}

// TextResult is the outcome of text generation, translation or code
// generation.
type TextResult struct {
	Text string `json:"text"`
	Meta Meta   `json:"meta"`
}

// AnalysisResult is the outcome of text analysis or summarization
type AnalysisResult struct {
	Analysis *providers.TextAnalysis `json:"analysis"`
	Meta     Meta                    `json:"meta"`
}

// DocumentResult is the outcome of document analysis
type DocumentResult struct {
	Analysis *providers.DocumentAnalysis `json:"analysis"`
	Meta     Meta                        `json:"meta"`
}

// ImageResult is the outcome of image analysis
type ImageResult struct {
	Analysis *providers.ImageAnalysis `json:"analysis"`
	Meta     Meta                     `json:"meta"`
}

// GenerateText runs a text-generation request
func (s *Service) GenerateText(ctx context.Context, prompt string, opts *providers.GenerateOptions, rc RequestContext) (*TextResult, error) {
	input := map[string]interface{}{"prompt": prompt, "options": opts}
	output, meta, err := s.run(ctx, models.CapabilityTextGeneration, rc, input, func(a providers.Adapter) (interface{}, error) {
		return a.GenerateText(ctx, prompt, opts)
	})
	if err != nil {
		return nil, err
	}
	return &TextResult{Text: output.(string), Meta: meta}, nil
}

// AnalyzeText runs a text-analysis request. Sentiment requests route on the
// dedicated sentiment capability so providers can specialize.
func (s *Service) AnalyzeText(ctx context.Context, text string, kind providers.AnalysisKind, rc RequestContext) (*AnalysisResult, error) {
	if !kind.IsValid() {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "unknown analysis kind", nil).
			WithDetail("analysis_kind", string(kind))
	}

	capability := models.CapabilityTextAnalysis
	if kind == providers.AnalysisSentiment {
		capability = models.CapabilitySentimentAnalysis
	}

	input := map[string]interface{}{"text": text, "kind": kind}
	output, meta, err := s.run(ctx, capability, rc, input, func(a providers.Adapter) (interface{}, error) {
		return a.AnalyzeText(ctx, text, kind)
	})
	if err != nil {
		return nil, err
	}
	return &AnalysisResult{Analysis: output.(*providers.TextAnalysis), Meta: meta}, nil
}

// SummarizeText runs a summarization request
func (s *Service) SummarizeText(ctx context.Context, text string, rc RequestContext) (*AnalysisResult, error) {
	input := map[string]interface{}{"text": text}
	output, meta, err := s.run(ctx, models.CapabilitySummarization, rc, input, func(a providers.Adapter) (interface{}, error) {
		return a.AnalyzeText(ctx, text, providers.AnalysisSummary)
	})
	if err != nil {
		return nil, err
	}
	return &AnalysisResult{Analysis: output.(*providers.TextAnalysis), Meta: meta}, nil
}

// TranslateText runs a translation request
func (s *Service) TranslateText(ctx context.Context, text, from, to string, rc RequestContext) (*TextResult, error) {
	input := map[string]interface{}{"text": text, "from": from, "to": to}
	output, meta, err := s.run(ctx, models.CapabilityTranslation, rc, input, func(a providers.Adapter) (interface{}, error) {
		return a.TranslateText(ctx, text, from, to)
	})
	if err != nil {
		return nil, err
	}
	return &TextResult{Text: output.(string), Meta: meta}, nil
}

// AnalyzeDocument runs a document-analysis request
func (s *Service) AnalyzeDocument(ctx context.Context, doc *providers.DocumentInput, rc RequestContext) (*DocumentResult, error) {
	output, meta, err := s.run(ctx, models.CapabilityDocumentAnalysis, rc, doc, func(a providers.Adapter) (interface{}, error) {
		return a.AnalyzeDocument(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return &DocumentResult{Analysis: output.(*providers.DocumentAnalysis), Meta: meta}, nil
}

// GenerateCode runs a code-generation request
func (s *Service) GenerateCode(ctx context.Context, description, language string, rc RequestContext) (*TextResult, error) {
	input := map[string]interface{}{"description": description, "language": language}
	output, meta, err := s.run(ctx, models.CapabilityCodeGeneration, rc, input, func(a providers.Adapter) (interface{}, error) {
		return a.GenerateCode(ctx, description, language)
	})
	if err != nil {
		return nil, err
	}
	return &TextResult{Text: output.(string), Meta: meta}, nil
}

// AnalyzeImage runs an image-analysis request
func (s *Service) AnalyzeImage(ctx context.Context, image *providers.ImageInput, rc RequestContext) (*ImageResult, error) {
	// Inline image bytes stay out of the audit record
	input := map[string]interface{}{"url": image.URL, "mime_type": image.MimeType, "inline": image.Data != ""}
	output, meta, err := s.run(ctx, models.CapabilityImageAnalysis, rc, input, func(a providers.Adapter) (interface{}, error) {
		return a.AnalyzeImage(ctx, image)
	})
	if err != nil {
		return nil, err
	}
	return &ImageResult{Analysis: output.(*providers.ImageAnalysis), Meta: meta}, nil
}

// UsageStats aggregates audit records by provider and status since the given
// time, optionally narrowed to one provider.
func (s *Service) UsageStats(ctx context.Context, provider *models.ProviderType, since time.Time) ([]models.UsageStat, error) {
	stats, err := s.records.UsageStats(ctx, provider, since)
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeInternal, "usage aggregation failed", err)
	}
	return stats, nil
}

// ProviderHealth is one provider's probe outcome
type ProviderHealth struct {
	Provider models.ProviderType `json:"provider"`
	Healthy  bool                `json:"healthy"`
	Error    string              `json:"error,omitempty"`
}

// CheckProviders probes every registered provider with a minimal generation
// request. Probes bypass routing, the ledger and the audit trail.
func (s *Service) CheckProviders(ctx context.Context) []ProviderHealth {
	var results []ProviderHealth
	for _, t := range s.registry.Types() {
		adapter, ok := s.registry.Adapter(t)
		if !ok {
			continue
		}
		health := ProviderHealth{Provider: t, Healthy: true}
		_, err := adapter.GenerateText(ctx, "ping", &providers.GenerateOptions{MaxTokens: 5})
		if err != nil {
			health.Healthy = false
			health.Error = err.Error()
			s.logger.Warn("provider health probe failed",
				zap.String("provider", string(t)),
				zap.Error(err))
		}
		results = append(results, health)
	}
	return results
}
