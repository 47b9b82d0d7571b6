package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/adminhub/ai-gateway/models"
	"github.com/adminhub/ai-gateway/services/executor"
	"github.com/adminhub/ai-gateway/services/providers"
	"github.com/adminhub/ai-gateway/utils"
)

// ExecutorService is the capability surface the HTTP layer depends on
type ExecutorService interface {
	GenerateText(ctx context.Context, prompt string, opts *providers.GenerateOptions, rc executor.RequestContext) (*executor.TextResult, error)
	AnalyzeText(ctx context.Context, text string, kind providers.AnalysisKind, rc executor.RequestContext) (*executor.AnalysisResult, error)
	SummarizeText(ctx context.Context, text string, rc executor.RequestContext) (*executor.AnalysisResult, error)
	TranslateText(ctx context.Context, text, from, to string, rc executor.RequestContext) (*executor.TextResult, error)
	AnalyzeDocument(ctx context.Context, doc *providers.DocumentInput, rc executor.RequestContext) (*executor.DocumentResult, error)
	GenerateCode(ctx context.Context, description, language string, rc executor.RequestContext) (*executor.TextResult, error)
	AnalyzeImage(ctx context.Context, image *providers.ImageInput, rc executor.RequestContext) (*executor.ImageResult, error)
	UsageStats(ctx context.Context, provider *models.ProviderType, since time.Time) ([]models.UsageStat, error)
	CheckProviders(ctx context.Context) []executor.ProviderHealth
}

// AIHandler handles the capability request endpoints
type AIHandler struct {
	service ExecutorService
	logger  *zap.Logger
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(service ExecutorService, logger *zap.Logger) *AIHandler {
	return &AIHandler{
		service: service,
		logger:  logger,
	}
}

// RequestAttrs carries the fields shared by every capability request body
type RequestAttrs struct {
	Provider string `json:"provider,omitempty"`
	Language string `json:"language,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// requestContext converts the shared fields, rejecting unknown providers
// before anything reaches the executor.
func (a *RequestAttrs) requestContext() (executor.RequestContext, error) {
	rc := executor.RequestContext{
		Language: a.Language,
		UserID:   a.UserID,
	}
	if a.Provider != "" {
		t := models.ProviderType(a.Provider)
		if !t.IsValid() {
			return rc, &utils.ValidationError{
				Message: "Validation failed",
				Fields:  map[string]string{"provider": "provider must be a known provider type"},
			}
		}
		rc.Provider = t
	}
	return rc, nil
}

// decode parses and validates a request body
func (h *AIHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("failed to parse request body", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		HandleValidationError(w, err, h.logger)
		return false
	}
	return true
}

// GenerateTextRequest is the body of POST /ai/generate
type GenerateTextRequest struct {
	Prompt       string   `json:"prompt" validate:"required"`
	Model        string   `json:"model,omitempty"`
	MaxTokens    *int     `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	Temperature  *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	RequestAttrs
}

// HandleGenerateText handles POST /ai/generate
func (h *AIHandler) HandleGenerateText(w http.ResponseWriter, r *http.Request) {
	var req GenerateTextRequest
	if !h.decode(w, r, &req) {
		return
	}
	rc, err := req.requestContext()
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	opts := &providers.GenerateOptions{
		Model:        req.Model,
		SystemPrompt: req.SystemPrompt,
	}
	if req.MaxTokens != nil {
		opts.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		opts.Temperature = *req.Temperature
	}

	result, err := h.service.GenerateText(r.Context(), req.Prompt, opts, rc)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logRequest("text generation", result.Meta)
	h.write(w, result)
}

// AnalyzeTextRequest is the body of POST /ai/analyze
type AnalyzeTextRequest struct {
	Text string `json:"text" validate:"required"`
	Kind string `json:"kind" validate:"required,oneof=sentiment summary keywords"`
	RequestAttrs
}

// HandleAnalyzeText handles POST /ai/analyze
func (h *AIHandler) HandleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeTextRequest
	if !h.decode(w, r, &req) {
		return
	}
	rc, err := req.requestContext()
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	result, err := h.service.AnalyzeText(r.Context(), req.Text, providers.AnalysisKind(req.Kind), rc)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logRequest("text analysis", result.Meta)
	h.write(w, result)
}

// SummarizeTextRequest is the body of POST /ai/summarize
type SummarizeTextRequest struct {
	Text string `json:"text" validate:"required"`
	RequestAttrs
}

// HandleSummarizeText handles POST /ai/summarize
func (h *AIHandler) HandleSummarizeText(w http.ResponseWriter, r *http.Request) {
	var req SummarizeTextRequest
	if !h.decode(w, r, &req) {
		return
	}
	rc, err := req.requestContext()
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	result, err := h.service.SummarizeText(r.Context(), req.Text, rc)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logRequest("summarization", result.Meta)
	h.write(w, result)
}

// TranslateTextRequest is the body of POST /ai/translate
type TranslateTextRequest struct {
	Text string `json:"text" validate:"required"`
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
	RequestAttrs
}

// HandleTranslateText handles POST /ai/translate
func (h *AIHandler) HandleTranslateText(w http.ResponseWriter, r *http.Request) {
	var req TranslateTextRequest
	if !h.decode(w, r, &req) {
		return
	}
	rc, err := req.requestContext()
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	result, err := h.service.TranslateText(r.Context(), req.Text, req.From, req.To, rc)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logRequest("translation", result.Meta)
	h.write(w, result)
}

// AnalyzeDocumentRequest is the body of POST /ai/document
type AnalyzeDocumentRequest struct {
	Text     string                 `json:"text,omitempty"`
	Content  string                 `json:"content,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	RequestAttrs
}

// HandleAnalyzeDocument handles POST /ai/document
func (h *AIHandler) HandleAnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeDocumentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Text == "" && req.Content == "" && len(req.Metadata) == 0 {
		_ = utils.WriteBadRequest(w, "document text, content or metadata is required", nil)
		return
	}
	rc, err := req.requestContext()
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	doc := &providers.DocumentInput{
		Text:     req.Text,
		Content:  req.Content,
		Metadata: req.Metadata,
	}
	result, err := h.service.AnalyzeDocument(r.Context(), doc, rc)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logRequest("document analysis", result.Meta)
	h.write(w, result)
}

// GenerateCodeRequest is the body of POST /ai/code
type GenerateCodeRequest struct {
	Description string `json:"description" validate:"required"`
	Language    string `json:"language" validate:"required"`
	RequestAttrs
}

// HandleGenerateCode handles POST /ai/code
func (h *AIHandler) HandleGenerateCode(w http.ResponseWriter, r *http.Request) {
	var req GenerateCodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	rc, err := req.requestContext()
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	result, err := h.service.GenerateCode(r.Context(), req.Description, req.Language, rc)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logRequest("code generation", result.Meta)
	h.write(w, result)
}

// AnalyzeImageRequest is the body of POST /ai/image
type AnalyzeImageRequest struct {
	URL      string `json:"url,omitempty" validate:"omitempty,url"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	RequestAttrs
}

// HandleAnalyzeImage handles POST /ai/image
func (h *AIHandler) HandleAnalyzeImage(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeImageRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.URL == "" && req.Data == "" {
		_ = utils.WriteBadRequest(w, "image url or inline data is required", nil)
		return
	}
	rc, err := req.requestContext()
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	image := &providers.ImageInput{
		URL:      req.URL,
		Data:     req.Data,
		MimeType: req.MimeType,
	}
	result, err := h.service.AnalyzeImage(r.Context(), image, rc)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logRequest("image analysis", result.Meta)
	h.write(w, result)
}

// HandleUsageStats handles GET /ai/usage.
// Optional query parameters: provider, since (RFC 3339; default 30 days back).
func (h *AIHandler) HandleUsageStats(w http.ResponseWriter, r *http.Request) {
	var provider *models.ProviderType
	if p := r.URL.Query().Get("provider"); p != "" {
		t := models.ProviderType(p)
		if !t.IsValid() {
			_ = utils.WriteBadRequest(w, "unknown provider", nil)
			return
		}
		provider = &t
	}

	since := time.Now().AddDate(0, 0, -30)
	if s := r.URL.Query().Get("since"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			_ = utils.WriteBadRequest(w, "since must be an RFC 3339 timestamp", nil)
			return
		}
		since = parsed
	}

	stats, err := h.service.UsageStats(r.Context(), provider, since)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.write(w, map[string]interface{}{"since": since, "stats": stats})
}

// HandleProviderHealth handles GET /ai/providers/health
func (h *AIHandler) HandleProviderHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	h.write(w, h.service.CheckProviders(ctx))
}

func (h *AIHandler) logRequest(operation string, meta executor.Meta) {
	h.logger.Info("capability request completed",
		zap.String("operation", operation),
		zap.String("provider", string(meta.Provider)),
		zap.Int("tokens", meta.Tokens),
		zap.Float64("cost", meta.Cost),
		zap.Int64("duration_ms", meta.DurationMs))
}

func (h *AIHandler) write(w http.ResponseWriter, data interface{}) {
	if err := utils.WriteOK(w, data); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}
