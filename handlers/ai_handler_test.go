package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adminhub/ai-gateway/models"
	"github.com/adminhub/ai-gateway/services"
	"github.com/adminhub/ai-gateway/services/executor"
	"github.com/adminhub/ai-gateway/services/providers"
)

// stubExecutor returns canned results and records the last request context
type stubExecutor struct {
	err    error
	lastRC executor.RequestContext
	meta   executor.Meta
	health []executor.ProviderHealth
	stats  []models.UsageStat
}

func (s *stubExecutor) GenerateText(ctx context.Context, prompt string, opts *providers.GenerateOptions, rc executor.RequestContext) (*executor.TextResult, error) {
	s.lastRC = rc
	if s.err != nil {
		return nil, s.err
	}
	return &executor.TextResult{Text: "generated: " + prompt, Meta: s.meta}, nil
}

func (s *stubExecutor) AnalyzeText(ctx context.Context, text string, kind providers.AnalysisKind, rc executor.RequestContext) (*executor.AnalysisResult, error) {
	s.lastRC = rc
	if s.err != nil {
		return nil, s.err
	}
	return &executor.AnalysisResult{Analysis: &providers.TextAnalysis{Kind: kind}, Meta: s.meta}, nil
}

func (s *stubExecutor) SummarizeText(ctx context.Context, text string, rc executor.RequestContext) (*executor.AnalysisResult, error) {
	s.lastRC = rc
	if s.err != nil {
		return nil, s.err
	}
	return &executor.AnalysisResult{
		Analysis: &providers.TextAnalysis{Kind: providers.AnalysisSummary, Summary: "summary"},
		Meta:     s.meta,
	}, nil
}

func (s *stubExecutor) TranslateText(ctx context.Context, text, from, to string, rc executor.RequestContext) (*executor.TextResult, error) {
	s.lastRC = rc
	if s.err != nil {
		return nil, s.err
	}
	return &executor.TextResult{Text: "translated", Meta: s.meta}, nil
}

func (s *stubExecutor) AnalyzeDocument(ctx context.Context, doc *providers.DocumentInput, rc executor.RequestContext) (*executor.DocumentResult, error) {
	s.lastRC = rc
	if s.err != nil {
		return nil, s.err
	}
	return &executor.DocumentResult{Analysis: &providers.DocumentAnalysis{Analysis: "a report"}, Meta: s.meta}, nil
}

func (s *stubExecutor) GenerateCode(ctx context.Context, description, language string, rc executor.RequestContext) (*executor.TextResult, error) {
	s.lastRC = rc
	if s.err != nil {
		return nil, s.err
	}
	return &executor.TextResult{Text: "code", Meta: s.meta}, nil
}

func (s *stubExecutor) AnalyzeImage(ctx context.Context, image *providers.ImageInput, rc executor.RequestContext) (*executor.ImageResult, error) {
	s.lastRC = rc
	if s.err != nil {
		return nil, s.err
	}
	return &executor.ImageResult{Analysis: &providers.ImageAnalysis{Description: "a cat"}, Meta: s.meta}, nil
}

func (s *stubExecutor) UsageStats(ctx context.Context, provider *models.ProviderType, since time.Time) ([]models.UsageStat, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.stats, nil
}

func (s *stubExecutor) CheckProviders(ctx context.Context) []executor.ProviderHealth {
	return s.health
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleGenerateText(t *testing.T) {
	stub := &stubExecutor{meta: executor.Meta{Provider: models.ProviderOpenAI, Tokens: 42}}
	h := NewAIHandler(stub, zap.NewNop())

	rec := postJSON(t, h.HandleGenerateText, `{"prompt":"write a haiku","user_id":"u1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data executor.TextResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "generated: write a haiku", resp.Data.Text)
	assert.Equal(t, models.ProviderOpenAI, resp.Data.Meta.Provider)
	assert.Equal(t, "u1", stub.lastRC.UserID)
}

func TestHandleGenerateTextInvalidBody(t *testing.T) {
	h := NewAIHandler(&stubExecutor{}, zap.NewNop())

	rec := postJSON(t, h.HandleGenerateText, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGenerateTextMissingPrompt(t *testing.T) {
	h := NewAIHandler(&stubExecutor{}, zap.NewNop())

	rec := postJSON(t, h.HandleGenerateText, `{"max_tokens":100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Prompt")
}

func TestHandleGenerateTextUnknownProvider(t *testing.T) {
	stub := &stubExecutor{}
	h := NewAIHandler(stub, zap.NewNop())

	rec := postJSON(t, h.HandleGenerateText, `{"prompt":"hi","provider":"fax-machine"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "provider")
}

func TestHandleGenerateTextProviderOverride(t *testing.T) {
	stub := &stubExecutor{}
	h := NewAIHandler(stub, zap.NewNop())

	rec := postJSON(t, h.HandleGenerateText, `{"prompt":"hi","provider":"qwen","language":"ar"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ProviderQwen, stub.lastRC.Provider)
	assert.Equal(t, "ar", stub.lastRC.Language)
}

func TestHandleGenerateTextNoProvider(t *testing.T) {
	stub := &stubExecutor{err: services.NewNoProviderError("text_generation")}
	h := NewAIHandler(stub, zap.NewNop())

	rec := postJSON(t, h.HandleGenerateText, `{"prompt":"hi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleGenerateTextProviderFailure(t *testing.T) {
	stub := &stubExecutor{err: services.NewProviderCallError("openai", assert.AnError)}
	h := NewAIHandler(stub, zap.NewNop())

	rec := postJSON(t, h.HandleGenerateText, `{"prompt":"hi"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleAnalyzeText(t *testing.T) {
	h := NewAIHandler(&stubExecutor{}, zap.NewNop())

	rec := postJSON(t, h.HandleAnalyzeText, `{"text":"great product","kind":"sentiment"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleAnalyzeTextInvalidKind(t *testing.T) {
	h := NewAIHandler(&stubExecutor{}, zap.NewNop())

	rec := postJSON(t, h.HandleAnalyzeText, `{"text":"great product","kind":"vibes"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Kind")
}

func TestHandleSummarizeText(t *testing.T) {
	h := NewAIHandler(&stubExecutor{}, zap.NewNop())

	rec := postJSON(t, h.HandleSummarizeText, `{"text":"a very long text"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "summary")
}

func TestHandleTranslateTextMissingTarget(t *testing.T) {
	h := NewAIHandler(&stubExecutor{}, zap.NewNop())

	rec := postJSON(t, h.HandleTranslateText, `{"text":"Hello","from":"en"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "To")
}

func TestHandleTranslateText(t *testing.T) {
	h := NewAIHandler(&stubExecutor{}, zap.NewNop())

	rec := postJSON(t, h.HandleTranslateText, `{"text":"Hello","from":"en","to":"es"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "translated")
}

func TestHandleAnalyzeDocumentEmpty(t *testing.T) {
	h := NewAIHandler(&stubExecutor{}, zap.NewNop())

	rec := postJSON(t, h.HandleAnalyzeDocument, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyzeDocument(t *testing.T) {
	h := NewAIHandler(&stubExecutor{}, zap.NewNop())

	rec := postJSON(t, h.HandleAnalyzeDocument, `{"text":"Q3 revenue grew"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleGenerateCodeMissingLanguage(t *testing.T) {
	h := NewAIHandler(&stubExecutor{}, zap.NewNop())

	rec := postJSON(t, h.HandleGenerateCode, `{"description":"hello world"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyzeImageNoSource(t *testing.T) {
	h := NewAIHandler(&stubExecutor{}, zap.NewNop())

	rec := postJSON(t, h.HandleAnalyzeImage, `{"mime_type":"image/png"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyzeImage(t *testing.T) {
	h := NewAIHandler(&stubExecutor{}, zap.NewNop())

	rec := postJSON(t, h.HandleAnalyzeImage, `{"url":"https://example.com/cat.jpg"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a cat")
}

func TestHandleUsageStats(t *testing.T) {
	stub := &stubExecutor{stats: []models.UsageStat{
		{Provider: models.ProviderOpenAI, Status: models.RequestStatusCompleted, Requests: 7},
	}}
	h := NewAIHandler(stub, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/ai/usage?provider=openai", nil)
	rec := httptest.NewRecorder()
	h.HandleUsageStats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"requests":7`)
}

func TestHandleUsageStatsUnknownProvider(t *testing.T) {
	h := NewAIHandler(&stubExecutor{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/ai/usage?provider=fax-machine", nil)
	rec := httptest.NewRecorder()
	h.HandleUsageStats(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUsageStatsBadSince(t *testing.T) {
	h := NewAIHandler(&stubExecutor{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/ai/usage?since=yesterday", nil)
	rec := httptest.NewRecorder()
	h.HandleUsageStats(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleProviderHealth(t *testing.T) {
	stub := &stubExecutor{health: []executor.ProviderHealth{
		{Provider: models.ProviderOpenAI, Healthy: true},
		{Provider: models.ProviderGoogle, Healthy: false, Error: "timeout"},
	}}
	h := NewAIHandler(stub, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/ai/providers/health", nil)
	rec := httptest.NewRecorder()
	h.HandleProviderHealth(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy":true`)
	assert.Contains(t, rec.Body.String(), "timeout")
}
