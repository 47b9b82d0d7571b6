package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/adminhub/ai-gateway/models"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicAPIVersion     = "2023-06-01"
	anthropicDefaultModel   = "claude-3-sonnet-20240229"
)

// AnthropicAdapter implements the Adapter contract over the Anthropic
// messages API. The system prompt is a top-level field and image input is a
// base64 source block, so this vendor cannot share the chat dialect.
type AnthropicAdapter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAnthropicAdapter creates the Anthropic adapter
func NewAnthropicAdapter(apiKey, baseURL string, timeout time.Duration) *AnthropicAdapter {
	if baseURL == "" {
		baseURL = anthropicDefaultBaseURL
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &AnthropicAdapter{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Type returns the vendor tag
func (a *AnthropicAdapter) Type() models.ProviderType {
	return models.ProviderAnthropic
}

// CostPerToken returns the estimation rate for this vendor
func (a *AnthropicAdapter) CostPerToken() float64 {
	return CostPerToken(models.ProviderAnthropic)
}

type anthropicMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type anthropicContentBlock struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// complete posts one messages request and unwraps the first content block
func (a *AnthropicAdapter) complete(ctx context.Context, model, system string, messages []anthropicMessage, maxTokens int, temperature float64) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		System:      system,
		Messages:    messages,
	})
	if err != nil {
		return "", NewCallError(a.Type(), 0, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", NewCallError(a.Type(), 0, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", NewCallError(a.Type(), 0, "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewCallError(a.Type(), resp.StatusCode, "failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", NewCallError(a.Type(), resp.StatusCode,
			fmt.Sprintf("vendor returned status %d", resp.StatusCode), nil)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", NewCallError(a.Type(), resp.StatusCode, "failed to decode response", err)
	}
	if len(parsed.Content) == 0 {
		return "", NewCallError(a.Type(), resp.StatusCode, "empty response from vendor", nil)
	}

	return parsed.Content[0].Text, nil
}

func userMessage(prompt string) []anthropicMessage {
	return []anthropicMessage{{Role: "user", Content: prompt}}
}

// GenerateText produces plain text for a prompt
func (a *AnthropicAdapter) GenerateText(ctx context.Context, prompt string, opts *GenerateOptions) (string, error) {
	if opts == nil {
		opts = &GenerateOptions{}
	}

	model := opts.Model
	if model == "" {
		model = anthropicDefaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	system := opts.SystemPrompt
	if system == "" {
		system = defaultSystemPrompt
	}

	return a.complete(ctx, model, system, userMessage(prompt), maxTokens, temperature)
}

// AnalyzeText performs sentiment, summary or keyword analysis
func (a *AnthropicAdapter) AnalyzeText(ctx context.Context, text string, kind AnalysisKind) (*TextAnalysis, error) {
	system, prompt := analysisPrompts(kind, text)

	result, err := a.complete(ctx, anthropicDefaultModel, system, userMessage(prompt), 500, 0.3)
	if err != nil {
		return nil, err
	}

	return buildTextAnalysis(kind, result), nil
}

// TranslateText translates text between two languages
func (a *AnthropicAdapter) TranslateText(ctx context.Context, text, from, to string) (string, error) {
	system, prompt, maxTokens := translationPrompts(text, from, to)

	result, err := a.complete(ctx, anthropicDefaultModel, system, userMessage(prompt), maxTokens, 0.3)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}

// AnalyzeDocument produces a structured analysis of a document
func (a *AnthropicAdapter) AnalyzeDocument(ctx context.Context, doc *DocumentInput) (*DocumentAnalysis, error) {
	system, prompt := documentPrompts(doc.DocumentText())

	result, err := a.complete(ctx, anthropicDefaultModel, system, userMessage(prompt), 1000, 0.3)
	if err != nil {
		return nil, err
	}

	return buildDocumentAnalysis(result), nil
}

// GenerateCode produces source text in the target language
func (a *AnthropicAdapter) GenerateCode(ctx context.Context, description, language string) (string, error) {
	system, prompt := codePrompts(description, language)
	return a.complete(ctx, anthropicDefaultModel, system, userMessage(prompt), 2000, 0.2)
}

// AnalyzeImage describes an image using a base64 source block. Claude 3
// vision only accepts inline data, so URL-only input degrades.
func (a *AnthropicAdapter) AnalyzeImage(ctx context.Context, image *ImageInput) (*ImageAnalysis, error) {
	if image.Data == "" {
		return &ImageAnalysis{
			Description: "Image analysis requires inline image data for Anthropic.",
			ModelUsed:   anthropicDefaultModel,
			Note:        "anthropic vision accepts base64 image data only",
		}, nil
	}

	mediaType := image.MimeType
	if mediaType == "" {
		mediaType = "image/jpeg"
	}

	messages := []anthropicMessage{{
		Role: "user",
		Content: []anthropicContentBlock{
			{Type: "text", Text: imagePrompt},
			{Type: "image", Source: &anthropicImageSource{
				Type:      "base64",
				MediaType: mediaType,
				Data:      image.Data,
			}},
		},
	}}

	result, err := a.complete(ctx, anthropicDefaultModel,
		"You are an expert image analyst. Analyze images and provide detailed, accurate descriptions.",
		messages, 1000, 0.3)
	if err != nil {
		return nil, err
	}

	return &ImageAnalysis{
		Description: result,
		ModelUsed:   anthropicDefaultModel,
	}, nil
}
