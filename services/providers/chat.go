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

// chatSettings parameterizes the OpenAI-compatible chat adapter. Five of the
// eight vendors (openai, xai, deepseek, mistral, kimi) speak the same
// chat-completions dialect and differ only in these values.
type chatSettings struct {
	providerType models.ProviderType
	baseURL      string
	apiKey       string
	defaultModel string

	// visionModel is the model used for image analysis; empty means the
	// vendor has no vision endpoint at all.
	visionModel string

	// visionOptional marks vendors whose vision support is speculative:
	// a failed vision call degrades instead of failing the request.
	visionOptional bool

	// visionFallbackNote explains a degraded image-analysis result
	visionFallbackNote string

	timeout time.Duration
}

// ChatAdapter implements the Adapter contract over the OpenAI-compatible
// chat-completions wire format.
type ChatAdapter struct {
	settings   chatSettings
	httpClient *http.Client
}

func newChatAdapter(settings chatSettings) *ChatAdapter {
	if settings.timeout == 0 {
		settings.timeout = 60 * time.Second
	}
	return &ChatAdapter{
		settings:   settings,
		httpClient: &http.Client{Timeout: settings.timeout},
	}
}

// Type returns the vendor tag
func (a *ChatAdapter) Type() models.ProviderType {
	return a.settings.providerType
}

// CostPerToken returns the estimation rate for this vendor
func (a *ChatAdapter) CostPerToken() float64 {
	return CostPerToken(a.settings.providerType)
}

// chatMessage is one message in the chat-completions payload. Content is a
// string for text messages or a part list for vision messages.
type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete posts one chat-completions request and unwraps the first choice
func (a *ChatAdapter) complete(ctx context.Context, model string, messages []chatMessage, maxTokens int, temperature float64) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", NewCallError(a.Type(), 0, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.settings.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", NewCallError(a.Type(), 0, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.settings.apiKey)

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

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", NewCallError(a.Type(), resp.StatusCode, "failed to decode response", err)
	}
	if len(parsed.Choices) == 0 {
		return "", NewCallError(a.Type(), resp.StatusCode, "empty response from vendor", nil)
	}

	return parsed.Choices[0].Message.Content, nil
}

// GenerateText produces plain text for a prompt
func (a *ChatAdapter) GenerateText(ctx context.Context, prompt string, opts *GenerateOptions) (string, error) {
	if opts == nil {
		opts = &GenerateOptions{}
	}

	model := opts.Model
	if model == "" {
		model = a.settings.defaultModel
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

	messages := []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}

	return a.complete(ctx, model, messages, maxTokens, temperature)
}

// AnalyzeText performs sentiment, summary or keyword analysis
func (a *ChatAdapter) AnalyzeText(ctx context.Context, text string, kind AnalysisKind) (*TextAnalysis, error) {
	system, prompt := analysisPrompts(kind, text)

	messages := []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}

	result, err := a.complete(ctx, a.settings.defaultModel, messages, 500, 0.3)
	if err != nil {
		return nil, err
	}

	return buildTextAnalysis(kind, result), nil
}

// TranslateText translates text between two languages
func (a *ChatAdapter) TranslateText(ctx context.Context, text, from, to string) (string, error) {
	system, prompt, maxTokens := translationPrompts(text, from, to)

	messages := []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}

	result, err := a.complete(ctx, a.settings.defaultModel, messages, maxTokens, 0.3)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}

// AnalyzeDocument produces a structured analysis of a document
func (a *ChatAdapter) AnalyzeDocument(ctx context.Context, doc *DocumentInput) (*DocumentAnalysis, error) {
	system, prompt := documentPrompts(doc.DocumentText())

	messages := []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}

	result, err := a.complete(ctx, a.settings.defaultModel, messages, 1000, 0.3)
	if err != nil {
		return nil, err
	}

	return buildDocumentAnalysis(result), nil
}

// GenerateCode produces source text in the target language
func (a *ChatAdapter) GenerateCode(ctx context.Context, description, language string) (string, error) {
	system, prompt := codePrompts(description, language)

	messages := []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}

	return a.complete(ctx, a.settings.defaultModel, messages, 2000, 0.2)
}

// AnalyzeImage describes an image via the vendor's vision model. Vendors
// without vision support, or with speculative support that fails, return a
// degraded result instead of an error.
func (a *ChatAdapter) AnalyzeImage(ctx context.Context, image *ImageInput) (*ImageAnalysis, error) {
	if a.settings.visionModel == "" {
		return a.degradedImageResult(nil), nil
	}

	messages := []chatMessage{
		{Role: "user", Content: []chatContentPart{
			{Type: "text", Text: imagePrompt},
			{Type: "image_url", ImageURL: &chatImageURL{URL: image.sourceURL()}},
		}},
	}

	result, err := a.complete(ctx, a.settings.visionModel, messages, 1000, 0.3)
	if err != nil {
		if a.settings.visionOptional {
			return a.degradedImageResult(err), nil
		}
		return nil, err
	}

	return &ImageAnalysis{
		Description: result,
		ModelUsed:   a.settings.visionModel,
	}, nil
}

func (a *ChatAdapter) degradedImageResult(err error) *ImageAnalysis {
	note := a.settings.visionFallbackNote
	if note == "" {
		note = fmt.Sprintf("image analysis is not available for %s", a.settings.providerType)
	}
	if err != nil {
		note = fmt.Sprintf("%s: %v", note, err)
	}
	return &ImageAnalysis{
		Description: fmt.Sprintf("Image analysis is currently unavailable for %s.", a.settings.providerType),
		ModelUsed:   a.settings.defaultModel,
		Note:        note,
	}
}

// buildTextAnalysis wraps a vendor response according to the analysis kind.
// Malformed structured output becomes a raw degraded result, never an error.
func buildTextAnalysis(kind AnalysisKind, result string) *TextAnalysis {
	if kind == AnalysisSummary {
		return &TextAnalysis{Kind: kind, Summary: strings.TrimSpace(result)}
	}
	if data := parseStructured(result); data != nil {
		return &TextAnalysis{Kind: kind, Data: data}
	}
	return &TextAnalysis{Kind: kind, Raw: result}
}

// buildDocumentAnalysis wraps a document-analysis response
func buildDocumentAnalysis(result string) *DocumentAnalysis {
	if data := parseStructured(result); data != nil {
		return &DocumentAnalysis{Data: data}
	}
	return &DocumentAnalysis{Analysis: result}
}
