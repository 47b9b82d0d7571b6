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
	googleDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	googleDefaultModel   = "gemini-pro"
	googleVisionModel    = "gemini-pro-vision"
)

// GoogleAdapter implements the Adapter contract over the Gemini
// generateContent API. The model is part of the URL and the key is a query
// parameter, so this vendor cannot share the chat dialect.
type GoogleAdapter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGoogleAdapter creates the Google Gemini adapter
func NewGoogleAdapter(apiKey, baseURL string, timeout time.Duration) *GoogleAdapter {
	if baseURL == "" {
		baseURL = googleDefaultBaseURL
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &GoogleAdapter{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Type returns the vendor tag
func (a *GoogleAdapter) Type() models.ProviderType {
	return models.ProviderGoogle
}

// CostPerToken returns the estimation rate for this vendor
func (a *GoogleAdapter) CostPerToken() float64 {
	return CostPerToken(models.ProviderGoogle)
}

type googlePart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *googleInlineData `json:"inline_data,omitempty"`
}

type googleInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type googleContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []googlePart `json:"parts"`
}

type googleRequest struct {
	Contents         []googleContent        `json:"contents"`
	GenerationConfig googleGenerationConfig `json:"generationConfig"`
}

type googleGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type googleResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate posts one generateContent request and unwraps the first candidate
func (a *GoogleAdapter) generate(ctx context.Context, model string, contents []googleContent, maxTokens int, temperature float64) (string, error) {
	body, err := json.Marshal(googleRequest{
		Contents: contents,
		GenerationConfig: googleGenerationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	})
	if err != nil {
		return "", NewCallError(a.Type(), 0, "failed to encode request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.baseURL, model, a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", NewCallError(a.Type(), 0, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

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

	var parsed googleResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", NewCallError(a.Type(), resp.StatusCode, "failed to decode response", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", NewCallError(a.Type(), resp.StatusCode, "empty response from vendor", nil)
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// promptContents builds the content list. Gemini has no dedicated system
// role here; the system prompt rides as a leading user turn.
func promptContents(system, prompt string) []googleContent {
	var contents []googleContent
	if system != "" {
		contents = append(contents, googleContent{
			Role:  "user",
			Parts: []googlePart{{Text: system}},
		})
	}
	contents = append(contents, googleContent{
		Role:  "user",
		Parts: []googlePart{{Text: prompt}},
	})
	return contents
}

// GenerateText produces plain text for a prompt
func (a *GoogleAdapter) GenerateText(ctx context.Context, prompt string, opts *GenerateOptions) (string, error) {
	if opts == nil {
		opts = &GenerateOptions{}
	}

	model := opts.Model
	if model == "" {
		model = googleDefaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.7
	}

	return a.generate(ctx, model, promptContents(opts.SystemPrompt, prompt), maxTokens, temperature)
}

// AnalyzeText performs sentiment, summary or keyword analysis
func (a *GoogleAdapter) AnalyzeText(ctx context.Context, text string, kind AnalysisKind) (*TextAnalysis, error) {
	system, prompt := analysisPrompts(kind, text)

	result, err := a.generate(ctx, googleDefaultModel, promptContents(system, prompt), 500, 0.3)
	if err != nil {
		return nil, err
	}

	return buildTextAnalysis(kind, result), nil
}

// TranslateText translates text between two languages
func (a *GoogleAdapter) TranslateText(ctx context.Context, text, from, to string) (string, error) {
	system, prompt, maxTokens := translationPrompts(text, from, to)

	result, err := a.generate(ctx, googleDefaultModel, promptContents(system, prompt), maxTokens, 0.3)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}

// AnalyzeDocument produces a structured analysis of a document
func (a *GoogleAdapter) AnalyzeDocument(ctx context.Context, doc *DocumentInput) (*DocumentAnalysis, error) {
	system, prompt := documentPrompts(doc.DocumentText())

	result, err := a.generate(ctx, googleDefaultModel, promptContents(system, prompt), 1000, 0.3)
	if err != nil {
		return nil, err
	}

	return buildDocumentAnalysis(result), nil
}

// GenerateCode produces source text in the target language
func (a *GoogleAdapter) GenerateCode(ctx context.Context, description, language string) (string, error) {
	system, prompt := codePrompts(description, language)
	return a.generate(ctx, googleDefaultModel, promptContents(system, prompt), 2000, 0.2)
}

// AnalyzeImage describes an image through Gemini vision. Inline data only;
// URL-only input degrades.
func (a *GoogleAdapter) AnalyzeImage(ctx context.Context, image *ImageInput) (*ImageAnalysis, error) {
	if image.Data == "" {
		return &ImageAnalysis{
			Description: "Image analysis requires inline image data for Google Gemini.",
			ModelUsed:   googleDefaultModel,
			Note:        "gemini vision accepts inline image data only",
		}, nil
	}

	mimeType := image.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	contents := []googleContent{{
		Parts: []googlePart{
			{Text: imagePrompt},
			{InlineData: &googleInlineData{MimeType: mimeType, Data: image.Data}},
		},
	}}

	result, err := a.generate(ctx, googleVisionModel, contents, 1000, 0.3)
	if err != nil {
		return nil, err
	}

	return &ImageAnalysis{
		Description: result,
		ModelUsed:   googleVisionModel,
	}, nil
}
