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
	qwenDefaultBaseURL = "https://dashscope.aliyuncs.com/api/v1"
	qwenDefaultModel   = "qwen-turbo"
	qwenVisionModel    = "qwen-vl-plus"
)

// QwenAdapter implements the Adapter contract over the DashScope generation
// API. Requests nest messages under input and tuning under parameters, and
// vision runs on a separate multimodal endpoint.
type QwenAdapter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewQwenAdapter creates the Alibaba Qwen adapter
func NewQwenAdapter(apiKey, baseURL string, timeout time.Duration) *QwenAdapter {
	if baseURL == "" {
		baseURL = qwenDefaultBaseURL
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &QwenAdapter{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Type returns the vendor tag
func (a *QwenAdapter) Type() models.ProviderType {
	return models.ProviderQwen
}

// CostPerToken returns the estimation rate for this vendor
func (a *QwenAdapter) CostPerToken() float64 {
	return CostPerToken(models.ProviderQwen)
}

type qwenMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type qwenRequest struct {
	Model      string         `json:"model"`
	Input      qwenInput      `json:"input"`
	Parameters qwenParameters `json:"parameters"`
}

type qwenInput struct {
	Messages []qwenMessage `json:"messages"`
}

type qwenParameters struct {
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type qwenResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
}

// generate posts one DashScope generation request and unwraps the first choice
func (a *QwenAdapter) generate(ctx context.Context, path, model string, messages []qwenMessage, maxTokens int, temperature float64) (string, error) {
	body, err := json.Marshal(qwenRequest{
		Model:      model,
		Input:      qwenInput{Messages: messages},
		Parameters: qwenParameters{MaxTokens: maxTokens, Temperature: temperature},
	})
	if err != nil {
		return "", NewCallError(a.Type(), 0, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", NewCallError(a.Type(), 0, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

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

	var parsed qwenResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", NewCallError(a.Type(), resp.StatusCode, "failed to decode response", err)
	}
	if len(parsed.Output.Choices) == 0 {
		return "", NewCallError(a.Type(), resp.StatusCode, "empty response from vendor", nil)
	}

	return parsed.Output.Choices[0].Message.Content, nil
}

const qwenTextPath = "/services/aigc/text-generation/generation"
const qwenMultimodalPath = "/services/aigc/multimodal-generation/generation"

func qwenMessages(system, prompt string) []qwenMessage {
	var messages []qwenMessage
	if system != "" {
		messages = append(messages, qwenMessage{Role: "system", Content: system})
	}
	messages = append(messages, qwenMessage{Role: "user", Content: prompt})
	return messages
}

// GenerateText produces plain text for a prompt
func (a *QwenAdapter) GenerateText(ctx context.Context, prompt string, opts *GenerateOptions) (string, error) {
	if opts == nil {
		opts = &GenerateOptions{}
	}

	model := opts.Model
	if model == "" {
		model = qwenDefaultModel
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

	return a.generate(ctx, qwenTextPath, model, qwenMessages(system, prompt), maxTokens, temperature)
}

// AnalyzeText performs sentiment, summary or keyword analysis
func (a *QwenAdapter) AnalyzeText(ctx context.Context, text string, kind AnalysisKind) (*TextAnalysis, error) {
	system, prompt := analysisPrompts(kind, text)

	result, err := a.generate(ctx, qwenTextPath, qwenDefaultModel, qwenMessages(system, prompt), 500, 0.3)
	if err != nil {
		return nil, err
	}

	return buildTextAnalysis(kind, result), nil
}

// TranslateText translates text between two languages
func (a *QwenAdapter) TranslateText(ctx context.Context, text, from, to string) (string, error) {
	system, prompt, maxTokens := translationPrompts(text, from, to)

	result, err := a.generate(ctx, qwenTextPath, qwenDefaultModel, qwenMessages(system, prompt), maxTokens, 0.3)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}

// AnalyzeDocument produces a structured analysis of a document
func (a *QwenAdapter) AnalyzeDocument(ctx context.Context, doc *DocumentInput) (*DocumentAnalysis, error) {
	system, prompt := documentPrompts(doc.DocumentText())

	result, err := a.generate(ctx, qwenTextPath, qwenDefaultModel, qwenMessages(system, prompt), 1000, 0.3)
	if err != nil {
		return nil, err
	}

	return buildDocumentAnalysis(result), nil
}

// GenerateCode produces source text in the target language
func (a *QwenAdapter) GenerateCode(ctx context.Context, description, language string) (string, error) {
	system, prompt := codePrompts(description, language)
	return a.generate(ctx, qwenTextPath, qwenDefaultModel, qwenMessages(system, prompt), 2000, 0.2)
}

// AnalyzeImage describes an image through the multimodal endpoint. Failures
// degrade rather than fail: Qwen vision availability varies by account.
func (a *QwenAdapter) AnalyzeImage(ctx context.Context, image *ImageInput) (*ImageAnalysis, error) {
	messages := []qwenMessage{{
		Role: "user",
		Content: []map[string]string{
			{"image": image.sourceURL()},
			{"text": imagePrompt},
		},
	}}

	result, err := a.generate(ctx, qwenMultimodalPath, qwenVisionModel, messages, 1000, 0.3)
	if err != nil {
		return &ImageAnalysis{
			Description: "Image analysis is currently unavailable for qwen.",
			ModelUsed:   qwenDefaultModel,
			Note:        fmt.Sprintf("qwen vision model is not available: %v", err),
		}, nil
	}

	return &ImageAnalysis{
		Description: result,
		ModelUsed:   qwenVisionModel,
	}, nil
}
