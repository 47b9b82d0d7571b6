package providers

import (
	"context"
	"encoding/json"

	"github.com/adminhub/ai-gateway/models"
)

// Adapter is the uniform capability contract every vendor integration
// implements. Adapters differ only in the wire payload sent to their vendor
// and how the response is unwrapped; all six operations carry the same
// semantics across vendors.
type Adapter interface {
	// Type returns the fixed vendor tag for this adapter
	Type() models.ProviderType

	// CostPerToken returns the approximate per-token rate used for cost
	// estimation. This is an instrumentation signal, not billed truth.
	CostPerToken() float64

	// GenerateText produces plain text for a prompt
	GenerateText(ctx context.Context, prompt string, opts *GenerateOptions) (string, error)

	// AnalyzeText performs sentiment, summary or keyword analysis
	AnalyzeText(ctx context.Context, text string, kind AnalysisKind) (*TextAnalysis, error)

	// TranslateText translates text between two languages
	TranslateText(ctx context.Context, text, from, to string) (string, error)

	// AnalyzeDocument produces a structured analysis of a document
	AnalyzeDocument(ctx context.Context, doc *DocumentInput) (*DocumentAnalysis, error)

	// GenerateCode produces source text in the target language
	GenerateCode(ctx context.Context, description, language string) (string, error)

	// AnalyzeImage describes an image. Vendors without vision support
	// return a degraded result instead of an error.
	AnalyzeImage(ctx context.Context, image *ImageInput) (*ImageAnalysis, error)
}

// GenerateOptions tunes a text-generation call. Zero values select the
// vendor defaults (model, 1000 max tokens, temperature 0.7, generic
// assistant system prompt).
type GenerateOptions struct {
	Model        string  `json:"model,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
}

// AnalysisKind selects the text-analysis mode
type AnalysisKind string

const (
	AnalysisSentiment AnalysisKind = "sentiment"
	AnalysisSummary   AnalysisKind = "summary"
	AnalysisKeywords  AnalysisKind = "keywords"
)

// IsValid reports whether k is a known analysis kind
func (k AnalysisKind) IsValid() bool {
	switch k {
	case AnalysisSentiment, AnalysisSummary, AnalysisKeywords:
		return true
	}
	return false
}

// TextAnalysis is the result of AnalyzeText. For summary requests only
// Summary is set. For sentiment and keyword requests Data holds the parsed
// structured response; when the vendor returns malformed JSON the raw text
// lands in Raw instead — a degraded result, not an error.
type TextAnalysis struct {
	Kind    AnalysisKind           `json:"kind"`
	Summary string                 `json:"summary,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Raw     string                 `json:"raw,omitempty"`
}

// DocumentInput is the canonical document shape. Text wins over Content;
// when both are empty the whole input is serialized as the document text.
type DocumentInput struct {
	Text     string                 `json:"text,omitempty"`
	Content  string                 `json:"content,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// DocumentText returns the text to analyze
func (d *DocumentInput) DocumentText() string {
	if d.Text != "" {
		return d.Text
	}
	if d.Content != "" {
		return d.Content
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return ""
	}
	return string(raw)
}

// DocumentAnalysis is the result of AnalyzeDocument. Data holds the parsed
// structured analysis (type, summary, key points, sentiment, topics,
// recommendations); Analysis holds the raw text when parsing fails.
type DocumentAnalysis struct {
	Data     map[string]interface{} `json:"data,omitempty"`
	Analysis string                 `json:"analysis,omitempty"`
}

// ImageInput carries either inline base64 data or a URL
type ImageInput struct {
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	URL      string `json:"url,omitempty"`
}

// sourceURL returns a URL usable in an OpenAI-style image_url part
func (i *ImageInput) sourceURL() string {
	if i.URL != "" {
		return i.URL
	}
	mime := i.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + i.Data
}

// ImageAnalysis is the result of AnalyzeImage. A non-empty Note marks a
// degraded result from a vendor without usable vision support.
type ImageAnalysis struct {
	Description string `json:"description"`
	ModelUsed   string `json:"model_used"`
	Note        string `json:"note,omitempty"`
}

// Degraded reports whether this is a degraded (vision-unavailable) result
func (a *ImageAnalysis) Degraded() bool {
	return a.Note != ""
}
