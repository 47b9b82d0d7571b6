package providers

import (
	"time"

	"github.com/adminhub/ai-gateway/models"
)

const mistralDefaultBaseURL = "https://api.mistral.ai/v1"

// NewMistralAdapter creates the Mistral adapter. Pixtral vision support is
// treated as optional; a failed vision call degrades instead of failing.
func NewMistralAdapter(apiKey, baseURL string, timeout time.Duration) *ChatAdapter {
	if baseURL == "" {
		baseURL = mistralDefaultBaseURL
	}
	return newChatAdapter(chatSettings{
		providerType:       models.ProviderMistral,
		baseURL:            baseURL,
		apiKey:             apiKey,
		defaultModel:       "mistral-large-latest",
		visionModel:        "pixtral-12b-2409",
		visionOptional:     true,
		visionFallbackNote: "Mistral vision model is not available",
		timeout:            timeout,
	})
}
