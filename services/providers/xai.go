package providers

import (
	"time"

	"github.com/adminhub/ai-gateway/models"
)

const xaiDefaultBaseURL = "https://api.x.ai/v1"

// NewXAIAdapter creates the xAI Grok adapter. Grok vision support is
// speculative, so a failed vision call degrades instead of failing.
func NewXAIAdapter(apiKey, baseURL string, timeout time.Duration) *ChatAdapter {
	if baseURL == "" {
		baseURL = xaiDefaultBaseURL
	}
	return newChatAdapter(chatSettings{
		providerType:       models.ProviderXAI,
		baseURL:            baseURL,
		apiKey:             apiKey,
		defaultModel:       "grok-beta",
		visionModel:        "grok-vision-beta",
		visionOptional:     true,
		visionFallbackNote: "xAI Grok does not support image analysis yet",
		timeout:            timeout,
	})
}
