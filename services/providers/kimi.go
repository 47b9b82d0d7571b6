package providers

import (
	"time"

	"github.com/adminhub/ai-gateway/models"
)

const kimiDefaultBaseURL = "https://api.moonshot.cn/v1"

// NewKimiAdapter creates the Moonshot Kimi adapter. Kimi vision support is
// speculative, so a failed vision call degrades instead of failing.
func NewKimiAdapter(apiKey, baseURL string, timeout time.Duration) *ChatAdapter {
	if baseURL == "" {
		baseURL = kimiDefaultBaseURL
	}
	return newChatAdapter(chatSettings{
		providerType:       models.ProviderKimi,
		baseURL:            baseURL,
		apiKey:             apiKey,
		defaultModel:       "moonshot-v1-8k",
		visionModel:        "moonshot-v1-vision",
		visionOptional:     true,
		visionFallbackNote: "Kimi vision model is not available",
		timeout:            timeout,
	})
}
