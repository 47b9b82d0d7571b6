package providers

import (
	"time"

	"github.com/adminhub/ai-gateway/models"
)

const deepSeekDefaultBaseURL = "https://api.deepseek.com/v1"

// NewDeepSeekAdapter creates the DeepSeek adapter. DeepSeek is the preferred
// vendor for code generation; its vision model is speculative, so a failed
// vision call degrades instead of failing.
func NewDeepSeekAdapter(apiKey, baseURL string, timeout time.Duration) *ChatAdapter {
	if baseURL == "" {
		baseURL = deepSeekDefaultBaseURL
	}
	return newChatAdapter(chatSettings{
		providerType:       models.ProviderDeepSeek,
		baseURL:            baseURL,
		apiKey:             apiKey,
		defaultModel:       "deepseek-chat",
		visionModel:        "deepseek-vl-chat",
		visionOptional:     true,
		visionFallbackNote: "DeepSeek vision model is not available",
		timeout:            timeout,
	})
}
