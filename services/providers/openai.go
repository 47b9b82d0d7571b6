package providers

import (
	"time"

	"github.com/adminhub/ai-gateway/models"
)

const openAIDefaultBaseURL = "https://api.openai.com/v1"

// NewOpenAIAdapter creates the OpenAI adapter. OpenAI speaks the reference
// chat-completions dialect; vision is a first-class capability, so image
// failures surface as hard errors.
func NewOpenAIAdapter(apiKey, baseURL string, timeout time.Duration) *ChatAdapter {
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	return newChatAdapter(chatSettings{
		providerType: models.ProviderOpenAI,
		baseURL:      baseURL,
		apiKey:       apiKey,
		defaultModel: "gpt-4-turbo-preview",
		visionModel:  "gpt-4-vision-preview",
		timeout:      timeout,
	})
}
