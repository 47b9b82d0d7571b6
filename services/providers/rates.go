package providers

import "github.com/adminhub/ai-gateway/models"

// costPerToken is the fixed per-provider rate table used for cost
// estimation. These are admitted approximations, not vendor-billed figures.
var costPerToken = map[models.ProviderType]float64{
	models.ProviderOpenAI:    0.00002,
	models.ProviderGoogle:    0.000015,
	models.ProviderAnthropic: 0.000025,
	models.ProviderXAI:       0.00001,
	models.ProviderDeepSeek:  0.000005,
	models.ProviderMistral:   0.00001,
	models.ProviderKimi:      0.000008,
	models.ProviderQwen:      0.000006,
}

const defaultCostPerToken = 0.00001

// CostPerToken returns the estimation rate for a provider type
func CostPerToken(t models.ProviderType) float64 {
	if rate, ok := costPerToken[t]; ok {
		return rate
	}
	return defaultCostPerToken
}
