package models

import (
	"fmt"
	"time"
)

// ProviderType identifies one external AI vendor integration.
// Exactly one provider of each type may be configured.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderGoogle    ProviderType = "google"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderXAI       ProviderType = "xai"
	ProviderDeepSeek  ProviderType = "deepseek"
	ProviderMistral   ProviderType = "mistral"
	ProviderKimi      ProviderType = "kimi"
	ProviderQwen      ProviderType = "qwen"
)

// AllProviderTypes returns every provider type in a stable order
func AllProviderTypes() []ProviderType {
	return []ProviderType{
		ProviderOpenAI,
		ProviderGoogle,
		ProviderAnthropic,
		ProviderXAI,
		ProviderDeepSeek,
		ProviderMistral,
		ProviderKimi,
		ProviderQwen,
	}
}

// IsValid reports whether t is one of the fixed provider types
func (t ProviderType) IsValid() bool {
	switch t {
	case ProviderOpenAI, ProviderGoogle, ProviderAnthropic, ProviderXAI,
		ProviderDeepSeek, ProviderMistral, ProviderKimi, ProviderQwen:
		return true
	}
	return false
}

// UsageSnapshot is the persisted usage view of a provider. It is advisory:
// the in-process usage ledger is authoritative for the quota gate within a
// process lifetime; these fields are refreshed periodically for reporting.
type UsageSnapshot struct {
	TotalRequests     int64     `json:"total_requests"`
	TotalTokens       int64     `json:"total_tokens"`
	Cost              float64   `json:"cost"`
	LastUsed          time.Time `json:"last_used"`
	MonthlyLimit      int64     `json:"monthly_limit"`
	CurrentMonthUsage int64     `json:"current_month_usage"`
}

// ProviderConfig holds identity and policy for one external AI vendor.
// Created and updated by the administrative store; this service only reads it.
type ProviderConfig struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         ProviderType  `json:"type"`
	APIKey       string        `json:"-"`
	Endpoint     string        `json:"endpoint"`
	IsActive     bool          `json:"is_active"`
	Capabilities []Capability  `json:"capabilities"`
	Usage        UsageSnapshot `json:"usage"`
}

// Validate checks the registry invariants for a single config
func (p *ProviderConfig) Validate() error {
	if !p.Type.IsValid() {
		return fmt.Errorf("provider %s: unknown type %q", p.ID, p.Type)
	}
	if p.IsActive && len(p.Capabilities) == 0 {
		return fmt.Errorf("provider %s: active provider must declare at least one capability", p.ID)
	}
	for _, c := range p.Capabilities {
		if !c.IsValid() {
			return fmt.Errorf("provider %s: unknown capability %q", p.ID, c)
		}
	}
	return nil
}

// HasCapability reports whether the provider declares the given capability
func (p *ProviderConfig) HasCapability(c Capability) bool {
	for _, dc := range p.Capabilities {
		if dc == c {
			return true
		}
	}
	return false
}
