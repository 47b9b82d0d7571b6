package models

import "fmt"

// Capability identifies one kind of AI operation a provider may support.
// The set is closed: every request names exactly one capability and no
// provider ever services a capability absent from its declared set.
type Capability string

const (
	CapabilityTextGeneration    Capability = "text_generation"
	CapabilityTextAnalysis      Capability = "text_analysis"
	CapabilitySentimentAnalysis Capability = "sentiment_analysis"
	CapabilityTranslation       Capability = "translation"
	CapabilitySummarization     Capability = "summarization"
	CapabilityCodeGeneration    Capability = "code_generation"
	CapabilityImageAnalysis     Capability = "image_analysis"
	CapabilityDocumentAnalysis  Capability = "document_analysis"
)

// AllCapabilities returns every capability in a stable order
func AllCapabilities() []Capability {
	return []Capability{
		CapabilityTextGeneration,
		CapabilityTextAnalysis,
		CapabilitySentimentAnalysis,
		CapabilityTranslation,
		CapabilitySummarization,
		CapabilityCodeGeneration,
		CapabilityImageAnalysis,
		CapabilityDocumentAnalysis,
	}
}

// IsValid reports whether c is one of the fixed capability values
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityTextGeneration, CapabilityTextAnalysis, CapabilitySentimentAnalysis,
		CapabilityTranslation, CapabilitySummarization, CapabilityCodeGeneration,
		CapabilityImageAnalysis, CapabilityDocumentAnalysis:
		return true
	}
	return false
}

// ParseCapability converts a string to a Capability, rejecting unknown values
func ParseCapability(s string) (Capability, error) {
	c := Capability(s)
	if !c.IsValid() {
		return "", fmt.Errorf("unknown capability %q", s)
	}
	return c, nil
}
