package providers

import (
	"encoding/json"
	"fmt"
	"strings"
)

const defaultSystemPrompt = "You are a helpful and knowledgeable assistant."

// languageNames maps common language codes to human-readable names for
// embedding in translation instructions. Unknown codes pass through verbatim.
var languageNames = map[string]string{
	"ar":   "Arabic",
	"en":   "English",
	"fr":   "French",
	"es":   "Spanish",
	"de":   "German",
	"zh":   "Chinese",
	"auto": "the detected source language",
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// analysisPrompts returns the system prompt and user prompt for one
// text-analysis kind. Sentiment and keyword analysis request a JSON-shaped
// response; summaries are plain text.
func analysisPrompts(kind AnalysisKind, text string) (system, prompt string) {
	switch kind {
	case AnalysisSentiment:
		system = "You are an expert sentiment analyst. Analyze the sentiment of the given text and respond with precise JSON."
		prompt = fmt.Sprintf(`Analyze the sentiment of the following text in detail:

Text: %q

Respond with a JSON object containing:
- sentiment: (positive/negative/neutral)
- confidence: (0-1)
- emotions: array of detected emotions
- summary: a short summary of the analysis`, text)
	case AnalysisKeywords:
		system = "You are an expert at keyword extraction. Extract the most important words and concepts from the text."
		prompt = fmt.Sprintf(`Extract the most important keywords from the following text:

%q

Respond with a JSON object containing:
- keywords: array of keywords
- topics: the main topics
- entities: mentioned entities (people, places, organizations)`, text)
	default: // AnalysisSummary
		system = "You are an expert at summarizing text. Produce a useful, concise summary of the given text."
		prompt = fmt.Sprintf(`Summarize the following text concisely:

%q

Summary:`, text)
	}
	return system, prompt
}

// translationPrompts returns the system prompt, user prompt and output token
// budget for a translation. The budget scales with input length so longer
// texts are not truncated.
func translationPrompts(text, from, to string) (system, prompt string, maxTokens int) {
	system = "You are a professional translator. Translate text accurately while preserving meaning and context."
	prompt = fmt.Sprintf(`Translate the following text from %s to %s:

%q

Translation:`, languageName(from), languageName(to), text)

	maxTokens = len(text) * 2
	if maxTokens < 100 {
		maxTokens = 100
	}
	return system, prompt, maxTokens
}

// documentPrompts returns the system and user prompts for document analysis
func documentPrompts(documentText string) (system, prompt string) {
	system = "You are an expert document analyst. Analyze documents and provide useful insights."
	prompt = fmt.Sprintf(`Analyze the following document and provide a comprehensive analysis:

Document:
%q

Respond with a JSON object containing:
- type: the document type
- summary: a summary of the content
- key_points: the main points
- sentiment: the overall sentiment
- topics: the topics covered
- recommendations: suggested actions or recommendations`, documentText)
	return system, prompt
}

// codePrompts returns the system and user prompts for code generation
func codePrompts(description, language string) (system, prompt string) {
	system = fmt.Sprintf("You are an expert %s developer. Write clean, documented, maintainable code.", language)
	prompt = fmt.Sprintf(`Write %s code for the following requirement:

Requirement: %s

Code:`, language, description)
	return system, prompt
}

// imagePrompt is the uniform vision instruction
const imagePrompt = "Analyze this image and give a detailed description of its content, including the visual elements and any text present."

// parseStructured attempts to parse a vendor response as a JSON object.
// Returns nil when the response is not valid JSON.
func parseStructured(s string) map[string]interface{} {
	trimmed := strings.TrimSpace(s)
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &data); err != nil {
		return nil
	}
	return data
}
