package ports

import "context"

// ChatMessage is one turn of a chat completion request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UsageData represents raw usage data from LLM provider APIs
type UsageData struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
	Provider         string `json:"provider"`
}

// LLMResponse is the provider's raw text plus usage data when reported
type LLMResponse struct {
	Content string
	Usage   *UsageData
}

// LLMClient is the transport-level interface to a generation provider.
// Implementations return plain transport errors; the gateway owns the typed
// error taxonomy.
type LLMClient interface {
	ChatCompletion(ctx context.Context, systemPrompt string, messages []ChatMessage, maxTokens int) (*LLMResponse, error)
}
