package llm

import (
	"context"
	"strings"

	"marketmapper/internal/errors"
	"marketmapper/ports"

	openai "github.com/sashabaranov/go-openai"
)

// Config holds provider settings for the OpenAI transport
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
}

// OpenAIClient implements ports.LLMClient over the OpenAI chat completions API.
// The credential is checked lazily on first use so the client can be
// constructed in deployments that never call the provider.
type OpenAIClient struct {
	config Config
	client *openai.Client
}

// NewOpenAIClient creates the OpenAI transport
func NewOpenAIClient(config Config) *OpenAIClient {
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	c := &OpenAIClient{config: config}
	if config.APIKey != "" {
		c.client = openai.NewClient(config.APIKey)
	}
	return c
}

// ChatCompletion implements ports.LLMClient
func (c *OpenAIClient) ChatCompletion(ctx context.Context, systemPrompt string, messages []ports.ChatMessage, maxTokens int) (*ports.LLMResponse, error) {
	if c.client == nil {
		return nil, errors.ConfigInvalid("OPENAI_API_KEY is not set")
	}

	chat := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		chat = append(chat, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	for _, m := range messages {
		chat = append(chat, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	req := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    chat,
		Temperature: float32(c.config.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	// Reasoning models take MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(c.config.Model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return &ports.LLMResponse{}, nil
	}

	return &ports.LLMResponse{
		Content: resp.Choices[0].Message.Content,
		Usage: &ports.UsageData{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
			Model:            c.config.Model,
			Provider:         "openai",
		},
	}, nil
}

func isReasoningModel(model string) bool {
	return strings.HasPrefix(model, "o1") ||
		strings.HasPrefix(model, "o3") ||
		strings.HasPrefix(model, "o4") ||
		strings.HasPrefix(model, "gpt-5")
}

// MockLLMClient is a scripted LLM client for testing
type MockLLMClient struct {
	Responses    []string // consumed in order; the last one repeats
	Error        error    // set to simulate transport failures
	Calls        int
	LastSystem   string
	LastMessages []ports.ChatMessage
}

// ChatCompletion implements ports.LLMClient
func (m *MockLLMClient) ChatCompletion(ctx context.Context, systemPrompt string, messages []ports.ChatMessage, maxTokens int) (*ports.LLMResponse, error) {
	m.Calls++
	m.LastSystem = systemPrompt
	m.LastMessages = messages
	if m.Error != nil {
		return nil, m.Error
	}
	if len(m.Responses) == 0 {
		return &ports.LLMResponse{}, nil
	}
	idx := m.Calls - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return &ports.LLMResponse{
		Content: m.Responses[idx],
		Usage: &ports.UsageData{
			PromptTokens:     100,
			CompletionTokens: 50,
			TotalTokens:      150,
			Model:            "mock",
			Provider:         "mock",
		},
	}, nil
}
