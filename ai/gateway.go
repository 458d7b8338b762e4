package ai

import (
	"context"
	"time"

	"marketmapper/internal"
	"marketmapper/internal/errors"
	"marketmapper/ports"
)

// Gateway is the single choke point for calls to the generation provider.
// It owns the token ceiling and the typed failure taxonomy; it performs no
// retries of its own, a caller-side decision per run.
type Gateway struct {
	client    ports.LLMClient
	maxTokens int
	timeout   time.Duration
	log       *internal.Logger
}

// NewGateway creates a gateway over a transport client
func NewGateway(client ports.LLMClient, maxTokens int, timeout time.Duration, logger *internal.Logger) *Gateway {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if maxTokens <= 0 {
		maxTokens = 4000
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Gateway{client: client, maxTokens: maxTokens, timeout: timeout, log: logger}
}

// Complete executes one completion request and returns the raw text plus
// usage data when the provider reports it.
//
// Failure taxonomy: a CONFIGURATION_ERROR from the transport (missing
// credential) passes through untouched; an empty or content-free response is
// an INVALID_RESPONSE; any other transport failure is wrapped as a
// PROVIDER_ERROR.
func (g *Gateway) Complete(ctx context.Context, req Request) (string, *ports.UsageData, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 || maxTokens > g.maxTokens {
		maxTokens = g.maxTokens
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.log.Debug("[LLMGateway] issuing completion, messages=%d maxTokens=%d", len(req.Messages), maxTokens)

	resp, err := g.client.ChatCompletion(ctx, req.System, req.Messages, maxTokens)
	if err != nil {
		if errors.HasCode(err, errors.CodeConfigInvalid) {
			return "", nil, err
		}
		g.log.Error("[LLMGateway] provider call failed: %v", err)
		return "", nil, errors.ProviderError("llm", err)
	}
	if resp == nil || resp.Content == "" {
		return "", nil, errors.InvalidResponse("provider returned no usable content")
	}

	g.log.Debug("[LLMGateway] completion received, %d bytes", len(resp.Content))
	return resp.Content, resp.Usage, nil
}
