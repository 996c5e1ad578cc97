package conversation

import (
	"context"
	"time"
)

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is an internal message representation that can include system prompts.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type LLMRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
	TopP        float32
	// JSONMode asks the provider to emit a single JSON object. Providers
	// that cannot enforce it fall back to prompt instructions alone.
	JSONMode bool
}

type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

type timeoutLLMClient struct {
	inner   LLMClient
	timeout time.Duration
}

// WithTimeout caps every completion call at d. A zero or negative d
// returns the client unchanged.
func WithTimeout(inner LLMClient, d time.Duration) LLMClient {
	if d <= 0 {
		return inner
	}
	return timeoutLLMClient{inner: inner, timeout: d}
}

func (c timeoutLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.inner.Complete(ctx, req)
}

type latencyLLMClient struct {
	inner     LLMClient
	operation string
	observe   func(operation string, seconds float64)
}

// WithLatency reports the duration of every completion call through
// observe, labeled with the given operation.
func WithLatency(inner LLMClient, operation string, observe func(operation string, seconds float64)) LLMClient {
	if inner == nil || observe == nil {
		return inner
	}
	return latencyLLMClient{inner: inner, operation: operation, observe: observe}
}

func (c latencyLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	start := time.Now()
	resp, err := c.inner.Complete(ctx, req)
	c.observe(c.operation, time.Since(start).Seconds())
	return resp, err
}
