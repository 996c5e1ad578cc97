package conversation

import (
	"context"

	"github.com/glossglow/salon-ai-receptionist/internal/salon"
	"github.com/glossglow/salon-ai-receptionist/pkg/logging"
)

// apologyReply is spoken when every provider fails; the call must keep
// going even when the model is down.
const apologyReply = "I apologize, I'm having trouble processing that. Could you please repeat?"

const replyHistoryWindow = 10

// Responder generates the receptionist's next line from recent
// transcript context.
type Responder struct {
	llm       LLMClient
	model     string
	profile   salon.Profile
	maxTokens int32
	logger    *logging.Logger
}

// NewResponder builds a reply generator for the given salon profile.
func NewResponder(llm LLMClient, model string, profile salon.Profile, maxTokens int32, logger *logging.Logger) *Responder {
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if maxTokens <= 0 {
		maxTokens = 200
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Responder{
		llm:       llm,
		model:     model,
		profile:   profile,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Reply produces the next assistant turn. It never returns an error;
// provider failures degrade to a spoken apology so the conversation
// survives an outage.
func (r *Responder) Reply(ctx context.Context, history []StoredMessage) string {
	window := history
	if len(window) > replyHistoryWindow {
		window = window[len(window)-replyHistoryWindow:]
	}

	messages := make([]ChatMessage, 0, len(window))
	for _, msg := range window {
		messages = append(messages, ChatMessage{Role: msg.Role, Content: msg.Content})
	}

	resp, err := r.llm.Complete(ctx, LLMRequest{
		Model:       r.model,
		System:      []string{r.profile.SystemPrompt()},
		Messages:    messages,
		MaxTokens:   r.maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		r.logger.Error("reply generation failed", "error", err)
		return apologyReply
	}
	if resp.Text == "" {
		r.logger.Warn("reply generation returned empty text")
		return apologyReply
	}
	return resp.Text
}
