package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/glossglow/salon-ai-receptionist/internal/booking"
	"github.com/glossglow/salon-ai-receptionist/internal/salon"
	"github.com/glossglow/salon-ai-receptionist/pkg/logging"
)

const extractionSystemPrompt = `You extract appointment booking details from a hair salon conversation.
Return ONLY a JSON object with these keys, using empty strings for anything not mentioned:
{"customer_name": "", "service_type": "", "preferred_stylist": "", "date": "", "time": "", "email": "", "phone": ""}
Rules:
- service_type must be one of: %s
- preferred_stylist must be one of: %s
- Copy values the customer actually said. Never invent details.
- Emails are often dictated aloud ("john at gmail dot com"); transcribe them as spoken.
- "Known so far" lists values already collected. Return a value only when the customer states it or corrects a known one.`

// Extractor pulls structured booking fields out of recent transcript
// turns. The model is the primary path; when it fails or returns
// unusable JSON, pattern matching over the customer's messages takes
// over so a provider outage never stalls slot filling.
type Extractor struct {
	llm       LLMClient
	model     string
	heuristic heuristicExtractor
	logger    *logging.Logger

	onFallback func()
}

// NewExtractor builds an extractor for the given salon profile.
func NewExtractor(llm LLMClient, model string, profile salon.Profile, logger *logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.Default()
	}
	return &Extractor{
		llm:       llm,
		model:     model,
		heuristic: newHeuristicExtractor(profile),
		logger:    logger,
	}
}

// OnFallback registers a callback invoked whenever heuristic extraction
// replaces the model path.
func (e *Extractor) OnFallback(fn func()) {
	e.onFallback = fn
}

// Extract returns normalized field updates found in the transcript
// window. known carries the values already gathered for the session so
// the model can tell a correction from a repeat. Slots the transcript
// does not mention are absent from the result, never empty, so merging
// cannot erase earlier answers.
func (e *Extractor) Extract(ctx context.Context, window []StoredMessage, known booking.Fields) booking.Fields {
	raw := e.extractWithModel(ctx, window, known)
	if raw == nil {
		raw = e.heuristic.Extract(window)
	}

	updates := booking.Fields{}
	for slot, value := range raw {
		normalized, ok := booking.NormalizeField(slot, value)
		if !ok {
			continue
		}
		updates[slot] = normalized
	}
	return updates
}

// extractWithModel asks the model for a JSON object of fields. A nil
// return means the caller should fall back to heuristics.
func (e *Extractor) extractWithModel(ctx context.Context, window []StoredMessage, known booking.Fields) booking.Fields {
	if e.llm == nil {
		e.recordFallback("no model configured")
		return nil
	}

	transcript := formatTranscript(window)
	if strings.TrimSpace(transcript) == "" {
		return booking.Fields{}
	}

	system := fmt.Sprintf(extractionSystemPrompt,
		strings.Join(e.heuristic.profile.Services, ", "),
		strings.Join(e.heuristic.profile.StylistNames(), ", "),
	)

	content := "Conversation:\n" + transcript
	if block := knownFieldsBlock(known); block != "" {
		content = "Known so far:\n" + block + "\n\n" + content
	}

	resp, err := e.llm.Complete(ctx, LLMRequest{
		Model:  e.model,
		System: []string{system},
		Messages: []ChatMessage{
			{Role: ChatRoleUser, Content: content},
		},
		MaxTokens:   300,
		Temperature: 0.1,
		JSONMode:    true,
	})
	if err != nil {
		e.recordFallback(err.Error())
		return nil
	}

	decoded, err := decodeFieldJSON(resp.Text)
	if err != nil {
		e.recordFallback(err.Error())
		return nil
	}
	return decoded
}

// knownFieldsBlock renders the non-empty accumulated fields as a JSON
// object for the extraction prompt. An empty result means the prompt
// carries the conversation alone.
func knownFieldsBlock(known booking.Fields) string {
	filtered := make(map[string]string, len(known))
	for slot, value := range known {
		if value != "" {
			filtered[slot] = value
		}
	}
	if len(filtered) == 0 {
		return ""
	}
	payload, err := json.Marshal(filtered)
	if err != nil {
		return ""
	}
	return string(payload)
}

func (e *Extractor) recordFallback(reason string) {
	e.logger.Warn("field extraction falling back to heuristics", "reason", reason)
	if e.onFallback != nil {
		e.onFallback()
	}
}

// decodeFieldJSON parses model output into raw field values. Models
// sometimes wrap the object in code fences or nest values inside lists;
// both are tolerated.
func decodeFieldJSON(text string) (booking.Fields, error) {
	payload := stripCodeFences(text)
	start := strings.Index(payload, "{")
	end := strings.LastIndex(payload, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("conversation: no JSON object in extraction output")
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(payload[start:end+1]), &decoded); err != nil {
		return nil, fmt.Errorf("conversation: parse extraction output: %w", err)
	}

	fields := booking.Fields{}
	for slot, value := range decoded {
		scalar, ok := booking.CoerceScalar(value)
		if !ok {
			continue
		}
		fields[slot] = scalar
	}
	return fields, nil
}

func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func formatTranscript(window []StoredMessage) string {
	var b strings.Builder
	for _, msg := range window {
		role := "Customer"
		if msg.Role == ChatRoleAssistant {
			role = "Receptionist"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}
