package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glossglow/salon-ai-receptionist/internal/booking"
	"github.com/glossglow/salon-ai-receptionist/internal/salon"
)

func testHeuristics(t *testing.T) heuristicExtractor {
	t.Helper()
	return newHeuristicExtractor(*salon.DefaultProfile(""))
}

func userTurn(content string) StoredMessage {
	return StoredMessage{Role: ChatRoleUser, Content: content}
}

func TestHeuristicExtractFullUtterance(t *testing.T) {
	h := testHeuristics(t)

	fields := h.Extract([]StoredMessage{
		userTurn("my name is john smith, i want a haircut with riya at 11 am tomorrow"),
	})

	assert.Equal(t, "john smith", fields[booking.SlotCustomerName])
	assert.Equal(t, "Haircut", fields[booking.SlotServiceType])
	assert.Equal(t, "Riya", fields[booking.SlotPreferredStylist])
	assert.Equal(t, "11 am", fields[booking.SlotTime])
	assert.Equal(t, "tomorrow", fields[booking.SlotDate])
}

func TestHeuristicExtractIgnoresAssistantTurns(t *testing.T) {
	h := testHeuristics(t)

	fields := h.Extract([]StoredMessage{
		{Role: ChatRoleAssistant, Content: "Would you like a spa treatment with Sarah tomorrow?"},
		userTurn("not sure yet"),
	})

	assert.Empty(t, fields[booking.SlotServiceType])
	assert.Empty(t, fields[booking.SlotPreferredStylist])
	assert.Empty(t, fields[booking.SlotDate])
}

func TestHeuristicExtractNamePhrases(t *testing.T) {
	h := testHeuristics(t)

	tests := []struct {
		utterance string
		want      string
	}{
		{"Hi, I'm Priya Sharma and I'd like an appointment", "Priya Sharma"},
		{"this is Mark", "Mark"},
		{"call me Anna, thanks", "Anna"},
		{"i am interested in booking", ""},
		{"i'm looking for a trim", ""},
	}
	for _, tt := range tests {
		fields := h.Extract([]StoredMessage{userTurn(tt.utterance)})
		assert.Equal(t, tt.want, fields[booking.SlotCustomerName], "utterance: %q", tt.utterance)
	}
}

func TestHeuristicExtractServiceAliases(t *testing.T) {
	h := testHeuristics(t)

	tests := []struct {
		utterance string
		want      string
	}{
		{"i want to dye my hair", "Hair Coloring"},
		{"can i get highlights", "Hair Coloring"},
		{"book me a blowout", "Styling"},
		{"just a quick trim", "Haircut"},
		{"a head massage would be nice", "Spa Treatment"},
	}
	for _, tt := range tests {
		fields := h.Extract([]StoredMessage{userTurn(tt.utterance)})
		assert.Equal(t, tt.want, fields[booking.SlotServiceType], "utterance: %q", tt.utterance)
	}
}

func TestHeuristicExtractSpokenEmail(t *testing.T) {
	h := testHeuristics(t)

	fields := h.Extract([]StoredMessage{
		userTurn("sure, it's shresth at the rate 4236 at gmail dot com"),
	})
	assert.Equal(t, "shresth at the rate 4236 at gmail dot com", fields[booking.SlotEmail])
}

func TestHeuristicExtractLiteralEmail(t *testing.T) {
	h := testHeuristics(t)

	fields := h.Extract([]StoredMessage{userTurn("email is Jane.Doe@example.org")})
	assert.Equal(t, "jane.doe@example.org", fields[booking.SlotEmail])
}

func TestHeuristicExtractTimeIsNotEmail(t *testing.T) {
	h := testHeuristics(t)

	// "riya at 11 am" must never be read as a spoken email address.
	fields := h.Extract([]StoredMessage{userTurn("haircut with riya at 11 am")})
	assert.Empty(t, fields[booking.SlotEmail])
	assert.Equal(t, "11 am", fields[booking.SlotTime])
}

func TestHeuristicExtractDates(t *testing.T) {
	h := testHeuristics(t)

	tests := []struct {
		utterance string
		want      string
	}{
		{"can you do next friday", "next friday"},
		{"how about march 14th", "march 14th"},
		{"the 3rd of june works", "3rd of june"},
		{"maybe 12/24", "12/24"},
		{"day after tomorrow is fine", "day after tomorrow"},
	}
	for _, tt := range tests {
		fields := h.Extract([]StoredMessage{userTurn(tt.utterance)})
		assert.Equal(t, tt.want, fields[booking.SlotDate], "utterance: %q", tt.utterance)
	}
}

func TestHeuristicExtractPhoneSkipsTimes(t *testing.T) {
	h := testHeuristics(t)

	fields := h.Extract([]StoredMessage{userTurn("come at 10:30 am, my number is 555-123-4567")})
	assert.Equal(t, "555-123-4567", fields[booking.SlotPhone])

	fields = h.Extract([]StoredMessage{userTurn("see you at 10:30 am then")})
	assert.Empty(t, fields[booking.SlotPhone])
}

func TestHeuristicExtractEmptyHistory(t *testing.T) {
	h := testHeuristics(t)

	assert.Empty(t, h.Extract(nil))
	assert.Empty(t, h.Extract([]StoredMessage{userTurn("   ")}))
}
