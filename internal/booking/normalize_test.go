package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFieldTitleCase(t *testing.T) {
	tests := []struct {
		slot string
		in   string
		want string
	}{
		{SlotCustomerName, "john smith", "John Smith"},
		{SlotCustomerName, "  MARY-JANE o'brien  ", "Mary-Jane O'brien"},
		{SlotServiceType, "hair coloring", "Hair Coloring"},
		{SlotServiceType, "HAIRCUT", "Haircut"},
		{SlotPreferredStylist, "riya", "Riya"},
		{SlotDate, "tomorrow", "Tomorrow"},
		{SlotDate, "next friday", "Next Friday"},
	}
	for _, tt := range tests {
		got, ok := NormalizeField(tt.slot, tt.in)
		require.True(t, ok, "slot %s value %q", tt.slot, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestNormalizeFieldTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"11 am", "11:00 AM", true},
		{"11am", "11:00 AM", true},
		{"2:30 pm", "2:30 PM", true},
		{"2:30PM", "2:30 PM", true},
		{"12.15 p.m.", "12:15 PM", true},
		{"09:05 am", "9:05 AM", true},
		{"eleven", "", false},
		{"11", "", false},
		{"13:00 pm", "", false},
		{"2:75 pm", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeField(SlotTime, tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestNormalizeFieldEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"shresth at the rate 4236 at gmail dot com", "shresth4236@gmail.com", true},
		{"jane.doe@example.com", "jane.doe@example.com", true},
		{"Jane.Doe@Example.COM", "jane.doe@example.com", true},
		{"john at yahoo dot com", "john@yahoo.com", true},
		{"sam@gmail", "sam@gmail.com", true},
		{"sam@icloud", "sam@icloud.com", true},
		{"sam@mycompany", "sam@mycompany.com", true},
		{"mary at outlook", "mary@outlook.com", true},
		{"no address here", "", false},
		{"@gmail.com", "", false},
		{"user@", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeField(SlotEmail, tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestNormalizeFieldPhone(t *testing.T) {
	got, ok := NormalizeField(SlotPhone, "+1 (555) 123-4567")
	require.True(t, ok)
	assert.Equal(t, "+15551234567", got)

	_, ok = NormalizeField(SlotPhone, "call me")
	assert.False(t, ok)
}

func TestNormalizeFieldRejectsUnknownSlotAndEmpty(t *testing.T) {
	_, ok := NormalizeField("favorite_color", "blue")
	assert.False(t, ok)

	_, ok = NormalizeField(SlotCustomerName, "   ")
	assert.False(t, ok)
}

func TestCoerceScalar(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
		ok   bool
	}{
		{"string", "haircut", "haircut", true},
		{"blank string", "  ", "", false},
		{"integer float", float64(11), "11", true},
		{"fractional float", 2.5, "2.5", true},
		{"list takes first", []any{"riya", "maya"}, "riya", true},
		{"list skips empties", []any{"", "maya"}, "maya", true},
		{"nested map", map[string]any{"value": "tomorrow"}, "tomorrow", true},
		{"bool rejected", true, "", false},
		{"nil rejected", nil, "", false},
		{"empty list", []any{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceScalar(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
