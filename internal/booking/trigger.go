package booking

import "strings"

// confirmationPhrases are the assistant wordings that signal a committed
// booking. Matching is a case-insensitive substring check on the reply.
var confirmationPhrases = []string{
	"confirmed",
	"scheduled",
	"booked",
	"appointment set",
	"i've scheduled",
	"i've booked",
	"all set",
}

// ShouldBook decides whether an assistant reply commits a booking. Both
// conditions must hold: the reply contains a confirmation phrase AND all
// required slots are filled. A confirmation with missing slots is the
// model getting ahead of itself and must not create an appointment.
func ShouldBook(reply string, fields Fields) bool {
	if !containsConfirmation(reply) {
		return false
	}
	return fields.Complete()
}

func containsConfirmation(reply string) bool {
	lower := strings.ToLower(reply)
	for _, phrase := range confirmationPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
