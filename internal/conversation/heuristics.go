package conversation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/glossglow/salon-ai-receptionist/internal/booking"
	"github.com/glossglow/salon-ai-receptionist/internal/salon"
)

// Pattern-based extraction used when the model cannot produce usable
// JSON. It only ever adds fields it is confident about; uncertain slots
// stay empty so stored values survive untouched.

var (
	literalEmailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\b`)
	spokenEmailRE  = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+(?:\s+(?:at the rate|at)\s+[a-z0-9._\-]+)+\s+(?:dot|\.)\s*[a-z]{2,}\b`)
	spokenTimeRE   = regexp.MustCompile(`(?i)\b(\d{1,2})(?:[:.](\d{2}))?\s*(a\.?m\.?|p\.?m\.?)\b`)
	phoneRE        = regexp.MustCompile(`\+?\d[\d\s().\-]{6,}\d`)
	numericDateRE  = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`)
	monthDayRE     = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(?:st|nd|rd|th)?\b`)
	dayMonthRE     = regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:of\s+)?(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
	relativeDayRE  = regexp.MustCompile(`(?i)\b(day after tomorrow|tomorrow|today|(?:next\s+)?(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday))\b`)
)

const nameWordPattern = `[\p{L}][\p{L}\p{M}'\-]*`

var namePhrasePattern = nameWordPattern + `(?:\s+` + nameWordPattern + `){0,2}`

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)my name is\s+(` + namePhrasePattern + `)`),
	regexp.MustCompile(`(?i)i'?m\s+(` + namePhrasePattern + `)(?:\s|,|\.|!|$)`),
	regexp.MustCompile(`(?i)i am\s+(` + namePhrasePattern + `)(?:\s|,|\.|!|$)`),
	regexp.MustCompile(`(?i)this is\s+(` + namePhrasePattern + `)`),
	regexp.MustCompile(`(?i)call me\s+(` + namePhrasePattern + `)`),
	regexp.MustCompile(`(?i)name'?s\s+(` + namePhrasePattern + `)`),
}

// serviceAliases maps customer phrasings to canonical service names.
// Ordered by specificity so longer phrases win.
var serviceAliases = []struct {
	pattern string
	name    string
}{
	{"hair coloring", "Hair Coloring"},
	{"hair colour", "Hair Coloring"},
	{"hair color", "Hair Coloring"},
	{"coloring", "Hair Coloring"},
	{"colouring", "Hair Coloring"},
	{"highlights", "Hair Coloring"},
	{"dye my hair", "Hair Coloring"},
	{"dye", "Hair Coloring"},
	{"spa treatment", "Spa Treatment"},
	{"head massage", "Spa Treatment"},
	{"hair spa", "Spa Treatment"},
	{"spa", "Spa Treatment"},
	{"blow dry", "Styling"},
	{"blowout", "Styling"},
	{"styling", "Styling"},
	{"hairstyle", "Styling"},
	{"updo", "Styling"},
	{"hair cut", "Haircut"},
	{"haircut", "Haircut"},
	{"trim", "Haircut"},
	{"cut", "Haircut"},
}

type stylistPattern struct {
	name string
	re   *regexp.Regexp
}

type heuristicExtractor struct {
	profile  salon.Profile
	stylists []stylistPattern
}

func newHeuristicExtractor(profile salon.Profile) heuristicExtractor {
	patterns := make([]stylistPattern, 0, len(profile.Stylists))
	for _, stylist := range profile.Stylists {
		name := strings.ToLower(strings.TrimSpace(stylist.Name))
		if name == "" {
			continue
		}
		patterns = append(patterns, stylistPattern{
			name: stylist.Name,
			re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`),
		})
	}
	return heuristicExtractor{profile: profile, stylists: patterns}
}

// Extract scans the customer's side of the transcript for booking details.
// Returned values are raw and still pass through field normalization.
func (h heuristicExtractor) Extract(history []StoredMessage) booking.Fields {
	lower, original := collectUserText(history)
	if strings.TrimSpace(lower) == "" {
		return booking.Fields{}
	}

	fields := booking.Fields{}

	if name := findName(original); name != "" {
		fields[booking.SlotCustomerName] = name
	}
	if svc := matchServiceAlias(lower); svc != "" {
		fields[booking.SlotServiceType] = svc
	}
	if stylist := h.matchStylist(lower); stylist != "" {
		fields[booking.SlotPreferredStylist] = stylist
	}
	if email := findEmail(lower); email != "" {
		fields[booking.SlotEmail] = email
	}
	if t := spokenTimeRE.FindString(lower); t != "" {
		fields[booking.SlotTime] = t
	}
	if date := findDate(lower); date != "" {
		fields[booking.SlotDate] = date
	}
	if phone := findPhone(lower); phone != "" {
		fields[booking.SlotPhone] = phone
	}

	return fields
}

func collectUserText(history []StoredMessage) (lowercase, original string) {
	var lowerBuilder strings.Builder
	var originalBuilder strings.Builder
	for _, msg := range history {
		if msg.Role != ChatRoleUser {
			continue
		}
		lowerBuilder.WriteString(strings.ToLower(msg.Content))
		lowerBuilder.WriteString(" ")
		originalBuilder.WriteString(msg.Content)
		originalBuilder.WriteString(" ")
	}
	return lowerBuilder.String(), originalBuilder.String()
}

func findName(userText string) string {
	for _, pattern := range namePatterns {
		matches := pattern.FindAllStringSubmatch(userText, -1)
		for _, match := range matches {
			if len(match) < 2 {
				continue
			}
			parts := extractNameParts(match[1])
			if len(parts) > 0 {
				return strings.Join(parts, " ")
			}
		}
	}
	return ""
}

func extractNameParts(raw string) []string {
	words := strings.Fields(strings.TrimSpace(raw))
	nameWords := make([]string, 0, 2)
	for _, word := range words {
		cleaned := strings.Trim(word, ".,!?\"'")
		if cleaned == "" {
			continue
		}
		if !looksLikeNameWord(cleaned) {
			if len(nameWords) > 0 {
				break
			}
			continue
		}
		nameWords = append(nameWords, cleaned)
		if len(nameWords) == 2 {
			break
		}
	}
	return nameWords
}

func looksLikeNameWord(word string) bool {
	count := utf8.RuneCountInString(word)
	if count < 2 || count > 30 {
		return false
	}
	firstRune, _ := utf8.DecodeRuneInString(word)
	if !unicode.IsLetter(firstRune) {
		return false
	}
	return !isCommonWord(strings.ToLower(word))
}

// isCommonWord filters words that follow "i'm" or "my name is" but are
// not actually names.
func isCommonWord(word string) bool {
	common := map[string]bool{
		"the": true, "and": true, "for": true, "not": true, "you": true,
		"here": true, "there": true, "just": true, "like": true, "want": true,
		"need": true, "have": true, "done": true, "good": true, "fine": true,
		"sure": true, "okay": true, "ok": true, "yes": true, "no": true,
		"interested": true, "looking": true, "calling": true, "booking": true,
		"book": true, "trying": true, "hoping": true, "wondering": true,
		"going": true, "coming": true, "new": true, "free": true, "ready": true,
		"available": true, "flexible": true, "open": true, "busy": true,
		"haircut": true, "coloring": true, "styling": true, "spa": true,
		"appointment": true, "tomorrow": true, "today": true,
		"in": true, "on": true, "at": true, "to": true, "so": true,
		"a": true, "an": true, "my": true, "me": true, "it": true, "is": true,
	}
	return common[word]
}

func matchServiceAlias(lower string) string {
	for _, alias := range serviceAliases {
		if strings.Contains(lower, alias.pattern) {
			return alias.name
		}
	}
	return ""
}

func (h heuristicExtractor) matchStylist(lower string) string {
	for _, stylist := range h.stylists {
		if stylist.re.MatchString(lower) {
			return stylist.name
		}
	}
	return ""
}

func findEmail(lower string) string {
	if m := literalEmailRE.FindString(lower); m != "" {
		return m
	}
	return spokenEmailRE.FindString(lower)
}

func findDate(lower string) string {
	if m := relativeDayRE.FindString(lower); m != "" {
		return m
	}
	if m := monthDayRE.FindString(lower); m != "" {
		return m
	}
	if m := dayMonthRE.FindString(lower); m != "" {
		return m
	}
	return numericDateRE.FindString(lower)
}

func findPhone(lower string) string {
	// Avoid mistaking spoken times for phone numbers.
	stripped := spokenTimeRE.ReplaceAllString(lower, " ")
	return phoneRE.FindString(stripped)
}
