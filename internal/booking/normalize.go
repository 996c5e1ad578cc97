package booking

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	timePattern  = regexp.MustCompile(`(?i)^(\d{1,2})(?:[:.](\d{2}))?\s*(a\.?m\.?|p\.?m\.?)$`)
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
)

// dotlessDomains repairs spoken domains that lost their TLD in transcription.
var dotlessDomains = map[string]string{
	"gmail":   "gmail.com",
	"yahoo":   "yahoo.com",
	"outlook": "outlook.com",
	"hotmail": "hotmail.com",
	"icloud":  "icloud.com",
	"aol":     "aol.com",
}

// NormalizeField canonicalizes a raw extracted value for the given slot.
// It reports false when the value is empty, malformed, or the slot is
// unknown; callers must leave the stored field untouched in that case.
func NormalizeField(slot, raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" || !isKnownSlot(slot) {
		return "", false
	}
	switch slot {
	case SlotCustomerName, SlotServiceType, SlotPreferredStylist, SlotDate:
		return titleCase(value), true
	case SlotTime:
		return normalizeTime(value)
	case SlotEmail:
		return normalizeEmail(value)
	case SlotPhone:
		return normalizePhone(value)
	default:
		return value, true
	}
}

// CoerceScalar flattens a decoded JSON value into a single string.
// Model output occasionally nests a field inside a list or object; the
// first usable scalar wins. Booleans and nulls never coerce.
func CoerceScalar(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		return s, s != ""
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10), true
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case []any:
		for _, item := range val {
			if s, ok := CoerceScalar(item); ok {
				return s, true
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := CoerceScalar(val[k]); ok {
				return s, true
			}
		}
	}
	return "", false
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = capitalizeWord(w)
	}
	return strings.Join(words, " ")
}

func capitalizeWord(w string) string {
	// Hyphenated names keep both halves capitalized.
	if idx := strings.Index(w, "-"); idx > 0 && idx < len(w)-1 {
		return capitalizeWord(w[:idx]) + "-" + capitalizeWord(w[idx+1:])
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

// normalizeTime canonicalizes spoken times to "H:MM AM" form. Times
// without an explicit meridiem are rejected rather than guessed.
func normalizeTime(s string) (string, bool) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 1 || hour > 12 {
		return "", false
	}
	minute := 0
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil || minute > 59 {
			return "", false
		}
	}
	meridiem := "AM"
	if strings.HasPrefix(strings.ToLower(m[3]), "p") {
		meridiem = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, meridiem), true
}

// normalizeEmail repairs addresses dictated over voice, where "at" and
// "dot" arrive as words and the TLD is often dropped entirely.
func normalizeEmail(s string) (string, bool) {
	addr := strings.ToLower(strings.TrimSpace(s))
	addr = strings.Trim(addr, ".,;")
	addr = strings.ReplaceAll(addr, "at the rate", "@")

	if strings.ContainsAny(addr, " \t") {
		var b strings.Builder
		for _, tok := range strings.Fields(addr) {
			switch tok {
			case "at":
				b.WriteString("@")
			case "dot":
				b.WriteString(".")
			default:
				b.WriteString(tok)
			}
		}
		addr = b.String()
	}

	// Spoken addresses frequently yield more than one "@" (a literal
	// "at" inside the local part plus the real separator). The last
	// one wins; earlier segments collapse into the local part.
	sep := strings.LastIndex(addr, "@")
	if sep <= 0 || sep == len(addr)-1 {
		return "", false
	}
	local := strings.ReplaceAll(addr[:sep], "@", "")
	domain := addr[sep+1:]

	if !strings.Contains(domain, ".") {
		if repaired, ok := dotlessDomains[domain]; ok {
			domain = repaired
		} else {
			domain += ".com"
		}
	}

	addr = local + "@" + domain
	if !emailPattern.MatchString(addr) {
		return "", false
	}
	return addr, true
}

func normalizePhone(s string) (string, bool) {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(strings.TrimPrefix(digits, "+")) < 7 {
		return "", false
	}
	return digits, true
}
