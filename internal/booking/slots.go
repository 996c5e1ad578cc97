package booking

import "strings"

// Slot names of the booking record under construction across turns.
const (
	SlotCustomerName     = "customer_name"
	SlotServiceType      = "service_type"
	SlotPreferredStylist = "preferred_stylist"
	SlotDate             = "date"
	SlotTime             = "time"
	SlotEmail            = "email"
	SlotPhone            = "phone"
)

// AllSlots lists every known slot.
var AllSlots = []string{
	SlotCustomerName,
	SlotServiceType,
	SlotPreferredStylist,
	SlotDate,
	SlotTime,
	SlotEmail,
	SlotPhone,
}

// RequiredSlots must all be filled before a booking may be committed.
// preferred_stylist and phone are never required.
var RequiredSlots = []string{
	SlotCustomerName,
	SlotServiceType,
	SlotEmail,
	SlotDate,
	SlotTime,
}

// Fields maps slot names to normalized values.
type Fields map[string]string

// Missing returns the required slots that have no non-empty value.
func (f Fields) Missing() []string {
	var missing []string
	for _, slot := range RequiredSlots {
		if strings.TrimSpace(f[slot]) == "" {
			missing = append(missing, slot)
		}
	}
	return missing
}

// Complete reports whether every required slot holds a non-empty value.
func (f Fields) Complete() bool {
	return len(f.Missing()) == 0
}

// Clone returns a shallow copy so callers can hand out read-only views.
func (f Fields) Clone() Fields {
	if f == nil {
		return Fields{}
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func isKnownSlot(slot string) bool {
	for _, s := range AllSlots {
		if s == slot {
			return true
		}
	}
	return false
}
