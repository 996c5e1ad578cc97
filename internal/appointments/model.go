package appointments

import "time"

// StatusConfirmed is the only status a committed booking carries today.
// Cancellation and rescheduling flows would add to this set.
const StatusConfirmed = "confirmed"

// Appointment is a committed salon booking.
type Appointment struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"session_id,omitempty"`
	CustomerName     string    `json:"customer_name"`
	ServiceType      string    `json:"service_type"`
	PreferredStylist string    `json:"preferred_stylist,omitempty"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone,omitempty"`
	Status           string    `json:"status"`
	ReferenceLink    string    `json:"reference_link"`
	CreatedAt        time.Time `json:"created_at"`
}
