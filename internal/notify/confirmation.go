package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/glossglow/salon-ai-receptionist/internal/observability/metrics"
	"github.com/glossglow/salon-ai-receptionist/pkg/logging"
)

// AppointmentDetails carries everything the confirmation email needs.
type AppointmentDetails struct {
	ID               string
	CustomerName     string
	ServiceType      string
	PreferredStylist string
	Date             string
	Time             string
	Email            string
	ReferenceLink    string
}

// ConfirmationMailer formats and sends appointment confirmation emails.
type ConfirmationMailer struct {
	sender    EmailSender
	provider  string
	salonName string
	metrics   *metrics.ReceptionistMetrics
	logger    *logging.Logger
}

// NewConfirmationMailer creates a confirmation mailer. A nil sender
// disables sending entirely. provider labels the notification metrics.
func NewConfirmationMailer(sender EmailSender, provider, salonName string, m *metrics.ReceptionistMetrics, logger *logging.Logger) *ConfirmationMailer {
	if provider == "" {
		provider = "stub"
	}
	if salonName == "" {
		salonName = "Gloss & Glow Hair Salon"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ConfirmationMailer{
		sender:    sender,
		provider:  provider,
		salonName: salonName,
		metrics:   m,
		logger:    logger,
	}
}

// SendConfirmation emails the customer their booking details.
func (m *ConfirmationMailer) SendConfirmation(ctx context.Context, appt AppointmentDetails) error {
	if m == nil || m.sender == nil {
		return nil
	}
	if strings.TrimSpace(appt.Email) == "" {
		return fmt.Errorf("notify: confirmation requires a recipient email")
	}

	msg := EmailMessage{
		To:      appt.Email,
		ToName:  appt.CustomerName,
		Subject: fmt.Sprintf("Appointment Confirmation - %s", m.salonName),
		Body:    m.plainBody(appt),
		HTML:    m.htmlBody(appt),
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		m.metrics.ObserveNotification(m.provider, "failed")
		return err
	}
	m.metrics.ObserveNotification(m.provider, "sent")

	m.logger.Info("confirmation email sent",
		"appointment_id", appt.ID,
		"to", appt.Email,
	)
	return nil
}

func (m *ConfirmationMailer) plainBody(appt AppointmentDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", appt.CustomerName)
	fmt.Fprintf(&b, "Your appointment at %s is confirmed!\n\n", m.salonName)
	fmt.Fprintf(&b, "Service: %s\n", appt.ServiceType)
	if appt.PreferredStylist != "" {
		fmt.Fprintf(&b, "Stylist: %s\n", appt.PreferredStylist)
	}
	fmt.Fprintf(&b, "Date: %s\n", appt.Date)
	fmt.Fprintf(&b, "Time: %s\n", appt.Time)
	fmt.Fprintf(&b, "Booking reference: %s\n", appt.ID)
	if appt.ReferenceLink != "" {
		fmt.Fprintf(&b, "Appointment link: %s\n", appt.ReferenceLink)
	}
	b.WriteString("\nWe look forward to seeing you!\n\n")
	fmt.Fprintf(&b, "%s\n", m.salonName)
	return b.String()
}

func (m *ConfirmationMailer) htmlBody(appt AppointmentDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Dear %s,</p>", appt.CustomerName)
	fmt.Fprintf(&b, "<p>Your appointment at <strong>%s</strong> is confirmed!</p>", m.salonName)
	b.WriteString("<ul>")
	fmt.Fprintf(&b, "<li><strong>Service:</strong> %s</li>", appt.ServiceType)
	if appt.PreferredStylist != "" {
		fmt.Fprintf(&b, "<li><strong>Stylist:</strong> %s</li>", appt.PreferredStylist)
	}
	fmt.Fprintf(&b, "<li><strong>Date:</strong> %s</li>", appt.Date)
	fmt.Fprintf(&b, "<li><strong>Time:</strong> %s</li>", appt.Time)
	fmt.Fprintf(&b, "<li><strong>Booking reference:</strong> %s</li>", appt.ID)
	b.WriteString("</ul>")
	if appt.ReferenceLink != "" {
		fmt.Fprintf(&b, `<p><a href="%s">View your appointment</a></p>`, appt.ReferenceLink)
	}
	fmt.Fprintf(&b, "<p>We look forward to seeing you!<br>%s</p>", m.salonName)
	return b.String()
}
