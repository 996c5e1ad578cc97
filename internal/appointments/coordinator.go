package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/glossglow/salon-ai-receptionist/internal/booking"
	"github.com/glossglow/salon-ai-receptionist/internal/notify"
	"github.com/glossglow/salon-ai-receptionist/internal/observability/metrics"
	"github.com/glossglow/salon-ai-receptionist/pkg/logging"
)

// ErrIncompleteDetails is returned when a booking is attempted without
// every required field. The trigger check upstream should prevent this;
// the coordinator re-validates anyway because it can also be reached
// from the REST API.
var ErrIncompleteDetails = errors.New("appointments: incomplete booking details")

var bookTracer = otel.Tracer("salon.internal.appointments")

type apptStore interface {
	Insert(ctx context.Context, appt Appointment) error
	Get(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, limit int) ([]Appointment, error)
}

// Coordinator commits bookings: it validates the gathered fields,
// persists the appointment, and sends the confirmation email.
type Coordinator struct {
	store   apptStore
	mailer  *notify.ConfirmationMailer
	metrics *metrics.ReceptionistMetrics
	baseURL string
	logger  *logging.Logger
}

// NewCoordinator builds a booking coordinator. The mailer may be nil
// when email is disabled.
func NewCoordinator(store apptStore, mailer *notify.ConfirmationMailer, m *metrics.ReceptionistMetrics, logger *logging.Logger) *Coordinator {
	if store == nil {
		panic("appointments: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Coordinator{
		store:   store,
		mailer:  mailer,
		metrics: m,
		logger:  logger,
	}
}

// Book validates the fields and commits the appointment. The email is
// best effort: a send failure is logged but never unwinds a booking
// that already persisted.
func (c *Coordinator) Book(ctx context.Context, sessionID string, fields booking.Fields) (*Appointment, error) {
	ctx, span := bookTracer.Start(ctx, "appointments.book", trace.WithAttributes(
		attribute.String("salon.session_id", sessionID),
	))
	defer span.End()

	if missing := fields.Missing(); len(missing) > 0 {
		c.observe("rejected")
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteDetails, strings.Join(missing, ", "))
	}

	id := uuid.NewString()
	appt := Appointment{
		ID:               id,
		SessionID:        sessionID,
		CustomerName:     fields[booking.SlotCustomerName],
		ServiceType:      fields[booking.SlotServiceType],
		PreferredStylist: fields[booking.SlotPreferredStylist],
		Date:             fields[booking.SlotDate],
		Time:             fields[booking.SlotTime],
		Email:            fields[booking.SlotEmail],
		Phone:            fields[booking.SlotPhone],
		Status:           StatusConfirmed,
		ReferenceLink:    referenceLink(id),
		CreatedAt:        time.Now().UTC(),
	}

	if err := c.store.Insert(ctx, appt); err != nil {
		span.RecordError(err)
		c.observe("failed")
		return nil, err
	}
	c.observe("confirmed")

	c.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"session_id", sessionID,
		"service", appt.ServiceType,
		"date", appt.Date,
		"time", appt.Time,
	)

	if err := c.mailer.SendConfirmation(ctx, notify.AppointmentDetails{
		ID:               appt.ID,
		CustomerName:     appt.CustomerName,
		ServiceType:      appt.ServiceType,
		PreferredStylist: appt.PreferredStylist,
		Date:             appt.Date,
		Time:             appt.Time,
		Email:            appt.Email,
		ReferenceLink:    appt.ReferenceLink,
	}); err != nil {
		c.logger.Error("confirmation email failed", "appointment_id", appt.ID, "error", err)
	}

	return &appt, nil
}

// Get returns one appointment.
func (c *Coordinator) Get(ctx context.Context, id string) (*Appointment, error) {
	return c.store.Get(ctx, id)
}

// List returns recent appointments.
func (c *Coordinator) List(ctx context.Context, limit int) ([]Appointment, error) {
	return c.store.List(ctx, limit)
}

func (c *Coordinator) observe(status string) {
	c.metrics.ObserveBooking(status)
}

// referenceLink builds the link included in confirmations. The demo
// meeting room uses the first id segment so links stay short.
func referenceLink(id string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return "https://meet.google.com/demo-" + short
}
