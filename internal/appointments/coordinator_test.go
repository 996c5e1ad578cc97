package appointments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossglow/salon-ai-receptionist/internal/booking"
	"github.com/glossglow/salon-ai-receptionist/internal/notify"
	"github.com/glossglow/salon-ai-receptionist/pkg/logging"
)

type memoryStore struct {
	inserted  []Appointment
	insertErr error
}

func (m *memoryStore) Insert(_ context.Context, appt Appointment) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, appt)
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (*Appointment, error) {
	for i := range m.inserted {
		if m.inserted[i].ID == id {
			return &m.inserted[i], nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryStore) List(_ context.Context, limit int) ([]Appointment, error) {
	if limit > 0 && limit < len(m.inserted) {
		return m.inserted[:limit], nil
	}
	return m.inserted, nil
}

type recordingSender struct {
	sent []notify.EmailMessage
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg notify.EmailMessage) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func completeFields() booking.Fields {
	return booking.Fields{
		booking.SlotCustomerName:     "Jane Doe",
		booking.SlotServiceType:      "Haircut",
		booking.SlotPreferredStylist: "Riya",
		booking.SlotDate:             "Tomorrow",
		booking.SlotTime:             "2:00 PM",
		booking.SlotEmail:            "jane@example.com",
	}
}

func TestCoordinatorBook(t *testing.T) {
	store := &memoryStore{}
	sender := &recordingSender{}
	mailer := notify.NewConfirmationMailer(sender, "test", "Gloss & Glow Hair Salon", nil, logging.Default())
	c := NewCoordinator(store, mailer, nil, logging.Default())

	appt, err := c.Book(context.Background(), "session-1", completeFields())
	require.NoError(t, err)
	require.NotNil(t, appt)

	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, "session-1", appt.SessionID)
	assert.Equal(t, "Jane Doe", appt.CustomerName)
	assert.Equal(t, StatusConfirmed, appt.Status)
	assert.Equal(t, "https://meet.google.com/demo-"+appt.ID[:8], appt.ReferenceLink)
	assert.False(t, appt.CreatedAt.IsZero())

	require.Len(t, store.inserted, 1)
	assert.Equal(t, appt.ID, store.inserted[0].ID)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "jane@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Body, appt.ID)
}

func TestCoordinatorBookRejectsIncompleteFields(t *testing.T) {
	store := &memoryStore{}
	c := NewCoordinator(store, nil, nil, logging.Default())

	fields := completeFields()
	delete(fields, booking.SlotEmail)

	_, err := c.Book(context.Background(), "session-1", fields)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompleteDetails)
	assert.Contains(t, err.Error(), booking.SlotEmail)
	assert.Empty(t, store.inserted)
}

func TestCoordinatorBookInsertFailure(t *testing.T) {
	store := &memoryStore{insertErr: errors.New("db down")}
	c := NewCoordinator(store, nil, nil, logging.Default())

	appt, err := c.Book(context.Background(), "session-1", completeFields())
	require.Error(t, err)
	assert.Nil(t, appt)
}

func TestCoordinatorBookEmailFailureDoesNotUnwind(t *testing.T) {
	store := &memoryStore{}
	sender := &recordingSender{err: errors.New("smtp down")}
	mailer := notify.NewConfirmationMailer(sender, "", "", nil, logging.Default())
	c := NewCoordinator(store, mailer, nil, logging.Default())

	appt, err := c.Book(context.Background(), "session-1", completeFields())
	require.NoError(t, err)
	require.NotNil(t, appt)
	assert.Len(t, store.inserted, 1)
}

func TestCoordinatorBookWithoutMailer(t *testing.T) {
	store := &memoryStore{}
	c := NewCoordinator(store, nil, nil, logging.Default())

	appt, err := c.Book(context.Background(), "session-1", completeFields())
	require.NoError(t, err)
	require.NotNil(t, appt)
}

func TestCoordinatorGetAndList(t *testing.T) {
	store := &memoryStore{}
	c := NewCoordinator(store, nil, nil, logging.Default())

	booked, err := c.Book(context.Background(), "session-1", completeFields())
	require.NoError(t, err)

	got, err := c.Get(context.Background(), booked.ID)
	require.NoError(t, err)
	assert.Equal(t, booked.ID, got.ID)

	list, err := c.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReferenceLink(t *testing.T) {
	assert.Equal(t, "https://meet.google.com/demo-12345678", referenceLink("12345678-abcd"))
	assert.Equal(t, "https://meet.google.com/demo-short", referenceLink("short"))
}
