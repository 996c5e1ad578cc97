package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepositoryWithDB(mock), mock
}

func sampleAppointment() Appointment {
	return Appointment{
		ID:               "a1b2c3d4-0000-0000-0000-000000000000",
		SessionID:        "session-1",
		CustomerName:     "Jane Doe",
		ServiceType:      "Haircut",
		PreferredStylist: "Riya",
		Date:             "Tomorrow",
		Time:             "2:00 PM",
		Email:            "jane@example.com",
		Phone:            "5551234567",
		Status:           StatusConfirmed,
		ReferenceLink:    "https://meet.google.com/demo-a1b2c3d4",
		CreatedAt:        time.Date(2026, time.August, 27, 12, 0, 0, 0, time.UTC),
	}
}

func TestRepositoryInsert(t *testing.T) {
	repo, mock := newRepoMock(t)
	appt := sampleAppointment()

	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(appt.ID, appt.SessionID, appt.CustomerName, appt.ServiceType,
			appt.PreferredStylist, appt.Date, appt.Time, appt.Email, appt.Phone,
			appt.Status, appt.ReferenceLink, appt.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Insert(context.Background(), appt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryInsertError(t *testing.T) {
	repo, mock := newRepoMock(t)
	appt := sampleAppointment()

	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(appt.ID, appt.SessionID, appt.CustomerName, appt.ServiceType,
			appt.PreferredStylist, appt.Date, appt.Time, appt.Email, appt.Phone,
			appt.Status, appt.ReferenceLink, appt.CreatedAt).
		WillReturnError(errors.New("connection refused"))

	err := repo.Insert(context.Background(), appt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert")
}

func appointmentRows(appts ...Appointment) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{
		"id", "session_id", "customer_name", "service_type", "preferred_stylist",
		"appointment_date", "appointment_time", "email", "phone", "status",
		"reference_link", "created_at",
	})
	for _, a := range appts {
		rows.AddRow(a.ID, a.SessionID, a.CustomerName, a.ServiceType,
			a.PreferredStylist, a.Date, a.Time, a.Email, a.Phone, a.Status,
			a.ReferenceLink, a.CreatedAt)
	}
	return rows
}

func TestRepositoryGet(t *testing.T) {
	repo, mock := newRepoMock(t)
	appt := sampleAppointment()

	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WithArgs(appt.ID).
		WillReturnRows(appointmentRows(appt))

	got, err := repo.Get(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appt, *got)
}

func TestRepositoryGetNotFound(t *testing.T) {
	repo, mock := newRepoMock(t)

	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WithArgs("missing").
		WillReturnRows(appointmentRows())

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryList(t *testing.T) {
	repo, mock := newRepoMock(t)
	first := sampleAppointment()
	second := sampleAppointment()
	second.ID = "b2c3d4e5-0000-0000-0000-000000000000"
	second.CustomerName = "Mark"

	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WithArgs(10).
		WillReturnRows(appointmentRows(first, second))

	appts, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, appts, 2)
	assert.Equal(t, "Mark", appts[1].CustomerName)
}

func TestRepositoryListDefaultLimit(t *testing.T) {
	repo, mock := newRepoMock(t)

	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WithArgs(100).
		WillReturnRows(appointmentRows())

	appts, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, appts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
