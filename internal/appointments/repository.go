package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an appointment id has no row.
var ErrNotFound = errors.New("appointments: not found")

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence for appointments.
type Repository struct {
	db dbtx
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(db dbtx) *Repository {
	return &Repository{db: db}
}

// Insert stores a new appointment row.
func (r *Repository) Insert(ctx context.Context, appt Appointment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO appointments (
			id, session_id, customer_name, service_type, preferred_stylist,
			appointment_date, appointment_time, email, phone, status,
			reference_link, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, appt.ID, appt.SessionID, appt.CustomerName, appt.ServiceType,
		appt.PreferredStylist, appt.Date, appt.Time, appt.Email, appt.Phone,
		appt.Status, appt.ReferenceLink, appt.CreatedAt)
	if err != nil {
		return fmt.Errorf("appointments: insert: %w", err)
	}
	return nil
}

// Get returns one appointment by id.
func (r *Repository) Get(ctx context.Context, id string) (*Appointment, error) {
	var appt Appointment
	err := r.db.QueryRow(ctx, `
		SELECT id, session_id, customer_name, service_type, preferred_stylist,
			   appointment_date, appointment_time, email, phone, status,
			   reference_link, created_at
		FROM appointments
		WHERE id = $1
	`, id).Scan(
		&appt.ID, &appt.SessionID, &appt.CustomerName, &appt.ServiceType,
		&appt.PreferredStylist, &appt.Date, &appt.Time, &appt.Email,
		&appt.Phone, &appt.Status, &appt.ReferenceLink, &appt.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: load: %w", err)
	}
	return &appt, nil
}

// List returns appointments newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, customer_name, service_type, preferred_stylist,
			   appointment_date, appointment_time, email, phone, status,
			   reference_link, created_at
		FROM appointments
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()

	var appointments []Appointment
	for rows.Next() {
		var appt Appointment
		err := rows.Scan(
			&appt.ID, &appt.SessionID, &appt.CustomerName, &appt.ServiceType,
			&appt.PreferredStylist, &appt.Date, &appt.Time, &appt.Email,
			&appt.Phone, &appt.Status, &appt.ReferenceLink, &appt.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		appointments = append(appointments, appt)
	}
	return appointments, rows.Err()
}
