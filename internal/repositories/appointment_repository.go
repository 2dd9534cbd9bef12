package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stylemate/platform/internal/availability"
	"github.com/stylemate/platform/internal/models"
	"github.com/stylemate/platform/internal/utils"
)

// ErrSlotTaken reports a reschedule target that another booked appointment
// already occupies. Checked and raised inside the reschedule transaction.
var ErrSlotTaken = errors.New("slot already booked")

// BookedSlot is one occupied interval on a salon's calendar.
type BookedSlot struct {
	Time        string
	DurationMin int
}

type AppointmentRepository interface {
	GetByID(ctx context.Context, id, customerID uuid.UUID) (*models.Appointment, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, scope string) ([]models.Appointment, error)
	ListBookedSlots(ctx context.Context, salonID uuid.UUID, staffID *uuid.UUID, date string) ([]BookedSlot, error)
	GetSalonHours(ctx context.Context, salonID uuid.UUID) (*models.SalonHours, error)
	GetService(ctx context.Context, serviceID uuid.UUID) (*models.SalonService, error)
	Reschedule(ctx context.Context, id, customerID uuid.UUID, date, bookingTime string) (*models.Appointment, error)
	Cancel(ctx context.Context, id, customerID uuid.UUID) error
}

type appointmentRepository struct {
	DB *sql.DB
}

func NewAppointmentRepo(db *sql.DB) AppointmentRepository {
	return &appointmentRepository{DB: db}
}

// booking_date / booking_time are DATE and TIME columns; they travel as
// "YYYY-MM-DD" / "HH:MM" strings everywhere above the repository.
const appointmentColumns = `
	a.id, a.salon_id, a.service_id, s.name, a.staff_id, st.name,
	to_char(a.booking_date, 'YYYY-MM-DD'), to_char(a.booking_time, 'HH24:MI'),
	a.duration_minutes, a.status, a.customer_id, a.created_at, a.updated_at
`

func (r *appointmentRepository) GetByID(ctx context.Context, id, customerID uuid.UUID) (*models.Appointment, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		JOIN salon_services s ON s.id = a.service_id
		LEFT JOIN staff st ON st.id = a.staff_id
		WHERE a.id = $1 AND a.customer_id = $2
	`

	return scanAppointmentRow(r.DB.QueryRowContext(dbCtx, query, id, customerID))
}

func (r *appointmentRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, scope string) ([]models.Appointment, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	// Upcoming keeps only live bookings from today on; history is everything
	// else, newest first.
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		JOIN salon_services s ON s.id = a.service_id
		LEFT JOIN staff st ON st.id = a.staff_id
		WHERE a.customer_id = $1
		  AND a.status = 'booked'
		  AND a.booking_date >= CURRENT_DATE
		ORDER BY a.booking_date, a.booking_time
	`

	if scope == models.AppointmentScopeHistory {
		query = `
			SELECT ` + appointmentColumns + `
			FROM appointments a
			JOIN salon_services s ON s.id = a.service_id
			LEFT JOIN staff st ON st.id = a.staff_id
			WHERE a.customer_id = $1
			  AND (a.status = 'cancelled' OR a.booking_date < CURRENT_DATE)
			ORDER BY a.booking_date DESC, a.booking_time DESC
		`
	}

	rows, err := r.DB.QueryContext(dbCtx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("querying appointments: %w", err)
	}
	defer rows.Close()

	var appts []models.Appointment

	for rows.Next() {
		appt, err := scanAppointmentRow(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *appt)
	}

	return appts, rows.Err()
}

func (r *appointmentRepository) ListBookedSlots(ctx context.Context, salonID uuid.UUID, staffID *uuid.UUID, date string) ([]BookedSlot, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT to_char(booking_time, 'HH24:MI'), duration_minutes
		FROM appointments
		WHERE salon_id = $1
		  AND booking_date = $2
		  AND status = 'booked'
		  AND ($3::uuid IS NULL OR staff_id = $3)
	`

	rows, err := r.DB.QueryContext(dbCtx, query, salonID, date, staffID)
	if err != nil {
		return nil, fmt.Errorf("querying booked slots: %w", err)
	}
	defer rows.Close()

	var booked []BookedSlot

	for rows.Next() {
		var b BookedSlot
		if err := rows.Scan(&b.Time, &b.DurationMin); err != nil {
			return nil, fmt.Errorf("scanning booked slot: %w", err)
		}
		booked = append(booked, b)
	}

	return booked, rows.Err()
}

func (r *appointmentRepository) GetSalonHours(ctx context.Context, salonID uuid.UUID) (*models.SalonHours, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT to_char(opens_at, 'HH24:MI'), to_char(closes_at, 'HH24:MI') FROM salons WHERE id = $1`

	hours := &models.SalonHours{}

	err := r.DB.QueryRowContext(dbCtx, query, salonID).Scan(&hours.OpensAt, &hours.ClosesAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying salon hours: %w", err)
	}

	return hours, nil
}

func (r *appointmentRepository) GetService(ctx context.Context, serviceID uuid.UUID) (*models.SalonService, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT id, name, duration_minutes FROM salon_services WHERE id = $1`

	svc := &models.SalonService{}

	err := r.DB.QueryRowContext(dbCtx, query, serviceID).Scan(&svc.ID, &svc.Name, &svc.DurationMin)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying salon service: %w", err)
	}

	return svc, nil
}

// Reschedule moves the appointment to (date, bookingTime) in one transaction:
// the row is locked, the target interval re-checked against every other booked
// appointment on that calendar, and only then updated. Returns ErrSlotTaken
// when the target overlaps an existing booking.
func (r *appointmentRepository) Reschedule(ctx context.Context, id, customerID uuid.UUID, date, bookingTime string) (*models.Appointment, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var salonID uuid.UUID
	var staffID *uuid.UUID
	var durationMin int

	err = tx.QueryRowContext(dbCtx, `
		SELECT salon_id, staff_id, duration_minutes
		FROM appointments
		WHERE id = $1 AND customer_id = $2 AND status = 'booked'
		FOR UPDATE
	`, id, customerID).Scan(&salonID, &staffID, &durationMin)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("locking appointment: %w", err)
	}

	rows, err := tx.QueryContext(dbCtx, `
		SELECT to_char(booking_time, 'HH24:MI'), duration_minutes
		FROM appointments
		WHERE salon_id = $1
		  AND booking_date = $2
		  AND status = 'booked'
		  AND id <> $3
		  AND ($4::uuid IS NULL OR staff_id = $4)
	`, salonID, date, id, staffID)
	if err != nil {
		return nil, fmt.Errorf("querying conflicting bookings: %w", err)
	}

	target, err := availability.MinutesOfDay(bookingTime)
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("parsing booking time: %w", err)
	}

	for rows.Next() {
		var bookedTime string
		var bookedDur int

		if err := rows.Scan(&bookedTime, &bookedDur); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning conflicting booking: %w", err)
		}

		booked, err := availability.MinutesOfDay(bookedTime)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("parsing booked time: %w", err)
		}

		if target < booked+bookedDur && booked < target+durationMin {
			rows.Close()
			return nil, ErrSlotTaken
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	_, err = tx.ExecContext(dbCtx, `
		UPDATE appointments
		SET booking_date = $1, booking_time = $2, updated_at = NOW()
		WHERE id = $3
	`, date, bookingTime, id)
	if err != nil {
		return nil, fmt.Errorf("updating appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing reschedule: %w", err)
	}

	return r.GetByID(ctx, id, customerID)
}

func (r *appointmentRepository) Cancel(ctx context.Context, id, customerID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `
		UPDATE appointments
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND customer_id = $2 AND status = 'booked'
	`, id, customerID)
	if err != nil {
		return fmt.Errorf("cancelling appointment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointmentRow(row rowScanner) (*models.Appointment, error) {
	appt := &models.Appointment{}

	err := row.Scan(
		&appt.ID, &appt.SalonID, &appt.ServiceID, &appt.ServiceName,
		&appt.StaffID, &appt.StaffName, &appt.BookingDate, &appt.BookingTime,
		&appt.DurationMin, &appt.Status, &appt.CustomerID,
		&appt.CreatedAt, &appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return appt, nil
}
