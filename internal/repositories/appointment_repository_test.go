package repository_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylemate/platform/internal/models"
	repository "github.com/stylemate/platform/internal/repositories"
)

func appointmentRows(id, salonID, serviceID, customerID uuid.UUID, date, bookingTime string) *sqlmock.Rows {
	now := time.Now()

	return sqlmock.NewRows([]string{
		"id", "salon_id", "service_id", "name", "staff_id", "staff_name",
		"booking_date", "booking_time", "duration_minutes", "status",
		"customer_id", "created_at", "updated_at",
	}).AddRow(id, salonID, serviceID, "Haircut", nil, nil,
		date, bookingTime, 60, "booked", customerID, now, now)
}

func TestAppointmentRepository(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewAppointmentRepo(db)
	ctx := t.Context()

	customerID := uuid.New()
	salonID := uuid.New()
	serviceID := uuid.New()

	t.Run("GetByID", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			// Arrange
			id := uuid.New()
			mock.ExpectQuery(`SELECT (.+) FROM appointments a JOIN salon_services s`).
				WithArgs(id, customerID).
				WillReturnRows(appointmentRows(id, salonID, serviceID, customerID, "2030-04-01", "10:00"))

			// Act
			appt, err := repo.GetByID(ctx, id, customerID)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, "2030-04-01", appt.BookingDate)
			assert.Equal(t, "10:00", appt.BookingTime)
			assert.Equal(t, models.AppointmentStatusBooked, appt.Status)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("NotFound", func(t *testing.T) {
			// Arrange
			id := uuid.New()
			mock.ExpectQuery(`SELECT (.+) FROM appointments a JOIN salon_services s`).
				WithArgs(id, customerID).
				WillReturnError(sql.ErrNoRows)

			// Act
			appt, err := repo.GetByID(ctx, id, customerID)

			// Assert
			assert.ErrorIs(t, err, sql.ErrNoRows)
			assert.Nil(t, appt)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("ListBookedSlots", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`SELECT to_char\(booking_time, 'HH24:MI'\), duration_minutes FROM appointments`).
			WithArgs(salonID, "2030-04-01", nil).
			WillReturnRows(sqlmock.NewRows([]string{"booking_time", "duration_minutes"}).
				AddRow("10:00", 60).
				AddRow("13:30", 30))

		// Act
		booked, err := repo.ListBookedSlots(ctx, salonID, nil, "2030-04-01")

		// Assert
		require.NoError(t, err)
		require.Len(t, booked, 2)
		assert.Equal(t, repository.BookedSlot{Time: "10:00", DurationMin: 60}, booked[0])
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetSalonHours", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`SELECT to_char\(opens_at, 'HH24:MI'\), to_char\(closes_at, 'HH24:MI'\) FROM salons`).
			WithArgs(salonID).
			WillReturnRows(sqlmock.NewRows([]string{"opens_at", "closes_at"}).AddRow("09:00", "18:00"))

		// Act
		hours, err := repo.GetSalonHours(ctx, salonID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "09:00", hours.OpensAt)
		assert.Equal(t, "18:00", hours.ClosesAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Reschedule", func(t *testing.T) {
		id := uuid.New()

		t.Run("Success", func(t *testing.T) {
			// Arrange: lock the row, find no overlapping booking, update,
			// commit, then re-read the full appointment.
			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT salon_id, staff_id, duration_minutes FROM appointments`).
				WithArgs(id, customerID).
				WillReturnRows(sqlmock.NewRows([]string{"salon_id", "staff_id", "duration_minutes"}).
					AddRow(salonID, nil, 60))
			mock.ExpectQuery(`SELECT to_char\(booking_time, 'HH24:MI'\), duration_minutes FROM appointments`).
				WithArgs(salonID, "2030-04-01", id, nil).
				WillReturnRows(sqlmock.NewRows([]string{"booking_time", "duration_minutes"}))
			mock.ExpectExec(`UPDATE appointments SET booking_date`).
				WithArgs("2030-04-01", "10:00", id).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()
			mock.ExpectQuery(`SELECT (.+) FROM appointments a JOIN salon_services s`).
				WithArgs(id, customerID).
				WillReturnRows(appointmentRows(id, salonID, serviceID, customerID, "2030-04-01", "10:00"))

			// Act
			appt, err := repo.Reschedule(ctx, id, customerID, "2030-04-01", "10:00")

			// Assert
			require.NoError(t, err)
			assert.Equal(t, "2030-04-01", appt.BookingDate)
			assert.Equal(t, "10:00", appt.BookingTime)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("SlotTaken", func(t *testing.T) {
			// Arrange: another booked appointment overlaps the target slot.
			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT salon_id, staff_id, duration_minutes FROM appointments`).
				WithArgs(id, customerID).
				WillReturnRows(sqlmock.NewRows([]string{"salon_id", "staff_id", "duration_minutes"}).
					AddRow(salonID, nil, 60))
			mock.ExpectQuery(`SELECT to_char\(booking_time, 'HH24:MI'\), duration_minutes FROM appointments`).
				WithArgs(salonID, "2030-04-01", id, nil).
				WillReturnRows(sqlmock.NewRows([]string{"booking_time", "duration_minutes"}).
					AddRow("10:30", 60))
			mock.ExpectRollback()

			// Act
			appt, err := repo.Reschedule(ctx, id, customerID, "2030-04-01", "10:00")

			// Assert
			assert.ErrorIs(t, err, repository.ErrSlotTaken)
			assert.Nil(t, appt)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("NotFound", func(t *testing.T) {
			// Arrange
			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT salon_id, staff_id, duration_minutes FROM appointments`).
				WithArgs(id, customerID).
				WillReturnError(sql.ErrNoRows)
			mock.ExpectRollback()

			// Act
			appt, err := repo.Reschedule(ctx, id, customerID, "2030-04-01", "10:00")

			// Assert
			assert.ErrorIs(t, err, sql.ErrNoRows)
			assert.Nil(t, appt)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("Cancel", func(t *testing.T) {
		id := uuid.New()

		t.Run("Success", func(t *testing.T) {
			mock.ExpectExec(`UPDATE appointments SET status = 'cancelled'`).
				WithArgs(id, customerID).
				WillReturnResult(sqlmock.NewResult(0, 1))

			assert.NoError(t, repo.Cancel(ctx, id, customerID))
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("AlreadyCancelled", func(t *testing.T) {
			mock.ExpectExec(`UPDATE appointments SET status = 'cancelled'`).
				WithArgs(id, customerID).
				WillReturnResult(sqlmock.NewResult(0, 0))

			assert.ErrorIs(t, repo.Cancel(ctx, id, customerID), sql.ErrNoRows)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})
}
