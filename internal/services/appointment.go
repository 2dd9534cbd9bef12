package service

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stylemate/platform/internal/api/middleware"
	"github.com/stylemate/platform/internal/availability"
	"github.com/stylemate/platform/internal/cache"
	"github.com/stylemate/platform/internal/errors"
	"github.com/stylemate/platform/internal/models"
	repository "github.com/stylemate/platform/internal/repositories"
	"github.com/stylemate/platform/pkg/email"
)

type AppointmentService interface {
	AvailableSlots(ctx context.Context, req *models.AvailableSlotsRequest) (*models.SlotsResponse, error)
	Reschedule(ctx context.Context, customerID, appointmentID uuid.UUID, req *models.RescheduleRequest) (*models.Appointment, error)
	List(ctx context.Context, customerID uuid.UUID, scope string) ([]models.Appointment, error)
	Cancel(ctx context.Context, customerID, appointmentID uuid.UUID) error
}

type appointmentService struct {
	repo     repository.AppointmentRepository
	userRepo repository.UserRepository
	cache    cache.Cache
	mail     email.Service
	slotsTTL time.Duration
	now      func() time.Time
}

func NewAppointmentService(repo repository.AppointmentRepository, userRepo repository.UserRepository, c cache.Cache, mail email.Service, slotsTTL time.Duration) AppointmentService {
	return &appointmentService{
		repo:     repo,
		userRepo: userRepo,
		cache:    c,
		mail:     mail,
		slotsTTL: slotsTTL,
		now:      time.Now,
	}
}

func (s *appointmentService) AvailableSlots(ctx context.Context, req *models.AvailableSlotsRequest) (*models.SlotsResponse, error) {

	if _, err := time.ParseInLocation(models.DateLayout, req.Date, time.Local); err != nil {
		return nil, errors.ValidationError("Date must be in YYYY-MM-DD format").WithError(err)
	}

	cacheKey := slotsCacheKey(req)

	cached := &models.SlotsResponse{}
	if hit, err := s.cache.Get(ctx, cacheKey, cached); err == nil && hit {
		return cached, nil
	}

	svc, err := s.repo.GetService(ctx, req.ServiceID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Service not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to load service").WithError(err)
	}

	hours, err := s.repo.GetSalonHours(ctx, req.SalonID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Salon not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to load salon hours").WithError(err)
	}

	booked, err := s.repo.ListBookedSlots(ctx, req.SalonID, req.StaffID, req.Date)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load booked slots").WithError(err)
	}

	busy := make([]availability.Busy, 0, len(booked))
	for _, b := range booked {
		busy = append(busy, availability.Busy{Start: b.Time, DurationMin: b.DurationMin})
	}

	// Slots already begun are unavailable when the requested date is today.
	nowMin := -1
	now := s.now()
	if req.Date == now.Format(models.DateLayout) {
		nowMin = now.Hour()*60 + now.Minute()
	}

	grid, err := availability.Grid(hours.OpensAt, hours.ClosesAt, svc.DurationMin, busy, nowMin)
	if err != nil {
		return nil, errors.InternalError("Failed to compute availability").WithError(err)
	}

	resp := &models.SlotsResponse{Slots: make([]models.TimeSlot, 0, len(grid))}
	for _, slot := range grid {
		resp.Slots = append(resp.Slots, models.TimeSlot{Time: slot.Time, Available: slot.Available})
	}

	if err := s.cache.Set(ctx, cacheKey, resp, s.slotsTTL); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to cache slots", "error", err.Error())
	}

	return resp, nil
}

func (s *appointmentService) Reschedule(ctx context.Context, customerID, appointmentID uuid.UUID, req *models.RescheduleRequest) (*models.Appointment, error) {

	logger := middleware.LoggerFromContext(ctx)

	past, err := dateBeforeToday(req.BookingDate, s.now())
	if err != nil {
		return nil, errors.ValidationError("Date must be in YYYY-MM-DD format").WithError(err)
	}
	if past {
		return nil, errors.ValidationError("Cannot reschedule to a past date")
	}

	appt, err := s.repo.Reschedule(ctx, appointmentID, customerID, req.BookingDate, req.BookingTime)
	if err != nil {
		switch {
		case stderrors.Is(err, sql.ErrNoRows):
			return nil, errors.NotFoundError("Appointment not found").WithError(err)
		case stderrors.Is(err, repository.ErrSlotTaken):
			return nil, errors.ConflictError("Selected slot is no longer available").WithError(err)
		default:
			return nil, errors.DatabaseError("Failed to reschedule appointment").WithError(err)
		}
	}

	// The lists are rebuilt on next read; a failed invalidation only delays
	// that by the cache TTL.
	if err := s.cache.Delete(ctx,
		cache.Key(cache.UpcomingKeyPrefix, customerID.String()),
		cache.Key(cache.HistoryKeyPrefix, customerID.String()),
	); err != nil {
		logger.Warn("Failed to invalidate appointment caches", "error", err.Error())
	}

	s.sendRescheduleConfirmation(ctx, customerID, appt)

	return appt, nil
}

func (s *appointmentService) List(ctx context.Context, customerID uuid.UUID, scope string) ([]models.Appointment, error) {

	if scope != models.AppointmentScopeUpcoming && scope != models.AppointmentScopeHistory {
		return nil, errors.ValidationError("Scope must be 'upcoming' or 'history'")
	}

	cacheKey := cache.Key(cache.UpcomingKeyPrefix, customerID.String())
	if scope == models.AppointmentScopeHistory {
		cacheKey = cache.Key(cache.HistoryKeyPrefix, customerID.String())
	}

	var cached []models.Appointment
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	appts, err := s.repo.ListByCustomer(ctx, customerID, scope)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list appointments").WithError(err)
	}

	if err := s.cache.Set(ctx, cacheKey, appts, 0); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to cache appointments", "error", err.Error())
	}

	return appts, nil
}

func (s *appointmentService) Cancel(ctx context.Context, customerID, appointmentID uuid.UUID) error {

	if err := s.repo.Cancel(ctx, appointmentID, customerID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("Appointment not found").WithError(err)
		}
		return errors.DatabaseError("Failed to cancel appointment").WithError(err)
	}

	if err := s.cache.Delete(ctx,
		cache.Key(cache.UpcomingKeyPrefix, customerID.String()),
		cache.Key(cache.HistoryKeyPrefix, customerID.String()),
	); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to invalidate appointment caches", "error", err.Error())
	}

	return nil
}

// Best effort: a failed confirmation email never fails the reschedule.
func (s *appointmentService) sendRescheduleConfirmation(ctx context.Context, customerID uuid.UUID, appt *models.Appointment) {

	logger := middleware.LoggerFromContext(ctx)

	user, err := s.userRepo.GetUserByID(ctx, customerID)
	if err != nil {
		logger.Warn("Failed to load customer for confirmation email", "error", err.Error())
		return
	}

	msg := &email.Message{
		To:      user.Email,
		Subject: "Your appointment has been rescheduled",
		Content: fmt.Sprintf("Your %s appointment is now on %s at %s.",
			appt.ServiceName, appt.BookingDate, appt.BookingTime),
	}

	if err := s.mail.Send(ctx, msg); err != nil {
		logger.Warn("Failed to send reschedule confirmation", "error", err.Error())
	}
}

func slotsCacheKey(req *models.AvailableSlotsRequest) string {
	staff := "any"
	if req.StaffID != nil {
		staff = req.StaffID.String()
	}

	return cache.Key(cache.SlotsKeyPrefix,
		fmt.Sprintf("%s:%s:%s:%s", req.SalonID, req.Date, req.ServiceID, staff))
}

// dateBeforeToday reports whether date falls before the local start of today,
// the calendar-day cutoff for reschedules.
func dateBeforeToday(date string, now time.Time) (bool, error) {
	d, err := time.ParseInLocation(models.DateLayout, date, time.Local)
	if err != nil {
		return false, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	return d.Before(today), nil
}
