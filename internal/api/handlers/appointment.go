package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stylemate/platform/internal/api/middleware"
	"github.com/stylemate/platform/internal/errors"
	"github.com/stylemate/platform/internal/models"
	service "github.com/stylemate/platform/internal/services"
	"github.com/stylemate/platform/internal/utils"
	"github.com/stylemate/platform/internal/utils/response"
)

type AppointmentHandler struct {
	appointmentService service.AppointmentService
	validator          *validator.Validate
}

func NewAppointmentHandler(appointmentService service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentService: appointmentService,
		validator:          validator.New(),
	}
}

// AvailableSlots serves GET /salons/{salonId}/available-slots. The response
// body is the bare { "slots": [...] } gateway shape.
func (h *AppointmentHandler) AvailableSlots() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		salonID, ok := pathUUID(w, r, "salonId")
		if !ok {
			return
		}

		query := r.URL.Query()

		date := query.Get("date")
		if date == "" {
			response.WriteGatewayError(w, errors.ValidationError("date is required"))
			return
		}

		serviceID, err := uuid.Parse(query.Get("serviceId"))
		if err != nil {
			response.WriteGatewayError(w, errors.ValidationError("serviceId is required"))
			return
		}

		req := &models.AvailableSlotsRequest{
			SalonID:   salonID,
			ServiceID: serviceID,
			Date:      date,
		}

		if staff := query.Get("staffId"); staff != "" {
			staffID, err := uuid.Parse(staff)
			if err != nil {
				response.WriteGatewayError(w, errors.ValidationError("staffId must be a valid id"))
				return
			}
			req.StaffID = &staffID
		}

		slots, err := h.appointmentService.AvailableSlots(r.Context(), req)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Slot lookup failed", "error", err.Error())
			response.WriteGatewayError(w, err)
			return
		}

		response.WriteJson(w, http.StatusOK, slots)
	}
}

// Reschedule serves PATCH /customer/appointments/{id}/reschedule. Failures
// surface as { "error": string } so clients can show the reason verbatim.
func (h *AppointmentHandler) Reschedule() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsOrFail(w, r)
		if !ok {
			return
		}

		appointmentID, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		var req models.RescheduleRequest
		if err := utils.DecodeJSONBody(r, &req); err != nil {
			response.WriteGatewayError(w, errors.BadRequestError(err.Error()))
			return
		}

		if err := utils.ValidateStruct(h.validator, req); err != nil {
			response.WriteGatewayError(w, errors.ValidationError("bookingDate and bookingTime are required"))
			return
		}

		appt, err := h.appointmentService.Reschedule(r.Context(), claims.UserID, appointmentID, &req)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Warn("Reschedule failed",
				"appointmentId", appointmentID.String(), "error", err.Error())
			response.WriteGatewayError(w, err)
			return
		}

		middleware.LoggerFromContext(r.Context()).Info("Appointment rescheduled",
			"appointmentId", appointmentID.String(),
			"bookingDate", appt.BookingDate, "bookingTime", appt.BookingTime)
		response.WriteJson(w, http.StatusOK, appt)
	}
}

func (h *AppointmentHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsOrFail(w, r)
		if !ok {
			return
		}

		scope := r.URL.Query().Get("scope")
		if scope == "" {
			scope = models.AppointmentScopeUpcoming
		}

		appts, err := h.appointmentService.List(r.Context(), claims.UserID, scope)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, appts)
	}
}

func (h *AppointmentHandler) Cancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsOrFail(w, r)
		if !ok {
			return
		}

		appointmentID, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		if err := h.appointmentService.Cancel(r.Context(), claims.UserID, appointmentID); err != nil {
			response.Error(w, err)
			return
		}

		middleware.LoggerFromContext(r.Context()).Info("Appointment cancelled",
			"appointmentId", appointmentID.String())
		response.Success(w, http.StatusOK, map[string]bool{"cancelled": true})
	}
}
