package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AppointmentStatusBooked    = "booked"
	AppointmentStatusCancelled = "cancelled"

	// Wire formats for calendar dates and local times of day. Dates carry no
	// timezone; "today" cutoffs are evaluated in the server's local zone.
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Appointment struct {
	ID          uuid.UUID  `json:"id"`
	SalonID     uuid.UUID  `json:"salonId"`
	ServiceID   uuid.UUID  `json:"serviceId"`
	ServiceName string     `json:"serviceName"`
	StaffID     *uuid.UUID `json:"staffId,omitempty"`
	StaffName   *string    `json:"staffName,omitempty"`
	BookingDate string     `json:"bookingDate"`
	BookingTime string     `json:"bookingTime"`
	DurationMin int        `json:"durationMinutes"`
	Status      string     `json:"status"`
	CustomerID  uuid.UUID  `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TimeSlot is a candidate (time, availability) pair for one salon/service/
// staff/date tuple. Slots are recomputed on every date selection and never
// persisted.
type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

type SlotsResponse struct {
	Slots []TimeSlot `json:"slots"`
}

type AvailableSlotsRequest struct {
	SalonID   uuid.UUID
	ServiceID uuid.UUID
	StaffID   *uuid.UUID
	Date      string
}

type RescheduleRequest struct {
	BookingDate string `json:"bookingDate" validate:"required,datetime=2006-01-02"`
	BookingTime string `json:"bookingTime" validate:"required,datetime=15:04"`
}

const (
	AppointmentScopeUpcoming = "upcoming"
	AppointmentScopeHistory  = "history"
)

// SalonHours is the bookable window of one salon, both ends as "HH:MM".
type SalonHours struct {
	OpensAt  string
	ClosesAt string
}

// SalonService is the subset of a salon's service catalog the scheduling
// paths need.
type SalonService struct {
	ID          uuid.UUID
	Name        string
	DurationMin int
}
