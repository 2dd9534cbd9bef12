// Package slots drives the reschedule flow: fetching the availability grid
// for a chosen date, tracking the modal's state, and committing the new slot.
//
// Slot fetches are keyed by a generation counter. Every fetch bumps the
// counter and remembers its own generation; by the time a response arrives, a
// newer fetch may have started, and then the older response is discarded
// rather than applied. Without this, a slow response for a previously selected
// date could overwrite the grid for the date the user is actually looking at.
package slots

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/stylemate/platform/internal/engine/gateway"
	"github.com/stylemate/platform/internal/models"
)

// ErrSuperseded marks a slot response that lost the race against a newer
// fetch. Callers drop the result silently.
var ErrSuperseded = errors.New("slot fetch superseded by a newer request")

var (
	ErrNoSelection = errors.New("select a date and time slot first")
	ErrPastDate    = errors.New("cannot reschedule to a past date")
)

// ModalState is the reschedule dialog's position in its lifecycle.
type ModalState int

const (
	StateClosed ModalState = iota
	StateDateSelecting
	StateSlotsLoading
	StateSlotSelected
	StateCommitting
)

// Engine is safe for use from a single UI goroutine; the generation counter
// and mutex also keep it consistent under incidental concurrency.
type Engine struct {
	api    *gateway.Client
	logger *slog.Logger
	now    func() time.Time

	gen atomic.Uint64

	mu            sync.Mutex
	state         ModalState
	appointmentID uuid.UUID
	salonID       uuid.UUID
	serviceID     uuid.UUID
	staffID       *uuid.UUID
	selectedDate  string
	selectedTime  string
	slots         []models.TimeSlot
	committing    bool

	// invalidate drops the cached upcoming/history appointment lists after a
	// successful reschedule.
	invalidate func()
}

func NewEngine(api *gateway.Client, logger *slog.Logger, invalidate func()) *Engine {
	if invalidate == nil {
		invalidate = func() {}
	}

	return &Engine{
		api:        api,
		logger:     logger,
		now:        time.Now,
		invalidate: invalidate,
	}
}

func (e *Engine) State() ModalState {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// Slots returns the grid currently on display. Only available slots are kept.
func (e *Engine) Slots() []models.TimeSlot {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.TimeSlot, len(e.slots))
	copy(out, e.slots)

	return out
}

// Open starts the reschedule flow for one appointment.
func (e *Engine) Open(appointmentID, salonID, serviceID uuid.UUID, staffID *uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = StateDateSelecting
	e.appointmentID = appointmentID
	e.salonID = salonID
	e.serviceID = serviceID
	e.staffID = staffID
	e.selectedDate = ""
	e.selectedTime = ""
	e.slots = nil
	e.committing = false
}

// Close abandons the flow. The generation bump orphans any in-flight fetch so
// its late response is discarded, not delivered into a closed dialog.
func (e *Engine) Close() {
	e.gen.Add(1)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = StateClosed
	e.selectedDate = ""
	e.selectedTime = ""
	e.slots = nil
	e.committing = false
}

// SelectDate records the chosen date and fetches its slot grid. A fetch or
// decode failure on this read path degrades to an empty grid: the user sees
// "no slots" and can pick another date, nothing is surfaced.
func (e *Engine) SelectDate(ctx context.Context, date string) ([]models.TimeSlot, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	myGen := e.gen.Add(1)

	e.mu.Lock()
	if e.state == StateClosed {
		e.mu.Unlock()
		return nil, ErrSuperseded
	}
	e.state = StateSlotsLoading
	e.selectedDate = date
	e.selectedTime = ""
	salonID, serviceID, staffID := e.salonID, e.serviceID, e.staffID
	e.mu.Unlock()

	query := url.Values{}
	query.Set("date", date)
	query.Set("serviceId", serviceID.String())
	if staffID != nil {
		query.Set("staffId", staffID.String())
	}

	var resp models.SlotsResponse
	err := e.api.Get(ctx, "/api/v1/salons/"+salonID.String()+"/available-slots", query, &resp)

	// The discard decision and the grid write share one critical section:
	// checked outside the lock, a newer fetch could start and write its grid
	// between the check and the write, and the stale grid would clobber it.
	// Close also bumps the counter, so a closed dialog discards the same way.
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gen.Load() != myGen {
		return nil, ErrSuperseded
	}

	if err != nil {
		e.logger.Warn("Slot fetch failed, showing empty grid",
			"date", date, "error", err.Error())
		resp.Slots = nil
	}

	available := make([]models.TimeSlot, 0, len(resp.Slots))
	for _, slot := range resp.Slots {
		if slot.Available {
			available = append(available, slot)
		}
	}

	e.state = StateDateSelecting
	e.slots = available

	return available, nil
}

// SelectSlot records the chosen time from the current grid.
func (e *Engine) SelectSlot(slotTime string) error {
	if _, err := time.Parse(models.TimeLayout, slotTime); err != nil {
		return fmt.Errorf("invalid time %q: %w", slotTime, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selectedDate == "" {
		return ErrNoSelection
	}

	e.selectedTime = slotTime
	e.state = StateSlotSelected

	return nil
}

// Committing reports whether a commit is in flight, independently of the slot
// fetch loading state.
func (e *Engine) Committing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.committing
}

// CommitReschedule sends the selected date and time to the server. On success
// the dialog closes and cached appointment lists are invalidated. On failure
// the dialog stays on the selected slot and the server's message, when
// present, is returned verbatim. There is no automatic retry.
func (e *Engine) CommitReschedule(ctx context.Context) (*models.Appointment, error) {
	e.mu.Lock()
	if e.selectedDate == "" || e.selectedTime == "" {
		e.mu.Unlock()
		return nil, ErrNoSelection
	}
	date, slotTime := e.selectedDate, e.selectedTime
	appointmentID := e.appointmentID
	e.state = StateCommitting
	e.committing = true
	e.mu.Unlock()

	if beforeToday(date, e.now()) {
		e.failCommit()
		return nil, ErrPastDate
	}

	var appt models.Appointment
	err := e.api.Send(ctx, "PATCH",
		"/api/v1/customer/appointments/"+appointmentID.String()+"/reschedule",
		models.RescheduleRequest{BookingDate: date, BookingTime: slotTime},
		&appt)
	if err != nil {
		e.failCommit()

		if msg, ok := gateway.ServerMessage(err); ok {
			return nil, errors.New(msg)
		}

		e.logger.Error("Reschedule commit failed", "error", err.Error())
		return nil, errors.New("could not reschedule the appointment, please try again")
	}

	e.mu.Lock()
	e.state = StateClosed
	e.committing = false
	e.selectedDate = ""
	e.selectedTime = ""
	e.slots = nil
	e.mu.Unlock()

	e.invalidate()

	return &appt, nil
}

func (e *Engine) failCommit() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.committing = false
	if e.state == StateCommitting {
		e.state = StateSlotSelected
	}
}

// beforeToday reports whether date falls before the local start of today.
func beforeToday(date string, now time.Time) bool {
	parsed, err := time.ParseInLocation(models.DateLayout, date, now.Location())
	if err != nil {
		return true
	}

	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	return parsed.Before(startOfToday)
}

// FormatTime12h renders a 24-hour "HH:MM" as a 12-hour display string, e.g.
// "00:00" -> "12:00 AM", "13:30" -> "1:30 PM", "12:00" -> "12:00 PM".
func FormatTime12h(value string) string {
	parsed, err := time.Parse(models.TimeLayout, value)
	if err != nil {
		return value
	}

	hour := parsed.Hour() % 12
	if hour == 0 {
		hour = 12
	}

	meridiem := "AM"
	if parsed.Hour() >= 12 {
		meridiem = "PM"
	}

	return fmt.Sprintf("%d:%02d %s", hour, parsed.Minute(), meridiem)
}
