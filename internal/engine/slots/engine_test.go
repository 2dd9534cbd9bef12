package slots_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylemate/platform/internal/engine/gateway"
	"github.com/stylemate/platform/internal/engine/slots"
	"github.com/stylemate/platform/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T, handler http.Handler, invalidate func()) *slots.Engine {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := gateway.New(server.URL, func() string { return "token" })
	require.NoError(t, err)

	return slots.NewEngine(client, testLogger(), invalidate)
}

func slotsHandler(t *testing.T, byDate map[string][]models.TimeSlot) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.SlotsResponse{Slots: byDate[date]})
	}
}

func TestFormatTime12h(t *testing.T) {
	assert.Equal(t, "12:00 AM", slots.FormatTime12h("00:00"))
	assert.Equal(t, "1:30 PM", slots.FormatTime12h("13:30"))
	assert.Equal(t, "12:00 PM", slots.FormatTime12h("12:00"))
	assert.Equal(t, "9:05 AM", slots.FormatTime12h("09:05"))

	// Unparseable input passes through untouched.
	assert.Equal(t, "garbage", slots.FormatTime12h("garbage"))
}

func TestSelectDateKeepsOnlyAvailableSlots(t *testing.T) {
	engine := newEngine(t, slotsHandler(t, map[string][]models.TimeSlot{
		"2030-04-01": {
			{Time: "09:00", Available: true},
			{Time: "10:00", Available: false},
			{Time: "11:00", Available: true},
		},
	}), nil)

	engine.Open(uuid.New(), uuid.New(), uuid.New(), nil)

	grid, err := engine.SelectDate(context.Background(), "2030-04-01")

	require.NoError(t, err)
	require.Len(t, grid, 2)
	assert.Equal(t, "09:00", grid[0].Time)
	assert.Equal(t, "11:00", grid[1].Time)
}

func TestSelectDateRejectsMalformedDate(t *testing.T) {
	engine := newEngine(t, slotsHandler(t, nil), nil)
	engine.Open(uuid.New(), uuid.New(), uuid.New(), nil)

	_, err := engine.SelectDate(context.Background(), "01-04-2030")

	assert.Error(t, err)
}

func TestSelectDateDegradesToEmptyGridOnFetchFailure(t *testing.T) {
	engine := newEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), nil)

	engine.Open(uuid.New(), uuid.New(), uuid.New(), nil)

	grid, err := engine.SelectDate(context.Background(), "2030-04-01")

	// Read-path failure: nothing surfaced, the user just sees no slots.
	assert.NoError(t, err)
	assert.Empty(t, grid)
}

func TestStaleFetchDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	handler := func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "2030-04-01" {
			close(started)
			<-release // first date answers only after the second one finished
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.SlotsResponse{Slots: []models.TimeSlot{
			{Time: "09:00", Available: true},
		}})
	}

	engine := newEngine(t, http.HandlerFunc(handler), nil)
	engine.Open(uuid.New(), uuid.New(), uuid.New(), nil)

	var wg sync.WaitGroup
	var staleErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, staleErr = engine.SelectDate(context.Background(), "2030-04-01")
	}()

	// Wait until the slow fetch is in flight, let the fast date win, then
	// release the slow response.
	<-started
	grid, err := engine.SelectDate(context.Background(), "2030-04-02")
	require.NoError(t, err)
	require.Len(t, grid, 1)

	close(release)
	wg.Wait()

	assert.ErrorIs(t, staleErr, slots.ErrSuperseded)
	assert.Len(t, engine.Slots(), 1)
}

func TestStaleResponseCannotOverwriteNewerGrid(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	handler := func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		w.Header().Set("Content-Type", "application/json")

		switch date {
		case "2030-04-01":
			close(started)
			<-release
			_ = json.NewEncoder(w).Encode(models.SlotsResponse{Slots: []models.TimeSlot{
				{Time: "09:00", Available: true},
			}})
		case "2030-04-02":
			_ = json.NewEncoder(w).Encode(models.SlotsResponse{Slots: []models.TimeSlot{
				{Time: "14:00", Available: true},
				{Time: "15:00", Available: true},
			}})
		}
	}

	engine := newEngine(t, http.HandlerFunc(handler), nil)
	engine.Open(uuid.New(), uuid.New(), uuid.New(), nil)

	var wg sync.WaitGroup
	var staleErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, staleErr = engine.SelectDate(context.Background(), "2030-04-01")
	}()

	<-started
	grid, err := engine.SelectDate(context.Background(), "2030-04-02")
	require.NoError(t, err)
	require.Len(t, grid, 2)

	close(release)
	wg.Wait()

	// The first date's late grid never reaches the display; the second
	// date's slots are still what the user sees.
	assert.ErrorIs(t, staleErr, slots.ErrSuperseded)
	displayed := engine.Slots()
	require.Len(t, displayed, 2)
	assert.Equal(t, "14:00", displayed[0].Time)
	assert.Equal(t, "15:00", displayed[1].Time)
	assert.Equal(t, slots.StateDateSelecting, engine.State())
}

func TestCloseDiscardsLateResponse(t *testing.T) {
	release := make(chan struct{})

	engine := newEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.SlotsResponse{Slots: []models.TimeSlot{
			{Time: "09:00", Available: true},
		}})
	}), nil)

	engine.Open(uuid.New(), uuid.New(), uuid.New(), nil)

	var wg sync.WaitGroup
	var lateErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, lateErr = engine.SelectDate(context.Background(), "2030-04-01")
	}()

	engine.Close()
	close(release)
	wg.Wait()

	assert.ErrorIs(t, lateErr, slots.ErrSuperseded)
	assert.Equal(t, slots.StateClosed, engine.State())
	assert.Empty(t, engine.Slots())
}

func TestCommitRequiresSelection(t *testing.T) {
	engine := newEngine(t, slotsHandler(t, nil), nil)
	engine.Open(uuid.New(), uuid.New(), uuid.New(), nil)

	_, err := engine.CommitReschedule(context.Background())

	assert.ErrorIs(t, err, slots.ErrNoSelection)
}

func TestCommitRejectsPastDate(t *testing.T) {
	engine := newEngine(t, slotsHandler(t, map[string][]models.TimeSlot{
		"2020-01-01": {{Time: "09:00", Available: true}},
	}), nil)

	engine.Open(uuid.New(), uuid.New(), uuid.New(), nil)

	_, err := engine.SelectDate(context.Background(), "2020-01-01")
	require.NoError(t, err)
	require.NoError(t, engine.SelectSlot("09:00"))

	_, err = engine.CommitReschedule(context.Background())

	assert.ErrorIs(t, err, slots.ErrPastDate)
	assert.Equal(t, slots.StateSlotSelected, engine.State())
}

func TestCommitSuccessClosesAndInvalidates(t *testing.T) {
	appointmentID := uuid.New()
	invalidated := false

	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			assert.Equal(t, "/api/v1/customer/appointments/"+appointmentID.String()+"/reschedule", r.URL.Path)

			var req models.RescheduleRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "2030-04-01", req.BookingDate)
			assert.Equal(t, "09:00", req.BookingTime)

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(models.Appointment{
				ID:          appointmentID,
				BookingDate: req.BookingDate,
				BookingTime: req.BookingTime,
				Status:      models.AppointmentStatusBooked,
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.SlotsResponse{Slots: []models.TimeSlot{
			{Time: "09:00", Available: true},
		}})
	}

	engine := newEngine(t, http.HandlerFunc(handler), func() { invalidated = true })
	engine.Open(appointmentID, uuid.New(), uuid.New(), nil)

	_, err := engine.SelectDate(context.Background(), "2030-04-01")
	require.NoError(t, err)
	require.NoError(t, engine.SelectSlot("09:00"))

	appt, err := engine.CommitReschedule(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "2030-04-01", appt.BookingDate)
	assert.Equal(t, slots.StateClosed, engine.State())
	assert.True(t, invalidated)
	assert.False(t, engine.Committing())
}

func TestCommitFailureSurfacesServerMessageVerbatim(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"Selected slot is no longer available"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.SlotsResponse{Slots: []models.TimeSlot{
			{Time: "09:00", Available: true},
		}})
	}

	invalidated := false
	engine := newEngine(t, http.HandlerFunc(handler), func() { invalidated = true })
	engine.Open(uuid.New(), uuid.New(), uuid.New(), nil)

	_, err := engine.SelectDate(context.Background(), "2030-04-01")
	require.NoError(t, err)
	require.NoError(t, engine.SelectSlot("09:00"))

	_, err = engine.CommitReschedule(context.Background())

	require.Error(t, err)
	assert.Equal(t, "Selected slot is no longer available", err.Error())
	// The dialog stays on the failed slot; nothing was invalidated, no retry.
	assert.Equal(t, slots.StateSlotSelected, engine.State())
	assert.False(t, invalidated)
}
