// Package availability computes the candidate slot grid for one
// salon/service/staff/date tuple.
package availability

import (
	"fmt"
	"strconv"
	"strings"
)

// Busy is an occupied interval on the salon calendar, start as "HH:MM".
type Busy struct {
	Start       string
	DurationMin int
}

// Slot mirrors the wire shape { time, available }.
type Slot struct {
	Time      string
	Available bool
}

// MinutesOfDay parses an "HH:MM" value into minutes since midnight.
func MinutesOfDay(hhmm string) (int, error) {
	h, m, ok := splitHHMM(hhmm)
	if !ok {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", hhmm)
	}

	return h*60 + m, nil
}

func splitHHMM(hhmm string) (hour, minute int, ok bool) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}

	return hour, minute, true
}

func formatHHMM(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Grid lays out every candidate start time between open and close, stepped by
// the service duration, and marks each slot unavailable when a booking of that
// duration would overlap a busy interval. Slots starting before nowMin (pass a
// negative value for dates other than today) are also unavailable.
func Grid(open, close string, durationMin int, busy []Busy, nowMin int) ([]Slot, error) {
	if durationMin <= 0 {
		return nil, fmt.Errorf("invalid duration %d", durationMin)
	}

	openMin, err := MinutesOfDay(open)
	if err != nil {
		return nil, err
	}

	closeMin, err := MinutesOfDay(close)
	if err != nil {
		return nil, err
	}

	occupied := make([][2]int, 0, len(busy))

	for _, b := range busy {
		start, err := MinutesOfDay(b.Start)
		if err != nil {
			return nil, err
		}
		occupied = append(occupied, [2]int{start, start + b.DurationMin})
	}

	var slots []Slot

	for t := openMin; t+durationMin <= closeMin; t += durationMin {
		slots = append(slots, Slot{
			Time:      formatHHMM(t),
			Available: t >= nowMin && !overlapsAny(t, t+durationMin, occupied),
		})
	}

	return slots, nil
}

func overlapsAny(start, end int, occupied [][2]int) bool {
	for _, o := range occupied {
		// Half-open intervals: [start,end) overlaps [o0,o1) iff start < o1 && o0 < end.
		if start < o[1] && o[0] < end {
			return true
		}
	}

	return false
}
