package schedule

import (
	"fmt"
	"time"

	"alcyxob/coach-core/internal/domain"
)

// weekdayOffsets maps days-per-week to day offsets from Monday. Fixed tables keep
// regeneration deterministic.
var weekdayOffsets = map[int][]int{
	1: {0},
	2: {0, 3},
	3: {0, 2, 4},
	4: {0, 1, 3, 4},
	5: {0, 1, 2, 4, 5},
	6: {0, 1, 2, 3, 4, 5},
	7: {0, 1, 2, 3, 4, 5, 6},
}

// Slot is one calendar position with the planned session assigned to it.
type Slot struct {
	StartAt        time.Time
	PlannedSession domain.PlannedSession
}

// PlanSlots lays sessions round-robin over the weekday pattern for daysPerWeek, starting at
// the Monday of weekStart's week, for the given number of weeks. Same inputs, same slots.
func PlanSlots(sessions []domain.PlannedSession, daysPerWeek int, weekStart time.Time, weeks, hour int) []Slot {
	if daysPerWeek < 1 || daysPerWeek > 7 {
		daysPerWeek = DefaultDaysPerWeek
	}
	if weeks < 1 {
		weeks = 1
	}
	if hour < 0 || hour > 23 {
		hour = 0
	}
	monday := MondayOf(weekStart)
	offsets := weekdayOffsets[daysPerWeek]

	slots := make([]Slot, 0, weeks*len(offsets))
	for w := 0; w < weeks; w++ {
		for k, off := range offsets {
			day := monday.AddDate(0, 0, w*7+off)
			slots = append(slots, Slot{
				StartAt:        time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location()),
				PlannedSession: sessionForSlot(sessions, k),
			})
		}
	}
	return slots
}

func sessionForSlot(sessions []domain.PlannedSession, k int) domain.PlannedSession {
	if len(sessions) == 0 {
		return domain.PlannedSession{
			DayNumber:   k + 1,
			Name:        fmt.Sprintf("Session %d", k+1),
			DurationMin: DefaultDurationMin,
			Intensity:   DefaultIntensity,
		}
	}
	return sessions[k%len(sessions)]
}

// MondayOf returns 00:00 on the Monday of t's week, in t's location.
func MondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}
