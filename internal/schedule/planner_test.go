package schedule

import (
	"reflect"
	"testing"
	"time"

	"alcyxob/coach-core/internal/domain"
)

func TestPlanSlots_DeterministicAndRoundRobin(t *testing.T) {
	sessions := ParseSessionsFromMarkdown(threeDayProgram)
	wednesday := time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)

	first := PlanSlots(sessions, 3, wednesday, 2, 18)
	second := PlanSlots(sessions, 3, wednesday, 2, 18)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical slots for identical inputs")
	}
	if len(first) != 6 {
		t.Fatalf("expected 6 slots over 2 weeks, got %d", len(first))
	}

	wantDays := []int{12, 14, 16, 19, 21, 23}
	for i, slot := range first {
		if slot.StartAt.Day() != wantDays[i] || slot.StartAt.Hour() != 18 {
			t.Errorf("slot %d starts %v, want Oct %d 18:00", i, slot.StartAt, wantDays[i])
		}
		if slot.PlannedSession != sessions[i%3] {
			t.Errorf("slot %d session = %+v, want %+v", i, slot.PlannedSession, sessions[i%3])
		}
	}
}

func TestPlanSlots_GenericSessionsWhenNoneParsed(t *testing.T) {
	slots := PlanSlots(nil, 2, time.Date(2026, time.October, 12, 0, 0, 0, 0, time.UTC), 1, 7)
	want := []domain.PlannedSession{
		{DayNumber: 1, Name: "Session 1", DurationMin: 45, Intensity: "moderate"},
		{DayNumber: 2, Name: "Session 2", DurationMin: 45, Intensity: "moderate"},
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	for i := range slots {
		if slots[i].PlannedSession != want[i] {
			t.Errorf("slot %d = %+v, want %+v", i, slots[i].PlannedSession, want[i])
		}
	}
}

func TestMondayOf(t *testing.T) {
	sunday := time.Date(2026, time.October, 18, 23, 0, 0, 0, time.UTC)
	got := MondayOf(sunday)
	want := time.Date(2026, time.October, 12, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("MondayOf(%v) = %v, want %v", sunday, got, want)
	}
}
