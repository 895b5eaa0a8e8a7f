package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/coach-core/internal/domain"
)

func TestCalculateWeeklyStats(t *testing.T) {
	ctx := context.Background()
	sessions := newFakeSessionRepo()
	calendar := &fakeCalendarRepo{}
	instances := &fakeInstanceRepo{}
	events := &fakeEventRepo{}
	svc := NewStatsService(sessions, instances, events, calendar).(*statsService)
	svc.now = fixedClock
	user := primitive.NewObjectID()

	start, end := svc.GetCurrentWeekBounds()
	if want := time.Date(2026, time.October, 12, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Fatalf("week start = %v, want %v", start, want)
	}
	if want := time.Date(2026, time.October, 18, 23, 59, 59, 0, time.UTC); !end.Equal(want) {
		t.Fatalf("week end = %v, want %v", end, want)
	}

	empty, err := svc.CalculateWeeklyStats(ctx, user, start, end)
	if err != nil {
		t.Fatalf("CalculateWeeklyStats() error = %v", err)
	}
	if empty.SessionsCompleted != 0 || empty.AvgEnergyRating != nil {
		t.Errorf("empty week = %+v, want zero counts and nil energy", empty)
	}

	monday := time.Date(2026, time.October, 12, 18, 0, 0, 0, time.UTC)
	tuesday := monday.Add(24 * time.Hour)
	for _, s := range []*domain.TrainingSession{
		{UserID: user, Status: domain.SessionCompleted, StartedAt: &monday, EnergyRating: intp(6)},
		{UserID: user, Status: domain.SessionCompleted, StartedAt: &tuesday, EnergyRating: intp(9)},
	} {
		_, _ = sessions.Create(ctx, s)
		_, _ = instances.Create(ctx, &domain.WorkoutInstance{SessionID: s.ID, Version: 1, Exercises: []domain.Exercise{
			{ExerciseName: "Row", ExerciseType: domain.ExerciseDuration, DurationMin: intp(15)},
		}})
		_, _ = events.Append(ctx, &domain.SessionEvent{SessionID: s.ID, EventType: domain.EventIntervalLogged, ExerciseIndex: intp(0), DurationMin: floatp(15)})
	}
	_, _ = sessions.Create(ctx, &domain.TrainingSession{UserID: user, Status: domain.SessionActive, StartedAt: &tuesday, EnergyRating: intp(1)})
	_ = calendar.CreateMany(ctx, []domain.CalendarEvent{
		{UserID: user, StartAt: monday, Status: domain.EventCompleted},
		{UserID: user, StartAt: tuesday, Status: domain.EventCompleted},
		{UserID: user, StartAt: tuesday.Add(48 * time.Hour), Status: domain.EventSkipped},
	})

	report, err := svc.CollectWeek(ctx, user, start, end)
	if err != nil {
		t.Fatalf("CollectWeek() error = %v", err)
	}
	if len(report.Sessions) != 3 || len(report.SessionStats) != 2 {
		t.Fatalf("report has %d sessions and %d stats, want 3 and 2", len(report.Sessions), len(report.SessionStats))
	}
	w := report.Weekly
	if w.SessionsPlanned != 3 || w.SessionsCompleted != 2 || w.SessionsSkipped != 1 {
		t.Errorf("weekly = %+v", w)
	}
	if w.CompletedExercises != 2 || w.CardioTimeMin != 60 {
		t.Errorf("completed exercises %d cardio %v, want 2 and 60", w.CompletedExercises, w.CardioTimeMin)
	}
	if w.AvgEnergyRating == nil || *w.AvgEnergyRating != 7.5 {
		t.Errorf("average energy = %v, want 7.5", w.AvgEnergyRating)
	}
}
