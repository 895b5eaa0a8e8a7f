package stats

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/coach-core/internal/domain"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func sampleInstance() *domain.WorkoutInstance {
	return &domain.WorkoutInstance{
		Title: "Lower",
		Exercises: []domain.Exercise{
			{ExerciseName: "Squat", ExerciseType: domain.ExerciseReps, Sets: intp(3)},
			{ExerciseName: "Lunge", ExerciseType: domain.ExerciseReps, Sets: intp(2)},
			{ExerciseName: "Row Erg", ExerciseType: domain.ExerciseDuration, DurationMin: intp(10)},
			{ExerciseName: "Sprints", ExerciseType: domain.ExerciseIntervals, Rounds: intp(6), WorkSec: intp(20)},
		},
	}
}

func setEvent(ex, set, reps int, load float64) domain.SessionEvent {
	return domain.SessionEvent{
		EventType: domain.EventSetCompleted, ExerciseIndex: intp(ex), SetIndex: intp(set),
		ActualReps: intp(reps), ActualLoad: floatp(load), LoadUnit: "kg",
	}
}

func TestCalculateSessionStats(t *testing.T) {
	start := time.Date(2026, time.October, 12, 18, 0, 0, 0, time.UTC)
	end := start.Add(52 * time.Minute)
	session := &domain.TrainingSession{ID: primitive.NewObjectID(), StartedAt: &start, UpdatedAt: &end, EnergyRating: intp(4)}
	events := []domain.SessionEvent{
		setEvent(0, 0, 5, 100),
		setEvent(0, 1, 5, 100),
		setEvent(0, 1, 4, 100), // overwrite
		setEvent(0, 2, 5, 100),
		{EventType: domain.EventExerciseSkipped, ExerciseIndex: intp(1), Text: "knee"},
		{EventType: domain.EventIntervalLogged, ExerciseIndex: intp(3), DurationMin: floatp(6.5)},
		{EventType: domain.EventNote, Text: "left knee hurts on the way down"},
		{EventType: domain.EventNote, Text: "good pump"},
		{EventType: domain.EventSafetyFlag, Text: "dizzy"},
	}
	planned := &domain.PlannedSession{DayNumber: 2, Name: "Lower Body", DurationMin: 60, Intensity: "high"}

	st := CalculateSessionStats(sampleInstance(), events, session, planned)

	if st.SessionName != "Lower Body" || st.SessionID != session.ID {
		t.Errorf("identity = %q / %v", st.SessionName, st.SessionID)
	}
	if st.TotalExercises != 4 || st.CompletedExercises != 2 || st.SkippedExercises != 1 {
		t.Errorf("exercises total/completed/skipped = %d/%d/%d, want 4/2/1", st.TotalExercises, st.CompletedExercises, st.SkippedExercises)
	}
	if st.TotalSets != 3 || st.TotalReps != 14 || st.TotalVolume != 1400 {
		t.Errorf("sets/reps/volume = %d/%d/%v, want 3/14/1400", st.TotalSets, st.TotalReps, st.TotalVolume)
	}
	if st.CardioTimeMin != 16.5 {
		t.Errorf("cardio = %v, want logged 6.5 plus declared 10", st.CardioTimeMin)
	}
	if st.WorkoutDurationMin == nil || *st.WorkoutDurationMin != 52 {
		t.Errorf("workout duration = %v, want 52", st.WorkoutDurationMin)
	}
	if st.PainFlags != 2 {
		t.Errorf("pain flags = %d, want 2", st.PainFlags)
	}
	if st.EnergyRating == nil || *st.EnergyRating != 4 {
		t.Errorf("energy = %v, want 4", st.EnergyRating)
	}
}

func TestCalculateSessionStats_DegenerateInputs(t *testing.T) {
	start := time.Date(2026, time.October, 12, 18, 0, 0, 0, time.UTC)
	session := &domain.TrainingSession{StartedAt: &start}

	tests := []struct {
		name   string
		inst   *domain.WorkoutInstance
		events []domain.SessionEvent
	}{
		{"nil instance", nil, []domain.SessionEvent{setEvent(0, 0, 5, 20)}},
		{"empty log", sampleInstance(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := CalculateSessionStats(tt.inst, tt.events, session, nil)
			if st.TotalExercises != 0 || st.TotalSets != 0 || st.TotalReps != 0 || st.TotalVolume != 0 || st.CardioTimeMin != 0 {
				t.Errorf("expected zero stats, got %+v", st)
			}
			if st.WorkoutDurationMin != nil || st.EnergyRating != nil {
				t.Errorf("duration and energy must stay nil, got %v / %v", st.WorkoutDurationMin, st.EnergyRating)
			}
		})
	}
}

func TestCalculateSessionStats_NoDurationWithoutBothTimestamps(t *testing.T) {
	start := time.Date(2026, time.October, 12, 18, 0, 0, 0, time.UTC)
	st := CalculateSessionStats(sampleInstance(), []domain.SessionEvent{setEvent(0, 0, 5, 20)}, &domain.TrainingSession{StartedAt: &start}, nil)
	if st.WorkoutDurationMin != nil {
		t.Fatalf("expected nil duration, got %d", *st.WorkoutDurationMin)
	}
	if st.SessionName != "Lower" {
		t.Errorf("session name = %q, want instance title", st.SessionName)
	}
}

func TestCalculateSessionStats_PainInCompletionNotes(t *testing.T) {
	start := time.Date(2026, time.October, 12, 18, 0, 0, 0, time.UTC)
	events := []domain.SessionEvent{setEvent(0, 0, 5, 100)}

	tests := []struct {
		name  string
		notes string
		want  int
	}{
		{"pain mentioned", "Left knee pain on the last set", 1},
		{"no pain", "solid session", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &domain.TrainingSession{StartedAt: &start, Notes: tt.notes}
			if got := CalculateSessionStats(sampleInstance(), events, session, nil).PainFlags; got != tt.want {
				t.Errorf("pain flags = %d, want %d", got, tt.want)
			}
		})
	}
}
