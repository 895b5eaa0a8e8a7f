package workout

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/coach-core/internal/domain"
)

func TestNormalizeExercise_ResolvesAliases(t *testing.T) {
	raw := map[string]any{
		"name":         "Bench Press",
		"type":         "reps",
		"sets":         3,
		"reps":         10,
		"load_kg_each": 60.0,
		"rest_sec":     90,
		"hold_sec":     []any{30},
		"muscles":      "chest, triceps",
	}
	ex := NormalizeExercise(raw)

	if ex.ExerciseName != "Bench Press" || ex.ExerciseType != domain.ExerciseReps {
		t.Fatalf("name/type = %q/%q", ex.ExerciseName, ex.ExerciseType)
	}
	if ex.Sets == nil || *ex.Sets != 3 {
		t.Fatalf("sets = %v, want 3", ex.Sets)
	}
	if !reflect.DeepEqual(ex.Reps, []int{10, 10, 10}) {
		t.Errorf("reps = %v", ex.Reps)
	}
	if !reflect.DeepEqual(ex.LoadEach, []float64{60, 60, 60}) {
		t.Errorf("load_each = %v", ex.LoadEach)
	}
	if ex.LoadUnit == nil || *ex.LoadUnit != "kg" {
		t.Errorf("load_unit = %v, want kg", ex.LoadUnit)
	}
	if ex.RestSeconds == nil || *ex.RestSeconds != 90 {
		t.Errorf("rest_seconds = %v, want 90", ex.RestSeconds)
	}
	if ex.HoldDurationSec != nil {
		t.Errorf("hold fields must be nil on a reps exercise, got %v", ex.HoldDurationSec)
	}
	if !reflect.DeepEqual(ex.MusclesUtilized, []string{"chest", "triceps"}) {
		t.Errorf("muscles = %v", ex.MusclesUtilized)
	}
	if ex.GoalsAddressed == nil || len(ex.GoalsAddressed) != 0 {
		t.Errorf("goals must default to an empty list, got %#v", ex.GoalsAddressed)
	}
}

func TestNormalizeExercise_InfersType(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want domain.ExerciseType
	}{
		{"hold from hold_sec", map[string]any{"name": "Plank", "hold_sec": 45}, domain.ExerciseHold},
		{"intervals from rounds", map[string]any{"name": "Bike", "rounds": 8, "work_sec": 20}, domain.ExerciseIntervals},
		{"duration from minutes", map[string]any{"name": "Run", "duration": "20 min"}, domain.ExerciseDuration},
		{"unknown type falls back", map[string]any{"name": "Squat", "type": "superset", "reps": 5}, domain.ExerciseReps},
		{"explicit type wins", map[string]any{"exercise_type": "HOLD", "hold_duration_sec": []int{20, 20}}, domain.ExerciseHold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeExercise(tt.raw).ExerciseType; got != tt.want {
				t.Errorf("type = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeExercise_StoredDocumentShapes(t *testing.T) {
	raw := primitive.M{
		"exercise_name":     "Side Plank",
		"exercise_type":     "hold",
		"hold_duration_sec": primitive.A{int32(30), int64(30)},
		"equipment":         primitive.A{"mat"},
	}
	ex := NormalizeExercise(raw)
	if !reflect.DeepEqual(ex.HoldDurationSec, []int{30, 30}) {
		t.Errorf("hold = %v", ex.HoldDurationSec)
	}
	if !reflect.DeepEqual(ex.Equipment, []string{"mat"}) {
		t.Errorf("equipment = %v", ex.Equipment)
	}
	if ex.Sets != nil || ex.Reps != nil || ex.DurationMin != nil {
		t.Errorf("non-hold fields must stay nil: %+v", ex)
	}
}

func TestNormalizeWorkoutInstance_Defaults(t *testing.T) {
	inst := NormalizeWorkoutInstance(nil, MetadataOverrides{})
	if inst.Title != DefaultTitle {
		t.Errorf("title = %q, want %q", inst.Title, DefaultTitle)
	}
	if inst.Exercises == nil || len(inst.Exercises) != 0 {
		t.Errorf("exercises must default to an empty list, got %#v", inst.Exercises)
	}
	if inst.EstimatedDurationMin != MinWorkoutMinutes {
		t.Errorf("estimate = %d, want %d", inst.EstimatedDurationMin, MinWorkoutMinutes)
	}
	if inst.Metadata.GeneratedAt.IsZero() {
		t.Errorf("generated_at must be stamped")
	}
}

func TestNormalizeWorkoutInstance_DurationAliasAndOverrides(t *testing.T) {
	generatedAt := time.Date(2026, time.October, 12, 18, 0, 0, 0, time.UTC)
	planned := &domain.PlannedSession{DayNumber: 1, Name: "Push", DurationMin: 45, Intensity: "moderate"}
	raw := map[string]any{
		"title":        "Push Day",
		"duration_min": 38,
		"focus":        []any{"chest", "shoulders"},
		"exercises": []any{
			map[string]any{"name": "Push-up", "sets": 3, "reps": []any{12, 10, 8}},
			"not an exercise",
		},
		"metadata": map[string]any{"intent": "generated", "request_text": "upper body"},
	}
	inst := NormalizeWorkoutInstance(raw, MetadataOverrides{
		Intent:         "planned_session",
		PlannedSession: planned,
		GeneratedAt:    generatedAt,
	})

	if inst.EstimatedDurationMin != 38 {
		t.Errorf("estimate = %d, want 38 from duration_min", inst.EstimatedDurationMin)
	}
	if len(inst.Exercises) != 1 || inst.Exercises[0].ExerciseName != "Push-up" {
		t.Fatalf("exercises = %+v", inst.Exercises)
	}
	if inst.Metadata.Intent != "planned_session" || inst.Metadata.RequestText != "upper body" {
		t.Errorf("metadata = %+v", inst.Metadata)
	}
	if inst.Metadata.PlannedSession == nil || *inst.Metadata.PlannedSession != *planned {
		t.Errorf("planned session = %+v", inst.Metadata.PlannedSession)
	}
	if inst.Metadata.PlannedSession == planned {
		t.Errorf("planned session override must be copied")
	}
	if !inst.Metadata.GeneratedAt.Equal(generatedAt) {
		t.Errorf("generated_at = %v", inst.Metadata.GeneratedAt)
	}
}
