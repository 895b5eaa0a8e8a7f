package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStats is a derived projection of one session; always recomputable from the log.
type SessionStats struct {
	SessionID          primitive.ObjectID `json:"session_id"`
	SessionName        string             `json:"session_name"`
	TotalExercises     int                `json:"total_exercises"`
	CompletedExercises int                `json:"completed_exercises"`
	SkippedExercises   int                `json:"skipped_exercises"`
	TotalSets          int                `json:"total_sets"`
	TotalReps          int                `json:"total_reps"`
	TotalVolume        float64            `json:"total_volume"`
	CardioTimeMin      float64            `json:"cardio_time_min"`
	WorkoutDurationMin *int               `json:"workout_duration_min"`
	PainFlags          int                `json:"pain_flags"`
	EnergyRating       *int               `json:"energy_rating"`
}

// WeeklyStats aggregates session stats and calendar adherence over one week.
type WeeklyStats struct {
	WeekStart          time.Time `json:"week_start"`
	WeekEnd            time.Time `json:"week_end"`
	SessionsPlanned    int       `json:"sessions_planned"`
	SessionsCompleted  int       `json:"sessions_completed"`
	SessionsSkipped    int       `json:"sessions_skipped"`
	CompletionRate     float64   `json:"completion_rate"`
	TotalExercises     int       `json:"total_exercises"`
	CompletedExercises int       `json:"completed_exercises"`
	TotalSets          int       `json:"total_sets"`
	TotalReps          int       `json:"total_reps"`
	TotalVolume        float64   `json:"total_volume"`
	CardioTimeMin      float64   `json:"cardio_time_min"`
	TotalWorkoutMin    int       `json:"total_workout_min"`
	AvgEnergyRating    *float64  `json:"avg_energy_rating"`
	PainFlags          int       `json:"pain_flags"`
}
