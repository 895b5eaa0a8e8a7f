package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// TrainingSession is one execution of a workout. Its instance becomes immutable once completed.
type TrainingSession struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID  `bson:"userId" json:"userId"`
	CalendarEventID *primitive.ObjectID `bson:"calendarEventId,omitempty" json:"calendarEventId,omitempty"`
	Status          SessionStatus       `bson:"status" json:"status"`
	EnergyRating    *int                `bson:"energyRating,omitempty" json:"energy_rating"`
	Notes           string              `bson:"notes,omitempty" json:"notes,omitempty"`
	StartedAt       *time.Time          `bson:"startedAt,omitempty" json:"started_at"`
	UpdatedAt       *time.Time          `bson:"updatedAt,omitempty" json:"updated_at"`
	CompletedAt     *time.Time          `bson:"completedAt,omitempty" json:"completed_at"`
}

// Session event types. The first four are completion commands replayed by the reducer;
// the rest are informational and feed the statistics only.
const (
	EventSetCompleted      = "set_completed"
	EventExerciseSkipped   = "exercise_skipped"
	EventExerciseUnskipped = "exercise_unskipped"
	EventNote              = "note"
	EventIntervalLogged    = "interval_logged"
	EventSafetyFlag        = "safety_flag"
)

// SessionEvent is one entry of the append-only session log. Optional fields are set
// according to EventType.
type SessionEvent struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID       string             `bson:"eventId" json:"event_id"` // client-visible uuid
	SessionID     primitive.ObjectID `bson:"sessionId" json:"session_id"`
	UserID        primitive.ObjectID `bson:"userId" json:"user_id"`
	EventType     string             `bson:"eventType" json:"event_type"`
	ExerciseIndex *int               `bson:"exerciseIndex,omitempty" json:"exercise_index,omitempty"`
	ExerciseName  string             `bson:"exerciseName,omitempty" json:"exercise_name,omitempty"` // exercise at ExerciseIndex when logged
	SetIndex      *int               `bson:"setIndex,omitempty" json:"set_index,omitempty"`
	ActualReps    *int               `bson:"actualReps,omitempty" json:"actual_reps,omitempty"`
	ActualLoad    *float64           `bson:"actualLoad,omitempty" json:"actual_load,omitempty"`
	LoadUnit      string             `bson:"loadUnit,omitempty" json:"load_unit,omitempty"`
	DurationMin   *float64           `bson:"durationMin,omitempty" json:"duration_min,omitempty"`
	Text          string             `bson:"text,omitempty" json:"text,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
}
