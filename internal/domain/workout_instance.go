package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InstanceMetadata records why and how an instance version was produced.
type InstanceMetadata struct {
	Intent         string          `bson:"intent" json:"intent"`
	RequestText    string          `bson:"requestText" json:"request_text"`
	PlannedSession *PlannedSession `bson:"plannedSession" json:"planned_session"`
	GeneratedAt    time.Time       `bson:"generatedAt" json:"generated_at"`
	Action         string          `bson:"action,omitempty" json:"action,omitempty"` // action that produced this version
}

// WorkoutInstance is one full snapshot of the exercises for a session. Every mutation
// writes a new Version; older versions are retained.
type WorkoutInstance struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID            primitive.ObjectID `bson:"sessionId" json:"session_id"`
	UserID               primitive.ObjectID `bson:"userId" json:"user_id"`
	Version              int                `bson:"version" json:"version"`
	Title                string             `bson:"title" json:"title"`
	EstimatedDurationMin int                `bson:"estimatedDurationMin" json:"estimated_duration_min"`
	Focus                []string           `bson:"focus" json:"focus"`
	Exercises            []Exercise         `bson:"exercises" json:"exercises"`
	Metadata             InstanceMetadata   `bson:"metadata" json:"metadata"`
	CreatedAt            time.Time          `bson:"createdAt" json:"created_at"`
}

// Clone deep-copies the instance, including every exercise.
func (w WorkoutInstance) Clone() WorkoutInstance {
	out := w
	out.Focus = cloneSlice(w.Focus)
	if w.Exercises != nil {
		out.Exercises = make([]Exercise, len(w.Exercises))
		for i, ex := range w.Exercises {
			out.Exercises[i] = ex.Clone()
		}
	}
	out.Metadata.PlannedSession = clonePtr(w.Metadata.PlannedSession)
	return out
}
