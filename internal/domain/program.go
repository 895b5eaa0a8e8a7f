package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgramStatus tracks where a program version sits in its lifecycle.
type ProgramStatus string

const (
	ProgramActive     ProgramStatus = "active"
	ProgramPaused     ProgramStatus = "paused"
	ProgramDraft      ProgramStatus = "draft"
	ProgramSuperseded ProgramStatus = "superseded" // replaced by a newer version, kept for history
)

// Program is one version of a user's human-readable training program (markdown).
// Versions are append-only: an edit is always a new document with Version+1.
type Program struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Version   int                `bson:"version" json:"version"`
	Document  string             `bson:"document" json:"document"`
	Status    ProgramStatus      `bson:"status" json:"status"`
	Source    string             `bson:"source,omitempty" json:"source,omitempty"` // setup | weekly_review | manual
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
