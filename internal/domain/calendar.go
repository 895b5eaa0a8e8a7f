package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventStatus string

const (
	EventScheduled EventStatus = "scheduled"
	EventCompleted EventStatus = "completed"
	EventSkipped   EventStatus = "skipped"
)

const EventTypeWorkout = "workout"

// PlannedSession is a day-level slot parsed from a program document. It is derived data:
// regenerating the calendar recomputes it from the active program.
type PlannedSession struct {
	DayNumber   int    `bson:"dayNumber" json:"dayNumber"`
	Name        string `bson:"name" json:"name"`
	DurationMin int    `bson:"durationMin" json:"durationMin"`
	Intensity   string `bson:"intensity" json:"intensity"`
}

// CalendarEvent is a concrete scheduled session. PlannedSession is always exactly one
// object or nil, never the raw one-to-many join from storage.
type CalendarEvent struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	EventType      string             `bson:"eventType" json:"eventType"`
	StartAt        time.Time          `bson:"startAt" json:"startAt"`
	Status         EventStatus        `bson:"status" json:"status"`
	ProgramVersion int                `bson:"programVersion,omitempty" json:"programVersion,omitempty"`
	PlannedSession *PlannedSession    `bson:"planned_session" json:"planned_session"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
