package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewRunStatus string

const (
	ReviewSucceeded ReviewRunStatus = "succeeded"
	ReviewSkipped   ReviewRunStatus = "skipped"
	ReviewFailed    ReviewRunStatus = "failed"
)

// ReviewRun is the audit record of one weekly review attempt for one user.
type ReviewRun struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	BatchID        string             `bson:"batchId,omitempty" json:"batchId,omitempty"`
	WeekStart      time.Time          `bson:"weekStart" json:"weekStart"`
	Status         ReviewRunStatus    `bson:"status" json:"status"`
	Reason         string             `bson:"reason,omitempty" json:"reason,omitempty"`
	ProgramVersion int                `bson:"programVersion,omitempty" json:"programVersion,omitempty"`
	ArchiveKey     string             `bson:"archiveKey,omitempty" json:"archiveKey,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
