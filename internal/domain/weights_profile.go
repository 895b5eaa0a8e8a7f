package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProfileTriggerSessionCompleted = "session_completed"
	ProfileTriggerManual           = "manual"
	ProfileTriggerSetup            = "setup"
)

// WeightEntry is the estimated working load for one movement on one piece of equipment.
type WeightEntry struct {
	Equipment  string  `bson:"equipment" json:"equipment"`
	Movement   string  `bson:"movement" json:"movement"`
	Load       float64 `bson:"load" json:"load"`
	LoadUnit   string  `bson:"loadUnit" json:"load_unit"`
	Confidence string  `bson:"confidence" json:"confidence"` // low | medium | high
}

// WeightsProfile is an append-only snapshot; the latest is the one with the highest Version.
type WeightsProfile struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID  `bson:"userId" json:"userId"`
	Version          int                 `bson:"version" json:"version"`
	Entries          []WeightEntry       `bson:"entries" json:"entries"`
	TriggerType      string              `bson:"triggerType" json:"trigger_type"`
	TriggerSessionID *primitive.ObjectID `bson:"triggerSessionId,omitempty" json:"trigger_session_id,omitempty"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
}
