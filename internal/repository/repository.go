package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/coach-core/internal/domain"
)

// Error constants for the repository layer. Anything else a store returns is passed
// through unmodified.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrTimeout      = RepositoryError("store call timed out")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ProgramRepository stores versioned program documents.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error)
	// GetActiveByUser returns the newest active version, or ErrNotFound.
	GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Program, error)
	// GetLatestVersion returns the highest version number for the user, 0 if none.
	GetLatestVersion(ctx context.Context, userID primitive.ObjectID) (int, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Program, error) // newest first
	// SupersedeActive marks every active version except keepID as superseded.
	SupersedeActive(ctx context.Context, userID, keepID primitive.ObjectID) error
	DistinctActiveUsers(ctx context.Context) ([]primitive.ObjectID, error)
}

// WeightsProfileRepository stores append-only weights profile snapshots.
type WeightsProfileRepository interface {
	Create(ctx context.Context, profile *domain.WeightsProfile) (primitive.ObjectID, error)
	// GetLatestByUser returns the highest version, or ErrNotFound.
	GetLatestByUser(ctx context.Context, userID primitive.ObjectID) (*domain.WeightsProfile, error)
}

// CalendarEventRepository stores scheduled sessions. Returned events always carry a single
// PlannedSession (or nil), never the raw join.
type CalendarEventRepository interface {
	CreateMany(ctx context.Context, events []domain.CalendarEvent) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CalendarEvent, error)
	// ListUpcoming returns scheduled events starting at or after from, soonest first.
	ListUpcoming(ctx context.Context, userID primitive.ObjectID, from time.Time, limit int64) ([]domain.CalendarEvent, error)
	ListInRange(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.CalendarEvent, error)
	// DeleteScheduledFrom removes scheduled events starting at or after from.
	DeleteScheduledFrom(ctx context.Context, userID primitive.ObjectID, from time.Time) (int64, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.EventStatus) error
}

// WorkoutInstanceRepository stores every version of a session's workout instance.
type WorkoutInstanceRepository interface {
	Create(ctx context.Context, instance *domain.WorkoutInstance) (primitive.ObjectID, error)
	// GetLatest returns the highest version for the session, or ErrNotFound.
	GetLatest(ctx context.Context, sessionID primitive.ObjectID) (*domain.WorkoutInstance, error)
}

// SessionRepository stores training sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.TrainingSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingSession, error)
	Update(ctx context.Context, session *domain.TrainingSession) error
	// ListStartedInRange returns the user's sessions started within [from, to], oldest first.
	ListStartedInRange(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.TrainingSession, error)
}

// SessionEventRepository is the append-only session log.
type SessionEventRepository interface {
	Append(ctx context.Context, event *domain.SessionEvent) (primitive.ObjectID, error)
	// ListBySession returns the log in append order.
	ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.SessionEvent, error)
}

// ReviewRunRepository stores the audit trail of weekly reviews.
type ReviewRunRepository interface {
	Create(ctx context.Context, run *domain.ReviewRun) (primitive.ObjectID, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.ReviewRun, error)
}
