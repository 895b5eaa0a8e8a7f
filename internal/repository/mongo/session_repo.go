package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/coach-core/internal/domain"
	"alcyxob/coach-core/internal/repository"
)

const (
	sessionCollectionName      = "training_sessions"
	sessionEventCollectionName = "session_events"
)

type mongoSessionRepository struct {
	store
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new TrainingSession repository.
func NewMongoSessionRepository(db *mongo.Database, timeout time.Duration) repository.SessionRepository {
	return &mongoSessionRepository{
		store:      store{timeout: timeout},
		collection: db.Collection(sessionCollectionName),
	}
}

func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.TrainingSession) (primitive.ObjectID, error) {
	if session.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session requires userId")
	}
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if session.StartedAt == nil {
		session.StartedAt = &now
	}
	session.UpdatedAt = &now

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, wrap(err)
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session ID")
	}
	return insertedID, nil
}

func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingSession, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var session domain.TrainingSession
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, wrap(err)
	}
	return &session, nil
}

// Update rewrites the mutable fields of a session.
func (r *mongoSessionRepository) Update(ctx context.Context, session *domain.TrainingSession) error {
	if session.ID == primitive.NilObjectID {
		return errors.New("session ID is required for update")
	}
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	updateDoc := bson.M{
		"$set": bson.M{
			"status":       session.Status,
			"energyRating": session.EnergyRating,
			"notes":        session.Notes,
			"updatedAt":    session.UpdatedAt,
			"completedAt":  session.CompletedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": session.ID}, updateDoc)
	if err != nil {
		return wrap(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoSessionRepository) ListStartedInRange(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.TrainingSession, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	filter := bson.M{
		"userId":    userID,
		"startedAt": bson.M{"$gte": from, "$lte": to},
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startedAt", Value: 1}}))
	if err != nil {
		return nil, wrap(err)
	}
	defer cursor.Close(ctx)

	sessions := []domain.TrainingSession{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, wrap(err)
	}
	return sessions, nil
}

// EnsureSessionIndexes creates necessary indexes. Call during startup.
func EnsureSessionIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(sessionCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "startedAt", Value: 1}},
	})
	return err
}

type mongoSessionEventRepository struct {
	store
	collection *mongo.Collection
}

// NewMongoSessionEventRepository creates the append-only session log repository.
func NewMongoSessionEventRepository(db *mongo.Database, timeout time.Duration) repository.SessionEventRepository {
	return &mongoSessionEventRepository{
		store:      store{timeout: timeout},
		collection: db.Collection(sessionEventCollectionName),
	}
}

func (r *mongoSessionEventRepository) Append(ctx context.Context, event *domain.SessionEvent) (primitive.ObjectID, error) {
	if event.SessionID == primitive.NilObjectID || event.EventType == "" {
		return primitive.NilObjectID, errors.New("session event requires sessionId and eventType")
	}
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	event.ID = primitive.NewObjectID()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return primitive.NilObjectID, wrap(err)
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted event ID")
	}
	return insertedID, nil
}

func (r *mongoSessionEventRepository) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.SessionEvent, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	// ObjectIDs are monotonic per process, which breaks ties between equal timestamps.
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, findOptions)
	if err != nil {
		return nil, wrap(err)
	}
	defer cursor.Close(ctx)

	events := []domain.SessionEvent{}
	if err = cursor.All(ctx, &events); err != nil {
		return nil, wrap(err)
	}
	return events, nil
}

// EnsureSessionEventIndexes creates necessary indexes. Call during startup.
func EnsureSessionEventIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sessionId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "eventId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	_, err := db.Collection(sessionEventCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
