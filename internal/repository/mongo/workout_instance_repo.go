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
	"alcyxob/coach-core/internal/workout"
)

const workoutInstanceCollectionName = "workout_instances"

// workoutInstanceDoc reads exercises loosely so older documents with aliased field names
// still load; they are normalized on the way out.
type workoutInstanceDoc struct {
	ID                   primitive.ObjectID      `bson:"_id"`
	SessionID            primitive.ObjectID      `bson:"sessionId"`
	UserID               primitive.ObjectID      `bson:"userId"`
	Version              int                     `bson:"version"`
	Title                string                  `bson:"title"`
	EstimatedDurationMin int                     `bson:"estimatedDurationMin"`
	DurationMin          int                     `bson:"duration_min,omitempty"`
	Focus                []string                `bson:"focus"`
	Exercises            []bson.M                `bson:"exercises"`
	Metadata             domain.InstanceMetadata `bson:"metadata"`
	CreatedAt            time.Time               `bson:"createdAt"`
}

func (d workoutInstanceDoc) toDomain() domain.WorkoutInstance {
	inst := domain.WorkoutInstance{
		ID:                   d.ID,
		SessionID:            d.SessionID,
		UserID:               d.UserID,
		Version:              d.Version,
		Title:                d.Title,
		EstimatedDurationMin: d.EstimatedDurationMin,
		Focus:                d.Focus,
		Exercises:            make([]domain.Exercise, 0, len(d.Exercises)),
		Metadata:             d.Metadata,
		CreatedAt:            d.CreatedAt,
	}
	if inst.Title == "" {
		inst.Title = workout.DefaultTitle
	}
	if inst.Focus == nil {
		inst.Focus = []string{}
	}
	for _, raw := range d.Exercises {
		inst.Exercises = append(inst.Exercises, workout.NormalizeExercise(raw))
	}
	if inst.EstimatedDurationMin <= 0 {
		inst.EstimatedDurationMin = d.DurationMin
	}
	if inst.EstimatedDurationMin <= 0 {
		inst.EstimatedDurationMin = workout.EstimateWorkoutDuration(inst)
	}
	return inst
}

type mongoWorkoutInstanceRepository struct {
	store
	collection *mongo.Collection
}

// NewMongoWorkoutInstanceRepository creates a new WorkoutInstance repository.
func NewMongoWorkoutInstanceRepository(db *mongo.Database, timeout time.Duration) repository.WorkoutInstanceRepository {
	return &mongoWorkoutInstanceRepository{
		store:      store{timeout: timeout},
		collection: db.Collection(workoutInstanceCollectionName),
	}
}

// Create inserts a full instance snapshot. The caller picks the version.
func (r *mongoWorkoutInstanceRepository) Create(ctx context.Context, instance *domain.WorkoutInstance) (primitive.ObjectID, error) {
	if instance.SessionID == primitive.NilObjectID || instance.Version < 1 {
		return primitive.NilObjectID, errors.New("workout instance requires sessionId and a positive version")
	}
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	instance.ID = primitive.NewObjectID()
	instance.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, instance)
	if err != nil {
		return primitive.NilObjectID, wrap(err)
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted instance ID")
	}
	return insertedID, nil
}

func (r *mongoWorkoutInstanceRepository) GetLatest(ctx context.Context, sessionID primitive.ObjectID) (*domain.WorkoutInstance, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var doc workoutInstanceDoc
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}, {Key: "createdAt", Value: -1}})
	if err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, wrap(err)
	}
	inst := doc.toDomain()
	return &inst, nil
}

// EnsureWorkoutInstanceIndexes creates necessary indexes. Call during startup.
// (sessionId, version) is not unique. Racing actions both persist and the newer createdAt
// is read back as latest.
func EnsureWorkoutInstanceIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(workoutInstanceCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sessionId", Value: 1}, {Key: "version", Value: -1}},
	})
	return err
}
