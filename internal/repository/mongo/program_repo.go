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

const programCollectionName = "programs"

// mongoProgramRepository implements repository.ProgramRepository
type mongoProgramRepository struct {
	store
	collection *mongo.Collection
}

// NewMongoProgramRepository creates a new Program repository.
func NewMongoProgramRepository(db *mongo.Database, timeout time.Duration) repository.ProgramRepository {
	return &mongoProgramRepository{
		store:      store{timeout: timeout},
		collection: db.Collection(programCollectionName),
	}
}

// Create inserts a new program version. Versions are never updated in place.
func (r *mongoProgramRepository) Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error) {
	if program.UserID == primitive.NilObjectID || program.Version < 1 {
		return primitive.NilObjectID, errors.New("program requires userId and a positive version")
	}
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	program.ID = primitive.NewObjectID()
	program.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, program)
	if err != nil {
		return primitive.NilObjectID, wrap(err)
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted program ID")
	}
	return insertedID, nil
}

func (r *mongoProgramRepository) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Program, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var program domain.Program
	filter := bson.M{"userId": userID, "status": domain.ProgramActive}
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&program); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, wrap(err)
	}
	return &program, nil
}

func (r *mongoProgramRepository) GetLatestVersion(ctx context.Context, userID primitive.ObjectID) (int, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var latest struct {
		Version int `bson:"version"`
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "version", Value: -1}}).
		SetProjection(bson.M{"version": 1})
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&latest)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, wrap(err)
	}
	return latest.Version, nil
}

func (r *mongoProgramRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Program, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "version", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, wrap(err)
	}
	defer cursor.Close(ctx)

	programs := []domain.Program{}
	if err = cursor.All(ctx, &programs); err != nil {
		return nil, wrap(err)
	}
	return programs, nil
}

func (r *mongoProgramRepository) SupersedeActive(ctx context.Context, userID, keepID primitive.ObjectID) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	filter := bson.M{
		"userId": userID,
		"status": domain.ProgramActive,
		"_id":    bson.M{"$ne": keepID},
	}
	update := bson.M{"$set": bson.M{"status": domain.ProgramSuperseded}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return wrap(err)
}

func (r *mongoProgramRepository) DistinctActiveUsers(ctx context.Context) ([]primitive.ObjectID, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "userId", bson.M{"status": domain.ProgramActive})
	if err != nil {
		return nil, wrap(err)
	}
	users := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			users = append(users, id)
		}
	}
	return users, nil
}

// EnsureProgramIndexes creates necessary indexes. Call during startup.
func EnsureProgramIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "version", Value: -1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "userId", Value: 1}},
		},
	}
	_, err := db.Collection(programCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
