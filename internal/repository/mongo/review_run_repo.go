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

const reviewRunCollectionName = "review_runs"

type mongoReviewRunRepository struct {
	store
	collection *mongo.Collection
}

// NewMongoReviewRunRepository creates a new ReviewRun repository.
func NewMongoReviewRunRepository(db *mongo.Database, timeout time.Duration) repository.ReviewRunRepository {
	return &mongoReviewRunRepository{
		store:      store{timeout: timeout},
		collection: db.Collection(reviewRunCollectionName),
	}
}

func (r *mongoReviewRunRepository) Create(ctx context.Context, run *domain.ReviewRun) (primitive.ObjectID, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	run.ID = primitive.NewObjectID()
	run.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, run)
	if err != nil {
		return primitive.NilObjectID, wrap(err)
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted review run ID")
	}
	return insertedID, nil
}

func (r *mongoReviewRunRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.ReviewRun, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, wrap(err)
	}
	defer cursor.Close(ctx)

	runs := []domain.ReviewRun{}
	if err = cursor.All(ctx, &runs); err != nil {
		return nil, wrap(err)
	}
	return runs, nil
}

// EnsureReviewRunIndexes creates necessary indexes. Call during startup.
func EnsureReviewRunIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "batchId", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	_, err := db.Collection(reviewRunCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
