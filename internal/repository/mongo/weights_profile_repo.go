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

const weightsProfileCollectionName = "weights_profiles"

type mongoWeightsProfileRepository struct {
	store
	collection *mongo.Collection
}

// NewMongoWeightsProfileRepository creates a new WeightsProfile repository.
func NewMongoWeightsProfileRepository(db *mongo.Database, timeout time.Duration) repository.WeightsProfileRepository {
	return &mongoWeightsProfileRepository{
		store:      store{timeout: timeout},
		collection: db.Collection(weightsProfileCollectionName),
	}
}

func (r *mongoWeightsProfileRepository) Create(ctx context.Context, profile *domain.WeightsProfile) (primitive.ObjectID, error) {
	if profile.UserID == primitive.NilObjectID || profile.Version < 1 {
		return primitive.NilObjectID, errors.New("weights profile requires userId and a positive version")
	}
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	profile.ID = primitive.NewObjectID()
	profile.CreatedAt = time.Now().UTC()
	if profile.Entries == nil {
		profile.Entries = []domain.WeightEntry{}
	}

	result, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		return primitive.NilObjectID, wrap(err)
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted profile ID")
	}
	return insertedID, nil
}

func (r *mongoWeightsProfileRepository) GetLatestByUser(ctx context.Context, userID primitive.ObjectID) (*domain.WeightsProfile, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var profile domain.WeightsProfile
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	if err := r.collection.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&profile); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, wrap(err)
	}
	return &profile, nil
}

// EnsureWeightsProfileIndexes creates necessary indexes. Call during startup.
func EnsureWeightsProfileIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(weightsProfileCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "version", Value: -1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
