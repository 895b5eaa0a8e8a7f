package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"alcyxob/coach-core/internal/repository"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and pings the
// primary before returning.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. Call during startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ensure := []func(context.Context, *mongo.Database) error{
		EnsureProgramIndexes,
		EnsureWeightsProfileIndexes,
		EnsureCalendarIndexes,
		EnsureWorkoutInstanceIndexes,
		EnsureSessionIndexes,
		EnsureSessionEventIndexes,
		EnsureReviewRunIndexes,
	}
	for _, fn := range ensure {
		if err := fn(ctx, db); err != nil {
			return err
		}
	}
	return nil
}

// store carries the per-call timeout shared by every repository.
type store struct {
	timeout time.Duration
}

func (s store) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.timeout)
}

// wrap marks deadline expiry as repository.ErrTimeout and passes everything else through.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) {
		return fmt.Errorf("%w: %v", repository.ErrTimeout, err)
	}
	return err
}
