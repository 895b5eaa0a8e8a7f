package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/coach-core/internal/domain"
	"alcyxob/coach-core/internal/repository"
	"alcyxob/coach-core/internal/schedule"
)

const (
	calendarEventCollectionName  = "calendar_events"
	plannedSessionCollectionName = "planned_sessions"
)

// calendarEventDoc is the stored event; its planned session lives in planned_sessions.
type calendarEventDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	UserID         primitive.ObjectID `bson:"userId"`
	EventType      string             `bson:"eventType"`
	StartAt        time.Time          `bson:"startAt"`
	Status         domain.EventStatus `bson:"status"`
	ProgramVersion int                `bson:"programVersion,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

type plannedSessionDoc struct {
	ID                    primitive.ObjectID `bson:"_id"`
	EventID               primitive.ObjectID `bson:"eventId"`
	UserID                primitive.ObjectID `bson:"userId"`
	domain.PlannedSession `bson:",inline"`
}

type mongoCalendarEventRepository struct {
	store
	events  *mongo.Collection
	planned *mongo.Collection
}

// NewMongoCalendarEventRepository creates a new CalendarEvent repository.
func NewMongoCalendarEventRepository(db *mongo.Database, timeout time.Duration) repository.CalendarEventRepository {
	return &mongoCalendarEventRepository{
		store:   store{timeout: timeout},
		events:  db.Collection(calendarEventCollectionName),
		planned: db.Collection(plannedSessionCollectionName),
	}
}

// CreateMany inserts events and their planned sessions. IDs and CreatedAt are assigned here.
func (r *mongoCalendarEventRepository) CreateMany(ctx context.Context, events []domain.CalendarEvent) error {
	if len(events) == 0 {
		return nil
	}
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	now := time.Now().UTC()
	eventDocs := make([]interface{}, 0, len(events))
	plannedDocs := make([]interface{}, 0, len(events))
	for i := range events {
		ev := &events[i]
		ev.ID = primitive.NewObjectID()
		ev.CreatedAt = now
		eventDocs = append(eventDocs, calendarEventDoc{
			ID:             ev.ID,
			UserID:         ev.UserID,
			EventType:      ev.EventType,
			StartAt:        ev.StartAt,
			Status:         ev.Status,
			ProgramVersion: ev.ProgramVersion,
			CreatedAt:      now,
		})
		if ev.PlannedSession != nil {
			plannedDocs = append(plannedDocs, plannedSessionDoc{
				ID:             primitive.NewObjectID(),
				EventID:        ev.ID,
				UserID:         ev.UserID,
				PlannedSession: *ev.PlannedSession,
			})
		}
	}

	if _, err := r.events.InsertMany(ctx, eventDocs); err != nil {
		return wrap(err)
	}
	if len(plannedDocs) > 0 {
		if _, err := r.planned.InsertMany(ctx, plannedDocs); err != nil {
			return wrap(err)
		}
	}
	return nil
}

func (r *mongoCalendarEventRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CalendarEvent, error) {
	events, err := r.aggregate(ctx, bson.M{"_id": id}, 1)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, repository.ErrNotFound
	}
	return &events[0], nil
}

func (r *mongoCalendarEventRepository) ListUpcoming(ctx context.Context, userID primitive.ObjectID, from time.Time, limit int64) ([]domain.CalendarEvent, error) {
	return r.aggregate(ctx, bson.M{
		"userId":  userID,
		"status":  domain.EventScheduled,
		"startAt": bson.M{"$gte": from},
	}, limit)
}

func (r *mongoCalendarEventRepository) ListInRange(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.CalendarEvent, error) {
	return r.aggregate(ctx, bson.M{
		"userId":  userID,
		"startAt": bson.M{"$gte": from, "$lte": to},
	}, 0)
}

// aggregate joins planned_sessions onto matching events and collapses the join with
// schedule.NormalizeEvent before decoding.
func (r *mongoCalendarEventRepository) aggregate(ctx context.Context, match bson.M, limit int64) ([]domain.CalendarEvent, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "startAt", Value: 1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: bson.M{
		"from":         plannedSessionCollectionName,
		"localField":   "_id",
		"foreignField": "eventId",
		"as":           schedule.PlannedSessionsJoinKey,
	}}})

	cursor, err := r.events.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrap(err)
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err = cursor.All(ctx, &raw); err != nil {
		return nil, wrap(err)
	}

	events := make([]domain.CalendarEvent, 0, len(raw))
	for _, doc := range raw {
		ev, err := decodeEvent(schedule.NormalizeEvent(doc))
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func decodeEvent(doc map[string]any) (domain.CalendarEvent, error) {
	var ev domain.CalendarEvent
	data, err := bson.Marshal(doc)
	if err != nil {
		return ev, err
	}
	err = bson.Unmarshal(data, &ev)
	return ev, err
}

func (r *mongoCalendarEventRepository) DeleteScheduledFrom(ctx context.Context, userID primitive.ObjectID, from time.Time) (int64, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	filter := bson.M{
		"userId":  userID,
		"status":  domain.EventScheduled,
		"startAt": bson.M{"$gte": from},
	}
	cursor, err := r.events.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, wrap(err)
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return 0, wrap(err)
	}
	if len(docs) == 0 {
		return 0, nil
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}

	res, err := r.events.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, wrap(err)
	}
	if _, err = r.planned.DeleteMany(ctx, bson.M{"eventId": bson.M{"$in": ids}}); err != nil {
		return res.DeletedCount, wrap(err)
	}
	return res.DeletedCount, nil
}

func (r *mongoCalendarEventRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.EventStatus) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	result, err := r.events.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return wrap(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureCalendarIndexes creates necessary indexes. Call during startup.
func EnsureCalendarIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(calendarEventCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}, {Key: "startAt", Value: 1}},
	}); err != nil {
		return err
	}
	_, err := db.Collection(plannedSessionCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "eventId", Value: 1}},
	})
	return err
}
