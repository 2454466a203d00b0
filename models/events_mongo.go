package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const opTimeout = 5 * time.Second

type mongoEventRepo struct {
	col *mongo.Collection
}

func NewMongoEventRepository(col *mongo.Collection) EventRepository {
	return &mongoEventRepo{col: col}
}

func (r *mongoEventRepo) Create(ctx context.Context, e *Event) (*Event, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	NormalizeEvent(e)
	if err := ValidateEvent(e, true); err != nil {
		return nil, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OrganizerID == "" {
		e.OrganizerID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *mongoEventRepo) FindByPublicID(ctx context.Context, id string) (*Event, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var e Event
	if err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// UpdateByPublicID applies a partial update with re-validation. The
// public id, organizerId and createdAt cannot appear in an EventUpdate,
// so they survive any payload untouched.
func (r *mongoEventRepo) UpdateByPublicID(ctx context.Context, id string, u EventUpdate) (*Event, error) {
	cur, err := r.FindByPublicID(ctx, id)
	if err != nil || cur == nil {
		return nil, err
	}

	if u.Name != nil {
		cur.Name = *u.Name
	}
	if u.Date != nil {
		cur.Date = *u.Date
	}
	if u.Location != nil {
		cur.Location = *u.Location
	}
	if u.Status != nil {
		cur.Status = *u.Status
	}
	if u.ConfirmationDeadline != nil {
		cur.ConfirmationDeadline = u.ConfirmationDeadline
	}
	if u.EstimatedParticipants != nil {
		cur.EstimatedParticipants = *u.EstimatedParticipants
	}

	NormalizeEvent(cur)
	if err := ValidateEvent(cur, false); err != nil {
		return nil, err
	}
	cur.UpdatedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if _, err := r.col.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": cur}); err != nil {
		return nil, err
	}
	return cur, nil
}

// SoftDeleteByPublicID flips the status to cancelled; the document is
// never removed. Calling it again on a cancelled event is a no-op that
// still returns the event.
func (r *mongoEventRepo) SoftDeleteByPublicID(ctx context.Context, id string) (*Event, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	after := options.After
	var e Event
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"status": StatusCancelled, "updatedAt": time.Now().UTC()}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *mongoEventRepo) List(ctx context.Context, f EventFilter) ([]Event, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetSkip(f.Offset)
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
