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

type mongoGuestRepo struct {
	col    *mongo.Collection
	events EventRepository
}

// NewMongoGuestRepository needs the event repository for the pre-save
// parent-existence check.
func NewMongoGuestRepository(col *mongo.Collection, events EventRepository) GuestRepository {
	return &mongoGuestRepo{col: col, events: events}
}

func (r *mongoGuestRepo) Create(ctx context.Context, g *Guest) (*Guest, error) {
	NormalizeGuest(g)
	if err := ValidateGuest(g); err != nil {
		return nil, err
	}

	// A guest only joins a real, non-cancelled event.
	ev, err := r.events.FindByPublicID(ctx, g.EventID)
	if err != nil {
		return nil, err
	}
	if ev == nil || ev.Status == StatusCancelled {
		return nil, ValidationErrors{{Field: "eventId", Message: "Evento não encontrado ou cancelado"}}
	}

	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if _, err := r.col.InsertOne(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *mongoGuestRepo) FindByPublicID(ctx context.Context, id string) (*Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var g Guest
	if err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *mongoGuestRepo) UpdateByPublicID(ctx context.Context, id string, u GuestUpdate) (*Guest, error) {
	cur, err := r.FindByPublicID(ctx, id)
	if err != nil || cur == nil {
		return nil, err
	}

	if u.Name != nil {
		cur.Name = *u.Name
	}
	if u.Phone != nil {
		cur.Phone = *u.Phone
	}
	if u.RSVPStatus != nil {
		cur.RSVPStatus = *u.RSVPStatus
	}
	if u.PaymentStatus != nil {
		cur.PaymentStatus = *u.PaymentStatus
	}
	if u.PaymentMethod != nil {
		cur.PaymentMethod = *u.PaymentMethod
	}

	return r.save(ctx, cur)
}

func (r *mongoGuestRepo) save(ctx context.Context, g *Guest) (*Guest, error) {
	NormalizeGuest(g)
	if err := ValidateGuest(g); err != nil {
		return nil, err
	}
	g.UpdatedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	// confirmedAt may have been cleared by normalization; replace the
	// document fields rather than merging so the unset sticks.
	update := bson.M{
		"$set": bson.M{
			"name":          g.Name,
			"phone":         g.Phone,
			"rsvpStatus":    g.RSVPStatus,
			"paymentStatus": g.PaymentStatus,
			"paymentMethod": g.PaymentMethod,
			"updatedAt":     g.UpdatedAt,
		},
	}
	if g.ConfirmedAt != nil {
		update["$set"].(bson.M)["confirmedAt"] = g.ConfirmedAt
	} else {
		update["$unset"] = bson.M{"confirmedAt": ""}
	}
	if _, err := r.col.UpdateOne(ctx, bson.M{"id": g.ID}, update); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *mongoGuestRepo) DeleteByPublicID(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *mongoGuestRepo) ListByEvent(ctx context.Context, eventID string, f GuestFilter) ([]Guest, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"eventId": eventID}
	if f.RSVPStatus != "" {
		filter["rsvpStatus"] = f.RSVPStatus
	}
	if f.PaymentStatus != "" {
		filter["paymentStatus"] = f.PaymentStatus
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

	guests := []Guest{}
	if err := cur.All(ctx, &guests); err != nil {
		return nil, 0, err
	}
	return guests, total, nil
}

// UpdateRSVP changes the response and keeps confirmedAt in sync.
func (r *mongoGuestRepo) UpdateRSVP(ctx context.Context, id, status string) (*Guest, error) {
	cur, err := r.FindByPublicID(ctx, id)
	if err != nil || cur == nil {
		return nil, err
	}
	cur.RSVPStatus = status
	return r.save(ctx, cur)
}

// MarkPaid records the payment; validation enforces that a method
// accompanies it.
func (r *mongoGuestRepo) MarkPaid(ctx context.Context, id, method string) (*Guest, error) {
	cur, err := r.FindByPublicID(ctx, id)
	if err != nil || cur == nil {
		return nil, err
	}
	cur.PaymentStatus = PaymentPaid
	if method != "" {
		cur.PaymentMethod = method
	}
	return r.save(ctx, cur)
}

// StatsByEvent computes the RSVP/payment breakdown in a single
// aggregation pass.
func (r *mongoGuestRepo) StatsByEvent(ctx context.Context, eventID string) (*GuestStats, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	count := func(field, value string) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$" + field, value}}, 1, 0}}}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"eventId": eventID}}},
		{{Key: "$group", Value: bson.M{
			"_id":       nil,
			"total":     bson.M{"$sum": 1},
			"confirmed": count("rsvpStatus", RSVPYes),
			"declined":  count("rsvpStatus", RSVPNo),
			"pending":   count("rsvpStatus", RSVPPending),
			"maybe":     count("rsvpStatus", RSVPMaybe),
			"paid":      count("paymentStatus", PaymentPaid),
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []GuestStats
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &GuestStats{}, nil
	}
	return &rows[0], nil
}
