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

type mongoItemRepo struct {
	col *mongo.Collection
}

func NewMongoItemRepository(col *mongo.Collection) ItemRepository {
	return &mongoItemRepo{col: col}
}

func (r *mongoItemRepo) Create(ctx context.Context, it *EventItem) (*EventItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	NormalizeItem(it)
	if err := ValidateItem(it); err != nil {
		return nil, err
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	it.CreatedAt = now
	it.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (r *mongoItemRepo) FindByPublicID(ctx context.Context, id string) (*EventItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var it EventItem
	if err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&it); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

func (r *mongoItemRepo) UpdateByPublicID(ctx context.Context, id string, u ItemUpdate) (*EventItem, error) {
	cur, err := r.FindByPublicID(ctx, id)
	if err != nil || cur == nil {
		return nil, err
	}
	applyItemUpdate(cur, u)
	return r.save(ctx, cur)
}

func applyItemUpdate(it *EventItem, u ItemUpdate) {
	if u.Name != nil {
		it.Name = *u.Name
	}
	if u.Category != nil {
		it.Category = *u.Category
	}
	if u.Quantity != nil {
		it.Quantity = *u.Quantity
	}
	if u.Unit != nil {
		it.Unit = *u.Unit
	}
	if u.EstimatedCost != nil {
		it.EstimatedCost = *u.EstimatedCost
	}
	if u.ActualCost != nil {
		it.ActualCost = u.ActualCost
	}
	if u.AssignedTo != nil {
		it.AssignedTo = *u.AssignedTo
	}
	if u.IsPurchased != nil {
		it.IsPurchased = *u.IsPurchased
	}
}

func (r *mongoItemRepo) save(ctx context.Context, it *EventItem) (*EventItem, error) {
	NormalizeItem(it)
	if err := ValidateItem(it); err != nil {
		return nil, err
	}
	it.UpdatedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if _, err := r.col.UpdateOne(ctx, bson.M{"id": it.ID}, bson.M{"$set": it}); err != nil {
		return nil, err
	}
	return it, nil
}

func (r *mongoItemRepo) DeleteByPublicID(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *mongoItemRepo) ListByEvent(ctx context.Context, eventID string, f ItemFilter) ([]EventItem, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"eventId": eventID}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Purchased != nil {
		filter["isPurchased"] = *f.Purchased
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}}).
		SetSkip(f.Offset)
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	items := []EventItem{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *mongoItemRepo) ListTemplates(ctx context.Context) ([]EventItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"isTemplate": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := []EventItem{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkPurchased flags the item bought. Without an explicit actual cost
// the estimate is taken, once; re-saving never changes it again.
func (r *mongoItemRepo) MarkPurchased(ctx context.Context, id string, actualCost *int64) (*EventItem, error) {
	cur, err := r.FindByPublicID(ctx, id)
	if err != nil || cur == nil {
		return nil, err
	}
	cur.IsPurchased = true
	if actualCost != nil {
		cur.ActualCost = actualCost
	}
	return r.save(ctx, cur)
}

func (r *mongoItemRepo) Assign(ctx context.Context, id, assignee string) (*EventItem, error) {
	cur, err := r.FindByPublicID(ctx, id)
	if err != nil || cur == nil {
		return nil, err
	}
	cur.AssignedTo = assignee
	return r.save(ctx, cur)
}

// MaterializeTemplate copies a reusable template into a concrete item
// bound to the given event. Event-specific state starts clean.
func (r *mongoItemRepo) MaterializeTemplate(ctx context.Context, templateID, eventID string, overrides ItemUpdate) (*EventItem, error) {
	tpl, err := r.FindByPublicID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if tpl == nil || !tpl.IsTemplate {
		return nil, nil
	}

	item := &EventItem{
		EventID:       eventID,
		Name:          tpl.Name,
		Category:      tpl.Category,
		Quantity:      tpl.Quantity,
		Unit:          tpl.Unit,
		EstimatedCost: tpl.EstimatedCost,
	}
	applyItemUpdate(item, overrides)
	item.IsTemplate = false
	return r.Create(ctx, item)
}

// SnapshotTemplate is the reverse: a new template from an existing
// item, event-specific fields stripped.
func (r *mongoItemRepo) SnapshotTemplate(ctx context.Context, itemID string) (*EventItem, error) {
	it, err := r.FindByPublicID(ctx, itemID)
	if err != nil || it == nil {
		return nil, err
	}

	tpl := &EventItem{
		Name:          it.Name,
		Category:      it.Category,
		Quantity:      it.Quantity,
		Unit:          it.Unit,
		EstimatedCost: it.EstimatedCost,
		IsTemplate:    true,
	}
	return r.Create(ctx, tpl)
}

// StatsByEvent aggregates totals and the per-category breakdown in one
// pipeline pass, grouped by category and folded client-side.
func (r *mongoItemRepo) StatsByEvent(ctx context.Context, eventID string) (*ItemStats, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"eventId": eventID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$category",
			"count": bson.M{"$sum": 1},
			"purchased": bson.M{"$sum": bson.M{
				"$cond": bson.A{"$isPurchased", 1, 0},
			}},
			"assigned": bson.M{"$sum": bson.M{
				"$cond": bson.A{
					bson.M{"$ne": bson.A{bson.M{"$ifNull": bson.A{"$assignedTo", ""}}, ""}}, 1, 0,
				},
			}},
			"estimated": bson.M{"$sum": bson.M{
				"$multiply": bson.A{"$quantity", "$estimatedCost"},
			}},
			"actual": bson.M{"$sum": bson.M{
				"$multiply": bson.A{"$quantity", bson.M{"$ifNull": bson.A{"$actualCost", 0}}},
			}},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Category  string  `bson:"_id"`
		Count     int64   `bson:"count"`
		Purchased int64   `bson:"purchased"`
		Assigned  int64   `bson:"assigned"`
		Estimated float64 `bson:"estimated"`
		Actual    float64 `bson:"actual"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := &ItemStats{Categories: map[string]CategoryCost{}}
	for _, row := range rows {
		stats.TotalItems += row.Count
		stats.PurchasedItems += row.Purchased
		stats.AssignedItems += row.Assigned
		stats.TotalEstimatedCost += row.Estimated
		stats.TotalActualCost += row.Actual
		stats.Categories[row.Category] = CategoryCost{
			EstimatedCost: row.Estimated,
			ActualCost:    row.Actual,
		}
	}
	return stats, nil
}
