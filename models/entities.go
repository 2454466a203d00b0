// Package models defines the ChurrasApp entities, their single source
// of validation truth and the Mongo-backed repositories.
package models

import (
	"context"
	"encoding/json"
	"math"
	"time"
)

// Event is a planned barbecue. The public id is a UUID independent of
// the storage-internal _id; callers never see the latter.
type Event struct {
	ID                    string     `bson:"id" json:"id"`
	Name                  string     `bson:"name" json:"name"`
	Date                  time.Time  `bson:"date" json:"date"`
	Location              string     `bson:"location" json:"location"`
	OrganizerID           string     `bson:"organizerId" json:"organizerId"`
	Status                string     `bson:"status" json:"status"`
	ConfirmationDeadline  *time.Time `bson:"confirmationDeadline,omitempty" json:"confirmationDeadline,omitempty"`
	EstimatedParticipants int        `bson:"estimatedParticipants" json:"estimatedParticipants"`
	CreatedAt             time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// DaysUntilEvent counts whole days until the event, rounding up.
func (e *Event) DaysUntilEvent() int {
	return int(math.Ceil(time.Until(e.Date).Hours() / 24))
}

// IsConfirmationOpen reports whether guests can still confirm.
func (e *Event) IsConfirmationOpen() bool {
	if e.ConfirmationDeadline == nil {
		return true
	}
	return time.Now().Before(*e.ConfirmationDeadline)
}

func (e *Event) CanBeEdited() bool {
	return e.Status == StatusDraft || (e.Status == StatusActive && e.DaysUntilEvent() > 0)
}

func (e *Event) CanBeCancelled() bool {
	return (e.Status == StatusDraft || e.Status == StatusActive) && e.DaysUntilEvent() > 0
}

// MarshalJSON includes the derived read-only fields alongside the
// stored ones, mirroring what API consumers see on every read.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	return json.Marshal(struct {
		alias
		DaysUntilEvent     int  `json:"daysUntilEvent"`
		IsConfirmationOpen bool `json:"isConfirmationOpen"`
	}{alias(e), e.DaysUntilEvent(), e.IsConfirmationOpen()})
}

// Guest belongs to exactly one event, referenced by the event's public
// id rather than an embedded document.
type Guest struct {
	ID            string     `bson:"id" json:"id"`
	EventID       string     `bson:"eventId" json:"eventId"`
	Name          string     `bson:"name" json:"name"`
	Phone         string     `bson:"phone,omitempty" json:"phone,omitempty"`
	RSVPStatus    string     `bson:"rsvpStatus" json:"rsvpStatus"`
	PaymentStatus string     `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod string     `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	ConfirmedAt   *time.Time `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (g *Guest) IsConfirmed() bool { return g.RSVPStatus == RSVPYes }

func (g *Guest) HasPaid() bool { return g.PaymentStatus == PaymentPaid }

// DaysSinceConfirmation returns nil while the guest has not confirmed.
func (g *Guest) DaysSinceConfirmation() *int {
	if g.ConfirmedAt == nil {
		return nil
	}
	d := int(time.Since(*g.ConfirmedAt).Hours() / 24)
	return &d
}

func (g Guest) MarshalJSON() ([]byte, error) {
	type alias Guest
	return json.Marshal(struct {
		alias
		IsConfirmed           bool `json:"isConfirmed"`
		HasPaid               bool `json:"hasPaid"`
		DaysSinceConfirmation *int `json:"daysSinceConfirmation"`
	}{alias(g), g.IsConfirmed(), g.HasPaid(), g.DaysSinceConfirmation()})
}

// EventItem is either bound to an event (EventID set) or a reusable
// template (IsTemplate, no EventID) — never both. Costs are integer
// centavos; quantity may be fractional (kg).
type EventItem struct {
	ID            string    `bson:"id" json:"id"`
	EventID       string    `bson:"eventId,omitempty" json:"eventId,omitempty"`
	Name          string    `bson:"name" json:"name"`
	Category      string    `bson:"category" json:"category"`
	Quantity      float64   `bson:"quantity" json:"quantity"`
	Unit          string    `bson:"unit" json:"unit"`
	EstimatedCost int64     `bson:"estimatedCost" json:"estimatedCost"`
	ActualCost    *int64    `bson:"actualCost,omitempty" json:"actualCost,omitempty"`
	AssignedTo    string    `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	IsPurchased   bool      `bson:"isPurchased" json:"isPurchased"`
	IsTemplate    bool      `bson:"isTemplate" json:"isTemplate"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CostDifference is actual minus estimated unit cost, nil until an
// actual cost is known.
func (it *EventItem) CostDifference() *int64 {
	if it.ActualCost == nil {
		return nil
	}
	d := *it.ActualCost - it.EstimatedCost
	return &d
}

func (it *EventItem) IsOverBudget() bool {
	return it.ActualCost != nil && *it.ActualCost > it.EstimatedCost
}

func (it *EventItem) TotalEstimatedCost() float64 {
	return it.Quantity * float64(it.EstimatedCost)
}

func (it *EventItem) TotalActualCost() *float64 {
	if it.ActualCost == nil {
		return nil
	}
	t := it.Quantity * float64(*it.ActualCost)
	return &t
}

// PurchaseStatus is the display label: purchased, assigned or pending.
func (it *EventItem) PurchaseStatus() string {
	switch {
	case it.IsPurchased:
		return "purchased"
	case it.AssignedTo != "":
		return "assigned"
	default:
		return "pending"
	}
}

func (it EventItem) MarshalJSON() ([]byte, error) {
	type alias EventItem
	return json.Marshal(struct {
		alias
		CostDifference     *int64   `json:"costDifference"`
		IsOverBudget       bool     `json:"isOverBudget"`
		TotalEstimatedCost float64  `json:"totalEstimatedCost"`
		TotalActualCost    *float64 `json:"totalActualCost"`
		PurchaseStatus     string   `json:"purchaseStatus"`
	}{alias(it), it.CostDifference(), it.IsOverBudget(), it.TotalEstimatedCost(), it.TotalActualCost(), it.PurchaseStatus()})
}

// Partial updates. Protected fields (public id, parent reference,
// createdAt) are not representable here, so callers cannot overwrite
// them: unknown JSON keys are silently dropped at bind time.

type EventUpdate struct {
	Name                  *string    `json:"name"`
	Date                  *time.Time `json:"date"`
	Location              *string    `json:"location"`
	Status                *string    `json:"status"`
	ConfirmationDeadline  *time.Time `json:"confirmationDeadline"`
	EstimatedParticipants *int       `json:"estimatedParticipants"`
}

type GuestUpdate struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	RSVPStatus    *string `json:"rsvpStatus"`
	PaymentStatus *string `json:"paymentStatus"`
	PaymentMethod *string `json:"paymentMethod"`
}

type ItemUpdate struct {
	Name          *string  `json:"name"`
	Category      *string  `json:"category"`
	Quantity      *float64 `json:"quantity"`
	Unit          *string  `json:"unit"`
	EstimatedCost *int64   `json:"estimatedCost"`
	ActualCost    *int64   `json:"actualCost"`
	AssignedTo    *string  `json:"assignedTo"`
	IsPurchased   *bool    `json:"isPurchased"`
}

// List filters. Limit <= 0 means no limit.

type EventFilter struct {
	Status string
	Limit  int64
	Offset int64
}

type GuestFilter struct {
	RSVPStatus    string
	PaymentStatus string
	Limit         int64
	Offset        int64
}

type ItemFilter struct {
	Category  string
	Purchased *bool
	Limit     int64
	Offset    int64
}

// GuestStats is the one-pass RSVP/payment breakdown for an event.
type GuestStats struct {
	Total     int64 `bson:"total" json:"total"`
	Confirmed int64 `bson:"confirmed" json:"confirmed"`
	Declined  int64 `bson:"declined" json:"declined"`
	Pending   int64 `bson:"pending" json:"pending"`
	Maybe     int64 `bson:"maybe" json:"maybe"`
	Paid      int64 `bson:"paid" json:"paid"`
}

// CategoryCost totals quantity-weighted costs within one category.
type CategoryCost struct {
	EstimatedCost float64 `json:"estimatedCost"`
	ActualCost    float64 `json:"actualCost"`
}

// ItemStats aggregates an event's shopping list against its budget.
type ItemStats struct {
	TotalItems         int64                   `json:"totalItems"`
	PurchasedItems     int64                   `json:"purchasedItems"`
	AssignedItems      int64                   `json:"assignedItems"`
	TotalEstimatedCost float64                 `json:"totalEstimatedCost"`
	TotalActualCost    float64                 `json:"totalActualCost"`
	Categories         map[string]CategoryCost `json:"categoriesBreakdown"`
}

// Repositories return (nil, nil) for lookups that find nothing; absence
// is not an error.

type EventRepository interface {
	Create(ctx context.Context, e *Event) (*Event, error)
	FindByPublicID(ctx context.Context, id string) (*Event, error)
	UpdateByPublicID(ctx context.Context, id string, u EventUpdate) (*Event, error)
	SoftDeleteByPublicID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, f EventFilter) ([]Event, int64, error)
}

type GuestRepository interface {
	Create(ctx context.Context, g *Guest) (*Guest, error)
	FindByPublicID(ctx context.Context, id string) (*Guest, error)
	UpdateByPublicID(ctx context.Context, id string, u GuestUpdate) (*Guest, error)
	DeleteByPublicID(ctx context.Context, id string) (bool, error)
	ListByEvent(ctx context.Context, eventID string, f GuestFilter) ([]Guest, int64, error)
	UpdateRSVP(ctx context.Context, id, status string) (*Guest, error)
	MarkPaid(ctx context.Context, id, method string) (*Guest, error)
	StatsByEvent(ctx context.Context, eventID string) (*GuestStats, error)
}

type ItemRepository interface {
	Create(ctx context.Context, it *EventItem) (*EventItem, error)
	FindByPublicID(ctx context.Context, id string) (*EventItem, error)
	UpdateByPublicID(ctx context.Context, id string, u ItemUpdate) (*EventItem, error)
	DeleteByPublicID(ctx context.Context, id string) (bool, error)
	ListByEvent(ctx context.Context, eventID string, f ItemFilter) ([]EventItem, int64, error)
	ListTemplates(ctx context.Context) ([]EventItem, error)
	MarkPurchased(ctx context.Context, id string, actualCost *int64) (*EventItem, error)
	Assign(ctx context.Context, id, assignee string) (*EventItem, error)
	MaterializeTemplate(ctx context.Context, templateID, eventID string, overrides ItemUpdate) (*EventItem, error)
	SnapshotTemplate(ctx context.Context, itemID string) (*EventItem, error)
	StatsByEvent(ctx context.Context, eventID string) (*ItemStats, error)
}
