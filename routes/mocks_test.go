package routes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"churrasapp/models"
)

// In-memory repositories mirroring the Mongo implementations'
// semantics (normalization, validation, protected fields, soft delete)
// so handlers can be exercised without a database.

type memEventRepo struct {
	mu     sync.Mutex
	events map[string]models.Event
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: map[string]models.Event{}}
}

func (r *memEventRepo) Create(_ context.Context, e *models.Event) (*models.Event, error) {
	models.NormalizeEvent(e)
	if err := models.ValidateEvent(e, true); err != nil {
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

	r.mu.Lock()
	r.events[e.ID] = *e
	r.mu.Unlock()
	return e, nil
}

func (r *memEventRepo) FindByPublicID(_ context.Context, id string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.events[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (r *memEventRepo) UpdateByPublicID(ctx context.Context, id string, u models.EventUpdate) (*models.Event, error) {
	cur, _ := r.FindByPublicID(ctx, id)
	if cur == nil {
		return nil, nil
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
	models.NormalizeEvent(cur)
	if err := models.ValidateEvent(cur, false); err != nil {
		return nil, err
	}
	cur.UpdatedAt = time.Now().UTC()

	r.mu.Lock()
	r.events[id] = *cur
	r.mu.Unlock()
	return cur, nil
}

func (r *memEventRepo) SoftDeleteByPublicID(ctx context.Context, id string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	e.Status = models.StatusCancelled
	e.UpdatedAt = time.Now().UTC()
	r.events[id] = e
	return &e, nil
}

func (r *memEventRepo) List(_ context.Context, f models.EventFilter) ([]models.Event, int64, error) {
	r.mu.Lock()
	all := make([]models.Event, 0, len(r.events))
	for _, e := range r.events {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		all = append(all, e)
	}
	r.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if f.Offset > 0 {
		if f.Offset >= total {
			return []models.Event{}, total, nil
		}
		all = all[f.Offset:]
	}
	if f.Limit > 0 && int64(len(all)) > f.Limit {
		all = all[:f.Limit]
	}
	return all, total, nil
}

type memGuestRepo struct {
	mu     sync.Mutex
	guests map[string]models.Guest
	events models.EventRepository
}

func newMemGuestRepo(events models.EventRepository) *memGuestRepo {
	return &memGuestRepo{guests: map[string]models.Guest{}, events: events}
}

func (r *memGuestRepo) Create(ctx context.Context, g *models.Guest) (*models.Guest, error) {
	models.NormalizeGuest(g)
	if err := models.ValidateGuest(g); err != nil {
		return nil, err
	}
	ev, err := r.events.FindByPublicID(ctx, g.EventID)
	if err != nil {
		return nil, err
	}
	if ev == nil || ev.Status == models.StatusCancelled {
		return nil, models.ValidationErrors{{Field: "eventId", Message: "Evento não encontrado ou cancelado"}}
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	r.mu.Lock()
	r.guests[g.ID] = *g
	r.mu.Unlock()
	return g, nil
}

func (r *memGuestRepo) FindByPublicID(_ context.Context, id string) (*models.Guest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.guests[id]; ok {
		return &g, nil
	}
	return nil, nil
}

func (r *memGuestRepo) save(g *models.Guest) (*models.Guest, error) {
	models.NormalizeGuest(g)
	if err := models.ValidateGuest(g); err != nil {
		return nil, err
	}
	g.UpdatedAt = time.Now().UTC()
	r.mu.Lock()
	r.guests[g.ID] = *g
	r.mu.Unlock()
	return g, nil
}

func (r *memGuestRepo) UpdateByPublicID(ctx context.Context, id string, u models.GuestUpdate) (*models.Guest, error) {
	cur, _ := r.FindByPublicID(ctx, id)
	if cur == nil {
		return nil, nil
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
	return r.save(cur)
}

func (r *memGuestRepo) DeleteByPublicID(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.guests[id]; !ok {
		return false, nil
	}
	delete(r.guests, id)
	return true, nil
}

func (r *memGuestRepo) ListByEvent(_ context.Context, eventID string, f models.GuestFilter) ([]models.Guest, int64, error) {
	r.mu.Lock()
	out := []models.Guest{}
	for _, g := range r.guests {
		if g.EventID != eventID {
			continue
		}
		if f.RSVPStatus != "" && g.RSVPStatus != f.RSVPStatus {
			continue
		}
		if f.PaymentStatus != "" && g.PaymentStatus != f.PaymentStatus {
			continue
		}
		out = append(out, g)
	}
	r.mu.Unlock()
	return out, int64(len(out)), nil
}

func (r *memGuestRepo) UpdateRSVP(ctx context.Context, id, status string) (*models.Guest, error) {
	cur, _ := r.FindByPublicID(ctx, id)
	if cur == nil {
		return nil, nil
	}
	cur.RSVPStatus = status
	return r.save(cur)
}

func (r *memGuestRepo) MarkPaid(ctx context.Context, id, method string) (*models.Guest, error) {
	cur, _ := r.FindByPublicID(ctx, id)
	if cur == nil {
		return nil, nil
	}
	cur.PaymentStatus = models.PaymentPaid
	if method != "" {
		cur.PaymentMethod = method
	}
	return r.save(cur)
}

func (r *memGuestRepo) StatsByEvent(ctx context.Context, eventID string) (*models.GuestStats, error) {
	guests, _, _ := r.ListByEvent(ctx, eventID, models.GuestFilter{})
	stats := &models.GuestStats{Total: int64(len(guests))}
	for _, g := range guests {
		switch g.RSVPStatus {
		case models.RSVPYes:
			stats.Confirmed++
		case models.RSVPNo:
			stats.Declined++
		case models.RSVPPending:
			stats.Pending++
		case models.RSVPMaybe:
			stats.Maybe++
		}
		if g.PaymentStatus == models.PaymentPaid {
			stats.Paid++
		}
	}
	return stats, nil
}

type memItemRepo struct {
	mu    sync.Mutex
	items map[string]models.EventItem
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: map[string]models.EventItem{}}
}

func (r *memItemRepo) Create(_ context.Context, it *models.EventItem) (*models.EventItem, error) {
	models.NormalizeItem(it)
	if err := models.ValidateItem(it); err != nil {
		return nil, err
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	it.CreatedAt = now
	it.UpdatedAt = now

	r.mu.Lock()
	r.items[it.ID] = *it
	r.mu.Unlock()
	return it, nil
}

func (r *memItemRepo) FindByPublicID(_ context.Context, id string) (*models.EventItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if it, ok := r.items[id]; ok {
		return &it, nil
	}
	return nil, nil
}

func (r *memItemRepo) save(it *models.EventItem) (*models.EventItem, error) {
	models.NormalizeItem(it)
	if err := models.ValidateItem(it); err != nil {
		return nil, err
	}
	it.UpdatedAt = time.Now().UTC()
	r.mu.Lock()
	r.items[it.ID] = *it
	r.mu.Unlock()
	return it, nil
}

func (r *memItemRepo) UpdateByPublicID(ctx context.Context, id string, u models.ItemUpdate) (*models.EventItem, error) {
	cur, _ := r.FindByPublicID(ctx, id)
	if cur == nil {
		return nil, nil
	}
	applyMemItemUpdate(cur, u)
	return r.save(cur)
}

func applyMemItemUpdate(it *models.EventItem, u models.ItemUpdate) {
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

func (r *memItemRepo) DeleteByPublicID(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func (r *memItemRepo) ListByEvent(_ context.Context, eventID string, f models.ItemFilter) ([]models.EventItem, int64, error) {
	r.mu.Lock()
	out := []models.EventItem{}
	for _, it := range r.items {
		if it.EventID != eventID {
			continue
		}
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		if f.Purchased != nil && it.IsPurchased != *f.Purchased {
			continue
		}
		out = append(out, it)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return strings.Compare(out[i].Category, out[j].Category) < 0
		}
		return strings.Compare(out[i].Name, out[j].Name) < 0
	})
	return out, int64(len(out)), nil
}

func (r *memItemRepo) ListTemplates(_ context.Context) ([]models.EventItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.EventItem{}
	for _, it := range r.items {
		if it.IsTemplate {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *memItemRepo) MarkPurchased(ctx context.Context, id string, actualCost *int64) (*models.EventItem, error) {
	cur, _ := r.FindByPublicID(ctx, id)
	if cur == nil {
		return nil, nil
	}
	cur.IsPurchased = true
	if actualCost != nil {
		cur.ActualCost = actualCost
	}
	return r.save(cur)
}

func (r *memItemRepo) Assign(ctx context.Context, id, assignee string) (*models.EventItem, error) {
	cur, _ := r.FindByPublicID(ctx, id)
	if cur == nil {
		return nil, nil
	}
	cur.AssignedTo = assignee
	return r.save(cur)
}

func (r *memItemRepo) MaterializeTemplate(ctx context.Context, templateID, eventID string, overrides models.ItemUpdate) (*models.EventItem, error) {
	tpl, _ := r.FindByPublicID(ctx, templateID)
	if tpl == nil || !tpl.IsTemplate {
		return nil, nil
	}
	item := &models.EventItem{
		EventID:       eventID,
		Name:          tpl.Name,
		Category:      tpl.Category,
		Quantity:      tpl.Quantity,
		Unit:          tpl.Unit,
		EstimatedCost: tpl.EstimatedCost,
	}
	applyMemItemUpdate(item, overrides)
	item.IsTemplate = false
	return r.Create(ctx, item)
}

func (r *memItemRepo) SnapshotTemplate(ctx context.Context, itemID string) (*models.EventItem, error) {
	it, _ := r.FindByPublicID(ctx, itemID)
	if it == nil {
		return nil, nil
	}
	tpl := &models.EventItem{
		Name:          it.Name,
		Category:      it.Category,
		Quantity:      it.Quantity,
		Unit:          it.Unit,
		EstimatedCost: it.EstimatedCost,
		IsTemplate:    true,
	}
	return r.Create(ctx, tpl)
}

func (r *memItemRepo) StatsByEvent(ctx context.Context, eventID string) (*models.ItemStats, error) {
	items, _, _ := r.ListByEvent(ctx, eventID, models.ItemFilter{})
	stats := &models.ItemStats{Categories: map[string]models.CategoryCost{}}
	for _, it := range items {
		stats.TotalItems++
		if it.IsPurchased {
			stats.PurchasedItems++
		}
		if it.AssignedTo != "" {
			stats.AssignedItems++
		}
		est := it.Quantity * float64(it.EstimatedCost)
		var act float64
		if it.ActualCost != nil {
			act = it.Quantity * float64(*it.ActualCost)
		}
		stats.TotalEstimatedCost += est
		stats.TotalActualCost += act
		cc := stats.Categories[it.Category]
		cc.EstimatedCost += est
		cc.ActualCost += act
		stats.Categories[it.Category] = cc
	}
	return stats, nil
}
