//go:build integration

package models

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churrasapp/db"
)

// Run with a live MongoDB:
//
//	MONGODB_URI=mongodb://127.0.0.1:27017 go test -tags integration ./models/
func setupRepos(t *testing.T) (EventRepository, GuestRepository, ItemRepository) {
	t.Helper()

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}

	mgr := db.NewManager(db.Config{
		URI:        uri,
		Database:   "churrasapp_test",
		MaxRetries: 1,
		RetryDelay: time.Second,
	}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	t.Cleanup(cancel)
	require.NoError(t, mgr.Connect(ctx))
	t.Cleanup(func() {
		_ = mgr.Database().Drop(context.Background())
		_ = mgr.Disconnect(context.Background())
	})

	events := NewMongoEventRepository(mgr.Collection("events"))
	guests := NewMongoGuestRepository(mgr.Collection("guests"), events)
	items := NewMongoItemRepository(mgr.Collection("items"))
	return events, guests, items
}

func TestEventLifecycleAgainstMongo(t *testing.T) {
	events, _, _ := setupRepos(t)
	ctx := context.Background()

	created, err := events.Create(ctx, &Event{
		Name:                  "Churras de Integração",
		Date:                  time.Now().Add(72 * time.Hour),
		Location:              "Galpão 3, Rua das Brasas",
		EstimatedParticipants: 12,
	})
	require.NoError(t, err)
	require.True(t, IsPublicID(created.ID))
	assert.Equal(t, StatusDraft, created.Status)

	found, err := events.FindByPublicID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.Name, found.Name)

	newName := "Churras Renomeado"
	updated, err := events.UpdateByPublicID(ctx, created.ID, EventUpdate{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)

	cancelled, err := events.SoftDeleteByPublicID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	// the document survives the soft delete
	found, err = events.FindByPublicID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, StatusCancelled, found.Status)

	missing, err := events.FindByPublicID(ctx, "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGuestStatsAggregationAgainstMongo(t *testing.T) {
	events, guests, _ := setupRepos(t)
	ctx := context.Background()

	event, err := events.Create(ctx, &Event{
		Name:                  "Churras das Estatísticas",
		Date:                  time.Now().Add(48 * time.Hour),
		Location:              "Quadra do bairro",
		EstimatedParticipants: 20,
	})
	require.NoError(t, err)

	for _, g := range []Guest{
		{Name: "Confirmada", RSVPStatus: RSVPYes},
		{Name: "Confirmado Pago", RSVPStatus: RSVPYes, PaymentStatus: PaymentPaid, PaymentMethod: "pix"},
		{Name: "Recusou", RSVPStatus: RSVPNo},
		{Name: "Pendente"},
	} {
		g.EventID = event.ID
		_, err := guests.Create(ctx, &g)
		require.NoError(t, err)
	}

	stats, err := guests.StatsByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(2), stats.Confirmed)
	assert.Equal(t, int64(1), stats.Declined)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Paid)
}

func TestItemStatsAggregationAgainstMongo(t *testing.T) {
	events, _, items := setupRepos(t)
	ctx := context.Background()

	event, err := events.Create(ctx, &Event{
		Name:                  "Churras do Orçamento",
		Date:                  time.Now().Add(48 * time.Hour),
		Location:              "Sítio das Palmeiras",
		EstimatedParticipants: 10,
	})
	require.NoError(t, err)

	picanha, err := items.Create(ctx, &EventItem{
		EventID: event.ID, Name: "Picanha", Category: "meat",
		Quantity: 4, Unit: "kg", EstimatedCost: 8000,
	})
	require.NoError(t, err)
	_, err = items.Create(ctx, &EventItem{
		EventID: event.ID, Name: "Cerveja", Category: "drinks",
		Quantity: 20, Unit: "unit", EstimatedCost: 500,
	})
	require.NoError(t, err)

	actual := int64(9000)
	_, err = items.MarkPurchased(ctx, picanha.ID, &actual)
	require.NoError(t, err)

	stats, err := items.StatsByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalItems)
	assert.Equal(t, int64(1), stats.PurchasedItems)
	assert.Equal(t, float64(4*8000+20*500), stats.TotalEstimatedCost)
	assert.Equal(t, float64(4*9000), stats.TotalActualCost)
	assert.Contains(t, stats.Categories, "meat")
	assert.Contains(t, stats.Categories, "drinks")
}

func TestTemplateRoundTripAgainstMongo(t *testing.T) {
	events, _, items := setupRepos(t)
	ctx := context.Background()

	event, err := events.Create(ctx, &Event{
		Name:                  "Churras Modelado",
		Date:                  time.Now().Add(48 * time.Hour),
		Location:              "Casa da esquina",
		EstimatedParticipants: 6,
	})
	require.NoError(t, err)

	item, err := items.Create(ctx, &EventItem{
		EventID: event.ID, Name: "Farofa", Category: "sides",
		Quantity: 2, Unit: "pack", EstimatedCost: 1200, AssignedTo: "Bia",
	})
	require.NoError(t, err)

	tpl, err := items.SnapshotTemplate(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, tpl)
	assert.True(t, tpl.IsTemplate)
	assert.Empty(t, tpl.EventID)
	assert.Empty(t, tpl.AssignedTo)

	qty := 3.0
	materialized, err := items.MaterializeTemplate(ctx, tpl.ID, event.ID, ItemUpdate{Quantity: &qty})
	require.NoError(t, err)
	require.NotNil(t, materialized)
	assert.False(t, materialized.IsTemplate)
	assert.Equal(t, event.ID, materialized.EventID)
	assert.Equal(t, 3.0, materialized.Quantity)

	// materializing a plain item id is a miss, not an error
	none, err := items.MaterializeTemplate(ctx, item.ID, event.ID, ItemUpdate{})
	require.NoError(t, err)
	assert.Nil(t, none)
}
