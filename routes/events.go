package routes

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"churrasapp/models"
)

type createEventRequest struct {
	Name                  string             `json:"name"`
	Date                  time.Time          `json:"date"`
	Location              string             `json:"location"`
	EstimatedParticipants int                `json:"estimatedParticipants"`
	ConfirmationDeadline  *time.Time         `json:"confirmationDeadline"`
	Status                string             `json:"status"`
	Items                 []models.EventItem `json:"items"`
}

// eventWithItems flattens the event fields and appends the created
// items, matching what clients expect in response data.
type eventWithItems struct {
	Event models.Event
	Items []models.EventItem
}

func (e eventWithItems) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(e.Event)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	items, err := json.Marshal(e.Items)
	if err != nil {
		return nil, err
	}
	m["items"] = items
	return json.Marshal(m)
}

// POST /api/events
func (d *deps) createEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Não foi possível interpretar os dados da requisição", nil)
		return
	}

	// Presence checks first: field-scoped 400 on the first failure.
	if strings.TrimSpace(req.Name) == "" {
		respondError(c, http.StatusBadRequest, "Nome do evento é obrigatório", gin.H{"field": "name"})
		return
	}
	if req.Date.IsZero() {
		respondError(c, http.StatusBadRequest, "Data do evento é obrigatória", gin.H{"field": "date"})
		return
	}
	if strings.TrimSpace(req.Location) == "" {
		respondError(c, http.StatusBadRequest, "Local do evento é obrigatório", gin.H{"field": "location"})
		return
	}
	if req.EstimatedParticipants < 1 {
		respondError(c, http.StatusBadRequest, "Número de participantes deve ser pelo menos 1", gin.H{"field": "estimatedParticipants"})
		return
	}

	event, err := d.events.Create(c, &models.Event{
		Name:                  req.Name,
		Date:                  req.Date,
		Location:              req.Location,
		EstimatedParticipants: req.EstimatedParticipants,
		ConfirmationDeadline:  req.ConfirmationDeadline,
		Status:                req.Status,
	})
	if err != nil {
		d.respondRepoError(c, err, "create event")
		return
	}

	// Optional starting shopping list. A bad item does not fail the
	// event that was already created.
	created := []models.EventItem{}
	for i := range req.Items {
		item := req.Items[i]
		item.ID = ""
		item.EventID = event.ID
		item.IsTemplate = false
		saved, err := d.items.Create(c, &item)
		if err != nil {
			d.log.Warn().Err(err).Str("eventId", event.ID).Str("item", item.Name).Msg("could not create event item")
			continue
		}
		created = append(created, *saved)
	}

	d.purgeEventCaches(c, event.ID)

	respondOK(c, http.StatusCreated, eventWithItems{Event: *event, Items: created}, gin.H{
		"created":    true,
		"itemsCount": len(created),
	})
}

// GET /api/events/:id — the event with its guests, items and stats.
func (d *deps) getEvent(c *gin.Context) {
	id := c.Param("id")

	event, err := d.events.FindByPublicID(c, id)
	if err != nil {
		d.respondRepoError(c, err, "fetch event")
		return
	}
	if event == nil {
		respondError(c, http.StatusNotFound, "Evento não encontrado", gin.H{"eventId": id})
		return
	}

	guests, _, err := d.guests.ListByEvent(c, id, models.GuestFilter{})
	if err != nil {
		d.respondRepoError(c, err, "fetch event guests")
		return
	}
	items, _, err := d.items.ListByEvent(c, id, models.ItemFilter{})
	if err != nil {
		d.respondRepoError(c, err, "fetch event items")
		return
	}
	guestStats, err := d.guests.StatsByEvent(c, id)
	if err != nil {
		d.respondRepoError(c, err, "fetch guest stats")
		return
	}
	itemStats, err := d.items.StatsByEvent(c, id)
	if err != nil {
		d.respondRepoError(c, err, "fetch item stats")
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"event":  event,
		"guests": guests,
		"items":  items,
		"stats": gin.H{
			"guests": guestStats,
			"items":  itemStats,
		},
		"guestCount":          len(guests),
		"confirmedGuestCount": guestStats.Confirmed,
	}, gin.H{
		"guestCount": len(guests),
		"itemCount":  len(items),
	})
}

// PUT /api/events/:id — partial update; protected fields are silently
// ignored.
func (d *deps) updateEvent(c *gin.Context) {
	id := c.Param("id")

	var u models.EventUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		respondError(c, http.StatusBadRequest, "Não foi possível interpretar os dados da requisição", nil)
		return
	}

	event, err := d.events.UpdateByPublicID(c, id, u)
	if err != nil {
		d.respondRepoError(c, err, "update event")
		return
	}
	if event == nil {
		respondError(c, http.StatusNotFound, "Evento não encontrado", gin.H{"eventId": id})
		return
	}

	d.purgeEventCaches(c, id)
	respondOK(c, http.StatusOK, event, gin.H{"updated": true})
}

// GET /api/events — paginated list with optional status filter.
func (d *deps) listEvents(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	events, total, err := d.events.List(c, models.EventFilter{
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		d.respondRepoError(c, err, "list events")
		return
	}

	respondOK(c, http.StatusOK, events, gin.H{
		"total":   total,
		"limit":   limit,
		"offset":  offset,
		"hasMore": offset+limit < total,
	})
}

// DELETE /api/events/:id — soft delete: status flips to cancelled.
func (d *deps) deleteEvent(c *gin.Context) {
	id := c.Param("id")

	event, err := d.events.SoftDeleteByPublicID(c, id)
	if err != nil {
		d.respondRepoError(c, err, "delete event")
		return
	}
	if event == nil {
		respondError(c, http.StatusNotFound, "Evento não encontrado", gin.H{"eventId": id})
		return
	}

	d.purgeEventCaches(c, id)
	respondOK(c, http.StatusOK, gin.H{"id": id, "status": models.StatusCancelled}, gin.H{"deleted": true})
}
