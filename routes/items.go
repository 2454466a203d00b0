package routes

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"churrasapp/models"
)

// POST /api/events/:id/items
func (d *deps) addItem(c *gin.Context) {
	eventID := c.Param("id")

	var it models.EventItem
	if err := c.ShouldBindJSON(&it); err != nil {
		respondError(c, http.StatusBadRequest, "Não foi possível interpretar os dados da requisição", nil)
		return
	}
	if strings.TrimSpace(it.Name) == "" {
		respondError(c, http.StatusBadRequest, "Nome do item é obrigatório", gin.H{"field": "name"})
		return
	}

	it.ID = ""
	it.EventID = eventID
	it.IsTemplate = false

	item, err := d.items.Create(c, &it)
	if err != nil {
		d.respondRepoError(c, err, "create item")
		return
	}

	d.purgeEventCaches(c, eventID)
	respondOK(c, http.StatusCreated, item, gin.H{"created": true})
}

// GET /api/events/:id/items — filters: category, purchased; paginated.
func (d *deps) listItems(c *gin.Context) {
	eventID := c.Param("id")
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "0"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)

	filter := models.ItemFilter{
		Category: strings.ToLower(strings.TrimSpace(c.Query("category"))),
		Limit:    limit,
		Offset:   offset,
	}
	if p := c.Query("purchased"); p != "" {
		v := p == "true" || p == "1"
		filter.Purchased = &v
	}

	items, total, err := d.items.ListByEvent(c, eventID, filter)
	if err != nil {
		d.respondRepoError(c, err, "list items")
		return
	}

	respondOK(c, http.StatusOK, items, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// PUT /api/items/:id — partial update; id and eventId are protected.
func (d *deps) updateItem(c *gin.Context) {
	id := c.Param("id")

	var u models.ItemUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		respondError(c, http.StatusBadRequest, "Não foi possível interpretar os dados da requisição", nil)
		return
	}

	item, err := d.items.UpdateByPublicID(c, id, u)
	if err != nil {
		d.respondRepoError(c, err, "update item")
		return
	}
	if item == nil {
		respondError(c, http.StatusNotFound, "Item não encontrado", gin.H{"itemId": id})
		return
	}

	d.purgeEventCaches(c, item.EventID)
	respondOK(c, http.StatusOK, item, gin.H{"updated": true})
}

// POST /api/items/:id/purchase — marks bought; actualCost optional.
func (d *deps) purchaseItem(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		ActualCost *int64 `json:"actualCost"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Não foi possível interpretar os dados da requisição", nil)
			return
		}
	}

	item, err := d.items.MarkPurchased(c, id, req.ActualCost)
	if err != nil {
		d.respondRepoError(c, err, "purchase item")
		return
	}
	if item == nil {
		respondError(c, http.StatusNotFound, "Item não encontrado", gin.H{"itemId": id})
		return
	}

	d.purgeEventCaches(c, item.EventID)
	respondOK(c, http.StatusOK, item, gin.H{"updated": true})
}

// POST /api/items/:id/assign
func (d *deps) assignItem(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		AssignedTo string `json:"assignedTo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.AssignedTo) == "" {
		respondError(c, http.StatusBadRequest, "Nome do responsável é obrigatório", gin.H{"field": "assignedTo"})
		return
	}

	item, err := d.items.Assign(c, id, req.AssignedTo)
	if err != nil {
		d.respondRepoError(c, err, "assign item")
		return
	}
	if item == nil {
		respondError(c, http.StatusNotFound, "Item não encontrado", gin.H{"itemId": id})
		return
	}

	d.purgeEventCaches(c, item.EventID)
	respondOK(c, http.StatusOK, item, gin.H{"updated": true})
}

// POST /api/items/:id/snapshot — turns an item into a reusable
// template, stripping event-specific fields.
func (d *deps) snapshotItem(c *gin.Context) {
	id := c.Param("id")

	tpl, err := d.items.SnapshotTemplate(c, id)
	if err != nil {
		d.respondRepoError(c, err, "snapshot item")
		return
	}
	if tpl == nil {
		respondError(c, http.StatusNotFound, "Item não encontrado", gin.H{"itemId": id})
		return
	}

	if d.inv != nil {
		d.inv.PurgeTemplates(c)
	}
	respondOK(c, http.StatusCreated, tpl, gin.H{"created": true})
}

// DELETE /api/items/:id — hard removal.
func (d *deps) deleteItem(c *gin.Context) {
	id := c.Param("id")

	deleted, err := d.items.DeleteByPublicID(c, id)
	if err != nil {
		d.respondRepoError(c, err, "delete item")
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, "Item não encontrado", gin.H{"itemId": id})
		return
	}

	d.purgeEventCaches(c, "")
	if d.inv != nil {
		d.inv.PurgeTemplates(c)
	}
	respondOK(c, http.StatusOK, gin.H{"id": id}, gin.H{"deleted": true})
}

// GET /api/templates
func (d *deps) listTemplates(c *gin.Context) {
	templates, err := d.items.ListTemplates(c)
	if err != nil {
		d.respondRepoError(c, err, "list templates")
		return
	}
	respondOK(c, http.StatusOK, templates, gin.H{"count": len(templates)})
}

// POST /api/templates/:id/materialize — copies a template into a
// concrete item bound to the given event.
func (d *deps) materializeTemplate(c *gin.Context) {
	templateID := c.Param("id")

	var req struct {
		EventID   string            `json:"eventId"`
		Overrides models.ItemUpdate `json:"overrides"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.EventID) == "" {
		respondError(c, http.StatusBadRequest, "ID do evento é obrigatório", gin.H{"field": "eventId"})
		return
	}

	item, err := d.items.MaterializeTemplate(c, templateID, req.EventID, req.Overrides)
	if err != nil {
		d.respondRepoError(c, err, "materialize template")
		return
	}
	if item == nil {
		respondError(c, http.StatusNotFound, "Template não encontrado", gin.H{"templateId": templateID})
		return
	}

	d.purgeEventCaches(c, req.EventID)
	respondOK(c, http.StatusCreated, item, gin.H{"created": true})
}
