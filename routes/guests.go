package routes

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"churrasapp/models"
)

// POST /api/events/:id/guests
func (d *deps) addGuest(c *gin.Context) {
	eventID := c.Param("id")

	var g models.Guest
	if err := c.ShouldBindJSON(&g); err != nil {
		respondError(c, http.StatusBadRequest, "Não foi possível interpretar os dados da requisição", nil)
		return
	}
	if strings.TrimSpace(g.Name) == "" {
		respondError(c, http.StatusBadRequest, "Nome do convidado é obrigatório", gin.H{"field": "name"})
		return
	}

	g.ID = ""
	g.EventID = eventID

	guest, err := d.guests.Create(c, &g)
	if err != nil {
		d.respondRepoError(c, err, "create guest")
		return
	}

	d.purgeEventCaches(c, eventID)
	respondOK(c, http.StatusCreated, guest, gin.H{"created": true})
}

// GET /api/events/:id/guests — filters: rsvp, payment; paginated.
func (d *deps) listGuests(c *gin.Context) {
	eventID := c.Param("id")
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "0"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)

	guests, total, err := d.guests.ListByEvent(c, eventID, models.GuestFilter{
		RSVPStatus:    strings.ToLower(strings.TrimSpace(c.Query("rsvp"))),
		PaymentStatus: strings.ToLower(strings.TrimSpace(c.Query("payment"))),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		d.respondRepoError(c, err, "list guests")
		return
	}

	respondOK(c, http.StatusOK, guests, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// PUT /api/guests/:id — partial update; id and eventId are protected.
func (d *deps) updateGuest(c *gin.Context) {
	id := c.Param("id")

	var u models.GuestUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		respondError(c, http.StatusBadRequest, "Não foi possível interpretar os dados da requisição", nil)
		return
	}

	guest, err := d.guests.UpdateByPublicID(c, id, u)
	if err != nil {
		d.respondRepoError(c, err, "update guest")
		return
	}
	if guest == nil {
		respondError(c, http.StatusNotFound, "Convidado não encontrado", gin.H{"guestId": id})
		return
	}

	d.purgeEventCaches(c, guest.EventID)
	respondOK(c, http.StatusOK, guest, gin.H{"updated": true})
}

// PUT /api/guests/:id/rsvp
func (d *deps) updateRSVP(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		respondError(c, http.StatusBadRequest, "Status do RSVP é obrigatório", gin.H{"field": "status"})
		return
	}

	guest, err := d.guests.UpdateRSVP(c, id, req.Status)
	if err != nil {
		d.respondRepoError(c, err, "update rsvp")
		return
	}
	if guest == nil {
		respondError(c, http.StatusNotFound, "Convidado não encontrado", gin.H{"guestId": id})
		return
	}

	d.purgeEventCaches(c, guest.EventID)
	respondOK(c, http.StatusOK, guest, gin.H{"updated": true})
}

// PUT /api/guests/:id/payment
func (d *deps) markGuestPaid(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		Method string `json:"method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Não foi possível interpretar os dados da requisição", nil)
		return
	}

	guest, err := d.guests.MarkPaid(c, id, req.Method)
	if err != nil {
		d.respondRepoError(c, err, "mark guest paid")
		return
	}
	if guest == nil {
		respondError(c, http.StatusNotFound, "Convidado não encontrado", gin.H{"guestId": id})
		return
	}

	d.purgeEventCaches(c, guest.EventID)
	respondOK(c, http.StatusOK, guest, gin.H{"updated": true})
}

// DELETE /api/guests/:id — hard removal.
func (d *deps) deleteGuest(c *gin.Context) {
	id := c.Param("id")

	deleted, err := d.guests.DeleteByPublicID(c, id)
	if err != nil {
		d.respondRepoError(c, err, "delete guest")
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, "Convidado não encontrado", gin.H{"guestId": id})
		return
	}

	d.purgeEventCaches(c, "")
	respondOK(c, http.StatusOK, gin.H{"id": id}, gin.H{"deleted": true})
}
