package handler

import (
	"github.com/gin-gonic/gin"
)

func (h *Handler) HandleListEvents(ctx *gin.Context) {
	events, err := h.app.CatalogService.ListPublishedEvents()
	if err != nil {
		respondError(ctx, err)
		return
	}

	type eventSummary struct {
		ID       uint   `json:"id"`
		Title    string `json:"title"`
		Slug     string `json:"slug"`
		StartsAt string `json:"starts_at"`
	}
	out := make([]eventSummary, 0, len(events))
	for _, e := range events {
		out = append(out, eventSummary{
			ID:       e.ID,
			Title:    e.Title,
			Slug:     e.Slug,
			StartsAt: e.StartsAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	ctx.JSON(200, gin.H{
		"events": out,
	})
}

type ticketTypeView struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	PriceCents        int64  `json:"price_cents"`
	AvailableQuantity int    `json:"available_quantity"`
	SoldOut           bool   `json:"sold_out"`
	MaxPerOrder       int    `json:"max_per_order"`
}

type eventCatalogView struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Slug        string           `json:"slug"`
	Status      string           `json:"status"`
	TicketTypes []ticketTypeView `json:"ticket_types"`
}

// HandleGetEvent serves the public event page. Availability counts here
// are advisory snapshots (short cache TTL); the issuer re-checks against
// locked rows on every purchase.
func (h *Handler) HandleGetEvent(ctx *gin.Context) {
	event, err := h.app.CatalogService.GetEventBySlug(ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	var view eventCatalogView
	if found, err := h.app.Cache.GetEventCatalog(event.ID, &view); err == nil && found {
		ctx.JSON(200, view)
		return
	}

	ticketTypes, err := h.app.CatalogService.TicketTypesForEvent(event.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	views := make([]ticketTypeView, 0, len(ticketTypes))
	for i := range ticketTypes {
		tt := &ticketTypes[i]
		views = append(views, ticketTypeView{
			ID:                tt.ID,
			Name:              tt.Name,
			PriceCents:        tt.PriceCents,
			AvailableQuantity: tt.AvailableQuantity(),
			SoldOut:           tt.SoldOut(),
			MaxPerOrder:       tt.MaxPerOrder,
		})
	}

	view = eventCatalogView{
		ID:          event.ID,
		Title:       event.Title,
		Slug:        event.Slug,
		Status:      string(event.Status),
		TicketTypes: views,
	}
	// cache write failures never block the response
	_ = h.app.Cache.SetEventCatalog(event.ID, view)
	ctx.JSON(200, view)
}

type waitlistJoinRequest struct {
	TicketTypeID *uint  `json:"ticket_type_id"`
	Email        string `json:"email"`
	Quantity     int    `json:"quantity"`
}

func (h *Handler) HandleWaitlistJoin(ctx *gin.Context) {
	eventID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req waitlistJoinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	entry, err := h.app.WaitlistWorkflow.Join(eventID, req.TicketTypeID, req.Email, req.Quantity)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(201, gin.H{
		"entry_id": entry.ID,
		"position": entry.Position,
		"status":   string(entry.Status),
	})
}

func (h *Handler) HandleWaitlistCancel(ctx *gin.Context) {
	entryID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := h.app.WaitlistWorkflow.Cancel(entryID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(200, gin.H{
		"entry_id": entryID,
		"status":   "cancelled",
	})
}

type waitlistNotifyRequest struct {
	TicketTypeID *uint `json:"ticket_type_id"`
}

func (h *Handler) HandleWaitlistNotifyNext(ctx *gin.Context) {
	eventID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req waitlistNotifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	entry, err := h.app.WaitlistWorkflow.NotifyNext(eventID, req.TicketTypeID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(200, gin.H{
		"entry_id":   entry.ID,
		"position":   entry.Position,
		"status":     string(entry.Status),
		"expires_at": entry.ExpiresAt,
	})
}
