package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tessera-live/tessera/internal/model"
)

type guestListAddRequest struct {
	EventID      uint   `json:"event_id"`
	TicketTypeID uint   `json:"ticket_type_id"`
	GuestName    string `json:"guest_name"`
	GuestEmail   string `json:"guest_email"`
	Quantity     int    `json:"quantity"`
}

func (h *Handler) HandleGuestListAdd(ctx *gin.Context) {
	var req guestListAddRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	entry := &model.GuestListEntry{
		EventID:      req.EventID,
		TicketTypeID: req.TicketTypeID,
		GuestName:    req.GuestName,
		GuestEmail:   req.GuestEmail,
		Quantity:     req.Quantity,
	}
	if err := h.app.GuestListWorkflow.Add(entry); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(201, gin.H{
		"entry_id": entry.ID,
	})
}

func (h *Handler) HandleGetGuestListEntry(ctx *gin.Context) {
	entryID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	entry, err := h.app.GuestListService.Get(entryID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(200, gin.H{
		"id":             entry.ID,
		"event_id":       entry.EventID,
		"ticket_type_id": entry.TicketTypeID,
		"guest_name":     entry.GuestName,
		"guest_email":    entry.GuestEmail,
		"quantity":       entry.Quantity,
		"redeemed":       entry.Redeemed,
		"order_id":       entry.OrderID,
	})
}

func (h *Handler) HandleGuestListForEvent(ctx *gin.Context) {
	event, err := h.app.CatalogService.GetEventBySlug(ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	entries, err := h.app.GuestListService.ListForEvent(event.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	type entryView struct {
		ID           uint   `json:"id"`
		TicketTypeID uint   `json:"ticket_type_id"`
		GuestName    string `json:"guest_name"`
		GuestEmail   string `json:"guest_email"`
		Quantity     int    `json:"quantity"`
		Redeemed     bool   `json:"redeemed"`
		OrderID      *uint  `json:"order_id,omitempty"`
	}
	views := make([]entryView, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		views = append(views, entryView{
			ID:           e.ID,
			TicketTypeID: e.TicketTypeID,
			GuestName:    e.GuestName,
			GuestEmail:   e.GuestEmail,
			Quantity:     e.Quantity,
			Redeemed:     e.Redeemed,
			OrderID:      e.OrderID,
		})
	}
	ctx.JSON(200, gin.H{
		"entries": views,
	})
}

func (h *Handler) HandleGuestListRedeem(ctx *gin.Context) {
	entryID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	result, err := h.app.GuestListWorkflow.Redeem(entryID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(201, gin.H{
		"order": makeOrderView(result.Order, result.Tickets),
	})
}
