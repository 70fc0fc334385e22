package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tessera-live/tessera/internal/model"
)

// Organizer-facing catalog management. Auth/role checks live in the
// upstream gateway; these handlers consume pre-validated identity.

type createEventRequest struct {
	Title       string    `json:"title"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	MaxCapacity int       `json:"max_capacity"`
}

func (h *Handler) HandleCreateEvent(ctx *gin.Context) {
	var req createEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	event := &model.Event{
		Title:       req.Title,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		MaxCapacity: req.MaxCapacity,
	}
	if err := h.app.CatalogService.CreateEvent(event); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(201, gin.H{
		"id":     event.ID,
		"slug":   event.Slug,
		"status": string(event.Status),
	})
}

func (h *Handler) HandlePublishEvent(ctx *gin.Context) {
	h.handleEventTransition(ctx, h.app.CatalogService.PublishEvent)
}

func (h *Handler) HandleCancelEvent(ctx *gin.Context) {
	h.handleEventTransition(ctx, h.app.CatalogService.CancelEvent)
}

func (h *Handler) handleEventTransition(ctx *gin.Context, transition func(uint) error) {
	eventID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := transition(eventID); err != nil {
		respondError(ctx, err)
		return
	}
	event, err := h.app.CatalogService.GetEventByID(eventID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"id":     event.ID,
		"status": string(event.Status),
	})
}

type createTicketTypeRequest struct {
	Name              string     `json:"name"`
	PriceCents        int64      `json:"price_cents"`
	QuantityAvailable int        `json:"quantity_available"`
	MaxPerOrder       int        `json:"max_per_order"`
	SalesStartAt      *time.Time `json:"sales_start_at"`
	SalesEndAt        *time.Time `json:"sales_end_at"`
}

func (h *Handler) HandleCreateTicketType(ctx *gin.Context) {
	eventID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req createTicketTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}
	if req.MaxPerOrder == 0 {
		req.MaxPerOrder = 10
	}

	tt := &model.TicketType{
		EventID:           eventID,
		Name:              req.Name,
		PriceCents:        req.PriceCents,
		QuantityAvailable: req.QuantityAvailable,
		MaxPerOrder:       req.MaxPerOrder,
		SalesStartAt:      req.SalesStartAt,
		SalesEndAt:        req.SalesEndAt,
	}
	if err := h.app.CatalogService.CreateTicketType(tt); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(201, gin.H{
		"id": tt.ID,
	})
}

type createPricingTierRequest struct {
	Name          string     `json:"name"`
	PriceCents    int64      `json:"price_cents"`
	QuantityLimit *int       `json:"quantity_limit"`
	StartsAt      *time.Time `json:"starts_at"`
	EndsAt        *time.Time `json:"ends_at"`
}

func (h *Handler) HandleCreatePricingTier(ctx *gin.Context) {
	ticketTypeID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req createPricingTierRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	tier := &model.PricingTier{
		TicketTypeID:  ticketTypeID,
		Name:          req.Name,
		PriceCents:    req.PriceCents,
		QuantityLimit: req.QuantityLimit,
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
	}
	if err := h.app.CatalogService.CreatePricingTier(tier); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(201, gin.H{
		"id": tier.ID,
	})
}

type createPromoCodeRequest struct {
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue int64      `json:"discount_value"`
	MaxUses       *int       `json:"max_uses"`
	StartsAt      *time.Time `json:"starts_at"`
	EndsAt        *time.Time `json:"ends_at"`
}

func (h *Handler) HandleCreatePromoCode(ctx *gin.Context) {
	eventID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req createPromoCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	promo := &model.PromoCode{
		EventID:       eventID,
		Code:          req.Code,
		DiscountType:  model.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		MaxUses:       req.MaxUses,
		Active:        true,
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
	}
	if err := h.app.CatalogService.CreatePromoCode(promo); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(201, gin.H{
		"id":   promo.ID,
		"code": promo.Code,
	})
}
