package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tessera-live/tessera/internal/app"
	"github.com/tessera-live/tessera/internal/cache"
	"github.com/tessera-live/tessera/internal/model"
	"github.com/tessera-live/tessera/internal/service"
	"github.com/tessera-live/tessera/internal/service/domain"
)

type Handler struct {
	app *app.App
}

func NewHandler(app *app.App) *Handler {
	return &Handler{
		app: app,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/checkout", h.HandleCheckout)
	r.POST("/checkout/confirm", h.HandleConfirmPayment)
	r.POST("/box-office/orders", h.HandleBoxOfficeSale)
	r.POST("/guest-list", h.HandleGuestListAdd)
	r.GET("/guest-list/:id", h.HandleGetGuestListEntry)
	r.POST("/guest-list/:id/redeem", h.HandleGuestListRedeem)
	r.POST("/orders/:id/refund", h.HandleRefund)

	r.GET("/events", h.HandleListEvents)
	r.GET("/events/:slug", h.HandleGetEvent)
	r.GET("/events/:slug/guest-list", h.HandleGuestListForEvent)
	r.POST("/events", h.HandleCreateEvent)
	r.POST("/events/:id/publish", h.HandlePublishEvent)
	r.POST("/events/:id/cancel", h.HandleCancelEvent)
	r.POST("/events/:id/ticket-types", h.HandleCreateTicketType)
	r.POST("/events/:id/promo-codes", h.HandleCreatePromoCode)
	r.POST("/ticket-types/:id/tiers", h.HandleCreatePricingTier)
	r.POST("/events/:id/waitlist", h.HandleWaitlistJoin)
	r.POST("/events/:id/waitlist/notify-next", h.HandleWaitlistNotifyNext)
	r.POST("/waitlist/:id/cancel", h.HandleWaitlistCancel)

	r.GET("/tickets/:code", h.HandleGetTicket)
	r.POST("/tickets/:code/check-in", h.HandleCheckIn)
	r.GET("/tickets/:code/qr.png", h.HandleTicketQR)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// respondError maps core errors onto HTTP statuses. Availability
// conflicts carry the authoritative remaining count so the buyer can
// resubmit with adjusted quantities.
func respondError(ctx *gin.Context, err error) {
	var conflict *service.InsufficientInventoryError
	if errors.As(err, &conflict) {
		ctx.JSON(409, gin.H{
			"error":          "Insufficient availability",
			"message":        conflict.Error(),
			"ticket_type_id": conflict.TicketTypeID,
			"remaining":      conflict.Remaining,
		})
		return
	}

	var invalid *service.ValidationError
	if errors.As(err, &invalid) {
		ctx.JSON(400, gin.H{
			"error":   "Invalid request",
			"message": invalid.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, cache.ErrPendingCheckoutNotFound):
		ctx.JSON(404, gin.H{
			"error": "Not found",
		})
	case errors.Is(err, service.ErrPromoNotUsable):
		ctx.JSON(400, gin.H{
			"error":   "Promo code not usable",
			"message": err.Error(),
		})
	case errors.Is(err, service.ErrSalesClosed),
		errors.Is(err, service.ErrAlreadyRedeemed),
		errors.Is(err, domain.ErrAlreadyCheckedIn),
		errors.Is(err, domain.ErrTicketNotUsable),
		errors.Is(err, model.ErrInvalidTransition):
		ctx.JSON(409, gin.H{
			"error":   "Conflict",
			"message": err.Error(),
		})
	case errors.Is(err, service.ErrPaymentFailed):
		ctx.JSON(402, gin.H{
			"error":   "Payment failed",
			"message": "Your payment could not be processed; no tickets were issued",
		})
	default:
		ctx.JSON(500, gin.H{
			"error":   "Internal server error",
			"message": "Failed to process request, please try again later",
		})
	}
}

// currentUserID reads the authenticated user id injected by the auth
// layer upstream. Absence means guest.
func currentUserID(ctx *gin.Context) *uint {
	raw := ctx.GetHeader("X-User-ID")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	uid := uint(id)
	return &uid
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil {
		ctx.JSON(400, gin.H{
			"error": "Invalid id",
		})
		return 0, false
	}
	return uint(id), true
}
