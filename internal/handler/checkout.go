package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tessera-live/tessera/internal/model"
	"github.com/tessera-live/tessera/internal/service/workflow"
)

type ticketView struct {
	QRCode        string `json:"qr_code"`
	TicketTypeID  uint   `json:"ticket_type_id"`
	Status        string `json:"status"`
	AttendeeName  string `json:"attendee_name"`
	AttendeeEmail string `json:"attendee_email"`
}

type orderView struct {
	OrderID       uint         `json:"order_id"`
	Status        string       `json:"status"`
	SubtotalCents int64        `json:"subtotal_cents"`
	FeeCents      int64        `json:"fee_cents"`
	DiscountCents int64        `json:"discount_cents"`
	TotalCents    int64        `json:"total_cents"`
	Tickets       []ticketView `json:"tickets"`
}

func makeOrderView(order *model.Order, tickets []model.Ticket) orderView {
	views := make([]ticketView, 0, len(tickets))
	for _, t := range tickets {
		views = append(views, ticketView{
			QRCode:        t.QRCode,
			TicketTypeID:  t.TicketTypeID,
			Status:        string(t.Status),
			AttendeeName:  t.AttendeeName,
			AttendeeEmail: t.AttendeeEmail,
		})
	}
	return orderView{
		OrderID:       order.ID,
		Status:        string(order.Status),
		SubtotalCents: order.SubtotalCents,
		FeeCents:      order.FeeCents,
		DiscountCents: order.DiscountCents,
		TotalCents:    order.TotalCents,
		Tickets:       views,
	}
}

func (h *Handler) HandleCheckout(ctx *gin.Context) {
	var req workflow.CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}
	req.Buyer.UserID = currentUserID(ctx)

	result, err := h.app.CheckoutWorkflow.Checkout(req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if result.Status == workflow.CheckoutStatusRequiresPayment {
		ctx.JSON(202, gin.H{
			"status":            string(result.Status),
			"payment_intent_id": result.PaymentIntentID,
			"client_secret":     result.ClientSecret,
			"amount_cents":      result.AmountCents,
		})
		return
	}

	ctx.JSON(201, gin.H{
		"status": string(result.Status),
		"order":  makeOrderView(result.Order, result.Tickets),
	})
}

type confirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

func (h *Handler) HandleConfirmPayment(ctx *gin.Context) {
	var req confirmPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.PaymentIntentID == "" {
		ctx.JSON(400, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.app.CheckoutWorkflow.ConfirmPayment(req.PaymentIntentID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(201, gin.H{
		"status": string(result.Status),
		"order":  makeOrderView(result.Order, result.Tickets),
	})
}
