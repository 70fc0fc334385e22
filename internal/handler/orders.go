package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tessera-live/tessera/internal/service/workflow"
)

func (h *Handler) HandleBoxOfficeSale(ctx *gin.Context) {
	var req workflow.BoxOfficeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	result, err := h.app.BoxOfficeWorkflow.Sell(req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(201, gin.H{
		"order": makeOrderView(result.Order, result.Tickets),
	})
}

type refundRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"`
}

func (h *Handler) HandleRefund(ctx *gin.Context) {
	orderID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req refundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	result, err := h.app.RefundWorkflow.Refund(workflow.RefundRequest{
		OrderID:     orderID,
		AmountCents: req.AmountCents,
		Reason:      req.Reason,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(200, gin.H{
		"order_id":            result.Order.ID,
		"status":              string(result.Order.Status),
		"refund_amount_cents": result.Order.RefundAmountCents,
		"full":                result.Full,
	})
}
