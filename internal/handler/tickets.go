package handler

import (
	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

func (h *Handler) HandleGetTicket(ctx *gin.Context) {
	ticket, err := h.app.TicketService.GetByQRCode(ctx.Param("code"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(200, gin.H{
		"qr_code":        ticket.QRCode,
		"status":         string(ticket.Status),
		"event_id":       ticket.EventID,
		"ticket_type_id": ticket.TicketTypeID,
		"attendee_name":  ticket.AttendeeName,
		"attendee_email": ticket.AttendeeEmail,
	})
}

func (h *Handler) HandleCheckIn(ctx *gin.Context) {
	ticket, err := h.app.TicketService.CheckIn(ctx.Param("code"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(200, gin.H{
		"qr_code":       ticket.QRCode,
		"status":        string(ticket.Status),
		"checked_in_at": ticket.CheckedInAt,
	})
}

// HandleTicketQR renders the ticket's QR identity as a PNG for wallet
// and door-scan use.
func (h *Handler) HandleTicketQR(ctx *gin.Context) {
	ticket, err := h.app.TicketService.GetByQRCode(ctx.Param("code"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	png, err := qrcode.Encode(ticket.QRCode, qrcode.Medium, 256)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Data(200, "image/png", png)
}
