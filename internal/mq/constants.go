package mq

import (
	"encoding/json"
)

// Queue names and message definitions

// immediate queue for the notification dispatcher
// all notification kinds funnel through one queue; delivery is
// fire-and-forget and never affects transaction outcome
const (
	NotificationQueue = "notify.dispatch.immediate"
)

type NotificationType string

const (
	NotifyOrderConfirmation NotificationType = "order.confirmation"
	NotifyWaitlistOffer     NotificationType = "waitlist.offer"
	NotifyGuestListIssued   NotificationType = "guestlist.issued"
	NotifyRefundProcessed   NotificationType = "refund.processed"
)

type NotificationMessage struct {
	Type    NotificationType `json:"type"`
	Payload json.RawMessage  `json:"payload"`
}

type OrderConfirmationPayload struct {
	OrderID    uint   `json:"order_id"`
	BuyerEmail string `json:"buyer_email"`
	TotalCents int64  `json:"total_cents"`
	Tickets    int    `json:"tickets"`
}

type WaitlistOfferPayload struct {
	EntryID   uint   `json:"entry_id"`
	EventID   uint   `json:"event_id"`
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at"`
}

type GuestListIssuedPayload struct {
	EntryID    uint   `json:"entry_id"`
	OrderID    uint   `json:"order_id"`
	GuestEmail string `json:"guest_email"`
}

type RefundProcessedPayload struct {
	OrderID     uint   `json:"order_id"`
	BuyerEmail  string `json:"buyer_email"`
	AmountCents int64  `json:"amount_cents"`
	Full        bool   `json:"full"`
}

// delay queue for waitlist offer expiry
// deliver message after the offer window TTL to mark a notified entry
// expired if it never converted
const (
	WaitlistOfferDelayQueue       = "waitlist.offer.expire.delay"
	WaitlistOfferExpireQueue      = "waitlist.offer.expire.immediate"
	WaitlistOfferExpireExchange   = "waitlist.offer.expire.exchange"
	WaitlistOfferExpireRoutingKey = "waitlist.offer.expire"
)

type WaitlistOfferDelayMessage struct {
	EntryID uint `json:"entry_id"`
}
