package model

import (
	"time"
)

type WaitlistStatus string

const (
	WaitlistStatusWaiting   WaitlistStatus = "waiting"
	WaitlistStatusNotified  WaitlistStatus = "notified"
	WaitlistStatusConverted WaitlistStatus = "converted"
	WaitlistStatusExpired   WaitlistStatus = "expired"
	WaitlistStatusCancelled WaitlistStatus = "cancelled"
)

type WaitlistEntry struct {
	ID           uint  `gorm:"primaryKey"`
	EventID      uint  `gorm:"not null;index"`
	TicketTypeID *uint `gorm:"index"` // nil = any ticket type

	Email    string `gorm:"size:200;not null"`
	Quantity int    `gorm:"not null;check:quantity >= 1 AND quantity <= 10"`

	// Position is assigned under the event row lock at creation and is
	// never renumbered; cancellations leave gaps.
	Position int `gorm:"not null"`

	Status     WaitlistStatus `gorm:"type:varchar(16);not null;default:waiting"`
	NotifiedAt *time.Time
	ExpiresAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Notify opens the offer window. No inventory is held for a notified
// entry; the buyer still races everyone else through checkout.
func (w *WaitlistEntry) Notify(now time.Time, offerTTL time.Duration) error {
	if w.Status != WaitlistStatusWaiting {
		return ErrInvalidTransition
	}
	expires := now.Add(offerTTL)
	w.Status = WaitlistStatusNotified
	w.NotifiedAt = &now
	w.ExpiresAt = &expires
	return nil
}

// OfferExpired is only true pre-conversion: a converted entry is never
// considered expired even with a stale timestamp.
func (w *WaitlistEntry) OfferExpired(now time.Time) bool {
	if w.Status != WaitlistStatusNotified {
		return false
	}
	return w.ExpiresAt != nil && now.After(*w.ExpiresAt)
}

func (w *WaitlistEntry) Expire() error {
	if w.Status != WaitlistStatusNotified {
		return ErrInvalidTransition
	}
	w.Status = WaitlistStatusExpired
	return nil
}

func (w *WaitlistEntry) Convert() error {
	if w.Status != WaitlistStatusNotified && w.Status != WaitlistStatusWaiting {
		return ErrInvalidTransition
	}
	w.Status = WaitlistStatusConverted
	return nil
}

func (w *WaitlistEntry) Cancel() error {
	if w.Status == WaitlistStatusConverted || w.Status == WaitlistStatusCancelled {
		return ErrInvalidTransition
	}
	w.Status = WaitlistStatusCancelled
	return nil
}

// ActiveWaitlistStatuses are the statuses counted by the one-active-
// entry-per-email uniqueness rule.
var ActiveWaitlistStatuses = []WaitlistStatus{WaitlistStatusWaiting, WaitlistStatusNotified}

type GuestListEntry struct {
	ID           uint `gorm:"primaryKey"`
	EventID      uint `gorm:"not null;index"`
	TicketTypeID uint `gorm:"not null;index"`

	GuestName  string `gorm:"size:200;not null"`
	GuestEmail string `gorm:"size:200;not null"`
	Quantity   int    `gorm:"not null;check:quantity >= 1"`

	// Redemption is one-way; a redeemed entry is immutable.
	Redeemed   bool  `gorm:"not null;default:false"`
	OrderID    *uint `gorm:"index"`
	RedeemedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (g *GuestListEntry) MarkRedeemed(orderID uint, now time.Time) error {
	if g.Redeemed {
		return ErrInvalidTransition
	}
	g.Redeemed = true
	g.OrderID = &orderID
	g.RedeemedAt = &now
	return nil
}
