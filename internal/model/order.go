package model

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending           OrderStatus = "pending"
	OrderStatusCompleted         OrderStatus = "completed"
	OrderStatusRefunded          OrderStatus = "refunded"
	OrderStatusPartiallyRefunded OrderStatus = "partially_refunded"
	OrderStatusCancelled         OrderStatus = "cancelled"
)

type OrderSource string

const (
	OrderSourceCheckout  OrderSource = "checkout"
	OrderSourceBoxOffice OrderSource = "box_office"
	OrderSourceGuestList OrderSource = "guest_list"
)

type Order struct {
	ID      uint  `gorm:"primaryKey"`
	EventID uint  `gorm:"not null;index"`
	UserID  *uint `gorm:"index"` // nil for guest checkout

	BuyerName  string `gorm:"size:200;not null"`
	BuyerEmail string `gorm:"size:200;not null"`

	Status OrderStatus `gorm:"type:varchar(24);not null;default:pending"`
	Source OrderSource `gorm:"type:varchar(16);not null"`

	SubtotalCents     int64  `gorm:"not null"`
	FeeCents          int64  `gorm:"not null;default:0"`
	DiscountCents     int64  `gorm:"not null;default:0"`
	TotalCents        int64  `gorm:"not null"`
	RefundAmountCents int64  `gorm:"not null;default:0"`
	RefundReason      string `gorm:"size:500"`

	PaymentMethod   string `gorm:"size:32;not null"`
	PaymentIntentID string `gorm:"size:128"`
	PaymentRefundID string `gorm:"size:128"`

	PromoCodeID *uint

	Tickets []Ticket `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Complete marks a freshly created order as fulfilled. Failed attempts
// are never persisted, so pending is only ever observed inside the
// issuing transaction.
func (o *Order) Complete() error {
	if o.Status != OrderStatusPending {
		return ErrInvalidTransition
	}
	o.Status = OrderStatusCompleted
	return nil
}

func (o *Order) Refundable() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusPartiallyRefunded
}

// RemainingRefundableCents is the balance a further refund may claim.
func (o *Order) RemainingRefundableCents() int64 {
	return o.TotalCents - o.RefundAmountCents
}

// ApplyRefund records a refund of amountCents and reports whether it was
// a full refund. Fullness uses amount >= remaining rather than strict
// equality, so an amount that clears the remaining balance counts as
// full even when rounding pushed it slightly past.
func (o *Order) ApplyRefund(amountCents int64) (full bool, err error) {
	if !o.Refundable() {
		return false, ErrInvalidTransition
	}
	full = amountCents >= o.RemainingRefundableCents()
	o.RefundAmountCents += amountCents
	if full {
		o.Status = OrderStatusRefunded
	} else {
		o.Status = OrderStatusPartiallyRefunded
	}
	return full, nil
}

type TicketStatus string

const (
	TicketStatusIssued      TicketStatus = "issued"
	TicketStatusCheckedIn   TicketStatus = "checked_in"
	TicketStatusCancelled   TicketStatus = "cancelled"
	TicketStatusTransferred TicketStatus = "transferred"
)

type Ticket struct {
	ID           uint `gorm:"primaryKey"`
	OrderID      uint `gorm:"not null;index"`
	TicketTypeID uint `gorm:"not null;index"`
	EventID      uint `gorm:"not null;index"`

	// QRCode is the ticket's immutable identity, generated at issuance.
	// It is the sole key used by check-in and lookup.
	QRCode string `gorm:"size:64;not null;uniqueIndex"`

	Status        TicketStatus `gorm:"type:varchar(16);not null;default:issued"`
	AttendeeName  string       `gorm:"size:200;not null"`
	AttendeeEmail string       `gorm:"size:200;not null"`

	CheckedInAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *Ticket) CheckIn(now time.Time) error {
	if t.Status != TicketStatusIssued {
		return ErrInvalidTransition
	}
	t.Status = TicketStatusCheckedIn
	t.CheckedInAt = &now
	return nil
}

// Cancel voids the ticket on refund. Tickets are cancelled, never deleted.
func (t *Ticket) Cancel() error {
	if t.Status == TicketStatusCancelled {
		return ErrInvalidTransition
	}
	t.Status = TicketStatusCancelled
	return nil
}
