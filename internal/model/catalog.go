package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidTransition = errors.New("invalid status transition")

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

type Event struct {
	ID          uint        `gorm:"primaryKey"`
	Title       string      `gorm:"size:200;not null"`
	Slug        string      `gorm:"size:220;not null;uniqueIndex"`
	Status      EventStatus `gorm:"type:varchar(16);not null;default:draft"`
	StartsAt    time.Time   `gorm:"not null"`
	EndsAt      time.Time   `gorm:"not null"`
	MaxCapacity int         `gorm:"not null;default:0"`

	RecurrenceParentID *uint      `gorm:"index"`
	RecurrenceRule     string     `gorm:"size:32"`
	RecurrenceEndAt    *time.Time

	TicketTypes []TicketType `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Publish moves a draft event on sale.
func (e *Event) Publish() error {
	if e.Status != EventStatusDraft {
		return ErrInvalidTransition
	}
	e.Status = EventStatusPublished
	return nil
}

func (e *Event) Cancel() error {
	if e.Status != EventStatusDraft && e.Status != EventStatusPublished {
		return ErrInvalidTransition
	}
	e.Status = EventStatusCancelled
	return nil
}

func (e *Event) Complete() error {
	if e.Status != EventStatusPublished {
		return ErrInvalidTransition
	}
	e.Status = EventStatusCompleted
	return nil
}

type TicketType struct {
	ID                uint   `gorm:"primaryKey"`
	EventID           uint   `gorm:"not null;index"`
	Name              string `gorm:"size:100;not null"`
	PriceCents        int64  `gorm:"not null;check:price_cents >= 0"`
	QuantityAvailable int    `gorm:"not null;check:quantity_available > 0"`
	QuantitySold      int    `gorm:"not null;default:0;check:quantity_sold >= 0"`
	MaxPerOrder       int    `gorm:"not null;default:10"`
	SalesStartAt      *time.Time
	SalesEndAt        *time.Time

	PricingTiers []PricingTier `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AvailableQuantity is the number of units still sellable. Reading it
// from an unlocked row is advisory only; the issuer re-reads it under a
// row lock before selling.
func (t *TicketType) AvailableQuantity() int {
	if remaining := t.QuantityAvailable - t.QuantitySold; remaining > 0 {
		return remaining
	}
	return 0
}

func (t *TicketType) SoldOut() bool {
	return t.QuantitySold >= t.QuantityAvailable
}

// OnSale reports whether the sales window is open at the given instant.
// Open-ended bounds are allowed.
func (t *TicketType) OnSale(now time.Time) bool {
	if t.SalesStartAt != nil && now.Before(*t.SalesStartAt) {
		return false
	}
	if t.SalesEndAt != nil && now.After(*t.SalesEndAt) {
		return false
	}
	return true
}

// CurrentPriceCents resolves the buyer-visible price: the first active
// pricing tier in creation order, else the base price. Tiers never gate
// inventory, they only override price.
func (t *TicketType) CurrentPriceCents(now time.Time) int64 {
	for i := range t.PricingTiers {
		if t.PricingTiers[i].ActiveAt(now, t.QuantitySold) {
			return t.PricingTiers[i].PriceCents
		}
	}
	return t.PriceCents
}

type PricingTier struct {
	ID           uint   `gorm:"primaryKey"`
	TicketTypeID uint   `gorm:"not null;index"`
	Name         string `gorm:"size:100;not null"`
	PriceCents   int64  `gorm:"not null;check:price_cents >= 0"`

	// Quantity-bounded: active while quantity_sold < quantity_limit.
	QuantityLimit *int
	// Time-bounded: active while now is within [starts_at, ends_at].
	StartsAt *time.Time
	EndsAt   *time.Time

	CreatedAt time.Time
}

func (p *PricingTier) ActiveAt(now time.Time, quantitySold int) bool {
	if p.QuantityLimit != nil && quantitySold >= *p.QuantityLimit {
		return false
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && now.After(*p.EndsAt) {
		return false
	}
	return true
}

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

type PromoCode struct {
	ID            uint         `gorm:"primaryKey"`
	EventID       uint         `gorm:"not null;index;uniqueIndex:idx_promo_event_code"`
	Code          string       `gorm:"size:64;not null;uniqueIndex:idx_promo_event_code"`
	DiscountType  DiscountType `gorm:"type:varchar(16);not null"`
	DiscountValue int64        `gorm:"not null"`
	MaxUses       *int
	CurrentUses   int  `gorm:"not null;default:0"`
	Active        bool `gorm:"not null;default:true"`
	StartsAt      *time.Time
	EndsAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *PromoCode) Usable(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && now.After(*p.EndsAt) {
		return false
	}
	if p.MaxUses != nil && p.CurrentUses >= *p.MaxUses {
		return false
	}
	return true
}

// DiscountCents computes the discount against a subtotal. Percentage
// discounts round half-up to the nearest cent and the result is capped
// at the subtotal.
func (p *PromoCode) DiscountCents(subtotalCents int64) int64 {
	var discount int64
	switch p.DiscountType {
	case DiscountTypePercentage:
		discount = decimal.NewFromInt(subtotalCents).
			Mul(decimal.NewFromInt(p.DiscountValue)).
			Div(decimal.NewFromInt(100)).
			Round(0).IntPart()
	case DiscountTypeFixed:
		discount = p.DiscountValue
	}
	if discount > subtotalCents {
		return subtotalCents
	}
	if discount < 0 {
		return 0
	}
	return discount
}
