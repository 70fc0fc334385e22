package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTransitions(t *testing.T) {
	e := &Event{Status: EventStatusDraft}

	require.NoError(t, e.Publish())
	assert.Equal(t, EventStatusPublished, e.Status)
	assert.ErrorIs(t, e.Publish(), ErrInvalidTransition)

	require.NoError(t, e.Complete())
	assert.Equal(t, EventStatusCompleted, e.Status)
	assert.ErrorIs(t, e.Cancel(), ErrInvalidTransition)

	cancellable := &Event{Status: EventStatusPublished}
	require.NoError(t, cancellable.Cancel())
	assert.Equal(t, EventStatusCancelled, cancellable.Status)
}

func TestTicketTypeAvailability(t *testing.T) {
	tt := &TicketType{QuantityAvailable: 100, QuantitySold: 60}
	assert.Equal(t, 40, tt.AvailableQuantity())
	assert.False(t, tt.SoldOut())

	tt.QuantitySold = 100
	assert.Equal(t, 0, tt.AvailableQuantity())
	assert.True(t, tt.SoldOut())

	// never negative even if counters drift
	tt.QuantitySold = 120
	assert.Equal(t, 0, tt.AvailableQuantity())
}

func TestTicketTypeOnSale(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	open := &TicketType{}
	assert.True(t, open.OnSale(now))

	windowed := &TicketType{SalesStartAt: &before, SalesEndAt: &after}
	assert.True(t, windowed.OnSale(now))
	assert.False(t, windowed.OnSale(before.Add(-time.Minute)))
	assert.False(t, windowed.OnSale(after.Add(time.Minute)))
}

func TestCurrentPriceCents(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	limit := 50

	tt := &TicketType{
		PriceCents:   5000,
		QuantitySold: 10,
		PricingTiers: []PricingTier{
			{Name: "Early Bird", PriceCents: 3500, QuantityLimit: &limit},
			{Name: "Regular", PriceCents: 4500},
		},
	}

	// first active tier wins
	assert.Equal(t, int64(3500), tt.CurrentPriceCents(now))

	// early bird exhausted, next tier applies
	tt.QuantitySold = 50
	assert.Equal(t, int64(4500), tt.CurrentPriceCents(now))

	// no tiers at all falls back to the base price
	tt.PricingTiers = nil
	assert.Equal(t, int64(5000), tt.CurrentPriceCents(now))
}

func TestPricingTierActiveAt(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)
	limit := 20

	tests := []struct {
		name string
		tier PricingTier
		sold int
		want bool
	}{
		{"unbounded", PricingTier{}, 0, true},
		{"under quantity limit", PricingTier{QuantityLimit: &limit}, 19, true},
		{"at quantity limit", PricingTier{QuantityLimit: &limit}, 20, false},
		{"inside window", PricingTier{StartsAt: &start, EndsAt: &end}, 0, true},
		{"before window", PricingTier{StartsAt: &end}, 0, false},
		{"after window", PricingTier{EndsAt: &start}, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.tier.ActiveAt(now, tc.sold))
		})
	}
}

func TestPromoCodeUsable(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)
	maxUses := 5

	assert.True(t, (&PromoCode{Active: true}).Usable(now))
	assert.False(t, (&PromoCode{Active: false}).Usable(now))
	assert.False(t, (&PromoCode{Active: true, StartsAt: &future}).Usable(now))
	assert.False(t, (&PromoCode{Active: true, EndsAt: &past}).Usable(now))
	assert.True(t, (&PromoCode{Active: true, MaxUses: &maxUses, CurrentUses: 4}).Usable(now))
	assert.False(t, (&PromoCode{Active: true, MaxUses: &maxUses, CurrentUses: 5}).Usable(now))
}

func TestPromoCodeDiscountCents(t *testing.T) {
	percent := &PromoCode{DiscountType: DiscountTypePercentage, DiscountValue: 15}
	assert.Equal(t, int64(1500), percent.DiscountCents(10000))
	// 15% of 333 = 49.95, rounds to 50
	assert.Equal(t, int64(50), percent.DiscountCents(333))

	fixed := &PromoCode{DiscountType: DiscountTypeFixed, DiscountValue: 2000}
	assert.Equal(t, int64(2000), fixed.DiscountCents(10000))
	// capped at the subtotal
	assert.Equal(t, int64(1500), fixed.DiscountCents(1500))

	negative := &PromoCode{DiscountType: DiscountTypeFixed, DiscountValue: -100}
	assert.Equal(t, int64(0), negative.DiscountCents(1000))
}
