package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderComplete(t *testing.T) {
	o := &Order{Status: OrderStatusPending}
	require.NoError(t, o.Complete())
	assert.Equal(t, OrderStatusCompleted, o.Status)
	assert.ErrorIs(t, o.Complete(), ErrInvalidTransition)
}

func TestApplyRefundPartialThenFull(t *testing.T) {
	o := &Order{Status: OrderStatusCompleted, TotalCents: 13025}

	full, err := o.ApplyRefund(5000)
	require.NoError(t, err)
	assert.False(t, full)
	assert.Equal(t, OrderStatusPartiallyRefunded, o.Status)
	assert.Equal(t, int64(8025), o.RemainingRefundableCents())

	full, err = o.ApplyRefund(8025)
	require.NoError(t, err)
	assert.True(t, full)
	assert.Equal(t, OrderStatusRefunded, o.Status)
	assert.Equal(t, int64(0), o.RemainingRefundableCents())

	_, err = o.ApplyRefund(100)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplyRefundOverRemainingCountsAsFull(t *testing.T) {
	o := &Order{Status: OrderStatusPartiallyRefunded, TotalCents: 10000, RefundAmountCents: 9950}

	full, err := o.ApplyRefund(60)
	require.NoError(t, err)
	assert.True(t, full)
	assert.Equal(t, OrderStatusRefunded, o.Status)
}

func TestOrderRefundable(t *testing.T) {
	assert.True(t, (&Order{Status: OrderStatusCompleted}).Refundable())
	assert.True(t, (&Order{Status: OrderStatusPartiallyRefunded}).Refundable())
	assert.False(t, (&Order{Status: OrderStatusPending}).Refundable())
	assert.False(t, (&Order{Status: OrderStatusRefunded}).Refundable())
	assert.False(t, (&Order{Status: OrderStatusCancelled}).Refundable())
}

func TestTicketCheckIn(t *testing.T) {
	now := time.Now()
	tk := &Ticket{Status: TicketStatusIssued}

	require.NoError(t, tk.CheckIn(now))
	assert.Equal(t, TicketStatusCheckedIn, tk.Status)
	require.NotNil(t, tk.CheckedInAt)
	assert.Equal(t, now, *tk.CheckedInAt)

	assert.ErrorIs(t, tk.CheckIn(now), ErrInvalidTransition)

	cancelled := &Ticket{Status: TicketStatusCancelled}
	assert.ErrorIs(t, cancelled.CheckIn(now), ErrInvalidTransition)
}

func TestTicketCancel(t *testing.T) {
	tk := &Ticket{Status: TicketStatusCheckedIn}
	require.NoError(t, tk.Cancel())
	assert.Equal(t, TicketStatusCancelled, tk.Status)
	assert.ErrorIs(t, tk.Cancel(), ErrInvalidTransition)
}
