package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitlistNotifyAndExpiry(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	w := &WaitlistEntry{Status: WaitlistStatusWaiting}

	require.NoError(t, w.Notify(now, 24*time.Hour))
	assert.Equal(t, WaitlistStatusNotified, w.Status)
	require.NotNil(t, w.ExpiresAt)
	assert.Equal(t, now.Add(24*time.Hour), *w.ExpiresAt)

	assert.False(t, w.OfferExpired(now.Add(23*time.Hour)))
	assert.True(t, w.OfferExpired(now.Add(25*time.Hour)))

	// only a waiting entry can be notified
	assert.ErrorIs(t, w.Notify(now, time.Hour), ErrInvalidTransition)
}

func TestWaitlistConvertedNeverExpires(t *testing.T) {
	now := time.Now()
	stale := now.Add(-time.Hour)
	w := &WaitlistEntry{Status: WaitlistStatusConverted, ExpiresAt: &stale}
	assert.False(t, w.OfferExpired(now))
}

func TestWaitlistConvert(t *testing.T) {
	waiting := &WaitlistEntry{Status: WaitlistStatusWaiting}
	require.NoError(t, waiting.Convert())
	assert.Equal(t, WaitlistStatusConverted, waiting.Status)

	notified := &WaitlistEntry{Status: WaitlistStatusNotified}
	require.NoError(t, notified.Convert())

	expired := &WaitlistEntry{Status: WaitlistStatusExpired}
	assert.ErrorIs(t, expired.Convert(), ErrInvalidTransition)
}

func TestWaitlistExpire(t *testing.T) {
	w := &WaitlistEntry{Status: WaitlistStatusNotified}
	require.NoError(t, w.Expire())
	assert.Equal(t, WaitlistStatusExpired, w.Status)

	waiting := &WaitlistEntry{Status: WaitlistStatusWaiting}
	assert.ErrorIs(t, waiting.Expire(), ErrInvalidTransition)
}

func TestWaitlistCancel(t *testing.T) {
	w := &WaitlistEntry{Status: WaitlistStatusNotified}
	require.NoError(t, w.Cancel())
	assert.Equal(t, WaitlistStatusCancelled, w.Status)

	converted := &WaitlistEntry{Status: WaitlistStatusConverted}
	assert.ErrorIs(t, converted.Cancel(), ErrInvalidTransition)
	assert.ErrorIs(t, w.Cancel(), ErrInvalidTransition)
}

func TestGuestListMarkRedeemed(t *testing.T) {
	now := time.Now()
	g := &GuestListEntry{}

	require.NoError(t, g.MarkRedeemed(42, now))
	assert.True(t, g.Redeemed)
	require.NotNil(t, g.OrderID)
	assert.Equal(t, uint(42), *g.OrderID)

	assert.ErrorIs(t, g.MarkRedeemed(43, now), ErrInvalidTransition)
	assert.Equal(t, uint(42), *g.OrderID)
}
