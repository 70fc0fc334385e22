package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPayload struct {
	EventID uint   `json:"event_id"`
	Email   string `json:"email"`
}

func newMockCache(t *testing.T) (*RedisCache, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	return &RedisCache{Client: client}, mock
}

func TestGetMissingKey(t *testing.T) {
	c, mock := newMockCache(t)
	mock.ExpectGet("event:7:catalog").RedisNil()

	var dest stubPayload
	found, err := c.Get(MakeEventCatalogKey(7), &dest)
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetAndGetEventCatalog(t *testing.T) {
	c, mock := newMockCache(t)
	view := stubPayload{EventID: 7, Email: "a@b.c"}
	data, err := json.Marshal(view)
	require.NoError(t, err)

	mock.ExpectSet("event:7:catalog", data, 5*time.Minute).SetVal("OK")
	require.NoError(t, c.SetEventCatalog(7, view))

	mock.ExpectGet("event:7:catalog").SetVal(string(data))
	var dest stubPayload
	found, err := c.GetEventCatalog(7, &dest)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, view, dest)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateEvent(t *testing.T) {
	c, mock := newMockCache(t)
	mock.ExpectDel("event:7:catalog", "event:slug:summer-fest").SetVal(2)

	require.NoError(t, c.InvalidateEvent(7, "summer-fest"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTakePendingCheckout(t *testing.T) {
	c, mock := newMockCache(t)
	stash := stubPayload{EventID: 3, Email: "buyer@example.com"}
	data, err := json.Marshal(stash)
	require.NoError(t, err)

	mock.ExpectGetDel("checkout:intent:pi_123").SetVal(string(data))

	var dest stubPayload
	require.NoError(t, c.TakePendingCheckout("pi_123", &dest))
	assert.Equal(t, stash, dest)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTakePendingCheckoutMissing(t *testing.T) {
	c, mock := newMockCache(t)
	mock.ExpectGetDel("checkout:intent:pi_gone").RedisNil()

	var dest stubPayload
	err := c.TakePendingCheckout("pi_gone", &dest)
	assert.ErrorIs(t, err, ErrPendingCheckoutNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
