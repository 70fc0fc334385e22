package domain

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tessera-live/tessera/internal/model"
	"github.com/tessera-live/tessera/internal/repository"
	"github.com/tessera-live/tessera/internal/service"
)

// These tests exercise the row-lock discipline against a real database.
// They are skipped unless TEST_DATABASE_DSN points at a postgres
// instance the suite may drop tables in.

type testEnv struct {
	db       *gorm.DB
	issuer   IssuerService
	refunds  RefundService
	guests   GuestListService
	waitlist WaitlistService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Migrator().DropTable(
		&model.Ticket{}, &model.Order{}, &model.WaitlistEntry{}, &model.GuestListEntry{},
		&model.PricingTier{}, &model.PromoCode{}, &model.TicketType{}, &model.Event{},
	))
	require.NoError(t, db.AutoMigrate(
		&model.Event{}, &model.TicketType{}, &model.PricingTier{}, &model.PromoCode{},
		&model.Order{}, &model.Ticket{}, &model.WaitlistEntry{}, &model.GuestListEntry{},
	))

	logger := zap.NewNop()
	eventRepo := repository.NewEventRepoGorm(db)
	ttRepo := repository.NewTicketTypeRepoGorm(db)
	orderRepo := repository.NewOrderRepoGorm(db)
	promoRepo := repository.NewPromoCodeRepoGorm(db)
	waitlistRepo := repository.NewWaitlistRepoGorm(db)
	guestRepo := repository.NewGuestListRepoGorm(db)

	issuer := NewIssuerService(db, logger, eventRepo, ttRepo, orderRepo, promoRepo)
	return &testEnv{
		db:       db,
		issuer:   issuer,
		refunds:  NewRefundService(db, logger, orderRepo, ttRepo),
		guests:   NewGuestListService(db, logger, guestRepo, ttRepo, issuer),
		waitlist: NewWaitlistService(db, logger, 24*time.Hour, waitlistRepo, eventRepo),
	}
}

func (env *testEnv) seedEvent(t *testing.T, capacities ...int) (*model.Event, []model.TicketType) {
	t.Helper()
	event := &model.Event{
		Title:    "Load Test Night",
		Slug:     fmt.Sprintf("load-test-%d", time.Now().UnixNano()),
		Status:   model.EventStatusPublished,
		StartsAt: time.Now().Add(24 * time.Hour),
		EndsAt:   time.Now().Add(28 * time.Hour),
	}
	require.NoError(t, env.db.Create(event).Error)

	types := make([]model.TicketType, 0, len(capacities))
	for i, capacity := range capacities {
		tt := model.TicketType{
			EventID:           event.ID,
			Name:              fmt.Sprintf("Tier %d", i+1),
			PriceCents:        5000,
			QuantityAvailable: capacity,
			MaxPerOrder:       100,
		}
		require.NoError(t, env.db.Create(&tt).Error)
		types = append(types, tt)
	}
	return event, types
}

func issueOne(env *testEnv, eventID, ttID uint, qty int, email string) error {
	_, err := env.issuer.Issue(IssueRequest{
		EventID:       eventID,
		Items:         []LineItem{{TicketTypeID: ttID, Quantity: qty}},
		Buyer:         Buyer{Name: "Racer", Email: email},
		Source:        model.OrderSourceCheckout,
		PaymentMethod: "card",
	})
	return err
}

func TestConcurrentIssueNeverOversells(t *testing.T) {
	const (
		capacity    = 30
		concurrency = 200
	)
	env := setupTestEnv(t)
	event, types := env.seedEvent(t, capacity)

	var success, conflict, other int64
	var wg sync.WaitGroup
	for i := range concurrency {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			err := issueOne(env, event.ID, types[0].ID, 1, fmt.Sprintf("racer%d@example.com", n))
			switch {
			case err == nil:
				atomic.AddInt64(&success, 1)
			case isInventoryConflict(err):
				atomic.AddInt64(&conflict, 1)
			default:
				atomic.AddInt64(&other, 1)
				t.Logf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(capacity), success)
	assert.Equal(t, int64(concurrency-capacity), conflict)
	assert.Equal(t, int64(0), other)

	var tt model.TicketType
	require.NoError(t, env.db.First(&tt, types[0].ID).Error)
	assert.Equal(t, capacity, tt.QuantitySold)

	var ticketCount int64
	env.db.Model(&model.Ticket{}).Where("ticket_type_id = ?", types[0].ID).Count(&ticketCount)
	assert.Equal(t, int64(capacity), ticketCount)
}

func TestConcurrentPartialStockLoserSeesRemaining(t *testing.T) {
	env := setupTestEnv(t)
	event, types := env.seedEvent(t, 100)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range 2 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs[n] = issueOne(env, event.ID, types[0].ID, 60, fmt.Sprintf("bulk%d@example.com", n))
		}(i)
	}
	wg.Wait()

	var conflicts []*service.InsufficientInventoryError
	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var conflict *service.InsufficientInventoryError
		require.ErrorAs(t, err, &conflict)
		conflicts = append(conflicts, conflict)
	}
	require.Equal(t, 1, successes)
	require.Len(t, conflicts, 1)
	assert.Equal(t, 60, conflicts[0].Requested)
	assert.Equal(t, 40, conflicts[0].Remaining)

	var tt model.TicketType
	require.NoError(t, env.db.First(&tt, types[0].ID).Error)
	assert.Equal(t, 60, tt.QuantitySold)
}

func TestIssueRollsBackWholeOrderOnConflict(t *testing.T) {
	env := setupTestEnv(t)
	event, types := env.seedEvent(t, 50, 2)

	_, err := env.issuer.Issue(IssueRequest{
		EventID: event.ID,
		Items: []LineItem{
			{TicketTypeID: types[0].ID, Quantity: 3},
			{TicketTypeID: types[1].ID, Quantity: 5}, // only 2 left
		},
		Buyer:         Buyer{Name: "Partial", Email: "partial@example.com"},
		Source:        model.OrderSourceCheckout,
		PaymentMethod: "card",
	})
	require.Error(t, err)
	assert.True(t, isInventoryConflict(err))

	var orderCount int64
	env.db.Model(&model.Order{}).Count(&orderCount)
	assert.Equal(t, int64(0), orderCount)

	var first model.TicketType
	require.NoError(t, env.db.First(&first, types[0].ID).Error)
	assert.Equal(t, 0, first.QuantitySold)
}

func TestRefundRestoresInventory(t *testing.T) {
	env := setupTestEnv(t)
	event, types := env.seedEvent(t, 10)

	result, err := env.issuer.Issue(IssueRequest{
		EventID:       event.ID,
		Items:         []LineItem{{TicketTypeID: types[0].ID, Quantity: 3}},
		Buyer:         Buyer{Name: "Refunder", Email: "refunder@example.com"},
		Source:        model.OrderSourceCheckout,
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	_, amount, err := env.refunds.ResolveAmount(result.Order.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, result.Order.TotalCents, amount)

	refund, err := env.refunds.Reverse(result.Order.ID, amount, "re_test", "event cancelled")
	require.NoError(t, err)
	assert.True(t, refund.Full)
	assert.Equal(t, 3, refund.FreedByType[types[0].ID])

	var tt model.TicketType
	require.NoError(t, env.db.First(&tt, types[0].ID).Error)
	assert.Equal(t, 0, tt.QuantitySold)

	var cancelled int64
	env.db.Model(&model.Ticket{}).
		Where("order_id = ? AND status = ?", result.Order.ID, model.TicketStatusCancelled).
		Count(&cancelled)
	assert.Equal(t, int64(3), cancelled)

	var order model.Order
	require.NoError(t, env.db.First(&order, result.Order.ID).Error)
	assert.Equal(t, model.OrderStatusRefunded, order.Status)
}

func TestGuestListConcurrentRedeemIssuesOnce(t *testing.T) {
	const concurrency = 10
	env := setupTestEnv(t)
	event, types := env.seedEvent(t, 20)

	entry := &model.GuestListEntry{
		EventID:      event.ID,
		TicketTypeID: types[0].ID,
		GuestName:    "VIP Guest",
		GuestEmail:   "vip@example.com",
		Quantity:     2,
	}
	require.NoError(t, env.guests.Add(entry))

	var success, alreadyRedeemed int64
	var wg sync.WaitGroup
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := env.guests.Redeem(entry.ID)
			switch {
			case err == nil:
				atomic.AddInt64(&success, 1)
			case errors.Is(err, service.ErrAlreadyRedeemed):
				atomic.AddInt64(&alreadyRedeemed, 1)
			default:
				t.Logf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), success)
	assert.Equal(t, int64(concurrency-1), alreadyRedeemed)

	var tt model.TicketType
	require.NoError(t, env.db.First(&tt, types[0].ID).Error)
	assert.Equal(t, 2, tt.QuantitySold)

	var ticketCount int64
	env.db.Model(&model.Ticket{}).Where("event_id = ?", event.ID).Count(&ticketCount)
	assert.Equal(t, int64(2), ticketCount)
}

func TestConcurrentWaitlistJoinsGetDensePositions(t *testing.T) {
	const concurrency = 50
	env := setupTestEnv(t)
	event, _ := env.seedEvent(t, 1)

	var wg sync.WaitGroup
	for i := range concurrency {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := env.waitlist.Join(event.ID, nil, fmt.Sprintf("wait%d@example.com", n), 1)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	var entries []model.WaitlistEntry
	require.NoError(t, env.db.Where("event_id = ?", event.ID).Order("position").Find(&entries).Error)
	require.Len(t, entries, concurrency)
	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Position)
	}
}

func isInventoryConflict(err error) bool {
	var conflict *service.InsufficientInventoryError
	return errors.As(err, &conflict)
}
