package workflow

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tessera-live/tessera/config"
	"github.com/tessera-live/tessera/internal/cache"
	"github.com/tessera-live/tessera/internal/model"
	"github.com/tessera-live/tessera/internal/mq"
	"github.com/tessera-live/tessera/internal/service"
	"github.com/tessera-live/tessera/internal/service/domain"
)

// pendingCheckoutTTL bounds how long an unconfirmed payment intent can
// claim its stashed issue request. No inventory is held while pending.
const pendingCheckoutTTL = 30 * time.Minute

type CheckoutRequest struct {
	EventID         uint              `json:"event_id"`
	Items           []domain.LineItem `json:"items"`
	Buyer           domain.Buyer      `json:"buyer"`
	PromoCode       string            `json:"promo_code,omitempty"`
	WaitlistEntryID *uint             `json:"waitlist_entry_id,omitempty"`
}

type CheckoutStatus string

const (
	CheckoutStatusCompleted       CheckoutStatus = "completed"
	CheckoutStatusRequiresPayment CheckoutStatus = "requires_payment"
)

type CheckoutResult struct {
	Status          CheckoutStatus
	Order           *model.Order
	Tickets         []model.Ticket
	PaymentIntentID string
	ClientSecret    string
	AmountCents     int64
}

// pendingCheckout is what gets stashed in redis between intent creation
// and provider confirmation.
type pendingCheckout struct {
	Issue           domain.IssueRequest `json:"issue"`
	WaitlistEntryID *uint               `json:"waitlist_entry_id,omitempty"`
}

type CheckoutWorkflow struct {
	cfg      *config.Config
	logger   *zap.Logger
	cache    *cache.RedisCache
	mqConn   *amqp.Connection
	catalog  domain.CatalogService
	issuer   domain.IssuerService
	payment  domain.PaymentService
	waitlist domain.WaitlistService
}

func NewCheckoutWorkflow(cfg *config.Config, logger *zap.Logger, redisCache *cache.RedisCache,
	mqConn *amqp.Connection, catalog domain.CatalogService, issuer domain.IssuerService,
	payment domain.PaymentService, waitlist domain.WaitlistService) *CheckoutWorkflow {
	return &CheckoutWorkflow{
		cfg:      cfg,
		logger:   logger,
		cache:    redisCache,
		mqConn:   mqConn,
		catalog:  catalog,
		issuer:   issuer,
		payment:  payment,
		waitlist: waitlist,
	}
}

// Checkout is the public priced path. In simulate mode payment succeeds
// synthetically and the order is issued inline; in sandbox/live mode a
// payment intent is created first and the issuer only runs once
// ConfirmPayment observes the provider's confirmation. The issuer call
// never happens while an external call is in flight, so no inventory
// lock is ever held across the provider round trip.
func (w *CheckoutWorkflow) Checkout(req CheckoutRequest) (*CheckoutResult, error) {
	event, err := w.catalog.GetEventByID(req.EventID)
	if err != nil {
		return nil, err
	}
	if event.Status != model.EventStatusPublished {
		return nil, service.ErrSalesClosed
	}

	subtotalCents, ticketCount, err := w.quote(event, req.Items)
	if err != nil {
		return nil, err
	}
	feeCents := w.serviceFeeCents(subtotalCents, ticketCount)

	var discountCents int64
	if req.PromoCode != "" {
		promo, err := w.catalog.ResolvePromoCode(event.ID, req.PromoCode)
		if err != nil {
			return nil, err
		}
		discountCents = promo.DiscountCents(subtotalCents)
	}

	amountCents := subtotalCents + feeCents - discountCents
	if amountCents < 0 {
		amountCents = 0
	}

	issueReq := domain.IssueRequest{
		EventID:            req.EventID,
		Items:              req.Items,
		Buyer:              req.Buyer,
		Source:             model.OrderSourceCheckout,
		PaymentMethod:      "card",
		PromoCode:          req.PromoCode,
		FeeCents:           feeCents,
		EnforceSalesWindow: true,
	}

	intent, err := w.payment.CreateIntent(amountCents)
	if err != nil {
		return nil, err
	}
	issueReq.PaymentIntentID = intent.ID

	if w.cfg.PaymentMode != config.PaymentModeSimulate {
		stash := pendingCheckout{Issue: issueReq, WaitlistEntryID: req.WaitlistEntryID}
		if err := w.cache.SetPendingCheckout(intent.ID, stash, pendingCheckoutTTL); err != nil {
			return nil, err
		}
		return &CheckoutResult{
			Status:          CheckoutStatusRequiresPayment,
			PaymentIntentID: intent.ID,
			ClientSecret:    intent.ClientSecret,
			AmountCents:     amountCents,
		}, nil
	}

	// simulate: payment success is synthesized, issue immediately
	result, err := w.issuer.Issue(issueReq)
	if err != nil {
		return nil, err
	}
	w.afterIssue(result, req.WaitlistEntryID)
	return &CheckoutResult{
		Status:          CheckoutStatusCompleted,
		Order:           result.Order,
		Tickets:         result.Tickets,
		PaymentIntentID: intent.ID,
		AmountCents:     amountCents,
	}, nil
}

// ConfirmPayment is invoked by the provider webhook once payment for an
// intent succeeds. The stash is taken atomically, so a replayed webhook
// finds nothing and cannot double-issue.
func (w *CheckoutWorkflow) ConfirmPayment(intentID string) (*CheckoutResult, error) {
	var stash pendingCheckout
	if err := w.cache.TakePendingCheckout(intentID, &stash); err != nil {
		return nil, err
	}

	result, err := w.issuer.Issue(stash.Issue)
	if err != nil {
		return nil, err
	}
	w.afterIssue(result, stash.WaitlistEntryID)
	return &CheckoutResult{
		Status:          CheckoutStatusCompleted,
		Order:           result.Order,
		Tickets:         result.Tickets,
		PaymentIntentID: intentID,
		AmountCents:     result.Order.TotalCents,
	}, nil
}

// quote prices the requested items from unlocked rows. It is advisory
// (the charge amount must be known before payment); the issuer reprices
// under lock with the same tier rules at issue time.
func (w *CheckoutWorkflow) quote(event *model.Event, items []domain.LineItem) (subtotalCents int64, ticketCount int, err error) {
	if len(items) == 0 {
		return 0, 0, service.Validationf("items", "order must contain at least one line item")
	}
	now := time.Now()
	for _, item := range items {
		if item.Quantity <= 0 {
			return 0, 0, service.Validationf("quantity", "must be a positive integer")
		}
		tt, err := w.catalog.GetTicketType(item.TicketTypeID)
		if err != nil {
			return 0, 0, err
		}
		if tt.EventID != event.ID {
			return 0, 0, service.Validationf("ticket_type_id", "ticket type %d does not belong to event %d", item.TicketTypeID, event.ID)
		}
		if !tt.OnSale(now) {
			return 0, 0, service.ErrSalesClosed
		}
		subtotalCents += tt.CurrentPriceCents(now) * int64(item.Quantity)
		ticketCount += item.Quantity
	}
	return subtotalCents, ticketCount, nil
}

// serviceFeeCents is the platform fee: a percentage of the subtotal
// rounded to the nearest cent, plus a flat amount per ticket.
func (w *CheckoutWorkflow) serviceFeeCents(subtotalCents int64, ticketCount int) int64 {
	percent := decimal.NewFromFloat(w.cfg.ServiceFeePercent).
		Mul(decimal.NewFromInt(subtotalCents)).
		Div(decimal.NewFromInt(100)).
		Round(0).IntPart()
	return percent + w.cfg.ServiceFeeFlatCents*int64(ticketCount)
}

func (w *CheckoutWorkflow) afterIssue(result *domain.IssueResult, waitlistEntryID *uint) {
	if waitlistEntryID != nil {
		if err := w.waitlist.Convert(*waitlistEntryID); err != nil {
			w.logger.Warn("waitlist conversion failed",
				zap.Uint("entry_id", *waitlistEntryID), zap.Error(err))
		}
	}

	ch, err := mq.NewChannel(w.mqConn)
	if err != nil {
		w.logger.Error("failed to open mq channel for order confirmation", zap.Error(err))
		return
	}
	defer ch.Close()
	if err := mq.SendNotification(ch, mq.NotifyOrderConfirmation, mq.OrderConfirmationPayload{
		OrderID:    result.Order.ID,
		BuyerEmail: result.Order.BuyerEmail,
		TotalCents: result.Order.TotalCents,
		Tickets:    len(result.Tickets),
	}); err != nil {
		w.logger.Error("failed to publish order confirmation",
			zap.Uint("order_id", result.Order.ID), zap.Error(err))
	}
}
