package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tessera-live/tessera/internal/model"
	"github.com/tessera-live/tessera/internal/monitoring"
	"github.com/tessera-live/tessera/internal/repository"
	"github.com/tessera-live/tessera/internal/service"
)

type LineItem struct {
	TicketTypeID uint `json:"ticket_type_id"`
	Quantity     int  `json:"quantity"`
}

type Buyer struct {
	UserID *uint  `json:"user_id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// IssueRequest is everything the issuer needs to turn line items into an
// order. It is JSON-serializable so checkout can stash it against a
// payment intent and replay it when the provider confirms.
type IssueRequest struct {
	EventID         uint              `json:"event_id"`
	Items           []LineItem        `json:"items"`
	Buyer           Buyer             `json:"buyer"`
	Source          model.OrderSource `json:"source"`
	PaymentMethod   string            `json:"payment_method"`
	PaymentIntentID string            `json:"payment_intent_id,omitempty"`
	PromoCode       string            `json:"promo_code,omitempty"`
	FeeCents        int64             `json:"fee_cents"`

	// Comp orders (guest list) price every unit at zero; priced orders
	// resolve the tier price at issue time.
	Comp bool `json:"comp"`

	// EnforceSalesWindow is set by public checkout; box office and guest
	// list redemption may sell outside the window.
	EnforceSalesWindow bool `json:"enforce_sales_window"`
}

type IssueResult struct {
	Order   *model.Order
	Tickets []model.Ticket
}

type IssuerService interface {
	Issue(req IssueRequest) (*IssueResult, error)
	IssueInTx(tx *gorm.DB, req IssueRequest) (*IssueResult, error)
}

type issuerService struct {
	db        *gorm.DB
	logger    *zap.Logger
	eventRepo repository.EventRepo
	ttRepo    repository.TicketTypeRepo
	orderRepo repository.OrderRepo
	promoRepo repository.PromoCodeRepo
}

var _ IssuerService = (*issuerService)(nil)

func NewIssuerService(db *gorm.DB, logger *zap.Logger, eventRepo repository.EventRepo,
	ttRepo repository.TicketTypeRepo, orderRepo repository.OrderRepo,
	promoRepo repository.PromoCodeRepo) *issuerService {
	return &issuerService{
		db:        db,
		logger:    logger,
		eventRepo: eventRepo,
		ttRepo:    ttRepo,
		orderRepo: orderRepo,
		promoRepo: promoRepo,
	}
}

// Issue runs the full issuing transaction. Any error rolls everything
// back: no order, no tickets, no counter movement.
func (s *issuerService) Issue(req IssueRequest) (*IssueResult, error) {
	var result *IssueResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r, err := s.IssueInTx(tx, req)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		var conflict *service.InsufficientInventoryError
		if errors.As(err, &conflict) {
			monitoring.AvailabilityConflict()
		}
		return nil, err
	}
	monitoring.OrderIssued(string(req.Source), len(result.Tickets))
	s.logger.Info("order issued",
		zap.Uint("order_id", result.Order.ID),
		zap.String("source", string(req.Source)),
		zap.Int("tickets", len(result.Tickets)),
		zap.Int64("total_cents", result.Order.TotalCents))
	return result, nil
}

// IssueInTx is the locked section of the purchase path. Guest list
// redemption calls it directly after locking its entry row so the entry
// lock and the ticket issuance share one transaction.
//
// Lock discipline: ticket type rows are locked FOR UPDATE in ascending
// id order, and every availability decision uses the freshly locked row.
func (s *issuerService) IssueInTx(tx *gorm.DB, req IssueRequest) (*IssueResult, error) {
	now := time.Now()

	quantities, err := s.preValidate(req)
	if err != nil {
		return nil, err
	}

	eventRepo := s.eventRepo.WithTx(tx)
	ttRepo := s.ttRepo.WithTx(tx)
	orderRepo := s.orderRepo.WithTx(tx)

	event, err := eventRepo.GetByID(req.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, err
	}

	// ascending id order bounds deadlock risk when orders span types
	ids := make([]uint, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var subtotalCents int64
	locked := make(map[uint]*model.TicketType, len(ids))
	for _, id := range ids {
		tt, err := ttRepo.GetByIDForUpdate(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, service.ErrNotFound
			}
			return nil, err
		}
		if tt.EventID != event.ID {
			return nil, service.Validationf("ticket_type_id", "ticket type %d does not belong to event %d", id, event.ID)
		}
		qty := quantities[id]
		if qty > tt.MaxPerOrder {
			return nil, service.Validationf("quantity", "ticket type %d allows at most %d per order", id, tt.MaxPerOrder)
		}
		if req.EnforceSalesWindow {
			if event.Status != model.EventStatusPublished || !tt.OnSale(now) {
				return nil, service.ErrSalesClosed
			}
		}
		if qty > tt.AvailableQuantity() {
			return nil, &service.InsufficientInventoryError{
				TicketTypeID: id,
				Requested:    qty,
				Remaining:    tt.AvailableQuantity(),
			}
		}

		if !req.Comp {
			tiers, err := ttRepo.TiersByTicketTypeID(id)
			if err != nil {
				return nil, err
			}
			tt.PricingTiers = tiers
			subtotalCents += tt.CurrentPriceCents(now) * int64(qty)
		}
		locked[id] = tt
	}

	var discountCents int64
	var promoID *uint
	if req.PromoCode != "" {
		promo, err := s.promoRepo.WithTx(tx).GetByEventAndCode(event.ID, req.PromoCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, service.ErrPromoNotUsable
			}
			return nil, err
		}
		if !promo.Usable(now) {
			return nil, service.ErrPromoNotUsable
		}
		discountCents = promo.DiscountCents(subtotalCents)
		if err := s.promoRepo.WithTx(tx).IncrementUses(promo.ID); err != nil {
			return nil, err
		}
		promoID = &promo.ID
	}

	totalCents := subtotalCents + req.FeeCents - discountCents
	if totalCents < 0 {
		totalCents = 0
	}

	order := &model.Order{
		EventID:         event.ID,
		UserID:          req.Buyer.UserID,
		BuyerName:       req.Buyer.Name,
		BuyerEmail:      req.Buyer.Email,
		Status:          model.OrderStatusPending,
		Source:          req.Source,
		SubtotalCents:   subtotalCents,
		FeeCents:        req.FeeCents,
		DiscountCents:   discountCents,
		TotalCents:      totalCents,
		PaymentMethod:   req.PaymentMethod,
		PaymentIntentID: req.PaymentIntentID,
		PromoCodeID:     promoID,
	}
	if err := orderRepo.Create(order); err != nil {
		return nil, err
	}

	tickets := make([]model.Ticket, 0)
	for _, id := range ids {
		qty := quantities[id]
		for range qty {
			ticket := model.Ticket{
				OrderID:       order.ID,
				TicketTypeID:  id,
				EventID:       event.ID,
				QRCode:        uuid.NewString(),
				Status:        model.TicketStatusIssued,
				AttendeeName:  req.Buyer.Name,
				AttendeeEmail: req.Buyer.Email,
			}
			if err := orderRepo.CreateTicket(&ticket); err != nil {
				return nil, err
			}
			tickets = append(tickets, ticket)
		}
		if err := ttRepo.AddQuantitySold(id, qty); err != nil {
			return nil, err
		}
	}

	if err := order.Complete(); err != nil {
		return nil, err
	}
	if err := orderRepo.Save(order); err != nil {
		return nil, err
	}

	return &IssueResult{Order: order, Tickets: tickets}, nil
}

// preValidate covers the cheap, non-authoritative checks. Quantities for
// the same type are aggregated so a duplicated line item cannot slip
// past max_per_order or the availability check.
func (s *issuerService) preValidate(req IssueRequest) (map[uint]int, error) {
	if len(req.Items) == 0 {
		return nil, service.Validationf("items", "order must contain at least one line item")
	}
	if req.Buyer.Name == "" || req.Buyer.Email == "" {
		return nil, service.Validationf("buyer", "name and email are required")
	}
	switch req.Source {
	case model.OrderSourceCheckout, model.OrderSourceBoxOffice, model.OrderSourceGuestList:
	default:
		return nil, service.Validationf("source", "unknown order source %q", req.Source)
	}

	quantities := make(map[uint]int, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, service.Validationf("quantity", "must be a positive integer")
		}
		quantities[item.TicketTypeID] += item.Quantity
	}
	return quantities, nil
}
