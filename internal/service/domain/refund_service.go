package domain

import (
	"errors"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tessera-live/tessera/internal/model"
	"github.com/tessera-live/tessera/internal/monitoring"
	"github.com/tessera-live/tessera/internal/repository"
	"github.com/tessera-live/tessera/internal/service"
)

type RefundResult struct {
	Order       *model.Order
	AmountCents int64
	Full        bool

	// FreedByType maps ticket type id to units returned to inventory.
	// Empty for partial refunds, which never touch tickets or counters.
	FreedByType map[uint]int
}

type RefundService interface {
	// ResolveAmount validates the requested amount against the order's
	// remaining refundable balance, defaulting to that balance when the
	// request is zero. Called before the provider round trip.
	ResolveAmount(orderID uint, requestedCents int64) (*model.Order, int64, error)

	// Reverse applies the ledger side of a refund whose monetary side
	// already succeeded. All-or-nothing: an error leaves the order in
	// its prior state.
	Reverse(orderID uint, amountCents int64, refundID, reason string) (*RefundResult, error)
}

type refundService struct {
	db        *gorm.DB
	logger    *zap.Logger
	orderRepo repository.OrderRepo
	ttRepo    repository.TicketTypeRepo
}

var _ RefundService = (*refundService)(nil)

func NewRefundService(db *gorm.DB, logger *zap.Logger, orderRepo repository.OrderRepo,
	ttRepo repository.TicketTypeRepo) *refundService {
	return &refundService{
		db:        db,
		logger:    logger,
		orderRepo: orderRepo,
		ttRepo:    ttRepo,
	}
}

func (s *refundService) ResolveAmount(orderID uint, requestedCents int64) (*model.Order, int64, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, service.ErrNotFound
		}
		return nil, 0, err
	}
	if !order.Refundable() {
		return nil, 0, service.Validationf("status", "order %d is not refundable in status %s", orderID, order.Status)
	}
	remaining := order.RemainingRefundableCents()
	if requestedCents == 0 {
		requestedCents = remaining
	}
	if requestedCents <= 0 {
		return nil, 0, service.Validationf("amount_cents", "must be positive")
	}
	if requestedCents > remaining {
		return nil, 0, service.Validationf("amount_cents", "exceeds remaining refundable balance of %d", remaining)
	}
	return order, requestedCents, nil
}

func (s *refundService) Reverse(orderID uint, amountCents int64, refundID, reason string) (*RefundResult, error) {
	var result *RefundResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		ttRepo := s.ttRepo.WithTx(tx)

		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return service.ErrNotFound
			}
			return err
		}

		// re-check under the order lock; a racing refund may have
		// consumed the balance since ResolveAmount
		if !order.Refundable() {
			return service.Validationf("status", "order %d is not refundable in status %s", orderID, order.Status)
		}
		if amountCents <= 0 {
			return service.Validationf("amount_cents", "must be positive")
		}
		if amountCents > order.RemainingRefundableCents() {
			return service.Validationf("amount_cents", "exceeds remaining refundable balance of %d", order.RemainingRefundableCents())
		}

		full, err := order.ApplyRefund(amountCents)
		if err != nil {
			return err
		}
		order.PaymentRefundID = refundID
		if reason != "" {
			order.RefundReason = reason
		}

		freed := make(map[uint]int)
		if full {
			tickets, err := orderRepo.GetTicketsByOrderID(order.ID)
			if err != nil {
				return err
			}
			for i := range tickets {
				if tickets[i].Status == model.TicketStatusCancelled {
					continue
				}
				if err := tickets[i].Cancel(); err != nil {
					return err
				}
				if err := orderRepo.SaveTicket(&tickets[i]); err != nil {
					return err
				}
				freed[tickets[i].TicketTypeID]++
			}

			// same lock discipline as issuance, in reverse: lock the
			// ticket type row before decrementing quantity_sold
			ids := make([]uint, 0, len(freed))
			for id := range freed {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			for _, id := range ids {
				if _, err := ttRepo.GetByIDForUpdate(id); err != nil {
					return err
				}
				if err := ttRepo.AddQuantitySold(id, -freed[id]); err != nil {
					return err
				}
			}
		}

		if err := orderRepo.Save(order); err != nil {
			return err
		}

		result = &RefundResult{
			Order:       order,
			AmountCents: amountCents,
			Full:        full,
			FreedByType: freed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.RefundProcessed(result.Full)
	s.logger.Info("refund applied",
		zap.Uint("order_id", result.Order.ID),
		zap.Int64("amount_cents", result.AmountCents),
		zap.Bool("full", result.Full))
	return result, nil
}
