package domain

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tessera-live/tessera/internal/model"
	"github.com/tessera-live/tessera/internal/monitoring"
	"github.com/tessera-live/tessera/internal/repository"
	"github.com/tessera-live/tessera/internal/service"
)

type GuestListService interface {
	Add(entry *model.GuestListEntry) error
	Get(id uint) (*model.GuestListEntry, error)
	ListForEvent(eventID uint) ([]model.GuestListEntry, error)
	Redeem(entryID uint) (*IssueResult, *model.GuestListEntry, error)
}

type guestListService struct {
	db            *gorm.DB
	logger        *zap.Logger
	guestListRepo repository.GuestListRepo
	ttRepo        repository.TicketTypeRepo
	issuer        IssuerService
}

var _ GuestListService = (*guestListService)(nil)

func NewGuestListService(db *gorm.DB, logger *zap.Logger, guestListRepo repository.GuestListRepo,
	ttRepo repository.TicketTypeRepo, issuer IssuerService) *guestListService {
	return &guestListService{
		db:            db,
		logger:        logger,
		guestListRepo: guestListRepo,
		ttRepo:        ttRepo,
		issuer:        issuer,
	}
}

func (s *guestListService) Add(entry *model.GuestListEntry) error {
	if entry.GuestName == "" || entry.GuestEmail == "" {
		return service.Validationf("guest", "name and email are required")
	}
	if entry.Quantity < 1 {
		return service.Validationf("quantity", "must be a positive integer")
	}
	tt, err := s.ttRepo.GetByID(entry.TicketTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return service.ErrNotFound
		}
		return err
	}
	if tt.EventID != entry.EventID {
		return service.Validationf("ticket_type_id", "ticket type does not belong to event")
	}
	return s.guestListRepo.Create(entry)
}

func (s *guestListService) Get(id uint) (*model.GuestListEntry, error) {
	entry, err := s.guestListRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *guestListService) ListForEvent(eventID uint) ([]model.GuestListEntry, error) {
	return s.guestListRepo.GetByEventID(eventID)
}

// Redeem converts a comp allocation into a real zero-cost order. The
// entry row is locked before the issuer locks the ticket type row; that
// order is fixed, and the redeemed flag is re-checked post-lock so two
// concurrent redemptions succeed exactly once.
func (s *guestListService) Redeem(entryID uint) (*IssueResult, *model.GuestListEntry, error) {
	var result *IssueResult
	var redeemed *model.GuestListEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		guestListRepo := s.guestListRepo.WithTx(tx)

		entry, err := guestListRepo.GetByIDForUpdate(entryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return service.ErrNotFound
			}
			return err
		}
		if entry.Redeemed {
			return service.ErrAlreadyRedeemed
		}

		res, err := s.issuer.IssueInTx(tx, IssueRequest{
			EventID: entry.EventID,
			Items: []LineItem{
				{TicketTypeID: entry.TicketTypeID, Quantity: entry.Quantity},
			},
			Buyer: Buyer{
				Name:  entry.GuestName,
				Email: entry.GuestEmail,
			},
			Source:        model.OrderSourceGuestList,
			PaymentMethod: "comp",
			Comp:          true,
		})
		if err != nil {
			return err
		}

		if err := entry.MarkRedeemed(res.Order.ID, time.Now()); err != nil {
			return err
		}
		if err := guestListRepo.Save(entry); err != nil {
			return err
		}

		result = res
		redeemed = entry
		return nil
	})
	if err != nil {
		var conflict *service.InsufficientInventoryError
		if errors.As(err, &conflict) {
			monitoring.AvailabilityConflict()
		}
		return nil, nil, err
	}

	monitoring.OrderIssued(string(model.OrderSourceGuestList), len(result.Tickets))
	s.logger.Info("guest list entry redeemed",
		zap.Uint("entry_id", redeemed.ID),
		zap.Uint("order_id", result.Order.ID),
		zap.Int("tickets", len(result.Tickets)))
	return result, redeemed, nil
}
