package domain

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tessera-live/tessera/internal/model"
	"github.com/tessera-live/tessera/internal/monitoring"
	"github.com/tessera-live/tessera/internal/repository"
	"github.com/tessera-live/tessera/internal/service"
)

type WaitlistService interface {
	Join(eventID uint, ticketTypeID *uint, email string, quantity int) (*model.WaitlistEntry, error)
	NotifyNext(eventID uint, ticketTypeID *uint) (*model.WaitlistEntry, error)
	ExpireOffer(entryID uint) error
	Convert(entryID uint) error
	CancelEntry(entryID uint) error
	ScanAfterRestock(eventID uint, freedByType map[uint]int) ([]model.WaitlistEntry, error)
}

type waitlistService struct {
	db           *gorm.DB
	logger       *zap.Logger
	offerTTL     time.Duration
	waitlistRepo repository.WaitlistRepo
	eventRepo    repository.EventRepo
}

var _ WaitlistService = (*waitlistService)(nil)

func NewWaitlistService(db *gorm.DB, logger *zap.Logger, offerTTL time.Duration,
	waitlistRepo repository.WaitlistRepo, eventRepo repository.EventRepo) *waitlistService {
	return &waitlistService{
		db:           db,
		logger:       logger,
		offerTTL:     offerTTL,
		waitlistRepo: waitlistRepo,
		eventRepo:    eventRepo,
	}
}

// Join appends to the FIFO queue for (event, ticket-type-or-any). The
// event row lock serializes concurrent joins so positions come out
// dense: previous max + 1, no renumbering ever.
func (s *waitlistService) Join(eventID uint, ticketTypeID *uint, email string, quantity int) (*model.WaitlistEntry, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, service.Validationf("email", "must not be empty")
	}
	if quantity < 1 || quantity > 10 {
		return nil, service.Validationf("quantity", "must be between 1 and 10")
	}

	var entry *model.WaitlistEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		waitlistRepo := s.waitlistRepo.WithTx(tx)

		if _, err := s.eventRepo.WithTx(tx).GetByIDForUpdate(eventID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return service.ErrNotFound
			}
			return err
		}

		if _, err := waitlistRepo.ActiveByEmail(eventID, ticketTypeID, email); err == nil {
			return service.Validationf("email", "already on the waitlist for this ticket type")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		max, err := waitlistRepo.MaxPosition(eventID, ticketTypeID)
		if err != nil {
			return err
		}

		entry = &model.WaitlistEntry{
			EventID:      eventID,
			TicketTypeID: ticketTypeID,
			Email:        email,
			Quantity:     quantity,
			Position:     max + 1,
			Status:       model.WaitlistStatusWaiting,
		}
		return waitlistRepo.Create(entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// NotifyNext opens the offer window for the head of the queue. The event
// row lock keeps two organizer clicks from notifying the same entry.
func (s *waitlistService) NotifyNext(eventID uint, ticketTypeID *uint) (*model.WaitlistEntry, error) {
	var entry *model.WaitlistEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		waitlistRepo := s.waitlistRepo.WithTx(tx)

		if _, err := s.eventRepo.WithTx(tx).GetByIDForUpdate(eventID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return service.ErrNotFound
			}
			return err
		}

		next, err := waitlistRepo.NextWaiting(eventID, ticketTypeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return service.ErrNotFound
			}
			return err
		}
		if err := next.Notify(time.Now(), s.offerTTL); err != nil {
			return err
		}
		if err := waitlistRepo.Save(next); err != nil {
			return err
		}
		entry = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	monitoring.WaitlistNotified()
	s.logger.Info("waitlist entry notified",
		zap.Uint("entry_id", entry.ID),
		zap.Uint("event_id", eventID),
		zap.Int("position", entry.Position))
	return entry, nil
}

// ExpireOffer lapses a notified offer whose window has passed. Entries
// that converted, cancelled, or were never notified are left alone.
func (s *waitlistService) ExpireOffer(entryID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		waitlistRepo := s.waitlistRepo.WithTx(tx)
		entry, err := waitlistRepo.GetByID(entryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return service.ErrNotFound
			}
			return err
		}
		if !entry.OfferExpired(time.Now()) {
			return nil
		}
		if err := entry.Expire(); err != nil {
			return err
		}
		return waitlistRepo.Save(entry)
	})
}

// Convert marks an entry fulfilled after its owner completed checkout.
func (s *waitlistService) Convert(entryID uint) error {
	return s.transitionEntry(entryID, (*model.WaitlistEntry).Convert)
}

// CancelEntry removes an entry from the queue; other positions keep
// their numbers, leaving a gap.
func (s *waitlistService) CancelEntry(entryID uint) error {
	return s.transitionEntry(entryID, (*model.WaitlistEntry).Cancel)
}

func (s *waitlistService) transitionEntry(entryID uint, transition func(*model.WaitlistEntry) error) error {
	entry, err := s.waitlistRepo.GetByID(entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return service.ErrNotFound
		}
		return err
	}
	if err := transition(entry); err != nil {
		return err
	}
	return s.waitlistRepo.Save(entry)
}

// ScanAfterRestock notifies waiting entries that fit the units a full
// refund just returned. Best effort: an offer holds no inventory, the
// notified buyer still has to win checkout.
func (s *waitlistService) ScanAfterRestock(eventID uint, freedByType map[uint]int) ([]model.WaitlistEntry, error) {
	totalFreed := 0
	for _, n := range freedByType {
		totalFreed += n
	}
	if totalFreed == 0 {
		return nil, nil
	}

	var notified []model.WaitlistEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		waitlistRepo := s.waitlistRepo.WithTx(tx)

		if _, err := s.eventRepo.WithTx(tx).GetByIDForUpdate(eventID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return service.ErrNotFound
			}
			return err
		}

		waiting, err := waitlistRepo.WaitingForEvent(eventID)
		if err != nil {
			return err
		}

		budget := make(map[uint]int, len(freedByType))
		for id, n := range freedByType {
			budget[id] = n
		}
		now := time.Now()
		for i := range waiting {
			entry := &waiting[i]
			if entry.TicketTypeID == nil {
				if entry.Quantity > totalFreed {
					continue
				}
				totalFreed -= entry.Quantity
			} else {
				if entry.Quantity > budget[*entry.TicketTypeID] {
					continue
				}
				budget[*entry.TicketTypeID] -= entry.Quantity
				totalFreed -= entry.Quantity
			}
			if err := entry.Notify(now, s.offerTTL); err != nil {
				return err
			}
			if err := waitlistRepo.Save(entry); err != nil {
				return err
			}
			notified = append(notified, *entry)
			if totalFreed <= 0 {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for range notified {
		monitoring.WaitlistNotified()
	}
	return notified, nil
}
