package domain

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tessera-live/tessera/internal/model"
	"github.com/tessera-live/tessera/internal/repository"
	"github.com/tessera-live/tessera/internal/service"
)

var ErrAlreadyCheckedIn = errors.New("ticket already checked in")
var ErrTicketNotUsable = errors.New("ticket is not valid for entry")

// TicketService serves the check-in and lookup flows, both keyed solely
// by the ticket's QR identity.
type TicketService interface {
	GetByQRCode(code string) (*model.Ticket, error)
	CheckIn(code string) (*model.Ticket, error)
}

type ticketService struct {
	db        *gorm.DB
	logger    *zap.Logger
	orderRepo repository.OrderRepo
}

var _ TicketService = (*ticketService)(nil)

func NewTicketService(db *gorm.DB, logger *zap.Logger, orderRepo repository.OrderRepo) *ticketService {
	return &ticketService{
		db:        db,
		logger:    logger,
		orderRepo: orderRepo,
	}
}

func (s *ticketService) GetByQRCode(code string) (*model.Ticket, error) {
	ticket, err := s.orderRepo.GetTicketByQRCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (s *ticketService) CheckIn(code string) (*model.Ticket, error) {
	var ticket *model.Ticket
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		t, err := orderRepo.GetTicketByQRCode(code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return service.ErrNotFound
			}
			return err
		}
		switch t.Status {
		case model.TicketStatusCheckedIn:
			return ErrAlreadyCheckedIn
		case model.TicketStatusCancelled, model.TicketStatusTransferred:
			return ErrTicketNotUsable
		}
		if err := t.CheckIn(time.Now()); err != nil {
			return err
		}
		if err := orderRepo.SaveTicket(t); err != nil {
			return err
		}
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("ticket checked in", zap.String("qr_code", ticket.QRCode))
	return ticket, nil
}
