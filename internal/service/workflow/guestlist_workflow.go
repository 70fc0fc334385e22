package workflow

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/tessera-live/tessera/internal/model"
	"github.com/tessera-live/tessera/internal/mq"
	"github.com/tessera-live/tessera/internal/service/domain"
)

type GuestListWorkflow struct {
	logger    *zap.Logger
	mqConn    *amqp.Connection
	guestList domain.GuestListService
}

func NewGuestListWorkflow(logger *zap.Logger, mqConn *amqp.Connection, guestList domain.GuestListService) *GuestListWorkflow {
	return &GuestListWorkflow{
		logger:    logger,
		mqConn:    mqConn,
		guestList: guestList,
	}
}

func (w *GuestListWorkflow) Add(entry *model.GuestListEntry) error {
	return w.guestList.Add(entry)
}

// Redeem issues the comp order and queues the guest's notice. The
// notice is fire-and-forget; a publish failure never unwinds the order.
func (w *GuestListWorkflow) Redeem(entryID uint) (*domain.IssueResult, error) {
	result, entry, err := w.guestList.Redeem(entryID)
	if err != nil {
		return nil, err
	}

	ch, err := mq.NewChannel(w.mqConn)
	if err != nil {
		w.logger.Error("failed to open mq channel for guest list notice", zap.Error(err))
		return result, nil
	}
	defer ch.Close()
	if err := mq.SendNotification(ch, mq.NotifyGuestListIssued, mq.GuestListIssuedPayload{
		EntryID:    entry.ID,
		OrderID:    result.Order.ID,
		GuestEmail: entry.GuestEmail,
	}); err != nil {
		w.logger.Error("failed to publish guest list notice",
			zap.Uint("entry_id", entry.ID), zap.Error(err))
	}
	return result, nil
}
