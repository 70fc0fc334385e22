package workflow

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/tessera-live/tessera/internal/model"
	"github.com/tessera-live/tessera/internal/mq"
	"github.com/tessera-live/tessera/internal/service/domain"
)

type WaitlistWorkflow struct {
	logger   *zap.Logger
	mqConn   *amqp.Connection
	waitlist domain.WaitlistService
}

func NewWaitlistWorkflow(logger *zap.Logger, mqConn *amqp.Connection, waitlist domain.WaitlistService) *WaitlistWorkflow {
	return &WaitlistWorkflow{
		logger:   logger,
		mqConn:   mqConn,
		waitlist: waitlist,
	}
}

func (w *WaitlistWorkflow) Join(eventID uint, ticketTypeID *uint, email string, quantity int) (*model.WaitlistEntry, error) {
	return w.waitlist.Join(eventID, ticketTypeID, email, quantity)
}

// NotifyNext opens an offer window for the head of the queue and
// schedules its expiry through the delay queue.
func (w *WaitlistWorkflow) NotifyNext(eventID uint, ticketTypeID *uint) (*model.WaitlistEntry, error) {
	entry, err := w.waitlist.NotifyNext(eventID, ticketTypeID)
	if err != nil {
		return nil, err
	}
	w.publishOffer(entry)
	return entry, nil
}

func (w *WaitlistWorkflow) Cancel(entryID uint) error {
	return w.waitlist.CancelEntry(entryID)
}

// publishOffer queues the offer notification plus the delayed expiry
// message. Publish failures are logged only: the entry is already
// notified in the database and the expiry consumer re-checks state.
func (w *WaitlistWorkflow) publishOffer(entry *model.WaitlistEntry) {
	ch, err := w.channel()
	if err != nil {
		return
	}
	defer ch.Close()

	expires := ""
	if entry.ExpiresAt != nil {
		expires = entry.ExpiresAt.Format(time.RFC3339)
	}
	if err := mq.SendNotification(ch, mq.NotifyWaitlistOffer, mq.WaitlistOfferPayload{
		EntryID:   entry.ID,
		EventID:   entry.EventID,
		Email:     entry.Email,
		ExpiresAt: expires,
	}); err != nil {
		w.logger.Error("failed to publish waitlist offer",
			zap.Uint("entry_id", entry.ID), zap.Error(err))
	}

	if err := mq.SendDelayMessage(ch, mq.WaitlistOfferDelayQueue,
		mq.WaitlistOfferDelayMessage{EntryID: entry.ID}); err != nil {
		w.logger.Error("failed to schedule waitlist offer expiry",
			zap.Uint("entry_id", entry.ID), zap.Error(err))
	}
}

func (w *WaitlistWorkflow) channel() (*amqp.Channel, error) {
	ch, err := mq.NewChannel(w.mqConn)
	if err != nil {
		w.logger.Error("failed to open mq channel for waitlist offer", zap.Error(err))
		return nil, err
	}
	return ch, nil
}
