package workflow

import (
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/tessera-live/tessera/internal/mq"
	"github.com/tessera-live/tessera/internal/service"
	"github.com/tessera-live/tessera/internal/service/domain"
)

// Dispatcher delivers a notification to its recipient. Delivery is out
// of scope for the core; the default dispatcher just records the send.
type Dispatcher interface {
	Send(notifType mq.NotificationType, payload json.RawMessage) error
}

type logDispatcher struct {
	logger *zap.Logger
}

func (d *logDispatcher) Send(notifType mq.NotificationType, payload json.RawMessage) error {
	d.logger.Info("notification dispatched",
		zap.String("type", string(notifType)),
		zap.ByteString("payload", payload))
	return nil
}

func NewLogDispatcher(logger *zap.Logger) Dispatcher {
	return &logDispatcher{logger: logger}
}

// NotificationWorkflow consumes the dispatch queue and the waitlist
// offer expiry queue. Both consumers are idempotent against redelivery.
type NotificationWorkflow struct {
	logger     *zap.Logger
	dispatcher Dispatcher
	waitlist   domain.WaitlistService
}

func NewNotificationWorkflow(logger *zap.Logger, dispatcher Dispatcher, waitlist domain.WaitlistService) *NotificationWorkflow {
	return &NotificationWorkflow{
		logger:     logger,
		dispatcher: dispatcher,
		waitlist:   waitlist,
	}
}

func (w *NotificationWorkflow) Start(mqConn *amqp.Connection) error {
	if err := w.ConsumeNotifications(mqConn); err != nil {
		return err
	}
	if err := w.ConsumeOfferExpiry(mqConn); err != nil {
		return err
	}
	return nil
}

func (w *NotificationWorkflow) ConsumeNotifications(conn *amqp.Connection) error {
	ch, err := mq.NewChannel(conn)
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(mq.NotificationQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			if err := w.handleNotification(msg); err != nil {
				w.logger.Error("failed to handle notification", zap.Error(err))
			}
		}
	}()

	return nil
}

func (w *NotificationWorkflow) handleNotification(msg amqp.Delivery) error {
	var message mq.NotificationMessage
	if err := json.Unmarshal(msg.Body, &message); err != nil {
		msg.Nack(false, false)
		return err
	}

	if err := w.dispatcher.Send(message.Type, message.Payload); err != nil {
		msg.Nack(false, true)
		return err
	}

	msg.Ack(false)

	return nil
}

func (w *NotificationWorkflow) ConsumeOfferExpiry(conn *amqp.Connection) error {
	ch, err := mq.NewChannel(conn)
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(mq.WaitlistOfferExpireQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			w.handleOfferExpiry(msg)
		}
	}()

	return nil
}

// handleOfferExpiry lapses the offer if it is still in its notified
// state. Entries that converted or were cancelled are simply dropped.
func (w *NotificationWorkflow) handleOfferExpiry(msg amqp.Delivery) {
	var message mq.WaitlistOfferDelayMessage
	if err := json.Unmarshal(msg.Body, &message); err != nil {
		msg.Nack(false, false)
		return
	}

	if err := w.waitlist.ExpireOffer(message.EntryID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			msg.Ack(false)
			return
		}
		w.logger.Error("failed to expire waitlist offer",
			zap.Uint("entry_id", message.EntryID), zap.Error(err))
		msg.Nack(false, true)
		return
	}

	msg.Ack(false)
}
