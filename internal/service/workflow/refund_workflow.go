package workflow

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/tessera-live/tessera/internal/mq"
	"github.com/tessera-live/tessera/internal/service"
	"github.com/tessera-live/tessera/internal/service/domain"
)

type RefundRequest struct {
	OrderID uint `json:"order_id"`
	// AmountCents of zero means the full remaining refundable balance.
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason,omitempty"`
}

type RefundWorkflow struct {
	logger   *zap.Logger
	mqConn   *amqp.Connection
	payment  domain.PaymentService
	refunds  domain.RefundService
	waitlist *WaitlistWorkflow
}

func NewRefundWorkflow(logger *zap.Logger, mqConn *amqp.Connection, payment domain.PaymentService,
	refunds domain.RefundService, waitlist *WaitlistWorkflow) *RefundWorkflow {
	return &RefundWorkflow{
		logger:   logger,
		mqConn:   mqConn,
		payment:  payment,
		refunds:  refunds,
		waitlist: waitlist,
	}
}

// Refund reverses an order's monetary and ledger effects. The provider
// refund runs first and outside any inventory lock; only after it
// succeeds does the ledger transaction apply. A provider failure leaves
// the order untouched, and a ledger failure after a provider success is
// surfaced for manual reconciliation rather than retried blindly.
func (w *RefundWorkflow) Refund(req RefundRequest) (*domain.RefundResult, error) {
	order, amountCents, err := w.refunds.ResolveAmount(req.OrderID, req.AmountCents)
	if err != nil {
		return nil, err
	}

	refundID, err := w.payment.Refund(order.PaymentIntentID, amountCents)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrPaymentFailed, err)
	}

	result, err := w.refunds.Reverse(req.OrderID, amountCents, refundID, req.Reason)
	if err != nil {
		w.logger.Error("ledger reversal failed after provider refund succeeded",
			zap.Uint("order_id", req.OrderID),
			zap.String("refund_id", refundID),
			zap.Error(err))
		return nil, err
	}

	w.notifyRefund(result)

	if result.Full {
		w.offerFreedInventory(result.Order.EventID, result.FreedByType)
	}
	return result, nil
}

func (w *RefundWorkflow) notifyRefund(result *domain.RefundResult) {
	ch, err := mq.NewChannel(w.mqConn)
	if err != nil {
		w.logger.Error("failed to open mq channel for refund notice", zap.Error(err))
		return
	}
	defer ch.Close()
	if err := mq.SendNotification(ch, mq.NotifyRefundProcessed, mq.RefundProcessedPayload{
		OrderID:     result.Order.ID,
		BuyerEmail:  result.Order.BuyerEmail,
		AmountCents: result.AmountCents,
		Full:        result.Full,
	}); err != nil {
		w.logger.Error("failed to publish refund notice",
			zap.Uint("order_id", result.Order.ID), zap.Error(err))
	}
}

// offerFreedInventory runs the post-refund waitlist scan. This is a
// side effect of the refund, not part of its transaction; a failure
// here never unwinds the refund.
func (w *RefundWorkflow) offerFreedInventory(eventID uint, freedByType map[uint]int) {
	notified, err := w.waitlist.waitlist.ScanAfterRestock(eventID, freedByType)
	if err != nil {
		w.logger.Error("waitlist scan after refund failed",
			zap.Uint("event_id", eventID), zap.Error(err))
		return
	}
	for i := range notified {
		w.waitlist.publishOffer(&notified[i])
	}
	if len(notified) > 0 {
		w.logger.Info("waitlist offers sent after refund",
			zap.Uint("event_id", eventID),
			zap.Int("notified", len(notified)))
	}
}
