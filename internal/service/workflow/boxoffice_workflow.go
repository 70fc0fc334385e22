package workflow

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/tessera-live/tessera/internal/model"
	"github.com/tessera-live/tessera/internal/mq"
	"github.com/tessera-live/tessera/internal/service"
	"github.com/tessera-live/tessera/internal/service/domain"
)

// BoxOfficePaymentMethods is the closed set accepted at the door.
var BoxOfficePaymentMethods = map[string]bool{
	"cash_at_door": true,
	"card_at_door": true,
}

type BoxOfficeRequest struct {
	EventID       uint              `json:"event_id"`
	Items         []domain.LineItem `json:"items"`
	Buyer         domain.Buyer      `json:"buyer"`
	PaymentMethod string            `json:"payment_method"`
	PromoCode     string            `json:"promo_code,omitempty"`
}

// BoxOfficeWorkflow is the organizer-operated in-person channel: priced
// at the current tier like checkout but with no service fee and no
// provider round trip, the order completes immediately.
type BoxOfficeWorkflow struct {
	logger *zap.Logger
	mqConn *amqp.Connection
	issuer domain.IssuerService
}

func NewBoxOfficeWorkflow(logger *zap.Logger, mqConn *amqp.Connection, issuer domain.IssuerService) *BoxOfficeWorkflow {
	return &BoxOfficeWorkflow{
		logger: logger,
		mqConn: mqConn,
		issuer: issuer,
	}
}

func (w *BoxOfficeWorkflow) Sell(req BoxOfficeRequest) (*domain.IssueResult, error) {
	if !BoxOfficePaymentMethods[req.PaymentMethod] {
		return nil, service.Validationf("payment_method", "must be one of cash_at_door, card_at_door")
	}

	buyer := req.Buyer
	if buyer.Name == "" || buyer.Email == "" {
		// walk-up sales don't require identity; generate a placeholder
		frag := strings.Split(uuid.NewString(), "-")[0]
		buyer.Name = "Box Office Sale"
		buyer.Email = fmt.Sprintf("boxoffice+%s@sales.invalid", frag)
	}

	result, err := w.issuer.Issue(domain.IssueRequest{
		EventID:       req.EventID,
		Items:         req.Items,
		Buyer:         buyer,
		Source:        model.OrderSourceBoxOffice,
		PaymentMethod: req.PaymentMethod,
		PromoCode:     req.PromoCode,
	})
	if err != nil {
		return nil, err
	}

	ch, err := mq.NewChannel(w.mqConn)
	if err != nil {
		w.logger.Error("failed to open mq channel for box office confirmation", zap.Error(err))
		return result, nil
	}
	defer ch.Close()
	if err := mq.SendNotification(ch, mq.NotifyOrderConfirmation, mq.OrderConfirmationPayload{
		OrderID:    result.Order.ID,
		BuyerEmail: result.Order.BuyerEmail,
		TotalCents: result.Order.TotalCents,
		Tickets:    len(result.Tickets),
	}); err != nil {
		w.logger.Error("failed to publish box office confirmation",
			zap.Uint("order_id", result.Order.ID), zap.Error(err))
	}
	return result, nil
}
