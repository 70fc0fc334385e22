package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tessera-live/tessera/internal/model"
	"github.com/tessera-live/tessera/internal/service"
	"github.com/tessera-live/tessera/internal/service/domain"
)

var errStopIssue = errors.New("stop before publish")

// capturingIssuer records the request and fails, so Sell returns before
// touching the message broker.
type capturingIssuer struct {
	req domain.IssueRequest
}

func (c *capturingIssuer) Issue(req domain.IssueRequest) (*domain.IssueResult, error) {
	c.req = req
	return nil, errStopIssue
}

func (c *capturingIssuer) IssueInTx(tx *gorm.DB, req domain.IssueRequest) (*domain.IssueResult, error) {
	return c.Issue(req)
}

func TestSellRejectsUnknownPaymentMethod(t *testing.T) {
	w := NewBoxOfficeWorkflow(zap.NewNop(), nil, &capturingIssuer{})

	_, err := w.Sell(BoxOfficeRequest{PaymentMethod: "crypto"})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "payment_method", verr.Field)
}

func TestSellGeneratesPlaceholderBuyer(t *testing.T) {
	issuer := &capturingIssuer{}
	w := NewBoxOfficeWorkflow(zap.NewNop(), nil, issuer)

	_, err := w.Sell(BoxOfficeRequest{
		EventID:       1,
		Items:         []domain.LineItem{{TicketTypeID: 1, Quantity: 2}},
		PaymentMethod: "cash_at_door",
	})
	require.ErrorIs(t, err, errStopIssue)

	assert.Equal(t, "Box Office Sale", issuer.req.Buyer.Name)
	assert.Contains(t, issuer.req.Buyer.Email, "boxoffice+")
	assert.Contains(t, issuer.req.Buyer.Email, "@sales.invalid")
	assert.Equal(t, model.OrderSourceBoxOffice, issuer.req.Source)
	assert.False(t, issuer.req.EnforceSalesWindow)
	assert.Zero(t, issuer.req.FeeCents)
}

func TestSellKeepsProvidedBuyer(t *testing.T) {
	issuer := &capturingIssuer{}
	w := NewBoxOfficeWorkflow(zap.NewNop(), nil, issuer)

	_, err := w.Sell(BoxOfficeRequest{
		EventID:       1,
		Items:         []domain.LineItem{{TicketTypeID: 1, Quantity: 1}},
		Buyer:         domain.Buyer{Name: "Walk Up", Email: "walkup@example.com"},
		PaymentMethod: "card_at_door",
	})
	require.ErrorIs(t, err, errStopIssue)

	assert.Equal(t, "Walk Up", issuer.req.Buyer.Name)
	assert.Equal(t, "walkup@example.com", issuer.req.Buyer.Email)
}
