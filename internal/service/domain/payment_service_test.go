package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-live/tessera/config"
	"github.com/tessera-live/tessera/internal/service"
)

type stubProvider struct {
	intent   *PaymentIntent
	refundID string
	err      error
}

func (p *stubProvider) CreateIntent(amountCents int64, currency string) (*PaymentIntent, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.intent, nil
}

func (p *stubProvider) Refund(intentID string, amountCents int64) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.refundID, nil
}

func TestSimulateModeSynthesizesIntent(t *testing.T) {
	svc := NewPaymentService(config.PaymentModeSimulate, "usd", nil)

	intent, err := svc.CreateIntent(12500)
	require.NoError(t, err)
	assert.Contains(t, intent.ID, "sim_pi_")
	assert.Contains(t, intent.ClientSecret, "sim_secret_")
	assert.Equal(t, int64(12500), intent.AmountCents)
	assert.Equal(t, "usd", intent.Currency)

	refundID, err := svc.Refund(intent.ID, 12500)
	require.NoError(t, err)
	assert.Contains(t, refundID, "sim_re_")
}

func TestSandboxModeRequiresProvider(t *testing.T) {
	svc := NewPaymentService(config.PaymentModeSandbox, "usd", nil)

	_, err := svc.CreateIntent(100)
	assert.ErrorIs(t, err, service.ErrPaymentFailed)

	_, err = svc.Refund("pi_x", 100)
	assert.ErrorIs(t, err, service.ErrPaymentFailed)
}

func TestSandboxModeDelegatesToProvider(t *testing.T) {
	provider := &stubProvider{
		intent:   &PaymentIntent{ID: "pi_test", AmountCents: 900, Currency: "usd"},
		refundID: "re_test",
	}
	svc := NewPaymentService(config.PaymentModeSandbox, "usd", provider)

	intent, err := svc.CreateIntent(900)
	require.NoError(t, err)
	assert.Equal(t, "pi_test", intent.ID)

	refundID, err := svc.Refund("pi_test", 900)
	require.NoError(t, err)
	assert.Equal(t, "re_test", refundID)
}
