package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tessera-live/tessera/config"
	"github.com/tessera-live/tessera/internal/service"
)

// PaymentIntent mirrors the provider's create_payment_intent response.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string
}

// PaymentProvider is the opaque external capability: two outcomes,
// succeeded or failed. Wired to the real gateway SDK in sandbox/live.
type PaymentProvider interface {
	CreateIntent(amountCents int64, currency string) (*PaymentIntent, error)
	Refund(intentID string, amountCents int64) (refundID string, err error)
}

type PaymentService interface {
	Mode() config.PaymentMode
	CreateIntent(amountCents int64) (*PaymentIntent, error)
	Refund(intentID string, amountCents int64) (refundID string, err error)
}

type paymentService struct {
	mode     config.PaymentMode
	currency string
	provider PaymentProvider
}

var _ PaymentService = (*paymentService)(nil)

func NewPaymentService(mode config.PaymentMode, currency string, provider PaymentProvider) *paymentService {
	return &paymentService{
		mode:     mode,
		currency: currency,
		provider: provider,
	}
}

func (s *paymentService) Mode() config.PaymentMode {
	return s.mode
}

func (s *paymentService) CreateIntent(amountCents int64) (*PaymentIntent, error) {
	if s.mode == config.PaymentModeSimulate {
		ref := strings.ReplaceAll(uuid.NewString(), "-", "")
		return &PaymentIntent{
			ID:           "sim_pi_" + ref,
			ClientSecret: "sim_secret_" + ref,
			AmountCents:  amountCents,
			Currency:     s.currency,
		}, nil
	}
	if s.provider == nil {
		return nil, fmt.Errorf("payment mode %s requires a provider: %w", s.mode, service.ErrPaymentFailed)
	}
	return s.provider.CreateIntent(amountCents, s.currency)
}

func (s *paymentService) Refund(intentID string, amountCents int64) (string, error) {
	if s.mode == config.PaymentModeSimulate {
		return "sim_re_" + strings.ReplaceAll(uuid.NewString(), "-", ""), nil
	}
	if s.provider == nil {
		return "", fmt.Errorf("payment mode %s requires a provider: %w", s.mode, service.ErrPaymentFailed)
	}
	return s.provider.Refund(intentID, amountCents)
}
