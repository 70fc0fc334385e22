package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessera-live/tessera/config"
)

func feeWorkflow(percent float64, flatCents int64) *CheckoutWorkflow {
	return &CheckoutWorkflow{cfg: &config.Config{
		ServiceFeePercent:   percent,
		ServiceFeeFlatCents: flatCents,
	}}
}

func TestServiceFeeCents(t *testing.T) {
	w := feeWorkflow(2.9, 99)

	// 2.9% of 10000 = 290, plus 99 per ticket
	assert.Equal(t, int64(290+2*99), w.serviceFeeCents(10000, 2))

	// 2.9% of 3333 = 96.657, rounds to 97
	assert.Equal(t, int64(97+99), w.serviceFeeCents(3333, 1))

	// free orders still carry the flat per-ticket fee
	assert.Equal(t, int64(3*99), w.serviceFeeCents(0, 3))
}

func TestServiceFeeCentsZeroConfig(t *testing.T) {
	w := feeWorkflow(0, 0)
	assert.Equal(t, int64(0), w.serviceFeeCents(10000, 4))
}
