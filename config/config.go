package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tessera-live/tessera/internal/util"
)

// PaymentMode decides whether the real payment provider is invoked.
type PaymentMode string

const (
	PaymentModeSimulate PaymentMode = "simulate"
	PaymentModeSandbox  PaymentMode = "sandbox"
	PaymentModeLive     PaymentMode = "live"
)

type Config struct {
	DatabaseDSN string
	Addr        string
	CacheURL    string
	MQURL       string

	PaymentMode PaymentMode
	Currency    string

	// Platform service fee charged on public checkout:
	// round(ServiceFeePercent% of subtotal) + ServiceFeeFlatCents per ticket.
	ServiceFeePercent   float64
	ServiceFeeFlatCents int64

	WaitlistOfferTTL time.Duration
}

func LoadConfig() (*Config, error) {
	if err := util.LoadEnv(); err != nil {
		return nil, err
	}

	mode := PaymentMode(util.Getenv("PAYMENT_MODE", string(PaymentModeSimulate)))
	switch mode {
	case PaymentModeSimulate, PaymentModeSandbox, PaymentModeLive:
	default:
		return nil, fmt.Errorf("invalid PAYMENT_MODE %q", mode)
	}

	feePercent, err := strconv.ParseFloat(util.Getenv("SERVICE_FEE_PERCENT", "2.9"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVICE_FEE_PERCENT: %w", err)
	}
	feeFlat, err := strconv.ParseInt(util.Getenv("SERVICE_FEE_FLAT_CENTS", "99"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVICE_FEE_FLAT_CENTS: %w", err)
	}
	offerTTL, err := time.ParseDuration(util.Getenv("WAITLIST_OFFER_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid WAITLIST_OFFER_TTL: %w", err)
	}

	return &Config{
		DatabaseDSN:         os.Getenv("DATABASE_DSN"),
		Addr:                util.Getenv("ADDR", ":4000"),
		CacheURL:            os.Getenv("CACHE_URL"),
		MQURL:               os.Getenv("RABBIT_MQ_URL"),
		PaymentMode:         mode,
		Currency:            util.Getenv("CURRENCY", "usd"),
		ServiceFeePercent:   feePercent,
		ServiceFeeFlatCents: feeFlat,
		WaitlistOfferTTL:    offerTTL,
	}, nil
}
