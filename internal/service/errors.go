package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrAlreadyRedeemed = errors.New("guest list entry already redeemed")
	ErrPromoNotUsable  = errors.New("promo code is not usable")
	ErrPaymentFailed   = errors.New("payment provider reported failure")
	ErrSalesClosed     = errors.New("ticket type is not on sale")
)

// ValidationError reports malformed input. It is never retried and
// guarantees no side effects occurred.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InsufficientInventoryError is an availability conflict observed under
// the row lock. Remaining is the authoritative count at lock time, not a
// stale snapshot, so callers can resubmit with adjusted quantities.
type InsufficientInventoryError struct {
	TicketTypeID uint
	Requested    int
	Remaining    int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("ticket type %d: requested %d but only %d available",
		e.TicketTypeID, e.Requested, e.Remaining)
}
