package domain

import "errors"

var (
	ErrValidation                = errors.New("validation failed")
	ErrCapacityExceeded          = errors.New("capacity exceeded")
	ErrLeadTimeViolation         = errors.New("outside allowed booking window")
	ErrCancellationWindowExpired = errors.New("cancellation window expired")
	ErrRFQClosed                 = errors.New("rfq is not open for quotes")
	ErrQuoteLimitReached         = errors.New("rfq quote limit reached")
	ErrAlreadyAwarded            = errors.New("rfq already awarded")
	ErrOverpayment               = errors.New("payment exceeds balance due")
	ErrConcurrencyConflict       = errors.New("concurrent update conflict")
	ErrZoneNotFound              = errors.New("zone not found")
	ErrBayNotFound               = errors.New("bay not found")
	ErrTimeSlotNotFound          = errors.New("time slot not found")
	ErrBookingNotFound           = errors.New("booking not found")
	ErrBookingNotCancellable     = errors.New("booking cannot be cancelled")
	ErrRFQNotFound               = errors.New("rfq not found")
	ErrQuoteNotFound             = errors.New("quote not found")
	ErrQuoteNotAccepted          = errors.New("quote is not accepted")
	ErrInvoiceNotFound           = errors.New("invoice not found")
	ErrInvalidID                 = errors.New("invalid id")
)
