package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/freshlane/trade-api/internal/domain"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeValidation           = "validation_failed"
	codeInvalidID            = "invalid_id"
	codeCapacityExceeded     = "capacity_exceeded"
	codeLeadTimeViolation    = "lead_time_violation"
	codeCancellationExpired  = "cancellation_window_expired"
	codeBookingNotFound      = "booking_not_found"
	codeNotCancellable       = "booking_not_cancellable"
	codeRFQClosed            = "rfq_closed"
	codeRFQNotFound          = "rfq_not_found"
	codeQuoteLimitReached    = "quote_limit_reached"
	codeQuoteNotFound        = "quote_not_found"
	codeQuoteNotAccepted     = "quote_not_accepted"
	codeAlreadyAwarded       = "already_awarded"
	codeInvoiceNotFound      = "invoice_not_found"
	codeOverpayment          = "overpayment"
	codeConcurrencyConflict  = "concurrency_conflict"
	codeZoneNotFound         = "zone_not_found"
	codeTimeSlotNotFound     = "time_slot_not_found"
	codeForbidden            = "forbidden"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps domain sentinels to HTTP status and machine
// code, keeping the wrapped constraint detail in the message.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, domain.ErrLeadTimeViolation):
		writeError(w, http.StatusUnprocessableEntity, codeLeadTimeViolation, err.Error())
	case errors.Is(err, domain.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, codeCapacityExceeded, err.Error())
	case errors.Is(err, domain.ErrCancellationWindowExpired):
		writeError(w, http.StatusConflict, codeCancellationExpired, err.Error())
	case errors.Is(err, domain.ErrBookingNotCancellable):
		writeError(w, http.StatusConflict, codeNotCancellable, err.Error())
	case errors.Is(err, domain.ErrRFQClosed):
		writeError(w, http.StatusConflict, codeRFQClosed, err.Error())
	case errors.Is(err, domain.ErrQuoteLimitReached):
		writeError(w, http.StatusConflict, codeQuoteLimitReached, err.Error())
	case errors.Is(err, domain.ErrAlreadyAwarded):
		writeError(w, http.StatusConflict, codeAlreadyAwarded, err.Error())
	case errors.Is(err, domain.ErrQuoteNotAccepted):
		writeError(w, http.StatusConflict, codeQuoteNotAccepted, err.Error())
	case errors.Is(err, domain.ErrOverpayment):
		writeError(w, http.StatusConflict, codeOverpayment, err.Error())
	case errors.Is(err, domain.ErrConcurrencyConflict):
		writeError(w, http.StatusConflict, codeConcurrencyConflict, err.Error())
	case errors.Is(err, domain.ErrZoneNotFound):
		writeError(w, http.StatusNotFound, codeZoneNotFound, err.Error())
	case errors.Is(err, domain.ErrTimeSlotNotFound):
		writeError(w, http.StatusNotFound, codeTimeSlotNotFound, err.Error())
	case errors.Is(err, domain.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, codeBookingNotFound, err.Error())
	case errors.Is(err, domain.ErrRFQNotFound):
		writeError(w, http.StatusNotFound, codeRFQNotFound, err.Error())
	case errors.Is(err, domain.ErrQuoteNotFound):
		writeError(w, http.StatusNotFound, codeQuoteNotFound, err.Error())
	case errors.Is(err, domain.ErrInvoiceNotFound):
		writeError(w, http.StatusNotFound, codeInvoiceNotFound, err.Error())
	case errors.Is(err, domain.ErrBayNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
