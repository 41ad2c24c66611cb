package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/freshlane/trade-api/internal/app"
	"github.com/freshlane/trade-api/internal/domain"
	"github.com/freshlane/trade-api/internal/notify"
)

// InvoiceIssuer is the minimal interface needed to create invoices.
type InvoiceIssuer interface {
	CreateInvoiceFromQuote(ctx context.Context, quoteID string) (domain.Invoice, error)
	CreateInvoice(ctx context.Context, in app.CreateInvoiceInput) (domain.Invoice, error)
}

// PaymentApplier is the minimal interface needed to apply payments.
type PaymentApplier interface {
	ApplyPayment(ctx context.Context, in app.ApplyPaymentInput) (domain.Invoice, error)
}

// HandleCreateInvoice returns an HTTP handler for POST /invoices.
// With quote_id set the invoice derives from an accepted quote;
// otherwise the amounts describe a direct order.
func HandleCreateInvoice(svc InvoiceIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createInvoiceRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		var invoice domain.Invoice
		var err error
		if req.QuoteID != "" {
			invoice, err = svc.CreateInvoiceFromQuote(r.Context(), req.QuoteID)
		} else {
			var in app.CreateInvoiceInput
			in, err = req.toInput()
			if err != nil {
				writeError(w, http.StatusBadRequest, codeValidation, err.Error())
				return
			}
			invoice, err = svc.CreateInvoice(r.Context(), in)
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(newInvoiceResponse(invoice))
	}
}

// HandleApplyPayment returns an HTTP handler for POST /invoices/{id}/payments.
func HandleApplyPayment(svc PaymentApplier, events *notify.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		invoiceID, ok := parsePaymentPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		var req applyPaymentRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		amount, err := parseAmount(req.Amount, "amount")
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, err.Error())
			return
		}

		invoice, err := svc.ApplyPayment(r.Context(), app.ApplyPaymentInput{
			InvoiceID: invoiceID,
			Amount:    amount,
			Reference: req.Reference,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		if invoice.Status == domain.InvoiceStatusPaid {
			go events.InvoicePaid(notify.InvoicePaidEvent{
				InvoiceID:     invoice.ID,
				InvoiceNumber: invoice.Number,
				BuyerID:       invoice.BuyerID,
				TotalAmount:   invoice.TotalAmount.StringFixed(2),
				PaidAt:        time.Now().UTC().Format(time.RFC3339),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(newInvoiceResponse(invoice))
	}
}

func parsePaymentPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "invoices" || parts[2] != "payments" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type createInvoiceRequest struct {
	QuoteID  string `json:"quote_id,omitempty"`
	BuyerID  string `json:"buyer_id,omitempty"`
	Subtotal string `json:"subtotal,omitempty"`
	Tax      string `json:"tax,omitempty"`
	Discount string `json:"discount,omitempty"`
	Shipping string `json:"shipping,omitempty"`
}

func (r createInvoiceRequest) toInput() (app.CreateInvoiceInput, error) {
	in := app.CreateInvoiceInput{BuyerID: r.BuyerID}

	var err error
	if in.Subtotal, err = parseAmount(r.Subtotal, "subtotal"); err != nil {
		return app.CreateInvoiceInput{}, err
	}
	if in.Tax, err = parseAmount(r.Tax, "tax"); err != nil {
		return app.CreateInvoiceInput{}, err
	}
	if in.Discount, err = parseAmount(r.Discount, "discount"); err != nil {
		return app.CreateInvoiceInput{}, err
	}
	if in.Shipping, err = parseAmount(r.Shipping, "shipping"); err != nil {
		return app.CreateInvoiceInput{}, err
	}
	return in, nil
}

type applyPaymentRequest struct {
	Amount    string `json:"amount"`
	Reference string `json:"reference,omitempty"`
}

type invoiceResponse struct {
	ID          string    `json:"id"`
	Number      string    `json:"invoice_number"`
	QuoteID     string    `json:"quote_id,omitempty"`
	BuyerID     string    `json:"buyer_id"`
	Subtotal    string    `json:"subtotal"`
	TaxAmount   string    `json:"tax_amount"`
	Discount    string    `json:"discount"`
	Shipping    string    `json:"shipping"`
	TotalAmount string    `json:"total_amount"`
	PaidAmount  string    `json:"paid_amount"`
	BalanceDue  string    `json:"balance_due"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func newInvoiceResponse(inv domain.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:          inv.ID,
		Number:      inv.Number,
		QuoteID:     inv.QuoteID,
		BuyerID:     inv.BuyerID,
		Subtotal:    inv.Subtotal.StringFixed(2),
		TaxAmount:   inv.TaxAmount.StringFixed(2),
		Discount:    inv.Discount.StringFixed(2),
		Shipping:    inv.Shipping.StringFixed(2),
		TotalAmount: inv.TotalAmount.StringFixed(2),
		PaidAmount:  inv.PaidAmount.StringFixed(2),
		BalanceDue:  inv.BalanceDue.StringFixed(2),
		Status:      string(inv.Status),
		CreatedAt:   inv.CreatedAt,
	}
}
