package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/freshlane/trade-api/internal/app"
	"github.com/freshlane/trade-api/internal/domain"
	"github.com/freshlane/trade-api/internal/notify"
)

// RFQService is the minimal interface needed for RFQ lifecycle endpoints.
type RFQService interface {
	CreateRFQ(ctx context.Context, in app.CreateRFQInput) (domain.RFQ, error)
	OpenRFQ(ctx context.Context, rfqID string) (domain.RFQ, error)
	SubmitQuote(ctx context.Context, in app.SubmitQuoteInput) (domain.Quote, error)
	AwardQuote(ctx context.Context, rfqID, quoteID string) (domain.Quote, error)
}

// HandleCreateRFQ returns an HTTP handler for POST /rfqs.
func HandleCreateRFQ(svc RFQService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createRFQRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		in, err := req.toInput()
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, err.Error())
			return
		}

		rfq, err := svc.CreateRFQ(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(newRFQResponse(rfq))
	}
}

// HandleRFQActions routes POST /rfqs/{id}/open, /rfqs/{id}/quotes and
// /rfqs/{id}/award through one handler, mirroring the path layout.
func HandleRFQActions(svc RFQService, events *notify.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		rfqID, action, ok := parseRFQActionPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch action {
		case "open":
			rfq, err := svc.OpenRFQ(r.Context(), rfqID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(newRFQResponse(rfq))
		case "quotes":
			handleSubmitQuote(w, r, svc, events, rfqID)
		case "award":
			handleAwardQuote(w, r, svc, rfqID)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleSubmitQuote(w http.ResponseWriter, r *http.Request, svc RFQService, events *notify.Publisher, rfqID string) {
	var req submitQuoteRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	in, err := req.toInput(rfqID)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	quote, err := svc.SubmitQuote(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	go events.QuoteSubmitted(notify.QuoteSubmittedEvent{
		QuoteID:     quote.ID,
		RFQID:       quote.RFQID,
		VendorID:    quote.VendorID,
		FinalAmount: quote.FinalAmount.StringFixed(2),
		SubmittedAt: quote.CreatedAt.Format(time.RFC3339),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(newQuoteResponse(quote))
}

func handleAwardQuote(w http.ResponseWriter, r *http.Request, svc RFQService, rfqID string) {
	var req awardQuoteRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if req.QuoteID == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "quote_id is required")
		return
	}

	quote, err := svc.AwardQuote(r.Context(), rfqID, req.QuoteID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(newQuoteResponse(quote))
}

func parseRFQActionPath(path string) (rfqID, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", "", false
	}
	if parts[0] != "rfqs" || parts[1] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

type rfqItemPayload struct {
	ProductName   string `json:"product_name"`
	Quantity      string `json:"quantity"`
	Unit          string `json:"unit,omitempty"`
	Specification string `json:"specification,omitempty"`
}

type createRFQRequest struct {
	BuyerID      string           `json:"buyer_id"`
	Category     string           `json:"category,omitempty"`
	Items        []rfqItemPayload `json:"items"`
	BudgetMin    string           `json:"budget_min,omitempty"`
	BudgetMax    string           `json:"budget_max,omitempty"`
	Urgency      string           `json:"urgency,omitempty"`
	DeliveryDate string           `json:"delivery_date,omitempty"`
	MaxQuotes    int              `json:"max_quotes"`
	ClosesAt     string           `json:"closes_at"`
}

func (r createRFQRequest) toInput() (app.CreateRFQInput, error) {
	in := app.CreateRFQInput{
		BuyerID:   r.BuyerID,
		Category:  r.Category,
		Urgency:   r.Urgency,
		MaxQuotes: r.MaxQuotes,
	}

	var err error
	if in.BudgetMin, err = parseAmount(r.BudgetMin, "budget_min"); err != nil {
		return app.CreateRFQInput{}, err
	}
	if in.BudgetMax, err = parseAmount(r.BudgetMax, "budget_max"); err != nil {
		return app.CreateRFQInput{}, err
	}
	if in.ClosesAt, err = time.Parse(time.RFC3339, r.ClosesAt); err != nil {
		return app.CreateRFQInput{}, errInvalidField("closes_at")
	}
	if r.DeliveryDate != "" {
		if in.DeliveryDate, err = time.Parse(time.RFC3339, r.DeliveryDate); err != nil {
			return app.CreateRFQInput{}, errInvalidField("delivery_date")
		}
	}

	for _, item := range r.Items {
		qty, err := parseAmount(item.Quantity, "items.quantity")
		if err != nil {
			return app.CreateRFQInput{}, err
		}
		in.Items = append(in.Items, domain.RFQItem{
			ProductName:   item.ProductName,
			Quantity:      qty,
			Unit:          item.Unit,
			Specification: item.Specification,
		})
	}
	return in, nil
}

type quoteItemPayload struct {
	ProductName string `json:"product_name"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

type submitQuoteRequest struct {
	VendorID       string             `json:"vendor_id"`
	Items          []quoteItemPayload `json:"items"`
	DeliveryCharge string             `json:"delivery_charge,omitempty"`
	DiscountAmount string             `json:"discount_amount,omitempty"`
}

func (r submitQuoteRequest) toInput(rfqID string) (app.SubmitQuoteInput, error) {
	in := app.SubmitQuoteInput{
		RFQID:    rfqID,
		VendorID: r.VendorID,
	}

	var err error
	if in.DeliveryCharge, err = parseAmount(r.DeliveryCharge, "delivery_charge"); err != nil {
		return app.SubmitQuoteInput{}, err
	}
	if in.DiscountAmount, err = parseAmount(r.DiscountAmount, "discount_amount"); err != nil {
		return app.SubmitQuoteInput{}, err
	}

	for _, item := range r.Items {
		qty, err := parseAmount(item.Quantity, "items.quantity")
		if err != nil {
			return app.SubmitQuoteInput{}, err
		}
		price, err := parseAmount(item.UnitPrice, "items.unit_price")
		if err != nil {
			return app.SubmitQuoteInput{}, err
		}
		in.Items = append(in.Items, domain.QuoteItem{
			ProductName: item.ProductName,
			Quantity:    qty,
			UnitPrice:   price,
		})
	}
	return in, nil
}

type awardQuoteRequest struct {
	QuoteID string `json:"quote_id"`
}

type rfqResponse struct {
	ID        string    `json:"id"`
	BuyerID   string    `json:"buyer_id"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	MaxQuotes int       `json:"max_quotes"`
	ClosesAt  time.Time `json:"closes_at"`
	CreatedAt time.Time `json:"created_at"`
}

func newRFQResponse(r domain.RFQ) rfqResponse {
	return rfqResponse{
		ID:        r.ID,
		BuyerID:   r.BuyerID,
		Category:  r.Category,
		Status:    string(r.Status),
		MaxQuotes: r.MaxQuotes,
		ClosesAt:  r.ClosesAt,
		CreatedAt: r.CreatedAt,
	}
}

type quoteResponse struct {
	ID             string    `json:"id"`
	RFQID          string    `json:"rfq_id"`
	VendorID       string    `json:"vendor_id"`
	Subtotal       string    `json:"subtotal"`
	DeliveryCharge string    `json:"delivery_charge"`
	DiscountAmount string    `json:"discount_amount"`
	TaxAmount      string    `json:"tax_amount"`
	FinalAmount    string    `json:"final_amount"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func newQuoteResponse(q domain.Quote) quoteResponse {
	return quoteResponse{
		ID:             q.ID,
		RFQID:          q.RFQID,
		VendorID:       q.VendorID,
		Subtotal:       q.Subtotal.StringFixed(2),
		DeliveryCharge: q.DeliveryCharge.StringFixed(2),
		DiscountAmount: q.DiscountAmount.StringFixed(2),
		TaxAmount:      q.TaxAmount.StringFixed(2),
		FinalAmount:    q.FinalAmount.StringFixed(2),
		Status:         string(q.Status),
		CreatedAt:      q.CreatedAt,
	}
}

func parseAmount(value, field string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, errInvalidField(field)
	}
	return d, nil
}

type fieldError string

func (e fieldError) Error() string { return "invalid " + string(e) }

func errInvalidField(field string) error { return fieldError(field) }
