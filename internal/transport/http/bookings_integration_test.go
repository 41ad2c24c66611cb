package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/freshlane/trade-api/internal/app"
	"github.com/freshlane/trade-api/internal/clock"
	"github.com/freshlane/trade-api/internal/domain"
	"github.com/freshlane/trade-api/internal/storage/postgres"
	"github.com/freshlane/trade-api/internal/testutil"
)

func TestReserveBooking_HTTPIntegration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)
	repo := postgres.NewBookingRepository(pool)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := app.NewBookingService(repo, clock.NewFixed(now))

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)
	zoneID := testutil.InsertZone(t, ctx, pool, "Zone A", 2, 2, 1)
	bay1 := testutil.InsertBay(t, ctx, pool, zoneID, 1, domain.VehicleTruck)
	testutil.InsertBay(t, ctx, pool, zoneID, 2, domain.VehicleTruck)
	slotID := testutil.InsertTimeSlot(t, ctx, pool, "05:00", "06:00", 30)

	body := []byte(`{"buyer_id":"buyer-1","vehicle_type":"truck","slot_id":"` + slotID + `","date":"2025-06-03"}`)
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()

	HandleReserveBooking(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp bookingResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.BayID != bay1 {
		t.Fatalf("expected lowest numbered bay %s, got %s", bay1, resp.BayID)
	}
	if resp.Status != string(domain.BookingStatusConfirmed) {
		t.Fatalf("expected status confirmed, got %s", resp.Status)
	}

	var count int
	if err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE slot_id = $1 AND booking_date = $2`,
		slotID, "2025-06-03",
	).Scan(&count); err != nil {
		t.Fatalf("query count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 booking, got %d", count)
	}

	// Two truck bays: the second reserve lands on bay 2, the third overflows.
	req2 := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBuffer(body))
	rec2 := httptest.NewRecorder()
	HandleReserveBooking(svc, nil).ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("expected status 201 for second bay, got %d", rec2.Code)
	}

	req3 := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBuffer(body))
	rec3 := httptest.NewRecorder()
	HandleReserveBooking(svc, nil).ServeHTTP(rec3, req3)
	if rec3.Code != http.StatusConflict {
		t.Fatalf("expected status 409 when zone is full, got %d", rec3.Code)
	}
}

func TestReserveAndCancel_HTTPIntegration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)
	repo := postgres.NewBookingRepository(pool)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := app.NewBookingService(repo, clock.NewFixed(now))

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)
	zoneID := testutil.InsertZone(t, ctx, pool, "Zone A", 1, 1, 1)
	testutil.InsertBay(t, ctx, pool, zoneID, 1, domain.VehicleTruck)
	slotID := testutil.InsertTimeSlot(t, ctx, pool, "05:00", "06:00", 30)

	mux := http.NewServeMux()
	mux.Handle("/bookings", HandleReserveBooking(svc, nil))
	mux.Handle("/bookings/", HandleCancelBooking(svc))

	body := []byte(`{"buyer_id":"buyer-1","vehicle_type":"truck","slot_id":"` + slotID + `","date":"2025-06-03"}`)
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created bookingResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected booking id to be set")
	}

	cancelReq := httptest.NewRequest(http.MethodPost, "/bookings/"+created.ID+"/cancel", nil)
	cancelRec := httptest.NewRecorder()
	mux.ServeHTTP(cancelRec, cancelReq)

	if cancelRec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", cancelRec.Code, cancelRec.Body.String())
	}

	var status string
	if err := pool.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1`, created.ID).Scan(&status); err != nil {
		t.Fatalf("query status: %v", err)
	}
	if status != string(domain.BookingStatusCancelled) {
		t.Fatalf("expected booking status cancelled, got %s", status)
	}

	// The freed bay can be reserved again for the same slot and date.
	retryReq := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBuffer(body))
	retryRec := httptest.NewRecorder()
	mux.ServeHTTP(retryRec, retryReq)
	if retryRec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 after cancel, got %d", retryRec.Code)
	}
}
