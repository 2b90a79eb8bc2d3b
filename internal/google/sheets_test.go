package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rentmimi/internal/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func setupMockServer(ctx context.Context) (*http.ServeMux, *httptest.Server, *SheetsService) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	srv, _ := sheets.NewService(ctx, option.WithEndpoint(server.URL), option.WithoutAuthentication())
	s := &SheetsService{
		service:         srv,
		bookingsSheetID: "bookings_tid",
		payoutsSheetID:  "payouts_tid",
		rowCache:        make(map[string]int),
	}
	return mux, server, s
}

func TestSheetsService_TestConnection(t *testing.T) {
	ctx := context.Background()
	mux, server, s := setupMockServer(ctx)
	defer server.Close()
	mux.HandleFunc("/v4/spreadsheets/bookings_tid/values/Bookings!A1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"ID"}}})
	})
	if err := s.TestConnection(ctx); err != nil {
		t.Errorf("TestConnection failed: %v", err)
	}
}

func TestSheetsService_WarmUpCache(t *testing.T) {
	ctx := context.Background()
	mux, server, s := setupMockServer(ctx)
	defer server.Close()
	mux.HandleFunc("/v4/spreadsheets/bookings_tid/values/Bookings!A:A", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{
			Values: [][]interface{}{{"ID"}, {"bk-1"}, {"bk-2"}},
		})
	})
	if err := s.WarmUpCache(ctx); err != nil {
		t.Errorf("WarmUpCache failed: %v", err)
	}
	if row, ok := s.getCachedRow("bk-1"); !ok || row != 2 {
		t.Errorf("expected row 2 for bk-1, got %d", row)
	}
	if row, ok := s.getCachedRow("bk-2"); !ok || row != 3 {
		t.Errorf("expected row 3 for bk-2, got %d", row)
	}
}

func TestSheetsService_UpsertBookingAppend(t *testing.T) {
	ctx := context.Background()
	mux, server, s := setupMockServer(ctx)
	defer server.Close()

	appended := false
	mux.HandleFunc("/v4/spreadsheets/bookings_tid/values/Bookings!A:A", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"ID"}}})
	})
	mux.HandleFunc("/v4/spreadsheets/bookings_tid/values/Bookings!A:A:append", func(w http.ResponseWriter, r *http.Request) {
		appended = true
		_ = json.NewEncoder(w).Encode(sheets.AppendValuesResponse{})
	})

	booking := &models.Booking{ID: "bk-9", ClientName: "지수", Status: models.StatusPending}
	if err := s.UpsertBooking(ctx, booking); err != nil {
		t.Fatalf("UpsertBooking failed: %v", err)
	}
	if !appended {
		t.Errorf("expected append for unknown booking")
	}
}

func TestSheetsService_UpsertBookingUpdate(t *testing.T) {
	ctx := context.Background()
	mux, server, s := setupMockServer(ctx)
	defer server.Close()

	s.setCachedRow("bk-1", 2)

	updated := false
	mux.HandleFunc("/v4/spreadsheets/bookings_tid/values/Bookings!A2:M2", func(w http.ResponseWriter, r *http.Request) {
		updated = true
		_ = json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
	})

	booking := &models.Booking{ID: "bk-1", Status: models.StatusApproved}
	if err := s.UpsertBooking(ctx, booking); err != nil {
		t.Fatalf("UpsertBooking failed: %v", err)
	}
	if !updated {
		t.Errorf("expected row update for cached booking")
	}

	if err := s.UpsertBooking(ctx, nil); err == nil {
		t.Errorf("expected error for nil booking")
	}
}

func TestSheetsService_UpdateBookingStatus(t *testing.T) {
	ctx := context.Background()
	mux, server, s := setupMockServer(ctx)
	defer server.Close()

	s.setCachedRow("bk-1", 3)

	var statusBody, updatedBody bool
	mux.HandleFunc("/v4/spreadsheets/bookings_tid/values/Bookings!K3:K3", func(w http.ResponseWriter, r *http.Request) {
		statusBody = true
		_ = json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
	})
	mux.HandleFunc("/v4/spreadsheets/bookings_tid/values/Bookings!M3:M3", func(w http.ResponseWriter, r *http.Request) {
		updatedBody = true
		_ = json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
	})

	if err := s.UpdateBookingStatus(ctx, "bk-1", models.StatusCompleted); err != nil {
		t.Fatalf("UpdateBookingStatus failed: %v", err)
	}
	if !statusBody || !updatedBody {
		t.Errorf("expected both status and updated-at cells written")
	}
}

func TestSheetsService_AppendPayout(t *testing.T) {
	ctx := context.Background()
	mux, server, s := setupMockServer(ctx)
	defer server.Close()

	appended := false
	mux.HandleFunc("/v4/spreadsheets/payouts_tid/values/Payouts!A:A:append", func(w http.ResponseWriter, r *http.Request) {
		appended = true
		_ = json.NewEncoder(w).Encode(sheets.AppendValuesResponse{})
	})

	booking := &models.Booking{ID: "bk-1", MimiName: "미미", MimiPhone: "01033334444", PayoutStatus: models.PayoutPending}
	if err := s.AppendPayout(ctx, booking, 154720); err != nil {
		t.Fatalf("AppendPayout failed: %v", err)
	}
	if !appended {
		t.Errorf("expected payout row append")
	}

	if err := s.AppendPayout(ctx, nil, 0); err == nil {
		t.Errorf("expected error for nil booking")
	}
}

func TestBookingRowValues(t *testing.T) {
	createdAt := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	updatedAt := time.Date(2026, 9, 2, 11, 30, 0, 0, time.UTC)

	booking := &models.Booking{
		ID:            "bk-1",
		ClientPhone:   "01011112222",
		ClientName:    "지수",
		MimiName:      "미미",
		Date:          "2026-09-07",
		Time:          "14:00",
		DurationHours: 2,
		Plan:          models.PlanPremium,
		Location:      "강남역",
		TotalCost:     190000,
		Status:        models.StatusPending,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}

	values := bookingRowValues(booking)
	if len(values) != 13 {
		t.Fatalf("expected 13 columns, got %d", len(values))
	}
	if values[0] != "bk-1" || values[4] != "2026-09-07" || values[10] != models.StatusPending {
		t.Errorf("unexpected row values: %v", values)
	}
	if values[11] != "2026-09-01 10:00:00" {
		t.Errorf("unexpected created-at format: %v", values[11])
	}
}

func TestFindBookingRowRequiresID(t *testing.T) {
	s := &SheetsService{rowCache: make(map[string]int)}
	if _, err := s.findBookingRow(context.Background(), ""); err == nil {
		t.Errorf("expected error for empty booking id")
	}
}
