package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"fuelsales/internal/domain"
)

type recordedRequest struct {
	method string
	path   string
	auth   string
	reqID  string
	body   string
}

type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *recorder) first() recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reqs[0]
}

func newRecordingServer(t *testing.T, status int, response string) (*httptest.Server, *recorder) {
	t.Helper()
	seen := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen.mu.Lock()
		defer seen.mu.Unlock()
		seen.reqs = append(seen.reqs, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
			reqID:  r.Header.Get("X-Request-ID"),
			body:   string(body),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

var testSession = domain.BranchSession{Credential: "tok-123", BranchID: "4"}

func TestListSalesSendsBearerAndBranchPath(t *testing.T) {
	srv, seen := newRecordingServer(t, http.StatusOK, `[{"id":1,"fuel_type":"Diesel","liters":"10","sale_price_per_liter":"1500","sale_date":"2024-01-05","payment_mode":"Cash","branch_id":"4"}]`)
	client := New(Config{BaseURL: srv.URL + "/api/"})

	sales, err := client.ListSales(context.Background(), testSession)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 1 || sales[0].ID != 1 || sales[0].SaleDate.String() != "2024-01-05" {
		t.Fatalf("unexpected sales: %+v", sales)
	}

	got := seen.first()
	if got.method != http.MethodGet || got.path != "/api/fuel-sales/branch/4" {
		t.Fatalf("unexpected request %s %s", got.method, got.path)
	}
	if got.auth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", got.auth)
	}
	if !strings.HasPrefix(got.reqID, "req-") {
		t.Fatalf("expected request id header, got %q", got.reqID)
	}
}

func TestListInventoryNullBodyIsEmptySlice(t *testing.T) {
	srv, seen := newRecordingServer(t, http.StatusOK, `null`)
	client := New(Config{BaseURL: srv.URL})

	items, err := client.ListInventory(context.Background(), testSession)
	if err != nil {
		t.Fatalf("list inventory: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty inventory, got %#v", items)
	}
	if seen.first().path != "/inventory/branch/4" {
		t.Fatalf("unexpected path %s", seen.first().path)
	}
}

func TestCreateSalePostsWithoutID(t *testing.T) {
	srv, seen := newRecordingServer(t, http.StatusCreated, `{"id":42,"fuel_type":"Diesel","liters":"10","sale_price_per_liter":"1500","sale_date":"2024-01-05","payment_mode":"Cash","branch_id":"4"}`)
	client := New(Config{BaseURL: srv.URL})

	created, err := client.CreateSale(context.Background(), testSession, domain.SaleRecord{
		ID:                9,
		FuelType:          "Diesel",
		Liters:            decimal.NewFromInt(10),
		SalePricePerLiter: decimal.NewFromInt(1500),
		SaleDate:          domain.NewDate(2024, time.January, 5),
		PaymentMode:       domain.PaymentCash,
		BranchID:          "4",
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if created.ID != 42 {
		t.Fatalf("expected server id 42, got %d", created.ID)
	}

	got := seen.first()
	if got.method != http.MethodPost || got.path != "/fuel-sales" {
		t.Fatalf("unexpected request %s %s", got.method, got.path)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(got.body), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, hasID := body["id"]; hasID {
		t.Fatalf("expected create body without id, got %s", got.body)
	}
	if body["sale_date"] != "2024-01-05" || body["branch_id"] != "4" {
		t.Fatalf("unexpected body %s", got.body)
	}
}

func TestUpdateSaleEmptyBodyKeepsSentRecord(t *testing.T) {
	srv, seen := newRecordingServer(t, http.StatusOK, ``)
	client := New(Config{BaseURL: srv.URL})

	updated, err := client.UpdateSale(context.Background(), testSession, 7, domain.SaleRecord{FuelType: "Petrol", BranchID: "4"})
	if err != nil {
		t.Fatalf("update sale: %v", err)
	}
	if updated.ID != 7 || updated.FuelType != "Petrol" {
		t.Fatalf("expected echo of sent record, got %+v", updated)
	}
	if got := seen.first(); got.method != http.MethodPut || got.path != "/fuel-sales/7" {
		t.Fatalf("unexpected request %s %s", got.method, got.path)
	}
}

func TestDeleteSale(t *testing.T) {
	srv, seen := newRecordingServer(t, http.StatusNoContent, ``)
	client := New(Config{BaseURL: srv.URL})

	if err := client.DeleteSale(context.Background(), testSession, 2); err != nil {
		t.Fatalf("delete sale: %v", err)
	}
	if got := seen.first(); got.method != http.MethodDelete || got.path != "/fuel-sales/2" {
		t.Fatalf("unexpected request %s %s", got.method, got.path)
	}
}

func TestUnauthorizedMapsToAuthError(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusUnauthorized, `{"error":"invalid or expired token"}`)
	client := New(Config{BaseURL: srv.URL})

	_, err := client.ListSales(context.Background(), testSession)
	if !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid or expired token") {
		t.Fatalf("expected server message in error, got %v", err)
	}
}

func TestRejectedSaleMapsToServerError(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusBadRequest, `{"message":"liters must be positive"}`)
	client := New(Config{BaseURL: srv.URL})

	_, err := client.CreateSale(context.Background(), testSession, domain.SaleRecord{})
	var serverErr *domain.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if serverErr.Status != http.StatusBadRequest || serverErr.Message != "liters must be positive" {
		t.Fatalf("unexpected server error %+v", serverErr)
	}
}

func TestUnreachableStoreMapsToNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client := New(Config{BaseURL: baseURL})
	_, err := client.ListInventory(context.Background(), testSession)
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestLoginDoesNotSendBearer(t *testing.T) {
	srv, seen := newRecordingServer(t, http.StatusOK, `{"token":"jwt","role":"agent","userId":3,"branch":"4"}`)
	client := New(Config{BaseURL: srv.URL})

	resp, err := client.Login(context.Background(), domain.LoginRequest{Login: "agent", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token != "jwt" || resp.Branch != "4" || resp.UserID != 3 {
		t.Fatalf("unexpected login response %+v", resp)
	}
	if got := seen.first(); got.auth != "" || got.path != "/auth/login" {
		t.Fatalf("unexpected login request %+v", got)
	}
}

func TestLongPlainErrorBodyIsCutOnRuneBoundary(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusBadGateway, "x"+strings.Repeat("é", 300))
	client := New(Config{BaseURL: srv.URL})

	_, err := client.ListSales(context.Background(), testSession)
	var serverErr *domain.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if !utf8.ValidString(serverErr.Message) {
		t.Fatalf("expected valid UTF-8 message, got %q", serverErr.Message)
	}
	if n := utf8.RuneCountInString(serverErr.Message); n != maxMessageRunes {
		t.Fatalf("expected %d runes, got %d", maxMessageRunes, n)
	}
}
