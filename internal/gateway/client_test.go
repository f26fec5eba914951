package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Sirbiscuits1/Marketplace/internal/infra"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := infra.DefaultConfig()
	cfg.Gateway.BaseURL = srv.URL
	cfg.Gateway.ContentHost = "https://content.example"
	cfg.Gateway.TimeoutSec = 2
	return NewClient(cfg)
}

func TestWalletOrdinals_DecodesEnvelope(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wallet/addr-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data": {
				"address": "addr-1",
				"total_count": 1,
				"ordinals": [{"origin": "aaaa_0", "txid": "aaaa", "vout": 0, "owner_address": "addr-1", "satoshis": 1}],
				"fetch_time_ms": 12
			}
		}`))
	}))

	view, err := c.WalletOrdinals(context.Background(), "addr-1")
	if err != nil {
		t.Fatalf("wallet ordinals: %v", err)
	}
	if view.TotalCount != 1 || len(view.Ordinals) != 1 {
		t.Fatalf("view = %+v", view)
	}
	if view.Ordinals[0].Origin != "aaaa_0" {
		t.Errorf("origin = %q", view.Ordinals[0].Origin)
	}
}

func TestWalletOrdinals_ServerReportedFailure(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": "not_indexed", "message": "address not indexed yet"}`))
	}))

	_, err := c.WalletOrdinals(context.Background(), "addr-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.Message != "address not indexed yet" {
		t.Errorf("message = %q, want server's message", apiErr.Message)
	}
}

func TestGetWithRetry_RecoversFrom5xx(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"error": "transient"}`, http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success": true, "listings": []}`))
	}))

	listings, err := c.ActiveListings(context.Background())
	if err != nil {
		t.Fatalf("active listings: %v", err)
	}
	if len(listings) != 0 {
		t.Errorf("listings = %v, want empty", listings)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2 (one retry)", got)
	}
}

func TestGetWithRetry_DoesNotRetry4xx(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"message": "no such wallet"}`, http.StatusNotFound)
	}))

	_, err := c.WalletOrdinals(context.Background(), "addr-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("err = %v, want 404 APIError", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (client errors are final)", got)
	}
}

func TestCreateListing_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"message": "boom"}`, http.StatusInternalServerError)
	}))

	_, err := c.CreateListing(context.Background(), CreateListingRequest{Origin: "aaaa_0"})
	if err == nil {
		t.Fatal("expected failure")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (mutations are never auto-retried)", got)
	}
}

func TestCreateListing_RoundTrip(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/listings" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var req CreateListingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.MarketplaceFeeSatoshis != 50_000 {
			t.Errorf("fee on the wire = %d", req.MarketplaceFeeSatoshis)
		}
		w.Write([]byte(`{"success": true, "listing": {"id": "lst-1", "origin": "aaaa_0"}}`))
	}))

	listing, err := c.CreateListing(context.Background(), CreateListingRequest{
		Origin:                 "aaaa_0",
		MarketplaceFeeSatoshis: 50_000,
	})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	if listing.ID != "lst-1" {
		t.Errorf("id = %q, want lst-1", listing.ID)
	}
}

func TestCancelListing_SendsSellerAddress(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/listings/lst-1/cancel" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body["seller_ord_address"] != "ord-1" {
			t.Errorf("seller_ord_address = %q", body["seller_ord_address"])
		}
		w.Write([]byte(`{"success": true}`))
	}))

	if err := c.CancelListing(context.Background(), "lst-1", "ord-1"); err != nil {
		t.Fatalf("cancel listing: %v", err)
	}
}

func TestHealth(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"status": "ok", "listings_count": 7}`))
	}))

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if h.Status != "ok" || h.ListingsCount != 7 {
		t.Errorf("health = %+v", h)
	}
}

func TestContentURL(t *testing.T) {
	c := testClient(t, http.NewServeMux())
	want := "https://content.example/files/inscriptions/aaaa_0"
	if got := c.ContentURL("aaaa_0"); got != want {
		t.Errorf("ContentURL = %q, want %q", got, want)
	}
}

func TestServerMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message": "detail"}`, "detail"},
		{"error field", `{"error": "code"}`, "code"},
		{"message wins", `{"error": "code", "message": "detail"}`, "detail"},
		{"raw body", `plain text`, "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := serverMessage([]byte(tt.body)); got != tt.want {
				t.Errorf("serverMessage = %q, want %q", got, tt.want)
			}
		})
	}
}
