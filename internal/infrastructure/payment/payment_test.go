package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/core/ports"
)

func newPayPalServer(t *testing.T, captureStatus string) (*httptest.Server, *int) {
	t.Helper()
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		if user, pass, ok := r.BasicAuth(); !ok || user != "id" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok", ExpiresIn: 3600})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PurchaseUnits[0].Amount.Value != "39.98" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"ORDER-1","status":"CREATED"}`))
	})
	mux.HandleFunc("/v2/checkout/orders/ORDER-1/capture", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"ORDER-1","status":"` + captureStatus + `","payer":{"name":{"given_name":"Ana","surname":"Pérez"}}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &tokenCalls
}

func TestPayPal_CreateAndCapture(t *testing.T) {
	srv, tokenCalls := newPayPalServer(t, "COMPLETED")
	pp := NewPayPal(PayPalConfig{BaseURL: srv.URL, ClientID: "id", ClientSecret: "secret"}, zerolog.Nop())
	ctx := context.Background()

	id, err := pp.CreateOrder(ctx, ports.PaymentRequest{Amount: "39.98", Currency: "EUR"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "ORDER-1" {
		t.Fatalf("unexpected id %q", id)
	}

	capture, err := pp.Capture(ctx, id)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if capture.PayerName != "Ana Pérez" || capture.Status != "COMPLETED" {
		t.Fatalf("unexpected capture %+v", capture)
	}
	if *tokenCalls != 1 {
		t.Fatalf("expected cached token, got %d token calls", *tokenCalls)
	}
}

func TestPayPal_CaptureNotCompleted(t *testing.T) {
	srv, _ := newPayPalServer(t, "PENDING")
	pp := NewPayPal(PayPalConfig{BaseURL: srv.URL, ClientID: "id", ClientSecret: "secret"}, zerolog.Nop())

	if _, err := pp.Capture(context.Background(), "ORDER-1"); err == nil {
		t.Fatalf("expected error for non-completed capture")
	}
}

func TestPayPal_BadCredentials(t *testing.T) {
	srv, _ := newPayPalServer(t, "COMPLETED")
	pp := NewPayPal(PayPalConfig{BaseURL: srv.URL, ClientID: "id", ClientSecret: "nope"}, zerolog.Nop())

	if _, err := pp.CreateOrder(context.Background(), ports.PaymentRequest{Amount: "1.00", Currency: "EUR"}); err == nil {
		t.Fatalf("expected token error")
	}
}

func TestSandbox(t *testing.T) {
	sb := NewSandbox(zerolog.Nop())
	ctx := context.Background()

	id, err := sb.CreateOrder(ctx, ports.PaymentRequest{Amount: "5.00", Currency: "EUR"})
	if err != nil || id == "" {
		t.Fatalf("create: %q %v", id, err)
	}
	if _, err := sb.Capture(ctx, id); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if _, err := sb.Capture(ctx, "unknown"); err == nil {
		t.Fatalf("expected unknown order error")
	}
}
