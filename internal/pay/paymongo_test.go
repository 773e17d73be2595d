package pay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateCheckout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout_sessions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		user, _, ok := r.BasicAuth()
		if !ok || user != "sk_test_123" {
			t.Errorf("missing basic auth")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"data": {
				"id": "cs_abc",
				"attributes": {
					"checkout_url": "https://checkout.example/cs_abc",
					"status": "active",
					"payment_intent": {"id": "pi_xyz"}
				}
			}
		}`))
	}))
	defer ts.Close()

	client, err := NewClient(Config{SecretKey: "sk_test_123", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	resp, err := client.CreateCheckout(context.Background(), CreateCheckoutRequest{
		RequestNumber: "REQ-20260827-0001",
		Amount:        200,
		Description:   "Transcript of Records x2 (rush)",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.CheckoutID != "cs_abc" {
		t.Errorf("checkout id mismatch: %q", resp.CheckoutID)
	}
	if resp.PaymentIntentID != "pi_xyz" {
		t.Errorf("payment intent mismatch: %q", resp.PaymentIntentID)
	}
	if resp.CheckoutURL != "https://checkout.example/cs_abc" {
		t.Errorf("checkout url mismatch: %q", resp.CheckoutURL)
	}
}

func TestCreateCheckout_Non2xxReturnsProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"errors":[{"detail":"insufficient"}]}`))
	}))
	defer ts.Close()

	client, err := NewClient(Config{SecretKey: "sk", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, err = client.CreateCheckout(context.Background(), CreateCheckoutRequest{Amount: 100})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	apiErr, ok := err.(*ProviderError)
	if !ok {
		t.Fatalf("expected ProviderError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusPaymentRequired {
		t.Errorf("unexpected status code: %d", apiErr.StatusCode)
	}
	if apiErr.Body == "" {
		t.Errorf("expected body to be populated")
	}
}

func TestParseWebhook_FlatShape(t *testing.T) {
	body := `{
		"id": "evt_abc",
		"type": "payment.paid",
		"data": {"attributes": {"payment_intent_id": "pi_xyz", "amount": 20000, "status": "paid"}}
	}`
	ev, err := ParseWebhook(strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.ID != "evt_abc" {
		t.Errorf("event id mismatch: %q", ev.ID)
	}
	if ev.Type != "payment.paid" {
		t.Errorf("event type mismatch: %q", ev.Type)
	}
	if ev.PaymentIntentID != "pi_xyz" {
		t.Errorf("payment intent mismatch: %q", ev.PaymentIntentID)
	}
	if ev.Amount != 200 {
		t.Errorf("amount mismatch: %v", ev.Amount)
	}
}

func TestParseWebhook_NestedEnvelope(t *testing.T) {
	body := `{
		"data": {
			"id": "evt_nested",
			"attributes": {
				"type": "payment.failed",
				"data": {"id": "pay_1", "attributes": {"payment_intent_id": "pi_1", "amount": "15000", "status": "failed"}}
			}
		}
	}`
	ev, err := ParseWebhook(strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.ID != "evt_nested" {
		t.Errorf("event id mismatch: %q", ev.ID)
	}
	if ev.Type != "payment.failed" {
		t.Errorf("event type mismatch: %q", ev.Type)
	}
	if ev.PaymentIntentID != "pi_1" {
		t.Errorf("payment intent mismatch: %q", ev.PaymentIntentID)
	}
	if ev.Amount != 150 {
		t.Errorf("amount mismatch: %v", ev.Amount)
	}
}

func TestParseWebhook_MissingEventID(t *testing.T) {
	if _, err := ParseWebhook(strings.NewReader(`{"type":"payment.paid"}`)); err == nil {
		t.Fatal("expected error for missing event id")
	}
}
