package pay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// Config describes the PayMongo connection parameters.
type Config struct {
	SecretKey     string
	WebhookSecret string

	// Example: https://api.paymongo.com
	BaseURL string

	// Where the checkout page sends the student back after payment.
	SuccessURL string
	FailureURL string

	Client *http.Client
	Logger *slog.Logger
}

// Client is a minimal PayMongo API client for checkout sessions.
type Client struct {
	secretKey     string
	webhookSecret string
	baseURL       *url.URL
	successURL    string
	failureURL    string

	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a new PayMongo client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" || strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("paymongo: secret_key/base_url are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	c := &Client{
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		baseURL:       u,
		successURL:    cfg.SuccessURL,
		failureURL:    cfg.FailureURL,
		httpClient:    client,
		logger:        logger,
	}
	logger.Info("PayMongo initialized",
		"baseURL", c.baseURL.String(),
		"successURL_set", c.successURL != "",
		"failureURL_set", c.failureURL != "",
	)
	return c, nil
}

// WebhookSecret returns the configured webhook signing secret.
func (c *Client) WebhookSecret() string { return c.webhookSecret }

// CreateCheckoutRequest describes parameters for checkout session creation.
type CreateCheckoutRequest struct {
	RequestNumber string
	Amount        float64
	Description   string
}

// CreateCheckoutResponse contains the provider correlation ids the payment
// record keeps for webhook reconciliation.
type CreateCheckoutResponse struct {
	CheckoutID      string
	PaymentIntentID string
	CheckoutURL     string
	Status          string
	Raw             json.RawMessage
}

// CreateCheckout creates a checkout session. Amounts are sent in centavos.
func (c *Client) CreateCheckout(ctx context.Context, req CreateCheckoutRequest) (*CreateCheckoutResponse, error) {
	logger := c.logger.With("op", "CreateCheckout")

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/v1/checkout_sessions")

	body, err := json.Marshal(map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{
				"reference_number":     req.RequestNumber,
				"description":          req.Description,
				"send_email_receipt":   true,
				"show_line_items":      true,
				"success_url":          c.successURL,
				"cancel_url":           c.failureURL,
				"payment_method_types": []string{"gcash", "paymaya", "card"},
				"line_items": []map[string]any{{
					"name":     req.Description,
					"amount":   int64(req.Amount * 100),
					"currency": "PHP",
					"quantity": 1,
				}},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(c.secretKey, "")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("checkout sessions request: %w", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	logger.Debug("checkout sessions raw", "status", resp.Status, "body", trim(string(b), 2000))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(b)}
	}

	var out struct {
		Data struct {
			ID         string `json:"id"`
			Attributes struct {
				CheckoutURL   string `json:"checkout_url"`
				Status        string `json:"status"`
				PaymentIntent struct {
					ID string `json:"id"`
				} `json:"payment_intent"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	if strings.TrimSpace(out.Data.ID) == "" || strings.TrimSpace(out.Data.Attributes.CheckoutURL) == "" {
		return nil, fmt.Errorf("checkout session: empty id or checkout_url")
	}
	return &CreateCheckoutResponse{
		CheckoutID:      out.Data.ID,
		PaymentIntentID: out.Data.Attributes.PaymentIntent.ID,
		CheckoutURL:     out.Data.Attributes.CheckoutURL,
		Status:          out.Data.Attributes.Status,
		Raw:             json.RawMessage(b),
	}, nil
}

// WebhookEvent holds just the fields the intake consumes. The rest of the
// payload is kept opaque in Raw.
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
	CheckoutID      string
	Amount          float64
	Status          string
	Raw             json.RawMessage
}

// ParseWebhook extracts the event id, type and correlation attributes from a
// provider callback body. Both the flat shape {id, type, data.attributes.*}
// and the nested event envelope {data:{id, attributes:{type, data:{...}}}}
// are accepted.
func ParseWebhook(r io.Reader) (*WebhookEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read webhook body: %w", err)
	}

	type attributes struct {
		PaymentIntentID string          `json:"payment_intent_id"`
		CheckoutID      string          `json:"checkout_id"`
		Amount          json.RawMessage `json:"amount"`
		Status          string          `json:"status"`
	}
	var raw struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			ID         string `json:"id"`
			Attributes struct {
				attributes
				Type string `json:"type"`
				Data struct {
					ID         string     `json:"id"`
					Attributes attributes `json:"attributes"`
				} `json:"data"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}

	ev := &WebhookEvent{Raw: json.RawMessage(data)}

	ev.ID = strings.TrimSpace(raw.ID)
	if ev.ID == "" {
		ev.ID = strings.TrimSpace(raw.Data.ID)
	}
	ev.Type = strings.TrimSpace(raw.Type)
	if ev.Type == "" {
		ev.Type = strings.TrimSpace(raw.Data.Attributes.Type)
	}

	attrs := raw.Data.Attributes.attributes
	if attrs.PaymentIntentID == "" && attrs.CheckoutID == "" {
		attrs = raw.Data.Attributes.Data.Attributes
	}
	ev.PaymentIntentID = strings.TrimSpace(attrs.PaymentIntentID)
	ev.CheckoutID = strings.TrimSpace(attrs.CheckoutID)
	ev.Status = strings.TrimSpace(attrs.Status)
	ev.Amount, err = parseAmount(attrs.Amount)
	if err != nil {
		return nil, err
	}

	if ev.ID == "" {
		return nil, fmt.Errorf("webhook: missing event id")
	}
	return ev, nil
}

// parseAmount tolerates both a centavo integer and a string amount.
func parseAmount(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n / 100, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("paymongo: parse webhook amount: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("paymongo: parse webhook amount: %w", err)
	}
	return parsed / 100, nil
}

// ---------- helpers ----------

func trim(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

type ProviderError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "<nil>"
	}
	bt := strings.TrimSpace(e.Body)
	if bt == "" {
		return fmt.Sprintf("paymongo error: %s", e.Status)
	}
	return fmt.Sprintf("paymongo error: %s: %s", e.Status, bt)
}
