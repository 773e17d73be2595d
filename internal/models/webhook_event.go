package models

import (
	"encoding/json"
	"time"
)

// Provider event types the intake resolves to an action. Anything else is
// acknowledged and recorded, never rejected.
const (
	EventPaymentPaid   = "payment.paid"
	EventPaymentFailed = "payment.failed"
)

// PaymentWebhookEvent is the idempotency record for provider callbacks.
// EventID is the provider's own event id and carries a unique constraint, so
// redelivered events collapse onto the original row.
type PaymentWebhookEvent struct {
	ID           int64           `json:"id"`
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Processed    bool            `json:"processed"`
	ProcessedAt  *time.Time      `json:"processed_at,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
