package models

import (
	"database/sql"
	"time"
)

// Payment methods.
const (
	PaymentMethodCash    = "cash"
	PaymentMethodDigital = "digital"
)

// Payment statuses.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Payment is one payment attempt for a document request. Rows are append-only:
// failed attempts stay in place and a later attempt gets its own row. The cash
// fields and the provider correlation fields are mutually exclusive.
type Payment struct {
	ID                    int64          `json:"id"`
	RequestID             int64          `json:"request_id"`
	Method                string         `json:"method"`
	CheckoutID            sql.NullString `json:"-"`
	PaymentIntentID       sql.NullString `json:"-"`
	ProviderPaymentMethod sql.NullString `json:"-"`
	CashierID             sql.NullInt64  `json:"-"`
	ORNumber              sql.NullString `json:"-"`
	ReceiptURL            sql.NullString `json:"-"`
	Amount                float64        `json:"amount"`
	Status                string         `json:"status"`
	PaidAt                *time.Time     `json:"paid_at,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
}

// PaymentView flattens the nullable columns for API responses.
type PaymentView struct {
	ID              int64      `json:"id"`
	Method          string     `json:"method"`
	CheckoutID      string     `json:"checkout_id,omitempty"`
	PaymentIntentID string     `json:"payment_intent_id,omitempty"`
	ORNumber        string     `json:"or_number,omitempty"`
	Amount          float64    `json:"amount"`
	Status          string     `json:"status"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (p Payment) View() PaymentView {
	return PaymentView{
		ID:              p.ID,
		Method:          p.Method,
		CheckoutID:      p.CheckoutID.String,
		PaymentIntentID: p.PaymentIntentID.String,
		ORNumber:        p.ORNumber.String,
		Amount:          p.Amount,
		Status:          p.Status,
		PaidAt:          p.PaidAt,
		CreatedAt:       p.CreatedAt,
	}
}
