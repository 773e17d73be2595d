package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"campusBack/internal/models"
	"campusBack/internal/pay"
	"campusBack/internal/repositories"
)

type stubEventStore struct {
	rows map[string]*models.PaymentWebhookEvent

	insertErr error
	inserts   int
}

func newStubEventStore() *stubEventStore {
	return &stubEventStore{rows: make(map[string]*models.PaymentWebhookEvent)}
}

func (s *stubEventStore) Insert(ctx context.Context, eventID, eventType string, payload json.RawMessage) (bool, error) {
	if s.insertErr != nil {
		return false, s.insertErr
	}
	if _, ok := s.rows[eventID]; ok {
		return false, nil
	}
	s.inserts++
	s.rows[eventID] = &models.PaymentWebhookEvent{EventID: eventID, EventType: eventType, Payload: payload}
	return true, nil
}

func (s *stubEventStore) GetByEventID(ctx context.Context, eventID string) (models.PaymentWebhookEvent, error) {
	row, ok := s.rows[eventID]
	if !ok {
		return models.PaymentWebhookEvent{}, models.ErrEventNotFound
	}
	return *row, nil
}

func (s *stubEventStore) MarkProcessed(ctx context.Context, eventID, message string) error {
	row, ok := s.rows[eventID]
	if !ok {
		return models.ErrEventNotFound
	}
	row.Processed = true
	row.ErrorMessage = message
	return nil
}

func (s *stubEventStore) MarkFailed(ctx context.Context, eventID, message string) error {
	row, ok := s.rows[eventID]
	if !ok {
		return models.ErrEventNotFound
	}
	row.Processed = false
	row.ErrorMessage = message
	return nil
}

func (s *stubEventStore) ListUnprocessed(ctx context.Context, limit int) ([]models.PaymentWebhookEvent, error) {
	var out []models.PaymentWebhookEvent
	for _, row := range s.rows {
		if !row.Processed {
			out = append(out, *row)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type stubPaymentMarker struct {
	payment models.Payment
	getErr  error

	result  repositories.MarkPaidResult
	markErr error

	markPaidCalls   int
	markFailedCalls int
	lastReinstate   bool
}

func (s *stubPaymentMarker) GetByProviderRef(ctx context.Context, paymentIntentID, checkoutID string) (models.Payment, error) {
	if s.getErr != nil {
		return models.Payment{}, s.getErr
	}
	return s.payment, nil
}

func (s *stubPaymentMarker) MarkPaid(ctx context.Context, paymentID int64, now time.Time, reinstateLate bool) (repositories.MarkPaidResult, error) {
	s.markPaidCalls++
	s.lastReinstate = reinstateLate
	return s.result, s.markErr
}

func (s *stubPaymentMarker) MarkFailed(ctx context.Context, paymentID int64) error {
	s.markFailedCalls++
	return nil
}

type stubNotifier struct {
	calls []string
}

func (s *stubNotifier) NotifyStatus(ctx context.Context, studentID int, requestNumber, status string) {
	s.calls = append(s.calls, requestNumber+":"+status)
}

func paidEvent(id string) *pay.WebhookEvent {
	return &pay.WebhookEvent{
		ID:              id,
		Type:            models.EventPaymentPaid,
		PaymentIntentID: "pi_123",
		Raw:             json.RawMessage(`{"id":"` + id + `","type":"payment.paid"}`),
	}
}

func TestIngestPaidEvent(t *testing.T) {
	events := newStubEventStore()
	payments := &stubPaymentMarker{
		payment: models.Payment{ID: 7},
		result: repositories.MarkPaidResult{
			RequestNumber: "REQ-20260115-0001",
			StudentID:     42,
			RequestStatus: "paid",
			Transitioned:  true,
		},
	}
	notifier := &stubNotifier{}
	svc := &WebhookService{Events: events, Payments: payments, Notifier: notifier}

	persisted, err := svc.Ingest(context.Background(), paidEvent("evt_abc"), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !persisted {
		t.Fatal("expected event to be persisted")
	}
	if payments.markPaidCalls != 1 {
		t.Fatalf("expected one MarkPaid call, got %d", payments.markPaidCalls)
	}
	if len(notifier.calls) != 1 || notifier.calls[0] != "REQ-20260115-0001:paid" {
		t.Fatalf("unexpected notifications: %v", notifier.calls)
	}
	row := events.rows["evt_abc"]
	if !row.Processed {
		t.Fatal("expected event row marked processed")
	}
}

func TestIngestReplayIsNoOp(t *testing.T) {
	events := newStubEventStore()
	payments := &stubPaymentMarker{
		payment: models.Payment{ID: 7},
		result: repositories.MarkPaidResult{
			RequestNumber: "REQ-20260115-0001",
			RequestStatus: "paid",
			Transitioned:  true,
		},
	}
	svc := &WebhookService{Events: events, Payments: payments}

	ev := paidEvent("evt_abc")
	if _, err := svc.Ingest(context.Background(), ev, time.Now()); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	persisted, err := svc.Ingest(context.Background(), ev, time.Now())
	if err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if !persisted {
		t.Fatal("redelivery must still acknowledge")
	}
	if payments.markPaidCalls != 1 {
		t.Fatalf("redelivery must not reapply side effects, got %d MarkPaid calls", payments.markPaidCalls)
	}
	if events.inserts != 1 {
		t.Fatalf("expected a single ledger row, got %d", events.inserts)
	}
}

func TestIngestRetriesUnfinishedEvent(t *testing.T) {
	events := newStubEventStore()
	payments := &stubPaymentMarker{
		payment: models.Payment{ID: 7},
		markErr: errors.New("db gone"),
	}
	svc := &WebhookService{Events: events, Payments: payments}

	ev := paidEvent("evt_retry")
	persisted, err := svc.Ingest(context.Background(), ev, time.Now())
	if err != nil || !persisted {
		t.Fatalf("persisted=%v err=%v, want acknowledged despite processing failure", persisted, err)
	}
	if events.rows["evt_retry"].Processed {
		t.Fatal("failed processing must leave the row unprocessed for the sweep")
	}

	// The provider redelivers before the sweep runs; the stored failure does
	// not block another attempt.
	payments.markErr = nil
	payments.result = repositories.MarkPaidResult{RequestStatus: "paid", Transitioned: true}
	if _, err := svc.Ingest(context.Background(), ev, time.Now()); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if payments.markPaidCalls != 2 {
		t.Fatalf("expected a second MarkPaid attempt, got %d", payments.markPaidCalls)
	}
	if !events.rows["evt_retry"].Processed {
		t.Fatal("expected the retry to finish the row")
	}
}

func TestIngestPersistFailureNotAcknowledged(t *testing.T) {
	events := newStubEventStore()
	events.insertErr = errors.New("disk full")
	svc := &WebhookService{Events: events, Payments: &stubPaymentMarker{}}

	persisted, err := svc.Ingest(context.Background(), paidEvent("evt_x"), time.Now())
	if err == nil {
		t.Fatal("expected error when the ledger write fails")
	}
	if persisted {
		t.Fatal("unpersisted event must not be acknowledged")
	}
}

func TestIngestDuplicatePaymentAcknowledged(t *testing.T) {
	events := newStubEventStore()
	payments := &stubPaymentMarker{
		payment: models.Payment{ID: 7},
		markErr: models.ErrDuplicatePayment,
	}
	svc := &WebhookService{Events: events, Payments: payments}

	persisted, err := svc.Ingest(context.Background(), paidEvent("evt_dup"), time.Now())
	if err != nil || !persisted {
		t.Fatalf("persisted=%v err=%v", persisted, err)
	}
	row := events.rows["evt_dup"]
	if !row.Processed {
		t.Fatal("duplicate payment is a terminal outcome, row must be processed")
	}
	if row.ErrorMessage == "" {
		t.Fatal("expected the duplicate outcome recorded on the row")
	}
}

func TestIngestUnknownEventTypeAcknowledged(t *testing.T) {
	events := newStubEventStore()
	payments := &stubPaymentMarker{}
	svc := &WebhookService{Events: events, Payments: payments}

	ev := &pay.WebhookEvent{ID: "evt_u", Type: "source.chargeable", Raw: json.RawMessage(`{}`)}
	persisted, err := svc.Ingest(context.Background(), ev, time.Now())
	if err != nil || !persisted {
		t.Fatalf("persisted=%v err=%v", persisted, err)
	}
	if payments.markPaidCalls != 0 || payments.markFailedCalls != 0 {
		t.Fatal("unknown event types must not touch payments")
	}
	if !events.rows["evt_u"].Processed {
		t.Fatal("unknown events are acknowledged and closed")
	}
}

func TestIngestLatePaidDefaultPolicy(t *testing.T) {
	events := newStubEventStore()
	payments := &stubPaymentMarker{
		payment: models.Payment{ID: 7},
		result: repositories.MarkPaidResult{
			RequestNumber:    "REQ-20260115-0002",
			RequestStatus:    "payment_expired",
			DeadlineExceeded: true,
		},
	}
	notifier := &stubNotifier{}
	svc := &WebhookService{Events: events, Payments: payments, Notifier: notifier}

	persisted, err := svc.Ingest(context.Background(), paidEvent("evt_late"), time.Now())
	if err != nil || !persisted {
		t.Fatalf("persisted=%v err=%v", persisted, err)
	}
	if payments.lastReinstate {
		t.Fatal("reinstatement must be off by default")
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("no transition, no notification; got %v", notifier.calls)
	}
	if !events.rows["evt_late"].Processed {
		t.Fatal("late payment is a recorded terminal outcome")
	}
}

func TestIngestLatePaidReinstatement(t *testing.T) {
	events := newStubEventStore()
	payments := &stubPaymentMarker{
		payment: models.Payment{ID: 7},
		result: repositories.MarkPaidResult{
			RequestNumber:    "REQ-20260115-0002",
			StudentID:        42,
			RequestStatus:    "paid",
			Transitioned:     true,
			DeadlineExceeded: true,
		},
	}
	notifier := &stubNotifier{}
	svc := &WebhookService{Events: events, Payments: payments, Notifier: notifier, ReinstateLatePaid: true}

	if _, err := svc.Ingest(context.Background(), paidEvent("evt_late2"), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payments.lastReinstate {
		t.Fatal("expected the policy flag forwarded to the repository")
	}
	if len(notifier.calls) != 1 || notifier.calls[0] != "REQ-20260115-0002:paid" {
		t.Fatalf("expected a paid notification, got %v", notifier.calls)
	}
}

func TestIngestFailedEvent(t *testing.T) {
	events := newStubEventStore()
	payments := &stubPaymentMarker{payment: models.Payment{ID: 7}}
	svc := &WebhookService{Events: events, Payments: payments}

	ev := &pay.WebhookEvent{ID: "evt_f", Type: models.EventPaymentFailed, CheckoutID: "cs_1", Raw: json.RawMessage(`{}`)}
	if _, err := svc.Ingest(context.Background(), ev, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payments.markFailedCalls != 1 {
		t.Fatalf("expected one MarkFailed call, got %d", payments.markFailedCalls)
	}
	if payments.markPaidCalls != 0 {
		t.Fatal("failed event must not mark anything paid")
	}
}

func TestReprocessPending(t *testing.T) {
	events := newStubEventStore()
	payments := &stubPaymentMarker{
		payment: models.Payment{ID: 7},
		markErr: errors.New("db gone"),
	}
	svc := &WebhookService{Events: events, Payments: payments}

	ev := paidEvent("evt_sweep")
	if _, err := svc.Ingest(context.Background(), ev, time.Now()); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	payments.markErr = nil
	payments.result = repositories.MarkPaidResult{RequestStatus: "paid", Transitioned: true}
	done, err := svc.ReprocessPending(context.Background(), 10, time.Now())
	if err != nil {
		t.Fatalf("reprocess: %v", err)
	}
	if done != 1 {
		t.Fatalf("expected one reprocessed event, got %d", done)
	}
	if !events.rows["evt_sweep"].Processed {
		t.Fatal("sweep must finish the stuck row")
	}
}
