package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"campusBack/internal/fsm"
	"campusBack/internal/models"
)

type stubRequestStore struct {
	created []models.DocumentRequest
	byNum   map[string]models.DocumentRequest

	transitionErr error
	transitions   []string
	expired       []string
}

func newStubRequestStore() *stubRequestStore {
	return &stubRequestStore{byNum: make(map[string]models.DocumentRequest)}
}

func (s *stubRequestStore) Create(ctx context.Context, req models.DocumentRequest) (models.DocumentRequest, error) {
	req.ID = int64(len(s.created) + 1)
	req.RequestNumber = fmt.Sprintf("REQ-20260115-%04d", req.ID)
	req.Status = fsm.StatusPendingPayment
	s.created = append(s.created, req)
	s.byNum[req.RequestNumber] = req
	return req, nil
}

func (s *stubRequestStore) GetByRequestNumber(ctx context.Context, requestNumber string) (models.DocumentRequest, error) {
	req, ok := s.byNum[requestNumber]
	if !ok {
		return models.DocumentRequest{}, models.ErrRequestNotFound
	}
	return req, nil
}

func (s *stubRequestStore) ListByStudent(ctx context.Context, studentID int) ([]models.DocumentRequest, error) {
	var out []models.DocumentRequest
	for _, req := range s.created {
		if req.StudentID == studentID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (s *stubRequestStore) ListAll(ctx context.Context) ([]models.DocumentRequest, error) {
	return s.created, nil
}

func (s *stubRequestStore) Transition(ctx context.Context, requestNumber, toStatus string, at time.Time) (models.DocumentRequest, error) {
	if s.transitionErr != nil {
		return models.DocumentRequest{}, s.transitionErr
	}
	req, ok := s.byNum[requestNumber]
	if !ok {
		return models.DocumentRequest{}, models.ErrRequestNotFound
	}
	if !fsm.CanTransition(req.Status, toStatus) {
		return models.DocumentRequest{}, models.ErrInvalidStateTransition
	}
	req.Status = toStatus
	s.byNum[requestNumber] = req
	s.transitions = append(s.transitions, requestNumber+"->"+toStatus)
	return req, nil
}

func (s *stubRequestStore) ExpireOverduePayments(ctx context.Context, now time.Time) ([]string, error) {
	return s.expired, nil
}

type stubPaymentLister struct {
	payments []models.Payment
}

func (s *stubPaymentLister) ListByRequest(ctx context.Context, requestID int64) ([]models.Payment, error) {
	return s.payments, nil
}

type stubFeeSource struct {
	price float64
	err   error
}

func (s *stubFeeSource) UnitPrice(ctx context.Context, documentType, processingType string, at time.Time) (float64, error) {
	return s.price, s.err
}

func newRequestService(store *stubRequestStore, fees *stubFeeSource) *DocumentRequestService {
	return &DocumentRequestService{
		Requests: store,
		Payments: &stubPaymentLister{},
		Fees:     fees,
	}
}

func TestCreateRequestPricing(t *testing.T) {
	store := newStubRequestStore()
	svc := newRequestService(store, &stubFeeSource{price: 100})
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	req, err := svc.CreateRequest(context.Background(), 42, models.CreateRequestInput{
		DocumentType:   models.DocumentTranscript,
		ProcessingType: models.ProcessingRush,
		Quantity:       2,
		Purpose:        "board exam application",
	}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Amount != 200 {
		t.Errorf("amount = %v, want 200 (unit price x quantity)", req.Amount)
	}
	if want := now.Add(48 * time.Hour); !req.PaymentDeadline.Equal(want) {
		t.Errorf("payment deadline = %v, want %v", req.PaymentDeadline, want)
	}
	if req.Status != fsm.StatusPendingPayment {
		t.Errorf("status = %q, want %q", req.Status, fsm.StatusPendingPayment)
	}
	if req.RequestNumber == "" {
		t.Error("expected a request number assigned")
	}
}

func TestCreateRequestClientAmountIgnored(t *testing.T) {
	store := newStubRequestStore()
	svc := newRequestService(store, &stubFeeSource{price: 50})

	req, err := svc.CreateRequest(context.Background(), 42, models.CreateRequestInput{
		DocumentType:   models.DocumentEnrollmentCert,
		ProcessingType: models.ProcessingRegular,
		Quantity:       1,
	}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Amount != 50 {
		t.Errorf("amount = %v, want the fee schedule price 50", req.Amount)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	svc := newRequestService(newStubRequestStore(), &stubFeeSource{price: 100})
	now := time.Now()

	cases := []struct {
		name  string
		input models.CreateRequestInput
		want  error
	}{
		{"bad document type", models.CreateRequestInput{DocumentType: "form_137", ProcessingType: models.ProcessingRegular, Quantity: 1}, models.ErrInvalidDocumentType},
		{"bad processing type", models.CreateRequestInput{DocumentType: models.DocumentTranscript, ProcessingType: "express", Quantity: 1}, models.ErrInvalidProcessing},
		{"zero quantity", models.CreateRequestInput{DocumentType: models.DocumentTranscript, ProcessingType: models.ProcessingRegular, Quantity: 0}, models.ErrQuantityInvalid},
		{"negative quantity", models.CreateRequestInput{DocumentType: models.DocumentTranscript, ProcessingType: models.ProcessingRegular, Quantity: -3}, models.ErrQuantityInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateRequest(context.Background(), 42, tc.input, now); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCreateRequestMissingFee(t *testing.T) {
	svc := newRequestService(newStubRequestStore(), &stubFeeSource{err: models.ErrFeeNotFound})

	_, err := svc.CreateRequest(context.Background(), 42, models.CreateRequestInput{
		DocumentType:   models.DocumentTranscript,
		ProcessingType: models.ProcessingRegular,
		Quantity:       1,
	}, time.Now())
	if !errors.Is(err, models.ErrFeeNotFound) {
		t.Fatalf("err = %v, want %v", err, models.ErrFeeNotFound)
	}
}

func TestTransitionNotifiesStudent(t *testing.T) {
	store := newStubRequestStore()
	fees := &stubFeeSource{price: 100}
	notifier := &stubNotifier{}
	svc := newRequestService(store, fees)
	svc.Notifier = notifier

	req, err := svc.CreateRequest(context.Background(), 42, models.CreateRequestInput{
		DocumentType:   models.DocumentTranscript,
		ProcessingType: models.ProcessingRegular,
		Quantity:       1,
	}, time.Now())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Simulate the webhook cascade landing the request in paid.
	stored := store.byNum[req.RequestNumber]
	stored.Status = fsm.StatusPaid
	store.byNum[req.RequestNumber] = stored

	if _, err := svc.StartProcessing(context.Background(), req.RequestNumber, time.Now()); err != nil {
		t.Fatalf("start processing: %v", err)
	}
	if len(notifier.calls) != 1 || notifier.calls[0] != req.RequestNumber+":processing" {
		t.Fatalf("unexpected notifications: %v", notifier.calls)
	}
}

func TestTransitionFromPendingRejected(t *testing.T) {
	store := newStubRequestStore()
	svc := newRequestService(store, &stubFeeSource{price: 100})

	req, err := svc.CreateRequest(context.Background(), 42, models.CreateRequestInput{
		DocumentType:   models.DocumentTranscript,
		ProcessingType: models.ProcessingRegular,
		Quantity:       1,
	}, time.Now())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.StartProcessing(context.Background(), req.RequestNumber, time.Now()); !errors.Is(err, models.ErrInvalidStateTransition) {
		t.Fatalf("err = %v, want %v", err, models.ErrInvalidStateTransition)
	}
}

func TestCancelOwnedChecksOwnership(t *testing.T) {
	store := newStubRequestStore()
	svc := newRequestService(store, &stubFeeSource{price: 100})

	req, err := svc.CreateRequest(context.Background(), 42, models.CreateRequestInput{
		DocumentType:   models.DocumentTranscript,
		ProcessingType: models.ProcessingRegular,
		Quantity:       1,
	}, time.Now())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.CancelOwned(context.Background(), req.RequestNumber, 99, time.Now()); !errors.Is(err, models.ErrRequestNotFound) {
		t.Fatalf("foreign student cancel: err = %v, want %v", err, models.ErrRequestNotFound)
	}

	got, err := svc.CancelOwned(context.Background(), req.RequestNumber, 42, time.Now())
	if err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	if got.Status != fsm.StatusCancelled {
		t.Errorf("status = %q, want %q", got.Status, fsm.StatusCancelled)
	}
}

func TestGetStatusIncludesPayments(t *testing.T) {
	store := newStubRequestStore()
	svc := newRequestService(store, &stubFeeSource{price: 100})
	svc.Payments = &stubPaymentLister{payments: []models.Payment{
		{ID: 1, Method: models.PaymentMethodDigital, Status: models.PaymentStatusPaid, Amount: 100},
	}}

	req, err := svc.CreateRequest(context.Background(), 42, models.CreateRequestInput{
		DocumentType:   models.DocumentTranscript,
		ProcessingType: models.ProcessingRegular,
		Quantity:       1,
	}, time.Now())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	view, err := svc.GetStatus(context.Background(), req.RequestNumber)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if view.RequestNumber != req.RequestNumber {
		t.Errorf("request number = %q, want %q", view.RequestNumber, req.RequestNumber)
	}
	if len(view.Payments) != 1 {
		t.Fatalf("expected the payment trail in the view, got %d entries", len(view.Payments))
	}
}
