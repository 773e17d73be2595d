package services

import (
	"context"
	"strings"
	"time"

	"campusBack/internal/fsm"
	"campusBack/internal/models"
)

// RequestStore is the persistence surface of the request lifecycle.
type RequestStore interface {
	Create(ctx context.Context, req models.DocumentRequest) (models.DocumentRequest, error)
	GetByRequestNumber(ctx context.Context, requestNumber string) (models.DocumentRequest, error)
	ListByStudent(ctx context.Context, studentID int) ([]models.DocumentRequest, error)
	ListAll(ctx context.Context) ([]models.DocumentRequest, error)
	Transition(ctx context.Context, requestNumber, toStatus string, at time.Time) (models.DocumentRequest, error)
	ExpireOverduePayments(ctx context.Context, now time.Time) ([]string, error)
}

// PaymentLister exposes payment history for status views.
type PaymentLister interface {
	ListByRequest(ctx context.Context, requestID int64) ([]models.Payment, error)
}

// FeeSource resolves the per-unit price in force at a point in time.
type FeeSource interface {
	UnitPrice(ctx context.Context, documentType, processingType string, at time.Time) (float64, error)
}

type DocumentRequestService struct {
	Requests RequestStore
	Payments PaymentLister
	Fees     FeeSource
	Cache    *StatusCache
	Notifier StatusNotifier

	DeadlineHours int
}

func (s *DocumentRequestService) deadline() time.Duration {
	hours := s.DeadlineHours
	if hours <= 0 {
		hours = 48
	}
	return time.Duration(hours) * time.Hour
}

// CreateRequest validates the submission, prices it from the fee schedule and
// opens the payment window. The amount is never taken from the client.
func (s *DocumentRequestService) CreateRequest(ctx context.Context, studentID int, input models.CreateRequestInput, now time.Time) (models.DocumentRequest, error) {
	if !models.IsValidDocumentType(input.DocumentType) {
		return models.DocumentRequest{}, models.ErrInvalidDocumentType
	}
	if !models.IsValidProcessingType(input.ProcessingType) {
		return models.DocumentRequest{}, models.ErrInvalidProcessing
	}
	if input.Quantity < 1 {
		return models.DocumentRequest{}, models.ErrQuantityInvalid
	}

	unitPrice, err := s.Fees.UnitPrice(ctx, input.DocumentType, input.ProcessingType, now)
	if err != nil {
		return models.DocumentRequest{}, err
	}

	req := models.DocumentRequest{
		StudentID:       studentID,
		DocumentType:    input.DocumentType,
		ProcessingType:  input.ProcessingType,
		Quantity:        input.Quantity,
		Purpose:         strings.TrimSpace(input.Purpose),
		Amount:          unitPrice * float64(input.Quantity),
		PaymentDeadline: now.Add(s.deadline()),
		CreatedAt:       now,
	}
	return s.Requests.Create(ctx, req)
}

// GetStatus serves the public status query, cache first.
func (s *DocumentRequestService) GetStatus(ctx context.Context, requestNumber string) (models.RequestStatusView, error) {
	if view, ok := s.Cache.Get(ctx, requestNumber); ok {
		return view, nil
	}

	req, err := s.Requests.GetByRequestNumber(ctx, requestNumber)
	if err != nil {
		return models.RequestStatusView{}, err
	}
	payments, err := s.Payments.ListByRequest(ctx, req.ID)
	if err != nil {
		return models.RequestStatusView{}, err
	}

	view := models.RequestStatusView{
		RequestNumber:   req.RequestNumber,
		DocumentType:    req.DocumentType,
		ProcessingType:  req.ProcessingType,
		Quantity:        req.Quantity,
		Amount:          req.Amount,
		Status:          req.Status,
		PaymentDeadline: req.PaymentDeadline,
		Payments:        payments,
	}
	s.Cache.Set(ctx, view)
	return view, nil
}

func (s *DocumentRequestService) GetOwned(ctx context.Context, requestNumber string, studentID int) (models.DocumentRequest, error) {
	req, err := s.Requests.GetByRequestNumber(ctx, requestNumber)
	if err != nil {
		return models.DocumentRequest{}, err
	}
	if req.StudentID != studentID {
		return models.DocumentRequest{}, models.ErrRequestNotFound
	}
	return req, nil
}

func (s *DocumentRequestService) ListByStudent(ctx context.Context, studentID int) ([]models.DocumentRequest, error) {
	return s.Requests.ListByStudent(ctx, studentID)
}

func (s *DocumentRequestService) ListAll(ctx context.Context) ([]models.DocumentRequest, error) {
	return s.Requests.ListAll(ctx)
}

func (s *DocumentRequestService) transition(ctx context.Context, requestNumber, toStatus string, at time.Time) (models.DocumentRequest, error) {
	req, err := s.Requests.Transition(ctx, requestNumber, toStatus, at)
	if err != nil {
		return models.DocumentRequest{}, err
	}
	s.Cache.Invalidate(ctx, requestNumber)
	if s.Notifier != nil {
		s.Notifier.NotifyStatus(ctx, req.StudentID, req.RequestNumber, req.Status)
	}
	return req, nil
}

// StartProcessing moves a paid request into fulfillment. Admin action.
func (s *DocumentRequestService) StartProcessing(ctx context.Context, requestNumber string, now time.Time) (models.DocumentRequest, error) {
	return s.transition(ctx, requestNumber, fsm.StatusProcessing, now)
}

// MarkReady flags the document as ready for pickup. Admin action.
func (s *DocumentRequestService) MarkReady(ctx context.Context, requestNumber string, now time.Time) (models.DocumentRequest, error) {
	return s.transition(ctx, requestNumber, fsm.StatusReadyForPickup, now)
}

// Release hands the document over and records the release timestamp. Admin action.
func (s *DocumentRequestService) Release(ctx context.Context, requestNumber string, now time.Time) (models.DocumentRequest, error) {
	return s.transition(ctx, requestNumber, fsm.StatusReleased, now)
}

// Cancel is available to both staff and the owning student while the request
// has not been released.
func (s *DocumentRequestService) Cancel(ctx context.Context, requestNumber string, now time.Time) (models.DocumentRequest, error) {
	return s.transition(ctx, requestNumber, fsm.StatusCancelled, now)
}

// CancelOwned cancels on behalf of a student after an ownership check.
func (s *DocumentRequestService) CancelOwned(ctx context.Context, requestNumber string, studentID int, now time.Time) (models.DocumentRequest, error) {
	if _, err := s.GetOwned(ctx, requestNumber, studentID); err != nil {
		return models.DocumentRequest{}, err
	}
	return s.Cancel(ctx, requestNumber, now)
}

// ExpireOverduePayments is the sweep entry point used by the background ticker.
func (s *DocumentRequestService) ExpireOverduePayments(ctx context.Context, now time.Time) ([]string, error) {
	expired, err := s.Requests.ExpireOverduePayments(ctx, now)
	for _, rn := range expired {
		s.Cache.Invalidate(ctx, rn)
	}
	return expired, err
}
