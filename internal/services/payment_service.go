package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusBack/internal/fsm"
	"campusBack/internal/models"
	"campusBack/internal/pay"
	"campusBack/internal/repositories"
)

// ReceiptUploader stores official receipt scans and returns a public URL.
type ReceiptUploader interface {
	Upload(file []byte, fileName, folder string) (string, error)
}

type PaymentService struct {
	Payments *repositories.PaymentRepository
	Requests *repositories.DocumentRequestRepository
	Provider *pay.Client
	Receipts ReceiptUploader
	Cache    *StatusCache
	Notifier StatusNotifier

	ReinstateLatePaid bool
}

// CreateCheckout opens a digital payment attempt: a provider checkout session
// plus a pending payment row holding the correlation ids the webhook will
// report back.
func (s *PaymentService) CreateCheckout(ctx context.Context, requestNumber string, studentID int, now time.Time) (string, models.Payment, error) {
	req, err := s.Requests.GetByRequestNumber(ctx, requestNumber)
	if err != nil {
		return "", models.Payment{}, err
	}
	if req.StudentID != studentID {
		return "", models.Payment{}, models.ErrRequestNotFound
	}
	if req.Status != fsm.StatusPendingPayment {
		return "", models.Payment{}, models.ErrInvalidStateTransition
	}
	if s.Provider == nil {
		return "", models.Payment{}, fmt.Errorf("digital payments are not configured")
	}

	resp, err := s.Provider.CreateCheckout(ctx, pay.CreateCheckoutRequest{
		RequestNumber: req.RequestNumber,
		Amount:        req.Amount,
		Description:   fmt.Sprintf("%s x%d (%s)", req.DocumentType, req.Quantity, req.ProcessingType),
	})
	if err != nil {
		return "", models.Payment{}, err
	}

	p := models.Payment{
		RequestID:       req.ID,
		Method:          models.PaymentMethodDigital,
		CheckoutID:      sql.NullString{String: resp.CheckoutID, Valid: true},
		PaymentIntentID: sql.NullString{String: resp.PaymentIntentID, Valid: resp.PaymentIntentID != ""},
		Amount:          req.Amount,
		Status:          models.PaymentStatusPending,
		CreatedAt:       now,
	}
	p, err = s.Payments.Create(ctx, p)
	if err != nil {
		return "", models.Payment{}, err
	}
	return resp.CheckoutURL, p, nil
}

// CreateCashPayment opens a cash attempt. The cashier identity is attached at
// confirmation time, not here.
func (s *PaymentService) CreateCashPayment(ctx context.Context, requestNumber string, studentID int, now time.Time) (models.Payment, error) {
	req, err := s.Requests.GetByRequestNumber(ctx, requestNumber)
	if err != nil {
		return models.Payment{}, err
	}
	if req.StudentID != studentID {
		return models.Payment{}, models.ErrRequestNotFound
	}
	if req.Status != fsm.StatusPendingPayment {
		return models.Payment{}, models.ErrInvalidStateTransition
	}

	return s.Payments.Create(ctx, models.Payment{
		RequestID: req.ID,
		Method:    models.PaymentMethodCash,
		Amount:    req.Amount,
		Status:    models.PaymentStatusPending,
		CreatedAt: now,
	})
}

// ConfirmCash records the cashier action: official receipt number, optional
// receipt scan, then the paid mark with its request cascade.
func (s *PaymentService) ConfirmCash(ctx context.Context, paymentID int64, cashierID int, orNumber string, receipt []byte, now time.Time) (repositories.MarkPaidResult, error) {
	if cashierID <= 0 {
		return repositories.MarkPaidResult{}, models.ErrCashierRequired
	}
	orNumber = strings.TrimSpace(orNumber)
	if orNumber == "" {
		return repositories.MarkPaidResult{}, models.ErrCashierRequired
	}

	receiptURL := ""
	if len(receipt) > 0 && s.Receipts != nil {
		fileName := uuid.New().String() + ".jpg"
		url, err := s.Receipts.Upload(receipt, fileName, "receipts")
		if err != nil {
			return repositories.MarkPaidResult{}, fmt.Errorf("upload receipt: %w", err)
		}
		receiptURL = url
	}

	res, err := s.Payments.ConfirmCash(ctx, paymentID, cashierID, orNumber, receiptURL, now, s.ReinstateLatePaid)
	if err != nil {
		return repositories.MarkPaidResult{}, err
	}
	s.Cache.Invalidate(ctx, res.RequestNumber)
	if res.Transitioned && s.Notifier != nil {
		s.Notifier.NotifyStatus(ctx, res.StudentID, res.RequestNumber, res.RequestStatus)
	}
	return res, nil
}

// History returns the append-only payment trail for a request.
func (s *PaymentService) History(ctx context.Context, requestNumber string) ([]models.PaymentView, error) {
	req, err := s.Requests.GetByRequestNumber(ctx, requestNumber)
	if err != nil {
		return nil, err
	}
	payments, err := s.Payments.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	views := make([]models.PaymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, p.View())
	}
	return views, nil
}
