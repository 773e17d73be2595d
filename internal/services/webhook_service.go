package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campusBack/internal/models"
	"campusBack/internal/pay"
	"campusBack/internal/repositories"
)

// EventStore is the idempotency ledger for provider events.
type EventStore interface {
	Insert(ctx context.Context, eventID, eventType string, payload json.RawMessage) (bool, error)
	GetByEventID(ctx context.Context, eventID string) (models.PaymentWebhookEvent, error)
	MarkProcessed(ctx context.Context, eventID, message string) error
	MarkFailed(ctx context.Context, eventID, message string) error
	ListUnprocessed(ctx context.Context, limit int) ([]models.PaymentWebhookEvent, error)
}

// PaymentMarker mutates payment records and cascades request transitions.
type PaymentMarker interface {
	GetByProviderRef(ctx context.Context, paymentIntentID, checkoutID string) (models.Payment, error)
	MarkPaid(ctx context.Context, paymentID int64, now time.Time, reinstateLate bool) (repositories.MarkPaidResult, error)
	MarkFailed(ctx context.Context, paymentID int64) error
}

// StatusNotifier is the sink for student-facing status change messages.
// Implementations must never fail the flow that triggered them.
type StatusNotifier interface {
	NotifyStatus(ctx context.Context, studentID int, requestNumber, status string)
}

// WebhookService resolves provider events to payment side effects.
type WebhookService struct {
	Events   EventStore
	Payments PaymentMarker
	Notifier StatusNotifier
	Cache    *StatusCache

	// Registrar policy for payment.paid events arriving after the deadline.
	ReinstateLatePaid bool

	Logger *slog.Logger
}

func (s *WebhookService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Ingest processes one provider event. The returned persisted flag tells the
// endpoint whether the event was durably recorded: a persisted event is
// acknowledged to the provider even if resolving it failed (the retry sweep
// owns it from here); an unpersisted one must be redelivered.
func (s *WebhookService) Ingest(ctx context.Context, ev *pay.WebhookEvent, now time.Time) (persisted bool, err error) {
	inserted, err := s.Events.Insert(ctx, ev.ID, ev.Type, ev.Raw)
	if err != nil {
		return false, fmt.Errorf("persist event %s: %w", ev.ID, err)
	}
	if !inserted {
		existing, err := s.Events.GetByEventID(ctx, ev.ID)
		if err != nil {
			return true, nil
		}
		if existing.Processed {
			// Replay of a finished event is a no-op success.
			return true, nil
		}
		// Persisted earlier but never finished; take another attempt now.
	}

	s.resolve(ctx, ev, now)
	return true, nil
}

// resolve applies the event's side effect and finalizes the ledger row. All
// failures end up on the row, never back at the provider.
func (s *WebhookService) resolve(ctx context.Context, ev *pay.WebhookEvent, now time.Time) {
	err := s.apply(ctx, ev, now)
	switch {
	case err == nil:
		err = s.Events.MarkProcessed(ctx, ev.ID, "")
	case errors.Is(err, models.ErrUnknownWebhookEvent):
		// Forward compatibility: unknown events are acknowledged, not rejected.
		err = s.Events.MarkProcessed(ctx, ev.ID, fmt.Sprintf("ignored unknown event type %q", ev.Type))
	case errors.Is(err, models.ErrDuplicatePayment):
		err = s.Events.MarkProcessed(ctx, ev.ID, "duplicate payment: request already paid, no mutation applied")
	case errors.Is(err, models.ErrPaymentDeadlineExceeded):
		err = s.Events.MarkProcessed(ctx, ev.ID, "payment received after deadline: payment recorded, request not reinstated")
	default:
		s.logger().Error("webhook processing failed", "event_id", ev.ID, "event_type", ev.Type, "err", err)
		err = s.Events.MarkFailed(ctx, ev.ID, err.Error())
	}
	if err != nil {
		s.logger().Error("webhook ledger update failed", "event_id", ev.ID, "err", err)
	}
}

func (s *WebhookService) apply(ctx context.Context, ev *pay.WebhookEvent, now time.Time) error {
	switch ev.Type {
	case models.EventPaymentPaid:
		p, err := s.Payments.GetByProviderRef(ctx, ev.PaymentIntentID, ev.CheckoutID)
		if err != nil {
			return fmt.Errorf("locate payment for event %s: %w", ev.ID, err)
		}
		res, err := s.Payments.MarkPaid(ctx, p.ID, now, s.ReinstateLatePaid)
		if err != nil {
			return err
		}
		s.Cache.Invalidate(ctx, res.RequestNumber)
		if res.Transitioned && s.Notifier != nil {
			s.Notifier.NotifyStatus(ctx, res.StudentID, res.RequestNumber, res.RequestStatus)
		}
		if res.DeadlineExceeded && !res.Transitioned {
			return models.ErrPaymentDeadlineExceeded
		}
		return nil

	case models.EventPaymentFailed:
		p, err := s.Payments.GetByProviderRef(ctx, ev.PaymentIntentID, ev.CheckoutID)
		if err != nil {
			return fmt.Errorf("locate payment for event %s: %w", ev.ID, err)
		}
		// The request stays pending_payment; the student may retry.
		return s.Payments.MarkFailed(ctx, p.ID)

	default:
		return models.ErrUnknownWebhookEvent
	}
}

// ReprocessPending re-runs events the first attempt could not finish. Safe to
// call repeatedly: completed events are skipped by the processed flag and
// side effects are idempotent underneath.
func (s *WebhookService) ReprocessPending(ctx context.Context, limit int, now time.Time) (int, error) {
	events, err := s.Events.ListUnprocessed(ctx, limit)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, stored := range events {
		ev, err := pay.ParseWebhook(bytes.NewReader(stored.Payload))
		if err != nil {
			if err := s.Events.MarkProcessed(ctx, stored.EventID, "unparseable payload: "+err.Error()); err != nil {
				return done, err
			}
			continue
		}
		s.resolve(ctx, ev, now)
		done++
	}
	return done, nil
}
