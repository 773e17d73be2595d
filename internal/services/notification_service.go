package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"firebase.google.com/go/messaging"

	"campusBack/internal/models"
	"campusBack/internal/repositories"
)

// StatusHub pushes live status events to connected clients.
type StatusHub interface {
	Push(userID int, event models.StatusEvent)
}

// NotificationService fans a status change out to every delivery channel:
// the persisted inbox, FCM push and the websocket hub. It is a sink — any
// channel failing is logged and swallowed.
type NotificationService struct {
	Repo     *repositories.NotificationRepository
	FCM      *messaging.Client
	Hub      StatusHub
	ErrorLog *log.Logger
}

var statusTitles = map[string]string{
	"paid":             "Payment received",
	"processing":       "Request in processing",
	"ready_for_pickup": "Document ready for pickup",
	"released":         "Document released",
	"payment_expired":  "Payment window expired",
	"cancelled":        "Request cancelled",
}

func (s *NotificationService) NotifyStatus(ctx context.Context, studentID int, requestNumber, status string) {
	title, ok := statusTitles[status]
	if !ok {
		title = "Request updated"
	}
	body := fmt.Sprintf("Request %s is now %s", requestNumber, status)

	if s.Repo != nil {
		if _, err := s.Repo.Save(ctx, models.Notification{
			UserID:        studentID,
			RequestNumber: requestNumber,
			Title:         title,
			Body:          body,
		}); err != nil {
			s.logError("save notification: %v", err)
		}
	}

	if s.Hub != nil {
		s.Hub.Push(studentID, models.StatusEvent{
			RequestNumber: requestNumber,
			Status:        status,
			At:            time.Now(),
		})
	}

	s.sendPush(ctx, studentID, title, body, requestNumber)
}

func (s *NotificationService) sendPush(ctx context.Context, studentID int, title, body, requestNumber string) {
	if s.FCM == nil || s.Repo == nil {
		return
	}
	tokens, err := s.Repo.GetTokensByUser(ctx, studentID)
	if err != nil {
		s.logError("load device tokens: %v", err)
		return
	}
	for _, token := range tokens {
		msg := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: map[string]string{
				"request_number": requestNumber,
			},
			Android: &messaging.AndroidConfig{
				Priority: "high",
			},
			APNS: &messaging.APNSConfig{
				Headers: map[string]string{
					"apns-priority": "10",
				},
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{
						Alert: &messaging.ApsAlert{
							Title: title,
							Body:  body,
						},
						Sound: "default",
					},
				},
			},
		}
		if _, err := s.FCM.Send(ctx, msg); err != nil {
			s.logError("fcm send to user %d: %v", studentID, err)
		}
	}
}

func (s *NotificationService) logError(format string, args ...any) {
	if s.ErrorLog != nil {
		s.ErrorLog.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (s *NotificationService) RegisterDeviceToken(ctx context.Context, userID int, token string) error {
	return s.Repo.SaveDeviceToken(ctx, userID, token)
}

func (s *NotificationService) ListByUser(ctx context.Context, userID int) ([]models.Notification, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id int64, userID int) error {
	return s.Repo.MarkRead(ctx, id, userID)
}
