package models

import "time"

// Notification is a persisted copy of a status-change message sent to a
// student. Delivery failures do not fail the transition that produced them.
type Notification struct {
	ID            int64     `json:"id"`
	UserID        int       `json:"user_id"`
	RequestNumber string    `json:"request_number"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}

// DeviceToken maps a user to an FCM registration token.
type DeviceToken struct {
	UserID    int       `json:"user_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusEvent is what the websocket hub pushes to a connected student.
type StatusEvent struct {
	RequestNumber string    `json:"request_number"`
	Status        string    `json:"status"`
	At            time.Time `json:"at"`
}
