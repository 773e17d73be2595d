package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"

	"campusBack/internal/models"
)

type WebhookEventRepository struct {
	DB *sql.DB

	once sync.Once
	err  error
}

func NewWebhookEventRepository(db *sql.DB) *WebhookEventRepository {
	return &WebhookEventRepository{DB: db}
}

func (r *WebhookEventRepository) ensureSchema(ctx context.Context) error {
	r.once.Do(func() {
		const ddl = `
CREATE TABLE IF NOT EXISTS payment_webhook_events (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    event_id VARCHAR(255) NOT NULL,
    event_type VARCHAR(128) NOT NULL,
    payload LONGTEXT,
    processed TINYINT(1) NOT NULL DEFAULT 0,
    processed_at TIMESTAMP NULL,
    error_message TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (id),
    UNIQUE KEY uniq_event_id (event_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`
		_, r.err = r.DB.ExecContext(ctx, ddl)
	})
	return r.err
}

// Insert stores the event exactly once. The unique key on event_id makes the
// dedup check and the insert a single atomic operation; redeliveries return
// inserted=false and leave the original row untouched.
func (r *WebhookEventRepository) Insert(ctx context.Context, eventID, eventType string, payload json.RawMessage) (bool, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return false, err
	}
	res, err := r.DB.ExecContext(ctx, `
INSERT INTO payment_webhook_events (event_id, event_type, payload)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE event_id = event_id
`, eventID, eventType, []byte(payload))
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *WebhookEventRepository) GetByEventID(ctx context.Context, eventID string) (models.PaymentWebhookEvent, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return models.PaymentWebhookEvent{}, err
	}
	var (
		ev      models.PaymentWebhookEvent
		payload sql.NullString
		errMsg  sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, `SELECT id, event_id, event_type, payload, processed, processed_at, error_message, created_at FROM payment_webhook_events WHERE event_id = ?`, eventID).
		Scan(&ev.ID, &ev.EventID, &ev.EventType, &payload, &ev.Processed, &ev.ProcessedAt, &errMsg, &ev.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PaymentWebhookEvent{}, models.ErrEventNotFound
	}
	if err != nil {
		return models.PaymentWebhookEvent{}, err
	}
	ev.Payload = json.RawMessage(payload.String)
	ev.ErrorMessage = errMsg.String
	return ev, nil
}

// MarkProcessed finalizes the event. An empty message means clean success; a
// non-empty one records an informational outcome (unknown type, rejected
// transition) that does not warrant a retry.
func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, eventID, message string) error {
	var msg any
	if message != "" {
		msg = message
	}
	_, err := r.DB.ExecContext(ctx, `UPDATE payment_webhook_events SET processed = 1, processed_at = NOW(), error_message = ? WHERE event_id = ?`, msg, eventID)
	return err
}

// MarkFailed keeps the event retriable: processed stays false and the failure
// reason is recorded for the reprocessing sweep.
func (r *WebhookEventRepository) MarkFailed(ctx context.Context, eventID, message string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE payment_webhook_events SET processed = 0, error_message = ? WHERE event_id = ?`, message, eventID)
	return err
}

// ListUnprocessed returns events awaiting a retry, oldest first.
func (r *WebhookEventRepository) ListUnprocessed(ctx context.Context, limit int) ([]models.PaymentWebhookEvent, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT id, event_id, event_type, payload, processed, processed_at, error_message, created_at FROM payment_webhook_events WHERE processed = 0 ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PaymentWebhookEvent
	for rows.Next() {
		var (
			ev      models.PaymentWebhookEvent
			payload sql.NullString
			errMsg  sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.EventID, &ev.EventType, &payload, &ev.Processed, &ev.ProcessedAt, &errMsg, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Payload = json.RawMessage(payload.String)
		ev.ErrorMessage = errMsg.String
		out = append(out, ev)
	}
	return out, rows.Err()
}
