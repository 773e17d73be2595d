package repositories

import (
	"context"
	"database/sql"

	"campusBack/internal/models"
)

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

type NotificationRepository struct {
	DB *sql.DB
}

func (r *NotificationRepository) Save(ctx context.Context, n models.Notification) (models.Notification, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO notifications (user_id, request_number, title, body, created_at) VALUES (?,?,?,?,NOW())`,
		n.UserID, n.RequestNumber, n.Title, n.Body)
	if err != nil {
		return models.Notification{}, err
	}
	n.ID, err = res.LastInsertId()
	return n, err
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID int) ([]models.Notification, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, user_id, request_number, title, body, is_read, created_at FROM notifications WHERE user_id = ? ORDER BY created_at DESC LIMIT 100`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.RequestNumber, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, userID int) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	return err
}

func (r *NotificationRepository) SaveDeviceToken(ctx context.Context, userID int, token string) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO device_tokens (user_id, token, created_at) VALUES (?,?,NOW()) ON DUPLICATE KEY UPDATE user_id = VALUES(user_id)`, userID, token)
	return err
}

func (r *NotificationRepository) GetTokensByUser(ctx context.Context, userID int) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT token FROM device_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
