package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusBack/internal/fsm"
	"campusBack/internal/models"
)

type DocumentRequestRepository struct {
	DB *sql.DB
}

// Create inserts a document request with a freshly allocated request number.
// The per-day counter row and the insert share one transaction so two
// concurrent submissions can never draw the same number.
func (r *DocumentRequestRepository) Create(ctx context.Context, req models.DocumentRequest) (models.DocumentRequest, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.DocumentRequest{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	day := req.CreatedAt.Format("20060102")
	if _, err = tx.ExecContext(ctx, `INSERT INTO request_counters (day, counter) VALUES (?, LAST_INSERT_ID(1)) ON DUPLICATE KEY UPDATE counter = LAST_INSERT_ID(counter + 1)`, day); err != nil {
		return models.DocumentRequest{}, err
	}
	var seq int64
	if err = tx.QueryRowContext(ctx, `SELECT LAST_INSERT_ID()`).Scan(&seq); err != nil {
		return models.DocumentRequest{}, err
	}
	req.RequestNumber = fmt.Sprintf("REQ-%s-%04d", day, seq)
	req.Status = fsm.StatusPendingPayment

	res, err := tx.ExecContext(ctx, `INSERT INTO document_requests (request_number, student_id, document_type, processing_type, quantity, purpose, amount, status, payment_deadline, created_at) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		req.RequestNumber, req.StudentID, req.DocumentType, req.ProcessingType, req.Quantity, req.Purpose, req.Amount, req.Status, req.PaymentDeadline, req.CreatedAt)
	if err != nil {
		return models.DocumentRequest{}, err
	}
	req.ID, err = res.LastInsertId()
	if err != nil {
		return models.DocumentRequest{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.DocumentRequest{}, err
	}
	return req, nil
}

const requestColumns = `id, request_number, student_id, document_type, processing_type, quantity, purpose, amount, status, payment_deadline, released_at, cancelled_at, created_at, updated_at`

func scanRequest(row *sql.Row) (models.DocumentRequest, error) {
	var req models.DocumentRequest
	err := row.Scan(&req.ID, &req.RequestNumber, &req.StudentID, &req.DocumentType, &req.ProcessingType, &req.Quantity, &req.Purpose, &req.Amount, &req.Status, &req.PaymentDeadline, &req.ReleasedAt, &req.CancelledAt, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DocumentRequest{}, models.ErrRequestNotFound
	}
	return req, err
}

func (r *DocumentRequestRepository) GetByID(ctx context.Context, id int64) (models.DocumentRequest, error) {
	return scanRequest(r.DB.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM document_requests WHERE id = ?`, id))
}

func (r *DocumentRequestRepository) GetByRequestNumber(ctx context.Context, requestNumber string) (models.DocumentRequest, error) {
	return scanRequest(r.DB.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM document_requests WHERE request_number = ?`, requestNumber))
}

func (r *DocumentRequestRepository) ListByStudent(ctx context.Context, studentID int) ([]models.DocumentRequest, error) {
	return r.list(ctx, `SELECT `+requestColumns+` FROM document_requests WHERE student_id = ? ORDER BY created_at DESC`, studentID)
}

func (r *DocumentRequestRepository) ListByStatus(ctx context.Context, status string) ([]models.DocumentRequest, error) {
	return r.list(ctx, `SELECT `+requestColumns+` FROM document_requests WHERE status = ? ORDER BY created_at DESC`, status)
}

func (r *DocumentRequestRepository) ListAll(ctx context.Context) ([]models.DocumentRequest, error) {
	return r.list(ctx, `SELECT ` + requestColumns + ` FROM document_requests ORDER BY created_at DESC`)
}

func (r *DocumentRequestRepository) list(ctx context.Context, query string, args ...any) ([]models.DocumentRequest, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DocumentRequest
	for rows.Next() {
		var req models.DocumentRequest
		if err := rows.Scan(&req.ID, &req.RequestNumber, &req.StudentID, &req.DocumentType, &req.ProcessingType, &req.Quantity, &req.Purpose, &req.Amount, &req.Status, &req.PaymentDeadline, &req.ReleasedAt, &req.CancelledAt, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// Transition moves a request to the target status. The read locks the row so
// a racing webhook and admin action serialize; the loser observes the new
// status and fails its own transition cleanly.
func (r *DocumentRequestRepository) Transition(ctx context.Context, requestNumber, toStatus string, at time.Time) (models.DocumentRequest, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.DocumentRequest{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var req models.DocumentRequest
	err = tx.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM document_requests WHERE request_number = ? FOR UPDATE`, requestNumber).
		Scan(&req.ID, &req.RequestNumber, &req.StudentID, &req.DocumentType, &req.ProcessingType, &req.Quantity, &req.Purpose, &req.Amount, &req.Status, &req.PaymentDeadline, &req.ReleasedAt, &req.CancelledAt, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		err = models.ErrRequestNotFound
		return models.DocumentRequest{}, err
	}
	if err != nil {
		return models.DocumentRequest{}, err
	}

	if err = fsm.Apply(ctx, tx, req.ID, req.Status, toStatus); err != nil {
		return models.DocumentRequest{}, err
	}

	switch toStatus {
	case fsm.StatusReleased:
		if _, err = tx.ExecContext(ctx, `UPDATE document_requests SET released_at = ? WHERE id = ?`, at, req.ID); err != nil {
			return models.DocumentRequest{}, err
		}
		req.ReleasedAt = &at
	case fsm.StatusCancelled:
		if _, err = tx.ExecContext(ctx, `UPDATE document_requests SET cancelled_at = ? WHERE id = ?`, at, req.ID); err != nil {
			return models.DocumentRequest{}, err
		}
		req.CancelledAt = &at
	}

	if err = tx.Commit(); err != nil {
		return models.DocumentRequest{}, err
	}
	req.Status = toStatus
	return req, nil
}

// ExpireOverduePayments moves every pending_payment request past its deadline
// to payment_expired and returns the affected request numbers.
func (r *DocumentRequestRepository) ExpireOverduePayments(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT request_number FROM document_requests WHERE status = ? AND payment_deadline < ?`, fsm.StatusPendingPayment, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var rn string
		if err := rows.Scan(&rn); err != nil {
			return nil, err
		}
		numbers = append(numbers, rn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var expired []string
	for _, rn := range numbers {
		if _, err := r.Transition(ctx, rn, fsm.StatusPaymentExpired, now); err != nil {
			// A paid webhook may have won the race since the SELECT; skip.
			if errors.Is(err, sql.ErrNoRows) || errors.Is(err, models.ErrInvalidStateTransition) {
				continue
			}
			return expired, err
		}
		expired = append(expired, rn)
	}
	return expired, nil
}
