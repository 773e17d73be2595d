package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campusBack/internal/fsm"
	"campusBack/internal/models"
)

type PaymentRepository struct {
	DB *sql.DB
}

func (r *PaymentRepository) Create(ctx context.Context, p models.Payment) (models.Payment, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO payments (request_id, method, checkout_id, payment_intent_id, provider_payment_method, cashier_id, or_number, receipt_url, amount, status, created_at) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		p.RequestID, p.Method, p.CheckoutID, p.PaymentIntentID, p.ProviderPaymentMethod, p.CashierID, p.ORNumber, p.ReceiptURL, p.Amount, p.Status, p.CreatedAt)
	if err != nil {
		return models.Payment{}, err
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return models.Payment{}, err
	}
	return p, nil
}

const paymentColumns = `id, request_id, method, checkout_id, payment_intent_id, provider_payment_method, cashier_id, or_number, receipt_url, amount, status, paid_at, created_at`

func scanPayment(scan func(dest ...any) error) (models.Payment, error) {
	var p models.Payment
	err := scan(&p.ID, &p.RequestID, &p.Method, &p.CheckoutID, &p.PaymentIntentID, &p.ProviderPaymentMethod, &p.CashierID, &p.ORNumber, &p.ReceiptURL, &p.Amount, &p.Status, &p.PaidAt, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Payment{}, models.ErrPaymentNotFound
	}
	return p, err
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (models.Payment, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	return scanPayment(row.Scan)
}

// GetByProviderRef locates a payment by either correlation id reported in a
// webhook. Digital payments always carry at least one of the two.
func (r *PaymentRepository) GetByProviderRef(ctx context.Context, paymentIntentID, checkoutID string) (models.Payment, error) {
	if paymentIntentID == "" && checkoutID == "" {
		return models.Payment{}, models.ErrPaymentNotFound
	}
	row := r.DB.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE (payment_intent_id = ? AND payment_intent_id IS NOT NULL) OR (checkout_id = ? AND checkout_id IS NOT NULL) ORDER BY id DESC LIMIT 1`, paymentIntentID, checkoutID)
	return scanPayment(row.Scan)
}

func (r *PaymentRepository) ListByRequest(ctx context.Context, requestID int64) ([]models.Payment, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE request_id = ? ORDER BY created_at`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkFailed records a failed attempt. The parent request is untouched so the
// student can retry before the deadline.
func (r *PaymentRepository) MarkFailed(ctx context.Context, paymentID int64) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE payments SET status = ? WHERE id = ? AND status <> ?`, models.PaymentStatusFailed, paymentID, models.PaymentStatusPaid)
	return err
}

// MarkPaidResult describes what a paid mark did to the parent request.
type MarkPaidResult struct {
	RequestID        int64
	RequestNumber    string
	StudentID        int
	RequestStatus    string
	Transitioned     bool
	DeadlineExceeded bool
}

// MarkPaid sets the payment to paid and cascades the pending_payment -> paid
// transition on the parent request, all in one transaction. The request row is
// locked first, so the duplicate check and the transition cannot interleave
// with a concurrent mark.
//
// Outcomes:
//   - request already paid by another payment: models.ErrDuplicatePayment,
//     nothing mutated;
//   - this payment already paid: idempotent no-op;
//   - request pending and deadline passed (or request already
//     payment_expired): the payment is still marked paid per provider truth;
//     the request is reinstated to paid only when reinstateLate is set,
//     otherwise it lands (or stays) in payment_expired and the result carries
//     DeadlineExceeded.
func (r *PaymentRepository) MarkPaid(ctx context.Context, paymentID int64, now time.Time, reinstateLate bool) (MarkPaidResult, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return MarkPaidResult{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var (
		res       MarkPaidResult
		payStatus string
		deadline  time.Time
	)
	err = tx.QueryRowContext(ctx, `
SELECT p.status, r.id, r.request_number, r.student_id, r.status, r.payment_deadline
FROM payments p JOIN document_requests r ON r.id = p.request_id
WHERE p.id = ? FOR UPDATE`, paymentID).
		Scan(&payStatus, &res.RequestID, &res.RequestNumber, &res.StudentID, &res.RequestStatus, &deadline)
	if errors.Is(err, sql.ErrNoRows) {
		err = models.ErrPaymentNotFound
		return MarkPaidResult{}, err
	}
	if err != nil {
		return MarkPaidResult{}, err
	}

	if payStatus == models.PaymentStatusPaid {
		// Replay of a mark that already won.
		if err = tx.Commit(); err != nil {
			return MarkPaidResult{}, err
		}
		return res, nil
	}

	if res.RequestStatus == fsm.StatusPaid {
		err = models.ErrDuplicatePayment
		return MarkPaidResult{}, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE payments SET status = ?, paid_at = ? WHERE id = ?`, models.PaymentStatusPaid, now, paymentID); err != nil {
		return MarkPaidResult{}, err
	}

	late := now.After(deadline) || res.RequestStatus == fsm.StatusPaymentExpired
	switch {
	case !late && res.RequestStatus == fsm.StatusPendingPayment:
		if err = fsm.Apply(ctx, tx, res.RequestID, res.RequestStatus, fsm.StatusPaid); err != nil {
			return MarkPaidResult{}, err
		}
		res.RequestStatus = fsm.StatusPaid
		res.Transitioned = true

	case late && reinstateLate:
		// Registrar policy allows reinstatement: payment_expired (or overdue
		// pending) goes straight to paid. This edge bypasses the state table
		// deliberately; it only exists under the config flag.
		if _, err = tx.ExecContext(ctx, `UPDATE document_requests SET status = ?, updated_at = NOW() WHERE id = ?`, fsm.StatusPaid, res.RequestID); err != nil {
			return MarkPaidResult{}, err
		}
		res.RequestStatus = fsm.StatusPaid
		res.Transitioned = true
		res.DeadlineExceeded = true

	case late:
		res.DeadlineExceeded = true
		if res.RequestStatus == fsm.StatusPendingPayment {
			if err = fsm.Apply(ctx, tx, res.RequestID, res.RequestStatus, fsm.StatusPaymentExpired); err != nil {
				return MarkPaidResult{}, err
			}
			res.RequestStatus = fsm.StatusPaymentExpired
		}

	default:
		// Request is cancelled or otherwise past the payment phase; keep the
		// payment record truthful but leave the request alone.
	}

	if err = tx.Commit(); err != nil {
		return MarkPaidResult{}, err
	}
	return res, nil
}

// ConfirmCash attaches the cashier identity and official receipt before
// marking the payment paid. Cash confirmations share the same cascade rules
// as webhook marks.
func (r *PaymentRepository) ConfirmCash(ctx context.Context, paymentID int64, cashierID int, orNumber, receiptURL string, now time.Time, reinstateLate bool) (MarkPaidResult, error) {
	p, err := r.GetByID(ctx, paymentID)
	if err != nil {
		return MarkPaidResult{}, err
	}
	if p.Method != models.PaymentMethodCash {
		return MarkPaidResult{}, models.ErrCashierRequired
	}
	var receipt any
	if receiptURL != "" {
		receipt = receiptURL
	}
	if _, err := r.DB.ExecContext(ctx, `UPDATE payments SET cashier_id = ?, or_number = ?, receipt_url = COALESCE(?, receipt_url) WHERE id = ?`, cashierID, orNumber, receipt, paymentID); err != nil {
		return MarkPaidResult{}, err
	}
	return r.MarkPaid(ctx, paymentID, now, reinstateLate)
}
