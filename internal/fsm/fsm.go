package fsm

import (
	"context"
	"database/sql"

	"campusBack/internal/models"
)

// Status constants used by the document request state machine.
const (
	StatusPendingPayment = "pending_payment"
	StatusPaid           = "paid"
	StatusProcessing     = "processing"
	StatusReadyForPickup = "ready_for_pickup"
	StatusReleased       = "released"
	StatusPaymentExpired = "payment_expired"
	StatusCancelled      = "cancelled"
)

var transitions = map[string]map[string]struct{}{
	StatusPendingPayment: {
		StatusPaid:           {},
		StatusPaymentExpired: {},
		StatusCancelled:      {},
	},
	StatusPaid: {
		StatusProcessing: {},
		StatusCancelled:  {},
	},
	StatusProcessing: {
		StatusReadyForPickup: {},
		StatusCancelled:      {},
	},
	StatusReadyForPickup: {
		StatusReleased:  {},
		StatusCancelled: {},
	},
	StatusPaymentExpired: {
		StatusCancelled: {},
	},
	StatusReleased:  {},
	StatusCancelled: {},
}

// CanTransition returns whether a request can move from the current status to the target status.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// IsTerminal reports whether no further transitions are legal from the status.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

// Apply updates a request status using optimistic validation. The UPDATE is
// conditioned on the previously observed status so that two racing transitions
// cannot both apply; the loser sees zero affected rows and gets sql.ErrNoRows.
func Apply(ctx context.Context, tx *sql.Tx, requestID int64, fromStatus, toStatus string) error {
	if !CanTransition(fromStatus, toStatus) {
		return models.ErrInvalidStateTransition
	}
	if fromStatus == toStatus {
		return nil
	}
	res, err := tx.ExecContext(ctx, `UPDATE document_requests SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`, toStatus, requestID, fromStatus)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
