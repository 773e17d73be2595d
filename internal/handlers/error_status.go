package handlers

import (
	"errors"
	"net/http"

	"campusBack/internal/models"
	"campusBack/internal/pay"
)

// errorStatus maps service errors onto HTTP status codes so the handlers do
// not repeat the taxonomy everywhere.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrRequestNotFound),
		errors.Is(err, models.ErrPaymentNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrFeeNotFound),
		errors.Is(err, models.ErrNoRecord):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidStateTransition),
		errors.Is(err, models.ErrDuplicatePayment),
		errors.Is(err, models.ErrDuplicateEmail),
		errors.Is(err, models.ErrPaymentDeadlineExceeded):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidDocumentType),
		errors.Is(err, models.ErrInvalidProcessing),
		errors.Is(err, models.ErrQuantityInvalid),
		errors.Is(err, models.ErrCashierRequired),
		errors.Is(err, models.ErrProviderIDsRequired):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}

	var providerErr *pay.ProviderError
	if errors.As(err, &providerErr) {
		if providerErr.StatusCode >= 400 && providerErr.StatusCode < 500 {
			return providerErr.StatusCode
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
