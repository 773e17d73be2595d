package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"campusBack/internal/models"
	"campusBack/internal/pay"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{models.ErrRequestNotFound, http.StatusNotFound},
		{models.ErrInvalidStateTransition, http.StatusConflict},
		{models.ErrDuplicatePayment, http.StatusConflict},
		{models.ErrPaymentDeadlineExceeded, http.StatusConflict},
		{models.ErrQuantityInvalid, http.StatusBadRequest},
		{models.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", models.ErrPaymentNotFound), http.StatusNotFound},
		{&pay.ProviderError{StatusCode: http.StatusUnprocessableEntity}, http.StatusUnprocessableEntity},
		{&pay.ProviderError{StatusCode: http.StatusServiceUnavailable}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := errorStatus(tc.err); got != tc.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
