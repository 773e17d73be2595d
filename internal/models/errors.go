package models

import (
	"errors"
)

var ErrInvalidStateTransition = errors.New("invalid state transition")
var ErrDuplicatePayment = errors.New("request is already paid")
var ErrUnknownWebhookEvent = errors.New("unknown webhook event type")
var ErrPaymentDeadlineExceeded = errors.New("payment deadline exceeded")
var (
	ErrNoRecord            = errors.New("models: no matching record found")
	ErrInvalidCredentials  = errors.New("models: invalid credentials")
	ErrDuplicateEmail      = errors.New("models: duplicate email")
	ErrUserNotFound        = errors.New("models: user not found")
	ErrRequestNotFound     = errors.New("document request not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrFeeNotFound         = errors.New("no fee schedule effective for date")
	ErrEventNotFound       = errors.New("webhook event not found")
	ErrCashierRequired     = errors.New("cash confirmation requires a cashier identity")
	ErrProviderIDsRequired = errors.New("digital payment requires provider correlation ids")
	ErrQuantityInvalid     = errors.New("quantity must be at least 1")
	ErrInvalidDocumentType = errors.New("unknown document type")
	ErrInvalidProcessing   = errors.New("unknown processing type")
)
