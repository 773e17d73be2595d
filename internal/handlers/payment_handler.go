package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"campusBack/internal/services"
)

type PaymentHandler struct {
	Service *services.PaymentService
}

// CreateCheckout opens a provider checkout session for the student's request
// and returns the redirect URL.
func (h *PaymentHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	requestNumber := getParam(r, "request_number")
	if requestNumber == "" {
		http.Error(w, "missing request_number", http.StatusBadRequest)
		return
	}

	url, payment, err := h.Service.CreateCheckout(r.Context(), requestNumber, requestUserID(r), time.Now())
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"checkout_url": url,
		"payment":      payment.View(),
	})
}

// CreateCashPayment records the intent to pay over the counter. The cashier
// confirms it later with the official receipt.
func (h *PaymentHandler) CreateCashPayment(w http.ResponseWriter, r *http.Request) {
	requestNumber := getParam(r, "request_number")
	if requestNumber == "" {
		http.Error(w, "missing request_number", http.StatusBadRequest)
		return
	}

	payment, err := h.Service.CreateCashPayment(r.Context(), requestNumber, requestUserID(r), time.Now())
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(payment.View())
}

// ConfirmCash is the cashier action. Multipart form: or_number plus an
// optional receipt scan under the "receipt" field.
func (h *PaymentHandler) ConfirmCash(w http.ResponseWriter, r *http.Request) {
	paymentID, err := strconv.ParseInt(getParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid payment id", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	orNumber := r.FormValue("or_number")

	var receipt []byte
	if file, _, err := r.FormFile("receipt"); err == nil {
		receipt, err = io.ReadAll(file)
		file.Close()
		if err != nil {
			http.Error(w, "read receipt: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	res, err := h.Service.ConfirmCash(r.Context(), paymentID, requestUserID(r), orNumber, receipt, time.Now())
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"request_number":    res.RequestNumber,
		"request_status":    res.RequestStatus,
		"transitioned":      res.Transitioned,
		"deadline_exceeded": res.DeadlineExceeded,
	})
}

// GetHistory returns every payment attempt recorded against a request.
func (h *PaymentHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	requestNumber := getParam(r, "request_number")
	if requestNumber == "" {
		http.Error(w, "missing request_number", http.StatusBadRequest)
		return
	}

	payments, err := h.Service.History(r.Context(), requestNumber)
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	json.NewEncoder(w).Encode(payments)
}
