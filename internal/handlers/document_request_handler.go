package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"campusBack/internal/models"
	"campusBack/internal/services"
)

type DocumentRequestHandler struct {
	Service *services.DocumentRequestService
}

// CreateRequest opens a new document request for the authenticated student.
func (h *DocumentRequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var input models.CreateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	req, err := h.Service.CreateRequest(r.Context(), requestUserID(r), input, time.Now())
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(req)
}

// GetStatus is the public lookup by request number. No auth, no student data
// beyond what the slip already shows.
func (h *DocumentRequestHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	requestNumber := getParam(r, "request_number")
	if requestNumber == "" {
		http.Error(w, "missing request_number", http.StatusBadRequest)
		return
	}

	view, err := h.Service.GetStatus(r.Context(), requestNumber)
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	json.NewEncoder(w).Encode(view)
}

func (h *DocumentRequestHandler) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.ListByStudent(r.Context(), requestUserID(r))
	if err != nil {
		http.Error(w, "Failed to fetch", http.StatusInternalServerError)
		return
	}
	if requests == nil {
		requests = []models.DocumentRequest{}
	}
	json.NewEncoder(w).Encode(requests)
}

func (h *DocumentRequestHandler) GetMyRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Service.GetOwned(r.Context(), getParam(r, "request_number"), requestUserID(r))
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	json.NewEncoder(w).Encode(req)
}

// CancelMyRequest lets the owning student abandon a request that has not been
// released yet.
func (h *DocumentRequestHandler) CancelMyRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Service.CancelOwned(r.Context(), getParam(r, "request_number"), requestUserID(r), time.Now())
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	json.NewEncoder(w).Encode(req)
}

// Staff endpoints below.

func (h *DocumentRequestHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.ListAll(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch", http.StatusInternalServerError)
		return
	}
	if requests == nil {
		requests = []models.DocumentRequest{}
	}
	json.NewEncoder(w).Encode(requests)
}

func (h *DocumentRequestHandler) StartProcessing(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.StartProcessing)
}

func (h *DocumentRequestHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.MarkReady)
}

func (h *DocumentRequestHandler) Release(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Release)
}

func (h *DocumentRequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Cancel)
}

func (h *DocumentRequestHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, requestNumber string, now time.Time) (models.DocumentRequest, error)) {
	requestNumber := getParam(r, "request_number")
	if requestNumber == "" {
		http.Error(w, "missing request_number", http.StatusBadRequest)
		return
	}
	req, err := op(r.Context(), requestNumber, time.Now())
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	json.NewEncoder(w).Encode(req)
}
