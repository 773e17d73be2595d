package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"campusBack/internal/models"
	"campusBack/internal/services"
)

type NotificationHandler struct {
	Service *services.NotificationService
}

// RegisterDeviceToken stores an FCM registration token for push delivery.
func (h *NotificationHandler) RegisterDeviceToken(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || strings.TrimSpace(input.Token) == "" {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	if err := h.Service.RegisterDeviceToken(r.Context(), requestUserID(r), input.Token); err != nil {
		if isForeignKeyConstraintError(err) {
			http.Error(w, "unknown user", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to save token", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) GetMyNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.Service.ListByUser(r.Context(), requestUserID(r))
	if err != nil {
		http.Error(w, "Failed to fetch", http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	json.NewEncoder(w).Encode(notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(getParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid notification id", http.StatusBadRequest)
		return
	}
	if err := h.Service.MarkRead(r.Context(), id, requestUserID(r)); err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
