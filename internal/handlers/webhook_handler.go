package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"campusBack/internal/pay"
	"campusBack/internal/services"
)

// WebhookHandler is the provider callback endpoint. Acknowledgement contract:
// 200 once the event is durably recorded, even if resolving it failed (the
// retry sweep owns it from there); 500 only when the record itself could not
// be written, so the provider redelivers.
type WebhookHandler struct {
	Service       *services.WebhookService
	WebhookSecret string
}

const maxWebhookBody = 1 << 20

func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if h.WebhookSecret != "" {
		signature := r.Header.Get("Paymongo-Signature")
		if signature == "" {
			signature = r.Header.Get("X-Signature")
		}
		if !pay.VerifyWebhookSignature(signature, body, h.WebhookSecret) {
			http.Error(w, "invalid webhook signature", http.StatusUnauthorized)
			return
		}
	}

	ev, err := pay.ParseWebhook(bytes.NewReader(body))
	if err != nil {
		http.Error(w, "parse webhook: "+err.Error(), http.StatusBadRequest)
		return
	}
	if ev.ID == "" {
		http.Error(w, "missing event id", http.StatusBadRequest)
		return
	}

	persisted, err := h.Service.Ingest(r.Context(), ev, time.Now())
	if !persisted {
		http.Error(w, "event not recorded: "+err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{
		"status":   "ok",
		"event_id": ev.ID,
	})
}
