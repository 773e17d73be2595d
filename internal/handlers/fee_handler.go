package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"campusBack/internal/models"
	"campusBack/internal/services"
)

type FeeHandler struct {
	Service *services.FeeService
}

func (h *FeeHandler) CreateFee(w http.ResponseWriter, r *http.Request) {
	var fee models.FeeSchedule
	if err := json.NewDecoder(r.Body).Decode(&fee); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	newFee, err := h.Service.CreateFee(r.Context(), fee)
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(newFee)
}

func (h *FeeHandler) GetFees(w http.ResponseWriter, r *http.Request) {
	fees, err := h.Service.GetFees(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(fees)
}

func (h *FeeHandler) GetFeeByID(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(getParam(r, "id"))
	fee, err := h.Service.GetFeeByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Fee not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(fee)
}

func (h *FeeHandler) UpdateFee(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(getParam(r, "id"))
	var fee models.FeeSchedule
	if err := json.NewDecoder(r.Body).Decode(&fee); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	fee.ID = id
	updated, err := h.Service.UpdateFee(r.Context(), fee)
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	json.NewEncoder(w).Encode(updated)
}

func (h *FeeHandler) DeleteFee(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(getParam(r, "id"))
	if err := h.Service.DeleteFee(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
