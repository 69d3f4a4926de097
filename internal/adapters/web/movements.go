package web

import (
	"net/http"

	"cdj-supply/internal/app"

	"github.com/google/uuid"
)

// listMovements handles GET /api/stock-movements.
func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	var itemID *uuid.UUID
	if raw := r.URL.Query().Get("item_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, "invalid item_id", "VALIDATION_ERROR", http.StatusBadRequest)
			return
		}
		itemID = &id
	}

	result, err := h.svc.ListMovements(r.Context(), itemID, intQuery(r, "limit"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// createMovement handles POST /api/stock-movements.
func (h *Handler) createMovement(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var req app.CreateMovementRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	movement, err := h.svc.CreateMovement(r.Context(), req, claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, movement)
}
