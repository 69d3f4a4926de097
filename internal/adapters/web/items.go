package web

import (
	"net/http"
	"strconv"

	"cdj-supply/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// idParam parses the {id} URL parameter as a UUID. On failure it writes a 400
// response and returns false.
func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid id", "VALIDATION_ERROR", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// intQuery returns the named query parameter as int, or 0 when absent/invalid.
func intQuery(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

// listItems handles GET /api/items.
func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.ListItems(r.Context(), app.ListItemsRequest{
		Search:   q.Get("search"),
		Category: q.Get("type"),
		Status:   q.Get("status"),
		Page:     intQuery(r, "page"),
		Limit:    intQuery(r, "limit"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// createItem handles POST /api/items.
func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req app.CreateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.svc.CreateItem(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// getItem handles GET /api/items/{id}.
func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	item, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// updateItem handles PUT /api/items/{id}.
func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req app.UpdateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.svc.UpdateItem(r.Context(), id, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// deleteItem handles DELETE /api/items/{id}.
func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteItem(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
