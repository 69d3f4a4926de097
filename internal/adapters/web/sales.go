package web

import (
	"net/http"

	"cdj-supply/internal/app"
)

// listSales handles GET /api/sales.
func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.ListSales(r.Context(), app.ListSalesRequest{
		CustomerName: q.Get("customer_name"),
		DateFrom:     q.Get("date_from"),
		DateTo:       q.Get("date_to"),
		Page:         intQuery(r, "page"),
		Limit:        intQuery(r, "limit"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// createSale handles POST /api/sales.
func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var req app.CreateSaleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sale, err := h.svc.CreateSale(r.Context(), req, claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

// getSale handles GET /api/sales/{id}.
func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	sale, err := h.svc.GetSale(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}
