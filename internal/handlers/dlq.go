package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/telhawk-systems/telhawk-csv/internal/dlq"
)

// ListDLQ handles GET /api/v1/dlq?limit=N.
func (h *HeaderHandler) ListDLQ(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := h.processor.DLQ().List(r.Context(), limit)
	if err != nil {
		writeDLQError(w, err)
		return
	}
	if entries == nil {
		entries = []dlq.FailedHeader{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"stats":   h.processor.DLQ().Stats(),
	})
}

// DeleteDLQ handles DELETE /api/v1/dlq/{id}.
func (h *HeaderHandler) DeleteDLQ(w http.ResponseWriter, r *http.Request) {
	if err := h.processor.DLQ().Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDLQError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PurgeDLQ handles DELETE /api/v1/dlq.
func (h *HeaderHandler) PurgeDLQ(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.processor.DLQ().Purge(r.Context())
	if err != nil {
		writeDLQError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func writeDLQError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dlq.ErrDisabled):
		writeError(w, http.StatusNotFound, "dlq_disabled", err.Error())
	case errors.Is(err, dlq.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeError(w, http.StatusBadRequest, "dlq_error", err.Error())
	}
}
