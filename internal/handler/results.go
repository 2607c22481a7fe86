package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gamenight-tracker/internal/domain"
)

// ListResults returns results, optionally only those of ?event_id=
func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.ListResults(r.Context(), r.URL.Query().Get("event_id"))
	if err != nil {
		h.writeServiceError(w, err, "list results")
		return
	}
	h.writeSuccess(w, results)
}

// RecordResult handles a single game result
func (h *Handler) RecordResult(w http.ResponseWriter, r *http.Request) {
	var sub domain.ResultSubmission
	if err := h.decode(r, &sub); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.RecordResult(r.Context(), sub)
	if err != nil {
		h.writeServiceError(w, err, "record result")
		return
	}
	h.writeCreated(w, result)
}

// RecordResultBatch handles several results at once. Invalid entries are reported
// without failing the rest.
func (h *Handler) RecordResultBatch(w http.ResponseWriter, r *http.Request) {
	var batch domain.BatchResultSubmission
	if err := h.decode(r, &batch); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	outcome, err := h.service.RecordResultBatch(r.Context(), batch)
	if err != nil {
		h.writeServiceError(w, err, "record result batch")
		return
	}
	h.writeSuccess(w, outcome)
}

// GetResult returns a result by ID
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetResult(r.Context(), chi.URLParam(r, "resultID"))
	if err != nil {
		h.writeServiceError(w, err, "get result")
		return
	}
	h.writeSuccess(w, result)
}

// DeleteResult deletes a result
func (h *Handler) DeleteResult(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteResult(r.Context(), chi.URLParam(r, "resultID")); err != nil {
		h.writeServiceError(w, err, "delete result")
		return
	}
	h.writeSuccess(w, map[string]string{"status": "deleted"})
}
