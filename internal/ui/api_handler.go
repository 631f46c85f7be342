package ui

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gitea.jw6.us/james/vcardedit/internal/auth"
	"gitea.jw6.us/james/vcardedit/internal/http/csrf"
	"gitea.jw6.us/james/vcardedit/internal/http/errors"
)

type apiError struct {
	Error string `json:"error"`
}

type loadResponse struct {
	Generation uint64   `json:"generation"`
	Entities   int      `json:"entities"`
	Rejected   []string `json:"rejected"`
}

type propertyRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type propertyResponse struct {
	Valid bool `json:"valid"`
}

// writeAPIError answers with the status mapped from err, or 500.
func writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == 0 {
		errors.LogError(r, "api request failed", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "internal server error"})
		return
	}
	writeJSON(w, status, apiError{Error: err.Error()})
}

// LoadDocumentJSON loads the raw vCard request body into the session.
func (h *Handler) LoadDocumentJSON(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}

	res, err := h.editor.Load(r.Context(), auth.SessionIDFromContext(r.Context()), string(body))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}

	resp := loadResponse{Generation: res.Generation, Entities: res.Entities, Rejected: []string{}}
	for _, rej := range res.Rejected {
		resp.Rejected = append(resp.Rejected, rej.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetDocumentJSON returns the session's document with validation results. The
// CSRF token for subsequent mutations is returned in a response header.
func (h *Handler) GetDocumentJSON(w http.ResponseWriter, r *http.Request) {
	snap, err := h.editor.Snapshot(r.Context(), auth.SessionIDFromContext(r.Context()))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	if token := csrf.TokenFromContext(r.Context()); token != "" {
		w.Header().Set(csrf.HeaderName, token)
	}
	writeJSON(w, http.StatusOK, snap)
}

// SetPropertyJSON edits one property of one entity.
func (h *Handler) SetPropertyJSON(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid entity index"})
		return
	}
	var req propertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "body must be a JSON object with a key"})
		return
	}

	valid, err := h.editor.SetProperty(r.Context(), auth.SessionIDFromContext(r.Context()), index, req.Key, req.Value)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, propertyResponse{Valid: valid})
}

// ExportDocument returns the document as vCard text for ?version=.
func (h *Handler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	version := r.URL.Query().Get("version")
	if version == "" {
		version = h.cfg.DefaultVersion
	}
	out, err := h.editor.Export(r.Context(), auth.SessionIDFromContext(r.Context()), version)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeDownload(w, out.Filename, out.ContentType, out.Body)
}
