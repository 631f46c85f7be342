package ui

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"gitea.jw6.us/james/vcardedit/internal/auth"
	"gitea.jw6.us/james/vcardedit/internal/http/errors"
	"gitea.jw6.us/james/vcardedit/internal/vcard"
)

// Editor displays the upload form and, once a document is loaded, one contact
// per page.
func (h *Handler) Editor(w http.ResponseWriter, r *http.Request) {
	sessionID := auth.SessionIDFromContext(r.Context())
	snap, err := h.editor.Snapshot(r.Context(), sessionID)
	if err != nil {
		errors.InternalError(w, r, err, "failed to load editing session")
		return
	}

	versions := make([]string, 0, len(vcard.Versions))
	for _, v := range vcard.Versions {
		versions = append(versions, v.String())
	}

	data := map[string]any{
		"Title":          "Editor",
		"Loaded":         snap.Loaded,
		"Versions":       versions,
		"DefaultVersion": h.cfg.DefaultVersion,
		"DocumentValid":  snap.Valid,
	}
	if snap.Loaded {
		total := len(snap.Entities)
		page := parsePage(r, total)
		data["Entity"] = snap.Entities[page-1]
		data["Page"] = page
		data["TotalPages"] = total
		data["Pages"] = pageWindow(page, total)
		data["PrevPage"] = max(1, page-1)
		data["NextPage"] = min(total, page+1)
	}

	h.render(w, r, "editor.html", h.withFlash(r, data))
}

// Load replaces the session's document with an uploaded file or pasted text.
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.cfg.UploadLimit); err != nil && err != http.ErrNotMultipart {
		h.redirect(w, r, "/", map[string]string{"error": "invalid file upload"})
		return
	}

	content, err := readUpload(r)
	if err != nil {
		h.redirect(w, r, "/", map[string]string{"error": "failed to read file"})
		return
	}

	sessionID := auth.SessionIDFromContext(r.Context())
	res, err := h.editor.Load(r.Context(), sessionID, content)
	if err != nil {
		if statusFor(err) == 0 {
			errors.LogError(r, "document load failed", err)
		}
		h.redirect(w, r, "/", map[string]string{"error": flashFor(err)})
		return
	}

	params := map[string]string{"status": fmt.Sprintf("loaded %d contact(s)", res.Entities)}
	if len(res.Rejected) > 0 {
		msgs := make([]string, 0, len(res.Rejected))
		for _, rej := range res.Rejected {
			msgs = append(msgs, rej.Error())
		}
		params["error"] = strings.Join(msgs, "; ")
	}
	h.redirect(w, r, "/", params)
}

// readUpload returns the uploaded file if one was sent, otherwise the pasted text.
func readUpload(r *http.Request) (string, error) {
	file, _, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		contentBytes, err := io.ReadAll(file)
		if err != nil {
			return "", err
		}
		if len(contentBytes) > 0 {
			return string(contentBytes), nil
		}
	}
	return r.FormValue("content"), nil
}

// UpdateProperty stores one edited property value.
func (h *Handler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		errors.BadRequestError(w, r, err, "invalid entity index")
		return
	}
	if err := r.ParseForm(); err != nil {
		errors.BadRequestError(w, r, err, "invalid form")
		return
	}
	key := strings.TrimSpace(r.FormValue("key"))
	if key == "" {
		h.redirect(w, r, "/", map[string]string{"page": strconv.Itoa(index + 1), "error": "key is required"})
		return
	}

	sessionID := auth.SessionIDFromContext(r.Context())
	valid, err := h.editor.SetProperty(r.Context(), sessionID, index, key, r.FormValue("value"))
	if err != nil {
		if statusFor(err) == 0 {
			errors.InternalError(w, r, err, "failed to update property")
			return
		}
		h.redirect(w, r, "/", map[string]string{"page": strconv.Itoa(index + 1), "error": flashFor(err)})
		return
	}

	errors.LogInfo(r, "property updated", zap.Int("entity", index), zap.String("key", key), zap.Bool("valid", valid))
	if !valid {
		h.redirect(w, r, "/", map[string]string{"page": strconv.Itoa(index + 1), "error": "invalid value for " + key})
		return
	}
	h.redirect(w, r, "/", map[string]string{"page": strconv.Itoa(index + 1)})
}

// Export sends the document as a vCard download for the requested version.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	version := r.URL.Query().Get("version")
	if version == "" {
		version = h.cfg.DefaultVersion
	}

	sessionID := auth.SessionIDFromContext(r.Context())
	out, err := h.editor.Export(r.Context(), sessionID, version)
	if err != nil {
		if statusFor(err) == 0 {
			errors.InternalError(w, r, err, "export failed")
			return
		}
		h.redirect(w, r, "/", map[string]string{"error": flashFor(err)})
		return
	}
	writeDownload(w, out.Filename, out.ContentType, out.Body)
}

func writeDownload(w http.ResponseWriter, filename, contentType, body string) {
	w.Header().Set("Content-Type", contentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

// Reset drops the current session; the next request starts a fresh one.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.editor.EndSession(r.Context(), auth.SessionIDFromContext(r.Context())); err != nil && statusFor(err) == 0 {
		errors.LogError(r, "failed to end session", err)
	}
	h.authService.ClearSession(w)
	h.redirect(w, r, "/", map[string]string{"status": "started over"})
}
