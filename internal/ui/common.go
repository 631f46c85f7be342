package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"gitea.jw6.us/james/vcardedit/internal/http/csrf"
	"gitea.jw6.us/james/vcardedit/internal/http/errors"
)

// pageItem is one entry of the pagination bar.
type pageItem struct {
	Number   int
	Active   bool
	Ellipsis bool
}

// pageWindow lays out the pagination bar: the first and last page, the pages
// within two of the current one, and an ellipsis for each gap.
func pageWindow(current, total int) []pageItem {
	start := max(1, current-2)
	end := min(total, current+2)

	var items []pageItem
	for i := 1; i <= total; i++ {
		switch {
		case i == 1 || i == total || (i >= start && i <= end):
			items = append(items, pageItem{Number: i, Active: i == current})
		case i == start-1 || i == end+1:
			items = append(items, pageItem{Ellipsis: true})
		}
	}
	return items
}

// parsePage reads the 1-based page query parameter, clamped to [1, total].
func parsePage(r *http.Request, total int) int {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if total > 0 && page > total {
		page = total
	}
	return page
}

// withFlash adds flash messages and CSRF token to template data.
func (h *Handler) withFlash(r *http.Request, data map[string]any) map[string]any {
	q := r.URL.Query()
	if status := q.Get("status"); status != "" {
		data["FlashMessage"] = status
	}
	if err := q.Get("error"); err != "" {
		data["FlashError"] = err
	}
	if csrfToken := csrf.TokenFromContext(r.Context()); csrfToken != "" {
		data["CSRFToken"] = csrfToken
	}
	return data
}

// redirect redirects to a path with query parameters.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, path string, params map[string]string) {
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	location := path
	if encoded := q.Encode(); encoded != "" {
		location += "?" + encoded
	}
	http.Redirect(w, r, location, http.StatusFound)
}

// render executes a template and writes the response.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	tmpl, ok := h.templates[name]
	if !ok {
		errors.InternalError(w, r, fmt.Errorf("template not found"), fmt.Sprintf("template %q not found", name))
		return
	}

	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		errors.InternalError(w, r, err, fmt.Sprintf("template render error for %q", name))
	}
}

// LimitBody caps request bodies at the configured upload limit. It must run
// before anything reads the body, including the CSRF check.
func (h *Handler) LimitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.UploadLimit)
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
