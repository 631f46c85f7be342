package csrf

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"gitea.jw6.us/james/vcardedit/internal/config"
)

func newHandler() http.Handler {
	cfg := &config.Config{BaseURL: "http://localhost:8080"}
	return Middleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(TokenFromContext(r.Context())))
	}))
}

func TestMiddlewareIssuesToken(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != csrfCookieName {
		t.Fatalf("cookies = %v", cookies)
	}
	if rec.Body.String() != cookies[0].Value {
		t.Errorf("context token %q does not match cookie %q", rec.Body.String(), cookies[0].Value)
	}
}

func TestMiddlewareValidatesMutations(t *testing.T) {
	const token = "known-token"
	cookie := &http.Cookie{Name: csrfCookieName, Value: token}

	tests := []struct {
		name       string
		build      func() *http.Request
		wantStatus int
	}{
		{
			name: "missing token",
			build: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/load", strings.NewReader("FN:A"))
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "header token",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/api/document", strings.NewReader("FN:A"))
				r.Header.Set(HeaderName, token)
				return r
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "form token",
			build: func() *http.Request {
				form := url.Values{"_csrf": {token}, "key": {"FN"}}
				r := httptest.NewRequest(http.MethodPost, "/entities/0/properties", strings.NewReader(form.Encode()))
				r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				return r
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "wrong token",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPut, "/api/document/entities/0/properties", nil)
				r.Header.Set(HeaderName, "other")
				return r
			},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.build()
			req.AddCookie(cookie)
			rec := httptest.NewRecorder()
			newHandler().ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
