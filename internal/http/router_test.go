package httpserver

import (
	"net/http"
	"net/http/httptest"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"gitea.jw6.us/james/vcardedit/internal/auth"
	"gitea.jw6.us/james/vcardedit/internal/config"
	"gitea.jw6.us/james/vcardedit/internal/editor"
	"gitea.jw6.us/james/vcardedit/internal/http/csrf"
	"gitea.jw6.us/james/vcardedit/internal/http/ratelimit"
	"gitea.jw6.us/james/vcardedit/internal/store"
)

func newTestServer(t *testing.T, uploadBurst int) *httptest.Server {
	t.Helper()
	return newTestServerWith(t, uploadBurst, 0, nil)
}

func newTestServerWith(t *testing.T, uploadBurst, maxSessions int, trustedProxies []string) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		BaseURL:           "http://localhost:8080",
		UploadLimit:       1 << 16,
		DefaultVersion:    "3.0",
		PrometheusEnabled: true,
	}
	cfg.Session.Secret = strings.Repeat("r", 32)
	cfg.Session.TTL = time.Hour

	st := store.New(store.Options{MaxSessions: maxSessions})
	editorService := editor.NewService(st, nil)
	authService := auth.NewService(auth.NewSessionManager(cfg), editorService)
	limiter := ratelimit.NewIPRateLimiter(rate.Limit(1), uploadBurst, time.Minute, trustedProxies)

	srv := httptest.NewServer(NewRouter(cfg, st, editorService, authService, limiter))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestOpsEndpoints(t *testing.T) {
	srv := newTestServer(t, 10)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestAPIRequiresCSRFToken(t *testing.T) {
	srv := newTestServer(t, 10)
	client := newClient(t)

	resp, err := client.Get(srv.URL + "/api/document")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	token := resp.Header.Get(csrf.HeaderName)
	if token == "" {
		t.Fatal("no CSRF token header on GET /api/document")
	}

	body := "BEGIN:VCARD\nFN:Jane Doe\nEND:VCARD"
	resp, err = client.Post(srv.URL+"/api/document", "text/vcard", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("POST without token status = %d, want 403", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/document", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/vcard")
	req.Header.Set(csrf.HeaderName, token)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST with token status = %d, want 200", resp.StatusCode)
	}

	resp, err = client.Get(srv.URL + "/api/document/export?version=2.1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d, want 200", resp.StatusCode)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	srv := newTestServer(t, 10)
	alice, bob := newClient(t), newClient(t)

	resp, err := alice.Get(srv.URL + "/api/document")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/document", strings.NewReader("BEGIN:VCARD\nFN:Alice\nEND:VCARD"))
	req.Header.Set(csrf.HeaderName, resp.Header.Get(csrf.HeaderName))
	if resp, err = alice.Do(req); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	resp, err = bob.Get(srv.URL + "/api/document/export?version=3.0")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second client sees a document: status %d, want 409", resp.StatusCode)
	}
}

func TestUploadRateLimited(t *testing.T) {
	srv := newTestServer(t, 1)
	client := newClient(t)

	resp, err := client.Get(srv.URL + "/api/document")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	token := resp.Header.Get(csrf.HeaderName)

	var last int
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/document", strings.NewReader("BEGIN:VCARD\nFN:A\nEND:VCARD"))
		req.Header.Set(csrf.HeaderName, token)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("status after burst = %d, want 429", last)
	}
}

func TestUploadTooLarge(t *testing.T) {
	srv := newTestServer(t, 10)
	client := newClient(t)

	resp, err := client.Get(srv.URL + "/api/document")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	big := "BEGIN:VCARD\nNOTE:" + strings.Repeat("a", 1<<16+1024) + "\nEND:VCARD"
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/document", strings.NewReader(big))
	req.Header.Set(csrf.HeaderName, resp.Header.Get(csrf.HeaderName))
	resp, err = client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", resp.StatusCode)
	}
}

func loadDocument(t *testing.T, srv *httptest.Server, client *http.Client, body string) {
	t.Helper()
	resp, err := client.Get(srv.URL + "/api/document")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/document", strings.NewReader(body))
	req.Header.Set(csrf.HeaderName, resp.Header.Get(csrf.HeaderName))
	if resp, err = client.Do(req); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load status = %d, want 200", resp.StatusCode)
	}
}

func TestReadOnlyVisitorsDoNotEvictSessions(t *testing.T) {
	srv := newTestServerWith(t, 10, 1, nil)
	editorClient := newClient(t)
	loadDocument(t, srv, editorClient, "BEGIN:VCARD\nFN:Jane Doe\nEND:VCARD")

	for i := 0; i < 5; i++ {
		for _, path := range []string{"/", "/api/document", "/export?version=3.0"} {
			resp, err := http.Get(srv.URL + path)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			for _, c := range resp.Cookies() {
				if c.Name == "vcardedit_session" {
					t.Fatalf("GET %s issued a session cookie", path)
				}
			}
		}
	}

	resp, err := editorClient.Get(srv.URL + "/api/document/export?version=3.0")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export after anonymous traffic status = %d, want 200", resp.StatusCode)
	}
}

func TestForwardedForIgnoredFromUntrustedPeer(t *testing.T) {
	srv := newTestServerWith(t, 1, 0, []string{"10.0.0.0/8"})
	client := newClient(t)

	resp, err := client.Get(srv.URL + "/api/document")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	token := resp.Header.Get(csrf.HeaderName)

	var last int
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/document", strings.NewReader("BEGIN:VCARD\nFN:A\nEND:VCARD"))
		req.Header.Set(csrf.HeaderName, token)
		req.Header.Set("X-Forwarded-For", "203.0.113."+strconv.Itoa(i+1))
		resp, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("status after burst with rotating X-Forwarded-For = %d, want 429", last)
	}
}
