package auth

import (
	"context"
	"net/http"

	"gitea.jw6.us/james/vcardedit/internal/http/errors"
)

// SessionProvider resolves or creates editing sessions.
type SessionProvider interface {
	// SessionExists reports whether id names a live session.
	SessionExists(ctx context.Context, id string) (bool, error)
	EnsureSession(ctx context.Context, id string) (string, bool, error)
}

// Service binds editing sessions to browser cookies.
type Service struct {
	sessions *SessionManager
	provider SessionProvider
}

func NewService(sessions *SessionManager, provider SessionProvider) *Service {
	return &Service{sessions: sessions, provider: provider}
}

// LoadSession attaches the caller's editing session to the request context
// when the cookie names a live one. It never creates a session; handlers see
// an empty session ID for new visitors.
func (s *Service) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value, ok := s.sessions.current(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		exists, err := s.provider.SessionExists(r.Context(), value.SessionID)
		if err != nil {
			errors.InternalError(w, r, err, "failed to look up editing session")
			return
		}
		if !exists {
			next.ServeHTTP(w, r)
			return
		}
		if !s.refresh(w, r, value) {
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), value.SessionID)))
	})
}

// RequireSession attaches the caller's editing session to the request
// context, starting a new one when the cookie is missing, invalid or names a
// session that has expired. Routes using it should be rate limited.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value, _ := s.sessions.current(r)

		sessionID, created, err := s.provider.EnsureSession(r.Context(), value.SessionID)
		if err != nil {
			errors.InternalError(w, r, err, "failed to start editing session")
			return
		}
		if created {
			if err := s.sessions.Issue(w, sessionID); err != nil {
				errors.InternalError(w, r, err, "failed to issue session cookie")
				return
			}
		} else if !s.refresh(w, r, value) {
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sessionID)))
	})
}

// refresh reissues the cookie once half of its lifetime has passed, keeping
// it in step with the store's sliding expiry.
func (s *Service) refresh(w http.ResponseWriter, r *http.Request, value cookieValue) bool {
	if !s.sessions.stale(value) {
		return true
	}
	if err := s.sessions.Issue(w, value.SessionID); err != nil {
		errors.InternalError(w, r, err, "failed to refresh session cookie")
		return false
	}
	return true
}

// ClearSession drops the session cookie; the next request starts afresh.
func (s *Service) ClearSession(w http.ResponseWriter) {
	s.sessions.Clear(w)
}
