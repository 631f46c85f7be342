package auth

import (
	"crypto/sha256"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/securecookie"

	"gitea.jw6.us/james/vcardedit/internal/config"
)

const cookieName = "vcardedit_session"

// SessionManager signs and reads the editing-session cookie.
type SessionManager struct {
	codec  *securecookie.SecureCookie
	maxAge time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionManager(cfg *config.Config) *SessionManager {
	hash := sha256.Sum256([]byte(cfg.Session.Secret))
	hashKey := hash[:]

	// Derive an AES-256 sized block key to avoid invalid key length errors.
	blockKey := hash[:]
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(cfg.Session.TTL.Seconds()))
	sc.SetSerializer(securecookie.JSONEncoder{})

	secure := true
	if base, err := url.Parse(cfg.BaseURL); err == nil && base.Scheme != "https" {
		secure = false
	}

	return &SessionManager{
		codec:  sc,
		maxAge: cfg.Session.TTL,
		secure: secure,
		now:    time.Now,
	}
}

type cookieValue struct {
	SessionID string `json:"sid"`
	Expires   int64  `json:"exp"`
}

// Issue writes the session cookie for sessionID.
func (m *SessionManager) Issue(w http.ResponseWriter, sessionID string) error {
	expires := m.now().Add(m.maxAge)
	encoded, err := m.codec.Encode(cookieName, cookieValue{SessionID: sessionID, Expires: expires.Unix()})
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear removes the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:    cookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		Secure:  m.secure,
	})
}

// CurrentSessionID extracts the session ID from the request cookie if present
// and not expired.
func (m *SessionManager) CurrentSessionID(r *http.Request) (string, bool) {
	value, ok := m.current(r)
	return value.SessionID, ok
}

// current decodes the request cookie. ok is false when the cookie is missing,
// forged or expired.
func (m *SessionManager) current(r *http.Request) (value cookieValue, ok bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return cookieValue{}, false
	}
	if err := m.codec.Decode(cookieName, c.Value, &value); err != nil {
		return cookieValue{}, false
	}
	if value.SessionID == "" || !m.now().Before(time.Unix(value.Expires, 0)) {
		return cookieValue{}, false
	}
	return value, true
}

// stale reports whether the cookie has used up half of its lifetime and
// should be reissued.
func (m *SessionManager) stale(value cookieValue) bool {
	return time.Unix(value.Expires, 0).Sub(m.now()) < m.maxAge/2
}
