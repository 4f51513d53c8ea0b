package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// CookieName is the name of the chat session cookie
	CookieName = "rbb_sathi_session"
	// CookieMaxAge matches the default idle TTL of a chat session
	CookieMaxAge = 30 * time.Minute
	// SessionHeader carries the session id for clients without cookies
	SessionHeader = "X-Session-Id"
)

// SetSessionCookie sets an HTTP-only session cookie, Secure when served over TLS
func SetSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

// getSessionID reads the session id from the cookie, then the header.
// Anything that is not a UUID is ignored.
func getSessionID(r *http.Request) string {
	candidates := []string{r.Header.Get(SessionHeader)}
	if c, err := r.Cookie(CookieName); err == nil {
		candidates = append([]string{c.Value}, candidates...)
	}
	for _, sid := range candidates {
		if _, err := uuid.Parse(sid); err == nil {
			return sid
		}
	}
	return ""
}

// getOrCreateSessionID returns the caller's session id, issuing a new one
// (and its cookie) when there is none.
func getOrCreateSessionID(w http.ResponseWriter, r *http.Request) string {
	sid := getSessionID(r)
	if sid == "" {
		sid = uuid.NewString()
		SetSessionCookie(w, r, sid)
	}
	w.Header().Set(SessionHeader, sid)
	return sid
}
