package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/setlist/internal/auth"
)

// setSessionCookie issues the session cookie. Secure is set iff the
// connection itself is encrypted.
func setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int(auth.SessionMaxAge.Seconds()),
	})
}

// clearSessionCookie removes the session cookie from the client.
func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   -1,
	})
}

// isPublicPath is the fixed allow-list of paths served without a session:
// the login page, the login/logout endpoints, static assets and the favicon.
func isPublicPath(path string) bool {
	switch {
	case path == "/login":
		return true
	case strings.HasPrefix(path, "/api/login"):
		return true
	case strings.HasPrefix(path, "/api/logout"):
		return true
	case strings.HasPrefix(path, "/static/"):
		return true
	case path == "/favicon.ico":
		return true
	}
	return false
}

// sessionGate admits requests to non-public paths only with a verifiable
// session cookie; everything else is redirected to the login page with the
// original path+query carried in the next parameter. The origin guard is
// deliberately not applied here: plain GET navigation carries no Origin
// header.
func (s *Server) sessionGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(auth.SessionCookieName)
		if err != nil || !s.codec.Verify(cookie.Value, time.Now()) {
			target := "/login?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}
