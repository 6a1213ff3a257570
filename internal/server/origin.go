package server

import (
	"net/http"
	"net/url"
)

// OriginErrorMessage is the fixed response body for cross-origin mutations.
const OriginErrorMessage = "Invalid request origin."

// RequestOrigin derives the canonical origin (scheme://host) the request
// was served on.
func RequestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// IsSameOriginPost reports whether a mutating request originates from
// expectedOrigin. The Origin header wins when present and must match
// exactly; otherwise the Referer's origin is compared; with neither header
// the request is rejected.
//
// Every mutating endpoint calls this before any other work, so
// cross-origin traffic never touches rate-limit state.
func IsSameOriginPost(r *http.Request, expectedOrigin string) bool {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin == expectedOrigin
	}

	if referer := r.Header.Get("Referer"); referer != "" {
		u, err := url.Parse(referer)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		return u.Scheme+"://"+u.Host == expectedOrigin
	}

	return false
}
