package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/desertthunder/setlist/internal/auth"
	"github.com/desertthunder/setlist/internal/ratelimit"
	"github.com/desertthunder/setlist/internal/spotify"
)

// Fixed response messages for the auth endpoints.
const (
	RateLimitMessage     = "Too many login attempts. Please try again later."
	BadPasswordMessage   = "Invalid password"
	MissingSecretMessage = "Missing session secret on the server."
)

var invalidClientRe = regexp.MustCompile(`(?i)invalid_client`)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type loginRequest struct {
	Password string `json:"password"`
	Next     string `json:"next"`
}

// handleLogin runs the login state machine: origin guard, rate limit gate,
// constant-time password check, then token issuance. Failed passwords feed
// the limiter; cross-origin requests are rejected before the limiter is
// touched at all.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !IsSameOriginPost(r, RequestOrigin(r)) {
		http.Error(w, OriginErrorMessage, http.StatusForbidden)
		return
	}

	ctx := r.Context()
	key := ratelimit.ClientKey(r.RemoteAddr)
	now := time.Now()

	limited, err := s.limiter.IsLimited(ctx, key, now)
	if err != nil {
		// Fail open on a rate-limit backend outage: login stays available
		// and the outage is operator-visible in the log.
		s.logger.Warn("rate limiter unavailable, admitting login attempt", "key", key, "error", err)
		limited = false
	}
	if limited {
		http.Error(w, RateLimitMessage, http.StatusTooManyRequests)
		return
	}

	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		body = loginRequest{}
	}
	if body.Next == "" {
		body.Next = "/"
	}

	if !auth.VerifyPassword(body.Password, s.password) {
		if err := s.limiter.RecordFailure(ctx, key, now); err != nil {
			s.logger.Warn("failed to record login failure", "key", key, "error", err)
		}

		limited, err := s.limiter.IsLimited(ctx, key, now)
		if err != nil {
			s.logger.Warn("rate limiter unavailable after failure", "key", key, "error", err)
		}
		if limited {
			http.Error(w, RateLimitMessage, http.StatusTooManyRequests)
			return
		}

		http.Error(w, BadPasswordMessage, http.StatusUnauthorized)
		return
	}

	if err := s.limiter.Clear(ctx, key); err != nil {
		s.logger.Warn("failed to clear login attempts", "key", key, "error", err)
	}

	token, err := s.codec.Issue(now)
	if err != nil {
		http.Error(w, MissingSecretMessage, http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, r, token)

	redirectTo := "/"
	if strings.HasPrefix(body.Next, "/") {
		redirectTo = body.Next
	}

	writeJSON(w, http.StatusOK, map[string]string{"redirectTo": redirectTo})
}

// handleLogout clears the session cookie. Same-origin only.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !IsSameOriginPost(r, RequestOrigin(r)) {
		http.Error(w, OriginErrorMessage, http.StatusForbidden)
		return
	}

	clearSessionCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

type playlistRequest struct {
	Input string `json:"input"`
	// Style is accepted for forward compatibility and deliberately
	// ignored: the endpoint always returns canonical track data and
	// formatting stays client-side.
	Style string `json:"style"`
}

type playlistResponse struct {
	PlaylistID   string          `json:"playlistId"`
	PlaylistName string          `json:"playlistName"`
	TrackCount   int             `json:"trackCount"`
	Tracks       []spotify.Track `json:"tracks"`
}

// handlePlaylist resolves a playlist reference and returns its tracks.
// Parse failures respond before any outbound request is attempted.
func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	if !IsSameOriginPost(r, RequestOrigin(r)) {
		writeJSONError(w, http.StatusForbidden, OriginErrorMessage)
		return
	}

	var body playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		body = playlistRequest{}
	}

	id, err := spotify.ExtractPlaylistID(body.Input)
	if err != nil {
		var parseErr *spotify.ParseError
		if errors.As(err, &parseErr) {
			writeJSONError(w, http.StatusBadRequest, parseErr.Message())
			return
		}
		writeJSONError(w, http.StatusBadRequest, "Enter a Spotify playlist URL.")
		return
	}

	playlist, err := s.playlists.PublicPlaylist(r.Context(), id)
	if err != nil {
		status, message := mapPlaylistError(err)
		s.logger.Warn("playlist fetch failed", "id", id, "status", status, "error", err)
		writeJSONError(w, status, message)
		return
	}

	writeJSON(w, http.StatusOK, playlistResponse{
		PlaylistID:   playlist.ID,
		PlaylistName: playlist.Name,
		TrackCount:   len(playlist.Tracks),
		Tracks:       playlist.Tracks,
	})
}

// mapPlaylistError translates the client's structured errors into the
// closed set of user-facing statuses and messages.
func mapPlaylistError(err error) (int, string) {
	var apiErr *spotify.APIError
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError, "Failed to fetch playlist from Spotify."
	}

	switch {
	case apiErr.Status == 500 && apiErr.Message == "Missing Spotify API credentials.":
		return http.StatusInternalServerError, "Missing Spotify client credentials on the server."
	case (apiErr.Status == 400 || apiErr.Status == 401) && invalidClientRe.MatchString(apiErr.Message):
		return http.StatusBadGateway, "Spotify client credentials are invalid. Check the configured client ID and secret."
	case apiErr.Status == 404:
		return http.StatusNotFound, "Playlist not found or not publicly accessible."
	case apiErr.Status == 429:
		return http.StatusTooManyRequests, "Spotify rate limit reached. Please wait and try again."
	case apiErr.Status == 400:
		return http.StatusBadGateway, "Spotify rejected this request. Check that the playlist URL is valid and public."
	case apiErr.Status == 401 || apiErr.Status == 403:
		return http.StatusBadGateway, "Spotify authorization failed."
	default:
		return http.StatusBadGateway, "Spotify API error. Please try again."
	}
}
