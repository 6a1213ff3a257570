// Spotify public playlist client using the client-credentials grant.
//
// Spotify API response shapes based on https://developer.spotify.com/documentation/web-api/reference/
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyAPIBase  = "https://api.spotify.com/v1"

	// tokenRefreshSafety keeps a near-expiry token from being handed out:
	// a cached token is reused only while it has at least this long left.
	tokenRefreshSafety = time.Minute

	// requestsPerSecond paces playlist page requests.
	requestsPerSecond = 5
)

// Fixed diagnostics, distinct from upstream error passthrough.
const (
	msgMissingCredentials = "Missing Spotify API credentials."
	msgInvalidToken       = "Spotify token response was invalid."
	msgInvalidPlaylist    = "Spotify playlist response was invalid."
)

// APIError carries the upstream status and a diagnostic message. It is the
// only error type that crosses the client boundary with failure detail; the
// HTTP layer maps it onto user-facing statuses.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify: %s (status %d)", e.Message, e.Status)
}

// Track is a single playlist entry. Artist is a comma-joined list of
// contributing artist names, or "Unknown Artist" when none resolve.
type Track struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// Playlist is a fully-paginated public playlist.
type Playlist struct {
	ID     string
	Name   string
	Tracks []Track
}

type cachedToken struct {
	value     string
	expiresAt time.Time
}

// Client fetches public playlists. The token cache is shared across
// concurrent requests and guarded by a mutex; everything else is immutable
// after construction.
type Client struct {
	clientID     string
	clientSecret string
	tokenURL     string
	apiBase      string
	httpClient   *http.Client
	limiter      *rate.Limiter

	mu    sync.Mutex
	token *cachedToken
}

// NewClient creates a playlist client with the given client-credentials
// pair. A nil httpClient falls back to [http.DefaultClient].
func NewClient(clientID, clientSecret string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     spotifyTokenURL,
		apiBase:      spotifyAPIBase,
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// PublicPlaylist fetches a public playlist by ID, following cursor
// pagination until exhausted. Tracks are returned in arrival order.
func (c *Client) PublicPlaylist(ctx context.Context, id string) (*Playlist, error) {
	fields := "name,tracks.items(track(name,artists(name))),tracks.next"
	playlistURL := fmt.Sprintf("%s/playlists/%s?fields=%s", c.apiBase, url.PathEscape(id), url.QueryEscape(fields))

	raw, err := c.getJSON(ctx, playlistURL)
	if err != nil {
		return nil, err
	}

	name, first, err := parsePlaylist(raw)
	if err != nil {
		return nil, err
	}

	items := first.items
	next := first.next

	for next != "" {
		raw, err := c.getJSON(ctx, next)
		if err != nil {
			return nil, err
		}

		page, err := parsePage(raw)
		if err != nil {
			return nil, err
		}

		items = append(items, page.items...)
		next = page.next
	}

	tracks := make([]Track, 0, len(items))
	for _, item := range items {
		if track, ok := extractTrack(item); ok {
			tracks = append(tracks, track)
		}
	}

	return &Playlist{ID: id, Name: name, Tracks: tracks}, nil
}

// getJSON performs an authenticated GET. A 401 invalidates the cached
// token and retries exactly once with a fresh one; the bound is the loop,
// not recursion, so a second 401 surfaces verbatim.
func (c *Client) getJSON(ctx context.Context, apiURL string) (any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.accessToken(ctx)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("failed to read response: %w", readErr)
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			c.invalidateToken()
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
		}

		var decoded any
		if err := json.Unmarshal(body, &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return decoded, nil
	}

	// Unreachable: the second iteration always returns.
	return nil, &APIError{Status: http.StatusUnauthorized, Message: "unauthorized"}
}

// accessToken returns the cached token while it has more than the safety
// margin left, otherwise requests a fresh client-credentials grant.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.token != nil && now.Before(c.token.expiresAt.Add(-tokenRefreshSafety)) {
		return c.token.value, nil
	}

	if c.clientID == "" || c.clientSecret == "" {
		return "", &APIError{Status: http.StatusInternalServerError, Message: msgMissingCredentials}
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &APIError{Status: http.StatusBadGateway, Message: msgInvalidToken}
	}

	value, expiresIn, err := parseTokenResponse(decoded)
	if err != nil {
		return "", err
	}

	c.token = &cachedToken{
		value:     value,
		expiresAt: now.Add(time.Duration(expiresIn * float64(time.Second))),
	}
	return value, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
}

// errorMessage extracts upstream error detail from a response body, falling
// back to a synthesized message when the body is empty.
func errorMessage(status int, body []byte) string {
	if text := string(body); text != "" {
		return text
	}
	return fmt.Sprintf("Spotify API request failed (%d)", status)
}

// Strict response validation. Any shape deviation maps to a 502 APIError
// so malformed upstream payloads are distinguishable from transport errors.

func asRecord(v any) (map[string]any, bool) {
	rec, ok := v.(map[string]any)
	return rec, ok
}

func asNonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func parseTokenResponse(v any) (token string, expiresIn float64, err error) {
	invalid := &APIError{Status: http.StatusBadGateway, Message: msgInvalidToken}

	rec, ok := asRecord(v)
	if !ok {
		return "", 0, invalid
	}

	accessToken, ok := asNonEmptyString(rec["access_token"])
	if !ok {
		return "", 0, invalid
	}

	tokenType, ok := asNonEmptyString(rec["token_type"])
	if !ok || !strings.EqualFold(tokenType, "bearer") {
		return "", 0, invalid
	}

	expires, ok := rec["expires_in"].(float64)
	if !ok || expires <= 0 {
		return "", 0, invalid
	}

	return accessToken, expires, nil
}

type playlistPage struct {
	items []any
	next  string // empty when the cursor is null
}

func parsePage(v any) (*playlistPage, error) {
	invalid := &APIError{Status: http.StatusBadGateway, Message: msgInvalidPlaylist}

	rec, ok := asRecord(v)
	if !ok {
		return nil, invalid
	}

	items, ok := rec["items"].([]any)
	if !ok {
		return nil, invalid
	}

	page := &playlistPage{items: items}
	switch next := rec["next"].(type) {
	case nil:
	case string:
		page.next = next
	default:
		return nil, invalid
	}
	return page, nil
}

func parsePlaylist(v any) (string, *playlistPage, error) {
	invalid := &APIError{Status: http.StatusBadGateway, Message: msgInvalidPlaylist}

	rec, ok := asRecord(v)
	if !ok {
		return "", nil, invalid
	}

	name, ok := asNonEmptyString(rec["name"])
	if !ok {
		return "", nil, invalid
	}

	page, err := parsePage(rec["tracks"])
	if err != nil {
		return "", nil, err
	}
	return name, page, nil
}

// extractTrack resolves a raw playlist item into a Track. Items without a
// resolvable non-empty title are dropped silently; malformed artist entries
// are skipped rather than failing the item.
func extractTrack(item any) (Track, bool) {
	rec, ok := asRecord(item)
	if !ok {
		return Track{}, false
	}

	track, ok := asRecord(rec["track"])
	if !ok {
		return Track{}, false
	}

	title, ok := asNonEmptyString(track["name"])
	if !ok {
		return Track{}, false
	}

	var names []string
	if artists, ok := track["artists"].([]any); ok {
		for _, artist := range artists {
			artistRec, ok := asRecord(artist)
			if !ok {
				continue
			}
			if name, ok := asNonEmptyString(artistRec["name"]); ok {
				names = append(names, name)
			}
		}
	}

	artist := "Unknown Artist"
	if len(names) > 0 {
		artist = strings.Join(names, ", ")
	}

	return Track{Artist: artist, Title: title}, true
}
