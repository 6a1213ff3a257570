package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// testServer wires a fake token endpoint and playlist API into one server.
type testServer struct {
	*httptest.Server
	tokenRequests atomic.Int64
	apiRequests   atomic.Int64

	tokenHandler http.HandlerFunc
	apiHandler   http.HandlerFunc
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{}
	ts.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token_1",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		ts.tokenRequests.Add(1)
		ts.tokenHandler(w, r)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		ts.apiRequests.Add(1)
		ts.apiHandler(w, r)
	})

	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newTestClient(ts *testServer) *Client {
	c := NewClient("test_client_id", "test_client_secret", nil)
	c.tokenURL = ts.URL + "/api/token"
	c.apiBase = ts.URL
	return c
}

func playlistBody(name string, next *string, titles ...string) map[string]any {
	items := make([]any, 0, len(titles))
	for _, title := range titles {
		items = append(items, map[string]any{
			"track": map[string]any{
				"name":    title,
				"artists": []any{map[string]any{"name": "Artist"}},
			},
		})
	}

	var nextValue any
	if next != nil {
		nextValue = *next
	}

	return map[string]any{
		"name":   name,
		"tracks": map[string]any{"items": items, "next": nextValue},
	}
}

func TestClient(t *testing.T) {
	ctx := context.Background()

	t.Run("Fetches Single Page Playlist", func(t *testing.T) {
		ts := newTestServer(t)
		ts.apiHandler = func(w http.ResponseWriter, r *http.Request) {
			if auth := r.Header.Get("Authorization"); auth != "Bearer token_1" {
				t.Errorf("expected bearer header, got %q", auth)
			}
			json.NewEncoder(w).Encode(playlistBody("Mix", nil, "Song A", "Song B"))
		}

		playlist, err := newTestClient(ts).PublicPlaylist(ctx, "abc123ABC456def7")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if playlist.Name != "Mix" {
			t.Errorf("expected playlist name Mix, got %s", playlist.Name)
		}
		if len(playlist.Tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(playlist.Tracks))
		}
		if playlist.Tracks[0] != (Track{Artist: "Artist", Title: "Song A"}) {
			t.Errorf("unexpected first track: %+v", playlist.Tracks[0])
		}
	})

	t.Run("Token Caching", func(t *testing.T) {
		ts := newTestServer(t)
		ts.apiHandler = func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(playlistBody("Mix", nil, "Song"))
		}

		client := newTestClient(ts)
		for i := 0; i < 3; i++ {
			if _, err := client.PublicPlaylist(ctx, "abc123ABC456def7"); err != nil {
				t.Fatalf("fetch %d failed: %v", i, err)
			}
		}

		if got := ts.tokenRequests.Load(); got != 1 {
			t.Errorf("expected a single token request across fetches, got %d", got)
		}
	})

	t.Run("Near Expiry Token Is Refreshed", func(t *testing.T) {
		ts := newTestServer(t)
		ts.apiHandler = func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(playlistBody("Mix", nil, "Song"))
		}

		client := newTestClient(ts)
		if _, err := client.PublicPlaylist(ctx, "abc123ABC456def7"); err != nil {
			t.Fatalf("first fetch failed: %v", err)
		}

		// Push the cached token inside the safety margin.
		client.mu.Lock()
		client.token.expiresAt = time.Now().Add(30 * time.Second)
		client.mu.Unlock()

		if _, err := client.PublicPlaylist(ctx, "abc123ABC456def7"); err != nil {
			t.Fatalf("second fetch failed: %v", err)
		}

		if got := ts.tokenRequests.Load(); got != 2 {
			t.Errorf("expected refresh inside safety margin, got %d token requests", got)
		}
	})

	t.Run("Missing Credentials", func(t *testing.T) {
		ts := newTestServer(t)
		client := NewClient("", "", nil)
		client.tokenURL = ts.URL + "/api/token"
		client.apiBase = ts.URL

		_, err := client.PublicPlaylist(ctx, "abc123ABC456def7")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Status != 500 || apiErr.Message != "Missing Spotify API credentials." {
			t.Errorf("unexpected error: %+v", apiErr)
		}
		if ts.tokenRequests.Load() != 0 {
			t.Error("no token request should be made without credentials")
		}
	})

	t.Run("Invalid Token Responses", func(t *testing.T) {
		cases := []struct {
			name string
			body string
		}{
			{"not an object", `[]`},
			{"empty access token", `{"access_token":"","token_type":"bearer","expires_in":3600}`},
			{"wrong token type", `{"access_token":"tok","token_type":"mac","expires_in":3600}`},
			{"missing expires_in", `{"access_token":"tok","token_type":"bearer"}`},
			{"negative expires_in", `{"access_token":"tok","token_type":"bearer","expires_in":-5}`},
			{"not json", `nonsense`},
		}

		for _, tt := range cases {
			t.Run(tt.name, func(t *testing.T) {
				ts := newTestServer(t)
				ts.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
					fmt.Fprint(w, tt.body)
				}

				_, err := newTestClient(ts).PublicPlaylist(ctx, "abc123ABC456def7")

				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected APIError, got %v", err)
				}
				if apiErr.Status != 502 || apiErr.Message != "Spotify token response was invalid." {
					t.Errorf("unexpected error: %+v", apiErr)
				}
			})
		}
	})

	t.Run("Token Endpoint Failure Passthrough", func(t *testing.T) {
		ts := newTestServer(t)
		ts.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_client"}`)
		}

		_, err := newTestClient(ts).PublicPlaylist(ctx, "abc123ABC456def7")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Status != 400 || !strings.Contains(apiErr.Message, "invalid_client") {
			t.Errorf("unexpected error: %+v", apiErr)
		}
	})

	t.Run("Retries Once On Unauthorized", func(t *testing.T) {
		ts := newTestServer(t)
		ts.apiHandler = func(w http.ResponseWriter, r *http.Request) {
			if ts.apiRequests.Load() == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(playlistBody("Mix", nil, "Song"))
		}

		playlist, err := newTestClient(ts).PublicPlaylist(ctx, "abc123ABC456def7")
		if err != nil {
			t.Fatalf("expected retry to succeed, got %v", err)
		}

		if playlist.Name != "Mix" {
			t.Errorf("expected playlist name Mix, got %s", playlist.Name)
		}
		if got := ts.apiRequests.Load(); got != 2 {
			t.Errorf("expected exactly one retry (2 API requests), got %d", got)
		}
		if got := ts.tokenRequests.Load(); got != 2 {
			t.Errorf("expected a fresh token for the retry, got %d token requests", got)
		}
	})

	t.Run("Second Unauthorized Surfaces Verbatim", func(t *testing.T) {
		ts := newTestServer(t)
		ts.apiHandler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, "token revoked")
		}

		_, err := newTestClient(ts).PublicPlaylist(ctx, "abc123ABC456def7")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Status != 401 || apiErr.Message != "token revoked" {
			t.Errorf("unexpected error: %+v", apiErr)
		}
		if got := ts.apiRequests.Load(); got != 2 {
			t.Errorf("expected no second retry (2 API requests), got %d", got)
		}
	})

	t.Run("Upstream Failure With Empty Body", func(t *testing.T) {
		ts := newTestServer(t)
		ts.apiHandler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}

		_, err := newTestClient(ts).PublicPlaylist(ctx, "abc123ABC456def7")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Status != 404 || apiErr.Message != "Spotify API request failed (404)" {
			t.Errorf("unexpected error: %+v", apiErr)
		}
	})

	t.Run("Pagination Concatenates In Order", func(t *testing.T) {
		ts := newTestServer(t)
		ts.apiHandler = func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/page2" {
				json.NewEncoder(w).Encode(map[string]any{
					"items": playlistBody("", nil, "Song C")["tracks"].(map[string]any)["items"],
					"next":  nil,
				})
				return
			}
			next := ts.URL + "/page2"
			json.NewEncoder(w).Encode(playlistBody("Mix", &next, "Song A", "Song B"))
		}

		playlist, err := newTestClient(ts).PublicPlaylist(ctx, "abc123ABC456def7")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var titles []string
		for _, track := range playlist.Tracks {
			titles = append(titles, track.Title)
		}
		want := []string{"Song A", "Song B", "Song C"}
		if len(titles) != len(want) {
			t.Fatalf("expected %d tracks, got %d", len(want), len(titles))
		}
		for i := range want {
			if titles[i] != want[i] {
				t.Errorf("track %d = %q, want %q", i, titles[i], want[i])
			}
		}
	})

	t.Run("Failed Later Page Surfaces Error", func(t *testing.T) {
		ts := newTestServer(t)
		ts.apiHandler = func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/page2" {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, "upstream exploded")
				return
			}
			next := ts.URL + "/page2"
			json.NewEncoder(w).Encode(playlistBody("Mix", &next, "Song A"))
		}

		_, err := newTestClient(ts).PublicPlaylist(ctx, "abc123ABC456def7")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError instead of a partial result, got %v", err)
		}
		if apiErr.Status != 500 || apiErr.Message != "upstream exploded" {
			t.Errorf("unexpected error: %+v", apiErr)
		}
	})

	t.Run("Invalid Playlist Responses", func(t *testing.T) {
		cases := []struct {
			name string
			body string
		}{
			{"null payload", `null`},
			{"not an object", `[1,2]`},
			{"empty name", `{"name":"","tracks":{"items":[],"next":null}}`},
			{"missing tracks", `{"name":"Mix"}`},
			{"items not array", `{"name":"Mix","tracks":{"items":{},"next":null}}`},
			{"next not string", `{"name":"Mix","tracks":{"items":[],"next":42}}`},
		}

		for _, tt := range cases {
			t.Run(tt.name, func(t *testing.T) {
				ts := newTestServer(t)
				ts.apiHandler = func(w http.ResponseWriter, r *http.Request) {
					fmt.Fprint(w, tt.body)
				}

				_, err := newTestClient(ts).PublicPlaylist(ctx, "abc123ABC456def7")

				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected APIError, got %v", err)
				}
				if apiErr.Status != 502 || apiErr.Message != "Spotify playlist response was invalid." {
					t.Errorf("unexpected error: %+v", apiErr)
				}
			})
		}
	})
}

func TestExtractTrack(t *testing.T) {
	t.Run("Joins Artists", func(t *testing.T) {
		item := map[string]any{
			"track": map[string]any{
				"name": "Duet",
				"artists": []any{
					map[string]any{"name": "First"},
					map[string]any{"name": "Second"},
				},
			},
		}

		track, ok := extractTrack(item)
		if !ok {
			t.Fatal("expected track to resolve")
		}
		if track.Artist != "First, Second" {
			t.Errorf("expected joined artists, got %q", track.Artist)
		}
	})

	t.Run("Unknown Artist Fallback", func(t *testing.T) {
		item := map[string]any{
			"track": map[string]any{"name": "Solo", "artists": []any{}},
		}

		track, ok := extractTrack(item)
		if !ok {
			t.Fatal("expected track to resolve")
		}
		if track.Artist != "Unknown Artist" {
			t.Errorf("expected Unknown Artist fallback, got %q", track.Artist)
		}
	})

	t.Run("Skips Malformed Artist Entries", func(t *testing.T) {
		item := map[string]any{
			"track": map[string]any{
				"name": "Messy",
				"artists": []any{
					"not an object",
					map[string]any{"name": ""},
					map[string]any{"name": "Kept"},
				},
			},
		}

		track, ok := extractTrack(item)
		if !ok {
			t.Fatal("expected track to resolve")
		}
		if track.Artist != "Kept" {
			t.Errorf("expected only well-formed artists, got %q", track.Artist)
		}
	})

	t.Run("Drops Items Without Title", func(t *testing.T) {
		cases := []struct {
			name string
			item any
		}{
			{"item not object", "nope"},
			{"null track", map[string]any{"track": nil}},
			{"empty name", map[string]any{"track": map[string]any{"name": ""}}},
		}

		for _, tt := range cases {
			t.Run(tt.name, func(t *testing.T) {
				if _, ok := extractTrack(tt.item); ok {
					t.Error("expected item to be dropped")
				}
			})
		}
	})
}
