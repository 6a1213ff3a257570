package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/auth"
	"github.com/desertthunder/setlist/internal/ratelimit"
	"github.com/desertthunder/setlist/internal/spotify"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the service.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// PlaylistFetcher is the slice of the Spotify client the playlist endpoint
// needs; tests substitute a stub.
type PlaylistFetcher interface {
	PublicPlaylist(ctx context.Context, id string) (*spotify.Playlist, error)
}

// Server composes the origin guard, rate limiter, session codec and
// playlist client into the request-handling layer. All dependencies are
// injected at construction; nothing is ambient.
type Server struct {
	codec     *auth.Codec
	password  string
	limiter   ratelimit.Limiter
	playlists PlaylistFetcher
	logger    *log.Logger
	router    *BasicRouter
}

// Options contains dependencies for creating a Server.
type Options struct {
	Codec     *auth.Codec
	Password  string
	Limiter   ratelimit.Limiter
	Playlists PlaylistFetcher
	Logger    *log.Logger
}

// New creates a Server and registers all routes.
func New(opts Options) *Server {
	s := &Server{
		codec:     opts.Codec,
		password:  opts.Password,
		limiter:   opts.Limiter,
		playlists: opts.Playlists,
		logger:    opts.Logger,
		router:    NewBasicRouter(),
	}

	s.router.Use(s.logRequests, s.sessionGate)

	s.router.Handle(http.MethodPost, "/api/login", http.HandlerFunc(s.handleLogin))
	s.router.Handle(http.MethodPost, "/api/logout", http.HandlerFunc(s.handleLogout))
	s.router.Handle(http.MethodPost, "/api/playlist", http.HandlerFunc(s.handlePlaylist))
	s.router.Handler(&PageHandler{})

	return s
}

// ServeHTTP implements [http.Handler] for the whole application.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
