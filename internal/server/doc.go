// Package server provides HTTP routing, middleware, and the authenticated
// request-handling layer for the playlist formatter.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Request Admission
//
// Two global middlewares run on every request: request logging and the
// session gate. The gate admits public paths unconditionally and everything
// else only with a verifiable session cookie, redirecting to
// /login?next=<original path+query> otherwise.
//
// Mutating endpoints additionally pass [IsSameOriginPost] before any other
// work. It checks the Origin header against the request's own origin,
// falling back to the Referer's origin, and rejects when neither header is
// present. Because the guard runs first, cross-origin traffic never
// perturbs rate-limit state.
//
// # Login Flow
//
// A login request moves through origin guard → rate limiter → constant-time
// password comparison → token issuance. Each stage has a fixed rejection
// message and status; a failed password is recorded against the client's
// network address (forwarding headers are ignored for this purpose).
//
// # Playlist Endpoint
//
// The playlist endpoint parses the submitted reference locally (six fixed
// rejection reasons, no network activity on failure) and translates the
// Spotify client's structured errors into a closed set of user-facing
// statuses via mapPlaylistError.
package server
