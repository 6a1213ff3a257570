// package ratelimit tracks failed login attempts per client identity.
//
// Two backends implement [Limiter]: an in-process store ([Memory]) and a
// Redis-backed store ([Redis]) for multi-instance deployments. The backend
// is chosen once at startup from configuration and held immutably after.
package ratelimit

import (
	"context"
	"net"
	"strings"
	"time"
)

// Policy constants shared by both backends.
const (
	// MaxAttempts is the number of failed logins inside the window that
	// triggers a block.
	MaxAttempts = 5

	// Window is the trailing interval failed attempts are counted over.
	Window = 15 * time.Minute

	// BlockDuration is how long an identity stays blocked after crossing
	// the attempt limit.
	BlockDuration = 15 * time.Minute
)

// Limiter is the interface shared by the in-process and Redis backends.
// The Redis backend can fail on transport errors, so every method returns
// an error; [Memory] never does.
type Limiter interface {
	// IsLimited reports whether the identity is currently blocked.
	IsLimited(ctx context.Context, key string, now time.Time) (bool, error)

	// RecordFailure registers a failed login attempt for the identity.
	RecordFailure(ctx context.Context, key string, now time.Time) error

	// Clear resets all state for the identity (used after a successful login).
	Clear(ctx context.Context, key string) error
}

// ClientKey derives the rate-limit identity from the connection's remote
// address. Client-supplied forwarding headers are never consulted here:
// trusting them would let an attacker rotate spoofed header values to
// bypass the limit.
func ClientKey(remoteAddr string) string {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}

	host = strings.TrimSpace(host)
	if host == "" {
		return "unknown"
	}
	return host
}
