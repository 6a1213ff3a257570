// package auth implements the stateless session credential for the single
// shared-password principal.
//
// A session token is base64url(JSON payload) + "." + base64url(HMAC-SHA256
// signature). The payload carries only issue and expiry timestamps; no
// identity and no server-side session table. Validity is purely a function
// of the signature and the expiry.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/desertthunder/setlist/internal/shared"
)

const (
	// SessionCookieName is the cookie carrying the session token.
	SessionCookieName = "spf_session"

	// SessionMaxAge is how long an issued token stays valid.
	SessionMaxAge = 30 * 24 * time.Hour
)

type sessionPayload struct {
	IssuedAt  int64 `json:"iat"`
	ExpiresAt int64 `json:"exp"`
}

// Codec signs and verifies session tokens with a process-wide secret.
// Issue and Verify are pure apart from the read-only secret, so a single
// Codec is safe for concurrent use without locking.
type Codec struct {
	secret []byte
}

// NewCodec creates a Codec signing with the given secret. An empty secret
// produces a Codec that refuses to issue and verifies nothing.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue builds a token valid from now until now + [SessionMaxAge].
// Timestamps are Unix milliseconds.
func (c *Codec) Issue(now time.Time) (string, error) {
	if len(c.secret) == 0 {
		return "", shared.ErrMissingSecret
	}

	payload := sessionPayload{
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: now.Add(SessionMaxAge).UnixMilli(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + "." + c.sign(encoded), nil
}

// Verify reports whether token is authentic and unexpired at now.
// It fails closed: any malformed input returns false, never an error.
func (c *Codec) Verify(token string, now time.Time) bool {
	if token == "" || len(c.secret) == 0 {
		return false
	}

	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}

	encoded, signature := parts[0], parts[1]
	if !safeEqual(signature, c.sign(encoded)) {
		return false
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return false
	}

	exp, ok := payload["exp"].(float64)
	if !ok || math.IsNaN(exp) || math.IsInf(exp, 0) {
		return false
	}

	return float64(now.UnixMilli()) < exp
}

func (c *Codec) sign(value string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyPassword compares candidate against the configured password without
// leaking timing information. An unconfigured password never matches.
func VerifyPassword(candidate, configured string) bool {
	if configured == "" {
		return false
	}
	return safeEqual(candidate, configured)
}

// safeEqual checks length first, then compares in constant time.
func safeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
