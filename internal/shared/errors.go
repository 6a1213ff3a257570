package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingSecret      = fmt.Errorf("missing session secret")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed   = fmt.Errorf("authentication failed")
	ErrRateLimited  = fmt.Errorf("too many failed attempts")
	ErrBadPassword  = fmt.Errorf("invalid password")
	ErrCrossOrigin  = fmt.Errorf("cross-origin request rejected")
	ErrTokenExpired = fmt.Errorf("session token expired")

	// API and service errors
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
