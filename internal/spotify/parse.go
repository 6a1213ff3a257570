package spotify

import (
	"net/url"
	"regexp"
	"strings"
)

// ParseReason identifies why a playlist reference failed to parse.
type ParseReason string

const (
	ReasonEmpty     ParseReason = "empty"
	ReasonNotURL    ParseReason = "not_url"
	ReasonWrongType ParseReason = "wrong_type"
	ReasonBadHost   ParseReason = "bad_host"
	ReasonMissingID ParseReason = "missing_id"
	ReasonInvalidID ParseReason = "invalid_id"
)

// parseMessages maps each reason to its fixed user-facing message.
var parseMessages = map[ParseReason]string{
	ReasonEmpty:     "Enter a Spotify playlist URL.",
	ReasonNotURL:    "Enter a valid URL or Spotify playlist URI.",
	ReasonWrongType: "That URL is not a playlist.",
	ReasonBadHost:   "Use an open.spotify.com playlist link.",
	ReasonMissingID: "Playlist link is missing an ID.",
	ReasonInvalidID: "Playlist ID is invalid.",
}

// ParseError reports an unparseable playlist reference. Raised before any
// network activity; never carries upstream detail.
type ParseError struct {
	Reason ParseReason
}

func (e *ParseError) Error() string {
	return "parse playlist reference: " + string(e.Reason)
}

// Message returns the fixed user-facing message for the failure reason.
func (e *ParseError) Message() string {
	return parseMessages[e.Reason]
}

var (
	playlistIDRe  = regexp.MustCompile(`^[A-Za-z0-9]{16,64}$`)
	playlistURIRe = regexp.MustCompile(`(?i)^spotify:playlist:([A-Za-z0-9]+)$`)
)

var allowedHosts = map[string]bool{
	"open.spotify.com": true,
	"play.spotify.com": true,
}

// ExtractPlaylistID resolves a user-supplied playlist reference — an
// open.spotify.com URL, a spotify:playlist: URI, or a bare ID — into a
// playlist ID. Failures return a [*ParseError] with one of six reasons.
func ExtractPlaylistID(input string) (string, error) {
	value := strings.TrimSpace(input)

	if value == "" {
		return "", &ParseError{Reason: ReasonEmpty}
	}

	if m := playlistURIRe.FindStringSubmatch(value); m != nil {
		if !playlistIDRe.MatchString(m[1]) {
			return "", &ParseError{Reason: ReasonInvalidID}
		}
		return m[1], nil
	}

	if playlistIDRe.MatchString(value) {
		return value, nil
	}

	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", &ParseError{Reason: ReasonNotURL}
	}

	if !allowedHosts[strings.ToLower(u.Hostname())] {
		return "", &ParseError{Reason: ReasonBadHost}
	}

	parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	idx := -1
	for i, part := range parts {
		if strings.EqualFold(part, "playlist") {
			idx = i
			break
		}
	}
	if idx == -1 {
		return "", &ParseError{Reason: ReasonWrongType}
	}

	if idx+1 >= len(parts) {
		return "", &ParseError{Reason: ReasonMissingID}
	}

	id := parts[idx+1]
	if !playlistIDRe.MatchString(id) {
		return "", &ParseError{Reason: ReasonInvalidID}
	}

	return id, nil
}
