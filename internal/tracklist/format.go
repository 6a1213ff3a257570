// package tracklist renders tracks as formatted text lines and imports
// tracklists from DJ software CSV exports.
package tracklist

import (
	"fmt"
	"strings"

	"github.com/desertthunder/setlist/internal/spotify"
)

// Style selects the output line format.
type Style string

const (
	// StyleCurrent is the full emoji style used by the in-game overlay.
	StyleCurrent Style = "current"
	// StyleMeNowPlaying is the plain /me chat style.
	StyleMeNowPlaying Style = "me_now_playing"
	// StylePlain is bare "{artist} - {title}" lines.
	StylePlain Style = "plain"
)

// Styles lists every valid style in display order.
var Styles = []Style{StyleCurrent, StyleMeNowPlaying, StylePlain}

// IsStyle reports whether value names a known style.
func IsStyle(value string) bool {
	for _, s := range Styles {
		if string(s) == value {
			return true
		}
	}
	return false
}

func renderLine(track spotify.Track, style Style) string {
	switch style {
	case StyleMeNowPlaying:
		return fmt.Sprintf("/me now playing... %s - %s", track.Artist, track.Title)
	case StylePlain:
		return fmt.Sprintf("%s - %s", track.Artist, track.Title)
	default:
		return fmt.Sprintf(
			`<color=#FACC15><sprite name="musical-notes_1F3B6"> now playing... %s - %s <sprite name="musical-notes_1F3B6">`,
			track.Artist, track.Title,
		)
	}
}

// Render formats tracks one per line in input order. Unknown styles fall
// back to [StyleCurrent].
func Render(tracks []spotify.Track, style Style) string {
	lines := make([]string, 0, len(tracks))
	for _, track := range tracks {
		lines = append(lines, renderLine(track, style))
	}
	return strings.Join(lines, "\n")
}
