package tracklist

import (
	"encoding/csv"
	"errors"
	"regexp"
	"strings"

	"github.com/desertthunder/setlist/internal/spotify"
)

// Import is a tracklist recovered from an uploaded CSV export.
type Import struct {
	PlaylistName string
	Tracks       []spotify.Track
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// normalizeHeader strips a BOM and collapses case/whitespace so header
// matching tolerates export quirks.
func normalizeHeader(header string) string {
	header = strings.TrimPrefix(header, "\uFEFF")
	header = strings.ToLower(strings.TrimSpace(header))
	return whitespaceRe.ReplaceAllString(header, " ")
}

// playlistNameFromFile derives a playlist name from the uploaded filename,
// dropping the .csv extension.
func playlistNameFromFile(fileName, fallback string) string {
	trimmed := strings.TrimSpace(fileName)
	if trimmed == "" {
		return fallback
	}
	if strings.EqualFold(trimmed[max(0, len(trimmed)-4):], ".csv") {
		trimmed = trimmed[:len(trimmed)-4]
	}
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func parseRows(content string) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

func headerIndex(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ImportMixxxCSV parses a Mixxx playlist export. Title is required per
// row; artist falls back to the Album Artist column, then "Unknown Artist".
func ImportMixxxCSV(content, fileName string) (*Import, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, errors.New("Upload a non-empty Mixxx CSV file.")
	}

	rows, err := parseRows(trimmed)
	if err != nil || len(rows) == 0 {
		return nil, errors.New("Unable to parse Mixxx CSV rows.")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = normalizeHeader(h)
	}

	artistIdx := headerIndex(headers, "artist")
	titleIdx := headerIndex(headers, "title")
	albumArtistIdx := headerIndex(headers, "album artist")

	if titleIdx == -1 || (artistIdx == -1 && albumArtistIdx == -1) {
		return nil, errors.New("CSV must include Artist (or Album Artist) and Title columns.")
	}

	var tracks []spotify.Track
	for _, row := range rows[1:] {
		title := field(row, titleIdx)
		if title == "" {
			continue
		}

		artist := field(row, artistIdx)
		if artist == "" {
			artist = field(row, albumArtistIdx)
		}
		if artist == "" {
			artist = "Unknown Artist"
		}

		tracks = append(tracks, spotify.Track{Artist: artist, Title: title})
	}

	if len(tracks) == 0 {
		return nil, errors.New("No playable tracks found in Mixxx CSV.")
	}

	return &Import{
		PlaylistName: playlistNameFromFile(fileName, "Mixxx CSV"),
		Tracks:       tracks,
	}, nil
}

// ImportDjayCSV parses a Djay Pro playlist export. Both Artist and Title
// columns are required; empty artist cells fall back to "Unknown Artist".
func ImportDjayCSV(content, fileName string) (*Import, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, errors.New("Upload a non-empty Djay Pro CSV file.")
	}

	rows, err := parseRows(trimmed)
	if err != nil || len(rows) == 0 {
		return nil, errors.New("Unable to parse Djay Pro CSV rows.")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = normalizeHeader(h)
	}

	artistIdx := headerIndex(headers, "artist")
	titleIdx := headerIndex(headers, "title")

	if titleIdx == -1 || artistIdx == -1 {
		return nil, errors.New("CSV must include Artist and Title columns.")
	}

	var tracks []spotify.Track
	for _, row := range rows[1:] {
		title := field(row, titleIdx)
		if title == "" {
			continue
		}

		artist := field(row, artistIdx)
		if artist == "" {
			artist = "Unknown Artist"
		}

		tracks = append(tracks, spotify.Track{Artist: artist, Title: title})
	}

	if len(tracks) == 0 {
		return nil, errors.New("No playable tracks found in Djay Pro CSV.")
	}

	return &Import{
		PlaylistName: playlistNameFromFile(fileName, "Djay Pro CSV"),
		Tracks:       tracks,
	}, nil
}
