package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/spotify"
	"github.com/desertthunder/setlist/internal/tracklist"
	"github.com/desertthunder/setlist/internal/ui"
	"github.com/urfave/cli/v3"
)

// Fetch resolves the input into a named track listing and prints it. The
// input is either a path to a DJ-software CSV export or a Spotify playlist
// reference (URL, URI or bare ID).
func (r *Runner) Fetch(ctx context.Context, cmd *cli.Command) error {
	input := cmd.StringArg("input")
	if input == "" {
		return fmt.Errorf("expected a playlist URL, URI, ID or CSV path: %w", shared.ErrMissingArgument)
	}

	style := tracklist.Style(cmd.String("style"))
	if !tracklist.IsStyle(cmd.String("style")) {
		// Keep JSON output clean; the warning goes to the log there.
		if cmd.Bool("json") {
			r.logger.Warn("unknown style, using default", "style", cmd.String("style"))
		} else {
			fmt.Fprintln(r.output, ui.Warn(fmt.Sprintf("Unknown style %q, using %s.", cmd.String("style"), tracklist.StyleCurrent)))
		}
		style = tracklist.StyleCurrent
	}

	name, tracks, err := r.resolve(ctx, input, cmd.String("format"))
	if err != nil {
		fmt.Fprintln(r.output, ui.Err(err.Error()))
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"playlistName": name,
			"trackCount":   len(tracks),
			"tracks":       tracks,
		}, cmd.Bool("pretty"))
	}

	r.writePlainln("%s %s", ui.Title(name), ui.Help(fmt.Sprintf("(%d tracks)", len(tracks))))
	return r.writePlainln("%s", tracklist.Render(tracks, style))
}

// resolve picks the source for the input: local CSV file or the Spotify API.
func (r *Runner) resolve(ctx context.Context, input, format string) (string, []spotify.Track, error) {
	if strings.HasSuffix(strings.ToLower(input), ".csv") {
		content, err := os.ReadFile(input)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read CSV file: %w", err)
		}

		fileName := filepath.Base(input)
		var imported *tracklist.Import
		switch format {
		case "djay":
			imported, err = tracklist.ImportDjayCSV(string(content), fileName)
		default:
			imported, err = tracklist.ImportMixxxCSV(string(content), fileName)
		}
		if err != nil {
			return "", nil, err
		}
		return imported.PlaylistName, imported.Tracks, nil
	}

	id, err := spotify.ExtractPlaylistID(input)
	if err != nil {
		var parseErr *spotify.ParseError
		if errors.As(err, &parseErr) {
			return "", nil, fmt.Errorf("%s: %w", parseErr.Message(), shared.ErrInvalidInput)
		}
		return "", nil, err
	}

	playlist, err := r.playlists.PublicPlaylist(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return playlist.Name, playlist.Tracks, nil
}
