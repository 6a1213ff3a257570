package main

import (
	"context"
	"os"

	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/spotify"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	client := spotify.NewClient(
		config.Credentials.Spotify.ClientID,
		config.Credentials.Spotify.ClientSecret,
		nil,
	)

	runner := NewRunner(RunnerOpts{
		Config:    config,
		Playlists: client,
		Logger:    logger,
	})

	app := &cli.Command{
		Name:     "setlist",
		Usage:    "Turn a Spotify playlist or DJ CSV export into a shareable tracklist",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
